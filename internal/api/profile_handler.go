package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/storage"
)

// ProfileHandler serves the signed-in user's own account: profile reads,
// name updates and avatar uploads.
type ProfileHandler struct {
	db             *gorm.DB
	storage        ObjectStore
	activity       *ActivityRecorder
	maxAvatarBytes int64
}

// NewProfileHandler builds the handler.
func NewProfileHandler(db *gorm.DB, storageClient ObjectStore, activity *ActivityRecorder, maxAvatarBytes int64) *ProfileHandler {
	return &ProfileHandler{
		db:             db,
		storage:        storageClient,
		activity:       activity,
		maxAvatarBytes: maxAvatarBytes,
	}
}

type profileResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	ImageURL string `json:"image_url,omitempty"`
}

// GetProfile returns the current principal.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c)
			return
		}
		Internal(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     string(user.Role),
		ImageURL: user.ImageURL,
	})
}

type updateProfileRequest struct {
	Name string `json:"name" binding:"required,min=2,max=128"`
}

// UpdateProfile changes the signed-in user's display name.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	result := h.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Update("name", strings.TrimSpace(req.Name))
	if result.Error != nil {
		Internal(c, "failed to update profile")
		return
	}
	if result.RowsAffected == 0 {
		Unauthorized(c)
		return
	}

	h.activity.Record(c, "profile.updated", "user", userID, nil)
	c.JSON(http.StatusOK, gin.H{"name": strings.TrimSpace(req.Name)})
}

// UploadAvatar accepts an image up to the configured limit, stores it and
// points the user's image at the new object.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		BadRequest(c, "file must be an image")
		return
	}
	if file.Size > h.maxAvatarBytes {
		BadRequest(c, "image exceeds the size limit")
		return
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	objectKey := storage.AvatarObjectKey(userID, uuid.NewString(), sanitizeFileName(file.Filename))
	ctx := c.Request.Context()
	if _, err := h.storage.UploadFile(ctx, objectKey, reader, file.Size, contentType); err != nil {
		loggerFromContext(c).Error("upload avatar failed", slog.Any("error", err))
		Internal(c, "failed to upload avatar")
		return
	}

	url, err := h.storage.GeneratePresignedURL(ctx, objectKey, 24*time.Hour)
	if err != nil {
		Internal(c, "failed to generate avatar url")
		return
	}

	if err := h.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Update("image_url", url).Error; err != nil {
		Internal(c, "failed to store avatar url")
		return
	}

	h.activity.Record(c, "avatar.uploaded", "user", userID, map[string]any{"object_key": objectKey})
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// sanitizeFileName strips path fragments from an uploaded file name before
// it becomes part of an object key.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "..", "")
	if name == "" {
		name = "file"
	}
	return name
}
