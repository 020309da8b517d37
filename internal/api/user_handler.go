package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/auth"
	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

// UserHandler is the owner-only account administration surface.
type UserHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewUserHandler builds the handler.
func NewUserHandler(db *gorm.DB, activity *ActivityRecorder) *UserHandler {
	return &UserHandler{db: db, activity: activity}
}

type userSummary struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               rbac.Role `json:"role"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
}

func newUserSummary(user database.User) userSummary {
	return userSummary{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt,
	}
}

// ListUsers lists non-deleted accounts.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []database.User
	if err := h.db.WithContext(c.Request.Context()).Order("created_at ASC").Find(&users).Error; err != nil {
		Internal(c, "failed to list users")
		return
	}

	items := make([]userSummary, 0, len(users))
	for _, user := range users {
		items = append(items, newUserSummary(user))
	}
	c.JSON(http.StatusOK, items)
}

type inviteUserRequest struct {
	Name  string    `json:"name" binding:"required,min=2,max=128"`
	Email string    `json:"email" binding:"required,email"`
	Role  rbac.Role `json:"role" binding:"required,oneof=ADMIN MANAGER"`
}

// InviteUser creates an account with a generated one-time password. The
// password appears in this response only; the invitee must replace it on
// first login. OWNER cannot be granted here.
func (h *UserHandler) InviteUser(c *gin.Context) {
	var req inviteUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := h.db.WithContext(ctx).Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		Internal(c, "failed to check email")
		return
	}
	if count > 0 {
		Conflict(c, "email already registered")
		return
	}

	oneTimePassword, err := auth.GenerateOneTimePassword(24)
	if err != nil {
		Internal(c, "failed to generate password")
		return
	}
	hash, err := auth.HashPassword(oneTimePassword)
	if err != nil {
		Internal(c, "failed to hash password")
		return
	}

	user := database.User{
		Name:               req.Name,
		Email:              email,
		PasswordHash:       hash,
		Role:               req.Role,
		MustChangePassword: true,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		Internal(c, "failed to create user")
		return
	}

	h.activity.Record(c, "user.invited", "user", user.ID, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})
	c.JSON(http.StatusCreated, gin.H{
		"user":              newUserSummary(user),
		"one_time_password": oneTimePassword,
	})
}

type updateUserRoleRequest struct {
	Role rbac.Role `json:"role" binding:"required,oneof=ADMIN MANAGER"`
}

// UpdateUserRole reassigns ADMIN or MANAGER. The OWNER account cannot be
// demoted and nobody can be promoted to OWNER.
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	var req updateUserRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := parseEntityID(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid user id")
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to query user")
		return
	}
	if user.Role == rbac.RoleOwner {
		Forbidden(c, "the owner role cannot be changed")
		return
	}

	if err := h.db.WithContext(ctx).Model(&user).Update("role", req.Role).Error; err != nil {
		Internal(c, "failed to update role")
		return
	}
	user.Role = req.Role

	h.activity.Record(c, "user.role_changed", "user", user.ID, map[string]any{"role": req.Role})
	c.JSON(http.StatusOK, newUserSummary(user))
}

// DeleteUser soft-deletes an account. The caller cannot delete
// themselves and the OWNER account cannot be deleted.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseEntityID(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid user id")
		return
	}

	callerID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	if callerID == id {
		Conflict(c, "you cannot delete your own account")
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "user not found")
			return
		}
		Internal(c, "failed to query user")
		return
	}
	if user.Role == rbac.RoleOwner {
		Forbidden(c, "the owner account cannot be deleted")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.User{}, user.ID).Error; err != nil {
		Internal(c, "failed to delete user")
		return
	}

	h.activity.Record(c, "user.deleted", "user", user.ID, map[string]any{"email": user.Email})
	c.Status(http.StatusNoContent)
}
