package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/api/middleware"
	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/storage"
	"github.com/EvgeniyGal/hr-agency/internal/tasks"
)

// CV uploads accept PDF and Word documents only.
var allowedCVTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// CVHandler stores candidate documents in the blob backend and keeps
// their metadata rows in sync.
type CVHandler struct {
	db          *gorm.DB
	storage     ObjectStore
	asynqClient *asynq.Client
	clamdAddr   string
	maxCVBytes  int64
}

// NewCVHandler builds the handler. clamdAddr may be empty, which skips
// virus scanning.
func NewCVHandler(db *gorm.DB, storageClient ObjectStore, asynqClient *asynq.Client, clamdAddr string, maxCVBytes int64) *CVHandler {
	return &CVHandler{
		db:          db,
		storage:     storageClient,
		asynqClient: asynqClient,
		clamdAddr:   clamdAddr,
		maxCVBytes:  maxCVBytes,
	}
}

// UploadCV accepts a PDF or DOCX for a candidate, scans it when clamd is
// configured, uploads it and records the metadata row.
func (h *CVHandler) UploadCV(c *gin.Context) {
	candidateID, err := parseEntityID(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid candidate id")
		return
	}

	ctx := c.Request.Context()
	var candidate database.Candidate
	if err := h.db.WithContext(ctx).First(&candidate, candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "candidate not found")
			return
		}
		Internal(c, "failed to query candidate")
		return
	}

	file, err := c.FormFile("cv")
	if err != nil {
		BadRequest(c, "missing cv file")
		return
	}
	if file.Size > h.maxCVBytes {
		BadRequest(c, fmt.Sprintf("file exceeds the %d MB limit", h.maxCVBytes/(1<<20)))
		return
	}

	fileName := sanitizeFileName(file.Filename)
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok := allowedCVTypes[ext]
	if !ok {
		BadRequest(c, "only PDF and DOCX files are accepted")
		return
	}

	if h.clamdAddr != "" {
		clean, err := h.scanUpload(file)
		if err != nil {
			loggerFromContext(c).Error("scan cv", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer fileReader.Close()

	objectKey := storage.CVObjectKey(candidate.ID, uuid.NewString(), fileName)
	if _, err := h.storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		loggerFromContext(c).Error("upload cv", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	cv := database.CV{
		CandidateID: candidate.ID,
		FileName:    fileName,
		ObjectKey:   objectKey,
		FileSize:    file.Size,
		ContentType: contentType,
	}
	if err := h.db.WithContext(ctx).Create(&cv).Error; err != nil {
		// The metadata row failed, so the object is orphaned; remove it
		// rather than leak storage.
		if delErr := h.storage.DeleteObject(ctx, objectKey); delErr != nil {
			loggerFromContext(c).Error("remove orphaned cv object",
				slog.String("objectKey", objectKey), slog.String("error", delErr.Error()))
		}
		Internal(c, "failed to record cv")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           cv.ID,
		"candidate_id": cv.CandidateID,
		"file_name":    cv.FileName,
		"file_size":    cv.FileSize,
		"content_type": cv.ContentType,
		"uploaded_at":  cv.CreatedAt,
	})
}

// ListCVs lists a candidate's documents, newest first.
func (h *CVHandler) ListCVs(c *gin.Context) {
	candidateID, err := parseEntityID(c.Param("id"))
	if err != nil {
		BadRequest(c, "invalid candidate id")
		return
	}

	var cvs []database.CV
	err = h.db.WithContext(c.Request.Context()).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&cvs).Error
	if err != nil {
		Internal(c, "failed to list cvs")
		return
	}

	items := make([]gin.H, 0, len(cvs))
	for _, cv := range cvs {
		items = append(items, gin.H{
			"id":           cv.ID,
			"file_name":    cv.FileName,
			"file_size":    cv.FileSize,
			"content_type": cv.ContentType,
			"uploaded_at":  cv.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}

// DownloadCV returns a short-lived presigned link instead of proxying
// the bytes.
func (h *CVHandler) DownloadCV(c *gin.Context) {
	cvID, err := parseEntityID(c.Param("cvID"))
	if err != nil {
		BadRequest(c, "invalid cv id")
		return
	}

	ctx := c.Request.Context()
	var cv database.CV
	if err := h.db.WithContext(ctx).First(&cv, cvID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cv not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(ctx, cv.ObjectKey, 15*time.Minute)
	if err != nil {
		loggerFromContext(c).Error("generate cv url", slog.String("error", err.Error()))
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_name": cv.FileName,
		"url":       signedURL,
	})
}

// DeleteCV soft-deletes the metadata row and hands the blob removal to
// the background worker.
func (h *CVHandler) DeleteCV(c *gin.Context) {
	cvID, err := parseEntityID(c.Param("cvID"))
	if err != nil {
		BadRequest(c, "invalid cv id")
		return
	}

	ctx := c.Request.Context()
	var cv database.CV
	if err := h.db.WithContext(ctx).First(&cv, cvID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cv not found")
			return
		}
		Internal(c, "failed to query cv")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.CV{}, cv.ID).Error; err != nil {
		Internal(c, "failed to delete cv")
		return
	}

	if h.asynqClient != nil {
		task, err := tasks.NewCVCleanupTask(tasks.CVCleanupPayload{
			CVID:          cv.ID,
			ObjectKey:     cv.ObjectKey,
			CorrelationID: middleware.GetCorrelationID(c),
		})
		if err == nil {
			_, err = h.asynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(5))
		}
		if err != nil {
			// The row is gone either way; the blob will linger until a
			// manual sweep.
			loggerFromContext(c).Warn("enqueue cv cleanup",
				slog.String("objectKey", cv.ObjectKey), slog.String("error", err.Error()))
		}
	}

	c.Status(http.StatusNoContent)
}

// scanUpload streams the file through clamd. It returns false when the
// daemon flags the content.
func (h *CVHandler) scanUpload(file *multipart.FileHeader) (bool, error) {
	fileReader, err := file.Open()
	if err != nil {
		return false, err
	}

	clamdClient := clamd.NewClamd(h.clamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		return false, err
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}
