package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
)

// ApplicationHandler joins candidates to jobs and moves them through the
// pipeline.
type ApplicationHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewApplicationHandler builds the handler.
func NewApplicationHandler(db *gorm.DB, activity *ActivityRecorder) *ApplicationHandler {
	return &ApplicationHandler{db: db, activity: activity}
}

type createApplicationRequest struct {
	JobID       uint                       `json:"job_id" binding:"required"`
	CandidateID uint                       `json:"candidate_id" binding:"required"`
	Status      database.ApplicationStatus `json:"status" binding:"omitempty,oneof=APPLIED SCREENING INTERVIEW OFFER HIRED REJECTED"`
	Notes       string                     `json:"notes"`
}

type updateApplicationRequest struct {
	Status database.ApplicationStatus `json:"status" binding:"required,oneof=APPLIED SCREENING INTERVIEW OFFER HIRED REJECTED"`
	Notes  string                     `json:"notes"`
}

type applicationResponse struct {
	ID            uint                       `json:"id"`
	JobID         uint                       `json:"job_id"`
	JobTitle      string                     `json:"job_title,omitempty"`
	CandidateID   uint                       `json:"candidate_id"`
	CandidateName string                     `json:"candidate_name,omitempty"`
	Status        database.ApplicationStatus `json:"status"`
	Notes         string                     `json:"notes,omitempty"`
	AppliedAt     time.Time                  `json:"applied_at"`
}

func newApplicationResponse(app database.Application) applicationResponse {
	resp := applicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		JobTitle:    app.Job.Title,
		CandidateID: app.CandidateID,
		Status:      app.Status,
		Notes:       app.Notes,
		AppliedAt:   app.AppliedAt,
	}
	if app.Candidate.ID != 0 {
		resp.CandidateName = app.Candidate.FirstName + " " + app.Candidate.LastName
	}
	return resp
}

// CreateApplication links a candidate to a job. Both sides must exist
// and a candidate may hold at most one live application per job.
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var job database.Job
	if err := h.db.WithContext(ctx).First(&job, req.JobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "job does not exist")
			return
		}
		Internal(c, "failed to verify job")
		return
	}
	var candidate database.Candidate
	if err := h.db.WithContext(ctx).First(&candidate, req.CandidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "candidate does not exist")
			return
		}
		Internal(c, "failed to verify candidate")
		return
	}

	var existing int64
	err := h.db.WithContext(ctx).Model(&database.Application{}).
		Where("job_id = ? AND candidate_id = ?", job.ID, candidate.ID).
		Count(&existing).Error
	if err != nil {
		Internal(c, "failed to check for existing application")
		return
	}
	if existing > 0 {
		Conflict(c, "candidate already applied to this job")
		return
	}

	status := req.Status
	if status == "" {
		status = database.ApplicationStatusApplied
	}
	app := database.Application{
		JobID:       job.ID,
		CandidateID: candidate.ID,
		Status:      status,
		Notes:       req.Notes,
	}
	if err := h.db.WithContext(ctx).Create(&app).Error; err != nil {
		Internal(c, "failed to create application")
		return
	}
	app.Job = job
	app.Candidate = candidate

	h.activity.Record(c, "application.created", "application", app.ID, map[string]any{
		"job_id":       job.ID,
		"candidate_id": candidate.ID,
	})
	c.JSON(http.StatusCreated, newApplicationResponse(app))
}

// ListApplications lists applications newest first, optionally filtered
// by job, candidate or status.
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&database.Application{}).
		Preload("Job").Preload("Candidate")
	if jobID := c.Query("job_id"); jobID != "" {
		query = query.Where("job_id = ?", jobID)
	}
	if candidateID := c.Query("candidate_id"); candidateID != "" {
		query = query.Where("candidate_id = ?", candidateID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []database.Application
	if err := query.Order("applied_at DESC").Find(&apps).Error; err != nil {
		Internal(c, "failed to list applications")
		return
	}

	items := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, newApplicationResponse(app))
	}
	c.JSON(http.StatusOK, items)
}

// GetApplication returns one application with both sides preloaded.
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.findApplication(c.Request.Context(), c.Param("id"), "Job", "Candidate")
	if err != nil {
		respondLookupError(c, err, "application")
		return
	}
	c.JSON(http.StatusOK, newApplicationResponse(*app))
}

// UpdateApplication changes status and notes. The job/candidate pair is
// immutable once created.
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	var req updateApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	app, err := h.findApplication(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "application")
		return
	}

	previous := app.Status
	updates := map[string]any{
		"status": req.Status,
		"notes":  req.Notes,
	}
	if err := h.db.WithContext(ctx).Model(app).Updates(updates).Error; err != nil {
		Internal(c, "failed to update application")
		return
	}
	if err := h.db.WithContext(ctx).Preload("Job").Preload("Candidate").First(app, app.ID).Error; err != nil {
		Internal(c, "failed to reload application")
		return
	}

	meta := map[string]any{}
	if previous != req.Status {
		meta["from"] = previous
		meta["to"] = req.Status
	}
	h.activity.Record(c, "application.updated", "application", app.ID, meta)
	c.JSON(http.StatusOK, newApplicationResponse(*app))
}

// UpdateApplicationStatus changes only the status.
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	var req struct {
		Status database.ApplicationStatus `json:"status" binding:"required,oneof=APPLIED SCREENING INTERVIEW OFFER HIRED REJECTED"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	app, err := h.findApplication(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "application")
		return
	}

	previous := app.Status
	if err := h.db.WithContext(ctx).Model(app).Update("status", req.Status).Error; err != nil {
		Internal(c, "failed to update application status")
		return
	}

	h.activity.Record(c, "application.status_changed", "application", app.ID, map[string]any{
		"from": previous,
		"to":   req.Status,
	})
	c.JSON(http.StatusOK, gin.H{"id": app.ID, "status": req.Status})
}

// DeleteApplication soft-deletes an application.
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	app, err := h.findApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "application")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&database.Application{}, app.ID).Error; err != nil {
		Internal(c, "failed to delete application")
		return
	}

	h.activity.Record(c, "application.deleted", "application", app.ID, nil)
	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) findApplication(ctx context.Context, idParam string, preloads ...string) (*database.Application, error) {
	id, err := parseEntityID(idParam)
	if err != nil {
		return nil, err
	}

	query := h.db.WithContext(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var app database.Application
	if err := query.First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}
