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

// JobHandler covers position CRUD plus the status endpoint the board
// shares with the plain update path.
type JobHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewJobHandler builds the handler.
func NewJobHandler(db *gorm.DB, activity *ActivityRecorder) *JobHandler {
	return &JobHandler{db: db, activity: activity}
}

type createJobRequest struct {
	Title        string             `json:"title" binding:"required,min=2,max=255"`
	Description  string             `json:"description"`
	Requirements string             `json:"requirements"`
	Status       database.JobStatus `json:"status" binding:"omitempty,oneof=DRAFT OPEN CLOSED FILLED"`
	ClientID     uint               `json:"client_id" binding:"required"`
}

type updateJobRequest struct {
	Title        string             `json:"title" binding:"required,min=2,max=255"`
	Description  string             `json:"description"`
	Requirements string             `json:"requirements"`
	Status       database.JobStatus `json:"status" binding:"required,oneof=DRAFT OPEN CLOSED FILLED"`
	ClientID     uint               `json:"client_id" binding:"required"`
}

type jobResponse struct {
	ID           uint               `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Requirements string             `json:"requirements,omitempty"`
	Status       database.JobStatus `json:"status"`
	ClientID     uint               `json:"client_id"`
	ClientName   string             `json:"client_name,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func newJobResponse(job database.Job) jobResponse {
	return jobResponse{
		ID:           job.ID,
		Title:        job.Title,
		Description:  job.Description,
		Requirements: job.Requirements,
		Status:       job.Status,
		ClientID:     job.ClientID,
		ClientName:   job.Client.Name,
		CreatedAt:    job.CreatedAt,
	}
}

// CreateJob opens a position under an existing client. An unknown or
// soft-deleted client fails the request.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var client database.Client
	if err := h.db.WithContext(ctx).First(&client, req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "client does not exist")
			return
		}
		Internal(c, "failed to verify client")
		return
	}

	status := req.Status
	if status == "" {
		status = database.JobStatusDraft
	}

	job := database.Job{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       status,
		ClientID:     client.ID,
	}
	if err := h.db.WithContext(ctx).Create(&job).Error; err != nil {
		Internal(c, "failed to create job")
		return
	}
	job.Client = client

	h.activity.Record(c, "job.created", "job", job.ID, map[string]any{
		"title":     job.Title,
		"client_id": client.ID,
	})
	c.JSON(http.StatusCreated, newJobResponse(job))
}

// ListJobs lists jobs newest first, optionally filtered by status or
// client.
func (h *JobHandler) ListJobs(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&database.Job{}).Preload("Client")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var jobs []database.Job
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		Internal(c, "failed to list jobs")
		return
	}

	items := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, newJobResponse(job))
	}
	c.JSON(http.StatusOK, items)
}

// GetJob returns one job with its client and applications.
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.findJob(c.Request.Context(), c.Param("id"), "Client", "Applications", "Applications.Candidate")
	if err != nil {
		respondLookupError(c, err, "job")
		return
	}

	applications := make([]gin.H, 0, len(job.Applications))
	for _, app := range job.Applications {
		applications = append(applications, gin.H{
			"id":             app.ID,
			"candidate_id":   app.CandidateID,
			"candidate_name": app.Candidate.FirstName + " " + app.Candidate.LastName,
			"status":         app.Status,
			"applied_at":     app.AppliedAt,
		})
	}

	resp := newJobResponse(*job)
	c.JSON(http.StatusOK, gin.H{
		"id":           resp.ID,
		"title":        resp.Title,
		"description":  resp.Description,
		"requirements": resp.Requirements,
		"status":       resp.Status,
		"client_id":    resp.ClientID,
		"client_name":  resp.ClientName,
		"created_at":   resp.CreatedAt,
		"applications": applications,
	})
}

// UpdateJob overwrites a job's fields, re-checking the client when it
// changes.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req updateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	job, err := h.findJob(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "job")
		return
	}

	if req.ClientID != job.ClientID {
		var client database.Client
		if err := h.db.WithContext(ctx).First(&client, req.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				BadRequest(c, "client does not exist")
				return
			}
			Internal(c, "failed to verify client")
			return
		}
	}

	updates := map[string]any{
		"title":        req.Title,
		"description":  req.Description,
		"requirements": req.Requirements,
		"status":       req.Status,
		"client_id":    req.ClientID,
	}
	if err := h.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
		Internal(c, "failed to update job")
		return
	}
	if err := h.db.WithContext(ctx).Preload("Client").First(job, job.ID).Error; err != nil {
		Internal(c, "failed to reload job")
		return
	}

	h.activity.Record(c, "job.updated", "job", job.ID, nil)
	c.JSON(http.StatusOK, newJobResponse(*job))
}

// UpdateJobStatus changes only the status. Any known status may replace
// any other; this is the endpoint the kanban board drives.
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	var req struct {
		Status database.JobStatus `json:"status" binding:"required,oneof=DRAFT OPEN CLOSED FILLED"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	job, err := h.findJob(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "job")
		return
	}

	previous := job.Status
	if err := h.db.WithContext(ctx).Model(job).Update("status", req.Status).Error; err != nil {
		Internal(c, "failed to update job status")
		return
	}

	h.activity.Record(c, "job.status_changed", "job", job.ID, map[string]any{
		"from": previous,
		"to":   req.Status,
	})
	c.JSON(http.StatusOK, gin.H{"id": job.ID, "status": req.Status})
}

// DeleteJob soft-deletes a job.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	job, err := h.findJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "job")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&database.Job{}, job.ID).Error; err != nil {
		Internal(c, "failed to delete job")
		return
	}

	h.activity.Record(c, "job.deleted", "job", job.ID, nil)
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) findJob(ctx context.Context, idParam string, preloads ...string) (*database.Job, error) {
	id, err := parseEntityID(idParam)
	if err != nil {
		return nil, err
	}

	query := h.db.WithContext(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var job database.Job
	if err := query.First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}
