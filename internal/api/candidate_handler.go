package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
)

// CandidateHandler covers candidate CRUD and the candidate status
// endpoint.
type CandidateHandler struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewCandidateHandler builds the handler.
func NewCandidateHandler(db *gorm.DB, activity *ActivityRecorder) *CandidateHandler {
	return &CandidateHandler{db: db, activity: activity}
}

type candidateRequest struct {
	FirstName string                   `json:"first_name" binding:"required,min=1,max=128"`
	LastName  string                   `json:"last_name" binding:"required,min=1,max=128"`
	Email     string                   `json:"email" binding:"omitempty,email"`
	Phone     string                   `json:"phone" binding:"omitempty,max=64"`
	Status    database.CandidateStatus `json:"status" binding:"omitempty,oneof=LEAD CONTACTED INTERVIEWING PLACED REJECTED"`
	Skills    []string                 `json:"skills"`
}

type candidateResponse struct {
	ID        uint                     `json:"id"`
	FirstName string                   `json:"first_name"`
	LastName  string                   `json:"last_name"`
	Email     string                   `json:"email,omitempty"`
	Phone     string                   `json:"phone,omitempty"`
	Status    database.CandidateStatus `json:"status"`
	Skills    []string                 `json:"skills"`
	CreatedAt time.Time                `json:"created_at"`
}

func newCandidateResponse(candidate database.Candidate) candidateResponse {
	skills := []string{}
	if len(candidate.Skills) > 0 {
		// Stored by this handler, so a decode failure means a corrupt
		// row; surface it as empty rather than failing the read.
		_ = json.Unmarshal(candidate.Skills, &skills)
	}
	return candidateResponse{
		ID:        candidate.ID,
		FirstName: candidate.FirstName,
		LastName:  candidate.LastName,
		Email:     candidate.Email,
		Phone:     candidate.Phone,
		Status:    candidate.Status,
		Skills:    skills,
		CreatedAt: candidate.CreatedAt,
	}
}

func encodeSkills(skills []string) (datatypes.JSON, error) {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// CreateCandidate adds a candidate, defaulting to LEAD.
func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	var req candidateRequest
	if !bindJSON(c, &req) {
		return
	}

	status := req.Status
	if status == "" {
		status = database.CandidateStatusLead
	}
	skills, err := encodeSkills(req.Skills)
	if err != nil {
		BadRequest(c, "invalid skills")
		return
	}

	candidate := database.Candidate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		Status:    status,
		Skills:    skills,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&candidate).Error; err != nil {
		Internal(c, "failed to create candidate")
		return
	}

	h.activity.Record(c, "candidate.created", "candidate", candidate.ID, map[string]any{
		"name": candidate.FirstName + " " + candidate.LastName,
	})
	c.JSON(http.StatusCreated, newCandidateResponse(candidate))
}

// ListCandidates lists candidates newest first, optionally filtered by
// status or a name/email search.
func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&database.Candidate{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var candidates []database.Candidate
	if err := query.Order("created_at DESC").Find(&candidates).Error; err != nil {
		Internal(c, "failed to list candidates")
		return
	}

	items := make([]candidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, newCandidateResponse(candidate))
	}
	c.JSON(http.StatusOK, items)
}

// GetCandidate returns one candidate with applications and CV metadata.
func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	candidate, err := h.findCandidate(c.Request.Context(), c.Param("id"),
		"Applications", "Applications.Job", "CVs")
	if err != nil {
		respondLookupError(c, err, "candidate")
		return
	}

	applications := make([]gin.H, 0, len(candidate.Applications))
	for _, app := range candidate.Applications {
		applications = append(applications, gin.H{
			"id":         app.ID,
			"job_id":     app.JobID,
			"job_title":  app.Job.Title,
			"status":     app.Status,
			"applied_at": app.AppliedAt,
		})
	}
	cvs := make([]gin.H, 0, len(candidate.CVs))
	for _, cv := range candidate.CVs {
		cvs = append(cvs, gin.H{
			"id":           cv.ID,
			"file_name":    cv.FileName,
			"file_size":    cv.FileSize,
			"content_type": cv.ContentType,
			"uploaded_at":  cv.CreatedAt,
		})
	}

	resp := newCandidateResponse(*candidate)
	c.JSON(http.StatusOK, gin.H{
		"id":           resp.ID,
		"first_name":   resp.FirstName,
		"last_name":    resp.LastName,
		"email":        resp.Email,
		"phone":        resp.Phone,
		"status":       resp.Status,
		"skills":       resp.Skills,
		"created_at":   resp.CreatedAt,
		"applications": applications,
		"cvs":          cvs,
	})
}

// UpdateCandidate overwrites a candidate's fields.
func (h *CandidateHandler) UpdateCandidate(c *gin.Context) {
	var req candidateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	candidate, err := h.findCandidate(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "candidate")
		return
	}

	status := req.Status
	if status == "" {
		status = candidate.Status
	}
	skills, err := encodeSkills(req.Skills)
	if err != nil {
		BadRequest(c, "invalid skills")
		return
	}

	updates := map[string]any{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"email":      strings.ToLower(req.Email),
		"phone":      req.Phone,
		"status":     status,
		"skills":     skills,
	}
	if err := h.db.WithContext(ctx).Model(candidate).Updates(updates).Error; err != nil {
		Internal(c, "failed to update candidate")
		return
	}
	if err := h.db.WithContext(ctx).First(candidate, candidate.ID).Error; err != nil {
		Internal(c, "failed to reload candidate")
		return
	}

	h.activity.Record(c, "candidate.updated", "candidate", candidate.ID, nil)
	c.JSON(http.StatusOK, newCandidateResponse(*candidate))
}

// UpdateCandidateStatus changes only the status.
func (h *CandidateHandler) UpdateCandidateStatus(c *gin.Context) {
	var req struct {
		Status database.CandidateStatus `json:"status" binding:"required,oneof=LEAD CONTACTED INTERVIEWING PLACED REJECTED"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	candidate, err := h.findCandidate(ctx, c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "candidate")
		return
	}

	previous := candidate.Status
	if err := h.db.WithContext(ctx).Model(candidate).Update("status", req.Status).Error; err != nil {
		Internal(c, "failed to update candidate status")
		return
	}

	h.activity.Record(c, "candidate.status_changed", "candidate", candidate.ID, map[string]any{
		"from": previous,
		"to":   req.Status,
	})
	c.JSON(http.StatusOK, gin.H{"id": candidate.ID, "status": req.Status})
}

// DeleteCandidate soft-deletes a candidate.
func (h *CandidateHandler) DeleteCandidate(c *gin.Context) {
	candidate, err := h.findCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLookupError(c, err, "candidate")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&database.Candidate{}, candidate.ID).Error; err != nil {
		Internal(c, "failed to delete candidate")
		return
	}

	h.activity.Record(c, "candidate.deleted", "candidate", candidate.ID, nil)
	c.Status(http.StatusNoContent)
}

func (h *CandidateHandler) findCandidate(ctx context.Context, idParam string, preloads ...string) (*database.Candidate, error) {
	id, err := parseEntityID(idParam)
	if err != nil {
		return nil, err
	}

	query := h.db.WithContext(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var candidate database.Candidate
	if err := query.First(&candidate, id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}
