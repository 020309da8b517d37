package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/report"
)

// ReportHandler serves aggregate counts and CSV exports.
type ReportHandler struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReportHandler builds the handler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db, now: time.Now}
}

// GetSummary returns the dashboard counters: entity totals plus
// per-status breakdowns.
func (h *ReportHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	db := h.db.WithContext(ctx)

	var clients, jobs, candidates, applications int64
	counts := []struct {
		model any
		dest  *int64
	}{
		{&database.Client{}, &clients},
		{&database.Job{}, &jobs},
		{&database.Candidate{}, &candidates},
		{&database.Application{}, &applications},
	}
	for _, ct := range counts {
		if err := db.Model(ct.model).Count(ct.dest).Error; err != nil {
			Internal(c, "failed to count records")
			return
		}
	}

	jobsByStatus, err := h.countByStatus(c, &database.Job{})
	if err != nil {
		return
	}
	candidatesByStatus, err := h.countByStatus(c, &database.Candidate{})
	if err != nil {
		return
	}
	applicationsByStatus, err := h.countByStatus(c, &database.Application{})
	if err != nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totals": gin.H{
			"clients":      clients,
			"jobs":         jobs,
			"candidates":   candidates,
			"applications": applications,
		},
		"jobs_by_status":         jobsByStatus,
		"candidates_by_status":   candidatesByStatus,
		"applications_by_status": applicationsByStatus,
	})
}

// ExportPlacements streams the HIRED applications as a CSV attachment.
func (h *ReportHandler) ExportPlacements(c *gin.Context) {
	var apps []database.Application
	err := h.db.WithContext(c.Request.Context()).
		Preload("Job").Preload("Job.Client").Preload("Candidate").
		Where("status = ?", database.ApplicationStatusHired).
		Order("updated_at DESC").
		Find(&apps).Error
	if err != nil {
		Internal(c, "failed to query placements")
		return
	}

	header := []string{"Candidate", "Position", "Client", "Applied", "Hired"}
	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, []string{
			app.Candidate.FirstName + " " + app.Candidate.LastName,
			app.Job.Title,
			app.Job.Client.Name,
			app.AppliedAt.Format("2006-01-02"),
			app.UpdatedAt.Format("2006-01-02"),
		})
	}

	body := report.RenderCSV(header, rows)
	fileName := report.Filename("placements", h.now())

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// countByStatus groups one model's live rows by status. It writes the
// error response itself and returns a non-nil error to stop the caller.
func (h *ReportHandler) countByStatus(c *gin.Context, model any) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := h.db.WithContext(c.Request.Context()).Model(model).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		Internal(c, "failed to aggregate by status")
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Status] = r.Count
	}
	return result, nil
}
