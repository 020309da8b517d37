package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
)

func seedPlacement(t *testing.T, db *gorm.DB, status database.ApplicationStatus) {
	t.Helper()
	client := database.Client{Name: "Tech Corp"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	job := database.Job{Title: "Senior Frontend Developer", Status: database.JobStatusOpen, ClientID: client.ID}
	if err := db.Create(&job).Error; err != nil {
		t.Fatal(err)
	}
	candidate := database.Candidate{FirstName: "John", LastName: "Doe"}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatal(err)
	}
	app := database.Application{JobID: job.ID, CandidateID: candidate.ID, Status: status}
	if err := db.Create(&app).Error; err != nil {
		t.Fatal(err)
	}
}

func TestGetSummaryCounts(t *testing.T) {
	db := newTestDB(t)
	seedPlacement(t, db, database.ApplicationStatusHired)
	h := NewReportHandler(db)

	c, w := newTestContext(t, http.MethodGet, "/v1/reports/summary", nil)
	h.GetSummary(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Totals struct {
			Clients      int64 `json:"clients"`
			Jobs         int64 `json:"jobs"`
			Candidates   int64 `json:"candidates"`
			Applications int64 `json:"applications"`
		} `json:"totals"`
		ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	}
	decodeBody(t, w, &resp)
	if resp.Totals.Clients != 1 || resp.Totals.Jobs != 1 || resp.Totals.Candidates != 1 || resp.Totals.Applications != 1 {
		t.Fatalf("unexpected totals %+v", resp.Totals)
	}
	if resp.ApplicationsByStatus["HIRED"] != 1 {
		t.Fatalf("expected one HIRED application, got %+v", resp.ApplicationsByStatus)
	}
}

func TestExportPlacementsCSV(t *testing.T) {
	db := newTestDB(t)
	seedPlacement(t, db, database.ApplicationStatusHired)
	seedPlacement2(t, db, database.ApplicationStatusScreening)

	h := NewReportHandler(db)
	h.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	c, w := newTestContext(t, http.MethodGet, "/v1/reports/placements.csv", nil)
	h.ExportPlacements(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	disposition := w.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, `filename="placements_2026-03-14.csv"`) {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := w.Body.String()
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	if lines[0] != "Candidate,Position,Client,Applied,Hired" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	// Only the hired application is exported, and its fields are quoted.
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines: %q", len(lines), body)
	}
	if !strings.HasPrefix(lines[1], `"John Doe","Senior Frontend Developer","Tech Corp"`) {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

// seedPlacement2 adds a second, non-hired pipeline so exports have
// something to filter out.
func seedPlacement2(t *testing.T, db *gorm.DB, status database.ApplicationStatus) {
	t.Helper()
	client := database.Client{Name: "Other Co"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	job := database.Job{Title: "Designer", Status: database.JobStatusOpen, ClientID: client.ID}
	if err := db.Create(&job).Error; err != nil {
		t.Fatal(err)
	}
	candidate := database.Candidate{FirstName: "Jane", LastName: "Smith"}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatal(err)
	}
	app := database.Application{JobID: job.ID, CandidateID: candidate.ID, Status: status}
	if err := db.Create(&app).Error; err != nil {
		t.Fatal(err)
	}
}
