package api

import (
	"net/http"
	"testing"

	"github.com/EvgeniyGal/hr-agency/internal/database"
)

// TestRecruitmentFlow walks one placement end to end: employer, open
// position, candidate, application, then an interview-stage move, the
// way the dashboard drives it.
func TestRecruitmentFlow(t *testing.T) {
	db := newTestDB(t)
	clients := NewClientHandler(db, nil)
	jobs := NewJobHandler(db, nil)
	candidates := NewCandidateHandler(db, nil)
	applications := NewApplicationHandler(db, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/clients", map[string]any{
		"name":     "Tech Corp",
		"industry": "Software",
	})
	clients.CreateClient(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("create client: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var clientResp struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &clientResp)

	c, w = newTestContext(t, http.MethodPost, "/v1/jobs", map[string]any{
		"title":     "Senior Frontend Developer",
		"status":    "OPEN",
		"client_id": clientResp.ID,
	})
	jobs.CreateJob(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("create job: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var jobResp struct {
		ID         uint   `json:"id"`
		Status     string `json:"status"`
		ClientName string `json:"client_name"`
	}
	decodeBody(t, w, &jobResp)
	if jobResp.Status != "OPEN" {
		t.Fatalf("expected OPEN got %s", jobResp.Status)
	}
	if jobResp.ClientName != "Tech Corp" {
		t.Fatalf("expected client name on job, got %q", jobResp.ClientName)
	}

	c, w = newTestContext(t, http.MethodPost, "/v1/candidates", map[string]any{
		"first_name": "John",
		"last_name":  "Doe",
		"email":      "john.doe@example.com",
		"skills":     []string{"React", "TypeScript"},
	})
	candidates.CreateCandidate(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("create candidate: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var candResp struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, w, &candResp)
	if candResp.Status != "LEAD" {
		t.Fatalf("new candidate should default to LEAD, got %s", candResp.Status)
	}

	c, w = newTestContext(t, http.MethodPost, "/v1/applications", map[string]any{
		"job_id":       jobResp.ID,
		"candidate_id": candResp.ID,
	})
	applications.CreateApplication(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("create application: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var appResp struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, w, &appResp)
	if appResp.Status != "APPLIED" {
		t.Fatalf("new application should default to APPLIED, got %s", appResp.Status)
	}

	c, w = newTestContext(t, http.MethodPatch, "/v1/applications/1/status", map[string]any{
		"status": "INTERVIEW",
	})
	setParam(c, "id", "1")
	applications.UpdateApplicationStatus(c)
	if w.Code != http.StatusOK {
		t.Fatalf("update status: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	job, w2 := newTestContext(t, http.MethodGet, "/v1/jobs/1", nil)
	setParam(job, "id", "1")
	jobs.GetJob(job)
	if w2.Code != http.StatusOK {
		t.Fatalf("get job: expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}
	var jobDetail struct {
		Applications []struct {
			CandidateName string `json:"candidate_name"`
			Status        string `json:"status"`
		} `json:"applications"`
	}
	decodeBody(t, w2, &jobDetail)
	if len(jobDetail.Applications) != 1 {
		t.Fatalf("expected 1 application on job, got %d", len(jobDetail.Applications))
	}
	if jobDetail.Applications[0].CandidateName != "John Doe" {
		t.Fatalf("expected John Doe, got %q", jobDetail.Applications[0].CandidateName)
	}
	if jobDetail.Applications[0].Status != "INTERVIEW" {
		t.Fatalf("expected INTERVIEW, got %q", jobDetail.Applications[0].Status)
	}
}

func TestCreateApplicationRejectsDuplicatePair(t *testing.T) {
	db := newTestDB(t)
	applications := NewApplicationHandler(db, nil)

	client := database.Client{Name: "Acme"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	job := database.Job{Title: "Backend Engineer", Status: database.JobStatusOpen, ClientID: client.ID}
	if err := db.Create(&job).Error; err != nil {
		t.Fatal(err)
	}
	candidate := database.Candidate{FirstName: "Jane", LastName: "Smith"}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatal(err)
	}

	body := map[string]any{"job_id": job.ID, "candidate_id": candidate.ID}

	c, w := newTestContext(t, http.MethodPost, "/v1/applications", body)
	applications.CreateApplication(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("first apply: expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	c, w = newTestContext(t, http.MethodPost, "/v1/applications", body)
	applications.CreateApplication(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("second apply: expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateJobRequiresExistingClient(t *testing.T) {
	db := newTestDB(t)
	jobs := NewJobHandler(db, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/jobs", map[string]any{
		"title":     "Ghost Position",
		"client_id": 999,
	})
	jobs.CreateJob(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestSoftDeletedCandidateDisappearsFromReads(t *testing.T) {
	db := newTestDB(t)
	candidates := NewCandidateHandler(db, nil)

	candidate := database.Candidate{FirstName: "Gone", LastName: "Soon"}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatal(err)
	}

	c, w := newTestContext(t, http.MethodDelete, "/v1/candidates/1", nil)
	setParam(c, "id", "1")
	candidates.DeleteCandidate(c)
	c.Writer.WriteHeaderNow()
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d body=%s", w.Code, w.Body.String())
	}

	c, w = newTestContext(t, http.MethodGet, "/v1/candidates/1", nil)
	setParam(c, "id", "1")
	candidates.GetCandidate(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404 got %d body=%s", w.Code, w.Body.String())
	}

	c, w = newTestContext(t, http.MethodGet, "/v1/candidates", nil)
	candidates.ListCandidates(c)
	var list []any
	decodeBody(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d items", len(list))
	}

	// The row itself survives with its deletion mark.
	var raw database.Candidate
	if err := db.Unscoped().First(&raw, candidate.ID).Error; err != nil {
		t.Fatalf("unscoped load: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Fatal("expected DeletedAt to be set")
	}
}

