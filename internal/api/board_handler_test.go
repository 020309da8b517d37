package api

import (
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
)

func seedBoardJobs(t *testing.T, db *gorm.DB) {
	t.Helper()
	client := database.Client{Name: "Acme"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	for _, job := range []database.Job{
		{Title: "First", Status: database.JobStatusDraft, ClientID: client.ID},
		{Title: "Second", Status: database.JobStatusOpen, ClientID: client.ID},
	} {
		if err := db.Create(&job).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func TestGetBoardSnapshot(t *testing.T) {
	db := newTestDB(t)
	seedBoardJobs(t, db)
	h := NewBoardHandler(db, nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/v1/boards/jobs", nil)
	setParam(c, "type", "jobs")
	h.GetBoard(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Board   string `json:"board"`
		Columns []struct {
			ID    string `json:"id"`
			Cards []any  `json:"cards"`
		} `json:"columns"`
	}
	decodeBody(t, w, &resp)
	if resp.Board != "jobs" {
		t.Fatalf("unexpected board %q", resp.Board)
	}
	if len(resp.Columns) != 4 {
		t.Fatalf("expected 4 job columns, got %d", len(resp.Columns))
	}
	if resp.Columns[0].ID != "DRAFT" || resp.Columns[1].ID != "OPEN" {
		t.Fatalf("columns out of order: %v", resp.Columns)
	}
	if len(resp.Columns[0].Cards) != 1 || len(resp.Columns[1].Cards) != 1 {
		t.Fatalf("cards misplaced: %v", resp.Columns)
	}
}

func TestGetBoardUnknownType(t *testing.T) {
	db := newTestDB(t)
	h := NewBoardHandler(db, nil, nil)

	c, w := newTestContext(t, http.MethodGet, "/v1/boards/sprints", nil)
	setParam(c, "type", "sprints")
	h.GetBoard(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestMoveCardPersistsStatus(t *testing.T) {
	db := newTestDB(t)
	seedBoardJobs(t, db)
	h := NewBoardHandler(db, nil, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/boards/jobs/move", map[string]any{
		"item_id":     "1",
		"destination": "OPEN",
	})
	setParam(c, "type", "jobs")
	h.MoveCard(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Moved bool   `json:"moved"`
		From  string `json:"from"`
		To    string `json:"to"`
	}
	decodeBody(t, w, &resp)
	if !resp.Moved || resp.From != "DRAFT" || resp.To != "OPEN" {
		t.Fatalf("unexpected move result %+v", resp)
	}

	var job database.Job
	if err := db.First(&job, 1).Error; err != nil {
		t.Fatal(err)
	}
	if job.Status != database.JobStatusOpen {
		t.Fatalf("status not persisted, got %s", job.Status)
	}
}

// A drop that resolves to the card's own column must not hit the store
// or report a move.
func TestMoveCardSameColumnIsNoop(t *testing.T) {
	db := newTestDB(t)
	seedBoardJobs(t, db)
	h := NewBoardHandler(db, nil, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/boards/jobs/move", map[string]any{
		"item_id":     "1",
		"destination": "DRAFT",
	})
	setParam(c, "type", "jobs")
	h.MoveCard(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Moved bool `json:"moved"`
	}
	decodeBody(t, w, &resp)
	if resp.Moved {
		t.Fatal("same-column drop must be a no-op")
	}

	var job database.Job
	if err := db.First(&job, 1).Error; err != nil {
		t.Fatal(err)
	}
	if job.Status != database.JobStatusDraft {
		t.Fatalf("no-op changed status to %s", job.Status)
	}
}

// Dropping on another card moves into that card's column.
func TestMoveCardOntoCardResolvesColumn(t *testing.T) {
	db := newTestDB(t)
	seedBoardJobs(t, db)
	h := NewBoardHandler(db, nil, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/boards/jobs/move", map[string]any{
		"item_id":     "1",
		"destination": "2",
	})
	setParam(c, "type", "jobs")
	h.MoveCard(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var job database.Job
	if err := db.First(&job, 1).Error; err != nil {
		t.Fatal(err)
	}
	if job.Status != database.JobStatusOpen {
		t.Fatalf("expected OPEN after dropping onto card 2, got %s", job.Status)
	}
}

func TestMoveCardUnknownItem(t *testing.T) {
	db := newTestDB(t)
	seedBoardJobs(t, db)
	h := NewBoardHandler(db, nil, nil)

	c, w := newTestContext(t, http.MethodPost, "/v1/boards/jobs/move", map[string]any{
		"item_id":     "999",
		"destination": "OPEN",
	})
	setParam(c, "type", "jobs")
	h.MoveCard(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}
}
