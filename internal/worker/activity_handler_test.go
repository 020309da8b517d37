package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Activity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestActivityTaskInsertsRow(t *testing.T) {
	db := newTestDB(t)
	h := NewActivityTaskHandler(db, slog.Default())

	task, err := tasks.NewActivityRecordTask(tasks.ActivityRecordPayload{
		UserID:     7,
		Action:     "job.created",
		EntityType: "job",
		EntityID:   42,
		Metadata:   map[string]any{"title": "Backend Engineer"},
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process task: %v", err)
	}

	var activity database.Activity
	if err := db.First(&activity).Error; err != nil {
		t.Fatalf("load activity: %v", err)
	}
	if activity.UserID != 7 || activity.Action != "job.created" || activity.EntityID != 42 {
		t.Fatalf("unexpected row %+v", activity)
	}

	var metadata map[string]any
	if err := json.Unmarshal(activity.Metadata, &metadata); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if metadata["title"] != "Backend Engineer" {
		t.Fatalf("metadata lost: %+v", metadata)
	}
}

func TestActivityTaskRejectsBadPayload(t *testing.T) {
	db := newTestDB(t)
	h := NewActivityTaskHandler(db, slog.Default())

	task, err := tasks.NewActivityRecordTask(tasks.ActivityRecordPayload{UserID: 1, Action: "noop"})
	if err != nil {
		t.Fatal(err)
	}
	broken := taskWithPayload(task.Type(), []byte("{not json"))

	if err := h.ProcessTask(context.Background(), broken); err == nil {
		t.Fatal("expected decode error")
	}

	var count int64
	if err := db.Model(&database.Activity{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatal("bad payload must not insert a row")
	}
}
