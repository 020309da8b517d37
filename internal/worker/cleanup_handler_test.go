package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/EvgeniyGal/hr-agency/internal/tasks"
)

type fakeDeleter struct {
	deleted []string
	err     error
}

func (f *fakeDeleter) DeleteObject(_ context.Context, objectKey string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func taskWithPayload(taskType string, payload []byte) *asynq.Task {
	return asynq.NewTask(taskType, payload)
}

func TestCVCleanupDeletesObject(t *testing.T) {
	deleter := &fakeDeleter{}
	h := NewCVCleanupTaskHandler(deleter, slog.Default())

	task, err := tasks.NewCVCleanupTask(tasks.CVCleanupPayload{
		CVID:      3,
		ObjectKey: "cvs/1/abc-resume.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process task: %v", err)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != "cvs/1/abc-resume.pdf" {
		t.Fatalf("unexpected deletions %v", deleter.deleted)
	}
}

func TestCVCleanupSurfacesStorageError(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("backend down")}
	h := NewCVCleanupTaskHandler(deleter, slog.Default())

	task, err := tasks.NewCVCleanupTask(tasks.CVCleanupPayload{
		CVID:      3,
		ObjectKey: "cvs/1/abc-resume.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := h.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected error to surface for retry")
	}
}
