package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/EvgeniyGal/hr-agency/internal/tasks"
)

// ObjectDeleter is the slice of the storage client the cleanup worker
// needs. Deletes are idempotent: a missing object is success.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, objectKey string) error
}

// CVCleanupTaskHandler removes the underlying blob after a CV row is
// soft-deleted. The row stays; only the object goes away.
type CVCleanupTaskHandler struct {
	storage ObjectDeleter
	logger  *slog.Logger
}

// NewCVCleanupTaskHandler builds the handler.
func NewCVCleanupTaskHandler(storage ObjectDeleter, logger *slog.Logger) *CVCleanupTaskHandler {
	return &CVCleanupTaskHandler{storage: storage, logger: logger}
}

// ProcessTask deletes one object. Failures are retried by asynq.
func (h *CVCleanupTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload tasks.CVCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode cv cleanup payload: %w", err)
	}

	if err := h.storage.DeleteObject(ctx, payload.ObjectKey); err != nil {
		return fmt.Errorf("delete cv object %q: %w", payload.ObjectKey, err)
	}

	h.logger.Info("cv object removed",
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("cv_id", uint64(payload.CVID)),
		slog.String("object_key", payload.ObjectKey),
	)
	return nil
}
