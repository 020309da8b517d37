package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/EvgeniyGal/hr-agency/internal/api/middleware"
	"github.com/EvgeniyGal/hr-agency/internal/tasks"
)

// ActivityRecorder enqueues audit-trail entries after successful
// mutations. The enqueue is fire-and-forget: the main write is already
// durable, and a lost audit entry never fails the request.
type ActivityRecorder struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewActivityRecorder builds the recorder. A nil asynq client disables
// recording (tests).
func NewActivityRecorder(client *asynq.Client, logger *slog.Logger) *ActivityRecorder {
	return &ActivityRecorder{client: client, logger: logger}
}

// Record enqueues one audit entry for the current principal.
func (r *ActivityRecorder) Record(c *gin.Context, action, entityType string, entityID uint, metadata map[string]any) {
	if r == nil || r.client == nil {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	task, err := tasks.NewActivityRecordTask(tasks.ActivityRecordPayload{
		UserID:        userID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Metadata:      metadata,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		r.logger.Warn("build activity task failed", slog.Any("error", err))
		return
	}
	if _, err := r.client.Enqueue(task, asynq.MaxRetry(3)); err != nil {
		r.logger.Warn("enqueue activity task failed",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
