package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/tasks"
)

// ActivityTaskHandler persists audit-trail entries enqueued by the API.
type ActivityTaskHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewActivityTaskHandler builds the handler.
func NewActivityTaskHandler(db *gorm.DB, logger *slog.Logger) *ActivityTaskHandler {
	return &ActivityTaskHandler{db: db, logger: logger}
}

// ProcessTask appends one Activity row. Rows are append-only: this handler
// only ever inserts.
func (h *ActivityTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload tasks.ActivityRecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode activity payload: %w", err)
	}

	var metadata datatypes.JSON
	if payload.Metadata != nil {
		raw, err := json.Marshal(payload.Metadata)
		if err != nil {
			return fmt.Errorf("encode activity metadata: %w", err)
		}
		metadata = datatypes.JSON(raw)
	}

	activity := database.Activity{
		UserID:     payload.UserID,
		Action:     payload.Action,
		EntityType: payload.EntityType,
		EntityID:   payload.EntityID,
		Metadata:   metadata,
	}
	if err := h.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	h.logger.Info("activity recorded",
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("user_id", uint64(payload.UserID)),
		slog.String("action", payload.Action),
		slog.String("entity_type", payload.EntityType),
		slog.Uint64("entity_id", uint64(payload.EntityID)),
	)
	return nil
}
