package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants keep queue producers and consumers in sync.
const (
	TypeActivityRecord = "activity:record"
	TypeCVCleanup      = "cv:cleanup"
)

// ActivityRecordPayload describes one audit-trail entry. Audit writes are
// enqueued after the main write succeeds and are not atomic with it.
type ActivityRecordPayload struct {
	UserID        uint           `json:"user_id"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      uint           `json:"entity_id"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CorrelationID string         `json:"correlation_id"`
}

// NewActivityRecordTask builds an audit-trail task.
func NewActivityRecordTask(p ActivityRecordPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeActivityRecord, payload), nil
}

// CVCleanupPayload names the blob to remove after a CV soft delete.
type CVCleanupPayload struct {
	CVID          uint   `json:"cv_id"`
	ObjectKey     string `json:"object_key"`
	CorrelationID string `json:"correlation_id"`
}

// NewCVCleanupTask builds a blob-cleanup task.
func NewCVCleanupTask(p CVCleanupPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCVCleanup, payload), nil
}
