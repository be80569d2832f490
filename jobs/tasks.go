package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSyncPush uploads the full local state to the remote endpoint.
	TaskSyncPush = "sync:push"
	// TaskSyncPull refreshes products and customers from the remote.
	TaskSyncPull = "sync:pull"
)

// SyncPayload carries optional overrides for a scheduled sync run.
type SyncPayload struct {
	// Reason is recorded in the job log: "cron", "manual", "startup".
	Reason string `json:"reason"`
}

// NewSyncPushTask constructs the push task.
func NewSyncPushTask(payload SyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncPush, data), nil
}

// NewSyncPullTask constructs the pull task.
func NewSyncPullTask(payload SyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncPull, data), nil
}
