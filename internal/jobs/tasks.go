// Package jobs queues and processes background work on Redis through asynq.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeLeadNotify = "lead:notify"
	TaskTypeLeadSweep  = "lead:sweep"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// DefaultQueues weights the queues when none are configured.
var DefaultQueues = map[string]int{QueueCritical: 6, QueueDefault: 3, QueueLow: 1}

// Kinds of records a notification can refer to.
const (
	KindLead    = "lead"
	KindContact = "contact"
)

// LeadNotifyPayload points the notifier at a stored lead or contact request.
type LeadNotifyPayload struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

func NewLeadNotifyTask(kind string, id int64) (*asynq.Task, error) {
	payload, err := json.Marshal(LeadNotifyPayload{Kind: kind, ID: id})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskTypeLeadNotify,
		payload,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(5),
		asynq.TaskID(fmt.Sprintf("notify:%s:%d", kind, id)),
	), nil
}

func NewLeadSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLeadSweep, nil, asynq.Queue(QueueLow), asynq.MaxRetry(1))
}
