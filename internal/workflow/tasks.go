package workflow

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadProcessing = "workflow.lead_processing"

func NewLeadProcessingTask(payload LeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// The workflow engine owns retries; a failed trigger is recorded, not retried.
	return asynq.NewTask(TaskLeadProcessing, data, asynq.MaxRetry(0)), nil
}

func ParseLeadProcessingPayload(task *asynq.Task) (LeadPayload, error) {
	var payload LeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadPayload{}, err
	}
	return payload, nil
}
