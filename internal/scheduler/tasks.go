package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSessionExpire = "dispatch.session.expire"

// SessionExpirePayload identifies the conversation to expire.
type SessionExpirePayload struct {
	RequestID string `json:"requestId"`
}

func NewSessionExpireTask(payload SessionExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionExpire, data), nil
}

func ParseSessionExpirePayload(task *asynq.Task) (SessionExpirePayload, error) {
	var payload SessionExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SessionExpirePayload{}, err
	}
	return payload, nil
}
