package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePermissionChanged fans out permission/role mutation events.
	TaskTypePermissionChanged = "authz:permission_changed"
	// TaskTypeSessionSweep purges expired session records from postgres.
	TaskTypeSessionSweep = "authz:session_sweep"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP once a mail provider is picked.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// PermissionChangedPayload describes a permission or role mutation event.
type PermissionChangedPayload struct {
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission,omitempty"`
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
	ActorID    int64  `json:"actor_id"`
}

// NewPermissionChangedTask constructs an Asynq task for a mutation event.
func NewPermissionChangedTask(payload PermissionChangedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePermissionChanged, data), nil
}

// NewSessionSweepTask constructs the periodic session sweep task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionSweep, nil)
}
