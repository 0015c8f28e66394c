package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PermissionChangedHandler notifies users about changes to their access.
type PermissionChangedHandler struct {
	pool   *pgxpool.Pool
	client *Client
	logger *slog.Logger
}

// NewPermissionChangedHandler constructs the handler. The client may be nil,
// in which case no follow-up email is enqueued.
func NewPermissionChangedHandler(pool *pgxpool.Pool, client *Client, logger *slog.Logger) *PermissionChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionChangedHandler{pool: pool, client: client, logger: logger}
}

// Handle processes TaskTypePermissionChanged tasks by resolving the affected
// user and queueing a notification email.
func (h *PermissionChangedHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PermissionChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var email, name string
	err := h.pool.QueryRow(ctx, `SELECT email, name FROM users WHERE id = $1`, payload.UserID).
		Scan(&email, &name)
	if err != nil {
		// The user may have been deleted between the mutation and this job.
		h.logger.Warn("permission change notify: lookup user",
			slog.Int64("user_id", payload.UserID), slog.Any("error", err))
		return nil
	}

	h.logger.Info("permission change processed",
		slog.Int64("user_id", payload.UserID),
		slog.String("action", payload.Action),
		slog.String("permission", payload.Permission))

	if h.client == nil {
		return nil
	}
	subject := "Your access has changed"
	body := fmt.Sprintf("Hi %s, an administrator updated your access (%s).", name, payload.Action)
	if payload.Permission != "" {
		body = fmt.Sprintf("Hi %s, an administrator updated your access (%s: %s).", name, payload.Action, payload.Permission)
	}
	if _, err := h.client.EnqueueSendEmail(ctx, SendEmailPayload{To: email, Subject: subject, Body: body}); err != nil {
		return err
	}
	return nil
}
