package jobs

import (
	"context"
	"log/slog"

	"github.com/vantage-admin/vantage/internal/ledger"
)

// Notifier bridges ledger mutations to the task queue. Enqueue failures are
// logged and swallowed so a Redis hiccup never fails a grant.
type Notifier struct {
	client *Client
	logger *slog.Logger
}

// NewNotifier constructs a Notifier around a queue client.
func NewNotifier(client *Client, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{client: client, logger: logger}
}

// NotifyPermissionChange enqueues a fanout task for the mutation.
func (n *Notifier) NotifyPermissionChange(ctx context.Context, record ledger.GrantRevokeRecord) {
	if n == nil || n.client == nil {
		return
	}
	_, err := n.client.EnqueuePermissionChanged(ctx, PermissionChangedPayload{
		UserID:     record.UserID,
		Permission: record.Permission,
		Action:     record.Action,
		Reason:     record.Reason,
		ActorID:    record.ActorID,
	})
	if err != nil {
		n.logger.Warn("enqueue permission change",
			slog.Int64("user_id", record.UserID),
			slog.String("action", record.Action),
			slog.Any("error", err))
	}
}

var _ ledger.Notifier = (*Notifier)(nil)
