package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionSweepHandler deletes expired session records. Redis expires the live
// sessions on its own; this keeps the postgres mirror from growing unbounded.
type SessionSweepHandler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSessionSweepHandler constructs the sweep handler.
func NewSessionSweepHandler(pool *pgxpool.Pool, logger *slog.Logger) *SessionSweepHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionSweepHandler{pool: pool, logger: logger}
}

// Handle processes TaskTypeSessionSweep tasks.
func (h *SessionSweepHandler) Handle(ctx context.Context, t *asynq.Task) error {
	tag, err := h.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return err
	}
	if removed := tag.RowsAffected(); removed > 0 {
		h.logger.Info("session sweep", slog.Int64("removed", removed))
	}
	return nil
}
