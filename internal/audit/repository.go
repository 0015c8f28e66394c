package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WindowParams narrows the timeline query to one page of results.
type WindowParams struct {
	From   time.Time
	To     time.Time
	Actor  string
	Entity string
	Action string
	Offset int32
	Limit  int32
}

// Repository reads audit entries from postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs an audit Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Window returns one page of timeline rows, newest first. Empty string
// filters match all values; the caller passes limit = pageSize+1 to probe
// for a next page.
func (r *Repository) Window(ctx context.Context, params WindowParams) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.created_at, a.actor_id, COALESCE(u.email, ''), a.action, a.entity, a.entity_id, a.meta
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE a.created_at >= $1 AND a.created_at < $2
		  AND ($3 = '' OR u.email = $3)
		  AND ($4 = '' OR a.entity = $4)
		  AND ($5 = '' OR a.action = $5)
		ORDER BY a.created_at DESC, a.id DESC
		OFFSET $6 LIMIT $7`,
		params.From.UTC(), params.To.UTC(), params.Actor, params.Entity, params.Action,
		params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimelineRows(rows)
}

// All returns every timeline row matching the filters, newest first. Used by
// CSV export.
func (r *Repository) All(ctx context.Context, params WindowParams) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.created_at, a.actor_id, COALESCE(u.email, ''), a.action, a.entity, a.entity_id, a.meta
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE a.created_at >= $1 AND a.created_at < $2
		  AND ($3 = '' OR u.email = $3)
		  AND ($4 = '' OR a.entity = $4)
		  AND ($5 = '' OR a.action = $5)
		ORDER BY a.created_at DESC, a.id DESC`,
		params.From.UTC(), params.To.UTC(), params.Actor, params.Entity, params.Action)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTimelineRows(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTimelineRows(rows pgxRows) ([]TimelineRow, error) {
	var result []TimelineRow
	for rows.Next() {
		var (
			row  TimelineRow
			meta []byte
		)
		if err := rows.Scan(&row.At, &row.ActorID, &row.Actor, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &row.Meta); err != nil {
				return nil, err
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
