package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/model"
)

// claimLease is how long a claimed batch stays invisible to other workers
// before it becomes due again.
const claimLease = time.Minute

type OutboxRepo struct {
	pool *pgxpool.Pool
}

func NewOutboxRepo(pool *pgxpool.Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// EnqueueTx writes an outbox row in the caller's transaction, so the event
// commits or rolls back together with the primary write.
func (r *OutboxRepo) EnqueueTx(ctx context.Context, tx pgx.Tx, eventID, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO outbox (event_id, kind, payload, attempts, next_attempt_at, status, created_at)
VALUES ($1, $2, $3, 0, NOW(), 'pending', NOW())
`, eventID, kind, body); err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}

	return nil
}

// ClaimDue leases up to limit due events. SKIP LOCKED keeps concurrent
// workers from claiming the same rows; the lease makes a crashed worker's
// claim expire on its own.
func (r *OutboxRepo) ClaimDue(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
UPDATE outbox
SET attempts = attempts + 1, next_attempt_at = NOW() + $2::interval
WHERE id IN (
	SELECT id FROM outbox
	WHERE status = 'pending' AND next_attempt_at <= NOW()
	ORDER BY id
	LIMIT $1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, event_id, kind, payload, attempts, next_attempt_at, created_at
`, limit, claimLease.String())
	if err != nil {
		return nil, fmt.Errorf("claim due outbox events: %w", err)
	}
	defer rows.Close()

	events := make([]model.OutboxEvent, 0)
	for rows.Next() {
		var ev model.OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.Kind, &ev.Payload, &ev.Attempts, &ev.NextAttemptAt, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", rows.Err())
	}

	return events, nil
}

func (r *OutboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE outbox
SET status = 'done', processed_at = NOW()
WHERE id = $1
`, id); err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}

	return nil
}

func (r *OutboxRepo) Reschedule(ctx context.Context, id int64, nextAttemptAt time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE outbox
SET next_attempt_at = $2
WHERE id = $1 AND status = 'pending'
`, id, nextAttemptAt.UTC()); err != nil {
		return fmt.Errorf("reschedule outbox event: %w", err)
	}

	return nil
}

// Park takes a poisoned event out of rotation after it exhausts its
// attempts. Parked rows stay queryable for operators.
func (r *OutboxRepo) Park(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE outbox
SET status = 'parked', processed_at = NOW()
WHERE id = $1
`, id); err != nil {
		return fmt.Errorf("park outbox event: %w", err)
	}

	return nil
}
