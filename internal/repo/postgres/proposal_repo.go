package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

const proposalColumns = `id, sender_id, receiver_id, status, message, created_at, responded_at`

// CreateTx inserts a proposal after verifying no SENT proposal exists
// between the pair in either direction. Runs in the caller's transaction
// so the duplicate check, the insert, and the outbox rows commit together.
// Concurrent sends for the same pair are serialized on the two user rows;
// locking proposal rows alone would not help, since a pair with no open
// proposal has no row to lock and both inserts would pass the check.
func (r *ProposalRepo) CreateTx(ctx context.Context, tx pgx.Tx, senderID, receiverID int64, message string) (model.Proposal, error) {
	rows, err := tx.Query(ctx, `
SELECT id
FROM users
WHERE id IN ($1, $2)
ORDER BY id
FOR UPDATE
`, senderID, receiverID)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("lock proposal pair: %w", err)
	}
	locked := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return model.Proposal{}, fmt.Errorf("scan locked user id: %w", err)
		}
		locked++
	}
	rows.Close()
	if rows.Err() != nil {
		return model.Proposal{}, fmt.Errorf("iterate locked user ids: %w", rows.Err())
	}
	if locked != 2 {
		return model.Proposal{}, ErrUserNotFound
	}

	var existing int64
	err = tx.QueryRow(ctx, `
SELECT id
FROM proposals
WHERE status = 'SENT'
  AND ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
LIMIT 1
`, senderID, receiverID).Scan(&existing)
	if err == nil {
		return model.Proposal{}, ErrDuplicateProposal
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Proposal{}, fmt.Errorf("check duplicate proposal: %w", err)
	}

	row := tx.QueryRow(ctx, `
INSERT INTO proposals (sender_id, receiver_id, status, message, created_at)
VALUES ($1, $2, 'SENT', $3, NOW())
RETURNING `+proposalColumns, senderID, receiverID, message)

	proposal, err := scanProposal(row)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("insert proposal: %w", err)
	}

	return proposal, nil
}

// GetTx locks the proposal row for a status transition.
func (r *ProposalRepo) GetTx(ctx context.Context, tx pgx.Tx, proposalID int64) (model.Proposal, error) {
	row := tx.QueryRow(ctx, `
SELECT `+proposalColumns+`
FROM proposals
WHERE id = $1
FOR UPDATE
`, proposalID)

	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Proposal{}, ErrProposalNotFound
		}
		return model.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}

	return proposal, nil
}

func (r *ProposalRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, proposalID int64, status enums.ProposalStatus, respondedAt time.Time) (model.Proposal, error) {
	row := tx.QueryRow(ctx, `
UPDATE proposals
SET status = $2, responded_at = $3
WHERE id = $1
RETURNING `+proposalColumns, proposalID, string(status), respondedAt.UTC())

	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Proposal{}, ErrProposalNotFound
		}
		return model.Proposal{}, fmt.Errorf("update proposal status: %w", err)
	}

	return proposal, nil
}

func (r *ProposalRepo) ListBySender(ctx context.Context, senderID int64, limit, offset int) ([]model.Proposal, error) {
	return r.list(ctx, `
SELECT `+proposalColumns+`
FROM proposals
WHERE sender_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, senderID, limit, offset)
}

func (r *ProposalRepo) ListByReceiver(ctx context.Context, receiverID int64, limit, offset int) ([]model.Proposal, error) {
	return r.list(ctx, `
SELECT `+proposalColumns+`
FROM proposals
WHERE receiver_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, receiverID, limit, offset)
}

func (r *ProposalRepo) list(ctx context.Context, query string, userID int64, limit, offset int) ([]model.Proposal, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	proposals := make([]model.Proposal, 0)
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, proposal)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate proposals: %w", rows.Err())
	}

	return proposals, nil
}

func scanProposal(row pgx.Row) (model.Proposal, error) {
	var p model.Proposal
	err := row.Scan(
		&p.ID, &p.SenderID, &p.ReceiverID, &p.Status, &p.Message,
		&p.CreatedAt, &p.RespondedAt,
	)
	return p, err
}
