package repository

import (
	"context"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RefundOutboxRepository persists failed compensating credit writes so they
// survive the request that produced them and can be retried by the worker.
type RefundOutboxRepository interface {
	Enqueue(ctx context.Context, profileID, lastError string) error
	ListPending(ctx context.Context, limit int) ([]model.CreditRefund, error)
	MarkDone(ctx context.Context, id int64) error
	// MarkFailed bumps the attempt counter; when abandon is set the entry is
	// parked permanently and no longer returned by ListPending.
	MarkFailed(ctx context.Context, id int64, lastError string, abandon bool) error
}

type refundOutboxRepo struct {
	pool *pgxpool.Pool
}

// NewRefundOutboxRepo creates a new RefundOutboxRepository.
func NewRefundOutboxRepo(pool *pgxpool.Pool) RefundOutboxRepository {
	return &refundOutboxRepo{pool: pool}
}

func (r *refundOutboxRepo) Enqueue(ctx context.Context, profileID, lastError string) error {
	const q = `
		INSERT INTO credit_refunds (profile_id, attempts, status, last_error)
		VALUES ($1, 0, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, q, profileID, model.RefundStatusPending, lastError); err != nil {
		return fmt.Errorf("enqueueing credit refund for profile %s: %w", profileID, err)
	}
	return nil
}

func (r *refundOutboxRepo) ListPending(ctx context.Context, limit int) ([]model.CreditRefund, error) {
	const q = `
		SELECT id, profile_id, attempts, status, last_error, created_at, updated_at
		FROM credit_refunds
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, q, model.RefundStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending credit refunds: %w", err)
	}
	defer rows.Close()

	var refunds []model.CreditRefund
	for rows.Next() {
		var cr model.CreditRefund
		if err := rows.Scan(
			&cr.ID,
			&cr.ProfileID,
			&cr.Attempts,
			&cr.Status,
			&cr.LastError,
			&cr.CreatedAt,
			&cr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning credit refund row: %w", err)
		}
		refunds = append(refunds, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credit refund rows: %w", err)
	}
	return refunds, nil
}

func (r *refundOutboxRepo) MarkDone(ctx context.Context, id int64) error {
	const q = `
		UPDATE credit_refunds
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, q, id, model.RefundStatusDone); err != nil {
		return fmt.Errorf("marking credit refund %d done: %w", id, err)
	}
	return nil
}

func (r *refundOutboxRepo) MarkFailed(ctx context.Context, id int64, lastError string, abandon bool) error {
	status := model.RefundStatusPending
	if abandon {
		status = model.RefundStatusAbandoned
	}
	const q = `
		UPDATE credit_refunds
		SET attempts = attempts + 1, status = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, q, id, status, lastError); err != nil {
		return fmt.Errorf("marking credit refund %d failed: %w", id, err)
	}
	return nil
}
