package refund

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, r *Refund) error
	GetByID(ctx context.Context, id uuid.UUID) (*Refund, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Refund, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, resolvedBy string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, ref *Refund) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refunds (
			id, order_id, amount, reason,
			requested_by, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		ref.ID,
		ref.OrderID,
		ref.Amount,
		ref.Reason,
		ref.RequestedBy,
		ref.Status,
		ref.CreatedAt,
		ref.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Refund, error) {
	return r.get(ctx, `
		SELECT id, order_id, amount, reason, requested_by,
		       COALESCE(resolved_by, ''), status, created_at, updated_at
		FROM refunds
		WHERE id = $1
	`, id)
}

func (r *repository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Refund, error) {
	return r.get(ctx, `
		SELECT id, order_id, amount, reason, requested_by,
		       COALESCE(resolved_by, ''), status, created_at, updated_at
		FROM refunds
		WHERE order_id = $1
	`, orderID)
}

func (r *repository) get(ctx context.Context, query string, arg interface{}) (*Refund, error) {
	var ref Refund
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&ref.ID,
		&ref.OrderID,
		&ref.Amount,
		&ref.Reason,
		&ref.RequestedBy,
		&ref.ResolvedBy,
		&ref.Status,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrRefundNotFound
	}
	if err != nil {
		return nil, err
	}

	return &ref, nil
}

// UpdateStatus moves a refund from one status to another. The expected
// current status is part of the WHERE clause so concurrent resolutions
// cannot both apply.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, resolvedBy string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refunds
		SET status = $3, resolved_by = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, resolvedBy)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if from == StatusPending {
			return ErrRefundNotPending
		}
		return ErrRefundNotApproved
	}

	return nil
}
