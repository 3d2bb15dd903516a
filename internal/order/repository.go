package order

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order, entry HistoryEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	UpdateStatus(ctx context.Context, o *Order, expectedStatus Status, expectedVersion int64, entry HistoryEntry) error
	ReplaceItems(ctx context.Context, o *Order, expectedVersion int64, entry HistoryEntry) error
	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]*HistoryEntry, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create persists the order, its items and the first audit entry in one
// transaction.
func (r *repository) Create(ctx context.Context, o *Order, entry HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, number, customer_id, restaurant_id,
			subtotal, delivery_fee, tax, total,
			delivery_address, phone, instructions,
			payment_method, payment_status,
			scheduled, scheduled_at,
			status, can_cancel, can_modify, cancel_reason,
			cancellation_deadline, modification_deadline,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`,
		o.ID, o.Number, o.CustomerID, o.RestaurantID,
		o.Subtotal, o.DeliveryFee, o.Tax, o.Total,
		o.DeliveryAddress, o.Phone, o.Instructions,
		o.PaymentMethod, o.PaymentStatus,
		o.Scheduled, o.ScheduledAt,
		o.Status, o.CanCancel, o.CanModify, o.CancelReason,
		o.CancellationDeadline, o.ModificationDeadline,
		o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	if err := appendHistory(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, items []Item) error {
	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, name, price, quantity
			) VALUES ($1,$2,$3,$4,$5)
		`, orderID, it.ProductID, it.Name, it.Price, it.Quantity)
		if err != nil {
			return err
		}
	}
	return nil
}

func appendHistory(ctx context.Context, tx *sql.Tx, entry HistoryEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (
			order_id, status, note, changed_by, changed_at
		) VALUES ($1,$2,$3,$4,$5)
	`, entry.OrderID, entry.Status, entry.Note, entry.ChangedBy, entry.ChangedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.get(ctx, `WHERE number = $1`, number)
}

func (r *repository) get(ctx context.Context, where string, arg interface{}) (*Order, error) {
	query := `
		SELECT id, number, customer_id, restaurant_id,
		       subtotal, delivery_fee, tax, total,
		       delivery_address, phone, instructions,
		       payment_method, payment_status,
		       scheduled, scheduled_at,
		       status, can_cancel, can_modify, cancel_reason,
		       cancellation_deadline, modification_deadline,
		       version, created_at, updated_at
		FROM orders
	` + where

	var o Order
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.RestaurantID,
		&o.Subtotal, &o.DeliveryFee, &o.Tax, &o.Total,
		&o.DeliveryAddress, &o.Phone, &o.Instructions,
		&o.PaymentMethod, &o.PaymentStatus,
		&o.Scheduled, &o.ScheduledAt,
		&o.Status, &o.CanCancel, &o.CanModify, &o.CancelReason,
		&o.CancellationDeadline, &o.ModificationDeadline,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.getItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) getItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// UpdateStatus applies a status mutation with a compare-and-swap on the
// pre-state. Zero rows affected means another writer got there first;
// callers have already resolved the order id, so that is reported as
// ErrStatusConflict, never as not-found. The audit entry lands in the
// same transaction, so readers never observe a half-applied transition.
func (r *repository) UpdateStatus(ctx context.Context, o *Order, expectedStatus Status, expectedVersion int64, entry HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, can_cancel = $3, can_modify = $4,
		    cancel_reason = $5, payment_status = $6,
		    updated_at = $7, version = version + 1
		WHERE id = $1 AND status = $8 AND version = $9
	`,
		o.ID, o.Status, o.CanCancel, o.CanModify,
		o.CancelReason, o.PaymentStatus,
		o.UpdatedAt, expectedStatus, expectedVersion,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	if err := appendHistory(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	o.Version = expectedVersion + 1
	return nil
}

// ReplaceItems swaps the order's line items and totals. Status is part
// of neither the update nor the guard; the version check alone
// serializes modifications against concurrent transitions.
func (r *repository) ReplaceItems(ctx context.Context, o *Order, expectedVersion int64, entry HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET subtotal = $2, total = $3, updated_at = $4,
		    version = version + 1
		WHERE id = $1 AND version = $5
	`, o.ID, o.Subtotal, o.Total, o.UpdatedAt, expectedVersion)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID)
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return err
	}

	if err := appendHistory(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	o.Version = expectedVersion + 1
	return nil
}

func (r *repository) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]*HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, note, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Note, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
