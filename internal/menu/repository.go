package menu

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type Repository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price int64) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, restaurant_id, name, price, available, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.RestaurantID, &p.Name, &p.Price, &p.Available, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) UpdatePrice(ctx context.Context, id uuid.UUID, price int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET price = $2, updated_at = NOW()
		WHERE id = $1
	`, id, price)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *repository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET available = $2, updated_at = NOW()
		WHERE id = $1
	`, id, available)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	return nil
}
