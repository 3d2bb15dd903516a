package menu

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Price        int64
	Available    bool
	UpdatedAt    time.Time
}

// ItemRequest is a line-item reference as submitted by a client.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// PricedItem is a validated line item with the catalog's current name
// and price filled in.
type PricedItem struct {
	ProductID uuid.UUID
	Name      string
	Price     int64
	Quantity  int
}
