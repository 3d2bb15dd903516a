package order

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Cancellation and modification windows, measured from order creation.
const (
	CancellationWindow = 10 * time.Minute
	ModificationWindow = 15 * time.Minute
)

type Order struct {
	ID           uuid.UUID
	Number       string
	CustomerID   uuid.UUID
	RestaurantID uuid.UUID
	Items        []Item

	Subtotal    int64
	DeliveryFee int64
	Tax         int64
	Total       int64

	DeliveryAddress string
	Phone           string
	Instructions    string

	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus

	Scheduled   bool
	ScheduledAt *time.Time

	Status       Status
	CanCancel    bool
	CanModify    bool
	CancelReason string

	CancellationDeadline time.Time
	ModificationDeadline time.Time

	// Version guards the read-check-write cycle; every persisted
	// mutation increments it.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ProductID uuid.UUID
	Name      string
	Price     int64
	Quantity  int
}

// HistoryEntry is one record of the append-only status audit trail.
type HistoryEntry struct {
	ID        int64
	OrderID   uuid.UUID
	Status    Status
	Note      string
	ChangedBy string
	ChangedAt time.Time
}

// ApplyStatus moves the order into next and recomputes the derived
// permission flags. Callers must have validated the transition.
func (o *Order) ApplyStatus(next Status, now time.Time) {
	o.Status = next
	o.CanCancel = next.AllowsCancel()
	o.CanModify = next.AllowsModify()
	o.UpdatedAt = now
}

// CancellationOpen checks the time window for cancellation. While the
// order is still placed the deadline is bypassed and the flag alone
// governs.
func (o *Order) CancellationOpen(now time.Time) bool {
	if o.Status == StatusPlaced {
		return true
	}
	return !now.After(o.CancellationDeadline)
}

// ModificationOpen checks the time window for modification, with the
// same placed-status bypass as cancellation.
func (o *Order) ModificationOpen(now time.Time) bool {
	if o.Status == StatusPlaced {
		return true
	}
	return !now.After(o.ModificationDeadline)
}

func ItemsSubtotal(items []Item) int64 {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Price * int64(it.Quantity)
	}
	return subtotal
}
