package refund

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Refund is created as a side effect of cancelling a non-cash order.
// Its lifecycle is independent of the order once created.
type Refund struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Amount      int64
	Reason      string
	RequestedBy string
	ResolvedBy  string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
