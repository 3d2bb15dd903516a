package order

type Status string

const (
	StatusPlaced    Status = "placed"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPicked    Status = "picked"
	StatusNearby    Status = "nearby"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// forwardSteps encodes the single legal next step for each status.
// Cancellation is not a forward step; it is reachable only through
// CancelOrder.
var forwardSteps = map[Status]Status{
	StatusPlaced:    StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusPicked,
	StatusPicked:    StatusNearby,
	StatusNearby:    StatusDelivered,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusPreparing, StatusReady,
		StatusPicked, StatusNearby, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanAdvanceTo reports whether next is the legal forward step from s.
// Intermediate states may not be skipped.
func (s Status) CanAdvanceTo(next Status) bool {
	step, ok := forwardSteps[s]
	return ok && step == next
}

// AllowsCancel reports whether cancellation is still permitted in this
// status, before any deadline check.
func (s Status) AllowsCancel() bool {
	switch s {
	case StatusPlaced, StatusConfirmed:
		return true
	case StatusPreparing, StatusReady, StatusPicked, StatusNearby,
		StatusDelivered, StatusCancelled:
		return false
	}
	return false
}

// AllowsModify reports whether item modification is still permitted in
// this status, before any deadline check.
func (s Status) AllowsModify() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusPreparing:
		return true
	case StatusReady, StatusPicked, StatusNearby, StatusDelivered,
		StatusCancelled:
		return false
	}
	return false
}

// Note returns the default audit-trail note for entering a status.
func (s Status) Note() string {
	switch s {
	case StatusPlaced:
		return "Order placed successfully"
	case StatusConfirmed:
		return "Order confirmed by restaurant"
	case StatusPreparing:
		return "Restaurant started preparing the order"
	case StatusReady:
		return "Order is ready for pickup"
	case StatusPicked:
		return "Courier picked up the order"
	case StatusNearby:
		return "Courier is nearby"
	case StatusDelivered:
		return "Order delivered"
	case StatusCancelled:
		return "Order cancelled"
	}
	return ""
}
