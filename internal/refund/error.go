package refund

import "errors"

var (
	ErrRefundNotFound    = errors.New("refund not found")
	ErrRefundNotPending  = errors.New("refund is not pending")
	ErrRefundNotApproved = errors.New("refund is not approved")
	ErrInvalidAmount     = errors.New("refund amount must be positive")
	ErrEmptyReason       = errors.New("refund reason is required")
)
