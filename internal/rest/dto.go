package rest

import (
	"time"

	"mealdrop-be/internal/menu"
	"mealdrop-be/internal/order"
	"mealdrop-be/internal/refund"

	"github.com/google/uuid"
)

type createOrderRequest struct {
	CustomerID      uuid.UUID     `json:"customer_id"`
	RestaurantID    uuid.UUID     `json:"restaurant_id"`
	Items           []itemRequest `json:"items"`
	DeliveryAddress string        `json:"delivery_address"`
	Phone           string        `json:"phone"`
	Instructions    string        `json:"instructions,omitempty"`
	PaymentMethod   string        `json:"payment_method"`
	DeliveryFee     int64         `json:"delivery_fee"`
	Scheduled       bool          `json:"scheduled"`
	ScheduledAt     *time.Time    `json:"scheduled_at,omitempty"`
}

type itemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type advanceStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type modifyItemsRequest struct {
	Items []itemRequest `json:"items"`
}

type resolveRefundRequest struct {
	Approve bool `json:"approve"`
}

type orderResponse struct {
	ID              uuid.UUID      `json:"id"`
	Number          string         `json:"number"`
	CustomerID      uuid.UUID      `json:"customer_id"`
	RestaurantID    uuid.UUID      `json:"restaurant_id"`
	Items           []itemResponse `json:"items"`
	Subtotal        int64          `json:"subtotal"`
	DeliveryFee     int64          `json:"delivery_fee"`
	Tax             int64          `json:"tax"`
	Total           int64          `json:"total"`
	DeliveryAddress string         `json:"delivery_address"`
	Phone           string         `json:"phone"`
	Instructions    string         `json:"instructions,omitempty"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentStatus   string         `json:"payment_status"`
	Scheduled       bool           `json:"scheduled"`
	ScheduledAt     *time.Time     `json:"scheduled_at,omitempty"`
	Status          string         `json:"status"`
	CanCancel       bool           `json:"can_cancel"`
	CanModify       bool           `json:"can_modify"`
	CancelReason    string         `json:"cancel_reason,omitempty"`
	CancelDeadline  time.Time      `json:"cancellation_deadline"`
	ModifyDeadline  time.Time      `json:"modification_deadline"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type itemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}

type historyEntryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

type refundResponse struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]itemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}

	return orderResponse{
		ID:              o.ID,
		Number:          o.Number,
		CustomerID:      o.CustomerID,
		RestaurantID:    o.RestaurantID,
		Items:           items,
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		Tax:             o.Tax,
		Total:           o.Total,
		DeliveryAddress: o.DeliveryAddress,
		Phone:           o.Phone,
		Instructions:    o.Instructions,
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		Scheduled:       o.Scheduled,
		ScheduledAt:     o.ScheduledAt,
		Status:          string(o.Status),
		CanCancel:       o.CanCancel,
		CanModify:       o.CanModify,
		CancelReason:    o.CancelReason,
		CancelDeadline:  o.CancellationDeadline,
		ModifyDeadline:  o.ModificationDeadline,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toHistoryResponse(entries []*order.HistoryEntry) []historyEntryResponse {
	out := make([]historyEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = historyEntryResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		}
	}
	return out
}

func toRefundResponse(r *refund.Refund) refundResponse {
	return refundResponse{
		ID:        r.ID,
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Reason:    r.Reason,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toItemRequests(items []itemRequest) []menu.ItemRequest {
	out := make([]menu.ItemRequest, len(items))
	for i, it := range items {
		out[i] = menu.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}
