package order

import (
	"context"
	"errors"
	"time"

	"mealdrop-be/internal/logger"
	"mealdrop-be/internal/menu"
	"mealdrop-be/internal/metrics"
	"mealdrop-be/internal/notification"
	"mealdrop-be/internal/refund"
	"mealdrop-be/internal/utils"
	"mealdrop-be/internal/watch"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, actorID, note string) error
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason, actorID string) error
	ModifyOrder(ctx context.Context, orderID uuid.UUID, newItems []menu.ItemRequest, actorID string) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetHistory(ctx context.Context, orderID uuid.UUID) ([]*HistoryEntry, error)
}

type CreateOrderInput struct {
	CustomerID      uuid.UUID
	RestaurantID    uuid.UUID
	Items           []menu.ItemRequest
	DeliveryAddress string
	Phone           string
	Instructions    string
	PaymentMethod   PaymentMethod
	DeliveryFee     int64
	Scheduled       bool
	ScheduledAt     *time.Time
}

type service struct {
	repo      Repository
	catalog   menu.Service
	refunds   refund.Service
	publisher notification.Publisher
	hub       *watch.Hub
}

// NewService builds the order lifecycle service. publisher and hub may
// be nil; event fan-out is then skipped.
func NewService(repo Repository, catalog menu.Service, refunds refund.Service, publisher notification.Publisher, hub *watch.Hub) Service {
	return &service{
		repo:      repo,
		catalog:   catalog,
		refunds:   refunds,
		publisher: publisher,
		hub:       hub,
	}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	if err := validateCreateInput(input); err != nil {
		log.Warn("order validation failed", zap.Error(err))
		return nil, err
	}

	priced, err := s.catalog.ValidateItems(ctx, input.Items)
	if err != nil {
		log.Warn("item validation failed", zap.Error(err))
		return nil, err
	}

	items := make([]Item, len(priced))
	for i, p := range priced {
		items[i] = Item{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
		}
	}

	now := time.Now()
	subtotal := ItemsSubtotal(items)
	tax := subtotal * 10 / 100

	o := &Order{
		ID:                   uuid.New(),
		Number:               utils.GenerateOrderNumber(),
		CustomerID:           input.CustomerID,
		RestaurantID:         input.RestaurantID,
		Items:                items,
		Subtotal:             subtotal,
		DeliveryFee:          input.DeliveryFee,
		Tax:                  tax,
		Total:                subtotal + input.DeliveryFee + tax,
		DeliveryAddress:      input.DeliveryAddress,
		Phone:                input.Phone,
		Instructions:         input.Instructions,
		PaymentMethod:        input.PaymentMethod,
		PaymentStatus:        PaymentStatusPending,
		Scheduled:            input.Scheduled,
		ScheduledAt:          input.ScheduledAt,
		Status:               StatusPlaced,
		CanCancel:            true,
		CanModify:            true,
		CancellationDeadline: now.Add(CancellationWindow),
		ModificationDeadline: now.Add(ModificationWindow),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	entry := HistoryEntry{
		OrderID:   o.ID,
		Status:    StatusPlaced,
		Note:      StatusPlaced.Note(),
		ChangedBy: input.CustomerID.String(),
		ChangedAt: now,
	}

	if err := s.repo.Create(ctx, o, entry); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.Number),
		zap.Int64("total", o.Total),
	)

	s.emit(ctx, o, "", input.CustomerID.String(), now)

	return o, nil
}

func validateCreateInput(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "order must have at least one item"}
	}
	if input.DeliveryAddress == "" {
		return &ValidationError{Field: "delivery_address", Reason: "required"}
	}
	if input.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "required"}
	}
	switch input.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentWallet:
	default:
		return &ValidationError{Field: "payment_method", Reason: "unknown method"}
	}
	if input.Scheduled && input.ScheduledAt == nil {
		return &ValidationError{Field: "scheduled_at", Reason: "required for scheduled delivery"}
	}
	return nil
}

// AdvanceStatus moves the order one legal step forward. A concurrent
// update is retried once against fresh state; a second conflict is
// surfaced as ErrStatusConflict.
func (s *service) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus Status, actorID, note string) error {
	err := s.advanceOnce(ctx, orderID, newStatus, actorID, note)
	if errors.Is(err, ErrStatusConflict) {
		metrics.StatusConflicts.Inc()
		logger.FromCtx(ctx).Info("status conflict, retrying with fresh state",
			zap.String("order_id", orderID.String()),
			zap.String("new_status", string(newStatus)),
		)
		err = s.advanceOnce(ctx, orderID, newStatus, actorID, note)
	}
	return err
}

func (s *service) advanceOnce(ctx context.Context, orderID uuid.UUID, newStatus Status, actorID, note string) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	// Cancellation has its own entry point with its own preconditions.
	if !newStatus.Valid() || newStatus == StatusCancelled {
		return ErrInvalidTransition
	}
	if !o.Status.CanAdvanceTo(newStatus) {
		return ErrInvalidTransition
	}

	oldStatus := o.Status
	now := time.Now()
	o.ApplyStatus(newStatus, now)

	if note == "" {
		note = newStatus.Note()
	}
	entry := HistoryEntry{
		OrderID:   o.ID,
		Status:    newStatus,
		Note:      note,
		ChangedBy: actorID,
		ChangedAt: now,
	}

	if err := s.repo.UpdateStatus(ctx, o, oldStatus, o.Version, entry); err != nil {
		return err
	}

	metrics.StatusTransitions.Inc()
	logger.FromCtx(ctx).Info("order status advanced",
		zap.String("order_id", o.ID.String()),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
		zap.String("changed_by", actorID),
	)

	s.emit(ctx, o, string(oldStatus), actorID, now)
	return nil
}

// CancelOrder is the only path into the cancelled status. The deadline
// check is bypassed while the order is still placed; the flag alone
// governs in that state.
func (s *service) CancelOrder(ctx context.Context, orderID uuid.UUID, reason, actorID string) error {
	if reason == "" {
		return &ValidationError{Field: "reason", Reason: "required"}
	}

	err := s.cancelOnce(ctx, orderID, reason, actorID)
	if errors.Is(err, ErrStatusConflict) {
		metrics.StatusConflicts.Inc()
		err = s.cancelOnce(ctx, orderID, reason, actorID)
	}
	return err
}

func (s *service) cancelOnce(ctx context.Context, orderID uuid.UUID, reason, actorID string) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()

	if o.Status.Terminal() || !o.CanCancel {
		return ErrCancellationNotAllowed
	}
	if !o.CancellationOpen(now) {
		return ErrCancellationWindowExpired
	}

	oldStatus := o.Status
	o.ApplyStatus(StatusCancelled, now)
	o.CancelReason = reason

	entry := HistoryEntry{
		OrderID:   o.ID,
		Status:    StatusCancelled,
		Note:      "Order cancelled: " + reason,
		ChangedBy: actorID,
		ChangedAt: now,
	}

	if err := s.repo.UpdateStatus(ctx, o, oldStatus, o.Version, entry); err != nil {
		return err
	}

	metrics.OrdersCancelled.Inc()
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID.String()),
		zap.String("changed_by", actorID),
	)
	log.Info("order cancelled", zap.String("reason", reason))

	if o.PaymentMethod != PaymentCash {
		if _, err := s.refunds.Initiate(ctx, o.ID, o.Total, reason, actorID); err != nil {
			// The cancellation itself is committed; the refund can be
			// re-initiated out of band.
			log.Error("failed to initiate refund", zap.Error(err))
		}
	}

	s.emit(ctx, o, string(oldStatus), actorID, now)
	return nil
}

// ModifyOrder replaces the order's line items. Status and the derived
// permission flags are untouched; modification does not alter
// cancellability.
func (s *service) ModifyOrder(ctx context.Context, orderID uuid.UUID, newItems []menu.ItemRequest, actorID string) error {
	if len(newItems) == 0 {
		return &ValidationError{Field: "items", Reason: "order must have at least one item"}
	}

	err := s.modifyOnce(ctx, orderID, newItems, actorID)
	if errors.Is(err, ErrStatusConflict) {
		metrics.StatusConflicts.Inc()
		err = s.modifyOnce(ctx, orderID, newItems, actorID)
	}
	return err
}

func (s *service) modifyOnce(ctx context.Context, orderID uuid.UUID, newItems []menu.ItemRequest, actorID string) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now()

	if !o.Status.AllowsModify() || !o.CanModify {
		return ErrModificationNotAllowed
	}
	if !o.ModificationOpen(now) {
		return ErrModificationWindowExpired
	}

	priced, err := s.catalog.ValidateItems(ctx, newItems)
	if err != nil {
		return err
	}

	items := make([]Item, len(priced))
	for i, p := range priced {
		items[i] = Item{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  p.Quantity,
		}
	}

	o.Items = items
	o.Subtotal = ItemsSubtotal(items)
	o.Total = o.Subtotal + o.DeliveryFee + o.Tax
	o.UpdatedAt = now

	entry := HistoryEntry{
		OrderID:   o.ID,
		Status:    o.Status,
		Note:      "Order items modified",
		ChangedBy: actorID,
		ChangedAt: now,
	}

	if err := s.repo.ReplaceItems(ctx, o, o.Version, entry); err != nil {
		return err
	}

	metrics.OrdersModified.Inc()
	logger.FromCtx(ctx).Info("order modified",
		zap.String("order_id", o.ID.String()),
		zap.Int64("subtotal", o.Subtotal),
		zap.String("changed_by", actorID),
	)

	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) GetHistory(ctx context.Context, orderID uuid.UUID) ([]*HistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.GetStatusHistory(ctx, orderID)
}

// emit pushes the committed state to the broker and in-process
// watchers. Failures are logged, never propagated: the write is already
// durable.
func (s *service) emit(ctx context.Context, o *Order, oldStatus, actorID string, at time.Time) {
	if s.publisher != nil {
		ev := notification.StatusEvent{
			OrderID:     o.ID.String(),
			OrderNumber: o.Number,
			OldStatus:   oldStatus,
			NewStatus:   string(o.Status),
			ChangedBy:   actorID,
			Timestamp:   at,
		}
		if err := s.publisher.PublishStatusEvent(ctx, ev); err != nil {
			logger.FromCtx(ctx).Error("failed to publish status event",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.hub != nil {
		s.hub.Notify(watch.Event{
			OrderID: o.ID,
			Status:  string(o.Status),
			At:      at,
		})
	}
}
