package refund

import (
	"context"
	"time"

	"mealdrop-be/internal/logger"
	"mealdrop-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Initiate(ctx context.Context, orderID uuid.UUID, amount int64, reason, actorID string) (*Refund, error)
	Resolve(ctx context.Context, refundID uuid.UUID, approve bool, actorID string) error
	Complete(ctx context.Context, refundID uuid.UUID, actorID string) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Refund, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Initiate(ctx context.Context, orderID uuid.UUID, amount int64, reason, actorID string) (*Refund, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if reason == "" {
		return nil, ErrEmptyReason
	}

	// Idempotency: an order has at most one refund.
	if existing, err := s.repo.GetByOrder(ctx, orderID); err == nil && existing != nil {
		return existing, nil
	}

	now := time.Now()
	ref := &Refund{
		ID:          uuid.New(),
		OrderID:     orderID,
		Amount:      amount,
		Reason:      reason,
		RequestedBy: actorID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Save(ctx, ref); err != nil {
		logger.FromCtx(ctx).Error("failed to save refund",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RefundsInitiated.Inc()
	logger.FromCtx(ctx).Info("refund initiated",
		zap.String("refund_id", ref.ID.String()),
		zap.String("order_id", orderID.String()),
		zap.Int64("amount", amount),
	)

	return ref, nil
}

func (s *service) Resolve(ctx context.Context, refundID uuid.UUID, approve bool, actorID string) error {
	if _, err := s.repo.GetByID(ctx, refundID); err != nil {
		return err
	}

	to := StatusRejected
	if approve {
		to = StatusApproved
	}

	return s.repo.UpdateStatus(ctx, refundID, StatusPending, to, actorID)
}

func (s *service) Complete(ctx context.Context, refundID uuid.UUID, actorID string) error {
	if _, err := s.repo.GetByID(ctx, refundID); err != nil {
		return err
	}

	return s.repo.UpdateStatus(ctx, refundID, StatusApproved, StatusCompleted, actorID)
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Refund, error) {
	return s.repo.GetByOrder(ctx, orderID)
}
