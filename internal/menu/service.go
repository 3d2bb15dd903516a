package menu

import (
	"context"

	"mealdrop-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ValidateItems(ctx context.Context, reqs []ItemRequest) ([]PricedItem, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, price int64) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
}

type service struct {
	repo  Repository
	cache *Cache
}

// NewService builds the catalog service. cache may be nil, in which
// case every read goes to the repository.
func NewService(repo Repository, cache *Cache) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProduct(ctx, id); ok {
			return p, nil
		}
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, p); err != nil {
			logger.FromCtx(ctx).Warn("failed to cache product",
				zap.String("product_id", id.String()),
				zap.Error(err),
			)
		}
	}

	return p, nil
}

// ValidateItems resolves every requested line item against the catalog.
// The catalog price and name win over whatever the client sent.
func (s *service) ValidateItems(ctx context.Context, reqs []ItemRequest) ([]PricedItem, error) {
	items := make([]PricedItem, 0, len(reqs))

	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		p, err := s.GetProduct(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.Available {
			return nil, ErrProductUnavailable
		}

		items = append(items, PricedItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  req.Quantity,
		})
	}

	return items, nil
}

func (s *service) UpdatePrice(ctx context.Context, id uuid.UUID, price int64) error {
	if err := s.repo.UpdatePrice(ctx, id, price); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	if err := s.repo.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.FromCtx(ctx).Warn("failed to invalidate product cache",
			zap.String("product_id", id.String()),
			zap.Error(err),
		)
	}
}
