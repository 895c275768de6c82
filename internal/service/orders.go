package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// OrderService serves purchase orders through the cache. Order mutations
// shift dashboard counters too, so both families are invalidated together.
type OrderService struct {
	client ports.OrderClient
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(
	client ports.OrderClient,
	cache ports.CacheRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "order_service"),
	}
}

func (s *OrderService) List(
	ctx context.Context,
	token string,
	p model.ListParams,
) ([]model.Order, error) {
	key := ordersCachePrefix + "list:" + p.CacheKey()
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) ([]model.Order, error) {
			return s.client.ListOrders(ctx, token, p)
		})
}

func (s *OrderService) Get(ctx context.Context, token, id string) (model.Order, error) {
	key := ordersCachePrefix + "item:" + id
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) (model.Order, error) {
			return s.client.GetOrder(ctx, token, id)
		})
}

func (s *OrderService) Update(
	ctx context.Context,
	token, id string,
	in model.OrderUpdate,
) (model.Order, error) {
	updated, err := s.client.UpdateOrder(ctx, token, id, in)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, ordersCachePrefix, dashboardCachePrefix)
	return updated, nil
}
