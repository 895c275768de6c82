package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// PaymentService serves settlement records through the cache. A refund
// touches the order it settles and the dashboard counters, so all three
// families are invalidated together.
type PaymentService struct {
	client ports.PaymentClient
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(
	client ports.PaymentClient,
	cache ports.CacheRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "payment_service"),
	}
}

func (s *PaymentService) List(
	ctx context.Context,
	token string,
	p model.ListParams,
) ([]model.Payment, error) {
	key := paymentsCachePrefix + "list:" + p.CacheKey()
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) ([]model.Payment, error) {
			return s.client.ListPayments(ctx, token, p)
		})
}

func (s *PaymentService) Get(ctx context.Context, token, id string) (model.Payment, error) {
	key := paymentsCachePrefix + "item:" + id
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) (model.Payment, error) {
			return s.client.GetPayment(ctx, token, id)
		})
}

func (s *PaymentService) Refund(
	ctx context.Context,
	token, id string,
	amount float64,
) (model.Payment, error) {
	refunded, err := s.client.RefundPayment(ctx, token, id, amount)
	if err != nil {
		return model.Payment{}, fmt.Errorf("refund payment: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, paymentsCachePrefix, ordersCachePrefix, dashboardCachePrefix)
	return refunded, nil
}
