package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// DashboardService serves the headline counters through the cache.
type DashboardService struct {
	client ports.DashboardClient
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	client ports.DashboardClient,
	cache ports.CacheRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "dashboard_service"),
	}
}

func (s *DashboardService) Stats(ctx context.Context, token string) (model.DashboardStats, error) {
	key := dashboardCachePrefix + "stats"
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) (model.DashboardStats, error) {
			return s.client.DashboardStats(ctx, token)
		})
}
