package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// Cache key families. Each resource owns one prefix; mutations invalidate
// whole families rather than chasing individual keys.
const (
	vehiclesCachePrefix  = "vehicles:"
	usersCachePrefix     = "users:"
	ordersCachePrefix    = "orders:"
	paymentsCachePrefix  = "payments:"
	dashboardCachePrefix = "dashboard:"
)

// VehicleService serves vehicle listings through the cache and routes
// mutations upstream with family invalidation.
type VehicleService struct {
	client ports.VehicleClient
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewVehicleService constructs a VehicleService. Cache may be nil, in which
// case every read passes through to upstream.
func NewVehicleService(
	client ports.VehicleClient,
	cache ports.CacheRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *VehicleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VehicleService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "vehicle_service"),
	}
}

func (s *VehicleService) List(
	ctx context.Context,
	token string,
	p model.ListParams,
) ([]model.Vehicle, error) {
	key := vehiclesCachePrefix + "list:" + p.CacheKey()
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) ([]model.Vehicle, error) {
			return s.client.ListVehicles(ctx, token, p)
		})
}

func (s *VehicleService) Get(ctx context.Context, token, id string) (model.Vehicle, error) {
	key := vehiclesCachePrefix + "item:" + id
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) (model.Vehicle, error) {
			return s.client.GetVehicle(ctx, token, id)
		})
}

func (s *VehicleService) Create(
	ctx context.Context,
	token string,
	in model.VehicleInput,
) (model.Vehicle, error) {
	created, err := s.client.CreateVehicle(ctx, token, in)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, vehiclesCachePrefix, dashboardCachePrefix)
	return created, nil
}

func (s *VehicleService) Update(
	ctx context.Context,
	token, id string,
	in model.VehicleInput,
) (model.Vehicle, error) {
	updated, err := s.client.UpdateVehicle(ctx, token, id, in)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, vehiclesCachePrefix, dashboardCachePrefix)
	return updated, nil
}

func (s *VehicleService) Delete(ctx context.Context, token, id string) error {
	if err := s.client.DeleteVehicle(ctx, token, id); err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	invalidate(ctx, s.cache, s.logger, vehiclesCachePrefix, dashboardCachePrefix)
	return nil
}
