package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// UserService serves customer accounts through the cache. Accounts are
// read-only from the dashboard, so there is no invalidation path.
type UserService struct {
	client ports.UserClient
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewUserService constructs a UserService.
func NewUserService(
	client ports.UserClient,
	cache ports.CacheRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "user_service"),
	}
}

func (s *UserService) List(
	ctx context.Context,
	token string,
	p model.ListParams,
) ([]model.User, error) {
	key := usersCachePrefix + "list:" + p.CacheKey()
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) ([]model.User, error) {
			return s.client.ListUsers(ctx, token, p)
		})
}

func (s *UserService) Get(ctx context.Context, token, id string) (model.User, error) {
	key := usersCachePrefix + "item:" + id
	return readThrough(ctx, s.cache, s.logger, key, s.ttl,
		func(ctx context.Context) (model.User, error) {
			return s.client.GetUser(ctx, token, id)
		})
}
