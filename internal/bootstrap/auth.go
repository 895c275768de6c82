package bootstrap

import (
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/KrownWealth/afrozonauto-admin/config"
	"github.com/KrownWealth/afrozonauto-admin/internal/adapters/devauth"
	"github.com/KrownWealth/afrozonauto-admin/internal/adapters/marketapi"
	redisadapter "github.com/KrownWealth/afrozonauto-admin/internal/adapters/redis"
	"github.com/KrownWealth/afrozonauto-admin/internal/adapters/tokens"
	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
	"github.com/KrownWealth/afrozonauto-admin/internal/service"
)

// AuthDeps contains dependencies for building the auth service.
type AuthDeps struct {
	Auth        config.AuthConfig
	Upstream    *marketapi.Client // identity provider when Mode=upstream
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents groups the auth service with the adapters the HTTP layer
// also needs directly (the edge guard reads sessions and decodes tokens
// without going through the service).
type AuthComponents struct {
	Service  *service.AuthService
	Sessions *redisadapter.SessionStore
	Tokens   *tokens.Decoder
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns zero components if auth configuration is invalid; the caller
// decides whether that is fatal.
func BuildAuthService(deps AuthDeps) AuthComponents {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if deps.RedisClient == nil {
		logger.Warn("auth service disabled: redis client not configured", "mode", deps.Auth.Mode)
		return AuthComponents{}
	}

	// Session store and token decoder are shared by both modes.
	sessionStore := redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, "session:")
	decoder := tokens.NewDecoder()

	provider := buildIdentityProvider(deps, logger)
	if provider == nil {
		return AuthComponents{}
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessionStore,
		Tokens:   decoder,
		Config:   deps.Auth,
		Logger:   logger,
	})
	if err != nil {
		logger.Warn("failed to create auth service, auth disabled", "error", err)
		return AuthComponents{}
	}

	return AuthComponents{
		Service:  svc,
		Sessions: sessionStore,
		Tokens:   decoder,
	}
}

//nolint:ireturn // Returning the IdentityProvider interface is the point of mode selection.
func buildIdentityProvider(deps AuthDeps, logger *slog.Logger) ports.IdentityProvider {
	switch deps.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:     deps.Auth.DevAuth.UserID,
			Email:      deps.Auth.DevAuth.Email,
			FullName:   deps.Auth.DevAuth.FullName,
			Password:   deps.Auth.DevAuth.Password,
			Role:       domainauth.Role(strings.ToUpper(deps.Auth.DevAuth.Role)),
			SigningKey: deps.Auth.DevAuth.SigningKey,
		})
		if err != nil {
			logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
			return nil
		}
		return prov

	case config.AuthModeUpstream:
		if deps.Upstream == nil {
			logger.Warn("AuthModeUpstream selected but upstream client missing; auth disabled")
			return nil
		}
		return deps.Upstream

	default:
		logger.Warn("unknown auth mode; auth disabled", "mode", deps.Auth.Mode)
		return nil
	}
}
