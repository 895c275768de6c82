// Package reaper provides the adapter for running the session reaper.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/KrownWealth/afrozonauto-admin/config"
	redisadapter "github.com/KrownWealth/afrozonauto-admin/internal/adapters/redis"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
	"github.com/KrownWealth/afrozonauto-admin/internal/service"
)

// Runner constructs the session reaper and runs its cleanup loop.
type Runner struct {
	reaper *service.SessionReaper
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Redis  goredis.UniversalClient
	Config config.SessionReaperConfig
	Logger *slog.Logger

	// Optional dependency injection for testing/decoupling
	Sweeper ports.SessionSweeper
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	sweeper := opts.Sweeper
	if sweeper == nil {
		if opts.Redis == nil {
			return nil, errors.New("redis client is required")
		}
		sweeper = redisadapter.NewSessionSweeper(opts.Redis)
	}

	reaper, err := service.NewSessionReaper(service.SessionReaperOptions{
		Sweeper: sweeper,
		Config:  opts.Config,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire session reaper: %w", err)
	}

	return &Runner{
		reaper: reaper,
		logger: opts.Logger,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting session reaper runner")
	return r.reaper.Run(ctx)
}
