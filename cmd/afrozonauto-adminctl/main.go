// Command afrozonauto-adminctl is an operations CLI for inspecting and
// cleaning the Redis state behind the admin dashboard: sessions and the
// upstream response cache.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KrownWealth/afrozonauto-admin/config"
	redisadapter "github.com/KrownWealth/afrozonauto-admin/internal/adapters/redis"
	"github.com/KrownWealth/afrozonauto-admin/internal/bootstrap"
	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const sessionKeyPrefix = "session:"

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"list-sessions": {
			name:        "list-sessions",
			description: "List stored sessions with user, role, and expiry",
			run:         runListSessions,
		},
		"delete-session": {
			name:        "delete-session",
			description: "Delete a session by ID, forcing a fresh sign-in",
			run:         runDeleteSession,
		},
		"sweep-sessions": {
			name:        "sweep-sessions",
			description: "Remove expired and refresh-failed sessions in one pass",
			run:         runSweepSessions,
		},
		"flush-cache": {
			name:        "flush-cache",
			description: "Flush cached upstream responses under a key prefix",
			run:         runFlushCache,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: afrozonauto-adminctl <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(os.Stdout, "  %-18s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectRedis(ctx *commandContext) (redis.UniversalClient, error) {
	client, err := bootstrap.ConnectRedis(bootstrap.RedisDeps{
		RedisConfig: ctx.Config.Redis,
		Logger:      ctx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func closeRedis(logger *slog.Logger, client redis.UniversalClient) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.Error("close redis failed", "error", err)
	}
}

type listSessionsOptions struct {
	Limit int
	Role  string
}

func runListSessions(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	opts := listSessionsOptions{}
	fs.IntVar(&opts.Limit, "limit", 100, "maximum sessions to list")
	fs.StringVar(&opts.Role, "role", "", "filter by role (e.g. ADMIN, OPERATION)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis(ctx.Logger, client)

	sessions, err := loadSessions(ctx.Ctx, client, opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "SESSION\tUSER\tROLE\tACCESS EXPIRES\tSESSION EXPIRES\tREFRESH FAILED\n"); err != nil {
		return err
	}
	for _, s := range sessions {
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
			s.ID, s.Email, s.Role,
			formatExpiry(s.AccessExpiresAt), formatExpiry(s.ExpiresAt),
			s.RefreshFailed); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return writef(os.Stdout, "\n%d session(s)\n", len(sessions))
}

func loadSessions(
	ctx context.Context,
	client redis.UniversalClient,
	opts listSessionsOptions,
) ([]domainauth.Session, error) {
	var sessions []domainauth.Session

	iter := client.Scan(ctx, 0, sessionKeyPrefix+"*", int64(opts.Limit)).Iterator()
	for iter.Next(ctx) {
		if opts.Limit > 0 && len(sessions) >= opts.Limit {
			break
		}
		raw, err := client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read session %s: %w", iter.Val(), err)
		}

		var sess domainauth.Session
		if unmarshalErr := json.Unmarshal([]byte(raw), &sess); unmarshalErr != nil {
			// Corrupt records still show up so operators can find them.
			sess = domainauth.Session{ID: strings.TrimPrefix(iter.Val(), sessionKeyPrefix)}
		}
		if opts.Role != "" && !strings.EqualFold(string(sess.Role), opts.Role) {
			continue
		}
		sessions = append(sessions, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ExpiresAt.Before(sessions[j].ExpiresAt) })
	return sessions, nil
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func runDeleteSession(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("delete-session", flag.ContinueOnError)
	id := fs.String("id", "", "session ID to delete (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	client, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis(ctx.Logger, client)

	store := redisadapter.NewSessionStoreWithPrefix(client, sessionKeyPrefix)
	if err := store.Delete(ctx.Ctx, *id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return writef(os.Stdout, "session %s deleted\n", *id)
}

func runSweepSessions(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("sweep-sessions", flag.ContinueOnError)
	batchSize := fs.Int("batch-size", 200, "keys scanned per pass")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis(ctx.Logger, client)

	sweeper := redisadapter.NewSessionSweeper(client)
	var total int64
	for {
		removed, sweepErr := sweeper.SweepSessions(ctx.Ctx, *batchSize)
		if sweepErr != nil {
			return fmt.Errorf("sweep sessions: %w", sweepErr)
		}
		total += removed
		if removed == 0 {
			break
		}
	}
	return writef(os.Stdout, "removed %d dead session(s)\n", total)
}

func runFlushCache(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("flush-cache", flag.ContinueOnError)
	prefix := fs.String("prefix", "", "cache key prefix to flush, e.g. vehicles: (required)")
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *prefix == "" {
		return errors.New("-prefix is required")
	}
	if strings.HasPrefix(*prefix, sessionKeyPrefix) {
		return errors.New("refusing to flush session keys; use sweep-sessions or delete-session")
	}
	if !*yes {
		return fmt.Errorf("flushing %q removes cached data; re-run with -yes to confirm", *prefix)
	}

	client, err := connectRedis(ctx)
	if err != nil {
		return err
	}
	defer closeRedis(ctx.Logger, client)

	cache := redisadapter.NewCacheRepo(client)
	removed, err := cache.DeletePrefix(ctx.Ctx, *prefix)
	if err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return writef(os.Stdout, "removed %d cache entr(y/ies) under %q\n", removed, *prefix)
}
