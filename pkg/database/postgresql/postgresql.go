package postgresql

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/S1riyS/tfs/internal/config"
	"github.com/S1riyS/tfs/pkg/logging"
	"github.com/S1riyS/tfs/pkg/logging/slogext"
)

type Client interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewClient opens a pool and pings it, retrying with exponential backoff
// until cfg.ConnectTimeout elapses.
func NewClient(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	const op = "postgresql.NewClient"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Failed to create connection pool", slogext.Err(err))
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = cfg.ConnectTimeout

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("Database ping failed", slogext.Err(err), slog.Int("attempt", attempt))
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		logger.Error("Failed to connect to database", slogext.Err(err))
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to database", slog.Int("attempts", attempt))
	return pool, nil
}

func MustNewClient(ctx context.Context, cfg config.DatabaseConfig) *pgxpool.Pool {
	pool, err := NewClient(ctx, cfg)
	if err != nil {
		panic(err)
	}
	return pool
}
