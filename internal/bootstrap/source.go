// internal/bootstrap/source.go
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/config"
	"transaction-aggregator/internal/storage/memory"
	"transaction-aggregator/internal/storage/mock"
	"transaction-aggregator/internal/storage/postgres"
)

// SetupLogger installs a text slog handler on stdout as the default logger.
func SetupLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func MockOptions(cfg config.Config, now time.Time) mock.Options {
	return mock.Options{
		Customers:      cfg.MockCustomers,
		Days:           cfg.MockDays,
		Seed:           cfg.MockSeed,
		OpeningBalance: decimal.NewFromInt(30000),
		Now:            now,
	}
}

// OpenSource loads the configured data source into an immutable in-memory snapshot.
// Postgres rows are read once; the pool is closed before returning.
func OpenSource(ctx context.Context, cfg config.Config) (*memory.Storage, error) {
	switch cfg.DataSource {
	case config.SourceMock:
		txns := mock.Generate(MockOptions(cfg, time.Now()))
		store, err := memory.NewStorage(txns)
		if err != nil {
			return nil, fmt.Errorf("build mock store: %w", err)
		}
		slog.Info("Initialized mock data source", "transactions", store.Len(), "customers", len(cfg.MockCustomers))
		return store, nil

	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.DBConn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		txns, err := postgres.NewStorage(pool).Transactions(ctx)
		if err != nil {
			return nil, err
		}
		store, err := memory.NewStorage(txns)
		if err != nil {
			return nil, fmt.Errorf("build snapshot: %w", err)
		}
		slog.Info("✅ Loaded transactions from PostgreSQL", "transactions", store.Len())
		return store, nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
}
