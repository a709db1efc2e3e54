// cmd/migrate/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"transaction-aggregator/internal/bootstrap"
	"transaction-aggregator/internal/config"
	"transaction-aggregator/internal/storage/mock"
	"transaction-aggregator/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		dir     = flag.String("dir", "", "migrations directory (default: ./migrations)")
		command = flag.String("command", "up", "goose command: up, down, status, reset")
		seed    = flag.Bool("seed", false, "insert generated mock transactions after migrating")
	)
	flag.Parse()

	cfg := config.MustLoad()
	bootstrap.SetupLogger(cfg.LogLevel)

	migrationsDir := *dir
	if migrationsDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			slog.Error("Failed to get working directory", "error", err)
			os.Exit(1)
		}
		migrationsDir = filepath.Join(wd, "migrations")
	}

	db, err := sql.Open("pgx", cfg.DBConn)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		slog.Error("Failed to set goose dialect", "error", err)
		os.Exit(1)
	}

	slog.Info("Running migrations", "command", *command, "dir", migrationsDir)
	if err := goose.RunContext(context.Background(), *command, db, migrationsDir); err != nil {
		slog.Error("Migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Migrations applied")

	if *seed {
		if err := seedMockData(cfg); err != nil {
			slog.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
	}
}

func seedMockData(cfg config.Config) error {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DBConn)
	if err != nil {
		return err
	}
	defer pool.Close()

	txns := mock.Generate(bootstrap.MockOptions(cfg, time.Now()))
	n, err := postgres.NewStorage(pool).InsertTransactions(ctx, txns)
	if err != nil {
		return err
	}
	slog.Info("✅ Seeded mock transactions", "generated", len(txns), "inserted", n)
	return nil
}
