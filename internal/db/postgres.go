package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gautambamne/ECom-sub000/internal/config"
	"github.com/gautambamne/ECom-sub000/migrations"
)

const (
	connectRetries      = 3
	connectRetryBackoff = 2 * time.Second
)

// Connect opens a pgx connection pool, verifies it with a ping, and retries a
// few times so the app survives a database that is still starting up.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	var lastErr error
	for attempt := 0; attempt <= connectRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(connectRetryBackoff)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			lastErr = err
			continue
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = err
			continue
		}
		return pool, nil
	}
	return nil, fmt.Errorf("connect to postgres after %d attempts: %w", connectRetries+1, lastErr)
}

// Migrate runs the embedded goose migrations against the database.
func Migrate(ctx context.Context, cfg *config.DatabaseConfig) error {
	sqlDB, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
