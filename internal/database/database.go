package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Schema holds the tables the export service reads and writes. Design files
// are owned by the wider product; the table here only carries the columns
// needed to resolve a design file's project.
const Schema = `
CREATE TABLE IF NOT EXISTS design_files (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS exported_assets (
	id TEXT PRIMARY KEY,
	design_file_id TEXT NOT NULL,
	project_id TEXT NOT NULL,
	name TEXT NOT NULL,
	format TEXT NOT NULL,
	scale INTEGER NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	file_size_bytes BIGINT NOT NULL,
	file_url TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_exported_assets_design_file ON exported_assets(design_file_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_exported_assets_project ON exported_assets(project_id, created_at DESC);`

// EnsureSchema creates the tables if needed so a fresh database can be used
// without a separate migration step.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
