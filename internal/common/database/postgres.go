// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sizing-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}

// EnsureSchema creates the catalog and session tables when they are missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id                   TEXT PRIMARY KEY,
		slug                 TEXT NOT NULL UNIQUE,
		name                 TEXT NOT NULL,
		description          TEXT,
		brand                TEXT NOT NULL DEFAULT '',
		image                TEXT,
		available_types      TEXT[] NOT NULL DEFAULT '{}',
		has_band_selection   BOOLEAN NOT NULL DEFAULT false,
		band_sensitive_thigh BOOLEAN NOT NULL DEFAULT false,
		table_ref            TEXT,
		is_active            BOOLEAN NOT NULL DEFAULT true,
		display_order        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS size_tables (
		id            BIGSERIAL PRIMARY KEY,
		product_id    TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		size_name     TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (product_id, size_name)
	)`,
	`CREATE TABLE IF NOT EXISTS size_measurements (
		size_table_id    BIGINT NOT NULL REFERENCES size_tables(id) ON DELETE CASCADE,
		measurement_code TEXT NOT NULL,
		min_value        NUMERIC NOT NULL,
		max_value        NUMERIC NOT NULL,
		PRIMARY KEY (size_table_id, measurement_code)
	)`,
	`CREATE TABLE IF NOT EXISTS product_lengths (
		id            BIGSERIAL PRIMARY KEY,
		product_id    TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		media_type    TEXT NOT NULL,
		length_name   TEXT NOT NULL,
		min_value     NUMERIC NOT NULL,
		max_value     NUMERIC NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS measurement_sessions (
		id                 UUID PRIMARY KEY,
		user_id            TEXT NOT NULL,
		product_id         TEXT,
		product_slug       TEXT NOT NULL,
		media_type         TEXT NOT NULL,
		band_type          TEXT,
		measurements       JSONB NOT NULL,
		matching_sizes     TEXT[] NOT NULL DEFAULT '{}',
		recommended_size   TEXT,
		recommended_length TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measurement_sessions_user
		ON measurement_sessions (user_id, created_at DESC)`,
}
