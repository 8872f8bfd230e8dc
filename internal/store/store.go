// internal/store/store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saqr-hq/saqr-workflows/internal/config"
)

// Client wraps the database handle shared by all repositories.
type Client struct {
	DB *sqlx.DB
}

// NewClient connects to Postgres using the database configuration and
// verifies the connection with a ping.
func NewClient(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{DB: db}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.DB.Close()
}

// BeginTx starts a database transaction.
func (c *Client) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return c.DB.BeginTxx(ctx, nil)
}

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	uid        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	owner_id   TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS company_queries (
	id          TEXT NOT NULL,
	company_uid TEXT NOT NULL REFERENCES companies(uid),
	query_text  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (company_uid, id)
);

CREATE TABLE IF NOT EXISTS company_answers (
	id             TEXT PRIMARY KEY,
	company_uid    TEXT NOT NULL REFERENCES companies(uid),
	query_id       TEXT NOT NULL,
	query_text     TEXT NOT NULL,
	raw_answer     TEXT NOT NULL,
	citations      JSONB NOT NULL DEFAULT '[]',
	competitors    JSONB NOT NULL DEFAULT '[]',
	provider_id    TEXT NOT NULL,
	provider_model TEXT NOT NULL,
	total_cost     DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_company_answers_query
	ON company_answers (company_uid, query_id, created_at DESC);
`

// Migrate applies the schema. Safe to run at every boot.
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
