package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds what is needed to use a Supabase project as the record
// sink target: the project URL plus either a full connection string or the
// database password.
type SupabaseConfig struct {
	// ConnectionString is the Supabase Postgres connection string. If not
	// provided, it is built from ProjectURL and Password.
	ConnectionString string

	// ProjectURL is the Supabase project URL,
	// e.g. "https://[project-ref].supabase.co".
	ProjectURL string

	// Key is the Supabase API key used to initialize the SDK client.
	Key string

	// Password is the database password (not the API key).
	Password string
}

// SupabaseClient provides a sql.DB handle over a Supabase-hosted Postgres,
// plus the SDK client for Supabase-specific features.
type SupabaseClient struct {
	db  *sql.DB
	sdk *supabase.Client
	cfg SupabaseConfig
}

// NewSupabaseClient constructs a Supabase client. Connection errors surface
// on Connect.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{cfg: cfg}
}

// Connect initializes the SDK client (when URL and key are given) and opens
// the direct Postgres connection used by the sink.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.ProjectURL != "" && c.cfg.Key != "" {
		sdkClient, err := supabase.NewClient(c.cfg.ProjectURL, c.cfg.Key, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase SDK: %w", err)
		}
		c.sdk = sdkClient
	}

	connStr := c.cfg.ConnectionString
	if connStr == "" {
		var err error
		connStr, err = c.buildConnectionString()
		if err != nil {
			return err
		}
	}

	// Disable the prepared statement cache so parallel sink batches do not
	// collide on cached statements.
	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("open supabase postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping supabase postgres: %w", err)
	}

	c.db = db
	return nil
}

// Close closes the database connection.
func (c *SupabaseClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying sql.DB handle for the record sink.
func (c *SupabaseClient) DB() *sql.DB {
	return c.db
}

// SDK returns the Supabase SDK client, or nil if it was not initialized.
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.sdk
}

// buildConnectionString derives the direct Postgres connection string from the
// project URL and database password.
func (c *SupabaseClient) buildConnectionString() (string, error) {
	if c.cfg.ProjectURL == "" {
		return "", fmt.Errorf("supabase project URL is required when connection string is not provided")
	}
	if c.cfg.Password == "" {
		return "", fmt.Errorf("supabase password is required when connection string is not provided")
	}

	parsedURL, err := url.Parse(c.cfg.ProjectURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}

	// Host format: [project-ref].supabase.co
	parts := strings.Split(parsedURL.Host, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}

	encodedPassword := url.QueryEscape(c.cfg.Password)
	return fmt.Sprintf("postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require", encodedPassword, parts[0]), nil
}

// addConnectionParam appends a query parameter unless it is already present.
func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}

	separator := "?"
	if strings.Contains(connStr, "?") {
		separator = "&"
	}
	return connStr + separator + key + "=" + value
}
