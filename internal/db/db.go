package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/storage"
	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Schema creates the key-value table backing the storage surface
const Schema = `
-- one row per persisted collection
CREATE TABLE IF NOT EXISTS kv_store (
    k VARCHAR(191) NOT NULL PRIMARY KEY,
    v LONGTEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`

const (
	getQuery    = "SELECT v FROM kv_store WHERE k = ?"
	setQuery    = "INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)"
	removeQuery = "DELETE FROM kv_store WHERE k = ?"
)

// DB wraps the database connection and serves it as a storage.Storage
type DB struct {
	*sql.DB
	serviceName string
}

// NewDB creates a new database connection with OpenTelemetry instrumentation
func NewDB(dsn string, mp metric.MeterProvider, serviceName string) (*DB, error) {
	driverName, err := otelsql.Register("mysql",
		otelsql.WithAttributes(
			attribute.String("db.system", "mysql"),
		),
		otelsql.WithMeterProvider(mp),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithMeterProvider(mp),
		otelsql.WithAttributes(
			attribute.String("db.system", "mysql"),
			attribute.String("service.name", serviceName),
		),
	); err != nil {
		log.Warn().Err(err).Msg("failed to register otelsql stats metrics")
	}

	return &DB{DB: db, serviceName: serviceName}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// InitSchema executes schemaSQL statement by statement
func (db *DB) InitSchema(ctx context.Context, schemaSQL string) error {
	for i, stmt := range splitSQLStatements(schemaSQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement %d: %w\nStatement: %s", i+1, err, stmt)
		}
	}

	log.Info().Msg("database schema initialized")
	return nil
}

func (db *DB) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (db *DB) Set(ctx context.Context, key, value string) error {
	if _, err := db.ExecContext(ctx, setQuery, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (db *DB) Remove(ctx context.Context, key string) error {
	if _, err := db.ExecContext(ctx, removeQuery, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// splitSQLStatements splits a SQL string into individual statements,
// dropping "--" comment lines
func splitSQLStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanedLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			cleanedLines = append(cleanedLines, line)
		}
	}

	statements := strings.Split(strings.Join(cleanedLines, "\n"), ";")

	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}
