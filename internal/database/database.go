// Package database centralises sqlx connection helpers.  The driver is
// go-sql-driver/mysql, which also works with MariaDB, wrapped by otelsql so
// catalog and segment queries show up as spans under the request trace.
//
// Public entry points:
//
//	Open(ctx, dsn)                            – conservative pool sizes.
//	OpenWithOptions(ctx, dsn, maxOpen, maxIdle) – fine-grained control.
//	EnsureSchema(ctx, db)                     – creates the storefront tables.
//
// Both Open helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// Open returns a *sqlx.DB with 15 max open, 5 idle, and a 30-minute
// connection lifetime.  The storefront reads a handful of small tables, so
// one process-wide pool is enough.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.  cmd/segments uses
// a pool of one.
func OpenWithOptions(ctx context.Context, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	sqldb, err := otelsql.Open("mysql", dsn,
		otelsql.WithAttributes(semconv.DBSystemMySQL),
		otelsql.WithSpanOptions(otelsql.SpanOptions{OmitConnResetSession: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	db := sqlx.NewDb(sqldb, "mysql")
	configure(db, maxOpen, maxIdle)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	zap.L().Info("database connected",
		zap.Int("max_open_conns", maxOpen),
		zap.Int("max_idle_conns", maxIdle))
	return db, nil
}

func configure(db *sqlx.DB, maxOpen, maxIdle int) {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// Schema lists the tables read by the catalog and the segment cache.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS product (
		handle   VARCHAR(100) NOT NULL PRIMARY KEY,
		position INT          NOT NULL DEFAULT 0,
		image    VARCHAR(255) NOT NULL DEFAULT '',
		tags     VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS product_text (
		handle      VARCHAR(100) NOT NULL,
		locale      VARCHAR(8)   NOT NULL,
		title       VARCHAR(255) NOT NULL,
		description TEXT,
		PRIMARY KEY (handle, locale)
	)`,
	`CREATE TABLE IF NOT EXISTS product_price (
		handle   VARCHAR(100) NOT NULL,
		region   CHAR(2)      NOT NULL,
		amount   BIGINT       NOT NULL,
		currency CHAR(3)      NOT NULL,
		PRIMARY KEY (handle, region)
	)`,
	`CREATE TABLE IF NOT EXISTS route_segment (
		canonical VARCHAR(64) NOT NULL,
		locale    VARCHAR(8)  NOT NULL,
		localized VARCHAR(64) NOT NULL,
		PRIMARY KEY (canonical, locale)
	)`,
}

// EnsureSchema creates missing tables.  It never alters existing ones.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
