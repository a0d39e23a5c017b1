// Package database implements the sqlite entity store for customers,
// rooms, reservations, services and payments.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the database connection.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a delete cannot proceed because
	// dependent rows reference the record.
	ErrConflict = errors.New("dependent records exist")
	// ErrVersionConflict is returned when an optimistic update lost the
	// race against a concurrent writer.
	ErrVersionConflict = errors.New("concurrent modification")
)

// NewDB opens (creating if needed) the sqlite database at path and
// ensures the schema exists.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL mode, busy timeout and enforced foreign keys. The FK pragma is
	// what turns deletes of referenced rows into constraint errors we can
	// translate into ErrConflict.
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}

	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT UNIQUE NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			capacity INTEGER NOT NULL DEFAULT 1,
			price INTEGER NOT NULL,
			available BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL,
			room_id INTEGER NOT NULL,
			check_in DATETIME NOT NULL,
			check_out DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY(customer_id) REFERENCES customers(id),
			FOREIGN KEY(room_id) REFERENCES rooms(id)
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reservation_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			price INTEGER NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			settled_by_payment_id INTEGER,
			requested_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(reservation_id) REFERENCES reservations(id)
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reservation_id INTEGER NOT NULL,
			reference TEXT UNIQUE NOT NULL,
			amount INTEGER NOT NULL,
			method TEXT NOT NULL,
			paid_at DATETIME NOT NULL,
			FOREIGN KEY(reservation_id) REFERENCES reservations(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_room ON reservations(room_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_customer ON reservations(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_dates ON reservations(room_id, check_in, check_out)`,
		`CREATE INDEX IF NOT EXISTS idx_services_reservation ON services(reservation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_services_status ON services(payment_status)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_reservation ON payments(reservation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_paid_at ON payments(paid_at)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_method ON payments(method)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return db.ensureNewColumns()
}

// ensureNewColumns adds columns introduced after the initial schema.
func (db *DB) ensureNewColumns() error {
	migrations := []string{
		`ALTER TABLE reservations ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
		`ALTER TABLE services ADD COLUMN settled_by_payment_id INTEGER`,
	}

	for _, m := range migrations {
		_, err := db.Exec(m)
		if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			if db.logger != nil {
				db.logger.Debug().Err(err).Str("migration", m).Msg("Migration skipped")
			}
		}
	}
	return nil
}

// isFKViolation reports whether err is a foreign key constraint failure.
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// WithTx runs fn inside a transaction, committing on nil error and
// rolling back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
