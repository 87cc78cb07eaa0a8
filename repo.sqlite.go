package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Ensure *sqliteExporter implements Exporter.
var _ StoredExporter = (*sqliteExporter)(nil)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS stats_exports (
	destination TEXT PRIMARY KEY,
	document    TEXT NOT NULL,
	exported_at TEXT NOT NULL
)`

const sqliteUpsert = `INSERT INTO stats_exports (destination, document, exported_at)
VALUES (?, ?, ?)
ON CONFLICT(destination) DO UPDATE SET document = excluded.document, exported_at = excluded.exported_at`

type sqliteExporter struct {
	logger *zap.Logger
	clock  Clocker
	db     *sqlx.DB
}

// GetSQLiteClient opens (or creates) the sqlite database and applies the schema.
func GetSQLiteClient(config *Config) (*sqlx.DB, error) {
	if dir := filepath.Dir(config.SQLite.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database folder: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", config.SQLite.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}
	// a single connection avoids SQLITE_BUSY between concurrent writers.
	db.SetMaxOpenConns(1)
	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// NewSQLiteExporter provides an exporter storing statistics documents as rows
// of the stats_exports table. The destination is the primary key.
func NewSQLiteExporter(logger *zap.Logger, clock Clocker, db *sqlx.DB) StoredExporter {
	return &sqliteExporter{logger: logger, clock: clock, db: db}
}

// Close closes the database.
func (se *sqliteExporter) Close() error {
	return se.db.Close()
}

// Export inserts or replaces the row of the destination.
func (se *sqliteExporter) Export(ctx context.Context, destination string, doc []byte) error {
	if destination == "" {
		return missingFieldError("destination")
	}
	exportedAt := se.clock.Now().UTC().Format(time.RFC3339)
	if _, err := se.db.ExecContext(ctx, sqliteUpsert, destination, string(doc), exportedAt); err != nil {
		return fmt.Errorf("failed to store statistics: %w", err)
	}
	se.logger.Debug("export: sqlite row stored", zap.String("export.key", destination), zap.Int("export.bytes", len(doc)))
	return nil
}

// Fetch retrieves a previously exported document.
func (se *sqliteExporter) Fetch(ctx context.Context, destination string) ([]byte, error) {
	var doc string
	err := se.db.GetContext(ctx, &doc, `SELECT document FROM stats_exports WHERE destination = ?`, destination)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}
