package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// Ensure *boltExporter implements Exporter.
var _ StoredExporter = (*boltExporter)(nil)

type boltExporter struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.BoltDB.FilePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the database folder, %v", err)
	}
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltExporter provides an exporter storing statistics documents
// into the configured boltdb bucket. The destination is the record key.
func NewBoltExporter(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) StoredExporter {
	return &boltExporter{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the underlying bolt database.
func (be *boltExporter) Close() error {
	return be.client.Close()
}

// Export inserts or replaces the document stored under the destination key.
func (be *boltExporter) Export(_ context.Context, destination string, doc []byte) error {
	if destination == "" {
		return missingFieldError("destination")
	}
	err := be.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(be.config.BucketName)).Put([]byte(destination), doc)
	})
	if err != nil {
		return err
	}
	be.logger.Debug("export: bolt record stored", zap.String("export.key", destination), zap.Int("export.bytes", len(doc)))
	return nil
}

// Fetch retrieves a previously exported document.
func (be *boltExporter) Fetch(_ context.Context, destination string) ([]byte, error) {
	// initialize a readable transaction.
	tx, err := be.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(be.config.BucketName)).Get([]byte(destination))
	if result == nil {
		return nil, ErrExportNotFound
	}
	// bolt values are only valid for the life of the transaction.
	doc := make([]byte, len(result))
	copy(doc, result)
	return doc, nil
}
