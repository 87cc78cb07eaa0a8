package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HStats is the redis hash holding exported statistics documents.
const HStats string = "library:stats"

// Ensure *redisExporter implements Exporter.
var _ StoredExporter = (*redisExporter)(nil)

type redisExporter struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisExporter provides an exporter storing statistics documents
// into a redis hash. The destination is the hash field.
func NewRedisExporter(logger *zap.Logger, client *redis.Client) StoredExporter {
	return &redisExporter{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Close releases the redis client connections.
func (re *redisExporter) Close() error {
	return re.client.Close()
}

// Export sets the document as value of the destination field.
func (re *redisExporter) Export(ctx context.Context, destination string, doc []byte) error {
	if destination == "" {
		return missingFieldError("destination")
	}
	if err := re.client.HSet(ctx, HStats, destination, doc).Err(); err != nil {
		return err
	}
	re.logger.Debug("export: redis field stored", zap.String("export.field", destination), zap.Int("export.bytes", len(doc)))
	return nil
}

// Fetch retrieves a previously exported document.
func (re *redisExporter) Fetch(ctx context.Context, destination string) ([]byte, error) {
	doc, err := re.client.HGet(ctx, HStats, destination).Bytes()
	if err == redis.Nil {
		return nil, ErrExportNotFound
	}
	return doc, err
}
