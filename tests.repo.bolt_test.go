package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltExporter returns a bolt exporter backed by a temporary file.
func newTestBoltExporter(t *testing.T) *boltExporter {
	t.Helper()
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	require.NoError(t, err)
	f.Close()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   f.Name(),
			Timeout:    5 * time.Second,
			BucketName: "test.stats",
		},
	}

	client, err := GetBoltDBClient(testConfig)
	require.NoError(t, err, "failed in creating a test bolt store")
	be := NewBoltExporter(zap.NewNop(), &testConfig.BoltDB, client).(*boltExporter)
	t.Cleanup(func() {
		be.Close()
		os.Remove(f.Name())
	})
	return be
}

func TestBoltExporter(t *testing.T) {
	be := newTestBoltExporter(t)
	doc := []byte(`{"popularity": {"Лісова пісня": 1}}`)

	t.Run("export then fetch", func(t *testing.T) {
		require.NoError(t, be.Export(context.Background(), "stats.2025", doc))
		got, err := be.Fetch(context.Background(), "stats.2025")
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("export overwrites", func(t *testing.T) {
		next := []byte(`{}`)
		require.NoError(t, be.Export(context.Background(), "stats.2025", next))
		got, err := be.Fetch(context.Background(), "stats.2025")
		require.NoError(t, err)
		assert.Equal(t, next, got)
	})

	t.Run("fetch unknown key", func(t *testing.T) {
		_, err := be.Fetch(context.Background(), "unknown")
		assert.ErrorIs(t, err, ErrExportNotFound)
	})

	t.Run("empty destination", func(t *testing.T) {
		err := be.Export(context.Background(), "", doc)
		assert.EqualError(t, err, "destination is required")
	})
}
