package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteExporter(t *testing.T) {
	config := &Config{SQLite: SQLiteConfig{Enable: true, FilePath: filepath.Join(t.TempDir(), "data", "stats.db")}}
	db, err := GetSQLiteClient(config)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := NewMockClocker()
	se := NewSQLiteExporter(zap.NewNop(), clock, db).(*sqliteExporter)
	doc := []byte("{\n    \"return_rate_percent\": 100\n}\n")

	require.NoError(t, se.Export(context.Background(), "weekly", doc))
	got, err := se.Fetch(context.Background(), "weekly")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	var exportedAt string
	require.NoError(t, db.Get(&exportedAt, `SELECT exported_at FROM stats_exports WHERE destination = ?`, "weekly"))
	assert.Equal(t, "2023-07-02T00:00:00Z", exportedAt)

	clock.AddDays(1)
	require.NoError(t, se.Export(context.Background(), "weekly", []byte("{}")))
	var rows int
	require.NoError(t, db.Get(&rows, `SELECT COUNT(*) FROM stats_exports`))
	assert.Equal(t, 1, rows)
	got, err = se.Fetch(context.Background(), "weekly")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), got)

	_, err = se.Fetch(context.Background(), "monthly")
	assert.ErrorIs(t, err, ErrExportNotFound)

	assert.EqualError(t, se.Export(context.Background(), "", doc), "destination is required")
}
