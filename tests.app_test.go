package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// demoDocument is the statistics file written by the demo session.
const demoDocument = `{
    "popularity": {
        "Лісова пісня": 1,
        "Каменярі": 1
    },
    "return_rate_percent": 100.0,
    "average_reading_time_days": {
        "Лісова пісня": 10.0,
        "Каменярі": 20.0
    }
}`

func TestRunDemo(t *testing.T) {
	destination := filepath.Join(t.TempDir(), "library_stats.json")
	var out bytes.Buffer
	require.NoError(t, RunDemo(context.Background(), zap.NewNop(), NewMockClocker(), &out, destination))

	content, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, demoDocument, string(content))
	assert.Equal(t, demoDocument+"\n", out.String())
	assert.True(t, json.Valid(content))
}

func TestRootCommand(t *testing.T) {
	t.Run("demo", func(t *testing.T) {
		destination := filepath.Join(t.TempDir(), "stats.json")
		var out, errOut bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"demo", "--output", destination})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), `"return_rate_percent": 100.0`)
		assert.Contains(t, errOut.String(), "statistics exported to "+destination)
		assert.FileExists(t, destination)
	})

	t.Run("version", func(t *testing.T) {
		GitTag = "v0.1.0"
		defer func() { GitTag = "" }()
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "tag: v0.1.0")
	})
}
