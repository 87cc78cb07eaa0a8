package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Predefined exporter names.
const (
	FileExporterName   = "file"
	BoltExporterName   = "bolt"
	RedisExporterName  = "redis"
	SQLiteExporterName = "sqlite"
)

// Ensure *fileExporter implements Exporter.
var _ Exporter = (*fileExporter)(nil)

// Exporter writes a serialized statistics document to a destination.
// The meaning of the destination depends on the implementation.
type Exporter interface {
	Export(ctx context.Context, destination string, doc []byte) error
}

// Fetcher reads back a document previously exported to destination.
type Fetcher interface {
	Fetch(ctx context.Context, destination string) ([]byte, error)
}

// StoredExporter is an exporter backed by a storage client that can
// read its documents back and must be closed on shutdown.
type StoredExporter interface {
	Exporter
	Fetcher
	Close() error
}

// Exporters indexes the available exporters by name.
type Exporters map[string]Exporter

// Get returns the exporter registered under name.
func (e Exporters) Get(name string) (Exporter, error) {
	if exp, ok := e[name]; ok && exp != nil {
		return exp, nil
	}
	return nil, ErrUnknownExporter
}

// GetFetcher returns the exporter registered under name when it can read
// documents back.
func (e Exporters) GetFetcher(name string) (Fetcher, error) {
	exp, err := e.Get(name)
	if err != nil {
		return nil, err
	}
	fetcher, ok := exp.(Fetcher)
	if !ok {
		return nil, ErrExportNotFetchable
	}
	return fetcher, nil
}

// Names lists registered exporters names in alphabetical order.
func (e Exporters) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type fileExporter struct {
	logger *zap.Logger
	folder string
}

// NewFileExporter provides an exporter writing documents to files. When a
// folder is set, only the base name of the destination is used inside it.
func NewFileExporter(logger *zap.Logger, folder string) Exporter {
	return &fileExporter{logger: logger, folder: folder}
}

// Export writes the document to the destination file, overwriting it.
func (fe *fileExporter) Export(_ context.Context, destination string, doc []byte) error {
	if destination == "" {
		return missingFieldError("destination")
	}
	path := destination
	if fe.folder != "" {
		if err := os.MkdirAll(fe.folder, 0o700); err != nil {
			return fmt.Errorf("failed to create export folder: %w", err)
		}
		path = filepath.Join(fe.folder, filepath.Base(destination))
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fe.logger.Debug("export: file written", zap.String("export.path", path), zap.Int("export.bytes", len(doc)))
	return nil
}
