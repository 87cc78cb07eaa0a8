package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// This file contains mocks definitions needed to perform unit tests.

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// AddDays moves the mocked time forward.
func (mck *MockClocker) AddDays(days int) {
	mck.MockNow = mck.MockNow.AddDate(0, 0, days)
}

// MockUIDHandler implements a fake UIDHandler. With an empty MockedUID
// it generates sequential ids so that successive calls stay distinct.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
	mu        sync.Mutex
	count     int
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	if muid.MockedUID != "" {
		return prefix + ":" + muid.MockedUID
	}
	muid.mu.Lock()
	defer muid.mu.Unlock()
	muid.count++
	return fmt.Sprintf("%s:%d", prefix, muid.count)
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// MockExporter records exported documents by destination.
type MockExporter struct {
	ExportFunc func(ctx context.Context, destination string, doc []byte) error
	Docs       map[string][]byte
}

func NewMockExporter() *MockExporter {
	return &MockExporter{Docs: map[string][]byte{}}
}

// Export stores the document unless ExportFunc is set, in which case it delegates.
func (me *MockExporter) Export(ctx context.Context, destination string, doc []byte) error {
	if me.ExportFunc != nil {
		return me.ExportFunc(ctx, destination, doc)
	}
	me.Docs[destination] = doc
	return nil
}

// newTestAPIHandler builds an api handler on top of a real library service
// with mocked time and sequential ids.
func newTestAPIHandler(config *Config, clock *MockClocker, exporters Exporters) (*APIHandler, *MockUIDHandler) {
	if config == nil {
		config = &Config{}
	}
	ids := NewMockUIDHandler("", true)
	lib := NewLibrary(zap.NewNop(), clock, DefaultLoanPeriodDays)
	ls := NewLibraryService(zap.NewNop(), config, ids, lib, exporters)
	api := NewAPIHandler(zap.NewNop(), config, &Statistics{started: clock.Now()}, clock, ids, ls)
	return api, ids
}
