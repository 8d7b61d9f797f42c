package steplog

import (
	"context"
	"database/sql"
	"sync"
)

// MemorySink is an in-memory StepSink and FailureSink for tests and dry runs.
type MemorySink struct {
	mu       sync.Mutex
	Entries  []Entry
	Failures []Failure
	Cleared  int
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Clear(ctx context.Context, tx *sql.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = nil
	m.Cleared++
	return nil
}

func (m *MemorySink) Record(ctx context.Context, tx *sql.Tx, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *MemorySink) RecordFailure(ctx context.Context, f Failure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, f)
	return nil
}
