// Package steplog records per-step timing for batch loads.
//
// Two sinks exist on purpose. The step sink lives inside the batch
// transaction: its entries disappear with a rollback, exactly like the data
// they describe. The failure sink writes on its own connection so the failure
// trail survives the rollback that triggered it.
package steplog

import (
	"context"
	"database/sql"
	"time"
)

// Status of a recorded step
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Entry is one immutable step record. No update or delete exists.
type Entry struct {
	Layer     string
	Batch     string // job name, e.g. "silver.load"
	Step      string // e.g. "truncate crm_cust_info"
	StartedAt time.Time
	Duration  time.Duration
	Status    Status
	Message   string
}

// Failure is one batch-level failure record. The failing entity and step are
// structural fields, not text embedded in the message.
type Failure struct {
	Layer      string
	Batch      string
	Entity     string
	Step       string
	Code       string
	Message    string
	OccurredAt time.Time
}

// StepSink records per-step entries inside the batch transaction. Clear is
// called at batch start; the step log holds only the latest run.
type StepSink interface {
	Clear(ctx context.Context, tx *sql.Tx) error
	Record(ctx context.Context, tx *sql.Tx, e Entry) error
}

// FailureSink persists batch failures outside any batch transaction. It
// accumulates across runs.
type FailureSink interface {
	RecordFailure(ctx context.Context, f Failure) error
}

// Timed measures fn and records one entry through sink. The entry is written
// only on success; failures are the orchestrator's to report, once, through
// the failure sink.
func Timed(ctx context.Context, tx *sql.Tx, sink StepSink, layer, batch, step string, fn func() (string, error)) error {
	start := time.Now()
	message, err := fn()
	if err != nil {
		return err
	}
	return sink.Record(ctx, tx, Entry{
		Layer:     layer,
		Batch:     batch,
		Step:      step,
		StartedAt: start,
		Duration:  time.Since(start),
		Status:    StatusSuccess,
		Message:   message,
	})
}
