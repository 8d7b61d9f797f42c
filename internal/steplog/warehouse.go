package steplog

import (
	"context"
	"database/sql"
	"fmt"

	"medallion/internal/warehouse"
	"medallion/pkg/errors"
)

const (
	// StepTable is the per-layer step log, one per layer schema.
	StepTable = "load_log"
	// FailureTable is the cross-layer failure log. It lives outside the
	// layer schemas so no layer reload ever touches it.
	FailureSchema = "PUBLIC"
	FailureTable  = "load_failures"
)

// WarehouseStepSink writes step entries to <layer schema>.load_log through
// the batch transaction.
type WarehouseStepSink struct {
	svc    *warehouse.Service
	schema string
}

// NewWarehouseStepSink creates a step sink for one layer schema
func NewWarehouseStepSink(svc *warehouse.Service, schema string) *WarehouseStepSink {
	return &WarehouseStepSink{svc: svc, schema: schema}
}

func (s *WarehouseStepSink) Clear(ctx context.Context, tx *sql.Tx) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s", warehouse.Qualify(s.svc.Database(), s.schema, StepTable))
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, errors.ErrCodeStepLogWrite, "Failed to clear step log").
			WithContext("schema", s.schema)
	}
	return nil
}

func (s *WarehouseStepSink) Record(ctx context.Context, tx *sql.Tx, e Entry) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (layer, batch_name, step_name, started_at, duration_ms, status, message) VALUES (?, ?, ?, ?, ?, ?, ?)",
		warehouse.Qualify(s.svc.Database(), s.schema, StepTable))
	_, err := tx.ExecContext(ctx, stmt,
		e.Layer, e.Batch, e.Step, e.StartedAt, e.Duration.Milliseconds(), string(e.Status), e.Message)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStepLogWrite, "Failed to record step").
			WithContext("step", e.Step)
	}
	return nil
}

// WarehouseFailureSink writes failure records on the service's own
// connection, never inside the batch transaction.
type WarehouseFailureSink struct {
	svc *warehouse.Service
}

// NewWarehouseFailureSink creates the cross-layer failure sink
func NewWarehouseFailureSink(svc *warehouse.Service) *WarehouseFailureSink {
	return &WarehouseFailureSink{svc: svc}
}

func (s *WarehouseFailureSink) RecordFailure(ctx context.Context, f Failure) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (layer, batch_name, entity, step_name, error_code, message, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		warehouse.Qualify(s.svc.Database(), FailureSchema, FailureTable))
	err := s.svc.ExecOutsideTx(ctx, stmt,
		f.Layer, f.Batch, f.Entity, f.Step, f.Code, f.Message, f.OccurredAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStepLogWrite, "Failed to record batch failure").
			WithContext("layer", f.Layer)
	}
	return nil
}
