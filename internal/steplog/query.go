package steplog

import (
	"context"
	"fmt"
	"time"

	"medallion/internal/warehouse"
)

// ReadSteps returns the step entries of the latest run for one layer schema,
// in execution order.
func ReadSteps(ctx context.Context, svc *warehouse.Service, schema string) ([]Entry, error) {
	query := fmt.Sprintf(
		"SELECT layer, batch_name, step_name, started_at, duration_ms, status, message FROM %s ORDER BY started_at",
		warehouse.Qualify(svc.Database(), schema, StepTable))

	rows, err := svc.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		var status string
		if err := rows.Scan(&e.Layer, &e.Batch, &e.Step, &e.StartedAt, &durationMs, &status, &e.Message); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.Status = Status(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReadFailures returns the accumulated failure records, newest first.
func ReadFailures(ctx context.Context, svc *warehouse.Service) ([]Failure, error) {
	query := fmt.Sprintf(
		"SELECT layer, batch_name, entity, step_name, error_code, message, occurred_at FROM %s ORDER BY occurred_at DESC",
		warehouse.Qualify(svc.Database(), FailureSchema, FailureTable))

	rows, err := svc.QueryRows(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Layer, &f.Batch, &f.Entity, &f.Step, &f.Code, &f.Message, &f.OccurredAt); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// BatchSummary aggregates step entries by batch name.
type BatchSummary struct {
	Batch    string
	Steps    int
	Duration time.Duration
}

// Summarize groups step entries by batch name, preserving first-seen order.
func Summarize(entries []Entry) []BatchSummary {
	index := make(map[string]int)
	var out []BatchSummary
	for _, e := range entries {
		i, ok := index[e.Batch]
		if !ok {
			i = len(out)
			index[e.Batch] = i
			out = append(out, BatchSummary{Batch: e.Batch})
		}
		out[i].Steps++
		out[i].Duration += e.Duration
	}
	return out
}
