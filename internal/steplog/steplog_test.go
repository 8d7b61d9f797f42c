package steplog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimedRecordsSuccess(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	err := Timed(ctx, nil, sink, "silver", "silver.load", "truncate crm_cust_info", func() (string, error) {
		time.Sleep(time.Millisecond)
		return "table cleared", nil
	})
	require.NoError(t, err)

	require.Len(t, sink.Entries, 1)
	e := sink.Entries[0]
	assert.Equal(t, "silver", e.Layer)
	assert.Equal(t, "silver.load", e.Batch)
	assert.Equal(t, "truncate crm_cust_info", e.Step)
	assert.Equal(t, StatusSuccess, e.Status)
	assert.Equal(t, "table cleared", e.Message)
	assert.Greater(t, e.Duration, time.Duration(0))
}

func TestTimedDoesNotRecordFailure(t *testing.T) {
	sink := NewMemorySink()

	err := Timed(context.Background(), nil, sink, "silver", "silver.load", "insert crm_cust_info", func() (string, error) {
		return "", fmt.Errorf("insert exploded")
	})
	require.Error(t, err)

	// Failed steps produce no step entry; the orchestrator writes the one
	// failure record through the failure sink instead.
	assert.Empty(t, sink.Entries)
}

func TestMemorySinkClear(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, nil, Entry{Step: "a"}))
	require.NoError(t, sink.Record(ctx, nil, Entry{Step: "b"}))
	require.NoError(t, sink.Clear(ctx, nil))

	assert.Empty(t, sink.Entries)
	assert.Equal(t, 1, sink.Cleared)
}

func TestSummarize(t *testing.T) {
	entries := []Entry{
		{Batch: "bronze.load", Duration: 100 * time.Millisecond},
		{Batch: "silver.load", Duration: 50 * time.Millisecond},
		{Batch: "bronze.load", Duration: 200 * time.Millisecond},
	}

	summaries := Summarize(entries)
	require.Len(t, summaries, 2)

	assert.Equal(t, "bronze.load", summaries[0].Batch)
	assert.Equal(t, 2, summaries[0].Steps)
	assert.Equal(t, 300*time.Millisecond, summaries[0].Duration)

	assert.Equal(t, "silver.load", summaries[1].Batch)
	assert.Equal(t, 1, summaries[1].Steps)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}
