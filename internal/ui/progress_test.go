package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{3500 * time.Millisecond, "3.5s"},
		{90 * time.Second, "1m30s"},
		{61 * time.Minute, "1h1m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestBatchProgressCounts(t *testing.T) {
	p := NewBatchProgress(3)

	p.Update(1, "load crm_cust_info", true)
	p.Update(2, "load crm_prd_info", true)
	p.Update(3, "load crm_sales_details", false)

	assert.Equal(t, 2, p.successCount)
	assert.Equal(t, 1, p.failureCount)
	assert.Equal(t, 3, p.current)
}

func TestSpinnerStop(t *testing.T) {
	s := NewSpinner("loading")
	s.Start()
	s.UpdateMessage("still loading")
	s.Stop(true, "done")

	assert.True(t, s.stopped)
}
