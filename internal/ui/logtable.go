package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"medallion/internal/steplog"
)

// LogRenderer formats step and failure log records for terminal display
type LogRenderer struct {
	useColor bool
}

// NewLogRenderer creates a renderer. Color is dropped automatically when
// stdout is not a terminal.
func NewLogRenderer() *LogRenderer {
	return &LogRenderer{useColor: supportsColor}
}

// RenderSteps renders the step log of one layer as a table
func (r *LogRenderer) RenderSteps(entries []steplog.Entry) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"#", "Layer", "Step", "Started", "Duration", "Status", "Message"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for i, e := range entries {
		status := string(e.Status)
		if r.useColor {
			switch e.Status {
			case steplog.StatusSuccess:
				status = color.GreenString(string(e.Status))
			case steplog.StatusFailure:
				status = color.RedString(string(e.Status))
			}
		}

		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			e.Layer,
			e.Step,
			e.StartedAt.Format("2006-01-02 15:04:05"),
			e.Duration.Round(time.Millisecond).String(),
			status,
			e.Message,
		})
	}

	table.Render()
	return buf.String()
}

// RenderFailures renders the accumulated failure records as a table
func (r *LogRenderer) RenderFailures(failures []steplog.Failure) string {
	if len(failures) == 0 {
		return "No recorded failures.\n"
	}

	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Occurred", "Layer", "Batch", "Entity", "Step", "Code", "Message"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, f := range failures {
		code := f.Code
		if r.useColor {
			code = color.RedString(code)
		}
		table.Append([]string{
			f.OccurredAt.Format("2006-01-02 15:04:05"),
			f.Layer,
			f.Batch,
			f.Entity,
			f.Step,
			code,
			f.Message,
		})
	}

	table.Render()
	return buf.String()
}

// RenderSummary renders per-batch aggregates of the step log
func (r *LogRenderer) RenderSummary(summaries []steplog.BatchSummary) string {
	var buf strings.Builder

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Batch", "Steps", "Total Duration"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, s := range summaries {
		table.Append([]string{
			s.Batch,
			fmt.Sprintf("%d", s.Steps),
			s.Duration.Round(time.Millisecond).String(),
		})
	}

	table.Render()
	return buf.String()
}
