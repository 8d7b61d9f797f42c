package bronze

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medallion/internal/steplog"
	"medallion/internal/warehouse"
	"medallion/pkg/errors"
	"medallion/pkg/models"
)

// Layer and batch identity used in log records
const (
	LayerName = "bronze"
	BatchName = "bronze.load"
)

// State of a batch run
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// sourceColumns fixes the positional column list of each raw landing table.
var sourceColumns = map[string][]string{
	"crm_cust_info":     {"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"},
	"crm_prd_info":      {"prd_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt"},
	"crm_sales_details": {"sls_ord_num", "sls_prd_key", "sls_cust_id", "sls_order_dt", "sls_ship_dt", "sls_due_dt", "sls_sales", "sls_quantity", "sls_price"},
	"erp_cust_az12":     {"cid", "bdate", "gen"},
	"erp_loc_a101":      {"cid", "cntry"},
	"erp_px_cat_g1v2":   {"id", "cat", "subcat", "maintenance"},
}

// Loader lands the raw extracts: for each configured source, truncate the
// landing table and bulk-append the file contents, all inside one
// transaction with the same all-or-nothing semantics as the silver batch.
type Loader struct {
	svc      *warehouse.Service
	cfg      *models.Config
	steps    steplog.StepSink
	failures steplog.FailureSink
	state    State

	progress func(format string, args ...interface{})
}

// NewLoader creates a bronze batch loader with injected log sinks
func NewLoader(svc *warehouse.Service, cfg *models.Config, steps steplog.StepSink, failures steplog.FailureSink) *Loader {
	return &Loader{svc: svc, cfg: cfg, steps: steps, failures: failures, state: StateIdle}
}

// State reports the batch state
func (l *Loader) State() State {
	return l.state
}

// SetProgress registers a sink for informational progress messages
func (l *Loader) SetProgress(fn func(format string, args ...interface{})) {
	l.progress = fn
}

// Run ingests all configured sources in the fixed source order
func (l *Loader) Run(ctx context.Context) error {
	if l.state == StateRunning {
		return errors.New(errors.ErrCodeBatchAborted, "batch already running")
	}
	l.state = StateRunning

	start := time.Now()
	err := l.run(ctx)
	total := time.Since(start)

	if err != nil {
		l.state = StateRolledBack
		l.recordFailure(ctx, err)
	} else {
		l.state = StateCommitted
	}

	l.printf("Bronze batch %s in %s", l.state, total.Round(time.Millisecond))
	return err
}

func (l *Loader) run(ctx context.Context) error {
	tx, err := l.svc.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin bronze batch transaction")
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				l.printf("rollback failed: %v", rbErr)
			}
		}
	}()

	if err := l.steps.Clear(ctx, tx); err != nil {
		return stepError(err, "", "clear step log")
	}

	for _, name := range models.SourceNames {
		source, configured := l.cfg.Sources[name]
		if !configured {
			return errors.New(errors.ErrCodeConfigMissing, "source not configured").
				WithContext("entity", name).
				WithContext("step", "load "+name)
		}

		if err := l.loadSource(ctx, tx, name, source); err != nil {
			return err
		}
		l.printf("  %s landed", name)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit bronze batch")
	}
	committed = true
	return nil
}

func (l *Loader) loadSource(ctx context.Context, tx *sql.Tx, name string, source models.Source) error {
	table := source.Table
	if table == "" {
		table = name
	}
	columns := sourceColumns[name]

	truncStep := "truncate " + name
	err := steplog.Timed(ctx, tx, l.steps, LayerName, BatchName, truncStep, func() (string, error) {
		return "table cleared", l.svc.TruncateTable(ctx, tx, l.cfg.Layers.Bronze, table)
	})
	if err != nil {
		return stepError(err, name, truncStep)
	}

	loadStep := "load " + name
	err = steplog.Timed(ctx, tx, l.steps, LayerName, BatchName, loadStep, func() (string, error) {
		delimiter := ','
		if source.Delimiter != "" {
			delimiter = rune(source.Delimiter[0])
		}

		rows, readErr := ReadDelimited(source.Path, delimiter, source.SkipHeader, len(columns))
		if readErr != nil {
			return "", readErr
		}

		n, insErr := l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Bronze, table, columns, rows, l.cfg.Batch.InsertSize)
		if insErr != nil {
			return "", insErr
		}
		return fmt.Sprintf("%d rows landed", n), nil
	})
	if err != nil {
		return stepError(err, name, loadStep)
	}

	return nil
}

func (l *Loader) recordFailure(ctx context.Context, cause error) {
	failure := steplog.Failure{
		Layer:      LayerName,
		Batch:      BatchName,
		Code:       string(errors.GetErrorCode(cause)),
		Message:    cause.Error(),
		OccurredAt: time.Now(),
	}
	if v, ok := errors.GetContext(cause, "entity"); ok {
		failure.Entity = fmt.Sprint(v)
	}
	if v, ok := errors.GetContext(cause, "step"); ok {
		failure.Step = fmt.Sprint(v)
	}

	if err := l.failures.RecordFailure(ctx, failure); err != nil {
		l.printf("failed to record batch failure: %v", err)
	}
}

func (l *Loader) printf(format string, args ...interface{}) {
	if l.progress != nil {
		l.progress(format, args...)
	}
}

func stepError(err error, entityName, step string) error {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeBatchAborted, err.Error())
	}
	if entityName != "" {
		if _, exists := appErr.Context["entity"]; !exists {
			appErr.WithContext("entity", entityName)
		}
	}
	return appErr.WithContext("step", step)
}
