package silver

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
	LayerName = "silver"
	BatchName = "silver.load"
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

// Loader runs the silver batch: for each of the six entities, truncate the
// cleansed table and repopulate it from the current bronze snapshot, all
// inside one transaction. Any failure rolls the whole batch back and leaves
// exactly one record in the failure sink.
type Loader struct {
	svc      *warehouse.Service
	cfg      *models.Config
	steps    steplog.StepSink
	failures steplog.FailureSink
	state    State

	// now anchors the ERP birth-date validity check
	now func() time.Time

	// progress, when set, receives informational messages outside the
	// transactional guarantee
	progress func(format string, args ...interface{})
}

// NewLoader creates a silver batch loader with injected log sinks
func NewLoader(svc *warehouse.Service, cfg *models.Config, steps steplog.StepSink, failures steplog.FailureSink) *Loader {
	return &Loader{
		svc:      svc,
		cfg:      cfg,
		steps:    steps,
		failures: failures,
		state:    StateIdle,
		now:      time.Now,
	}
}

// SetProgress registers a sink for informational progress messages
func (l *Loader) SetProgress(fn func(format string, args ...interface{})) {
	l.progress = fn
}

// State reports the batch state
func (l *Loader) State() State {
	return l.state
}

type entity struct {
	name string
	load func(ctx context.Context, tx *sql.Tx) (int64, error)
}

// entities returns the six loads in their fixed execution order
func (l *Loader) entities() []entity {
	return []entity{
		{name: "crm_cust_info", load: l.loadCustomers},
		{name: "crm_prd_info", load: l.loadProducts},
		{name: "crm_sales_details", load: l.loadSales},
		{name: "erp_cust_az12", load: l.loadErpCustomers},
		{name: "erp_loc_a101", load: l.loadErpLocations},
		{name: "erp_px_cat_g1v2", load: l.loadCategories},
	}
}

// Run executes the whole batch. The total wall-clock time is reported as a
// progress message whether the batch commits or rolls back.
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

	l.printf("Silver batch %s in %s", l.state, total.Round(time.Millisecond))
	return err
}

func (l *Loader) run(ctx context.Context) error {
	tx, err := l.svc.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin silver batch transaction")
	}

	committed := false
	defer func() {
		if !committed {
			// Undo every truncate, insert, and step-log write of this run.
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				l.printf("rollback failed: %v", rbErr)
			}
		}
	}()

	if err := l.steps.Clear(ctx, tx); err != nil {
		return stepError(err, "", "clear step log")
	}

	for _, e := range l.entities() {
		truncStep := "truncate " + e.name
		err := steplog.Timed(ctx, tx, l.steps, LayerName, BatchName, truncStep, func() (string, error) {
			return "table cleared", l.svc.TruncateTable(ctx, tx, l.cfg.Layers.Silver, e.name)
		})
		if err != nil {
			return stepError(err, e.name, truncStep)
		}

		loadStep := "load " + e.name
		err = steplog.Timed(ctx, tx, l.steps, LayerName, BatchName, loadStep, func() (string, error) {
			n, loadErr := e.load(ctx, tx)
			if loadErr != nil {
				return "", loadErr
			}
			return fmt.Sprintf("%d rows loaded", n), nil
		})
		if err != nil {
			return stepError(err, e.name, loadStep)
		}

		l.printf("  %s reloaded", e.name)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit silver batch")
	}
	committed = true
	return nil
}

// recordFailure writes the single failure record for this batch. It runs
// after rollback, outside the batch transaction, so it survives the abort.
func (l *Loader) recordFailure(ctx context.Context, cause error) {
	failure := steplog.Failure{
		Layer:      LayerName,
		Batch:      BatchName,
		Code:       string(errors.GetErrorCode(cause)),
		Message:    cause.Error(),
		OccurredAt: l.now(),
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

// stepError tags an error with the failing entity and step
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

// Per-entity loads: read the bronze snapshot, run the cleansing transform,
// bulk-append into the silver table.

func (l *Loader) bronzeTable(name string) string {
	return warehouse.Qualify(l.svc.Database(), l.cfg.Layers.Bronze, name)
}

func (l *Loader) loadCustomers(ctx context.Context, tx *sql.Tx) (int64, error) {
	raw, err := fetchCustomers(ctx, tx, l.bronzeTable("crm_cust_info"))
	if err != nil {
		return 0, err
	}

	cleansed := TransformCustomers(raw)
	rows := make([][]interface{}, len(cleansed))
	for i, c := range cleansed {
		rows[i] = []interface{}{c.ID, c.Key, c.FirstName, c.LastName, c.Marital, c.Gender, c.CreateDate}
	}
	return l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Silver, "crm_cust_info",
		[]string{"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"},
		rows, l.cfg.Batch.InsertSize)
}

func (l *Loader) loadProducts(ctx context.Context, tx *sql.Tx) (int64, error) {
	raw, err := fetchProducts(ctx, tx, l.bronzeTable("crm_prd_info"))
	if err != nil {
		return 0, err
	}

	cleansed, err := TransformProducts(raw)
	if err != nil {
		return 0, err
	}
	rows := make([][]interface{}, len(cleansed))
	for i, p := range cleansed {
		rows[i] = []interface{}{p.ID, p.CategoryID, p.Number, p.Name, p.Cost, p.Line, p.StartDate, nullableTime(p.EndDate)}
	}
	return l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Silver, "crm_prd_info",
		[]string{"prd_id", "cat_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt", "prd_end_dt"},
		rows, l.cfg.Batch.InsertSize)
}

func (l *Loader) loadSales(ctx context.Context, tx *sql.Tx) (int64, error) {
	raw, err := fetchSales(ctx, tx, l.bronzeTable("crm_sales_details"))
	if err != nil {
		return 0, err
	}

	cleansed, err := TransformSales(raw)
	if err != nil {
		return 0, err
	}
	rows := make([][]interface{}, len(cleansed))
	for i, s := range cleansed {
		rows[i] = []interface{}{
			s.OrderNumber, s.ProductKey, s.CustomerID,
			nullableTime(s.OrderDate), nullableTime(s.ShipDate), nullableTime(s.DueDate),
			s.Sales, s.Quantity, s.Price,
		}
	}
	return l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Silver, "crm_sales_details",
		[]string{"sls_ord_num", "sls_prd_key", "sls_cust_id", "sls_order_dt", "sls_ship_dt", "sls_due_dt", "sls_sales", "sls_quantity", "sls_price"},
		rows, l.cfg.Batch.InsertSize)
}

func (l *Loader) loadErpCustomers(ctx context.Context, tx *sql.Tx) (int64, error) {
	raw, err := fetchErpCustomers(ctx, tx, l.bronzeTable("erp_cust_az12"))
	if err != nil {
		return 0, err
	}

	cleansed := TransformErpCustomers(raw, l.now())
	rows := make([][]interface{}, len(cleansed))
	for i, c := range cleansed {
		rows[i] = []interface{}{c.ID, nullableTime(c.BirthDate), c.Gender}
	}
	return l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Silver, "erp_cust_az12",
		[]string{"cid", "bdate", "gen"}, rows, l.cfg.Batch.InsertSize)
}

func (l *Loader) loadErpLocations(ctx context.Context, tx *sql.Tx) (int64, error) {
	raw, err := fetchErpLocations(ctx, tx, l.bronzeTable("erp_loc_a101"))
	if err != nil {
		return 0, err
	}

	cleansed := TransformErpLocations(raw)
	rows := make([][]interface{}, len(cleansed))
	for i, loc := range cleansed {
		rows[i] = []interface{}{loc.ID, loc.Country}
	}
	return l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Silver, "erp_loc_a101",
		[]string{"cid", "cntry"}, rows, l.cfg.Batch.InsertSize)
}

func (l *Loader) loadCategories(ctx context.Context, tx *sql.Tx) (int64, error) {
	raw, err := fetchCategories(ctx, tx, l.bronzeTable("erp_px_cat_g1v2"))
	if err != nil {
		return 0, err
	}

	cleansed := TransformCategories(raw)
	rows := make([][]interface{}, len(cleansed))
	for i, c := range cleansed {
		rows[i] = []interface{}{c.ID, c.Category, c.Subcategory, c.Maintenance}
	}
	return l.svc.InsertBatch(ctx, tx, l.cfg.Layers.Silver, "erp_px_cat_g1v2",
		[]string{"id", "cat", "subcat", "maintenance"}, rows, l.cfg.Batch.InsertSize)
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
