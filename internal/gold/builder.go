// Package gold materializes the star schema from the cleansed silver tables.
// Unlike silver, no row ever travels through the process: each table is
// rebuilt with one set-based INSERT..SELECT, surrogate keys assigned with
// ROW_NUMBER inside the warehouse.
package gold

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
	LayerName = "gold"
	BatchName = "gold.load"
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

// Builder rebuilds dim_customers, dim_products, and fact_sales in one
// transaction. Dimensions build before facts so the fact load can resolve
// surrogate keys.
type Builder struct {
	svc      *warehouse.Service
	cfg      *models.Config
	steps    steplog.StepSink
	failures steplog.FailureSink
	state    State

	progress func(format string, args ...interface{})
}

// NewBuilder creates a gold batch builder with injected log sinks
func NewBuilder(svc *warehouse.Service, cfg *models.Config, steps steplog.StepSink, failures steplog.FailureSink) *Builder {
	return &Builder{svc: svc, cfg: cfg, steps: steps, failures: failures, state: StateIdle}
}

// SetProgress registers a sink for informational progress messages
func (b *Builder) SetProgress(fn func(format string, args ...interface{})) {
	b.progress = fn
}

// State reports the batch state
func (b *Builder) State() State {
	return b.state
}

type table struct {
	name  string
	build func(ctx context.Context, tx *sql.Tx) (int64, error)
}

// tables returns the builds in dependency order
func (b *Builder) tables() []table {
	return []table{
		{name: "dim_customers", build: b.buildDimCustomers},
		{name: "dim_products", build: b.buildDimProducts},
		{name: "fact_sales", build: b.buildFactSales},
	}
}

// Run executes the gold batch
func (b *Builder) Run(ctx context.Context) error {
	if b.state == StateRunning {
		return errors.New(errors.ErrCodeBatchAborted, "batch already running")
	}
	b.state = StateRunning

	start := time.Now()
	err := b.run(ctx)
	total := time.Since(start)

	if err != nil {
		b.state = StateRolledBack
		b.recordFailure(ctx, err)
	} else {
		b.state = StateCommitted
	}

	b.printf("Gold batch %s in %s", b.state, total.Round(time.Millisecond))
	return err
}

func (b *Builder) run(ctx context.Context) error {
	tx, err := b.svc.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin gold batch transaction")
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				b.printf("rollback failed: %v", rbErr)
			}
		}
	}()

	if err := b.steps.Clear(ctx, tx); err != nil {
		return stepError(err, "", "clear step log")
	}

	for _, tbl := range b.tables() {
		truncStep := "truncate " + tbl.name
		err := steplog.Timed(ctx, tx, b.steps, LayerName, BatchName, truncStep, func() (string, error) {
			return "table cleared", b.svc.TruncateTable(ctx, tx, b.cfg.Layers.Gold, tbl.name)
		})
		if err != nil {
			return stepError(err, tbl.name, truncStep)
		}

		buildStep := "build " + tbl.name
		err = steplog.Timed(ctx, tx, b.steps, LayerName, BatchName, buildStep, func() (string, error) {
			n, buildErr := tbl.build(ctx, tx)
			if buildErr != nil {
				return "", buildErr
			}
			return fmt.Sprintf("%d rows built", n), nil
		})
		if err != nil {
			return stepError(err, tbl.name, buildStep)
		}

		b.printf("  %s rebuilt", tbl.name)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit gold batch")
	}
	committed = true
	return nil
}

func (b *Builder) recordFailure(ctx context.Context, cause error) {
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

	if err := b.failures.RecordFailure(ctx, failure); err != nil {
		b.printf("failed to record batch failure: %v", err)
	}
}

func (b *Builder) printf(format string, args ...interface{}) {
	if b.progress != nil {
		b.progress(format, args...)
	}
}

func stepError(err error, tableName, step string) error {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeBatchAborted, err.Error())
	}
	if tableName != "" {
		if _, exists := appErr.Context["entity"]; !exists {
			appErr.WithContext("entity", tableName)
		}
	}
	return appErr.WithContext("step", step)
}

func (b *Builder) silverTable(name string) string {
	return warehouse.Qualify(b.svc.Database(), b.cfg.Layers.Silver, name)
}

func (b *Builder) goldTable(name string) string {
	return warehouse.Qualify(b.svc.Database(), b.cfg.Layers.Gold, name)
}

func (b *Builder) execBuild(ctx context.Context, tx *sql.Tx, query string) (int64, error) {
	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, errors.SQLError("Failed to build gold table", query, err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// buildDimCustomers joins the cleansed CRM master with the ERP demographic
// and location feeds. CRM gender wins when present, the ERP value fills in
// when the CRM record says N/A.
func (b *Builder) buildDimCustomers(ctx context.Context, tx *sql.Tx) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s
    (customer_key, customer_id, customer_number, first_name, last_name,
     country, marital_status, gender, birthdate, create_date)
SELECT
    ROW_NUMBER() OVER (ORDER BY ci.cst_create_date, ci.cst_id),
    ci.cst_id,
    ci.cst_key,
    ci.cst_firstname,
    ci.cst_lastname,
    COALESCE(la.cntry, 'N/A'),
    ci.cst_marital_status,
    CASE WHEN ci.cst_gndr != 'N/A' THEN ci.cst_gndr
         ELSE COALESCE(ca.gen, 'N/A')
    END,
    ca.bdate,
    ci.cst_create_date
FROM %s ci
LEFT JOIN %s ca ON ci.cst_key = ca.cid
LEFT JOIN %s la ON ci.cst_key = la.cid`,
		b.goldTable("dim_customers"),
		b.silverTable("crm_cust_info"),
		b.silverTable("erp_cust_az12"),
		b.silverTable("erp_loc_a101"))
	return b.execBuild(ctx, tx, query)
}

// buildDimProducts keeps only current product versions, the historical ones
// carry an end date and stay out of the dimension.
func (b *Builder) buildDimProducts(ctx context.Context, tx *sql.Tx) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s
    (product_key, product_id, product_number, product_name, category_id,
     category, subcategory, maintenance, cost, product_line, start_date)
SELECT
    ROW_NUMBER() OVER (ORDER BY pn.prd_start_dt, pn.prd_key),
    pn.prd_id,
    pn.prd_key,
    pn.prd_nm,
    pn.cat_id,
    pc.cat,
    pc.subcat,
    pc.maintenance,
    pn.prd_cost,
    pn.prd_line,
    pn.prd_start_dt
FROM %s pn
LEFT JOIN %s pc ON pn.cat_id = pc.id
WHERE pn.prd_end_dt IS NULL`,
		b.goldTable("dim_products"),
		b.silverTable("crm_prd_info"),
		b.silverTable("erp_px_cat_g1v2"))
	return b.execBuild(ctx, tx, query)
}

// buildFactSales resolves surrogate keys against the freshly built dims
func (b *Builder) buildFactSales(ctx context.Context, tx *sql.Tx) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s
    (order_number, product_key, customer_key, order_date, shipping_date,
     due_date, sales_amount, quantity, price)
SELECT
    sd.sls_ord_num,
    pr.product_key,
    cu.customer_key,
    sd.sls_order_dt,
    sd.sls_ship_dt,
    sd.sls_due_dt,
    sd.sls_sales,
    sd.sls_quantity,
    sd.sls_price
FROM %s sd
LEFT JOIN %s pr ON sd.sls_prd_key = pr.product_number
LEFT JOIN %s cu ON sd.sls_cust_id = cu.customer_id`,
		b.goldTable("fact_sales"),
		b.silverTable("crm_sales_details"),
		b.goldTable("dim_products"),
		b.goldTable("dim_customers"))
	return b.execBuild(ctx, tx, query)
}
