// Package schema provisions the warehouse objects the pipeline writes to:
// the three layer schemas, the raw and cleansed tables, the star schema,
// and the step and failure logs.
package schema

import (
	"context"
	"fmt"
	"strings"

	"medallion/internal/steplog"
	"medallion/internal/warehouse"
	"medallion/pkg/errors"
	"medallion/pkg/models"
)

// Provisioner issues the DDL for one configured warehouse
type Provisioner struct {
	svc *warehouse.Service
	cfg *models.Config

	progress func(format string, args ...interface{})
}

// NewProvisioner creates a provisioner bound to a connected service
func NewProvisioner(svc *warehouse.Service, cfg *models.Config) *Provisioner {
	return &Provisioner{svc: svc, cfg: cfg}
}

// SetProgress registers a sink for informational progress messages
func (p *Provisioner) SetProgress(fn func(format string, args ...interface{})) {
	p.progress = fn
}

// Provision creates every schema and table the pipeline needs. All
// statements are IF NOT EXISTS so re-running against a provisioned
// warehouse is a no-op.
func (p *Provisioner) Provision(ctx context.Context) error {
	sections := []struct {
		name string
		ddl  func() string
	}{
		{"schemas", p.schemasDDL},
		{"bronze tables", p.bronzeDDL},
		{"silver tables", p.silverDDL},
		{"gold tables", p.goldDDL},
		{"log tables", p.logDDL},
	}

	for _, section := range sections {
		if err := p.svc.ExecuteSQL(ctx, section.ddl()); err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to provision "+section.name)
		}
		p.printf("  %s provisioned", section.name)
	}
	return nil
}

func (p *Provisioner) printf(format string, args ...interface{}) {
	if p.progress != nil {
		p.progress(format, args...)
	}
}

func (p *Provisioner) qualify(schema, table string) string {
	return warehouse.Qualify(p.svc.Database(), schema, table)
}

func (p *Provisioner) schemasDDL() string {
	db := p.svc.Database()
	return fmt.Sprintf(`
CREATE SCHEMA IF NOT EXISTS %s.%s;
CREATE SCHEMA IF NOT EXISTS %s.%s;
CREATE SCHEMA IF NOT EXISTS %s.%s;
`, db, p.cfg.Layers.Bronze, db, p.cfg.Layers.Silver, db, p.cfg.Layers.Gold)
}

// bronzeDDL declares the raw landing tables, one per source extract. Columns
// mirror the extract layout positionally; typing stays loose because the raw
// layer lands whatever the source systems send.
func (p *Provisioner) bronzeDDL() string {
	b := p.cfg.Layers.Bronze
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    cst_id             INTEGER,
    cst_key            VARCHAR(50),
    cst_firstname      VARCHAR(50),
    cst_lastname       VARCHAR(50),
    cst_marital_status VARCHAR(50),
    cst_gndr           VARCHAR(50),
    cst_create_date    DATE
);
CREATE TABLE IF NOT EXISTS %s (
    prd_id       INTEGER,
    prd_key      VARCHAR(50),
    prd_nm       VARCHAR(50),
    prd_cost     VARCHAR(50),
    prd_line     VARCHAR(50),
    prd_start_dt DATE
);
CREATE TABLE IF NOT EXISTS %s (
    sls_ord_num  VARCHAR(50),
    sls_prd_key  VARCHAR(50),
    sls_cust_id  INTEGER,
    sls_order_dt VARCHAR(50),
    sls_ship_dt  VARCHAR(50),
    sls_due_dt   VARCHAR(50),
    sls_sales    NUMBER(18,2),
    sls_quantity INTEGER,
    sls_price    NUMBER(18,2)
);
CREATE TABLE IF NOT EXISTS %s (
    cid   VARCHAR(50),
    bdate VARCHAR(50),
    gen   VARCHAR(50)
);
CREATE TABLE IF NOT EXISTS %s (
    cid   VARCHAR(50),
    cntry VARCHAR(50)
);
CREATE TABLE IF NOT EXISTS %s (
    id          VARCHAR(50),
    cat         VARCHAR(50),
    subcat      VARCHAR(50),
    maintenance VARCHAR(50)
);
`,
		p.qualify(b, "crm_cust_info"),
		p.qualify(b, "crm_prd_info"),
		p.qualify(b, "crm_sales_details"),
		p.qualify(b, "erp_cust_az12"),
		p.qualify(b, "erp_loc_a101"),
		p.qualify(b, "erp_px_cat_g1v2"))
}

// silverDDL declares the cleansed tables. Every table carries a
// dwh_create_date audit column populated by the warehouse at insert time.
func (p *Provisioner) silverDDL() string {
	s := p.cfg.Layers.Silver
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    cst_id             INTEGER,
    cst_key            VARCHAR(50),
    cst_firstname      VARCHAR(50),
    cst_lastname       VARCHAR(50),
    cst_marital_status VARCHAR(50),
    cst_gndr           VARCHAR(50),
    cst_create_date    DATE,
    dwh_create_date    TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);
CREATE TABLE IF NOT EXISTS %s (
    prd_id          INTEGER,
    cat_id          VARCHAR(50),
    prd_key         VARCHAR(50),
    prd_nm          VARCHAR(50),
    prd_cost        INTEGER,
    prd_line        VARCHAR(50),
    prd_start_dt    DATE,
    prd_end_dt      DATE,
    dwh_create_date TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);
CREATE TABLE IF NOT EXISTS %s (
    sls_ord_num     VARCHAR(50),
    sls_prd_key     VARCHAR(50),
    sls_cust_id     INTEGER,
    sls_order_dt    DATE,
    sls_ship_dt     DATE,
    sls_due_dt      DATE,
    sls_sales       NUMBER(18,2),
    sls_quantity    INTEGER,
    sls_price       NUMBER(18,2),
    dwh_create_date TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);
CREATE TABLE IF NOT EXISTS %s (
    cid             VARCHAR(50),
    bdate           DATE,
    gen             VARCHAR(50),
    dwh_create_date TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);
CREATE TABLE IF NOT EXISTS %s (
    cid             VARCHAR(50),
    cntry           VARCHAR(50),
    dwh_create_date TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);
CREATE TABLE IF NOT EXISTS %s (
    id              VARCHAR(50),
    cat             VARCHAR(50),
    subcat          VARCHAR(50),
    maintenance     VARCHAR(50),
    dwh_create_date TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
);
`,
		p.qualify(s, "crm_cust_info"),
		p.qualify(s, "crm_prd_info"),
		p.qualify(s, "crm_sales_details"),
		p.qualify(s, "erp_cust_az12"),
		p.qualify(s, "erp_loc_a101"),
		p.qualify(s, "erp_px_cat_g1v2"))
}

func (p *Provisioner) goldDDL() string {
	g := p.cfg.Layers.Gold
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    customer_key    INTEGER,
    customer_id     INTEGER,
    customer_number VARCHAR(50),
    first_name      VARCHAR(50),
    last_name       VARCHAR(50),
    country         VARCHAR(50),
    marital_status  VARCHAR(50),
    gender          VARCHAR(50),
    birthdate       DATE,
    create_date     DATE
);
CREATE TABLE IF NOT EXISTS %s (
    product_key    INTEGER,
    product_id     INTEGER,
    product_number VARCHAR(50),
    product_name   VARCHAR(50),
    category_id    VARCHAR(50),
    category       VARCHAR(50),
    subcategory    VARCHAR(50),
    maintenance    VARCHAR(50),
    cost           INTEGER,
    product_line   VARCHAR(50),
    start_date     DATE
);
CREATE TABLE IF NOT EXISTS %s (
    order_number  VARCHAR(50),
    product_key   INTEGER,
    customer_key  INTEGER,
    order_date    DATE,
    shipping_date DATE,
    due_date      DATE,
    sales_amount  NUMBER(18,2),
    quantity      INTEGER,
    price         NUMBER(18,2)
);
`,
		p.qualify(g, "dim_customers"),
		p.qualify(g, "dim_products"),
		p.qualify(g, "fact_sales"))
}

// logDDL declares one step log per layer schema plus the cross-layer failure
// log in PUBLIC, which batch rollbacks never touch.
func (p *Provisioner) logDDL() string {
	var sb strings.Builder
	for _, layer := range []string{p.cfg.Layers.Bronze, p.cfg.Layers.Silver, p.cfg.Layers.Gold} {
		fmt.Fprintf(&sb, `
CREATE TABLE IF NOT EXISTS %s (
    layer       VARCHAR(20),
    batch_name  VARCHAR(100),
    step_name   VARCHAR(100),
    started_at  TIMESTAMP_NTZ,
    duration_ms INTEGER,
    status      VARCHAR(10),
    message     VARCHAR(1000)
);
`, p.qualify(layer, steplog.StepTable))
	}
	fmt.Fprintf(&sb, `
CREATE TABLE IF NOT EXISTS %s (
    layer       VARCHAR(20),
    batch_name  VARCHAR(100),
    entity      VARCHAR(100),
    step_name   VARCHAR(100),
    error_code  VARCHAR(20),
    message     VARCHAR(2000),
    occurred_at TIMESTAMP_NTZ
);
`, p.qualify(steplog.FailureSchema, steplog.FailureTable))
	return sb.String()
}
