package silver

import "time"

// Raw row shapes as they land in the bronze layer: weakly typed, mostly free
// text even where semantically numeric or date. Blank strings stand in for
// SQL nulls on text columns; numeric nulls are nil pointers.

// RawCustomer is one crm_cust_info row
type RawCustomer struct {
	ID         string // cst_id, numeric-as-text
	Key        string // cst_key
	FirstName  string // cst_firstname
	LastName   string // cst_lastname
	Marital    string // cst_marital_status, single-letter code
	Gender     string // cst_gndr, single-letter code
	CreateDate string // cst_create_date, ISO date as text
}

// RawProduct is one crm_prd_info row
type RawProduct struct {
	ID        string // prd_id
	Key       string // prd_key, composite category+product
	Name      string // prd_nm
	Cost      string // prd_cost, numeric-as-text
	Line      string // prd_line, single-letter code
	StartDate string // prd_start_dt, ISO date as text
}

// RawSale is one crm_sales_details row
type RawSale struct {
	OrderNumber string   // sls_ord_num
	ProductKey  string   // sls_prd_key
	CustomerID  string   // sls_cust_id
	OrderDate   string   // sls_order_dt, 8-digit code or garbage
	ShipDate    string   // sls_ship_dt
	DueDate     string   // sls_due_dt
	Sales       *float64 // sls_sales
	Quantity    *int     // sls_quantity
	Price       *float64 // sls_price
}

// RawErpCustomer is one erp_cust_az12 row
type RawErpCustomer struct {
	ID        string // cid, possibly prefixed
	BirthDate string // bdate, ISO date as text
	Gender    string // gen
}

// RawErpLocation is one erp_loc_a101 row
type RawErpLocation struct {
	ID      string // cid, hyphenated
	Country string // cntry, code or name
}

// RawCategory is one erp_px_cat_g1v2 row
type RawCategory struct {
	ID          string
	Category    string
	Subcategory string
	Maintenance string
}

// Cleansed row shapes. Categorical fields always carry a defined label, the
// sentinel "N/A" included; only dates may be null.

// Customer is a cleansed, deduplicated customer profile
type Customer struct {
	ID         string
	Key        string
	FirstName  string
	LastName   string
	Marital    string
	Gender     string
	CreateDate time.Time
}

// Product is a cleansed product version with a derived validity interval
type Product struct {
	ID         string
	CategoryID string // derived from the key prefix
	Number     string // derived from the key suffix; the downstream join key
	Name       string
	Cost       int
	Line       string
	StartDate  time.Time
	EndDate    *time.Time // nil for the latest version
}

// Sale is a cleansed, reconciled sales line
type Sale struct {
	OrderNumber string
	ProductKey  string
	CustomerID  string
	OrderDate   *time.Time
	ShipDate    *time.Time
	DueDate     *time.Time
	Sales       float64
	Quantity    int
	Price       float64
}

// ErpCustomer is a cleansed ERP customer demographic row
type ErpCustomer struct {
	ID        string
	BirthDate *time.Time
	Gender    string
}

// ErpLocation is a cleansed ERP location row
type ErpLocation struct {
	ID      string
	Country string
}

// Category is the cleansed product category lookup row
type Category struct {
	ID          string
	Category    string
	Subcategory string
	Maintenance string
}
