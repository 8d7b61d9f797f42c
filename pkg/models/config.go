package models

type Config struct {
    Warehouse Warehouse         `yaml:"warehouse"`
    Layers    Layers            `yaml:"layers"`
    Sources   map[string]Source `yaml:"sources"`
    Batch     Batch             `yaml:"batch"`
}

// Warehouse holds the Snowflake connection settings shared by all layers.
type Warehouse struct {
    Account   string `yaml:"account"`
    Username  string `yaml:"username"`
    Password  string `yaml:"password"`
    Role      string `yaml:"role"`
    Warehouse string `yaml:"warehouse"`
    Database  string `yaml:"database"`
    Timeout   string `yaml:"timeout"` // e.g. "30m"; zero means driver default
}

// Layers names the schema backing each pipeline stage.
type Layers struct {
    Bronze string `yaml:"bronze"`
    Silver string `yaml:"silver"`
    Gold   string `yaml:"gold"`
}

// Source describes one raw extract file feeding the bronze layer.
type Source struct {
    Path       string `yaml:"path"`
    Delimiter  string `yaml:"delimiter"`   // single character, default ","
    SkipHeader int    `yaml:"skip_header"` // leading rows to discard
    Table      string `yaml:"table"`       // target raw table in the bronze schema
}

// Batch contains load tuning knobs.
type Batch struct {
    InsertSize int `yaml:"insert_size"` // rows per multi-row INSERT, default 500
}

// SourceNames is the fixed ingestion order for the six raw extracts.
// Keys of Config.Sources are validated against this list.
var SourceNames = []string{
    "crm_cust_info",
    "crm_prd_info",
    "crm_sales_details",
    "erp_cust_az12",
    "erp_loc_a101",
    "erp_px_cat_g1v2",
}
