package warehouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	config := Config{
		Account:   "test123.us-east-1",
		Username:  "etl_user",
		Password:  "testpass",
		Database:  "DWH",
		Warehouse: "LOAD_WH",
		Role:      "LOADER",
		Timeout:   30 * time.Second,
	}

	service := NewService(config)

	assert.NotNil(t, service)
	assert.Equal(t, config, service.config)
	assert.False(t, service.connected)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Account:   "test123.us-east-1",
				Username:  "etl_user",
				Password:  "testpass",
				Database:  "DWH",
				Warehouse: "LOAD_WH",
			},
			wantError: false,
		},
		{
			name: "missing account",
			config: Config{
				Username:  "etl_user",
				Password:  "testpass",
				Database:  "DWH",
				Warehouse: "LOAD_WH",
			},
			wantError: true,
			errorMsg:  "account is required",
		},
		{
			name: "missing database",
			config: Config{
				Account:   "test123.us-east-1",
				Username:  "etl_user",
				Password:  "testpass",
				Warehouse: "LOAD_WH",
			},
			wantError: true,
			errorMsg:  "database is required",
		},
		{
			name: "missing warehouse",
			config: Config{
				Account:  "test123.us-east-1",
				Username: "etl_user",
				Password: "testpass",
				Database: "DWH",
			},
			wantError: true,
			errorMsg:  "warehouse is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.config)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTruncateTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{Database: "DWH", Timeout: 5 * time.Second})
	service.db = db
	service.connected = true

	mock.ExpectBegin()
	mock.ExpectExec("TRUNCATE TABLE DWH.SILVER.crm_cust_info").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := service.BeginTx(ctx)
	require.NoError(t, err)

	err = service.TruncateTable(ctx, tx, "SILVER", "crm_cust_info")
	assert.NoError(t, err)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchChunking(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{Database: "DWH", Timeout: 5 * time.Second})
	service.db = db
	service.connected = true

	// 5 rows with batch size 2 -> 3 INSERT statements
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO DWH\.SILVER\.erp_px_cat_g1v2`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO DWH\.SILVER\.erp_px_cat_g1v2`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO DWH\.SILVER\.erp_px_cat_g1v2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := service.BeginTx(ctx)
	require.NoError(t, err)

	rows := [][]interface{}{
		{"CO_RF", "Components", "Road Frames", "Yes"},
		{"AC_HE", "Accessories", "Helmets", "No"},
		{"BI_RB", "Bikes", "Road Bikes", "Yes"},
		{"CL_JE", "Clothing", "Jerseys", "No"},
		{"AC_BS", "Accessories", "Bike Stands", "No"},
	}
	n, err := service.InsertBatch(ctx, tx, "SILVER", "erp_px_cat_g1v2",
		[]string{"id", "cat", "subcat", "maintenance"}, rows, 2)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchEmpty(t *testing.T) {
	service := NewService(Config{Database: "DWH"})

	n, err := service.InsertBatch(context.Background(), nil, "SILVER", "t", []string{"c"}, nil, 100)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertBatchPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{Database: "DWH", Timeout: 5 * time.Second})
	service.db = db
	service.connected = true

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO DWH\.SILVER\.crm_cust_info`).
		WillReturnError(fmt.Errorf("numeric value out of range"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := service.BeginTx(ctx)
	require.NoError(t, err)

	_, err = service.InsertBatch(ctx, tx, "SILVER", "crm_cust_info",
		[]string{"cst_id"}, [][]interface{}{{"13245"}}, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to insert")
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildInsert(t *testing.T) {
	stmt, args := buildInsert("DWH.BRONZE.erp_loc_a101", []string{"cid", "cntry"}, [][]interface{}{
		{"AW-00011000", "Australia"},
		{"AW-00011001", "US"},
	})

	assert.Equal(t,
		"INSERT INTO DWH.BRONZE.erp_loc_a101 (cid, cntry) VALUES (?,?), (?,?)",
		stmt)
	assert.Equal(t, []interface{}{"AW-00011000", "Australia", "AW-00011001", "US"}, args)
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected int
	}{
		{
			name:     "single statement",
			sql:      "CREATE TABLE t (id INT)",
			expected: 1,
		},
		{
			name:     "multiple statements",
			sql:      "CREATE TABLE a (id INT); CREATE TABLE b (id INT); TRUNCATE TABLE a",
			expected: 3,
		},
		{
			name:     "semicolon inside string literal",
			sql:      "INSERT INTO t VALUES ('a;b'); SELECT 1",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nonEmpty := 0
			for _, s := range splitStatements(tt.sql) {
				if len(s) > 0 {
					nonEmpty++
				}
			}
			assert.Equal(t, tt.expected, nonEmpty)
		})
	}
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "DWH.GOLD.dim_customers", Qualify("DWH", "GOLD", "dim_customers"))
}
