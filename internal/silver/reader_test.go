package silver

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The landing tables type cst_create_date and prd_start_dt as DATE, so the
// driver returns time.Time values. The fetchers must carry those dates into
// the transforms intact; a create date that collapses to the zero time would
// silently break dedup-by-recency and interval derivation.

func TestFetchCustomersCarriesTypedCreateDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM DWH.BRONZE.crm_cust_info").WillReturnRows(
		sqlmock.NewRows([]string{"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"}).
			AddRow("1", "AW00000001", "Jon", "Yang", "M", "M", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("1", "AW00000001", "Jon", "Yang", "S", "M", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	tx, err := db.Begin()
	require.NoError(t, err)

	raw, err := fetchCustomers(context.Background(), tx, "DWH.BRONZE.crm_cust_info")
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "2024-01-01", raw[0].CreateDate)
	assert.Equal(t, "2024-02-01", raw[1].CreateDate)

	// Dedup keeps the newer row with its real create date, not the zero time.
	cleansed := TransformCustomers(raw)
	require.Len(t, cleansed, 1)
	assert.Equal(t, date(2024, 2, 1), cleansed[0].CreateDate)
	assert.Equal(t, "Single", cleansed[0].Marital)
}

func TestFetchCustomersNullCreateDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM DWH.BRONZE.crm_cust_info").WillReturnRows(
		sqlmock.NewRows([]string{"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"}).
			AddRow("1", "AW00000001", "Jon", "Yang", "M", "M", nil))

	tx, err := db.Begin()
	require.NoError(t, err)

	raw, err := fetchCustomers(context.Background(), tx, "DWH.BRONZE.crm_cust_info")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Empty(t, raw[0].CreateDate)
}

func TestFetchProductsCarriesTypedStartDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM DWH.BRONZE.crm_prd_info").WillReturnRows(
		sqlmock.NewRows([]string{"prd_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt"}).
			AddRow("210", "CO-RF-FR-R92B-58", "HL Road Frame", "1000", "R", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("211", "CO-RF-FR-R92B-58", "HL Road Frame", "1100", "R", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	tx, err := db.Begin()
	require.NoError(t, err)

	raw, err := fetchProducts(context.Background(), tx, "DWH.BRONZE.crm_prd_info")
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "2023-01-01", raw[0].StartDate)
	assert.Equal(t, "2024-01-01", raw[1].StartDate)

	// Interval derivation orders on the real start dates.
	cleansed, err := TransformProducts(raw)
	require.NoError(t, err)
	require.Len(t, cleansed, 2)
	assert.Equal(t, date(2023, 1, 1), cleansed[0].StartDate)
	require.NotNil(t, cleansed[0].EndDate)
	assert.Equal(t, date(2023, 12, 31), *cleansed[0].EndDate)
	assert.Nil(t, cleansed[1].EndDate)
}
