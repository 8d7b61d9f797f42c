package bronze

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion/internal/steplog"
	"medallion/internal/warehouse"
	"medallion/pkg/models"
)

// sourceFixtures writes one tiny extract per configured source and returns
// the source map pointing at them.
func sourceFixtures(t *testing.T) map[string]models.Source {
	t.Helper()

	contents := map[string]string{
		"crm_cust_info":     "cst_id,cst_key,cst_firstname,cst_lastname,cst_marital_status,cst_gndr,cst_create_date\n1,AW00000001,Jon,Yang,M,M,2024-01-01\n",
		"crm_prd_info":      "prd_id,prd_key,prd_nm,prd_cost,prd_line,prd_start_dt\n210,CO-RF-FR-R92B-58,HL Road Frame,0,R,2024-01-01\n",
		"crm_sales_details": "sls_ord_num,sls_prd_key,sls_cust_id,sls_order_dt,sls_ship_dt,sls_due_dt,sls_sales,sls_quantity,sls_price\nSO43697,BK-R93R-62,21768,20240115,20240122,20240127,3578,1,3578\n",
		"erp_cust_az12":     "cid,bdate,gen\nNASAW00011000,1971-10-06,Male\n",
		"erp_loc_a101":      "cid,cntry\nAW-00011000,United States\n",
		"erp_px_cat_g1v2":   "id,cat,subcat,maintenance\nAC_BR,Accessories,Bike Racks,Yes\n",
	}

	sources := make(map[string]models.Source, len(contents))
	for name, body := range contents {
		sources[name] = models.Source{
			Path:       writeExtract(t, name+".csv", body),
			Delimiter:  ",",
			SkipHeader: 1,
		}
	}
	return sources
}

func loaderFixture(t *testing.T) (*Loader, sqlmock.Sqlmock, *steplog.MemorySink) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := warehouse.NewServiceWithDB(db, warehouse.Config{
		Database: "DWH",
		Timeout:  5 * time.Second,
	})

	cfg := &models.Config{
		Layers:  models.Layers{Bronze: "BRONZE", Silver: "SILVER", Gold: "GOLD"},
		Sources: sourceFixtures(t),
		Batch:   models.Batch{InsertSize: 500},
	}

	sink := steplog.NewMemorySink()
	return NewLoader(svc, cfg, sink, sink), mock, sink
}

func expectLanding(mock sqlmock.Sqlmock, table string) {
	mock.ExpectExec("TRUNCATE TABLE DWH.BRONZE." + table).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO DWH.BRONZE." + table).WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestLoaderRunCommits(t *testing.T) {
	loader, mock, sink := loaderFixture(t)

	mock.ExpectBegin()
	for _, name := range models.SourceNames {
		expectLanding(mock, name)
	}
	mock.ExpectCommit()

	err := loader.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, loader.State())
	assert.NoError(t, mock.ExpectationsWereMet())

	// Step log cleared once, then truncate and load per source.
	assert.Equal(t, 1, sink.Cleared)
	require.Len(t, sink.Entries, 12)
	assert.Equal(t, "truncate crm_cust_info", sink.Entries[0].Step)
	assert.Equal(t, "load crm_cust_info", sink.Entries[1].Step)
	assert.Equal(t, "1 rows landed", sink.Entries[1].Message)
	assert.Equal(t, "bronze", sink.Entries[0].Layer)
	assert.Empty(t, sink.Failures)
}

func TestLoaderRunRollsBackOnMissingExtract(t *testing.T) {
	loader, mock, sink := loaderFixture(t)

	// Third source in the fixed order loses its extract mid-configuration.
	source := loader.cfg.Sources["crm_sales_details"]
	source.Path = filepath.Join(t.TempDir(), "gone.csv")
	loader.cfg.Sources["crm_sales_details"] = source

	mock.ExpectBegin()
	expectLanding(mock, "crm_cust_info")
	expectLanding(mock, "crm_prd_info")
	mock.ExpectExec("TRUNCATE TABLE DWH.BRONZE.crm_sales_details").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := loader.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateRolledBack, loader.State())
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, sink.Failures, 1)
	failure := sink.Failures[0]
	assert.Equal(t, "bronze", failure.Layer)
	assert.Equal(t, "bronze.load", failure.Batch)
	assert.Equal(t, "crm_sales_details", failure.Entity)
	assert.Equal(t, "load crm_sales_details", failure.Step)
	assert.NotEmpty(t, failure.Code)
}

func TestLoaderRunRollsBackOnTruncateFailure(t *testing.T) {
	loader, mock, sink := loaderFixture(t)

	mock.ExpectBegin()
	mock.ExpectExec("TRUNCATE TABLE DWH.BRONZE.crm_cust_info").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := loader.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateRolledBack, loader.State())
	require.Len(t, sink.Failures, 1)
	assert.Equal(t, "crm_cust_info", sink.Failures[0].Entity)
	assert.Equal(t, "truncate crm_cust_info", sink.Failures[0].Step)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoaderRunFailsOnUnconfiguredSource(t *testing.T) {
	loader, mock, sink := loaderFixture(t)
	delete(loader.cfg.Sources, "erp_loc_a101")

	mock.ExpectBegin()
	for _, name := range []string{"crm_cust_info", "crm_prd_info", "crm_sales_details", "erp_cust_az12"} {
		expectLanding(mock, name)
	}
	mock.ExpectRollback()

	err := loader.Run(context.Background())
	require.Error(t, err)

	require.Len(t, sink.Failures, 1)
	assert.Equal(t, "erp_loc_a101", sink.Failures[0].Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
