package schema

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medallion/internal/warehouse"
	"medallion/pkg/models"
)

func provisionerFixture(t *testing.T) (*Provisioner, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := warehouse.NewServiceWithDB(db, warehouse.Config{
		Database: "DWH",
		Timeout:  5 * time.Second,
	})
	cfg := &models.Config{
		Layers: models.Layers{Bronze: "BRONZE", Silver: "SILVER", Gold: "GOLD"},
	}
	return NewProvisioner(svc, cfg), mock
}

func expectSection(mock sqlmock.Sqlmock, pattern string, statements int) {
	mock.ExpectBegin()
	for i := 0; i < statements; i++ {
		mock.ExpectExec(pattern).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()
}

func TestProvisionCreatesAllObjects(t *testing.T) {
	provisioner, mock := provisionerFixture(t)

	expectSection(mock, "CREATE SCHEMA IF NOT EXISTS DWH", 3)
	expectSection(mock, "CREATE TABLE IF NOT EXISTS DWH.BRONZE", 6)
	expectSection(mock, "CREATE TABLE IF NOT EXISTS DWH.SILVER", 6)
	expectSection(mock, "CREATE TABLE IF NOT EXISTS DWH.GOLD", 3)
	expectSection(mock, "CREATE TABLE IF NOT EXISTS DWH", 4)

	err := provisioner.Provision(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionStopsOnFirstFailure(t *testing.T) {
	provisioner, mock := provisionerFixture(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS DWH").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := provisioner.Provision(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schemas")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogDDLCoversEveryLayer(t *testing.T) {
	provisioner, _ := provisionerFixture(t)

	ddl := provisioner.logDDL()
	assert.Contains(t, ddl, "DWH.BRONZE.load_log")
	assert.Contains(t, ddl, "DWH.SILVER.load_log")
	assert.Contains(t, ddl, "DWH.GOLD.load_log")
	assert.Contains(t, ddl, "DWH.PUBLIC.load_failures")
}
