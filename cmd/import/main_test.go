package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/sales-dashboard/internal/database"
	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/repository"
)

const dataset = `Order ID,Order Date,Product Category,Quantity,Unit Price,Total Price,Payment Type,Order Status
1,2024-01-01,Toys,1,10,10,Card,Completed
2,2024-01-02,Books,2,5,10,Cash,Pending
,2024-01-03,Books,1,5,5,Cash,Pending
`

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewWithConsole(io.Discard, "error", "")
	require.NoError(t, err)
	return log
}

func TestRun_ImportsIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(file, []byte(dataset), 0644))
	dsn := database.SQLitePrefix + filepath.Join(dir, "sales.db")

	var out bytes.Buffer
	err := run(context.Background(), options{file: file, dsn: dsn}, &out, testLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "imported 2 orders (3 rows, 1 dropped)\n", out.String())

	db, err := database.New(context.Background(), dsn)
	require.NoError(t, err)
	defer db.Close()

	n, err := repository.NewOrdersRepository(db.GORM, nil).Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	err := run(context.Background(), options{file: "sales.csv"}, io.Discard, testLogger(t))
	assert.EqualError(t, err, "DATABASE_URL or -database is required")

	dsn := database.SQLitePrefix + filepath.Join(dir, "sales.db")
	err = run(context.Background(), options{file: filepath.Join(dir, "missing.csv"), dsn: dsn}, io.Discard, testLogger(t))
	assert.Error(t, err)
}
