package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/sales-dashboard/internal/sales"
)

const datasetCSV = `Order ID,Order Date,Product Category,Quantity,Unit Price,Total Price,Payment Type,Order Status
1,2024-01-01,Toys,1,10,10,Card,Completed
2,2024-01-02,Books,2,5,10,Cash,Pending
3,not-a-date,Books,1,5,5,Cash,Pending
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDataset_Reload(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	// stale rows are replaced
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	ds := NewDataset(repo, writeDataset(t, datasetCSV))

	before, loadedAt := ds.Stats()
	assert.True(t, loadedAt.IsZero())
	assert.Equal(t, 4, before.Orders)

	stats, err := ds.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Orders)
	assert.Equal(t, 1, stats.Dropped)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	after, loadedAt := ds.Stats()
	assert.False(t, loadedAt.IsZero())
	assert.Equal(t, stats, after)

	orders, err := repo.Orders(ctx, sales.Range{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].OrderID)
}

func TestDataset_ReloadMissingFileKeepsRows(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	ds := NewDataset(repo, filepath.Join(t.TempDir(), "missing.csv"))
	_, err = ds.Reload(ctx)
	require.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestDataset_ReloadInsertErrorKeepsRows(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	ds := NewDataset(repo, writeDataset(t, datasetCSV))
	failInserts(t, repo)

	_, err = ds.Reload(ctx)
	require.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)

	_, loadedAt := ds.Stats()
	assert.True(t, loadedAt.IsZero())
}
