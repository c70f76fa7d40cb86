package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/blockedby/sales-dashboard/internal/database"
	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
)

func newSQLiteRepo(t *testing.T) *OrdersRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "orders.db")), &gorm.Config{})
	require.NoError(t, err)

	repo := NewOrdersRepository(db, nil)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

// failInserts makes every subsequent create on repo fail.
func failInserts(t *testing.T, repo *OrdersRepository) {
	t.Helper()
	err := repo.db.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("insert failed"))
	})
	require.NoError(t, err)
}

func seedOrders() []models.Order {
	d := func(s string) time.Time {
		t, _ := time.Parse(models.DateLayout, s)
		return t
	}
	return []models.Order{
		{OrderID: "A", OrderDate: d("2024-01-01"), ProductCategory: "Toys", Quantity: 1, UnitPrice: 10, TotalPrice: 10, PaymentType: "Card", OrderStatus: models.OrderStatusCompleted},
		{OrderID: "B", OrderDate: d("2024-01-15"), ProductCategory: "Books", Quantity: 2, UnitPrice: 5, TotalPrice: 10, PaymentType: "Cash", OrderStatus: models.OrderStatusPending},
		{OrderID: "C", OrderDate: d("2024-01-31"), ProductCategory: "Toys", Quantity: 1, UnitPrice: 7, TotalPrice: 7, PaymentType: "Card", OrderStatus: models.OrderStatusCompleted},
		{OrderID: "D", OrderDate: d("2024-02-01"), ProductCategory: "Garden", Quantity: 3, UnitPrice: 1, TotalPrice: 3, PaymentType: "Card", OrderStatus: models.OrderStatusReturned},
	}
}

func TestOrdersRepository_ReplaceAndCount(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	n, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	n, err = repo.ReplaceOrders(ctx, seedOrders()[:2])
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestOrdersRepository_OrdersInRange(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	rng, err := sales.ParseRange("2024-01-15", "2024-01-31")
	require.NoError(t, err)

	got, err := repo.Orders(ctx, rng)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].OrderID)
	assert.Equal(t, "C", got[1].OrderID, "end date is inclusive")
	assert.Equal(t, models.OrderStatusCompleted, got[1].OrderStatus)

	all, err := repo.Orders(ctx, sales.Range{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestOrdersRepository_AsServiceSource(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	svc := sales.NewService(repo, nil)
	rng, err := sales.ParseRange("", "2024-01-31")
	require.NoError(t, err)

	resp, err := svc.KPIs(ctx, rng)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.NumOrders)
	assert.InDelta(t, 27, resp.TotalSales, 1e-9)
	assert.InDelta(t, 9, resp.AOV, 1e-9)
}

func TestOrdersRepository_ReplaceWithEmptyClearsTable(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	n, err := repo.ReplaceOrders(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOrdersRepository_ReplaceRollsBackOnInsertError(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)

	failInserts(t, repo)

	_, err = repo.ReplaceOrders(ctx, seedOrders()[:1])
	require.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestOrdersRepository_PostgresCopy(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration test; set INTEGRATION_TEST=1 to run")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dbURL)
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrdersRepository(db.GORM, db.Pool)
	require.NoError(t, repo.Migrate(ctx))

	n, err := repo.ReplaceOrders(ctx, seedOrders())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	rng, err := sales.ParseRange("2024-02-01", "")
	require.NoError(t, err)
	got, err := repo.Orders(ctx, rng)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "D", got[0].OrderID)
}
