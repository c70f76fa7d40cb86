package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
)

const insertBatchSize = 500

var copyColumns = []string{
	"order_id",
	"order_date",
	"product_category",
	"quantity",
	"unit_price",
	"total_price",
	"payment_type",
	"order_status",
}

// OrdersRepository handles orders table operations.
// Reads go through GORM; bulk loads use COPY when a pgx pool is available.
type OrdersRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewOrdersRepository creates a new orders repository. pool may be nil.
func NewOrdersRepository(db *gorm.DB, pool *pgxpool.Pool) *OrdersRepository {
	return &OrdersRepository{db: db, pool: pool}
}

// Migrate creates or updates the orders table.
func (r *OrdersRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Order{}); err != nil {
		return fmt.Errorf("migrate orders: %w", err)
	}
	return nil
}

// Orders returns the orders whose date falls inside rng, in insertion order.
func (r *OrdersRepository) Orders(ctx context.Context, rng sales.Range) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if !rng.Start.IsZero() {
		q = q.Where("order_date >= ?", rng.Start)
	}
	if !rng.End.IsZero() {
		q = q.Where("order_date < ?", rng.EndExclusive())
	}

	var orders []models.Order
	if err := q.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Count returns the number of stored order lines.
func (r *OrdersRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// ReplaceOrders swaps the whole table for orders in one transaction and
// returns how many rows were written. On error the previous rows remain.
func (r *OrdersRepository) ReplaceOrders(ctx context.Context, orders []models.Order) (int64, error) {
	if r.pool != nil {
		return r.replaceWithCopy(ctx, orders)
	}

	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Order{}).Error
		if err != nil {
			return fmt.Errorf("truncate orders: %w", err)
		}
		if len(orders) == 0 {
			return nil
		}
		res := tx.CreateInBatches(orders, insertBatchSize)
		if res.Error != nil {
			return fmt.Errorf("insert orders: %w", res.Error)
		}
		n = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *OrdersRepository) replaceWithCopy(ctx context.Context, orders []models.Order) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	table := models.Order{}.TableName()
	if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{table}.Sanitize()); err != nil {
		return 0, fmt.Errorf("truncate orders: %w", err)
	}

	var n int64
	if len(orders) > 0 {
		n, err = tx.CopyFrom(ctx,
			pgx.Identifier{table},
			copyColumns,
			pgx.CopyFromSlice(len(orders), func(i int) ([]any, error) {
				o := orders[i]
				return []any{
					o.OrderID,
					o.OrderDate,
					o.ProductCategory,
					o.Quantity,
					o.UnitPrice,
					o.TotalPrice,
					o.PaymentType,
					string(o.OrderStatus),
				}, nil
			}),
		)
		if err != nil {
			return 0, fmt.Errorf("copy orders: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	return n, nil
}
