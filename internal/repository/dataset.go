package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blockedby/sales-dashboard/internal/sales"
)

// Dataset keeps the orders table in sync with a CSV export.
// Reload replaces the table contents with the file.
type Dataset struct {
	repo *OrdersRepository
	path string

	mu       sync.RWMutex
	stats    sales.LoadStats
	loadedAt time.Time
}

// NewDataset creates a dataset that imports path into repo.
func NewDataset(repo *OrdersRepository, path string) *Dataset {
	return &Dataset{repo: repo, path: path}
}

// Reload parses the file and replaces the stored orders with it.
// A parse or insert error leaves the previous rows in place.
func (d *Dataset) Reload(ctx context.Context) (sales.LoadStats, error) {
	orders, stats, err := sales.LoadFile(d.path)
	if err != nil {
		return sales.LoadStats{}, err
	}

	if _, err := d.repo.ReplaceOrders(ctx, orders); err != nil {
		return sales.LoadStats{}, fmt.Errorf("import %s: %w", d.path, err)
	}

	d.mu.Lock()
	d.stats = stats
	d.loadedAt = time.Now()
	d.mu.Unlock()

	return stats, nil
}

// Stats returns the stats of the last import done by this process.
// Before the first import it reports the current row count.
func (d *Dataset) Stats() (sales.LoadStats, time.Time) {
	d.mu.RLock()
	stats, loadedAt := d.stats, d.loadedAt
	d.mu.RUnlock()

	if loadedAt.IsZero() {
		if n, err := d.repo.Count(context.Background()); err == nil {
			stats.Rows = int(n)
			stats.Orders = int(n)
		}
	}
	return stats, loadedAt
}
