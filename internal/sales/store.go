package sales

import (
	"context"
	"sync"
	"time"

	"github.com/blockedby/sales-dashboard/internal/models"
)

// Source yields the order lines that fall inside a range.
type Source interface {
	Orders(ctx context.Context, r Range) ([]models.Order, error)
}

// Store is an in-memory snapshot of the dataset.
// Readers get the slice that was current when they asked; Replace swaps it whole.
type Store struct {
	mu       sync.RWMutex
	path     string
	orders   []models.Order
	stats    LoadStats
	loadedAt time.Time
}

// NewStore creates a store backed by the CSV file at path. It starts empty.
func NewStore(path string) *Store {
	return &Store{path: path, orders: []models.Order{}}
}

// Replace installs a new snapshot.
func (s *Store) Replace(orders []models.Order, stats LoadStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.stats = stats
	s.loadedAt = time.Now()
}

// Reload re-reads the backing file and installs it.
// On error the previous snapshot stays in place.
func (s *Store) Reload(_ context.Context) (LoadStats, error) {
	orders, stats, err := LoadFile(s.path)
	if err != nil {
		return LoadStats{}, err
	}
	s.Replace(orders, stats)
	return stats, nil
}

// Orders returns the orders inside r in file order.
func (s *Store) Orders(_ context.Context, r Range) ([]models.Order, error) {
	s.mu.RLock()
	orders := s.orders
	s.mu.RUnlock()

	return Filter(orders, r), nil
}

// Stats returns the stats of the current snapshot and when it was loaded.
func (s *Store) Stats() (LoadStats, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, s.loadedAt
}
