package storage

import (
	"context"
	"maps"
	"sync"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// MemoryOrderJournal is an append-only in-process journal. Readers hold the
// read lock for the whole scan, so they always see a prefix of the log.
type MemoryOrderJournal struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func NewMemoryOrderJournal() *MemoryOrderJournal {
	return &MemoryOrderJournal{}
}

func (j *MemoryOrderJournal) AppendOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	order.Items = maps.Clone(order.Items)

	j.mu.Lock()
	order.Seq = int64(len(j.orders)) + 1
	j.orders = append(j.orders, order)
	j.mu.Unlock()

	return cloneOrder(order), nil
}

func (j *MemoryOrderJournal) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range j.orders {
		if order.UserID == userID {
			result = append(result, cloneOrder(order))
		}
	}
	return result, nil
}

func (j *MemoryOrderJournal) LatestOrder(ctx context.Context, userID string) (domain.Order, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for i := len(j.orders) - 1; i >= 0; i-- {
		if j.orders[i].UserID == userID {
			return cloneOrder(j.orders[i]), nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = maps.Clone(order.Items)
	return order
}

var _ port.OrderRepository = (*MemoryOrderJournal)(nil)
