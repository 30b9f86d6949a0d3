package storage

import (
	"context"
	"sync"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

type stockEntry struct {
	mu       sync.Mutex
	quantity int
}

// MemoryStockAdapter is an in-process ledger. Each product has its own lock,
// so operations on different products never wait on each other; mu only
// guards the entry map itself.
type MemoryStockAdapter struct {
	mu      sync.Mutex
	entries map[string]*stockEntry
}

func NewMemoryStockAdapter() *MemoryStockAdapter {
	return &MemoryStockAdapter{entries: make(map[string]*stockEntry)}
}

func (m *MemoryStockAdapter) entry(productID string, create bool) *stockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[productID]
	if !ok && create {
		e = &stockEntry{}
		m.entries[productID] = e
	}
	return e
}

func (m *MemoryStockAdapter) GetStock(ctx context.Context, productID string) (int, error) {
	e := m.entry(productID, false)
	if e == nil {
		return 0, domain.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quantity, nil
}

func (m *MemoryStockAdapter) SetStock(ctx context.Context, productID string, quantity int) error {
	e := m.entry(productID, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.quantity = quantity
	return nil
}

func (m *MemoryStockAdapter) ReserveStock(ctx context.Context, productID string, quantity int) (domain.ReservationOutcome, error) {
	e := m.entry(productID, false)
	if e == nil {
		return domain.ReservationOutcome{}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.quantity < quantity {
		return domain.ReservationOutcome{}, nil
	}
	e.quantity -= quantity
	return domain.ReservationOutcome{Granted: true, Remaining: e.quantity}, nil
}

func (m *MemoryStockAdapter) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	e := m.entry(productID, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.quantity += quantity
	return nil
}

var _ port.StockRepository = (*MemoryStockAdapter)(nil)
