package collaborator

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// DefaultProducts is the catalog served when no remote catalog is configured.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{ID: "Laptop-X", Name: "Laptop-X", Price: decimal.RequireFromString("999.00")},
		{ID: "Mouse-Z", Name: "Mouse-Z", Price: decimal.RequireFromString("25.00")},
	}
}

// MemoryCatalog is a read-only product table.
type MemoryCatalog struct {
	products map[string]domain.Product
}

func NewMemoryCatalog(products []domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *MemoryCatalog) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (c *MemoryCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]map[string]int)}
}

func (s *MemoryCartStore) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.carts[userID]
	if !ok {
		items = make(map[string]int)
		s.carts[userID] = items
	}
	items[productID] += quantity
	return s.snapshot(userID), nil
}

func (s *MemoryCartStore) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(userID), nil
}

// RemoveItem drops the whole line. Removing an absent line is not an error.
func (s *MemoryCartStore) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts[userID], productID)
	return s.snapshot(userID), nil
}

// snapshot must be called with mu held.
func (s *MemoryCartStore) snapshot(userID string) domain.Cart {
	items := make(map[string]int, len(s.carts[userID]))
	for id, qty := range s.carts[userID] {
		items[id] = qty
	}
	return domain.Cart{UserID: userID, Items: items}
}

var (
	_ port.Catalog   = (*MemoryCatalog)(nil)
	_ port.CartStore = (*MemoryCartStore)(nil)
)
