package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

// Mock StockRepository
type mockStockRepo struct {
	mu         sync.Mutex
	stock      map[string]int
	reserveErr error
	releaseErr error
	reserves   int
	releases   []int
}

func newMockStockRepo(initial map[string]int) *mockStockRepo {
	stock := make(map[string]int, len(initial))
	for id, qty := range initial {
		stock[id] = qty
	}
	return &mockStockRepo{stock: stock}
}

func (m *mockStockRepo) GetStock(ctx context.Context, productID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	qty, ok := m.stock[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return qty, nil
}

func (m *mockStockRepo) SetStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] = quantity
	return nil
}

func (m *mockStockRepo) ReserveStock(ctx context.Context, productID string, quantity int) (domain.ReservationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reserves++
	if m.reserveErr != nil {
		return domain.ReservationOutcome{}, m.reserveErr
	}
	if m.stock[productID] < quantity {
		return domain.ReservationOutcome{}, nil
	}
	m.stock[productID] -= quantity
	return domain.ReservationOutcome{Granted: true, Remaining: m.stock[productID]}, nil
}

// ReleaseStock refuses a cancelled context, like a real network store would.
func (m *mockStockRepo) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.releases = append(m.releases, quantity)
	if m.releaseErr != nil {
		return m.releaseErr
	}
	m.stock[productID] += quantity
	return nil
}

func (m *mockStockRepo) quantity(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu        sync.Mutex
	orders    []domain.Order
	appendErr error
}

func (m *mockOrderRepo) AppendOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendErr != nil {
		return domain.Order{}, m.appendErr
	}
	order.Seq = int64(len(m.orders) + 1)
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := make([]domain.Order, 0)
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) LatestOrder(ctx context.Context, userID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			return m.orders[i], nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (m *mockOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// Mock Catalog
type mockCatalog struct {
	products map[string]domain.Product
	err      error
	block    bool
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{products: map[string]domain.Product{
		"Laptop-X": {ID: "Laptop-X", Name: "Laptop-X", Price: decimal.RequireFromString("999.00")},
		"Mouse-Z":  {ID: "Mouse-Z", Name: "Mouse-Z", Price: decimal.RequireFromString("25.00")},
	}}
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if m.block {
		<-ctx.Done()
		return domain.Product{}, ctx.Err()
	}
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, m.err
}

// Mock CartStore
type mockCartStore struct {
	mu     sync.Mutex
	carts  map[string]map[string]int
	addErr error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]map[string]int)}
}

func (m *mockCartStore) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return domain.Cart{}, m.addErr
	}
	if m.carts[userID] == nil {
		m.carts[userID] = make(map[string]int)
	}
	m.carts[userID][productID] += quantity
	return domain.Cart{UserID: userID, Items: m.carts[userID]}, nil
}

func (m *mockCartStore) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make(map[string]int)
	for id, qty := range m.carts[userID] {
		items[id] = qty
	}
	return domain.Cart{UserID: userID, Items: items}, nil
}

func (m *mockCartStore) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts[userID], productID)
	return domain.Cart{UserID: userID, Items: m.carts[userID]}, nil
}

// Mock PaymentGateway wrapping the real authorizer so card rules stay real.
type mockPayments struct {
	mu      sync.Mutex
	real    *PaymentService
	err     error
	onCall  func()
	charged []decimal.Decimal
}

func newMockPayments() *mockPayments {
	return &mockPayments{real: NewPaymentService()}
}

func (m *mockPayments) Charge(ctx context.Context, cardNumber string, amount decimal.Decimal) (domain.ChargeResult, error) {
	m.mu.Lock()
	m.charged = append(m.charged, amount)
	onCall, err := m.onCall, m.err
	m.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if err != nil {
		return domain.ChargeResult{}, err
	}
	return m.real.Charge(ctx, cardNumber, amount)
}

func (m *mockPayments) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.charged)
}

// Mock IdempotencyStore
type mockIdempotency struct {
	mu         sync.Mutex
	keys       map[string]bool
	err        error
	releaseErr error
	released   []string
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{keys: make(map[string]bool)}
}

func (m *mockIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.releaseErr != nil {
		return m.releaseErr
	}
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

// Mock CheckoutMetrics
type mockMetrics struct {
	mu            sync.Mutex
	states        []domain.CheckoutState
	compensations []bool
}

func (m *mockMetrics) ObserveCheckout(state domain.CheckoutState, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

func (m *mockMetrics) ObserveCompensation(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compensations = append(m.compensations, ok)
}

// Mock EventPublisher
type mockPublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlacedEvent
	err    error
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
