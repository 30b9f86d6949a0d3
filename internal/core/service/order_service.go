package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

type OrderService struct {
	orders port.OrderRepository
}

func NewOrderService(orders port.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// CreateOrder validates shape only and appends the order to the journal.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, items map[string]int, total decimal.Decimal) (domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	if len(items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items must not be empty", domain.ErrInvalidRequest)
	}
	if total.IsNegative() {
		return domain.Order{}, fmt.Errorf("%w: total must not be negative", domain.ErrInvalidRequest)
	}

	lines := make(map[string]int, len(items))
	for productID, quantity := range items {
		if strings.TrimSpace(productID) == "" || quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: invalid item %q=%d", domain.ErrInvalidRequest, productID, quantity)
		}
		lines[productID] = quantity
	}

	order := domain.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     lines,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}

	stored, err := s.orders.AppendOrder(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("append order: %w", err)
	}
	return stored, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	return s.orders.ListOrders(ctx, userID)
}

func (s *OrderService) LatestOrder(ctx context.Context, userID string) (domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Order{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	}
	return s.orders.LatestOrder(ctx, userID)
}
