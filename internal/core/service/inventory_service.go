package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

// InventoryService guards the stock ledger's public contract. Atomicity is the
// repository's job; the service validates arguments and classifies outcomes.
type InventoryService struct {
	stock port.StockRepository
}

func NewInventoryService(stock port.StockRepository) *InventoryService {
	return &InventoryService{stock: stock}
}

func (s *InventoryService) GetStock(ctx context.Context, productID string) (int, error) {
	if err := requireProductID(productID); err != nil {
		return 0, err
	}
	return s.stock.GetStock(ctx, productID)
}

func (s *InventoryService) SetStock(ctx context.Context, productID string, quantity int) error {
	if err := requireProductID(productID); err != nil {
		return err
	}
	if quantity < 0 {
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidRequest)
	}
	if err := s.stock.SetStock(ctx, productID, quantity); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// Reserve returns domain.ErrInsufficientStock together with a denied outcome
// when the ledger holds less than quantity.
func (s *InventoryService) Reserve(ctx context.Context, productID string, quantity int) (domain.ReservationOutcome, error) {
	if err := requireProductID(productID); err != nil {
		return domain.ReservationOutcome{}, err
	}
	if err := requirePositive(quantity); err != nil {
		return domain.ReservationOutcome{}, err
	}

	outcome, err := s.stock.ReserveStock(ctx, productID, quantity)
	if err != nil {
		return domain.ReservationOutcome{}, fmt.Errorf("reserve stock: %w", err)
	}
	if !outcome.Granted {
		return outcome, domain.ErrInsufficientStock
	}
	return outcome, nil
}

func (s *InventoryService) Release(ctx context.Context, productID string, quantity int) error {
	if err := requireProductID(productID); err != nil {
		return err
	}
	if err := requirePositive(quantity); err != nil {
		return err
	}
	if err := s.stock.ReleaseStock(ctx, productID, quantity); err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}

func requireProductID(productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product_id is required", domain.ErrInvalidRequest)
	}
	return nil
}

func requirePositive(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}
	return nil
}
