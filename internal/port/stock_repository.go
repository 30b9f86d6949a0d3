package port

import (
	"context"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

type StockRepository interface {
	// GetStock returns the current quantity, domain.ErrNotFound if the product is unknown
	GetStock(ctx context.Context, productID string) (int, error)

	// SetStock overwrites the quantity, creating the entry if needed
	SetStock(ctx context.Context, productID string, quantity int) error

	// ReserveStock atomically decrements stock if at least quantity is available.
	// A missing product counts as zero stock.
	ReserveStock(ctx context.Context, productID string, quantity int) (domain.ReservationOutcome, error)

	// ReleaseStock atomically increments stock (compensation). A missing product
	// is created at zero first.
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}
