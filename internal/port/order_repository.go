package port

import (
	"context"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

type OrderRepository interface {
	// AppendOrder stores the order at the end of the journal and returns it
	// with Seq assigned
	AppendOrder(ctx context.Context, order domain.Order) (domain.Order, error)

	// ListOrders returns all orders of a user in insertion order
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)

	// LatestOrder returns the most recently appended order of a user,
	// domain.ErrNotFound if there is none
	LatestOrder(ctx context.Context, userID string) (domain.Order, error)
}
