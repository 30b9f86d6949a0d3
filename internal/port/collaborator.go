package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

// Catalog is the read-only product lookup.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CartStore keeps per-user quantity maps.
type CartStore interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error)
	GetCart(ctx context.Context, userID string) (domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error)
}

// PaymentGateway authorizes a charge. A decline is a result, not an error.
type PaymentGateway interface {
	Charge(ctx context.Context, cardNumber string, amount decimal.Decimal) (domain.ChargeResult, error)
}
