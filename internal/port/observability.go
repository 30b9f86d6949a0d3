package port

import (
	"context"
	"time"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

type CheckoutMetrics interface {
	ObserveCheckout(state domain.CheckoutState, elapsed time.Duration)
	ObserveCompensation(ok bool)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error
}
