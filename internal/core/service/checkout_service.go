package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

const (
	idempotencyKeyPrefix = "checkout:"
	defaultStepTimeout   = 3 * time.Second
	tracerName           = "github.com/kumsat/microservices-checkout-quality-gate/checkout"
)

// CheckoutService runs the checkout saga: price lookup, cart update, stock
// reservation, payment and order journaling, releasing the reservation when
// payment does not go through.
type CheckoutService struct {
	catalog   port.Catalog
	carts     port.CartStore
	inventory *InventoryService
	payments  port.PaymentGateway
	orders    *OrderService

	idempotency port.IdempotencyStore
	events      port.EventPublisher
	metrics     port.CheckoutMetrics
	tracer      trace.Tracer
	logger      zerolog.Logger
	stepTimeout time.Duration
}

type CheckoutOption func(*CheckoutService)

func WithLogger(logger zerolog.Logger) CheckoutOption {
	return func(s *CheckoutService) { s.logger = logger }
}

func WithTracer(tracer trace.Tracer) CheckoutOption {
	return func(s *CheckoutService) { s.tracer = tracer }
}

func WithMetrics(metrics port.CheckoutMetrics) CheckoutOption {
	return func(s *CheckoutService) { s.metrics = metrics }
}

func WithEventPublisher(events port.EventPublisher) CheckoutOption {
	return func(s *CheckoutService) { s.events = events }
}

// WithIdempotencyStore enables request-id deduplication.
func WithIdempotencyStore(store port.IdempotencyStore) CheckoutOption {
	return func(s *CheckoutService) { s.idempotency = store }
}

// WithStepTimeout bounds every collaborator call. Zero disables the bound.
func WithStepTimeout(timeout time.Duration) CheckoutOption {
	return func(s *CheckoutService) { s.stepTimeout = timeout }
}

func NewCheckoutService(
	catalog port.Catalog,
	carts port.CartStore,
	inventory *InventoryService,
	payments port.PaymentGateway,
	orders *OrderService,
	opts ...CheckoutOption,
) *CheckoutService {
	s := &CheckoutService{
		catalog:     catalog,
		carts:       carts,
		inventory:   inventory,
		payments:    payments,
		orders:      orders,
		metrics:     nopMetrics{},
		tracer:      otel.Tracer(tracerName),
		logger:      zerolog.Nop(),
		stepTimeout: defaultStepTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sagaRun is the per-request state carried between steps.
type sagaRun struct {
	req   domain.CheckoutRequest
	state domain.CheckoutState
	log   zerolog.Logger

	// retryable is set when the run failed before touching stock or payment.
	retryable bool
}

func (r *sagaRun) advance(state domain.CheckoutState) {
	r.log.Debug().Str("from", string(r.state)).Str("to", string(state)).Msg("checkout state transition")
	r.state = state
}

// Checkout executes one saga run. The error is non-nil only when the request
// is rejected before the saga starts (invalid or duplicate); every run that
// starts ends in a terminal result.
func (s *CheckoutService) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	if err := validateCheckout(req); err != nil {
		return domain.CheckoutResult{}, err
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "checkout.saga", trace.WithAttributes(
		attribute.String("checkout.user_id", req.UserID),
		attribute.String("checkout.product_id", req.ProductID),
		attribute.Int("checkout.quantity", req.Quantity),
	))
	defer span.End()

	run := &sagaRun{
		req:   req,
		state: domain.StateStart,
		log: s.logger.With().
			Str("request_id", req.RequestID).
			Str("user_id", req.UserID).
			Str("product_id", req.ProductID).
			Int("quantity", req.Quantity).
			Logger(),
	}

	claimed := false
	if req.RequestID != "" && s.idempotency != nil {
		ok, err := s.idempotency.SetIdempotency(ctx, idempotencyKeyPrefix+req.RequestID)
		if err != nil {
			result := s.fail(run, domain.StateTechnicalFailure, fmt.Errorf("idempotency check failed: %w", err))
			s.finish(span, result, start)
			return result, nil
		}
		if !ok {
			span.SetStatus(codes.Error, domain.ReasonDuplicateRequest)
			run.log.Warn().Msg("duplicate checkout request rejected")
			return domain.CheckoutResult{}, domain.ErrDuplicateRequest
		}
		claimed = true
	}

	result := s.run(ctx, run)
	if claimed && run.retryable {
		s.releaseClaim(ctx, run)
	}
	s.finish(span, result, start)
	return result, nil
}

func (s *CheckoutService) run(ctx context.Context, run *sagaRun) domain.CheckoutResult {
	req := run.req

	var product domain.Product
	err := s.step(ctx, "fetch_price", func(ctx context.Context) error {
		p, err := s.catalog.GetProduct(ctx, req.ProductID)
		product = p
		return err
	})
	if err != nil {
		run.retryable = true
		return s.fail(run, domain.StateTechnicalFailure, fmt.Errorf("fetch price: %w", err))
	}
	run.advance(domain.StatePriceFetched)

	err = s.step(ctx, "update_cart", func(ctx context.Context) error {
		_, err := s.carts.AddItem(ctx, req.UserID, req.ProductID, req.Quantity)
		return err
	})
	if err != nil {
		run.retryable = true
		return s.fail(run, domain.StateTechnicalFailure, fmt.Errorf("update cart: %w", err))
	}
	run.advance(domain.StateCartUpdated)

	// A failed reserve call is treated as nothing reserved.
	err = s.step(ctx, "reserve_stock", func(ctx context.Context) error {
		_, err := s.inventory.Reserve(ctx, req.ProductID, req.Quantity)
		return err
	})
	if errors.Is(err, domain.ErrInsufficientStock) {
		return s.fail(run, domain.StateStockDenied, err)
	}
	if err != nil {
		return s.fail(run, domain.StateTechnicalFailure, err)
	}
	run.advance(domain.StateReserved)

	total := product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	var charge domain.ChargeResult
	err = s.step(ctx, "charge_payment", func(ctx context.Context) error {
		c, err := s.payments.Charge(ctx, req.CardNumber, total)
		if err != nil {
			return err
		}
		charge = c
		if !c.Approved() {
			return fmt.Errorf("%w: %s", domain.ErrCardDeclined, c.Reason)
		}
		return nil
	})
	if err != nil {
		if cerr := s.compensate(ctx, run); cerr != nil {
			return s.fail(run, domain.StateTechnicalFailure, errors.Join(err, cerr))
		}
		if errors.Is(err, domain.ErrCardDeclined) {
			return s.fail(run, domain.StatePaymentDeclined, err)
		}
		return s.fail(run, domain.StateTechnicalFailure, fmt.Errorf("charge payment: %w", err))
	}
	run.advance(domain.StatePaid)

	var order domain.Order
	err = s.step(ctx, "create_order", func(ctx context.Context) error {
		o, err := s.orders.CreateOrder(ctx, req.UserID, map[string]int{req.ProductID: req.Quantity}, total)
		order = o
		return err
	})
	if err != nil {
		// Payment already succeeded; this window is not compensated.
		run.log.Error().Err(err).Str("charged", charge.Amount.String()).
			Msg("order journal failed after successful payment")
		return s.fail(run, domain.StateTechnicalFailure, fmt.Errorf("create order: %w", err))
	}
	run.advance(domain.StateOrdered)

	s.publish(ctx, run, order)

	run.log.Info().Str("order_id", order.ID).Str("total", total.String()).Msg("checkout completed")
	return domain.CheckoutResult{
		State:   domain.StateOrdered,
		Success: true,
		Message: domain.MessageOrdered,
		Order:   &order,
	}
}

// step runs one collaborator call in its own span, bounded by stepTimeout.
func (s *CheckoutService) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "checkout."+name)
	defer span.End()

	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// compensate releases the reservation made by this run. It must run even if
// the caller has gone away, so it detaches from ctx cancellation.
func (s *CheckoutService) compensate(ctx context.Context, run *sagaRun) error {
	ctx = context.WithoutCancel(ctx)
	err := s.step(ctx, "release_stock", func(ctx context.Context) error {
		return s.inventory.Release(ctx, run.req.ProductID, run.req.Quantity)
	})
	s.metrics.ObserveCompensation(err == nil)
	if err != nil {
		run.log.Error().Err(err).Msg("CRITICAL: compensation failed, reserved stock not released")
		return err
	}
	run.log.Info().Msg("released reserved stock")
	return nil
}

// releaseClaim frees the request id after a failure that left stock and
// payment untouched, so the client can retry with the same id.
func (s *CheckoutService) releaseClaim(ctx context.Context, run *sagaRun) {
	key := idempotencyKeyPrefix + run.req.RequestID
	if err := s.idempotency.ReleaseIdempotency(context.WithoutCancel(ctx), key); err != nil {
		run.log.Warn().Err(err).Msg("failed to release request id")
		return
	}
	run.log.Debug().Msg("released request id for retry")
}

func (s *CheckoutService) publish(ctx context.Context, run *sagaRun, order domain.Order) {
	if s.events == nil {
		return
	}
	event := domain.OrderPlacedEvent{
		EventID:   uuid.New().String(),
		Type:      domain.EventOrderPlaced,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Items:     order.Items,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	err := s.step(context.WithoutCancel(ctx), "publish_event", func(ctx context.Context) error {
		return s.events.PublishOrderPlaced(ctx, event)
	})
	if err != nil {
		run.log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish order event")
	}
}

func (s *CheckoutService) fail(run *sagaRun, state domain.CheckoutState, err error) domain.CheckoutResult {
	result := domain.CheckoutResult{State: state, Err: err}
	switch state {
	case domain.StateStockDenied:
		result.Message = domain.MessageStockDenied
		result.Reason = domain.ReasonInsufficientStock
	case domain.StatePaymentDeclined:
		result.Message = domain.MessagePaymentDeclined
		result.Reason = domain.ReasonCardDeclined
	default:
		result.Message = domain.MessageTechnicalFailure
		result.Reason = domain.ReasonTechnicalFailure
	}

	run.log.Warn().Err(err).Str("last_state", string(run.state)).Str("state", string(state)).Msg("checkout failed")
	run.state = state
	return result
}

func (s *CheckoutService) finish(span trace.Span, result domain.CheckoutResult, start time.Time) {
	s.metrics.ObserveCheckout(result.State, time.Since(start))
	span.SetAttributes(attribute.String("checkout.state", string(result.State)))
	if !result.Success {
		span.SetStatus(codes.Error, result.Reason)
	}
}

func validateCheckout(req domain.CheckoutRequest) error {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidRequest)
	case strings.TrimSpace(req.ProductID) == "":
		return fmt.Errorf("%w: product_id is required", domain.ErrInvalidRequest)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	case strings.TrimSpace(req.CardNumber) == "":
		return fmt.Errorf("%w: card_number is required", domain.ErrInvalidRequest)
	}
	return nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveCheckout(domain.CheckoutState, time.Duration) {}
func (nopMetrics) ObserveCompensation(bool)                            {}
