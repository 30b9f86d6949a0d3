package handler

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/service"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

type GRPCHandler struct {
	inventory *service.InventoryService
	payments  port.PaymentGateway
	orders    *service.OrderService
	checkout  *service.CheckoutService
}

func NewGRPCHandler(
	inventory *service.InventoryService,
	payments port.PaymentGateway,
	orders *service.OrderService,
	checkout *service.CheckoutService,
) *GRPCHandler {
	return &GRPCHandler{
		inventory: inventory,
		payments:  payments,
		orders:    orders,
		checkout:  checkout,
	}
}

// NewGRPCServer returns a server with the checkout service registered and
// recovery plus access logging installed.
func NewGRPCServer(h *GRPCHandler, logger zerolog.Logger) *grpc.Server {
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		recoveryInterceptor(logger),
		loggingInterceptor(logger),
	))
	RegisterCheckoutServiceServer(server, h)
	return server
}

// Checkout reports business outcomes in the reply; only rejected requests
// surface as status errors.
func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutReply, error) {
	result, err := h.checkout.Checkout(ctx, domain.CheckoutRequest{
		RequestID:  req.RequestID,
		UserID:     req.UserID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		CardNumber: req.CardNumber,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	reply := &CheckoutReply{
		Success: result.Success,
		Message: result.Message,
		State:   string(result.State),
		Reason:  result.Reason,
	}
	if result.Order != nil {
		reply.OrderID = result.Order.ID
	}
	return reply, nil
}

func (h *GRPCHandler) ReserveStock(ctx context.Context, req *StockChangeRequest) (*ReserveReply, error) {
	outcome, err := h.inventory.Reserve(ctx, req.ProductID, req.Quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return &ReserveReply{Status: domain.ReasonInsufficientStock}, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReserveReply{Status: "OK", Granted: true, Remaining: outcome.Remaining}, nil
}

func (h *GRPCHandler) ReleaseStock(ctx context.Context, req *StockChangeRequest) (*StatusReply, error) {
	if err := h.inventory.Release(ctx, req.ProductID, req.Quantity); err != nil {
		return nil, toStatus(err)
	}
	return &StatusReply{Status: "OK"}, nil
}

func (h *GRPCHandler) SetStock(ctx context.Context, req *SetStockGRPCRequest) (*StatusReply, error) {
	if err := h.inventory.SetStock(ctx, req.ProductID, req.Stock); err != nil {
		return nil, toStatus(err)
	}
	return &StatusReply{Status: "OK"}, nil
}

func (h *GRPCHandler) GetStock(ctx context.Context, req *GetStockRequest) (*StockReply, error) {
	stock, err := h.inventory.GetStock(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &StockReply{ProductID: req.ProductID, Stock: stock}, nil
}

func (h *GRPCHandler) Charge(ctx context.Context, req *ChargeGRPCRequest) (*ChargeReply, error) {
	result, err := h.payments.Charge(ctx, req.CardNumber, req.Amount)
	if err != nil {
		return nil, toStatus(err)
	}
	if !result.Approved() {
		return &ChargeReply{Status: "FAILED", Amount: result.Amount, Reason: result.Reason}, nil
	}
	return &ChargeReply{Status: "SUCCESS", Amount: result.Amount}, nil
}

func (h *GRPCHandler) CreateOrder(ctx context.Context, req *CreateOrderGRPCRequest) (*OrderReply, error) {
	order, err := h.orders.CreateOrder(ctx, req.UserID, req.Items, req.Total)
	if err != nil {
		return nil, toStatus(err)
	}
	return &OrderReply{Order: order}, nil
}

func (h *GRPCHandler) GetOrders(ctx context.Context, req *UserRequest) (*OrdersReply, error) {
	orders, err := h.orders.ListOrders(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &OrdersReply{Orders: orders}, nil
}

func (h *GRPCHandler) GetLatestOrder(ctx context.Context, req *UserRequest) (*OrderReply, error) {
	order, err := h.orders.LatestOrder(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &OrderReply{Order: order}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, domain.ReasonNotFound)
	case errors.Is(err, domain.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, domain.ReasonDuplicateRequest)
	default:
		return status.Error(codes.Internal, domain.ReasonTechnicalFailure)
	}
}

func recoveryInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("method", info.FullMethod).
					Msg("recovered from panic")
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func loggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqLogger := logger.With().Str("method", info.FullMethod).Logger()

		resp, err := handler(reqLogger.WithContext(ctx), req)

		reqLogger.Info().
			Str("code", status.Code(err).String()).
			Dur("duration", time.Since(start)).
			Msg("grpc request")
		return resp, err
	}
}

var _ CheckoutServiceServer = (*GRPCHandler)(nil)
