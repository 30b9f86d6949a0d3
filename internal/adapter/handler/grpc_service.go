package handler

import (
	"context"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

const checkoutServiceName = "checkout.v1.CheckoutService"

type CheckoutRequest struct {
	RequestID  string `json:"request_id"`
	UserID     string `json:"user_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	CardNumber string `json:"card_number"`
}

type CheckoutReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	State   string `json:"state"`
	Reason  string `json:"reason,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

type StockChangeRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ReserveReply struct {
	Status    string `json:"status"`
	Granted   bool   `json:"granted"`
	Remaining int    `json:"remaining"`
}

type SetStockGRPCRequest struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type GetStockRequest struct {
	ProductID string `json:"product_id"`
}

type StockReply struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type StatusReply struct {
	Status string `json:"status"`
}

type ChargeGRPCRequest struct {
	CardNumber string          `json:"card_number"`
	Amount     decimal.Decimal `json:"amount"`
}

type ChargeReply struct {
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

type CreateOrderGRPCRequest struct {
	UserID string          `json:"user_id"`
	Items  map[string]int  `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type UserRequest struct {
	UserID string `json:"user_id"`
}

type OrderReply struct {
	Order domain.Order `json:"order"`
}

type OrdersReply struct {
	Orders []domain.Order `json:"orders"`
}

type CheckoutServiceServer interface {
	Checkout(context.Context, *CheckoutRequest) (*CheckoutReply, error)
	ReserveStock(context.Context, *StockChangeRequest) (*ReserveReply, error)
	ReleaseStock(context.Context, *StockChangeRequest) (*StatusReply, error)
	SetStock(context.Context, *SetStockGRPCRequest) (*StatusReply, error)
	GetStock(context.Context, *GetStockRequest) (*StockReply, error)
	Charge(context.Context, *ChargeGRPCRequest) (*ChargeReply, error)
	CreateOrder(context.Context, *CreateOrderGRPCRequest) (*OrderReply, error)
	GetOrders(context.Context, *UserRequest) (*OrdersReply, error)
	GetLatestOrder(context.Context, *UserRequest) (*OrderReply, error)
}

func RegisterCheckoutServiceServer(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&checkoutServiceDesc, srv)
}

// unary builds the MethodDesc for one request type, running the server
// interceptor chain when one is installed.
func unary[Req any](method string, call func(CheckoutServiceServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(CheckoutServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + checkoutServiceName + "/" + method,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}

var checkoutServiceDesc = grpc.ServiceDesc{
	ServiceName: checkoutServiceName,
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Checkout", func(s CheckoutServiceServer, ctx context.Context, in *CheckoutRequest) (any, error) {
			return s.Checkout(ctx, in)
		}),
		unary("ReserveStock", func(s CheckoutServiceServer, ctx context.Context, in *StockChangeRequest) (any, error) {
			return s.ReserveStock(ctx, in)
		}),
		unary("ReleaseStock", func(s CheckoutServiceServer, ctx context.Context, in *StockChangeRequest) (any, error) {
			return s.ReleaseStock(ctx, in)
		}),
		unary("SetStock", func(s CheckoutServiceServer, ctx context.Context, in *SetStockGRPCRequest) (any, error) {
			return s.SetStock(ctx, in)
		}),
		unary("GetStock", func(s CheckoutServiceServer, ctx context.Context, in *GetStockRequest) (any, error) {
			return s.GetStock(ctx, in)
		}),
		unary("Charge", func(s CheckoutServiceServer, ctx context.Context, in *ChargeGRPCRequest) (any, error) {
			return s.Charge(ctx, in)
		}),
		unary("CreateOrder", func(s CheckoutServiceServer, ctx context.Context, in *CreateOrderGRPCRequest) (any, error) {
			return s.CreateOrder(ctx, in)
		}),
		unary("GetOrders", func(s CheckoutServiceServer, ctx context.Context, in *UserRequest) (any, error) {
			return s.GetOrders(ctx, in)
		}),
		unary("GetLatestOrder", func(s CheckoutServiceServer, ctx context.Context, in *UserRequest) (any, error) {
			return s.GetLatestOrder(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "checkout/v1/checkout.json",
}

// CheckoutServiceClient calls the service over the JSON codec.
type CheckoutServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCheckoutServiceClient(cc grpc.ClientConnInterface) *CheckoutServiceClient {
	return &CheckoutServiceClient{cc: cc}
}

func (c *CheckoutServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+checkoutServiceName+"/"+method, in, out, opts...)
}

func (c *CheckoutServiceClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutReply, error) {
	out := new(CheckoutReply)
	if err := c.invoke(ctx, "Checkout", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) ReserveStock(ctx context.Context, in *StockChangeRequest, opts ...grpc.CallOption) (*ReserveReply, error) {
	out := new(ReserveReply)
	if err := c.invoke(ctx, "ReserveStock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) ReleaseStock(ctx context.Context, in *StockChangeRequest, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.invoke(ctx, "ReleaseStock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) SetStock(ctx context.Context, in *SetStockGRPCRequest, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.invoke(ctx, "SetStock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) GetStock(ctx context.Context, in *GetStockRequest, opts ...grpc.CallOption) (*StockReply, error) {
	out := new(StockReply)
	if err := c.invoke(ctx, "GetStock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) Charge(ctx context.Context, in *ChargeGRPCRequest, opts ...grpc.CallOption) (*ChargeReply, error) {
	out := new(ChargeReply)
	if err := c.invoke(ctx, "Charge", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) CreateOrder(ctx context.Context, in *CreateOrderGRPCRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	out := new(OrderReply)
	if err := c.invoke(ctx, "CreateOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) GetOrders(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*OrdersReply, error) {
	out := new(OrdersReply)
	if err := c.invoke(ctx, "GetOrders", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CheckoutServiceClient) GetLatestOrder(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	out := new(OrderReply)
	if err := c.invoke(ctx, "GetLatestOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
