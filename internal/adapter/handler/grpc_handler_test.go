package handler

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/collaborator"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/storage"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/service"
)

func newGRPCClient(t *testing.T) *CheckoutServiceClient {
	t.Helper()
	ctx := context.Background()

	stock := storage.NewMemoryStockAdapter()
	stock.SetStock(ctx, "Laptop-X", 5)
	stock.SetStock(ctx, "Mouse-Z", 1)

	inventory := service.NewInventoryService(stock)
	payments := service.NewPaymentService()
	orders := service.NewOrderService(storage.NewMemoryOrderJournal())
	checkout := service.NewCheckoutService(
		collaborator.NewMemoryCatalog(collaborator.DefaultProducts()),
		collaborator.NewMemoryCartStore(),
		inventory, payments, orders,
		service.WithIdempotencyStore(storage.NewMemoryIdempotencyStore()),
	)

	listener := bufconn.Listen(1 << 20)
	server := NewGRPCServer(NewGRPCHandler(inventory, payments, orders, checkout), zerolog.Nop())
	go server.Serve(listener)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewCheckoutServiceClient(conn)
}

func TestGRPC_CheckoutFlow(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	reply, err := client.Checkout(ctx, &CheckoutRequest{
		UserID: "user-a", ProductID: "Laptop-X", Quantity: 1, CardNumber: "4242-4242-4242-4242",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Success || reply.State != "ORDERED" || reply.OrderID == "" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	latest, err := client.GetLatestOrder(ctx, &UserRequest{UserID: "user-a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Order.ID != reply.OrderID || latest.Order.Items["Laptop-X"] != 1 {
		t.Errorf("unexpected latest order: %+v", latest.Order)
	}

	stock, _ := client.GetStock(ctx, &GetStockRequest{ProductID: "Laptop-X"})
	if stock.Stock != 4 {
		t.Errorf("expected stock 4, got %d", stock.Stock)
	}
}

func TestGRPC_CheckoutDeclinedIsAReply(t *testing.T) {
	client := newGRPCClient(t)

	reply, err := client.Checkout(context.Background(), &CheckoutRequest{
		UserID: "user-b", ProductID: "Laptop-X", Quantity: 1, CardNumber: "4000-0000-0000-0000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Success || reply.State != "PAYMENT_DECLINED" || reply.Message != domain.MessagePaymentDeclined {
		t.Errorf("unexpected reply: %+v", reply)
	}

	_, err = client.GetLatestOrder(context.Background(), &UserRequest{UserID: "user-b"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestGRPC_StatusCodes(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	_, err := client.Checkout(ctx, &CheckoutRequest{UserID: "u", ProductID: "Laptop-X", Quantity: 0, CardNumber: "4242"})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}

	req := &CheckoutRequest{RequestID: "req-1", UserID: "u", ProductID: "Laptop-X", Quantity: 1, CardNumber: "4242"}
	client.Checkout(ctx, req)
	_, err = client.Checkout(ctx, req)
	if status.Code(err) != codes.AlreadyExists {
		t.Errorf("expected AlreadyExists, got %v", err)
	}

	_, err = client.GetStock(ctx, &GetStockRequest{ProductID: "Ghost"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestGRPC_InventoryAndPayment(t *testing.T) {
	client := newGRPCClient(t)
	ctx := context.Background()

	if _, err := client.SetStock(ctx, &SetStockGRPCRequest{ProductID: "Mouse-Z", Stock: 2}); err != nil {
		t.Fatalf("SetStock: %v", err)
	}

	reserved, err := client.ReserveStock(ctx, &StockChangeRequest{ProductID: "Mouse-Z", Quantity: 2})
	if err != nil || !reserved.Granted || reserved.Remaining != 0 {
		t.Fatalf("unexpected reserve: %+v, %v", reserved, err)
	}

	denied, err := client.ReserveStock(ctx, &StockChangeRequest{ProductID: "Mouse-Z", Quantity: 1})
	if err != nil || denied.Granted || denied.Status != domain.ReasonInsufficientStock {
		t.Errorf("expected denial in reply, got %+v, %v", denied, err)
	}

	if _, err := client.ReleaseStock(ctx, &StockChangeRequest{ProductID: "Mouse-Z", Quantity: 2}); err != nil {
		t.Fatalf("ReleaseStock: %v", err)
	}

	charge, err := client.Charge(ctx, &ChargeGRPCRequest{CardNumber: "4000", Amount: decimal.NewFromInt(25)})
	if err != nil || charge.Status != "FAILED" || charge.Reason != domain.ReasonCardDeclined {
		t.Errorf("unexpected charge: %+v, %v", charge, err)
	}

	created, err := client.CreateOrder(ctx, &CreateOrderGRPCRequest{
		UserID: "u", Items: map[string]int{"Mouse-Z": 1}, Total: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	list, _ := client.GetOrders(ctx, &UserRequest{UserID: "u"})
	if len(list.Orders) != 1 || list.Orders[0].ID != created.Order.ID {
		t.Errorf("unexpected orders: %+v", list.Orders)
	}
}
