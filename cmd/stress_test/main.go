package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/collaborator"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/logging"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/adapter/storage"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/service"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

const (
	productID    = "Laptop-X"
	approvedCard = "1234-5678"
	declinedCard = "4000-0000"
)

func main() {
	backend := flag.String("backend", "memory", "stock ledger: memory or redis")
	redisAddr := flag.String("redis", "localhost:6379", "redis address for -backend=redis")
	initialStock := flag.Int("stock", 20, "initial stock")
	totalRequests := flag.Int("requests", 50, "concurrent checkouts")
	declineEvery := flag.Int("decline-every", 0, "use a declined card for every Nth request (0 disables)")
	flag.Parse()

	logger := logging.New("checkout-stress", "error", true)
	ctx := context.Background()

	var stock port.StockRepository
	switch *backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		stock = storage.NewRedisAdapter(rdb)
	case "memory":
		stock = storage.NewMemoryStockAdapter()
	default:
		fmt.Fprintf(os.Stderr, "unknown backend %q\n", *backend)
		os.Exit(2)
	}

	if err := stock.SetStock(ctx, productID, *initialStock); err != nil {
		logger.Fatal().Err(err).Msg("failed to set stock")
	}

	inventory := service.NewInventoryService(stock)
	orders := service.NewOrderService(storage.NewMemoryOrderJournal())
	checkout := service.NewCheckoutService(
		collaborator.NewMemoryCatalog(collaborator.DefaultProducts()),
		collaborator.NewMemoryCartStore(),
		inventory,
		service.NewPaymentService(),
		orders,
		service.WithLogger(logger),
	)

	var (
		ordered  atomic.Int32
		denied   atomic.Int32
		declined atomic.Int32
		failed   atomic.Int32
	)

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			card := approvedCard
			if *declineEvery > 0 && n%*declineEvery == 0 {
				card = declinedCard
			}
			result, err := checkout.Checkout(ctx, domain.CheckoutRequest{
				UserID:     fmt.Sprintf("user-%d", n),
				ProductID:  productID,
				Quantity:   1,
				CardNumber: card,
			})
			if err != nil {
				failed.Add(1)
				return
			}
			switch result.State {
			case domain.StateOrdered:
				ordered.Add(1)
			case domain.StateStockDenied:
				denied.Add(1)
			case domain.StatePaymentDeclined:
				declined.Add(1)
			default:
				failed.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	finalStock, err := stock.GetStock(ctx, productID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read final stock")
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Backend:          %s\n", *backend)
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Ordered:          %d\n", ordered.Load())
	fmt.Printf("Stock Denied:     %d\n", denied.Load())
	fmt.Printf("Declined:         %d\n", declined.Load())
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Printf("Final Stock:      %d\n", finalStock)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	ok := true
	if got := int(ordered.Load()) + finalStock; got == *initialStock {
		fmt.Println("PASS: ordered + final stock equals initial stock")
	} else {
		fmt.Printf("FAIL: ordered + final stock = %d, expected %d\n", got, *initialStock)
		ok = false
	}
	if finalStock >= 0 {
		fmt.Println("PASS: no oversell")
	} else {
		fmt.Printf("FAIL: stock went negative (%d)\n", finalStock)
		ok = false
	}
	if *declineEvery == 0 && *totalRequests >= *initialStock {
		if int(ordered.Load()) == *initialStock {
			fmt.Printf("PASS: exactly %d orders succeeded\n", *initialStock)
		} else {
			fmt.Printf("FAIL: expected %d orders, got %d\n", *initialStock, ordered.Load())
			ok = false
		}
	}
	if failed.Load() != 0 {
		fmt.Printf("FAIL: %d technical failures\n", failed.Load())
		ok = false
	}

	if !ok {
		os.Exit(1)
	}
}
