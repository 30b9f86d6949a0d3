package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

func TestMemoryOrderJournal_AppendAndList(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryOrderJournal()

	first, _ := journal.AppendOrder(ctx, domain.Order{ID: "o1", UserID: "user-1", Items: map[string]int{"Laptop-X": 1}, Total: decimal.NewFromInt(999)})
	journal.AppendOrder(ctx, domain.Order{ID: "o2", UserID: "user-2", Items: map[string]int{"Mouse-Z": 1}, Total: decimal.NewFromInt(25)})
	third, _ := journal.AppendOrder(ctx, domain.Order{ID: "o3", UserID: "user-1", Items: map[string]int{"Mouse-Z": 2}, Total: decimal.NewFromInt(50)})

	if first.Seq != 1 || third.Seq != 3 {
		t.Errorf("expected seq 1 and 3, got %d and %d", first.Seq, third.Seq)
	}

	orders, err := journal.ListOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "o1" || orders[1].ID != "o3" {
		t.Errorf("expected insertion order o1,o3, got %s,%s", orders[0].ID, orders[1].ID)
	}

	latest, err := journal.LatestOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "o3" {
		t.Errorf("expected latest o3, got %s", latest.ID)
	}
}

func TestMemoryOrderJournal_LatestNotFound(t *testing.T) {
	journal := NewMemoryOrderJournal()

	_, err := journal.LatestOrder(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}

	orders, _ := journal.ListOrders(context.Background(), "nobody")
	if orders == nil || len(orders) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", orders)
	}
}

func TestMemoryOrderJournal_StoredOrdersAreImmutable(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryOrderJournal()

	items := map[string]int{"Laptop-X": 1}
	stored, _ := journal.AppendOrder(ctx, domain.Order{ID: "o1", UserID: "user-1", Items: items})

	items["Laptop-X"] = 99
	stored.Items["Laptop-X"] = 42

	latest, _ := journal.LatestOrder(ctx, "user-1")
	if latest.Items["Laptop-X"] != 1 {
		t.Errorf("expected stored quantity 1, got %d", latest.Items["Laptop-X"])
	}
}

func TestMemoryOrderJournal_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryOrderJournal()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			journal.AppendOrder(ctx, domain.Order{ID: fmt.Sprintf("o%d", i), UserID: "user", Items: map[string]int{"p": 1}})
		}(i)
	}
	wg.Wait()

	orders, _ := journal.ListOrders(ctx, "user")
	if len(orders) != 100 {
		t.Fatalf("expected 100 orders, got %d", len(orders))
	}
	for i, order := range orders {
		if order.Seq != int64(i+1) {
			t.Fatalf("expected seq %d at position %d, got %d", i+1, i, order.Seq)
		}
	}
}

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore()

	ok, _ := store.SetIdempotency(ctx, "checkout:req-1")
	if !ok {
		t.Error("expected first claim to succeed")
	}
	ok, _ = store.SetIdempotency(ctx, "checkout:req-1")
	if ok {
		t.Error("expected second claim to fail")
	}

	if err := store.ReleaseIdempotency(ctx, "checkout:req-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, _ = store.SetIdempotency(ctx, "checkout:req-1")
	if !ok {
		t.Error("expected claim to succeed after release")
	}
}
