package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

func newSQLiteJournal(t *testing.T) *SQLiteOrderJournal {
	t.Helper()
	journal, err := NewSQLiteOrderJournal(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("open sqlite journal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal
}

func TestSQLiteOrderJournal_AppendAndLatest(t *testing.T) {
	ctx := context.Background()
	journal := newSQLiteJournal(t)

	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 6000, time.UTC)
	stored, err := journal.AppendOrder(ctx, domain.Order{
		ID:        "order-1",
		UserID:    "user-1",
		Items:     map[string]int{"Laptop-X": 1},
		Total:     decimal.RequireFromString("999.00"),
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("AppendOrder failed: %v", err)
	}
	if stored.Seq != 1 {
		t.Errorf("expected seq 1, got %d", stored.Seq)
	}

	journal.AppendOrder(ctx, domain.Order{
		ID:        "order-2",
		UserID:    "user-1",
		Items:     map[string]int{"Mouse-Z": 2},
		Total:     decimal.RequireFromString("50"),
		CreatedAt: createdAt.Add(time.Second),
	})

	latest, err := journal.LatestOrder(ctx, "user-1")
	if err != nil {
		t.Fatalf("LatestOrder failed: %v", err)
	}
	if latest.ID != "order-2" {
		t.Errorf("expected order-2, got %s", latest.ID)
	}
	if latest.Items["Mouse-Z"] != 2 {
		t.Errorf("expected 2 units of Mouse-Z, got %v", latest.Items)
	}
	if !latest.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected total 50, got %s", latest.Total)
	}

	orders, err := journal.ListOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "order-1" {
		t.Fatalf("expected [order-1 order-2], got %+v", orders)
	}
	if !orders[0].CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at %v, got %v", createdAt, orders[0].CreatedAt)
	}
	if !orders[0].Total.Equal(decimal.NewFromInt(999)) {
		t.Errorf("expected total 999, got %s", orders[0].Total)
	}
}

func TestSQLiteOrderJournal_NotFound(t *testing.T) {
	journal := newSQLiteJournal(t)

	_, err := journal.LatestOrder(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}

	orders, err := journal.ListOrders(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("expected no orders, got %d", len(orders))
	}
}
