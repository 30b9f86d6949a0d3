package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "order.placed"

type OrderPlacedEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Items     map[string]int  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
