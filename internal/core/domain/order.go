package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable journal record. Seq is the journal position,
// assigned on append and strictly increasing.
type Order struct {
	ID        string          `json:"id"`
	Seq       int64           `json:"seq"`
	UserID    string          `json:"user_id"`
	Items     map[string]int  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// Quantity returns the ordered quantity of productID.
func (o Order) Quantity(productID string) int {
	return o.Items[productID]
}
