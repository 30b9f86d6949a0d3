package domain

// StockEntry is the ledger's per-product counter. Quantity is never negative.
type StockEntry struct {
	ProductID string
	Quantity  int
}

// ReservationOutcome is the result of a reserve call. Remaining is only
// meaningful when Granted is true.
type ReservationOutcome struct {
	Granted   bool
	Remaining int
}
