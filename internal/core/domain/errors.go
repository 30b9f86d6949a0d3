package domain

import "errors"

// Error kinds shared by every component. Adapters wrap these with %w so
// callers classify failures with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCardDeclined      = errors.New("card declined")
	ErrTechnicalFailure  = errors.New("technical failure")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrDuplicateRequest  = errors.New("duplicate request")
)

// Machine-readable reasons carried on responses.
const (
	ReasonNotFound          = "NOT_FOUND"
	ReasonInsufficientStock = "INSUFFICIENT_STOCK"
	ReasonCardDeclined      = "CARD_DECLINED"
	ReasonTechnicalFailure  = "TECHNICAL_FAILURE"
	ReasonInvalidRequest    = "INVALID_REQUEST"
	ReasonDuplicateRequest  = "DUPLICATE_REQUEST"
)

// ReasonOf maps an error to its machine-readable reason. Unknown errors are
// technical failures.
func ReasonOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrInsufficientStock):
		return ReasonInsufficientStock
	case errors.Is(err, ErrCardDeclined):
		return ReasonCardDeclined
	case errors.Is(err, ErrInvalidRequest):
		return ReasonInvalidRequest
	case errors.Is(err, ErrDuplicateRequest):
		return ReasonDuplicateRequest
	default:
		return ReasonTechnicalFailure
	}
}
