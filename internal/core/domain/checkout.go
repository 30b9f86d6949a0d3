package domain

type CheckoutState string

const (
	StateStart            CheckoutState = "START"
	StatePriceFetched     CheckoutState = "PRICE_FETCHED"
	StateCartUpdated      CheckoutState = "CART_UPDATED"
	StateReserved         CheckoutState = "RESERVED"
	StatePaid             CheckoutState = "PAID"
	StateOrdered          CheckoutState = "ORDERED"
	StateStockDenied      CheckoutState = "STOCK_DENIED"
	StatePaymentDeclined  CheckoutState = "PAYMENT_DECLINED"
	StateTechnicalFailure CheckoutState = "TECHNICAL_FAILURE"
)

// Terminal reports whether no transition leaves s.
func (s CheckoutState) Terminal() bool {
	switch s {
	case StateOrdered, StateStockDenied, StatePaymentDeclined, StateTechnicalFailure:
		return true
	}
	return false
}

const (
	MessageOrdered          = "Order created successfully!"
	MessageStockDenied      = "Checkout failed: insufficient stock."
	MessagePaymentDeclined  = "Checkout failed: payment declined."
	MessageTechnicalFailure = "Checkout failed due to a technical error."
)

type CheckoutRequest struct {
	RequestID  string
	UserID     string
	ProductID  string
	Quantity   int
	CardNumber string
}

// CheckoutResult is the terminal outcome of one saga run. Err holds the
// underlying cause for failures and is never serialized.
type CheckoutResult struct {
	State   CheckoutState
	Success bool
	Message string
	Reason  string
	Order   *Order
	Err     error
}
