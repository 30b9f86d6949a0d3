package domain

import "github.com/shopspring/decimal"

type ChargeOutcome string

const (
	ChargeSuccess  ChargeOutcome = "SUCCESS"
	ChargeDeclined ChargeOutcome = "DECLINED"
)

// ChargeResult is the authorizer's decision. Reason is set iff Outcome is
// ChargeDeclined.
type ChargeResult struct {
	Outcome ChargeOutcome
	Amount  decimal.Decimal
	Reason  string
}

func (r ChargeResult) Approved() bool {
	return r.Outcome == ChargeSuccess
}
