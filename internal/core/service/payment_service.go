package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

// Cards whose number literally starts with this prefix are always declined.
const declinedCardPrefix = "4000"

// PaymentService is a stateless stand-in for an authorization network.
type PaymentService struct{}

func NewPaymentService() *PaymentService {
	return &PaymentService{}
}

func (s *PaymentService) Charge(ctx context.Context, cardNumber string, amount decimal.Decimal) (domain.ChargeResult, error) {
	if strings.TrimSpace(cardNumber) == "" {
		return domain.ChargeResult{}, fmt.Errorf("%w: card_number is required", domain.ErrInvalidRequest)
	}
	if amount.IsNegative() {
		return domain.ChargeResult{}, fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidRequest)
	}

	if strings.HasPrefix(cardNumber, declinedCardPrefix) {
		return domain.ChargeResult{
			Outcome: domain.ChargeDeclined,
			Amount:  amount,
			Reason:  domain.ReasonCardDeclined,
		}, nil
	}

	return domain.ChargeResult{
		Outcome: domain.ChargeSuccess,
		Amount:  amount,
	}, nil
}
