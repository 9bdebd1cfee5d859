package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type FeeReview struct {
	Token   string
	Fee     decimal.Decimal
	Balance decimal.Decimal
}

// ParseFeeReview reads the texts shown by the fee panel. Thousands separators
// are ignored; anything else that is not a plain number is unreadable.
func ParseFeeReview(token, feeText, balanceText string) (FeeReview, error) {
	fee, err := parseDisplayedAmount(feeText)
	if err != nil {
		return FeeReview{}, fmt.Errorf("%w: fee %q: %w", ErrFeeReviewUnreadable, feeText, err)
	}

	balance, err := parseDisplayedAmount(balanceText)
	if err != nil {
		return FeeReview{}, fmt.Errorf("%w: balance %q: %w", ErrFeeReviewUnreadable, balanceText, err)
	}

	return FeeReview{Token: strings.TrimSpace(token), Fee: fee, Balance: balance}, nil
}

// Covered reports whether the balance pays for the fee. The panel shows the
// fee as a signed debit.
func (r FeeReview) Covered() bool {
	return r.Balance.GreaterThanOrEqual(r.Fee.Abs())
}

func parseDisplayedAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	return decimal.NewFromString(cleaned)
}
