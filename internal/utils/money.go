package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimals behind the currency symbol.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// ParsePositiveAmount parses a decimal string and rejects zero or negative values.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}
	return d, nil
}
