package denoms

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ScaleAmount converts an integer amount in minor units to a display string with exactly `decimals`
// fractional digits. ScaleAmount("12345678", 6) == "12.345678" and decimals=0 returns the integer unchanged.
func ScaleAmount(raw string, decimals int) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty amount")
	}
	if decimals < 0 {
		return "", fmt.Errorf("negative decimals %d", decimals)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return "", fmt.Errorf("amount %q is not a number: %w", raw, err)
	}
	if !amount.Equal(amount.Truncate(0)) {
		return "", fmt.Errorf("amount %q is not an integer in minor units", raw)
	}

	return amount.Shift(int32(-decimals)).StringFixed(int32(decimals)), nil
}

// ScaleOrRaw scales the amount, returning the untouched input when it cannot be interpreted.
func ScaleOrRaw(raw string, decimals int) string {
	scaled, err := ScaleAmount(raw, decimals)
	if err != nil {
		return raw
	}
	return scaled
}

// IsZero reports whether a minor-unit amount is zero. Unparsable input counts as zero.
func IsZero(raw string) bool {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return true
	}
	return amount.IsZero()
}
