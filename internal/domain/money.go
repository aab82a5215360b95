package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a currency amount in minor units (paise/cents) with two fractional digits.
type Money int64

// TaxRatePercent is the GST rate applied to invoice subtotals.
const TaxRatePercent = 18

// Rupees converts a whole-unit amount to Money.
func Rupees(units int64) Money {
	return Money(units * 100)
}

// String renders the amount with exactly two fractional digits, e.g. "1999.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts JSON numbers or numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMoney parses a decimal string, rounding half-up beyond two fractional digits.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		return Money(math.Round(f * 100)), nil
	}

	raw := s
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	var cents int64
	if frac != "" {
		padded := frac + "00"
		cents, _ = strconv.ParseInt(padded[:2], 10, 64)
		if len(frac) > 2 && frac[2] >= '5' {
			cents++
		}
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// Tax returns the GST owed on a subtotal, rounded half-up to the minor unit.
func Tax(subtotal Money) Money {
	v := int64(subtotal) * TaxRatePercent
	if v < 0 {
		return Money((v - 50) / 100)
	}
	return Money((v + 50) / 100)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
