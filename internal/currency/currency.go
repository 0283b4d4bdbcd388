// internal/currency/currency.go
//
// Price rendering. Prices are currency-agnostic decimals in storage; the
// configured style only affects display. The inr style uses Indian digit
// grouping (thousands, then lakhs and crores).

package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Style selects the display currency.
type Style string

const (
	StyleUSD Style = "usd"
	StyleINR Style = "inr"
)

// Valid reports whether the style is one the formatter understands.
func (s Style) Valid() bool {
	return s == StyleUSD || s == StyleINR
}

// Formatter renders decimal amounts with two decimal places and the
// style's symbol and digit grouping.
type Formatter struct {
	style Style
}

// NewFormatter builds a formatter for the given style. Unknown styles
// fall back to usd.
func NewFormatter(style Style) Formatter {
	if !style.Valid() {
		style = StyleUSD
	}
	return Formatter{style: style}
}

// Format renders the amount, e.g. "$1,234.56" or "₹1,23,456.78".
func (f Formatter) Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	whole, frac, _ := strings.Cut(fixed, ".")
	switch f.style {
	case StyleINR:
		whole = groupIndian(whole)
	default:
		whole = groupWestern(whole)
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(f.symbol())
	b.WriteString(whole)
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func (f Formatter) symbol() string {
	if f.style == StyleINR {
		return "₹"
	}
	return "$"
}

// groupWestern inserts a separator every three digits: 1234567 → 1,234,567.
func groupWestern(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// groupIndian separates the last three digits, then pairs:
// 12345678 → 1,23,45,678.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	tail := digits[n-3:]
	rest := digits[:n-3]
	var groups []string
	for len(rest) > 2 {
		groups = append([]string{rest[len(rest)-2:]}, groups...)
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		groups = append([]string{rest}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
