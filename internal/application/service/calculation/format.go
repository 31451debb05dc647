package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders "$1,234.50" style strings with a fixed number
// of decimal places and en-US thousands grouping.
func FormatCurrency(amount decimal.Decimal, places int32) string {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return "$" + groupDigits(amount.StringFixed(places))
}

// FormatNumber renders a whole share count with thousands grouping.
func FormatNumber(n int64) string {
	if n < 0 {
		n = 0
	}
	return groupDigits(decimal.NewFromInt(n).String())
}

// groupDigits inserts comma separators into the integer part of a
// plain non-negative numeric string.
func groupDigits(s string) string {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	if hasFrac {
		return intPart + "." + fracPart
	}
	return intPart
}
