package calculation

import (
	"strings"

	"github.com/shopspring/decimal"

	"invest-checkout/internal/domain/entity/offering"
)

var oneHundred = decimal.NewFromInt(100)

// Calculate derives the share breakdown for an amount under an offering.
// Base shares round up (partial amounts buy a whole share), bonus shares
// round half up. The function is pure: identical inputs yield identical
// output. Negative amounts are treated as zero; a degenerate share price
// yields zero shares rather than dividing by zero.
func Calculate(amount decimal.Decimal, off *offering.Offering) offering.Calculation {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	calc := offering.Calculation{Amount: amount}
	if off == nil || off.SharePrice.Sign() <= 0 {
		return calc
	}

	calc.BaseShares = amount.Div(off.SharePrice).Ceil().IntPart()
	calc.BonusPercent = off.BonusPercentFor(amount)
	if calc.BonusPercent > 0 {
		calc.BonusShares = decimal.NewFromInt(calc.BaseShares).
			Mul(decimal.NewFromInt(calc.BonusPercent)).
			Div(oneHundred).
			Round(0).
			IntPart()
	}
	calc.TotalShares = calc.BaseShares + calc.BonusShares
	return calc
}

// SharesToAmount is the inverse mapping used when the investor edits the
// share count directly. Recomputing Calculate on the result reproduces
// the same base share count for whole-share inputs.
func SharesToAmount(shares int64, off *offering.Offering) decimal.Decimal {
	if shares < 0 || off == nil {
		return decimal.Zero
	}
	return off.SharePrice.Mul(decimal.NewFromInt(shares))
}

// ParseAmount turns user input like "$1,250.50" into a decimal amount.
// Unparseable or negative input collapses to zero, mirroring how the
// wizard clamps its amount field.
func ParseAmount(raw string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// ParseShares turns user input like "1,250" into a whole share count.
// Fractional input rounds half up before conversion.
func ParseShares(raw string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	shares, err := decimal.NewFromString(cleaned)
	if err != nil || shares.IsNegative() {
		return 0
	}
	return shares.Round(0).IntPart()
}
