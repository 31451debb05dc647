package calculation

import (
	"testing"

	"github.com/shopspring/decimal"

	"invest-checkout/internal/domain/entity/offering"
)

func testOffering(t *testing.T) *offering.Offering {
	t.Helper()
	tiers, err := offering.ParseBonusTiers("1000:5,5000:10")
	if err != nil {
		t.Fatalf("parse tiers: %v", err)
	}
	return &offering.Offering{
		SharePrice:    decimal.NewFromInt(1),
		MinInvestment: decimal.NewFromInt(500),
		SecurityType:  "Common Stock",
		BonusTiers:    tiers,
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		sharePrice  string
		wantBase    int64
		wantPercent int64
		wantBonus   int64
		wantTotal   int64
	}{
		{
			name:       "exact multiple below first tier",
			amount:     "999",
			sharePrice: "1",
			wantBase:   999, wantPercent: 0, wantBonus: 0, wantTotal: 999,
		},
		{
			name:       "first tier boundary",
			amount:     "1000",
			sharePrice: "1",
			wantBase:   1000, wantPercent: 5, wantBonus: 50, wantTotal: 1050,
		},
		{
			name:       "second tier boundary",
			amount:     "5000",
			sharePrice: "1",
			wantBase:   5000, wantPercent: 10, wantBonus: 500, wantTotal: 5500,
		},
		{
			name:       "between tiers keeps highest qualifying",
			amount:     "7000",
			sharePrice: "1",
			wantBase:   7000, wantPercent: 10, wantBonus: 700, wantTotal: 7700,
		},
		{
			name:       "fractional amount rounds shares up",
			amount:     "1000.01",
			sharePrice: "2.50",
			wantBase:   401, wantPercent: 5, wantBonus: 20, wantTotal: 421,
		},
		{
			name:       "bonus shares round half up",
			amount:     "1050",
			sharePrice: "2",
			// 525 base shares at 5% = 26.25, rounds to 26
			wantBase: 525, wantPercent: 5, wantBonus: 26, wantTotal: 551,
		},
		{
			name:       "zero amount",
			amount:     "0",
			sharePrice: "1",
			wantBase:   0, wantPercent: 0, wantBonus: 0, wantTotal: 0,
		},
		{
			name:       "negative amount clamps to zero",
			amount:     "-250",
			sharePrice: "1",
			wantBase:   0, wantPercent: 0, wantBonus: 0, wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off := testOffering(t)
			off.SharePrice = decimal.RequireFromString(tt.sharePrice)
			amount := decimal.RequireFromString(tt.amount)

			calc := Calculate(amount, off)

			if calc.BaseShares != tt.wantBase {
				t.Errorf("BaseShares = %d, want %d", calc.BaseShares, tt.wantBase)
			}
			if calc.BonusPercent != tt.wantPercent {
				t.Errorf("BonusPercent = %d, want %d", calc.BonusPercent, tt.wantPercent)
			}
			if calc.BonusShares != tt.wantBonus {
				t.Errorf("BonusShares = %d, want %d", calc.BonusShares, tt.wantBonus)
			}
			if calc.TotalShares != tt.wantTotal {
				t.Errorf("TotalShares = %d, want %d", calc.TotalShares, tt.wantTotal)
			}
		})
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	off := testOffering(t)
	amount := decimal.RequireFromString("1234.56")

	first := Calculate(amount, off)
	second := Calculate(amount, off)

	if first != second {
		t.Errorf("repeated calculation differs: %+v vs %+v", first, second)
	}
}

func TestCalculateDegenerateSharePrice(t *testing.T) {
	off := testOffering(t)
	off.SharePrice = decimal.Zero

	calc := Calculate(decimal.NewFromInt(1000), off)
	if calc.BaseShares != 0 || calc.TotalShares != 0 {
		t.Errorf("expected zero shares for zero share price, got %+v", calc)
	}
}

func TestSharesToAmountRoundTrip(t *testing.T) {
	off := testOffering(t)
	off.SharePrice = decimal.RequireFromString("2.50")

	for _, shares := range []int64{0, 1, 200, 999, 4321} {
		amount := SharesToAmount(shares, off)
		calc := Calculate(amount, off)
		if calc.BaseShares != shares {
			t.Errorf("round trip for %d shares: amount %s gave %d base shares", shares, amount, calc.BaseShares)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$1,250.50", "1250.5"},
		{"1000", "1000"},
		{" 42 ", "42"},
		{"", "0"},
		{"garbage", "0"},
		{"-500", "0"},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.raw)
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestParseShares(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"1,250", 1250},
		{"10", 10},
		{"10.5", 11},
		{"10.4", 10},
		{"", 0},
		{"nope", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		if got := ParseShares(tt.raw); got != tt.want {
			t.Errorf("ParseShares(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount string
		places int32
		want   string
	}{
		{"1234567.891", 2, "$1,234,567.89"},
		{"500", 2, "$500.00"},
		{"25000", 0, "$25,000"},
		{"0", 2, "$0.00"},
	}
	for _, tt := range tests {
		got := FormatCurrency(decimal.RequireFromString(tt.amount), tt.places)
		if got != tt.want {
			t.Errorf("FormatCurrency(%s, %d) = %q, want %q", tt.amount, tt.places, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
