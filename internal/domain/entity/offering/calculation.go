package offering

import "github.com/shopspring/decimal"

// Calculation is the derived view of an invested amount under an offering.
// It is recomputed from scratch on every amount or share edit.
type Calculation struct {
	Amount       decimal.Decimal `json:"amount"`
	BaseShares   int64           `json:"baseShares"`
	BonusPercent int64           `json:"bonusPercent"`
	BonusShares  int64           `json:"bonusShares"`
	TotalShares  int64           `json:"totalShares"`
}
