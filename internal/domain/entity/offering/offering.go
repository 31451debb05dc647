package offering

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// BonusTier grants extra shares once the invested amount reaches Threshold.
type BonusTier struct {
	Threshold    decimal.Decimal `json:"threshold"`
	BonusPercent int64           `json:"bonusPercent"`
}

// Offering describes the terms a prospective investor subscribes under.
// MaxInvestment is nil when the offering has no upper bound.
type Offering struct {
	SharePrice    decimal.Decimal  `json:"sharePrice"`
	MinInvestment decimal.Decimal  `json:"minInvestment"`
	MaxInvestment *decimal.Decimal `json:"maxInvestment,omitempty"`
	SecurityType  string           `json:"securityType"`
	BonusTiers    []BonusTier      `json:"bonusTiers"`
}

// BonusPercentFor resolves the incentive tier for an amount: the tier with
// the largest threshold not exceeding the amount wins, no tier means zero.
func (o *Offering) BonusPercentFor(amount decimal.Decimal) int64 {
	var percent int64
	best := decimal.Decimal{}
	matched := false
	for _, tier := range o.BonusTiers {
		if tier.Threshold.GreaterThan(amount) {
			continue
		}
		if !matched || tier.Threshold.GreaterThanOrEqual(best) {
			best = tier.Threshold
			percent = tier.BonusPercent
			matched = true
		}
	}
	return percent
}

// WithinBounds reports whether amount satisfies the offering's
// min/max investment constraints (max is ignored when unset).
func (o *Offering) WithinBounds(amount decimal.Decimal) bool {
	if amount.LessThan(o.MinInvestment) {
		return false
	}
	if o.MaxInvestment != nil && amount.GreaterThan(*o.MaxInvestment) {
		return false
	}
	return true
}

// ParseBonusTiers parses a "threshold:percent,threshold:percent" spec,
// the form bonus tiers are supplied in via environment configuration.
// Tiers are returned sorted ascending by threshold.
func ParseBonusTiers(raw string) ([]BonusTier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var tiers []BonusTier
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid bonus tier %q, want threshold:percent", part)
		}
		threshold, err := decimal.NewFromString(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("parse tier threshold %q: %w", fields[0], err)
		}
		percent, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse tier percent %q: %w", fields[1], err)
		}
		if threshold.IsNegative() || percent < 0 {
			return nil, fmt.Errorf("bonus tier %q must be non-negative", part)
		}
		tiers = append(tiers, BonusTier{Threshold: threshold, BonusPercent: percent})
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Threshold.LessThan(tiers[j].Threshold)
	})
	return tiers, nil
}
