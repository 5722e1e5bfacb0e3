// Package commission computes the monthly referral commission a referrer earns
// on the revenue reported by one referred partner.
//
// The rate is chosen by tier from the partner's revenue total for a calendar
// month and applies to the entire total, not marginally. Amounts are whole
// currency units; percentages are handled as integer basis points so the
// computation is exact.
package commission

import "errors"

// Tier thresholds in whole currency units.
const (
	MidTierFrom  int64 = 250_000
	HighTierFrom int64 = 1_000_000
)

// Rates in basis points (1 bp = 0.01 %).
const (
	LowRateBP  int64 = 50
	MidRateBP  int64 = 100
	HighRateBP int64 = 200
)

// ErrNegativeRevenue is returned by Calculate for a negative revenue total.
var ErrNegativeRevenue = errors.New("revenue must not be negative")

// Result is a tier decision for one monthly total.
type Result struct {
	Revenue   int64   `json:"revenue"`
	RateBP    int64   `json:"rate_bp"`
	Percent   float64 `json:"percent"`
	Amount    int64   `json:"amount"`
	TierLabel string  `json:"tier"`
}

// RateBP returns the commission rate for revenue r in basis points.
func RateBP(r int64) int64 {
	switch {
	case r >= HighTierFrom:
		return HighRateBP
	case r >= MidTierFrom:
		return MidRateBP
	default:
		return LowRateBP
	}
}

// Percent returns the commission rate for revenue r as a percentage
// (0.5, 1.0 or 2.0).
func Percent(r int64) float64 {
	return float64(RateBP(r)) / 100
}

// Amount returns the commission for revenue r, rounded half up to a whole
// unit. Negative input yields 0; use Calculate to reject it.
func Amount(r int64) int64 {
	if r <= 0 {
		return 0
	}
	bp := RateBP(r)
	return r/10000*bp + (r%10000*bp+5000)/10000
}

// Calculate returns the full tier decision for r.
func Calculate(r int64) (Result, error) {
	if r < 0 {
		return Result{}, ErrNegativeRevenue
	}
	bp := RateBP(r)
	return Result{
		Revenue:   r,
		RateBP:    bp,
		Percent:   float64(bp) / 100,
		Amount:    Amount(r),
		TierLabel: tierLabel(bp),
	}, nil
}

// Total sums the commission over several monthly totals, one per referred
// partner. Each total is tiered independently.
func Total(revenues []int64) int64 {
	var sum int64
	for _, r := range revenues {
		sum += Amount(r)
	}
	return sum
}

func tierLabel(bp int64) string {
	switch bp {
	case HighRateBP:
		return "2%"
	case MidRateBP:
		return "1%"
	default:
		return "0.5%"
	}
}
