package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency is how often a line item's amount recurs.
type Frequency string

const (
	FreqWeekly      Frequency = "weekly"
	FreqFortnightly Frequency = "fortnightly"
	FreqMonthly     Frequency = "monthly"
	FreqQuarterly   Frequency = "quarterly"
	FreqAnnually    Frequency = "annually"
	FreqOneTime     Frequency = "one_time"
)

// Multipliers maps a frequency to the number of occurrences per year.
type Multipliers map[Frequency]decimal.Decimal

// DefaultMultipliers returns the standard occurrence table.
func DefaultMultipliers() Multipliers {
	return Multipliers{
		FreqWeekly:      decimal.NewFromInt(52),
		FreqFortnightly: decimal.NewFromInt(26),
		FreqMonthly:     decimal.NewFromInt(12),
		FreqQuarterly:   decimal.NewFromInt(4),
		FreqAnnually:    decimal.NewFromInt(1),
		FreqOneTime:     decimal.NewFromInt(1),
	}
}

// NormalizeFrequency maps raw form/wire input onto the closed enumeration.
// Legacy aliases are folded in; anything unrecognized is passed through
// unchanged and resolved by the monthly fallback in Annual.
func NormalizeFrequency(raw string) Frequency {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "biweekly", "fortnight":
		return FreqFortnightly
	case "yearly", "annual", "per_annum":
		return FreqAnnually
	case "once", "one_off", "onetime":
		return FreqOneTime
	case "":
		return FreqMonthly
	}
	return Frequency(s)
}

// Annual returns the yearly occurrence count for f. Unknown or non-positive
// entries fall back to the monthly multiplier: upstream records still carry
// legacy frequency strings, and a finite total beats a rejected row.
func (m Multipliers) Annual(f Frequency) decimal.Decimal {
	if mult, ok := m[f]; ok && mult.IsPositive() {
		return mult
	}
	if mult, ok := m[FreqMonthly]; ok && mult.IsPositive() {
		return mult
	}
	return decimal.NewFromInt(12)
}

// AnnualTotal converts a per-occurrence amount into a yearly figure.
func (m Multipliers) AnnualTotal(amount decimal.Decimal, f Frequency) decimal.Decimal {
	return amount.Mul(m.Annual(f))
}
