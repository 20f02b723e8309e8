package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateAssetName checks the asset display name (non-empty, bounded).
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("name too long, max 64 characters")
	}
	return nil
}

// ValidateAssetKind checks the asset kind enumeration.
func ValidateAssetKind(kind string) error {
	switch kind {
	case "property", "investment", "employment":
		return nil
	}
	return fmt.Errorf("unknown asset kind %q", kind)
}

// ValidateIncome checks an optional annual income figure: empty is allowed
// (income unknown), otherwise a non-negative decimal string.
func ValidateIncome(income string) error {
	if income == "" {
		return nil
	}
	d, err := decimal.NewFromString(income)
	if err != nil {
		return fmt.Errorf("invalid income amount: %w", err)
	}
	if d.IsNegative() {
		return fmt.Errorf("income must not be negative, got %s", d)
	}
	return nil
}
