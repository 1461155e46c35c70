package enums

import (
	"fmt"
	"strings"
)

// PricingMode selects how order totals are determined.
type PricingMode string

const (
	// PricingModeCart derives totals from the caller's cart snapshot.
	PricingModeCart PricingMode = "cart"
	// PricingModeClient stores the caller-supplied total and status as-is.
	PricingModeClient PricingMode = "client"
)

var validPricingModes = []PricingMode{
	PricingModeCart,
	PricingModeClient,
}

// String implements fmt.Stringer.
func (m PricingMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PricingMode.
func (m PricingMode) IsValid() bool {
	for _, candidate := range validPricingModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePricingMode converts raw input into a PricingMode. Empty input means cart.
func ParsePricingMode(value string) (PricingMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return PricingModeCart, nil
	}
	for _, candidate := range validPricingModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing mode %q", value)
}
