package domain

import "strings"

// Regime is the volatility regime label supplied by an external
// detector (or a manual override). The core only consumes it; inferring
// it is a collaborator concern.
type Regime string

const (
	RegimeLowVol  Regime = "LOW"
	RegimeHighVol Regime = "HIGH"
)

// ParseRegime maps a label to a Regime, case-insensitively.
// Returns ErrInvalidRegime for anything it does not recognize.
func ParseRegime(label string) (Regime, error) {
	switch strings.ToUpper(label) {
	case "LOW", "LOW_VOLATILITY":
		return RegimeLowVol, nil
	case "HIGH", "HIGH_VOLATILITY":
		return RegimeHighVol, nil
	}
	return "", ErrInvalidRegime
}
