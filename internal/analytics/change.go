package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidDirection is returned for direction filters other than
// increase, decrease and both.
var ErrInvalidDirection = errors.New("invalid direction")

// Direction classifies a change against a baseline.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// DirectionFilter restricts outlier results by direction.
type DirectionFilter string

const (
	FilterIncrease DirectionFilter = "increase"
	FilterDecrease DirectionFilter = "decrease"
	FilterBoth     DirectionFilter = "both"
)

// ParseDirectionFilter parses a direction filter. An empty string selects FilterBoth.
func ParseDirectionFilter(s string) (DirectionFilter, error) {
	switch DirectionFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterBoth:
		return FilterBoth, nil
	case FilterIncrease:
		return FilterIncrease, nil
	case FilterDecrease:
		return FilterDecrease, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Allows reports whether a change in direction d passes the filter.
func (f DirectionFilter) Allows(d Direction) bool {
	return f == FilterBoth || string(f) == string(d)
}

var hundred = decimal.NewFromInt(100)

// Change compares a current value against one baseline.
type Change struct {
	Amount    decimal.Decimal `json:"amount"`
	Percent   int64           `json:"percent"`
	Direction Direction       `json:"direction"`
}

// NewChange builds the change from baseline to current. Amount is always the
// exact difference, independent of the percent convention.
func NewChange(current, baseline decimal.Decimal) Change {
	percent, direction := PercentChange(current, baseline)
	return Change{
		Amount:    current.Sub(baseline),
		Percent:   percent,
		Direction: direction,
	}
}

// PercentChange returns the whole-number percentage change from previous to
// current and its direction.
//
// A zero baseline is a convention, not a percentage: 100% increase when current
// is positive, otherwise 0% decrease. Otherwise the percentage is rounded half
// away from zero (2.5 -> 3, -2.5 -> -3) and a result of 0 counts as an increase.
func PercentChange(current, previous decimal.Decimal) (int64, Direction) {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100, DirectionIncrease
		}
		return 0, DirectionDecrease
	}
	percent := roundPercent(current.Sub(previous), previous)
	if percent >= 0 {
		return percent, DirectionIncrease
	}
	return percent, DirectionDecrease
}

// roundPercent computes delta/base*100 rounded half away from zero. base must
// be non-zero.
func roundPercent(delta, base decimal.Decimal) int64 {
	return delta.Mul(hundred).Div(base).Round(0).IntPart()
}
