package batch

import (
	"fmt"
	"math"
	"strings"
)

// Comparison is the operator applied as "average <op> threshold".
type Comparison string

const (
	LessOrEqual    Comparison = "lte"
	Less           Comparison = "lt"
	GreaterOrEqual Comparison = "gte"
	Greater        Comparison = "gt"
)

// DefaultThresholdHours is the high-frequency cutoff: one hour.
const DefaultThresholdHours = 1.0

// ParseComparison accepts lte, lt, gte, gt and their symbol forms.
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lte", "<=", "le":
		return LessOrEqual, nil
	case "lt", "<":
		return Less, nil
	case "gte", ">=", "ge":
		return GreaterOrEqual, nil
	case "gt", ">":
		return Greater, nil
	default:
		return "", fmt.Errorf("invalid comparison: %q (valid: lte, lt, gte, gt)", s)
	}
}

// Symbol returns the operator as written in logs.
func (c Comparison) Symbol() string {
	switch c {
	case LessOrEqual:
		return "<="
	case Less:
		return "<"
	case GreaterOrEqual:
		return ">="
	case Greater:
		return ">"
	default:
		return string(c)
	}
}

// Criteria decides whether an account's overall simple average qualifies.
type Criteria struct {
	ThresholdHours float64    `json:"threshold_hours"`
	Comparison     Comparison `json:"comparison"`
}

// DefaultCriteria keeps accounts holding one hour or less on average.
func DefaultCriteria() Criteria {
	return Criteria{
		ThresholdHours: DefaultThresholdHours,
		Comparison:     LessOrEqual,
	}
}

// Validate checks the threshold and operator.
func (c Criteria) Validate() error {
	if math.IsNaN(c.ThresholdHours) || math.IsInf(c.ThresholdHours, 0) || c.ThresholdHours < 0 {
		return fmt.Errorf("threshold hours must be a non-negative number, got %v", c.ThresholdHours)
	}
	_, err := ParseComparison(string(c.Comparison))
	if err != nil {
		return err
	}
	return nil
}

// Matches applies the comparison to averageHours.
func (c Criteria) Matches(averageHours float64) bool {
	switch c.Comparison {
	case Less:
		return averageHours < c.ThresholdHours
	case GreaterOrEqual:
		return averageHours >= c.ThresholdHours
	case Greater:
		return averageHours > c.ThresholdHours
	default:
		return averageHours <= c.ThresholdHours
	}
}

// String renders the criteria as "<= 1.0h".
func (c Criteria) String() string {
	return fmt.Sprintf("%s %.1fh", c.Comparison.Symbol(), c.ThresholdHours)
}
