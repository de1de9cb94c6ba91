package rules

import (
	"fmt"
	"regexp"
	"strconv"
)

// Condition constructors below cover the common rule shapes so that callers
// can assemble rules declaratively instead of writing ad-hoc closures. This
// also keeps the door open for loading rule definitions from configuration,
// since each constructor is expressible as data.

// EventType matches events whose "event_type" field equals the given value.
func EventType(value string) Condition {
	return FieldEquals("event_type", value)
}

// FieldEquals matches events whose field is present and equal to value.
// Comparison uses string forms for numeric values, so 85 and 85.0 compare
// equal regardless of how the event payload was decoded.
func FieldEquals(field string, value any) Condition {
	return func(event map[string]any) bool {
		got, ok := event[field]
		if !ok {
			return false
		}
		if got == value {
			return true
		}

		gotNum, gotOk := toFloat(got)
		wantNum, wantOk := toFloat(value)
		return gotOk && wantOk && gotNum == wantNum
	}
}

// FieldAbove matches events whose field holds a numeric value strictly
// greater than threshold. Missing or non-numeric fields never match.
func FieldAbove(field string, threshold float64) Condition {
	return func(event map[string]any) bool {
		v, ok := toFloat(event[field])
		return ok && v > threshold
	}
}

// FieldBelow matches events whose field holds a numeric value strictly
// less than threshold. Missing or non-numeric fields never match.
func FieldBelow(field string, threshold float64) Condition {
	return func(event map[string]any) bool {
		v, ok := toFloat(event[field])
		return ok && v < threshold
	}
}

// FieldMatches matches events whose field's string form matches the given
// regular expression. Returns an error for an invalid pattern so that broken
// rules fail at registration instead of silently never matching.
func FieldMatches(field, pattern string) (Condition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return func(event map[string]any) bool {
		v, ok := event[field]
		if !ok {
			return false
		}
		return re.MatchString(fmt.Sprint(v))
	}, nil
}

// All matches when every condition matches. Matches nothing when empty.
func All(conds ...Condition) Condition {
	return func(event map[string]any) bool {
		if len(conds) == 0 {
			return false
		}
		for _, c := range conds {
			if c == nil || !c(event) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one condition matches.
func Any(conds ...Condition) Condition {
	return func(event map[string]any) bool {
		for _, c := range conds {
			if c != nil && c(event) {
				return true
			}
		}
		return false
	}
}

// toFloat coerces the numeric types a decoded event payload may carry.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
