package rules

import "errors"

var (
	// ErrInvalidRule is returned when a rule fails validation.
	ErrInvalidRule = errors.New("invalid alert rule")

	// ErrRuleNotFound is returned when referencing an unregistered rule name.
	ErrRuleNotFound = errors.New("alert rule not found")

	// ErrInvalidPattern is returned when a pattern condition cannot be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")
)
