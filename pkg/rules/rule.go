package rules

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// Type classifies an alert rule. The classification is informational; all
// rules evaluate the same way through their Condition.
type Type string

const (
	TypeThreshold Type = "THRESHOLD"
	TypeEvent     Type = "EVENT"
	TypeTimeBased Type = "TIME_BASED"
	TypePattern   Type = "PATTERN"
)

// Valid checks if the rule type is one of the known classifications.
func (t Type) Valid() bool {
	switch t {
	case TypeThreshold, TypeEvent, TypeTimeBased, TypePattern:
		return true
	}
	return false
}

// Condition decides whether an event triggers a rule.
// Conditions must be pure functions of the event payload; a panicking
// condition is treated as a non-match by the engine.
type Condition func(event map[string]any) bool

// Rule triggers a notification when an event matches its condition.
// Rules live in process memory only and are re-registered at startup;
// conditions are executable code and are never persisted.
type Rule struct {
	Name        string
	Type        Type
	Condition   Condition
	Level       notification.Level
	Recipients  []string
	Enabled     bool
	Description string
}

// Validate checks that the rule can be registered.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	if r.Condition == nil {
		return fmt.Errorf("%w: condition is required", ErrInvalidRule)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidRule, r.Type)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("%w: invalid notification level", ErrInvalidRule)
	}
	if len(r.Recipients) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidRule)
	}
	return nil
}
