package rules

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Engine holds registered alert rules and evaluates events against them.
// Evaluation order is registration order, which keeps the set of triggered
// notifications deterministic for a fixed registration sequence.
type Engine struct {
	rules  []Rule
	index  map[string]int
	logger *slog.Logger
	mu     sync.RWMutex
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used to report condition panics.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// NewEngine creates an empty rule engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		index:  make(map[string]int),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds the rule to the engine. Re-registering an existing name
// replaces the rule in place, keeping its original evaluation position.
func (e *Engine) Register(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r.Recipients = append([]string(nil), r.Recipients...)
	if pos, ok := e.index[r.Name]; ok {
		e.rules[pos] = r
		return nil
	}

	e.index[r.Name] = len(e.rules)
	e.rules = append(e.rules, r)
	return nil
}

// Get returns the rule registered under the given name.
func (e *Engine) Get(name string) (Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pos, ok := e.index[name]
	if !ok {
		return Rule{}, false
	}
	return e.rules[pos], true
}

// Rules returns all registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// SetEnabled toggles a rule without removing it from the engine.
func (e *Engine) SetEnabled(name string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.index[name]
	if !ok {
		return ErrRuleNotFound
	}
	e.rules[pos].Enabled = enabled
	return nil
}

// Evaluate returns the enabled rules whose conditions match the event, in
// registration order. A condition that panics is logged and treated as a
// non-match; one misbehaving rule never blocks evaluation of the others.
func (e *Engine) Evaluate(ctx context.Context, event map[string]any) []Rule {
	e.mu.RLock()
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	e.mu.RUnlock()

	var matched []Rule
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		if e.matches(ctx, r, event) {
			matched = append(matched, r)
		}
	}
	return matched
}

// matches runs the rule condition with panic isolation.
func (e *Engine) matches(ctx context.Context, r Rule, event map[string]any) (result bool) {
	defer func() {
		if rec := recover(); rec != nil {
			result = false
			e.logger.LogAttrs(ctx, slog.LevelError, "Alert rule condition panicked",
				logger.RuleName(r.Name),
				slog.Any("panic", rec),
			)
		}
	}()

	return r.Condition(event)
}
