// Package rules provides the alert rule engine that turns application events
// into notifications.
//
// A Rule couples a boolean Condition over an event payload with the severity
// and recipients of the notification it triggers. The Engine evaluates events
// against all enabled rules in registration order and returns the matches;
// turning matches into notifications is the caller's job.
//
// Conditions are plain functions, so rules hold executable code and are not
// persisted. Applications re-register their rules at startup. A condition
// that panics is logged and treated as a non-match, so a single broken rule
// cannot take down event handling.
//
// # Usage
//
//	engine := rules.NewEngine(rules.WithLogger(log))
//
//	err := engine.Register(rules.Rule{
//	    Name:       "high_memory_usage",
//	    Type:       rules.TypeThreshold,
//	    Condition:  rules.All(rules.FieldEquals("metric", "memory"), rules.FieldAbove("value", 85)),
//	    Level:      notification.LevelWarning,
//	    Recipients: []string{"devops@example.com"},
//	    Enabled:    true,
//	})
//
//	matched := engine.Evaluate(ctx, map[string]any{"metric": "memory", "value": 92})
//
// The condition constructors (EventType, FieldEquals, FieldAbove, FieldBelow,
// FieldMatches, All, Any) cover the common rule shapes; hand-written closures
// remain fully supported for anything beyond them.
package rules
