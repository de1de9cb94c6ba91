package notifykit

import (
	"errors"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/rules"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// Re-exported sentinels so facade callers rarely need the subpackages.
var (
	ErrNotFound         = notification.ErrNotFound
	ErrTemplateNotFound = template.ErrTemplateNotFound
	ErrRuleNotFound     = rules.ErrRuleNotFound
)

var (
	ErrFailedToLoadConfig = errors.New("failed to load config")
	ErrUnknownTransport   = errors.New("unknown mail transport")
)
