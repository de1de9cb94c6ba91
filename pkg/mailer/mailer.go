package mailer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Sender delivers a rendered notification to its recipients.
//
// Implementations report delivery problems as errors wrapping
// ErrFailedToSendEmail and must be safe to re-invoke with the same message:
// the delivery worker retries failed sends with the identical payload.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email covering all recipients of a
// notification. Delivery is all-or-nothing; per-recipient outcomes are not
// reported separately.
type Message struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	BodyHTML   string   `json:"body_html"`
	Tag        string   `json:"tag,omitempty"` // Optional
}

// emailRegex accepts pragmatic RFC 5322 addresses without attempting full
// grammar coverage.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidAddress reports whether the address looks deliverable.
func ValidAddress(addr string) bool {
	return emailRegex.MatchString(addr)
}

// ValidateAddresses checks every address and reports the first invalid one.
func ValidateAddresses(addrs []string) error {
	if len(addrs) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidMessage)
	}
	for _, addr := range addrs {
		if !ValidAddress(addr) {
			return fmt.Errorf("%w: invalid recipient address %q", ErrInvalidMessage, addr)
		}
	}
	return nil
}

// Validate checks that the message can be handed to a transport.
func (m Message) Validate() error {
	if err := ValidateAddresses(m.Recipients); err != nil {
		return err
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	return nil
}
