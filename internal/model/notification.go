// Package model defines the core data structures for bizdesk.
package model

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// Severity is the closed set of toast categories used for styling.
type Severity string

// Severity levels.
const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// DefaultSeverity is used when a producer passes nothing or an unknown value.
const DefaultSeverity = SeverityInfo

// Severities returns all valid severity values in display order.
func Severities() []Severity {
	return []Severity{SeveritySuccess, SeverityError, SeverityInfo}
}

// ParseSeverity converts free-form input into a Severity.
// Unknown or empty values become SeverityInfo rather than failing.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeveritySuccess:
		return SeveritySuccess
	case SeverityError:
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityInfo:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	return string(s)
}

// Notification is a transient message shown to the user until it expires or is dismissed.
// Values are immutable once created; the queue only ever adds or removes them.
type Notification struct {
	ID        string        `json:"id" yaml:"id"`
	Message   string        `json:"message" yaml:"message"`
	Severity  Severity      `json:"severity" yaml:"severity"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// NewNotification creates a Notification with a fresh ULID.
// The severity is coerced through ParseSeverity so callers may pass anything.
func NewNotification(message string, severity Severity, duration time.Duration) (*Notification, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Notification{
		ID:        id.String(),
		Message:   message,
		Severity:  ParseSeverity(string(severity)),
		CreatedAt: now,
		Duration:  duration,
	}, nil
}

// ExpiresAt returns when the notification is due to expire.
// A zero Duration means it never expires on its own.
func (n *Notification) ExpiresAt() time.Time {
	if n.Duration <= 0 {
		return time.Time{}
	}
	return n.CreatedAt.Add(n.Duration)
}

// Remaining returns the time left before expiry relative to now, never negative.
func (n *Notification) Remaining(now time.Time) time.Duration {
	exp := n.ExpiresAt()
	if exp.IsZero() {
		return 0
	}
	if d := exp.Sub(now); d > 0 {
		return d
	}
	return 0
}

// MessageTruncated returns the message truncated to maxLen characters.
// If the message is longer, it is truncated and "..." is appended.
func (n *Notification) MessageTruncated(maxLen int) string {
	// Collapse whitespace and newlines to single spaces
	return Truncate(strings.Join(strings.Fields(n.Message), " "), maxLen)
}

// Truncate shortens s to at most maxLen runes, ending in "..." when cut.
// Multi-byte characters are never split. maxLen <= 0 yields "".
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
