package toast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// Notifier is anything that accepts toasts. *Manager, *Provider and Nop satisfy it.
type Notifier interface {
	Enqueue(message string, severity model.Severity) string
	Dismiss(id string)
}

var (
	_ Notifier = (*Manager)(nil)
	_ Notifier = (*Provider)(nil)
	_ Notifier = Nop{}
)

// Nop swallows toasts. Useful where a Notifier is required but nothing renders.
type Nop struct{}

// Enqueue discards the toast and returns an empty id.
func (Nop) Enqueue(string, model.Severity) string { return "" }

// Dismiss does nothing.
func (Nop) Dismiss(string) {}

// Provider is the acquisition point for the toast queue.
// It exists before any Manager is mounted so producers can hold it early;
// calls made while nothing is mounted are dropped with a warning.
// A nil *Provider behaves like an unmounted one.
type Provider struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	manager *Manager
}

// NewProvider creates an unmounted Provider.
func NewProvider(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{logger: logger}
}

// Mount attaches m. The provider owns m until Unmount.
// Mounting over an existing manager closes the old one.
func (p *Provider) Mount(m *Manager) {
	p.mu.Lock()
	old := p.manager
	p.manager = m
	p.mu.Unlock()

	if old != nil && old != m {
		old.Close()
	}
	p.logger.Debug("notification provider mounted")
}

// Unmount detaches and closes the current manager, if any.
func (p *Provider) Unmount() {
	p.mu.Lock()
	old := p.manager
	p.manager = nil
	p.mu.Unlock()

	if old != nil {
		old.Close()
		p.logger.Debug("notification provider unmounted")
	}
}

// Manager returns the mounted manager, or nil.
func (p *Provider) Manager() *Manager {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.manager
}

// Mounted reports whether a manager is attached.
func (p *Provider) Mounted() bool {
	return p.Manager() != nil
}

// Enqueue forwards to the mounted manager. Without one the message is lost.
func (p *Provider) Enqueue(message string, severity model.Severity) string {
	return p.EnqueueFor(message, severity, 0)
}

// EnqueueFor forwards to the mounted manager with a lifetime override.
func (p *Provider) EnqueueFor(message string, severity model.Severity, duration time.Duration) string {
	m := p.Manager()
	if m == nil {
		p.log().Warn("no notification provider mounted, message dropped",
			"message", message,
			"severity", string(severity),
		)
		return ""
	}
	return m.EnqueueFor(message, severity, duration)
}

// Dismiss forwards to the mounted manager.
func (p *Provider) Dismiss(id string) {
	m := p.Manager()
	if m == nil {
		p.log().Warn("no notification provider mounted, dismiss ignored", "id", id)
		return
	}
	m.Dismiss(id)
}

func (p *Provider) log() *slog.Logger {
	if p == nil || p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

type providerKey struct{}

// WithProvider returns a copy of ctx carrying p.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the Provider carried by ctx, or nil.
// The result is always safe to call methods on.
func FromContext(ctx context.Context) *Provider {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(providerKey{}).(*Provider)
	return p
}

// Notify enqueues a toast through the provider in ctx.
func Notify(ctx context.Context, message string, severity model.Severity) string {
	return FromContext(ctx).Enqueue(message, severity)
}

// Success enqueues a success toast through the provider in ctx.
func Success(ctx context.Context, message string) string {
	return Notify(ctx, message, model.SeveritySuccess)
}

// Error enqueues an error toast through the provider in ctx.
func Error(ctx context.Context, message string) string {
	return Notify(ctx, message, model.SeverityError)
}

// Info enqueues an info toast through the provider in ctx.
func Info(ctx context.Context, message string) string {
	return Notify(ctx, message, model.SeverityInfo)
}

// shownError marks an error whose message already reached the user as a toast.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

// Fail enqueues message as an error toast and returns err. When the toast
// was accepted the returned error is marked so Shown reports true; the
// error chain is otherwise unchanged for errors.Is and errors.As.
func Fail(ctx context.Context, err error, message string) error {
	if err == nil {
		return nil
	}
	if Error(ctx, message) == "" {
		return err
	}
	return &shownError{err: err}
}

// Shown reports whether err was already reported to the user by Fail.
func Shown(err error) bool {
	var s *shownError
	return errors.As(err, &s)
}
