package toast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// DefaultDuration is how long a toast stays visible when no override is given.
const DefaultDuration = 3 * time.Second

// RemoveReason records why a toast left the active set.
type RemoveReason int

const (
	// RemoveReasonExpired means the toast's timer fired.
	RemoveReasonExpired RemoveReason = iota
	// RemoveReasonDismissed means the user dismissed the toast.
	RemoveReasonDismissed
	// RemoveReasonClosed means the toast was cleared programmatically.
	RemoveReasonClosed
)

// String returns the string representation of RemoveReason.
func (r RemoveReason) String() string {
	switch r {
	case RemoveReasonExpired:
		return "expired"
	case RemoveReasonDismissed:
		return "dismissed"
	case RemoveReasonClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Timer is the part of *time.Timer the manager needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

// RemoveCallback is called after a toast has been removed.
// It runs outside the manager lock, so it may enqueue or dismiss.
type RemoveCallback func(id string, reason RemoveReason)

// entry is a live toast plus the timer that will expire it.
type entry struct {
	notification model.Notification
	timer        Timer
}

// Manager owns the active set of toasts.
// Toasts are kept in insertion order (oldest first) and each one is removed
// by whichever comes first: its expiry timer or an explicit Dismiss.
type Manager struct {
	mu     sync.Mutex
	logger *slog.Logger

	defaultDuration time.Duration
	afterFunc       AfterFunc
	newNotification func(message string, severity model.Severity, duration time.Duration) (*model.Notification, error)

	entries []*entry          // insertion order
	index   map[string]*entry // id -> entry

	subscribers []chan []model.Notification
	onRemove    RemoveCallback
	closed      bool
}

// NewManager creates a new Manager.
// A non-positive defaultDuration falls back to DefaultDuration.
func NewManager(defaultDuration time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultDuration <= 0 {
		defaultDuration = DefaultDuration
	}

	return &Manager{
		logger:          logger,
		defaultDuration: defaultDuration,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		newNotification: model.NewNotification,
		index:           make(map[string]*entry),
	}
}

// SetAfterFunc replaces the timer scheduler. Used by tests to control time.
func (m *Manager) SetAfterFunc(fn AfterFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterFunc = fn
}

// SetRemoveCallback sets the callback for removal events.
func (m *Manager) SetRemoveCallback(cb RemoveCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemove = cb
}

// SetDefaultDuration changes the lifetime used for toasts enqueued from now on.
// Toasts already showing keep their original deadline.
func (m *Manager) SetDefaultDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultDuration = d
}

// DefaultDuration returns the lifetime applied when no override is given.
func (m *Manager) DefaultDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultDuration
}

// Enqueue adds a toast with the default duration and returns its id.
// It never blocks on the renderer and never panics; an empty id means the
// toast was dropped (the reason is logged).
func (m *Manager) Enqueue(message string, severity model.Severity) string {
	return m.EnqueueFor(message, severity, 0)
}

// EnqueueFor is Enqueue with a per-toast lifetime. A non-positive duration
// uses the manager default.
func (m *Manager) EnqueueFor(message string, severity model.Severity, duration time.Duration) (id string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("dropped notification after internal fault",
				"panic", r,
				"message", message,
			)
			id = ""
		}
	}()

	if severity != "" && !severity.Valid() {
		m.logger.Debug("unknown severity, using default",
			"severity", string(severity),
			"default", model.DefaultSeverity,
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		m.logger.Warn("notification manager closed, message dropped", "message", message)
		return ""
	}

	if duration <= 0 {
		duration = m.defaultDuration
	}

	n, err := m.newNotification(message, severity, duration)
	if err != nil {
		m.logger.Error("failed to create notification", "error", err)
		return ""
	}
	if _, exists := m.index[n.ID]; exists {
		m.logger.Error("notification id collision, message dropped", "id", n.ID)
		return ""
	}

	e := &entry{notification: *n}

	// The timer is armed before insertion. Its callback checks identity under
	// the lock, so an entry that never made it into the set is ignored.
	e.timer = m.afterFunc(duration, func() { m.expire(e) })

	m.entries = append(m.entries, e)
	m.index[n.ID] = e

	m.logger.Debug("enqueued notification",
		"id", n.ID,
		"severity", n.Severity,
		"duration", duration,
		"active", len(m.entries),
	)

	m.publishLocked()
	return n.ID
}

// Dismiss removes the toast with the given id and cancels its timer.
// Unknown ids are ignored.
func (m *Manager) Dismiss(id string) {
	m.mu.Lock()
	e, exists := m.index[id]
	if !exists {
		m.mu.Unlock()
		m.logger.Debug("dismiss ignored, notification not active", "id", id)
		return
	}
	removed := m.removeLocked(e, RemoveReasonDismissed)
	cb := m.onRemove
	m.mu.Unlock()

	if removed && cb != nil {
		cb(id, RemoveReasonDismissed)
	}
}

// Clear removes every active toast.
func (m *Manager) Clear() {
	m.mu.Lock()
	entries := make([]*entry, len(m.entries))
	copy(entries, m.entries)

	removed := make([]string, 0, len(entries))
	for _, e := range entries {
		if m.removeLocked(e, RemoveReasonClosed) {
			removed = append(removed, e.notification.ID)
		}
	}
	cb := m.onRemove
	m.mu.Unlock()

	if cb != nil {
		for _, id := range removed {
			cb(id, RemoveReasonClosed)
		}
	}
}

// expire is the timer callback for e.
func (m *Manager) expire(e *entry) {
	m.mu.Lock()
	removed := m.removeLocked(e, RemoveReasonExpired)
	cb := m.onRemove
	m.mu.Unlock()

	if removed && cb != nil {
		cb(e.notification.ID, RemoveReasonExpired)
	}
}

// removeLocked removes e if it is still the live entry for its id.
// Caller must hold the lock.
func (m *Manager) removeLocked(e *entry, reason RemoveReason) bool {
	id := e.notification.ID
	if current, exists := m.index[id]; !exists || current != e {
		return false
	}

	delete(m.index, id)
	for i, candidate := range m.entries {
		if candidate == e {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}

	if reason != RemoveReasonExpired && e.timer != nil {
		e.timer.Stop()
	}

	m.logger.Debug("removed notification",
		"id", id,
		"reason", reason,
		"active", len(m.entries),
	)

	m.publishLocked()
	return true
}

// Active returns the live toasts, oldest first.
func (m *Manager) Active() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Get returns the live toast with the given id.
func (m *Manager) Get(id string) (model.Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.index[id]
	if !exists {
		return model.Notification{}, false
	}
	return e.notification, true
}

// Len returns the number of live toasts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) snapshotLocked() []model.Notification {
	out := make([]model.Notification, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.notification
	}
	return out
}

// Subscribe returns a channel that receives the ordered active set on every change.
// The current set is delivered immediately. A slow reader only misses
// intermediate snapshots; the most recent one is always pending.
func (m *Manager) Subscribe() <-chan []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan []model.Notification, 1)
	if m.closed {
		close(ch)
		return ch
	}
	ch <- m.snapshotLocked()
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(ch <-chan []model.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// publishLocked sends the current snapshot to every subscriber without blocking,
// replacing any snapshot the subscriber has not read yet.
// Caller must hold the lock.
func (m *Manager) publishLocked() {
	if len(m.subscribers) == 0 {
		return
	}
	snapshot := m.snapshotLocked()
	for _, ch := range m.subscribers {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		// Drop the stale snapshot, then deliver the new one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Close stops all timers, drops every toast and closes subscriber channels.
// Enqueue after Close is a logged no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	for _, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	m.entries = nil
	m.index = make(map[string]*entry)

	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil

	m.logger.Debug("notification manager closed")
}
