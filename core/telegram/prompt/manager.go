package prompt

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"
)

const component = "service.prompt"

// Session is one pending prompt. Its fields are read-only after Open.
type Session struct {
	ID       string
	Key      Key
	Kind     Kind
	IssuedAt time.Time
	Timeout  time.Duration

	mgr  *Manager
	rid  string
	done chan struct{}

	// guarded by mgr.mu
	timer    *time.Timer
	resolved bool
	outcome  Outcome
}

// Manager is the registry of waiting sessions, at most one per Key.
type Manager struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	now      func() time.Time
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[Key]*Session),
		now:      time.Now,
	}
}

// Open registers a waiting session for key and arms its timeout. A session
// already waiting for key is resolved as Superseded before the new one is visible.
func (m *Manager) Open(ctx context.Context, key Key, timeout time.Duration, kind Kind) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Session{
		ID:       uuid.NewString(),
		Key:      key,
		Kind:     kind,
		IssuedAt: m.now(),
		Timeout:  timeout,
		mgr:      m,
		rid:      logger.RIDFrom(ctx),
		done:     make(chan struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	superseded := false
	if prev, ok := m.sessions[key]; ok {
		superseded = m.settleLocked(prev, Outcome{Status: Superseded})
	}
	m.sessions[key] = s
	s.timer = time.AfterFunc(timeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.settleLocked(s, Outcome{Status: TimedOut})
	})
	metrics.PromptsWaiting.Set(float64(len(m.sessions)))

	logger.Info(logger.WithSession(ctx, s.ID), component, "prompt.open",
		slog.String("kind", kind.String()),
		slog.Duration("timeout", timeout),
		slog.Bool("superseded", superseded),
		slog.Int("waiting", len(m.sessions)),
	)
	return s
}

// Await blocks until the session resolves. If ctx ends first the session is
// resolved as Cancelled.
func (s *Session) Await(ctx context.Context) Outcome {
	select {
	case <-s.done:
	case <-ctx.Done():
		s.mgr.mu.Lock()
		s.mgr.settleLocked(s, Outcome{Status: Cancelled})
		s.mgr.mu.Unlock()
		<-s.done
	}
	return s.outcome
}

// Done is closed once the session resolves.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Cancel resolves s as Cancelled. It reports false when s had already resolved.
func (s *Session) Cancel() bool {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	return s.mgr.settleLocked(s, Outcome{Status: Cancelled})
}

// Cancel resolves the waiting session for key as Cancelled. It reports false
// when nothing was waiting.
func (m *Manager) Cancel(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return false
	}
	return m.settleLocked(s, Outcome{Status: Cancelled})
}

// Deliver hands r to the session waiting for key. It reports false when no
// session was waiting, in which case the reply belongs to normal routing.
func (m *Manager) Deliver(key Key, r Reply) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return false
	}
	return m.settleLocked(s, Outcome{Status: Fulfilled, Reply: r})
}

// SessionID returns the id of the session open for key, or "".
func (m *Manager) SessionID(key Key) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s.ID
	}
	return ""
}

// Waiting reports whether a session is open for key.
func (m *Manager) Waiting(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[key]
	return ok
}

// Len returns the number of waiting sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// settleLocked records the first outcome for s and wakes its waiter. Later
// calls are no-ops and return false.
func (m *Manager) settleLocked(s *Session, out Outcome) bool {
	if s.resolved {
		return false
	}
	s.resolved = true
	s.outcome = out
	if s.timer != nil {
		s.timer.Stop()
	}
	if cur, ok := m.sessions[s.Key]; ok && cur == s {
		delete(m.sessions, s.Key)
	}
	close(s.done)

	metrics.PromptOutcomes.WithLabelValues(out.Status.String()).Inc()
	metrics.PromptsWaiting.Set(float64(len(m.sessions)))

	ctx := logger.WithUpdateMeta(logger.WithRID(logger.Background(), s.rid), 0, s.Key.UserID, s.Key.ChatID)
	logger.Info(logger.WithSession(ctx, s.ID), component, "prompt.settle",
		slog.String("outcome", out.Status.String()),
		slog.Duration("duration", logger.RoundMS(m.now().Sub(s.IssuedAt))),
	)
	return true
}
