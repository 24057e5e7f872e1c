package session

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wricardo/tictactoe/game/service"
)

var _ service.SessionStore = (*Manager)(nil)

// Manager caches the live session of each match.
//
// The map lock only guards membership. Board access goes through the
// per-session lock, which is never waited on while the map lock is held.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*list.Element
	lru      *list.List // front is most recently used
	capacity int

	loads  singleflight.Group
	logger *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithCapacity bounds the number of cached sessions; 0 means unbounded
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithLogger sets the logger used for eviction events
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*list.Element),
		lru:      list.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached session for a match
func (m *Manager) Get(matchID string) (*service.Session, bool) {
	m.mu.Lock()
	el, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	sess := el.Value.(*service.Session)
	if sess.Evicted() {
		m.mu.Unlock()
		return nil, false
	}
	m.lru.MoveToFront(el)
	m.mu.Unlock()

	sess.Touch()
	return sess, true
}

// Put registers a session, replacing any previous one for the same match
func (m *Manager) Put(sess *service.Session) *service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.sessions[sess.ID]; ok {
		old := el.Value.(*service.Session)
		if old != sess {
			old.MarkEvicted()
		}
		el.Value = sess
		m.lru.MoveToFront(el)
	} else {
		m.sessions[sess.ID] = m.lru.PushFront(sess)
	}
	m.shrink()

	return sess
}

// Load returns the cached session or rebuilds it with loader.
// Concurrent misses for one match share a single loader call and
// all receive the same session. The shared load ignores the cancellation
// of whichever caller started it; each caller stops waiting on its own ctx.
func (m *Manager) Load(ctx context.Context, matchID string, loader service.Loader) (*service.Session, error) {
	if sess, ok := m.Get(matchID); ok {
		return sess, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := m.loads.DoChan(matchID, func() (interface{}, error) {
		if sess, ok := m.Get(matchID); ok {
			return sess, nil
		}
		sess, err := loader(loadCtx, matchID)
		if err != nil {
			return nil, err
		}
		return m.putIfAbsent(sess), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*service.Session), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Update runs fn with exclusive access to the match's session.
// A session evicted while waiting for the lock is reloaded before fn runs.
// If fn marks the session evicted it is dropped from the cache.
func (m *Manager) Update(ctx context.Context, matchID string, loader service.Loader, fn func(*service.Session) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sess, err := m.Load(ctx, matchID, loader)
		if err != nil {
			return err
		}

		sess.Lock()
		if sess.Evicted() {
			sess.Unlock()
			m.remove(sess)
			continue
		}

		err = fn(sess)
		if sess.Evicted() {
			m.remove(sess)
		}
		sess.Unlock()
		return err
	}
}

// Evict drops a match from the cache, waiting for any in-flight move
func (m *Manager) Evict(matchID string) bool {
	m.mu.Lock()
	el, ok := m.sessions[matchID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	sess := el.Value.(*service.Session)
	m.mu.Unlock()

	sess.Lock()
	sess.MarkEvicted()
	m.remove(sess)
	sess.Unlock()

	m.logger.Debug("session evicted", zap.String("match_id", matchID))
	return true
}

// List returns all cached sessions, most recently used first
func (m *Manager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*service.Session, 0, m.lru.Len())
	for el := m.lru.Front(); el != nil; el = el.Next() {
		result = append(result, el.Value.(*service.Session))
	}
	return result
}

// Count returns the number of cached sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CleanupExpiredSessions evicts sessions that haven't been accessed in the given duration.
// Sessions busy with a move are skipped until the next run.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		sess := el.Value.(*service.Session)
		if sess.LastAccessedAt().Before(cutoff) && sess.TryLock() {
			sess.MarkEvicted()
			m.lru.Remove(el)
			delete(m.sessions, sess.ID)
			sess.Unlock()
			removed++
		}
		el = prev
	}

	if removed > 0 {
		m.logger.Info("idle sessions evicted", zap.Int("count", removed), zap.Duration("max_age", maxAge))
	}
	return removed
}

// putIfAbsent keeps the first session registered for a match
func (m *Manager) putIfAbsent(sess *service.Session) *service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.sessions[sess.ID]; ok {
		existing := el.Value.(*service.Session)
		if !existing.Evicted() {
			m.lru.MoveToFront(el)
			return existing
		}
		el.Value = sess
		m.lru.MoveToFront(el)
		return sess
	}

	m.sessions[sess.ID] = m.lru.PushFront(sess)
	m.shrink()
	return sess
}

// remove drops sess if it is still the registered session for its match
func (m *Manager) remove(sess *service.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.sessions[sess.ID]; ok && el.Value == sess {
		m.lru.Remove(el)
		delete(m.sessions, sess.ID)
	}
}

// shrink evicts least recently used idle sessions over capacity; m.mu must be held
func (m *Manager) shrink() {
	if m.capacity == 0 {
		return
	}

	for el := m.lru.Back(); el != nil && m.lru.Len() > m.capacity; {
		prev := el.Prev()
		sess := el.Value.(*service.Session)
		if el != m.lru.Front() && sess.TryLock() {
			sess.MarkEvicted()
			m.lru.Remove(el)
			delete(m.sessions, sess.ID)
			sess.Unlock()
			m.logger.Debug("session evicted over capacity", zap.String("match_id", sess.ID))
		}
		el = prev
	}
}
