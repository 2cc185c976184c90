package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/metrics"
	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/graph"
	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrLimitReached = errors.New("session limit reached and every session is busy")
)

const defaultLimit = 64

// Session owns one engine. All calls into the engine go through With, which
// holds the session mutex.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	engine   *graph.Engine
	lastUsed atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// LastUsed returns when the session was last created or used.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// Registry holds the live sessions of a server, bounded by a limit. When
// full, creating a session evicts the least recently used idle one.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	limit    int
	maxEdges int
	now      func() time.Time
}

// NewRegistryParams configures a Registry. Zero values use a limit of 64
// and the engine's default edge cap.
type NewRegistryParams struct {
	Limit    int
	MaxEdges int
}

func NewRegistry(params NewRegistryParams) *Registry {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Registry{
		sessions: make(map[string]*Session),
		limit:    limit,
		maxEdges: params.MaxEdges,
		now:      time.Now,
	}
}

// Create starts a session with an empty engine.
func (r *Registry) Create() (*Session, error) {
	id, err := util.NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.limit {
		if err := r.evictLocked(); err != nil {
			return nil, err
		}
	}

	now := r.now()
	s := &Session{
		ID:      id,
		Created: now,
		engine:  graph.NewEngine(graph.NewEngineParams{MaxEdges: r.maxEdges}),
	}
	s.touch(now)
	r.sessions[id] = s
	metrics.Sessions.Set(float64(len(r.sessions)))

	logger.Debug("[Session] Created session", "session_id", id, "sessions", len(r.sessions))
	return s, nil
}

// evictLocked drops the least recently used session that is not inside
// With. r.mu must be held.
func (r *Registry) evictLocked() error {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.lastUsed.Load() < oldest.lastUsed.Load() {
			if !s.mu.TryLock() {
				continue
			}
			s.mu.Unlock()
			oldest = s
		}
	}
	if oldest == nil {
		return ErrLimitReached
	}
	delete(r.sessions, oldest.ID)
	metrics.SessionEvictions.Inc()
	logger.Info("[Session] Evicted idle session", "session_id", oldest.ID, "last_used", oldest.LastUsed())
	return nil
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, error) {
	if !util.IsSessionID(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete drops the session with id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.sessions, id)
	metrics.Sessions.Set(float64(len(r.sessions)))
	logger.Debug("[Session] Deleted session", "session_id", id)
	return nil
}

// With runs fn with exclusive access to the session's engine.
func (r *Registry) With(id string, fn func(e *graph.Engine) error) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(r.now())
	return fn(s.engine)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
