package search

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/models"
)

// Session is one client's coordinator plus the location feed that client reports into.
type Session struct {
	ID          uuid.UUID
	Coordinator *Coordinator
	Platform    *location.DevicePlatform
	CreatedAt   time.Time

	lastSeen atomic.Int64
}

// Touch marks the session as used now
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Factory builds the coordinator for a new session around the session's location feed.
type Factory func(platform location.Platform) *Coordinator

// Registry holds live sessions. Sessions unused for longer than the idle TTL are
// closed by a janitor goroutine.
type Registry struct {
	factory     Factory
	idleTTL     time.Duration
	maxSessions int
	logger      logger.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRegistry starts the idle janitor when cfg.SessionIdleTTL is positive.
func NewRegistry(factory Factory, cfg *Config, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNullLogger()
	}
	r := &Registry{
		factory:     factory,
		idleTTL:     cfg.SessionIdleTTL,
		maxSessions: cfg.MaxSessions,
		logger:      log,
		sessions:    make(map[uuid.UUID]*Session),
		quit:        make(chan struct{}),
	}

	if r.idleTTL > 0 {
		interval := r.idleTTL / 4
		if interval < time.Second {
			interval = time.Second
		}
		r.wg.Add(1)
		go r.janitor(interval)
	}
	return r
}

// Create registers a new session whose location comes from platform.
func (r *Registry) Create(platform *location.DevicePlatform) (*Session, error) {
	r.mu.Lock()
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		r.mu.Unlock()
		return nil, models.ErrSessionLimit
	}

	s := &Session{
		ID:          uuid.New(),
		Coordinator: r.factory(platform),
		Platform:    platform,
		CreatedAt:   time.Now(),
	}
	s.Touch()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("session created", map[string]interface{}{"session_id": s.ID.String()})
	return s, nil
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Delete closes and forgets a session.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return models.ErrSessionNotFound
	}

	s.Coordinator.Close()
	r.logger.Info("session closed", map[string]interface{}{"session_id": id.String()})
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the janitor and closes every session.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
		r.wg.Wait()

		r.mu.Lock()
		sessions := r.sessions
		r.sessions = make(map[uuid.UUID]*Session)
		r.mu.Unlock()

		for _, s := range sessions {
			s.Coordinator.Close()
		}
	})
}

func (r *Registry) janitor(interval time.Duration) {
	defer r.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expire(time.Now())
		case <-r.quit:
			return
		}
	}
}

func (r *Registry) expire(now time.Time) int {
	var idle []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > r.idleTTL {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Coordinator.Close()
		r.logger.Info("session expired", map[string]interface{}{"session_id": s.ID.String()})
	}
	return len(idle)
}
