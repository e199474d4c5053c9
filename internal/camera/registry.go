package camera

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trash2cash/platform/internal/clock"
	"github.com/trash2cash/platform/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrSessionExpired  = errors.New("session_expired")
	ErrTooManySessions = errors.New("too_many_sessions")
)

// Registry tracks live scan sessions in memory. Sessions are short-lived and
// bounded, so a restart losing them is acceptable.
type Registry struct {
	log   *zap.Logger
	clock clock.Clock
	ttl   time.Duration
	max   int

	mu       sync.Mutex
	sessions map[string]*Session
}

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
}

func NewRegistry(p Params) *Registry {
	ttl := p.Cfg.Camera.SessionTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	max := p.Cfg.Camera.MaxSessions
	if max <= 0 {
		max = 32
	}

	return &Registry{
		log:      p.Log.Named("camera.registry"),
		clock:    p.Clock,
		ttl:      ttl,
		max:      max,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Open() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.evictLocked(now)

	if len(r.sessions) >= r.max {
		return nil, ErrTooManySessions
	}

	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	r.sessions[session.ID] = session

	r.log.Debug("scan session opened", zap.String("session_id", session.ID))
	return session, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.expired(r.clock.Now()) {
		delete(r.sessions, id)
		session.close()
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		session.close()
		r.log.Debug("scan session closed", zap.String("session_id", id))
	}
}

func (r *Registry) evictLocked(now time.Time) {
	for id, session := range r.sessions {
		if session.expired(now) {
			delete(r.sessions, id)
			session.close()
		}
	}
}
