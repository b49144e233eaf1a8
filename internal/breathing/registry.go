package breathing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harrylevesque/stillwater/internal/models"
)

// ErrSessionNotFound is returned for unknown session ids and for sessions
// owned by another user.
var ErrSessionNotFound = errors.New("breathing session not found")

const DefaultIdleTimeout = 30 * time.Minute

// Session is one mounted breathing page.
type Session struct {
	ID         string
	Subject    string
	Controller *Controller
	MountedAt  time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry tracks the mounted sessions of every user. Unmounting a session
// closes its controller.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	clock       Clock
	idleTimeout time.Duration
	ctlOpts     []Option
	logger      *zap.Logger
}

// RegistryConfig holds the tunables for a Registry. Zero values fall back to
// defaults.
type RegistryConfig struct {
	TickInterval time.Duration
	IdleTimeout  time.Duration
	Clock        Clock
	Logger       *zap.Logger
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = models.TickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		clock:       cfg.Clock,
		idleTimeout: cfg.IdleTimeout,
		logger:      cfg.Logger,
		ctlOpts: []Option{
			WithClock(cfg.Clock),
			WithInterval(cfg.TickInterval),
		},
	}
}

// Mount creates an idle controller for user.
func (r *Registry) Mount(user *models.User) *Session {
	id := uuid.New().String()
	now := r.clock.Now()
	s := &Session{
		ID:        id,
		Subject:   user.Subject,
		MountedAt: now,
		lastSeen:  now,
		Controller: NewController(append(r.ctlOpts,
			WithLogger(r.logger.With(zap.String("session", id))))...),
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Info("breathing session mounted", zap.String("session", id), zap.String("subject", user.Subject))
	return s
}

// Get returns the session id owned by subject.
func (r *Registry) Get(id, subject string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.Subject != subject {
		return nil, ErrSessionNotFound
	}
	s.touch(r.clock.Now())
	return s, nil
}

// Unmount closes and forgets the session id owned by subject.
func (r *Registry) Unmount(id, subject string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || s.Subject != subject {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	s.Controller.Close()
	r.logger.Info("breathing session unmounted",
		zap.String("session", id),
		zap.Duration("mounted_for", r.clock.Now().Sub(s.MountedAt)))
	return nil
}

// Len reports the number of mounted sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap unmounts sessions not seen for longer than the idle timeout and
// returns how many were removed.
func (r *Registry) Reap(now time.Time) int {
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.idleTimeout {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Controller.Close()
		r.logger.Info("breathing session reaped",
			zap.String("session", s.ID),
			zap.String("subject", s.Subject),
			zap.Duration("mounted_for", now.Sub(s.MountedAt)))
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done, then unmounts everything.
func (r *Registry) Run(ctx context.Context) error {
	every := r.idleTimeout / 2
	if every <= 0 {
		every = time.Minute
	}
	t := r.clock.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case now := <-t.C():
			r.Reap(now)
		}
	}
}

// Close unmounts every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Controller.Close()
	}
	if len(all) > 0 {
		r.logger.Info("breathing sessions closed", zap.Int("count", len(all)))
	}
}

// Touch marks s as seen now so the reaper leaves it alone.
func (r *Registry) Touch(s *Session) {
	s.touch(r.clock.Now())
}
