package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/harrylevesque/stillwater/internal/auth"
	"github.com/harrylevesque/stillwater/internal/breathing"
	"github.com/harrylevesque/stillwater/internal/models"
)

// Options wires the router's collaborators.
type Options struct {
	Auth     *auth.Middleware
	Registry *breathing.Registry
	Logger   *zap.Logger

	TickInterval       time.Duration
	TransitionDuration time.Duration
	// AllowedOrigins are accepted for websocket upgrades in addition to the
	// request's own origin.
	AllowedOrigins []string
	// KeepAlive is the websocket ping interval. It must be shorter than the
	// registry idle timeout. Zero means DefaultKeepAlive.
	KeepAlive time.Duration
}

// Server holds the handler state.
type Server struct {
	registry   *breathing.Registry
	logger     *zap.Logger
	tick       time.Duration
	transition time.Duration
	loginPath  string
	keepAlive  time.Duration
	upgrader   websocket.Upgrader
}

func NewRouter(opts Options) *mux.Router {
	s := &Server{
		registry:   opts.Registry,
		logger:     opts.Logger,
		tick:       opts.TickInterval,
		transition: opts.TransitionDuration,
		loginPath:  opts.Auth.LoginPath,
		keepAlive:  opts.KeepAlive,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.tick <= 0 {
		s.tick = models.TickInterval
	}
	if s.transition <= 0 {
		s.transition = 2 * s.tick
	}
	if s.keepAlive <= 0 {
		s.keepAlive = DefaultKeepAlive
	}
	if s.loginPath == "" {
		s.loginPath = "/login"
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}

	r := mux.NewRouter()
	r.Use(accessLog(s.logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			s.logger.Debug("health write failed", zap.Error(err))
		}
	}).Methods(http.MethodGet)
	r.HandleFunc(s.loginPath, s.handleLogin).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(opts.Auth.Wrap)
	authed.HandleFunc("/home", s.handleHome).Methods(http.MethodGet)
	authed.HandleFunc("/profile", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/affirmations", s.handleAffirmations).Methods(http.MethodGet)

	b := authed.PathPrefix("/breathing/sessions").Subrouter()
	b.HandleFunc("", s.handleMount).Methods(http.MethodPost)
	b.HandleFunc("/{id}", s.handleGetSession).Methods(http.MethodGet)
	b.HandleFunc("/{id}", s.handleUnmount).Methods(http.MethodDelete)
	b.HandleFunc("/{id}/start", s.handleStart).Methods(http.MethodPost)
	b.HandleFunc("/{id}/stop", s.handleStop).Methods(http.MethodPost)
	b.HandleFunc("/{id}/ws", s.handleStream).Methods(http.MethodGet)

	return r
}
