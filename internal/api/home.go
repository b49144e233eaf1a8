package api

import (
	"net/http"

	"github.com/harrylevesque/stillwater/internal/affirmations"
	"github.com/harrylevesque/stillwater/internal/auth"
	"github.com/harrylevesque/stillwater/internal/models"
	"github.com/harrylevesque/stillwater/internal/utils"
)

const profilePath = "/profile"

type homeResponse struct {
	Greeting     string                   `json:"greeting"`
	User         *models.User             `json:"user"`
	Affirmations []models.AffirmationCard `json:"affirmations"`
	Links        linksResponse            `json:"links"`
	Breathing    cadenceResponse          `json:"breathing"`
}

type linksResponse struct {
	// Profile is where tapping the avatar navigates to.
	Profile string `json:"profile"`
}

type cadenceResponse struct {
	TickIntervalMs int64 `json:"tick_interval_ms"`
	TransitionMs   int64 `json:"transition_ms"`
}

func currentUser(r *http.Request) (*models.User, error) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, utils.New(http.StatusUnauthorized, "login required")
	}
	return u, nil
}

// handleLogin is the redirect target for unauthenticated requests. Signing in
// happens elsewhere; this only tells API clients a session is required.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Greeting:     "Hi, " + u.GivenName,
		User:         u,
		Affirmations: affirmations.Cards(),
		Links:        linksResponse{Profile: profilePath},
		Breathing: cadenceResponse{
			TickIntervalMs: s.tick.Milliseconds(),
			TransitionMs:   s.transition.Milliseconds(),
		},
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleAffirmations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"affirmations": affirmations.Cards()})
}
