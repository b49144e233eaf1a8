package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/stillwater/internal/breathing"
	"github.com/harrylevesque/stillwater/internal/models"
	"github.com/harrylevesque/stillwater/internal/utils"
)

type sessionResponse struct {
	ID    string                `json:"id"`
	State models.BreathingState `json:"state"`
	View  models.BreathingView  `json:"view"`
}

func (s *Server) toSessionResponse(id string, st models.BreathingState) sessionResponse {
	v := st.View()
	v.TransitionMs = s.transition.Milliseconds()
	return sessionResponse{ID: id, State: st, View: v}
}

// session resolves the {id} route variable to a session of the current user.
func (s *Server) session(r *http.Request) (*breathing.Session, error) {
	u, err := currentUser(r)
	if err != nil {
		return nil, err
	}
	sess, err := s.registry.Get(mux.Vars(r)["id"], u.Subject)
	if errors.Is(err, breathing.ErrSessionNotFound) {
		return nil, utils.Wrap(http.StatusNotFound, "breathing session not found", err)
	}
	return sess, err
}

func (s *Server) handleMount(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := s.registry.Mount(u)
	writeJSON(w, http.StatusCreated, s.toSessionResponse(sess.ID, sess.Controller.State()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toSessionResponse(sess.ID, sess.Controller.State()))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Controller.Start()
	writeJSON(w, http.StatusOK, s.toSessionResponse(sess.ID, sess.Controller.State()))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Controller.Stop()
	writeJSON(w, http.StatusOK, s.toSessionResponse(sess.ID, sess.Controller.State()))
}

func (s *Server) handleUnmount(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.registry.Unmount(mux.Vars(r)["id"], u.Subject); err != nil {
		if errors.Is(err, breathing.ErrSessionNotFound) {
			err = utils.Wrap(http.StatusNotFound, "breathing session not found", err)
		}
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
