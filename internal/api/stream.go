package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second
	// DefaultKeepAlive is how often an open stream pings the client and marks
	// its session as seen.
	DefaultKeepAlive = 30 * time.Second
)

// handleStream pushes the session state over a websocket: the current state
// first, then every change, until the session is unmounted or the client
// goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snapshot, updates, cancel := sess.Controller.SubscribeState()
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	log := s.logger.With(zap.String("session", sess.ID))
	log.Debug("stream opened")

	// The read loop only exists to notice the client closing the socket.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	defer func() {
		conn.Close()
		<-gone
		log.Debug("stream closed")
	}()

	send := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			log.Debug("stream write failed", zap.Error(err))
			return false
		}
		return true
	}

	if !send(s.toSessionResponse(sess.ID, snapshot)) {
		return
	}
	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-keepAlive.C:
			// An open page counts as mounted even while breathing is stopped.
			s.registry.Touch(sess)
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug("stream ping failed", zap.Error(err))
				return
			}
		case st, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session unmounted"))
				return
			}
			s.registry.Touch(sess)
			if !send(s.toSessionResponse(sess.ID, st)) {
				return
			}
		case <-gone:
			return
		}
	}
}
