package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/session"
	"github.com/brettbedarf/foldertree/tree"
)

const writeWait = 10 * time.Second

// Feed message kinds
const (
	FeedSnapshot = "snapshot" // first message after connecting
	FeedEvent    = "event"
)

// FeedMessage is one websocket frame on /events. Every frame carries the
// current tree so clients can re-render without another request.
type FeedMessage struct {
	Kind  string             `json:"kind"`
	Event *session.Event     `json:"event,omitempty"`
	Tree  *tree.TreeSnapshot `json:"tree"`
}

// handleEvents upgrades to a websocket, sends the current snapshot and then
// one frame per change event until the client goes away or the server stops
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	logger := util.GetLogger("API.Events")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	events, cancel := s.sess.Subscribe()
	defer cancel()

	snap := s.sess.Snapshot()
	if err := writeFeed(conn, FeedMessage{Kind: FeedSnapshot, Tree: &snap}); err != nil {
		logger.Debug().Err(err).Msg("Failed to send initial snapshot")
		return
	}
	logger.Debug().Str("remote", r.RemoteAddr).Msg("Event client connected")

	// reads only to notice the client closing
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			logger.Debug().Str("remote", r.RemoteAddr).Msg("Event client disconnected")
			return
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage, // nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			snap := s.sess.Snapshot()
			if err := writeFeed(conn, FeedMessage{Kind: FeedEvent, Event: &ev, Tree: &snap}); err != nil {
				logger.Debug().Err(err).Msg("Failed to send event; dropping client")
				return
			}
		}
	}
}

func writeFeed(conn *websocket.Conn, msg FeedMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait)) // nolint:errcheck
	return conn.WriteJSON(msg)
}
