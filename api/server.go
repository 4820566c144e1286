// Package api exposes a session over HTTP. Every mutating route funnels into
// session.Session.Apply; /events streams change events over a websocket.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/session"
)

// RequestTimeout bounds every non-streaming request
const RequestTimeout = 30 * time.Second

type Server struct {
	sess     *session.Session
	router   *chi.Mux
	server   *http.Server
	upgrader websocket.Upgrader
	done     chan struct{} // closed on Shutdown to end open event streams
	stopOnce sync.Once
}

// New creates a Server for sess with all routes registered
func New(sess *session.Session) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  util.NewLogLogger("HTTP", util.DebugLevel),
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)

	s := &Server{
		sess:   sess,
		router: router,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		done: make(chan struct{}),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))

		r.Get("/health", s.handleHealth)

		// lookups
		r.Get("/tree", s.handleTree)
		r.Get("/exists", s.handleExists)
		r.Get("/resolve", s.handleResolve)
		r.Get("/nodes/{id}/path", s.handleReversePath)
		r.Get("/trash", s.handleTrashList)

		// mutations
		r.Post("/folders", s.handleCommand(commandAdd))
		r.Delete("/folders/*", s.handleDeleteFolder)
		r.Post("/move", s.handleCommand(commandMove))
		r.Post("/trash", s.handleCommand(commandTrash))
		r.Post("/trash/{key}/restore", s.handleTrashKey(commandRestore))
		r.Delete("/trash/{key}", s.handleTrashKey(commandPurge))
		r.Delete("/trash", s.handleEmptyTrash)
		r.Post("/commands", s.handleCommand(""))
	})

	// streaming; no timeout
	s.router.Get("/events", s.handleEvents)
}

// Handler returns the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until Shutdown is called
func (s *Server) ListenAndServe(addr string) error {
	logger := util.GetLogger("API")
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and closes open event streams
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
