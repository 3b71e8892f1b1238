package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/orgball2608/story-explorer/internal/connectivity"
	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/internal/explorer"
	"github.com/orgball2608/story-explorer/internal/ratelimit"
	"github.com/orgball2608/story-explorer/internal/state"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

const maxUploadSize = 10 << 20

// Server is the render layer's JSON boundary.
type Server struct {
	explorer explorer.Service
	monitor  connectivity.Monitor
	state    *state.Store
	local    *db.LocalDB
	limiter  ratelimit.Limiter
	logger   logger.Logger

	http *http.Server
}

type Params struct {
	Explorer explorer.Service
	Monitor  connectivity.Monitor
	State    *state.Store
	Local    *db.LocalDB
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Addr     string
}

func New(p Params) *Server {
	s := &Server{
		explorer: p.Explorer,
		monitor:  p.Monitor,
		state:    p.State,
		local:    p.Local,
		limiter:  p.Limiter,
		logger:   p.Logger.WithComponent("HTTPServer"),
	}
	s.http = &http.Server{
		Addr:              p.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /api/status", s.status)
	mux.HandleFunc("POST /api/connectivity", s.observe)

	mux.HandleFunc("GET /api/stories", s.listStories)
	mux.HandleFunc("POST /api/stories", s.submitStory)

	mux.HandleFunc("GET /api/favorites", s.listFavorites)
	mux.HandleFunc("DELETE /api/favorites", s.clearFavorites)
	mux.HandleFunc("POST /api/favorites/toggle", s.toggleFavorite)
	mux.HandleFunc("GET /api/favorites/{id}", s.isFavorite)
	mux.HandleFunc("PUT /api/favorites/{id}", s.addFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", s.removeFavorite)

	mux.HandleFunc("GET /api/pending", s.listPending)
	mux.HandleFunc("DELETE /api/pending", s.clearPending)
	mux.HandleFunc("POST /api/sync", s.syncNow)

	return s.recoverer(mux)
}

// Start binds the listener synchronously so port errors surface at startup.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	s.logger.Info("HTTP server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Panic in HTTP handler", "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: true, Message: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
