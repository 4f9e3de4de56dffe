// Package server exposes quantum chess games over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/quantumchess/internal/invariant"
	"github.com/hailam/quantumchess/internal/session"
)

// Cleaner deletes stored games older than a cutoff.
type Cleaner interface {
	CleanOlderThan(cutoff time.Time) (int, error)
}

// Server wires the HTTP layer to the game sessions.
type Server struct {
	games  *session.Manager
	logger *zap.Logger
	srvMu  sync.Mutex
	srv    *http.Server
}

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

// NewServer builds a Server over games.
func NewServer(games *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{games: games, logger: logger}
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logger.Info("HTTP listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/new_game", s.withJSON(s.handleNewGame))
	mux.HandleFunc("/api/submit_move", s.withJSON(s.handleSubmitMove))
	mux.HandleFunc("/api/game_info", s.withJSON(s.handleGameInfo))
	mux.HandleFunc("/api/harmonics", s.withJSON(s.handleHarmonics))
	mux.HandleFunc("/api/active_games", s.withJSON(s.handleActiveGames))

	// Health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s.withRecover(mux)
}

// RunCleanup periodically drops idle games from memory and, with a positive
// retention, deletes old games from store. It returns when ctx is done.
func (s *Server) RunCleanup(ctx context.Context, store Cleaner, cfg Config) {
	ticker := time.NewTicker(cfg.CleanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.games.Clean(cfg.IdleTimeout)
			if cfg.Retention <= 0 {
				continue
			}
			if _, err := store.CleanOlderThan(now.Add(-cfg.Retention)); err != nil {
				s.logger.Error("cleaning stored games", zap.Error(err))
			}
		}
	}
}

// ---- middleware ----

// withRecover turns a panic into a generic 500. Engine invariant
// violations are logged with their stack and never shown to clients.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			fields := []zap.Field{zap.String("method", r.Method), zap.String("path", r.URL.Path)}
			if v, ok := invariant.FromRecovered(rec); ok {
				fields = append(fields, zap.Error(v))
			} else {
				fields = append(fields, zap.Any("panic", rec), zap.Stack("stack"))
			}
			s.logger.Error("request panicked", fields...)
			writeError(w, http.StatusInternalServerError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

// ---- JSON helpers ----

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, response{Success: false, Message: msg})
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("X-Content-Type-Options", "nosniff")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
