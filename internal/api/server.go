// Package api provides the HTTP API for a running game.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
// See design doc Section 8.4.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/neolithic/internal/game"
	"github.com/talgya/neolithic/internal/orders"
)

const (
	maxStreamConns = 4
	maxOrderBytes  = 16 << 10
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
)

// Server serves one game over HTTP.
type Server struct {
	Game     *game.Game
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// TurnLimiter throttles turn resolution, which may call the advisor.
	TurnLimiter *RateLimiter

	streamConns int32
	upgrader    websocket.Upgrader
}

// NewServer creates a server for g. The admin key is read from
// TRIBESIM_ADMIN_KEY when adminKey is empty.
func NewServer(g *game.Game, port int, adminKey string) *Server {
	if adminKey == "" {
		adminKey = os.Getenv("TRIBESIM_ADMIN_KEY")
	}
	return &Server{
		Game:        g,
		Port:        port,
		AdminKey:    adminKey,
		TurnLimiter: NewRateLimiter(30, time.Minute),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/report", s.handleReport)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/rules", s.handleRules)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints.
	mux.HandleFunc("/api/v1/orders", s.adminOnly(s.handleOrders))
	mux.HandleFunc("/api/v1/turn", s.adminOnly(RateLimitMiddleware(s.TurnLimiter, s.handleTurn)))

	return corsMiddleware(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	tok, ok := bearerToken(r)
	return ok && subtle.ConstantTimeCompare([]byte(tok), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth. Only POST is accepted.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no TRIBESIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Status())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	last := s.Game.Last()
	if last == nil {
		http.Error(w, "no turn resolved yet", http.StatusNotFound)
		return
	}
	writeJSON(w, last)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, 200)
	}
	rows, err := s.Game.History(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Rules())
}

// handleOrders applies plain-text orders, one per line.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOrderBytes))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	applied, err := s.Game.SubmitOrders(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lines := make([]string, len(applied))
	for i, o := range applied {
		lines[i] = o.String()
	}
	writeJSON(w, map[string]any{
		"applied": lines,
		"summary": orders.Summary(applied),
		"status":  s.Game.Status(),
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	res := s.Game.Resolve(r.Context())
	slog.Info("turn resolved via API", "turn", res.Outcome.Turn, "remote", r.RemoteAddr)
	writeJSON(w, res)
}

// streamMessage is one frame on the websocket stream.
type streamMessage struct {
	Type   string           `json:"type"`
	Status *game.Status     `json:"status,omitempty"`
	Turn   *game.TurnResult `json:"turn,omitempty"`
}

// handleStream pushes every resolved turn to a websocket client. The first
// frame is the current status.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.streamConns, 1)
	defer atomic.AddInt32(&s.streamConns, -1)
	if current > maxStreamConns {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	// Subscribe before the handshake completes so no turn is missed.
	subID, ch := s.Game.Subscribe()
	defer s.Game.Unsubscribe(subID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	slog.Info("stream client connected", "sub_id", subID)

	status := s.Game.Status()
	if err := writeFrame(conn, streamMessage{Type: "status", Status: &status}); err != nil {
		return
	}

	// Reader: drains control frames and notices the client leaving.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pongWait / 2)
	defer ping.Stop()

	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return
			}
			if err := writeFrame(conn, streamMessage{Type: "turn", Turn: &res}); err != nil {
				slog.Info("stream write failed", "sub_id", subID, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
