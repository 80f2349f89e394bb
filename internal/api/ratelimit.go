// Per-caller limit on turn resolution, which may cost an advisor call.
// Callers are told apart by bearer token, falling back to IP address.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows limit calls per caller in each fixed window of span.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	span      time.Duration
	lastSweep time.Time
}

type window struct {
	start time.Time
	used  int
}

// NewRateLimiter creates a limiter allowing limit calls per span.
func NewRateLimiter(limit int, span time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
	}
}

// Take records one call for key at now. It returns zero when the call is
// allowed, otherwise how long until the caller's window reopens.
func (rl *RateLimiter) Take(key string, now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.span {
		rl.sweep(now)
	}

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.span {
		rl.windows[key] = &window{start: now, used: 1}
		return 0
	}
	if w.used < rl.limit {
		w.used++
		return 0
	}
	return w.start.Add(rl.span).Sub(now)
}

// sweep drops windows that have expired; caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.span {
			delete(rl.windows, key)
		}
	}
	rl.lastSweep = now
}

// RateLimitMiddleware answers 429 with Retry-After once a caller is over its limit.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wait := rl.Take(callerKey(r), time.Now()); wait > 0 {
			secs := int((wait + time.Second - 1) / time.Second)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// callerKey names a caller by a digest of its bearer token, else by IP.
func callerKey(r *http.Request) string {
	if tok, ok := bearerToken(r); ok {
		sum := sha256.Sum256([]byte(tok))
		return "token:" + hex.EncodeToString(sum[:8])
	}
	return "ip:" + clientIP(r)
}

func bearerToken(r *http.Request) (string, bool) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// clientIP prefers the first X-Forwarded-For entry, then the remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
