// Command steward plays a served tribesim game on its own.
// It observes the settlement, decides on orders via Claude Haiku (or a fixed
// heuristic when no key is set), and acts via the admin API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/neolithic/internal/llm"
	"github.com/talgya/neolithic/internal/steward"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("TRIBESIM_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("TRIBESIM_ADMIN_KEY")
	intervalSec := envIntOrDefault("STEWARD_INTERVAL", 60)
	maxTurns := envIntOrDefault("STEWARD_TURNS", 0)
	memoryPath := envOrDefault("STEWARD_MEMORY", "steward_memory.json")

	if adminKey == "" {
		slog.Error("TRIBESIM_ADMIN_KEY is required")
		os.Exit(1)
	}

	client := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY"))
	interval := time.Duration(intervalSec) * time.Second

	slog.Info("steward starting",
		"api_url", apiURL,
		"interval", interval,
		"max_turns", maxTurns,
		"haiku", client.Enabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("waiting for tribesim API...")
	if err := waitForAPI(ctx, apiURL); err != nil {
		slog.Error("tribesim API not ready", "error", err)
		os.Exit(1)
	}

	s := steward.New(apiURL, adminKey, client, steward.LoadMemory(memoryPath))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for turns := 0; maxTurns == 0 || turns < maxTurns; turns++ {
		rec, err := s.RunCycle(ctx)
		if err != nil {
			slog.Error("steward cycle failed", "error", err)
		} else {
			slog.Info("steward cycle complete", "turn", rec.Turn, "action", rec.Action, "food_net", rec.FoodNet)
		}
		if maxTurns > 0 && turns+1 == maxTurns {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("steward stopped")
			return
		}
	}
	slog.Info("steward finished", "turns", maxTurns)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds, giving up after five minutes.
func waitForAPI(ctx context.Context, apiURL string) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("tribesim API is ready")
				return nil
			}
		}
		slog.Info("tribesim not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
