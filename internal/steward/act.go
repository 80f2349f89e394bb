package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/talgya/neolithic/internal/game"
)

// OrdersResult is the response from POST /api/v1/orders.
type OrdersResult struct {
	Applied []string    `json:"applied"`
	Summary string      `json:"summary"`
	Status  game.Status `json:"status"`
}

// Actor executes orders and turns via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SubmitOrders sends order lines to POST /api/v1/orders as one batch.
func (a *Actor) SubmitOrders(ctx context.Context, lines []string) (*OrdersResult, error) {
	var result OrdersResult
	if err := a.post(ctx, "/api/v1/orders", strings.Join(lines, "\n"), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResolveTurn asks the server to resolve one turn.
func (a *Actor) ResolveTurn(ctx context.Context) (*game.TurnResult, error) {
	var result game.TurnResult
	if err := a.post(ctx, "/api/v1/turn", "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *Actor) post(ctx context.Context, path, body string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
