// Package llm talks to the Claude Messages API. Every call here expects a
// single JSON object back; the advisor and the steward both decode one.
// See design doc Section 8.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultURL  = "https://api.anthropic.com/v1/messages"
	apiVersion  = "2023-06-01"
	model       = "claude-haiku-4-5-20251001"
	callTimeout = 30 * time.Second

	// jsonContract is appended to every system prompt.
	jsonContract = "\n\nReply with exactly one JSON object. No markdown fences, no text before or after it."
)

// ErrDisabled is returned by calls on a nil or keyless client.
var ErrDisabled = errors.New("LLM client not configured")

// APIError is a non-200 reply from the Messages API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithURL points the client at another Messages endpoint.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithCallsPerMinute caps outgoing calls; n <= 0 keeps the default.
func WithCallsPerMinute(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.budget.perMin = n
		}
	}
}

// Client is a JSON-only Haiku client. A nil *Client is valid and disabled.
type Client struct {
	apiKey string
	url    string
	http   *http.Client
	budget *callBudget
}

// NewClient returns nil when apiKey is empty, which disables every LLM feature.
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		return nil
	}
	c := &Client{
		apiKey: apiKey,
		url:    defaultURL,
		http:   &http.Client{Timeout: callTimeout},
		budget: &callBudget{perMin: 10},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether calls will be attempted.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// callBudget is a fixed one-minute window of allowed calls.
type callBudget struct {
	mu      sync.Mutex
	perMin  int
	used    int
	resetAt time.Time
}

func (b *callBudget) take(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.After(b.resetAt) {
		b.used = 0
		b.resetAt = now.Add(time.Minute)
	}
	if b.used >= b.perMin {
		return fmt.Errorf("rate limit exceeded (%d calls/min)", b.perMin)
	}
	b.used++
	return nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CompleteJSON sends one prompt and decodes the object in the reply into v.
// Cancelling ctx aborts the HTTP call.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, maxTokens int, v any) error {
	text, err := c.Complete(ctx, system, user, maxTokens)
	if err != nil {
		return err
	}
	return decodeObject(text, v)
}

// Complete sends one prompt and returns the concatenated text of the reply.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.budget.take(time.Now()); err != nil {
		return "", err
	}

	body, err := json.Marshal(request{
		Model:     model,
		MaxTokens: maxTokens,
		System:    strings.TrimSpace(system) + jsonContract,
		Messages:  []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
			apiErr.Type, apiErr.Message = eb.Error.Type, eb.Error.Message
		}
		return "", apiErr
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("haiku call",
		"input_tokens", out.Usage.InputTokens,
		"output_tokens", out.Usage.OutputTokens,
		"stop_reason", out.StopReason,
	)
	return text.String(), nil
}

// decodeObject unmarshals the outermost JSON object in text, tolerating
// fences or chatter around it.
func decodeObject(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}
