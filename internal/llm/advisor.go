// Turn advisor: an in-world counsellor that reads the compact report and
// proposes options. The advisor never changes game state.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const advisorSystem = `You are the in-world ADVISOR for a turn-based proto-RTS set in the Neolithic. You speak to the tribe's leader after each turn.

The JSON object has these fields:
- "narrative": 4-6 sentences describing the turn as lived by the tribe
- "status": one compact line summarising food, stocks and morale
- "opportunities": 2-4 short strings naming openings the leader could seize
- "options": exactly 3 macro options, each a short imperative (for example "Move 3 adults to fishing")

Be playful but concise. Do not invent new mechanics, resources or activities.`

// AdvisorContext is everything the advisor sees about the turn just resolved.
type AdvisorContext struct {
	Label      string
	Compact    string
	State      any // serialised as JSON
	History    string
	Events     []string
	LastOrders string
}

// Advice is the advisor's structured reply.
type Advice struct {
	Narrative     string   `json:"narrative"`
	Status        string   `json:"status"`
	Opportunities []string `json:"opportunities"`
	Options       []string `json:"options"`

	// Fallback is set when the text is canned rather than generated.
	Fallback bool `json:"fallback,omitempty"`
}

// Text renders the advice for the console and the history buffer.
func (a Advice) Text() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(a.Narrative))
	if a.Status != "" {
		fmt.Fprintf(&b, "\nStatus: %s", a.Status)
	}
	if len(a.Opportunities) > 0 {
		b.WriteString("\nOpportunities:")
		for _, o := range a.Opportunities {
			fmt.Fprintf(&b, "\n - %s", o)
		}
	}
	if len(a.Options) > 0 {
		b.WriteString("\nOptions:")
		for i, o := range a.Options {
			fmt.Fprintf(&b, "\n [%d] %s", i+1, o)
		}
	}
	return b.String()
}

// FallbackAdvice is shown when no client is configured or the call fails.
func FallbackAdvice() Advice {
	return Advice{
		Narrative: "The stores are holding, but the river can surprise us. The elders ask that the surplus be kept dry and the canals watched.",
		Status:    "Stable. Keep an eye on the granary.",
		Opportunities: []string{
			"Fish are running while the weather holds",
			"Idle hands could shape tools for the harvest",
		},
		Options: []string{
			"Reinforce storage with 2 more adults",
			"Move 2 adults to fishing",
			"Hold a short rite to strengthen cohesion",
		},
		Fallback: true,
	}
}

// BuildAdvisorPrompt returns the system and user prompts for a turn.
func BuildAdvisorPrompt(in *AdvisorContext) (string, string, error) {
	state, err := json.MarshalIndent(in.State, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal state: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", in.Label)
	b.WriteString("[COMPACT]\n")
	b.WriteString(in.Compact)
	b.WriteString("\n\n[STATE_JSON]\n")
	b.Write(state)
	section(&b, "RECENT_HISTORY", in.History)
	section(&b, "EVENTS", strings.Join(in.Events, "\n"))
	section(&b, "LAST_PLAYER_ORDERS", in.LastOrders)
	b.WriteString("\n\nAdvise the leader.")
	return advisorSystem, b.String(), nil
}

func section(b *strings.Builder, name, body string) {
	fmt.Fprintf(b, "\n\n[%s]\n", name)
	if strings.TrimSpace(body) == "" {
		body = "(none)"
	}
	b.WriteString(body)
}

// Advise asks the model for advice on the turn. Errors are non-fatal; callers
// fall back to FallbackAdvice.
func Advise(ctx context.Context, client *Client, in *AdvisorContext) (*Advice, error) {
	if !client.Enabled() {
		return nil, ErrDisabled
	}
	system, user, err := BuildAdvisorPrompt(in)
	if err != nil {
		return nil, err
	}
	var a Advice
	if err := client.CompleteJSON(ctx, system, user, 600, &a); err != nil {
		return nil, fmt.Errorf("advisor: %w", err)
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return &a, nil
}

// AdviseOrFallback never fails: any error yields the canned advice.
func AdviseOrFallback(ctx context.Context, client *Client, in *AdvisorContext) (Advice, error) {
	a, err := Advise(ctx, client, in)
	if err != nil {
		return FallbackAdvice(), err
	}
	return *a, nil
}

func parseAdvice(response string) (*Advice, error) {
	var a Advice
	if err := decodeObject(response, &a); err != nil {
		return nil, err
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return &a, nil
}

// check enforces the reply shape and trims the lists.
func (a *Advice) check() error {
	if strings.TrimSpace(a.Narrative) == "" {
		return fmt.Errorf("advice has no narrative")
	}
	if len(a.Options) < 3 {
		return fmt.Errorf("advice has %d options, want 3", len(a.Options))
	}
	a.Options = a.Options[:3]
	if len(a.Opportunities) > 4 {
		a.Opportunities = a.Opportunities[:4]
	}
	a.Fallback = false
	return nil
}
