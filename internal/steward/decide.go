package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/llm"
	"github.com/talgya/neolithic/internal/orders"
	"github.com/talgya/neolithic/internal/workers"
)

// maxOrders caps the orders issued in one cycle.
const maxOrders = 3

const systemPrompt = `You are the Steward, an autonomous caretaker of a small Neolithic settlement in a turn-based game.

Each cycle you see the last turn's report and recommend zero to three worker orders before the next turn resolves. You are a caretaker, not a conqueror: keep the tribe fed first, then keep its services covered.

## Core Values (in priority order)

1. FOOD: A negative food balance with little storage left is an emergency. Move hands to fishing, agriculture or hunting.
2. SERVICES: Culture, education and childcare below 50% coverage erode the tribe. Shift a few adults to them.
3. RESTRAINT: Moving many workers at once slows the whole settlement for a few turns. Prefer small moves. When in doubt, do nothing.

## Order Grammar

assign N <archetype> <activity>
remove N <archetype> <activity>
move N <archetype> <from_activity> <to_activity>
set N <archetype> <activity>
clear <activity>

Archetypes: man, woman, child, elder_man, elder_woman, leader, farmer, fisher, storekeeper, toolmaker, researcher, builder, soldier, artisan, educator, organizer, nurse.
Activities: storage, agriculture, fishing, hunting, tools, research, construction, defense, culture, education, childcare, governance.

## Response Format

Reply in one of these shapes:
{"action": "none", "rationale": "Why no change is needed.", "orders": []}
or
{"action": "orders", "rationale": "Food is falling; two men move to the river.", "orders": ["move 2 man construction fishing"]}

"action" must be "none" or "orders". At most three orders.`

// Decision is the steward's recommended action for one cycle.
type Decision struct {
	Action    string   `json:"action"`
	Rationale string   `json:"rationale"`
	Orders    []string `json:"orders"`
}

// Decide asks Haiku for a decision. Without a client the heuristic decides.
func Decide(ctx context.Context, client *llm.Client, snap *Snapshot, h *Health, mem *CycleMemory) (*Decision, error) {
	if !client.Enabled() {
		return Heuristic(snap, h), nil
	}

	prompt := formatSnapshot(snap, h) + mem.FormatForPrompt()
	slog.Debug("steward prompt", "length", len(prompt))

	var d Decision
	if err := client.CompleteJSON(ctx, systemPrompt, prompt, 400, &d); err != nil {
		return nil, fmt.Errorf("haiku decision: %w", err)
	}
	if err := enforceGuardrails(&d); err != nil {
		return nil, fmt.Errorf("guardrail violation: %w", err)
	}
	return &d, nil
}

// enforceGuardrails drops orders that do not parse and caps the rest.
func enforceGuardrails(d *Decision) error {
	switch d.Action {
	case "none":
		d.Orders = nil
		return nil
	case "orders":
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}

	kept := make([]string, 0, maxOrders)
	for _, line := range d.Orders {
		o, err := orders.ParseLine(line)
		if err != nil {
			slog.Warn("steward order dropped", "order", line, "error", err)
			continue
		}
		if len(kept) == maxOrders {
			slog.Warn("steward orders capped", "max", maxOrders)
			break
		}
		kept = append(kept, o.String())
	}
	if len(kept) == 0 {
		return fmt.Errorf("action %q has no valid orders", d.Action)
	}
	d.Orders = kept
	return nil
}

// Heuristic is the fixed policy used when Haiku is unavailable: a food crisis
// pulls two men to fishing, a weak service pulls one woman to it.
func Heuristic(snap *Snapshot, h *Health) *Decision {
	as := snap.Status.Assignments
	none := func(why string) *Decision { return &Decision{Action: "none", Rationale: why} }

	switch h.CrisisLevel {
	case CrisisCritical, CrisisWarning:
		target := economy.ActivityFishing
		from, n := donor(as, workers.ArchetypeMan, target)
		if n == 0 {
			return none("food is short but no men can be spared")
		}
		return &Decision{
			Action:    "orders",
			Rationale: fmt.Sprintf("food net %+d with %d turns stored; moving men to fishing", h.FoodNet, h.TurnsOfFood),
			Orders:    []string{fmt.Sprintf("move %d man %s %s", min(n, 2), from, target)},
		}
	case CrisisWatch:
		target := h.WeakestService
		from, n := donor(as, workers.ArchetypeWoman, target)
		if n == 0 {
			return none(fmt.Sprintf("%s is at %.1f%% but no women can be spared", target, h.WeakestCoverage))
		}
		return &Decision{
			Action:    "orders",
			Rationale: fmt.Sprintf("%s coverage at %.1f%%", target, h.WeakestCoverage),
			Orders:    []string{fmt.Sprintf("move 1 woman %s %s", from, target)},
		}
	}
	return none("the settlement is holding")
}

// donor picks the activity that can best spare workers of archetype a: the
// one with the most of them, never a food activity, storage or target itself.
// Ties go to the earlier activity.
func donor(as economy.Assignments, a workers.Archetype, target economy.Activity) (economy.Activity, int) {
	protected := map[economy.Activity]bool{economy.ActivityStorage: true, target: true}
	for _, act := range economy.FoodActivities {
		protected[act] = true
	}

	var best economy.Activity
	bestN := 0
	for _, act := range economy.Activities() {
		if protected[act] {
			continue
		}
		if n := as.Count(act, a); n > bestN {
			best, bestN = act, n
		}
	}
	return best, bestN
}

// formatSnapshot builds a concise prompt from the snapshot.
func formatSnapshot(snap *Snapshot, h *Health) string {
	var b strings.Builder

	s := snap.Status
	fmt.Fprintf(&b, "## Settlement (turn %d, %s)\n", s.Turn, s.Season)
	fmt.Fprintf(&b, "Population: %d | Assigned: %d\n\n", s.Population, s.Assigned)

	fmt.Fprintf(&b, "## Assignments\n")
	for _, act := range s.Assignments.Sorted() {
		crew := s.Assignments[act]
		if crew.Empty() {
			continue
		}
		cj, _ := json.Marshal(crew)
		fmt.Fprintf(&b, "- %s: %s\n", act, cj)
	}
	b.WriteString("\n")

	if snap.Last != nil {
		fmt.Fprintf(&b, "## Last Turn (%s)\n%s\n\n", snap.Last.Outcome.Label, snap.Last.Compact)
	}

	fmt.Fprintf(&b, "## Health\n")
	fmt.Fprintf(&b, "Crisis: %s | Food net: %+d | Storage: %d (%d turns)\n",
		h.CrisisLevel, h.FoodNet, h.Storage, h.TurnsOfFood)
	if h.WeakestCoverage < 100 {
		fmt.Fprintf(&b, "Weakest service: %s at %.1f%%\n", h.WeakestService, h.WeakestCoverage)
	}
	b.WriteString("\n")
	return b.String()
}
