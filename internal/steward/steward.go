package steward

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/neolithic/internal/llm"
)

// Steward runs observe, decide, act cycles against one game server.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	LLM      *llm.Client
	Memory   *CycleMemory
}

// New creates a steward for the API at baseURL. client may be nil.
func New(baseURL, adminKey string, client *llm.Client, mem *CycleMemory) *Steward {
	if mem == nil {
		mem = LoadMemory("")
	}
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		LLM:      client,
		Memory:   mem,
	}
}

// RunCycle observes the game, issues orders if warranted, and resolves one
// turn. Rejected orders are logged and the turn still resolves.
func (s *Steward) RunCycle(ctx context.Context) (*CycleRecord, error) {
	snap, err := s.Observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	h := Triage(snap)
	slog.Info("steward observation",
		"turn", snap.Status.Turn,
		"crisis", h.CrisisLevel,
		"food_net", h.FoodNet,
		"turns_of_food", h.TurnsOfFood,
	)

	d, err := Decide(ctx, s.LLM, snap, h, s.Memory)
	if err != nil {
		slog.Warn("steward decision failed, using heuristic", "error", err)
		d = Heuristic(snap, h)
	}
	slog.Info("steward decision", "action", d.Action, "rationale", d.Rationale)

	if d.Action == "orders" && len(d.Orders) > 0 {
		res, err := s.Actor.SubmitOrders(ctx, d.Orders)
		if err != nil {
			slog.Error("steward orders rejected", "orders", d.Orders, "error", err)
		} else {
			slog.Info("steward orders applied", "summary", res.Summary)
		}
	}

	turn, err := s.Actor.ResolveTurn(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve turn: %w", err)
	}

	rec := CycleRecord{
		Turn:        turn.Outcome.Turn,
		Action:      d.Action,
		CrisisLevel: h.CrisisLevel,
		FoodNet:     turn.Outcome.Report.FoodSettlement.Net,
		Orders:      d.Orders,
		Rationale:   d.Rationale,
	}
	s.Memory.Record(rec)
	s.Memory.Save()
	return &rec, nil
}
