// Session wires one settlement to its inertia tracker and event engine.
package engine

import (
	"log/slog"

	"github.com/talgya/neolithic/internal/economy"
)

// Phase is a turn's position in the cycle as seen by whoever drives the
// session. Resolve itself never leaves a session mid-turn.
type Phase uint8

const (
	PhaseIdle     Phase = iota // awaiting orders
	PhaseResolved              // turn resolved, not yet handed back to order intake
)

func (p Phase) String() string {
	if p == PhaseResolved {
		return "resolved"
	}
	return "idle"
}

// Outcome is the final, post-inertia and post-event result of one turn.
type Outcome struct {
	Turn   int          `json:"turn"`
	Label  string       `json:"label"`
	Report TurnReport   `json:"report"`
	Events []FiredEvent `json:"events"`
	Draws  uint64       `json:"draws"`
}

// Descriptions returns the fired events' descriptions in firing order.
func (o Outcome) Descriptions() []string {
	out := make([]string, len(o.Events))
	for i, e := range o.Events {
		out[i] = e.Description
	}
	return out
}

// Session owns the per-settlement state. None of it may be shared between
// settlements.
type Session struct {
	Settlement *Settlement
	Inertia    *InertiaTracker
	Events     *EventEngine

	// TurnsPerSeason advances the season after every N resolved turns; 0 keeps it fixed.
	TurnsPerSeason int

	turn int
	last *Outcome
}

// NewSession creates a session at turn 0.
func NewSession(s *Settlement, inertia *InertiaTracker, events *EventEngine) *Session {
	return &Session{Settlement: s, Inertia: inertia, Events: events}
}

// Turn returns the number of turns resolved so far.
func (s *Session) Turn() int { return s.turn }

// Last returns the most recent outcome, or nil before the first turn.
func (s *Session) Last() *Outcome { return s.last }

// Resolve runs one full turn: NextTurn, inertia on the flows, then the season's
// event roll against the adjusted state.
func (s *Session) Resolve() Outcome {
	s.turn++
	season := s.Settlement.Season

	report := s.Settlement.NextTurn()

	res := &s.Settlement.Resources
	res.Flows = s.Inertia.Apply(s.Settlement.Assignments, report.Flows)
	fired := s.Events.Roll(season, res)

	report.Flows = res.Flows.Clone()
	report.Stocks = res.Stocks.Clone()

	out := Outcome{
		Turn:   s.turn,
		Label:  TurnLabel(s.turn, season, s.TurnsPerSeason),
		Report: report,
		Events: fired,
		Draws:  s.Events.Stream().Draws(),
	}
	s.last = &out

	slog.Info("turn resolved",
		"turn", s.turn,
		"season", season,
		"population", report.PopulationTotal,
		"produced", report.FoodSettlement.Produced,
		"consumed", report.FoodSettlement.Consumed,
		"stored", report.FoodSettlement.Stored,
		"events", len(fired),
	)

	if s.TurnsPerSeason > 0 && s.turn%s.TurnsPerSeason == 0 {
		s.AdvanceSeason()
	}
	return out
}

// AdvanceSeason moves the settlement to the next season.
func (s *Session) AdvanceSeason() economy.Season {
	prev := s.Settlement.Season
	s.Settlement.Season = prev.Next()
	slog.Info("season change", "turn", s.turn, "from", prev, "to", s.Settlement.Season)
	return s.Settlement.Season
}
