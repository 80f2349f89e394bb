// Seasonal random events.
// See design doc Section 4.5.
package engine

import (
	"log/slog"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/entropy"
	"github.com/talgya/neolithic/internal/rules"
)

// FiredEvent is an event that triggered during a roll.
type FiredEvent struct {
	Name        string `json:"name"`
	Severity    int    `json:"severity"`
	Description string `json:"description"`
}

// EventEngine rolls each season's event list against one persistent stream.
// The stream is seeded once per session and never reseeded.
type EventEngine struct {
	rules  rules.Rules
	stream *entropy.Stream
}

// NewEventEngine creates an engine drawing from stream.
func NewEventEngine(r rules.Rules, stream *entropy.Stream) *EventEngine {
	return &EventEngine{rules: r, stream: stream}
}

// Roll draws exactly one value per spec of the season's list, in order, and
// applies the effect of every spec whose draw falls below its probability.
// Effects read and write res directly; later effects see earlier ones.
func (e *EventEngine) Roll(season economy.Season, res *economy.Resources) []FiredEvent {
	var fired []FiredEvent
	for _, spec := range e.rules.Events(season) {
		if e.stream.Float() >= spec.Probability {
			continue
		}
		desc := applyEffect(spec, res)
		fired = append(fired, FiredEvent{Name: spec.Name, Severity: spec.Severity, Description: desc})
		slog.Debug("event fired", "name", spec.Name, "season", season, "severity", spec.Severity)
	}
	return fired
}

// Stream exposes the engine's random stream (for seed and draw accounting).
func (e *EventEngine) Stream() *entropy.Stream { return e.stream }

// applyEffect is the single dispatcher for every effect kind.
func applyEffect(spec rules.EventSpec, res *economy.Resources) string {
	fx := spec.Effect
	switch fx.Kind {
	case rules.EffectScaleFlow:
		if res.Flows == nil {
			res.Flows = economy.Ledger{}
		}
		res.Flows[fx.Target] = int(float64(res.Flows[fx.Target]) * fx.Factor)
	case rules.EffectScaleFlowFloor:
		if res.Flows == nil {
			res.Flows = economy.Ledger{}
		}
		res.Flows[fx.Target] = max(0, int(float64(res.Flows[fx.Target])*fx.Factor))
	case rules.EffectAddStock:
		if res.Stocks == nil {
			res.Stocks = economy.Ledger{}
		}
		res.Stocks[fx.Target] += fx.Amount
	}
	if fx.Message == "" {
		return spec.Name
	}
	return fx.Message
}
