package steward

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/render"
)

// Crisis levels, most severe first.
const (
	CrisisCritical = "CRITICAL"
	CrisisWarning  = "WARNING"
	CrisisWatch    = "WATCH"
	CrisisHealthy  = "HEALTHY"
)

// lowCoverage is the service coverage below which the steward reacts.
const lowCoverage = 50.0

// Health holds diagnostic signals derived from a Snapshot.
// Runs before Haiku: deterministic and free.
type Health struct {
	FoodNet     int
	Consumed    int
	Storage     int
	TurnsOfFood int

	// WeakestService is the covered activity with the lowest coverage.
	WeakestService  economy.Activity
	WeakestCoverage float64

	CrisisLevel string
}

// Triage computes Health from the snapshot's last turn. Before the first turn
// the settlement is reported healthy.
func Triage(snap *Snapshot) *Health {
	h := &Health{WeakestCoverage: 100, CrisisLevel: CrisisHealthy}
	if snap.Last == nil {
		return h
	}

	rep := snap.Last.Outcome.Report
	h.FoodNet = rep.FoodSettlement.Net
	h.Consumed = rep.FoodSettlement.Consumed
	h.Storage = rep.Stocks[economy.ActivityStorage]
	h.TurnsOfFood = render.TurnsOfFood(rep)

	for _, act := range economy.Activities() {
		c, ok := rep.Coverage[act]
		if ok && c.CoveragePct < h.WeakestCoverage {
			h.WeakestService = act
			h.WeakestCoverage = c.CoveragePct
		}
	}

	switch {
	case h.FoodNet < 0 && h.TurnsOfFood < 3:
		h.CrisisLevel = CrisisCritical
	case h.FoodNet < 0:
		h.CrisisLevel = CrisisWarning
	case h.WeakestCoverage < lowCoverage:
		h.CrisisLevel = CrisisWatch
	}
	return h
}
