// Stockable flow computation.
// See design doc Section 4.1.
package engine

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// stockableFlows recomputes every stockable activity's output for this turn.
// The seasonal and leader multipliers are applied one after the other, each
// followed by its own integer truncation.
func (s *Settlement) stockableFlows() economy.Ledger {
	flows := make(economy.Ledger, economy.NumActivities)
	for _, act := range economy.Activities() {
		if !act.Stockable() {
			continue
		}
		base := s.baseOutput(act)
		if act == economy.ActivityAgriculture {
			base = int(float64(base) * s.Rules.SeasonalMultiplier(s.Season))
		}
		if act == s.LeaderActivity && s.Assignments.Count(act, workers.ArchetypeLeader) > 0 {
			base = int(float64(base) * (1.0 + s.LeaderBonus))
		}
		flows[act] = base
	}
	return flows
}

// baseOutput is Σ coefficient × assigned count, truncated to an integer.
func (s *Settlement) baseOutput(act economy.Activity) int {
	coefs := s.Rules.Production(act)
	sum := 0.0
	for _, a := range workers.All() {
		if coefs[a] == 0 {
			continue
		}
		sum += coefs[a] * float64(s.Assignments.Count(act, a))
	}
	return int(sum)
}
