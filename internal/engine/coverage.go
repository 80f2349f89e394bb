// Non-stockable coverage and governance maturity.
// See design doc Section 4.3.
package engine

import (
	"math"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// Coverage is the share of a non-stockable activity's need met this turn.
type Coverage struct {
	CoveragePct float64 `json:"coverage_pct"`
	Needs       int     `json:"needs"`
	Capacity    float64 `json:"capacity"`
}

// coverage evaluates every configured non-stockable activity.
func (s *Settlement) coverage() map[economy.Activity]Coverage {
	out := make(map[economy.Activity]Coverage)
	for _, act := range s.Rules.CoverageActivities() {
		rule, _ := s.Rules.NonStock(act)
		needs := rule.Needs.Resolve(s.Demographics)

		capacity := 0.0
		for _, a := range workers.All() {
			if rule.Capacity[a] == 0 {
				continue
			}
			capacity += rule.Capacity[a] * float64(s.Assignments.Count(act, a))
		}

		out[act] = Coverage{
			CoveragePct: coveragePct(capacity, needs),
			Needs:       needs,
			Capacity:    capacity,
		}
	}
	return out
}

// coveragePct is 100 when there is no need, otherwise capacity/needs clamped
// to [0, 100] and rounded to one decimal.
func coveragePct(capacity float64, needs int) float64 {
	if needs == 0 {
		return 100.0
	}
	pct := math.Min(100.0, 100.0*capacity/float64(needs))
	if pct < 0 {
		pct = 0
	}
	return math.Round(pct*10) / 10
}
