// Change resistance on worker reallocation.
// See design doc Section 4.4.
package engine

import (
	"github.com/talgya/neolithic/internal/economy"
)

// Inertia defaults.
const (
	DefaultInertiaThreshold = 3
	DefaultInertiaCooldown  = 2
	DefaultInertiaPenalty   = 0.10
)

// InertiaTracker damps the flow of any activity whose crew changed by more
// than Threshold workers since the previous call, for CooldownLen calls.
// Apply is stateful and not idempotent.
type InertiaTracker struct {
	Threshold   int
	CooldownLen int
	Penalty     float64

	last      economy.Assignments
	cooldowns map[economy.Activity]int
}

// NewInertiaTracker creates a tracker with the default threshold, cooldown and penalty.
func NewInertiaTracker() *InertiaTracker {
	return &InertiaTracker{
		Threshold:   DefaultInertiaThreshold,
		CooldownLen: DefaultInertiaCooldown,
		Penalty:     DefaultInertiaPenalty,
		last:        economy.Assignments{},
		cooldowns:   make(map[economy.Activity]int),
	}
}

// Apply returns flows with the penalty applied to every activity in cooldown.
// The input ledger is not modified.
func (t *InertiaTracker) Apply(current economy.Assignments, flows economy.Ledger) economy.Ledger {
	if t.cooldowns == nil {
		t.cooldowns = make(map[economy.Activity]int)
	}
	adjusted := flows.Clone()

	for act, crew := range current {
		moved := crew.Moved(t.last[act])
		if moved > t.Threshold {
			// Flat reset, never additive.
			t.cooldowns[act] = t.CooldownLen
		}
		if t.cooldowns[act] > 0 {
			if v, ok := adjusted[act]; ok {
				adjusted[act] = int(float64(v) * (1 - t.Penalty))
			}
		}
	}

	for act := range t.cooldowns {
		t.cooldowns[act]--
		if t.cooldowns[act] <= 0 {
			delete(t.cooldowns, act)
		}
	}

	t.last = current.Clone()
	return adjusted
}

// Cooldowns returns a copy of the remaining cooldown per activity.
func (t *InertiaTracker) Cooldowns() map[economy.Activity]int {
	out := make(map[economy.Activity]int, len(t.cooldowns))
	for act, n := range t.cooldowns {
		out[act] = n
	}
	return out
}
