package engine

import (
	"testing"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

func agri(men int) economy.Assignments {
	return economy.Assignments{
		economy.ActivityAgriculture: crew(map[workers.Archetype]int{workers.ArchetypeMan: men}),
	}
}

func TestInertiaTriggerLastsCooldown(t *testing.T) {
	tr := NewInertiaTracker()
	flows := economy.Ledger{economy.ActivityAgriculture: 100}

	// Baseline of 2 workers stays under the threshold.
	if got := tr.Apply(agri(2), flows)[economy.ActivityAgriculture]; got != 100 {
		t.Fatalf("baseline = %d, want 100", got)
	}
	// moved = 4 > 3: penalised this turn and the next.
	want := []int{90, 90, 100, 100}
	for i, w := range want {
		if got := tr.Apply(agri(6), flows)[economy.ActivityAgriculture]; got != w {
			t.Fatalf("turn %d after change = %d, want %d", i, got, w)
		}
	}
}

func TestInertiaAtThresholdDoesNotTrigger(t *testing.T) {
	tr := NewInertiaTracker()
	flows := economy.Ledger{economy.ActivityAgriculture: 100}
	tr.Apply(agri(0), flows)
	if got := tr.Apply(agri(3), flows)[economy.ActivityAgriculture]; got != 100 {
		t.Fatalf("moved=3 should not trigger, got %d", got)
	}
	if len(tr.Cooldowns()) != 0 {
		t.Fatalf("no cooldown expected, got %v", tr.Cooldowns())
	}
}

func TestInertiaResetIsFlat(t *testing.T) {
	tr := NewInertiaTracker()
	flows := economy.Ledger{economy.ActivityAgriculture: 100}
	tr.Apply(agri(0), flows)

	// Trigger leaves cooldown 1 after decay; the retrigger resets it to 2
	// and decays to 1 again rather than stacking to 2.
	tr.Apply(agri(5), flows)
	tr.Apply(agri(10), flows)
	if got := tr.Cooldowns()[economy.ActivityAgriculture]; got != 1 {
		t.Fatalf("cooldown after retrigger = %d, want 1", got)
	}
	if got := tr.Apply(agri(10), flows)[economy.ActivityAgriculture]; got != 90 {
		t.Fatalf("penalty expected on last cooldown turn, got %d", got)
	}
	if got := tr.Apply(agri(10), flows)[economy.ActivityAgriculture]; got != 100 {
		t.Fatalf("cooldown should have expired, got %d", got)
	}
}

func TestInertiaPreexistingCooldownDecays(t *testing.T) {
	tr := NewInertiaTracker()
	tr.CooldownLen = 3
	flows := economy.Ledger{economy.ActivityAgriculture: 100}
	tr.Apply(agri(0), flows)
	tr.Apply(agri(4), flows)
	if got := tr.Cooldowns()[economy.ActivityAgriculture]; got != 2 {
		t.Fatalf("cooldown = %d, want 2", got)
	}
	// Small move: no new cooldown, existing one keeps decaying.
	tr.Apply(agri(5), flows)
	if got := tr.Cooldowns()[economy.ActivityAgriculture]; got != 1 {
		t.Fatalf("cooldown = %d, want 1", got)
	}
}

func TestInertiaNotIdempotent(t *testing.T) {
	tr := NewInertiaTracker()
	tr.CooldownLen = 1
	flows := economy.Ledger{economy.ActivityAgriculture: 100}
	first := tr.Apply(agri(10), flows)[economy.ActivityAgriculture]
	second := tr.Apply(agri(10), flows)[economy.ActivityAgriculture]
	if first != 90 || second != 100 {
		t.Fatalf("first=%d second=%d, want 90 then 100", first, second)
	}
}

func TestInertiaLeavesInputAndMissingFlows(t *testing.T) {
	tr := NewInertiaTracker()
	flows := economy.Ledger{economy.ActivityFishing: 50}
	out := tr.Apply(agri(10), flows)
	if _, ok := out[economy.ActivityAgriculture]; ok {
		t.Fatalf("penalty must not create a flow entry")
	}
	if out[economy.ActivityFishing] != 50 {
		t.Fatalf("unassigned activity should pass through, got %d", out[economy.ActivityFishing])
	}

	flows = economy.Ledger{economy.ActivityAgriculture: 100}
	tr.Apply(agri(0), flows)
	out = tr.Apply(agri(10), flows)
	if flows[economy.ActivityAgriculture] != 100 || out[economy.ActivityAgriculture] != 90 {
		t.Fatalf("input mutated or output wrong: in=%d out=%d", flows[economy.ActivityAgriculture], out[economy.ActivityAgriculture])
	}
}

func TestInertiaCountsArchetypesOnEitherSide(t *testing.T) {
	tr := NewInertiaTracker()
	flows := economy.Ledger{economy.ActivityAgriculture: 100}
	prev := economy.Assignments{economy.ActivityAgriculture: crew(map[workers.Archetype]int{workers.ArchetypeMan: 2})}
	next := economy.Assignments{economy.ActivityAgriculture: crew(map[workers.Archetype]int{workers.ArchetypeFarmer: 2})}
	tr.Apply(prev, flows)
	// 2 men removed + 2 farmers added = 4.
	if got := tr.Apply(next, flows)[economy.ActivityAgriculture]; got != 90 {
		t.Fatalf("swap of 2+2 should trigger, got %d", got)
	}
}
