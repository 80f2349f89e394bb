package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/rules"
	"github.com/talgya/neolithic/internal/workers"
)

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HasSeed {
		t.Fatalf("default config should not pin a seed")
	}
	if cfg.Season != economy.SeasonSummer || cfg.LeaderActivity != economy.ActivityAgriculture || cfg.LeaderBonus != 0.20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Scenario.Demographics.Total() != 103 {
		t.Fatalf("default population = %d", cfg.Scenario.Demographics.Total())
	}
	if len(cfg.Rules.Events(economy.SeasonSummer)) != 3 {
		t.Fatalf("default summer events missing")
	}
}

func TestParseBlankDocument(t *testing.T) {
	cfg, err := Parse([]byte("  \n# nothing here\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Inertia.Threshold != 3 || cfg.Inertia.Cooldown != 2 {
		t.Fatalf("inertia = %+v", cfg.Inertia)
	}
}

func TestLoadExampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "tribe.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.HasSeed || cfg.Seed != 20240601 {
		t.Fatalf("seed = %d (%v)", cfg.Seed, cfg.HasSeed)
	}
	if got := cfg.Rules.SeasonalMultiplier(economy.SeasonWinter); got != 0.25 {
		t.Fatalf("winter multiplier = %v", got)
	}
	if got := cfg.Rules.SeasonalMultiplier(economy.SeasonSpring); got != 0.7 {
		t.Fatalf("spring multiplier should keep its default, got %v", got)
	}
	if got := cfg.Rules.Coefficient(economy.ActivityAgriculture, workers.ArchetypeFarmer); got != 32 {
		t.Fatalf("farmer coefficient = %v", got)
	}
	if got := cfg.Rules.Coefficient(economy.ActivityAgriculture, workers.ArchetypeMan); got != 10 {
		t.Fatalf("unnamed coefficient should keep its default, got %v", got)
	}
	edu, _ := cfg.Rules.NonStock(economy.ActivityEducation)
	if edu.Capacity[workers.ArchetypeEducator] != 12 || edu.Capacity[workers.ArchetypeMan] != 5 {
		t.Fatalf("education capacity = %v", edu.Capacity)
	}

	summer := cfg.Rules.Events(economy.SeasonSummer)
	if len(summer) != 2 {
		t.Fatalf("summer events = %d, want 2", len(summer))
	}
	clog := summer[1]
	if clog.Probability != 0.30 || clog.Severity != 2 {
		t.Fatalf("canal_clog = %+v", clog)
	}
	if clog.Effect.Kind != rules.EffectScaleFlowFloor || clog.Effect.Target != economy.ActivityAgriculture {
		t.Fatalf("canal_clog effect = %+v", clog.Effect)
	}
	if clog.Effect.Message != "canal_clog" {
		t.Fatalf("missing message should default to the name, got %q", clog.Effect.Message)
	}

	autumn := cfg.Rules.Events(economy.SeasonAutumn)
	if len(autumn) != 1 || autumn[0].Effect.Kind != rules.EffectAddStock || autumn[0].Effect.Amount != 15 {
		t.Fatalf("autumn events = %+v", autumn)
	}
	if autumn[0].Severity != DefaultEventSeverity {
		t.Fatalf("severity default = %d", autumn[0].Severity)
	}
}

func TestOverridesLeaveDefaultsUntouched(t *testing.T) {
	_, err := Parse([]byte("production_rules:\n  fishing:\n    fisher: 99\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := rules.Default().Coefficient(economy.ActivityFishing, workers.ArchetypeFisher); got != 30 {
		t.Fatalf("defaults mutated: %v", got)
	}
}

func TestEventDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
events:
  winter:
    - name: cache
      effect: { type: add_stock, amount: 4 }
    - name: omen
`))
	if err != nil {
		t.Fatal(err)
	}
	evs := cfg.Rules.Events(economy.SeasonWinter)
	if len(evs) != 2 {
		t.Fatalf("events = %+v", evs)
	}
	if evs[0].Probability != DefaultEventProbability || evs[0].Effect.Target != economy.ActivityTools {
		t.Fatalf("add_stock defaults = %+v", evs[0])
	}
	if evs[1].Effect.Kind != rules.EffectNote || evs[1].Effect.Message != "omen" {
		t.Fatalf("note defaults = %+v", evs[1])
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown key", doc: "weather: rainy\n", want: "invalid config"},
		{name: "seasonal zero", doc: "seasonal_agri:\n  winter: 0\n", want: "invalid config"},
		{name: "seasonal above one", doc: "seasonal_agri:\n  summer: 1.2\n", want: "invalid config"},
		{name: "probability range", doc: "events:\n  summer:\n    - name: x\n      probability: 1.5\n", want: "invalid config"},
		{name: "negative count", doc: "scenario:\n  demographics:\n    men: -1\n", want: "invalid config"},
		{name: "effect type", doc: "events:\n  summer:\n    - name: x\n      effect: { type: explode }\n", want: "invalid config"},
		{name: "archetype typo", doc: "production_rules:\n  agriculture:\n    farmr: 30\n", want: `did you mean "farmer"`},
		{name: "activity typo", doc: "production_rules:\n  fishng:\n    man: 1\n", want: `did you mean "fishing"`},
		{name: "nonstock on stockable", doc: "nonstock_rules:\n  tools:\n    needs: population_total\n", want: "stockable"},
		{name: "needs name", doc: "nonstock_rules:\n  culture:\n    needs: everyone\n", want: "unknown needs"},
		{name: "food_net target", doc: "events:\n  summer:\n    - name: x\n      effect: { type: modify_flow_factor, flow: food_net, factor: 2 }\n", want: "unknown activity"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestScenarioOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
scenario:
  demographics: { men: 5, women: 5, children: 2 }
  assignments:
    fishing: { man: 3, child: 2 }
  stocks:
    storage: 40
`))
	if err != nil {
		t.Fatal(err)
	}
	sc := cfg.Scenario
	if sc.Demographics.Total() != 12 {
		t.Fatalf("population = %d", sc.Demographics.Total())
	}
	if len(sc.Assignments) != 1 || sc.Assignments.Count(economy.ActivityFishing, workers.ArchetypeChild) != 2 {
		t.Fatalf("assignments = %v", sc.Assignments)
	}
	if sc.Stocks[economy.ActivityStorage] != 40 || sc.Stocks[economy.ActivityTools] != 100 {
		t.Fatalf("stocks = %v", sc.Stocks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestNewSessionFromConfig(t *testing.T) {
	cfg := Default()
	cfg.Inertia.Threshold = 1000
	sess := cfg.NewSession(7)
	out := sess.Resolve()
	if out.Report.PopulationTotal != 103 {
		t.Fatalf("population = %d", out.Report.PopulationTotal)
	}
	if out.Report.FoodSettlement.Produced != 372 {
		t.Fatalf("produced = %d, want 372", out.Report.FoodSettlement.Produced)
	}
	if sess.Events.Stream().Seed() != 7 {
		t.Fatalf("stream seed = %d", sess.Events.Stream().Seed())
	}
	if cfg.Scenario.Stocks[economy.ActivityStorage] != 1519 {
		t.Fatalf("session shares scenario stocks")
	}
}
