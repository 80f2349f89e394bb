package config

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/engine"
	"github.com/talgya/neolithic/internal/entropy"
	"github.com/talgya/neolithic/internal/workers"
)

// DefaultScenario is the starting tribe: 103 people in early summer with the
// leader on the fields.
func DefaultScenario() Scenario {
	crews := map[economy.Activity]map[workers.Archetype]int{
		economy.ActivityAgriculture:  {workers.ArchetypeMan: 10, workers.ArchetypeFarmer: 2, workers.ArchetypeLeader: 1},
		economy.ActivityFishing:      {workers.ArchetypeFisher: 1, workers.ArchetypeChild: 6},
		economy.ActivityHunting:      {workers.ArchetypeSoldier: 3},
		economy.ActivityStorage:      {workers.ArchetypeMan: 3},
		economy.ActivityTools:        {workers.ArchetypeMan: 3},
		economy.ActivityResearch:     {workers.ArchetypeMan: 3},
		economy.ActivityConstruction: {workers.ArchetypeMan: 3},
		economy.ActivityDefense:      {workers.ArchetypeSoldier: 1},
		economy.ActivityCulture:      {workers.ArchetypeMan: 3},
		economy.ActivityEducation: {
			workers.ArchetypeMan: 1, workers.ArchetypeWoman: 1, workers.ArchetypeElderMan: 1, workers.ArchetypeElderWoman: 1,
		},
		economy.ActivityChildcare: {
			workers.ArchetypeWoman: 8, workers.ArchetypeNurse: 1, workers.ArchetypeElderMan: 1, workers.ArchetypeElderWoman: 1,
		},
		economy.ActivityGovernance: {workers.ArchetypeLeader: 1},
	}
	as := economy.Assignments{}
	for act, crew := range crews {
		for a, n := range crew {
			as.Set(act, a, n)
		}
	}

	return Scenario{
		Demographics: workers.Demographics{
			Men: 26, Women: 10, Pregnant: 21, Infants: 24, Children: 18,
			ElderMen: 2, ElderWomen: 1, Leader: 1,
		},
		Assignments: as,
		Stocks:      economy.Ledger{economy.ActivityStorage: 1519, economy.ActivityTools: 100},
	}
}

// NewSettlement builds the starting settlement described by the configuration.
func (c Config) NewSettlement() *engine.Settlement {
	s := engine.NewSettlement(c.Rules)
	s.Demographics = c.Scenario.Demographics
	s.Assignments = c.Scenario.Assignments.Clone()
	s.Resources.Stocks = c.Scenario.Stocks.Clone()
	s.Season = c.Season
	s.LeaderActivity = c.LeaderActivity
	s.LeaderBonus = c.LeaderBonus
	return s
}

// NewSession wires a fresh settlement, inertia tracker and event engine. The
// event stream is seeded with seed and never reseeded.
func (c Config) NewSession(seed int64) *engine.Session {
	s := c.NewSettlement()
	tracker := engine.NewInertiaTracker()
	tracker.Threshold = c.Inertia.Threshold
	tracker.CooldownLen = c.Inertia.Cooldown
	tracker.Penalty = c.Inertia.Penalty
	return engine.NewSession(s, tracker, engine.NewEventEngine(c.Rules, entropy.NewStream(seed)))
}
