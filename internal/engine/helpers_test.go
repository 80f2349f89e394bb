package engine

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/entropy"
	"github.com/talgya/neolithic/internal/rules"
	"github.com/talgya/neolithic/internal/workers"
)

func crew(pairs map[workers.Archetype]int) workers.Crew {
	var c workers.Crew
	for a, n := range pairs {
		c[a] = n
	}
	return c
}

// demoSettlement mirrors the reference scenario: 103 people, summer, leader on agriculture.
func demoSettlement() *Settlement {
	s := NewSettlement(rules.Default())
	s.Demographics = workers.Demographics{
		Men: 26, Women: 10, Pregnant: 21, Infants: 24, Children: 18,
		ElderMen: 2, ElderWomen: 1, Leader: 1,
	}
	s.Assignments = economy.Assignments{
		economy.ActivityAgriculture:  crew(map[workers.Archetype]int{workers.ArchetypeMan: 10, workers.ArchetypeFarmer: 2, workers.ArchetypeLeader: 1}),
		economy.ActivityFishing:      crew(map[workers.Archetype]int{workers.ArchetypeFisher: 1, workers.ArchetypeChild: 6}),
		economy.ActivityHunting:      crew(map[workers.Archetype]int{workers.ArchetypeSoldier: 3}),
		economy.ActivityStorage:      crew(map[workers.Archetype]int{workers.ArchetypeMan: 3}),
		economy.ActivityTools:        crew(map[workers.Archetype]int{workers.ArchetypeMan: 3}),
		economy.ActivityResearch:     crew(map[workers.Archetype]int{workers.ArchetypeMan: 3}),
		economy.ActivityConstruction: crew(map[workers.Archetype]int{workers.ArchetypeMan: 3}),
		economy.ActivityDefense:      crew(map[workers.Archetype]int{workers.ArchetypeSoldier: 1}),
		economy.ActivityCulture:      crew(map[workers.Archetype]int{workers.ArchetypeMan: 3}),
		economy.ActivityEducation: crew(map[workers.Archetype]int{
			workers.ArchetypeMan: 1, workers.ArchetypeWoman: 1, workers.ArchetypeElderMan: 1, workers.ArchetypeElderWoman: 1,
		}),
		economy.ActivityChildcare: crew(map[workers.Archetype]int{
			workers.ArchetypeWoman: 8, workers.ArchetypeNurse: 1, workers.ArchetypeElderMan: 1, workers.ArchetypeElderWoman: 1,
		}),
		economy.ActivityGovernance: crew(map[workers.Archetype]int{workers.ArchetypeLeader: 1}),
	}
	s.Resources.Stocks = economy.Ledger{economy.ActivityStorage: 1519, economy.ActivityTools: 100}
	return s
}

func newTestSession(s *Settlement, seed int64) *Session {
	return NewSession(s, NewInertiaTracker(), NewEventEngine(s.Rules, entropy.NewStream(seed)))
}
