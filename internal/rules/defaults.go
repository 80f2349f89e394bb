package rules

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// row builds a coefficient row; archetypes not listed are disallowed (0).
func row(pairs map[workers.Archetype]float64) Coefficients {
	var c Coefficients
	for a, v := range pairs {
		c[a] = v
	}
	return c
}

// Default returns the built-in rule set.
func Default() Rules {
	r := Rules{
		seasonal: map[economy.Season]float64{
			economy.SeasonSummer: 1.00,
			economy.SeasonSpring: 0.70,
			economy.SeasonAutumn: 0.50,
			economy.SeasonWinter: 0.20,
		},
		nonStock: make(map[economy.Activity]NonStockRule),
		events:   make(map[economy.Season][]EventSpec),
	}

	r.production[economy.ActivityStorage] = row(map[workers.Archetype]float64{
		workers.ArchetypeMan: 100, workers.ArchetypeStorekeeper: 500,
	})
	r.production[economy.ActivityAgriculture] = row(map[workers.Archetype]float64{
		workers.ArchetypeFarmer: 30, workers.ArchetypeMan: 10, workers.ArchetypeWoman: 5, workers.ArchetypeChild: 5,
	})
	r.production[economy.ActivityFishing] = row(map[workers.Archetype]float64{
		workers.ArchetypeFisher: 30, workers.ArchetypeMan: 10, workers.ArchetypeWoman: 10, workers.ArchetypeChild: 10,
	})
	r.production[economy.ActivityHunting] = row(map[workers.Archetype]float64{
		workers.ArchetypeSoldier: 30, workers.ArchetypeMan: 10, workers.ArchetypeWoman: 5,
	})
	r.production[economy.ActivityTools] = row(map[workers.Archetype]float64{
		workers.ArchetypeToolmaker: 30, workers.ArchetypeMan: 10, workers.ArchetypeWoman: 15, workers.ArchetypeChild: 5,
	})
	r.production[economy.ActivityResearch] = row(map[workers.Archetype]float64{
		workers.ArchetypeResearcher: 30, workers.ArchetypeMan: 10, workers.ArchetypeWoman: 10, workers.ArchetypeChild: 1,
	})
	r.production[economy.ActivityConstruction] = row(map[workers.Archetype]float64{
		workers.ArchetypeBuilder: 30, workers.ArchetypeMan: 20, workers.ArchetypeWoman: 5,
	})
	r.production[economy.ActivityDefense] = row(map[workers.Archetype]float64{
		workers.ArchetypeSoldier: 50, workers.ArchetypeMan: 20, workers.ArchetypeWoman: 5, workers.ArchetypeChild: 1,
	})

	r.nonStock[economy.ActivityCulture] = NonStockRule{
		Capacity: row(map[workers.Archetype]float64{
			workers.ArchetypeArtisan: 100, workers.ArchetypeMan: 25, workers.ArchetypeWoman: 25,
			workers.ArchetypeElderMan: 25, workers.ArchetypeElderWoman: 25,
		}),
		Needs: NeedsPopulation,
	}
	r.nonStock[economy.ActivityEducation] = NonStockRule{
		Capacity: row(map[workers.Archetype]float64{
			workers.ArchetypeEducator: 10, workers.ArchetypeMan: 5, workers.ArchetypeWoman: 5,
			workers.ArchetypeElderMan: 2, workers.ArchetypeElderWoman: 2,
		}),
		Needs: NeedsChildren,
	}
	r.nonStock[economy.ActivityChildcare] = NonStockRule{
		Capacity: row(map[workers.Archetype]float64{
			workers.ArchetypeNurse: 5, workers.ArchetypeWoman: 2, workers.ArchetypeElderMan: 1,
			workers.ArchetypeMan: 1, workers.ArchetypeElderWoman: 1,
		}),
		Needs: NeedsInfants,
	}

	r.events[economy.SeasonSummer] = []EventSpec{
		{Name: "forage_boom", Probability: 0.35, Severity: 1,
			Effect: ScaleFlow(economy.ActivityFishing, 1.2, "Berries and fish abound: 🐟 +20% this turn.")},
		{Name: "canal_clog", Probability: 0.30, Severity: 2,
			Effect: ScaleFlowFloor(economy.ActivityAgriculture, 0.9, "Irrigation canals partly silted: 🌾 -10% this turn without upkeep.")},
		{Name: "wolves", Probability: 0.25, Severity: 1,
			Effect: ScaleFlow(economy.ActivityDefense, 1.1, "Wolves prowl nearby: 🛡️ watch heightened (+10%).")},
	}

	return r
}

// Empty returns a rule set with no production, coverage, seasonal or event entries.
func Empty() Rules {
	return Rules{}.clone()
}
