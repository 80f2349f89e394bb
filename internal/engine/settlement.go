// Turn resolution for one settlement.
// See design doc Section 4.6.
package engine

import (
	"log/slog"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/rules"
	"github.com/talgya/neolithic/internal/workers"
)

// Leader defaults.
const (
	DefaultLeaderActivity = economy.ActivityAgriculture
	DefaultLeaderBonus    = 0.20
)

// Settlement is the state a turn is resolved against.
// Demographics and Assignments are changed only by the order layer between turns.
type Settlement struct {
	Demographics workers.Demographics
	Assignments  economy.Assignments
	Resources    economy.Resources
	Season       economy.Season

	// LeaderActivity earns LeaderBonus while the leader works it.
	LeaderActivity economy.Activity
	LeaderBonus    float64

	Rules rules.Rules
}

// NewSettlement creates an empty summer settlement under r.
func NewSettlement(r rules.Rules) *Settlement {
	return &Settlement{
		Assignments:    economy.Assignments{},
		Resources:      economy.NewResources(),
		Season:         economy.SeasonSummer,
		LeaderActivity: DefaultLeaderActivity,
		LeaderBonus:    DefaultLeaderBonus,
		Rules:          r,
	}
}

// TurnReport is the result of NextTurn, before inertia and events.
type TurnReport struct {
	PopulationTotal int                           `json:"population_total"`
	Season          economy.Season                `json:"season"`
	Flows           economy.Ledger                `json:"flows"`
	Stocks          economy.Ledger                `json:"stocks"`
	FoodSettlement  FoodSettlement                `json:"food_settlement"`
	Coverage        map[economy.Activity]Coverage `json:"coverage"`
	Governance      Governance                    `json:"governance"`
}

// NextTurn resolves one turn: flows, then food settlement, then stocks, then
// coverage. The returned report holds copies of the flow and stock ledgers.
func (s *Settlement) NextTurn() TurnReport {
	if s.Assignments == nil {
		s.Assignments = economy.Assignments{}
	}

	s.Resources.Flows = s.stockableFlows()
	food := s.settleFood()
	s.updateStocks()
	cover := s.coverage()
	gov := s.governance()

	slog.Debug("turn computed",
		"season", s.Season,
		"population", s.Demographics.Total(),
		"produced", food.Produced,
		"consumed", food.Consumed,
		"stored", food.Stored,
	)

	return TurnReport{
		PopulationTotal: s.Demographics.Total(),
		Season:          s.Season,
		Flows:           s.Resources.Flows.Clone(),
		Stocks:          s.Resources.Stocks.Clone(),
		FoodSettlement:  food,
		Coverage:        cover,
		Governance:      gov,
	}
}
