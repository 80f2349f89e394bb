// Food settlement and stock updates.
// See design doc Section 4.2.
package engine

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// FoodSettlement details how this turn's food was balanced.
type FoodSettlement struct {
	Produced int `json:"produced"`
	Consumed int `json:"consumed"`
	Net      int `json:"net"`
	Stored   int `json:"stored"`
	Capacity int `json:"capacity"`
}

// ConsumptionPerHead is the food eaten per person per turn, for every age.
const ConsumptionPerHead = 1

// settleFood balances production against consumption and banks the surplus
// up to storage capacity. It overwrites the storage flow with the amount
// stored and records the net balance under economy.FoodNet.
func (s *Settlement) settleFood() FoodSettlement {
	flows := s.Resources.Flows

	produced := 0
	for _, act := range economy.FoodActivities {
		produced += flows[act]
	}
	consumed := s.Demographics.Total() * ConsumptionPerHead
	net := produced - consumed

	capacity := s.storageCapacity()
	stored := min(net, capacity)
	if stored < 0 {
		stored = 0
	}

	flows[economy.ActivityStorage] = stored
	flows[economy.FoodNet] = net

	return FoodSettlement{
		Produced: produced,
		Consumed: consumed,
		Net:      net,
		Stored:   stored,
		Capacity: capacity,
	}
}

func (s *Settlement) storageCapacity() int {
	coefs := s.Rules.Production(economy.ActivityStorage)
	sum := 0.0
	for _, a := range workers.All() {
		sum += coefs[a] * float64(s.Assignments.Count(economy.ActivityStorage, a))
	}
	return int(sum)
}

// updateStocks adds each stocked resource's flow to its persistent stock.
func (s *Settlement) updateStocks() {
	if s.Resources.Stocks == nil {
		s.Resources.Stocks = economy.Ledger{}
	}
	for _, res := range economy.StockedResources {
		if delta := s.Resources.Flows[res]; delta != 0 {
			s.Resources.Stocks[res] += delta
		}
	}
}
