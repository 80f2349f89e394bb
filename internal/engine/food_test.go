package engine

import (
	"testing"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/rules"
	"github.com/talgya/neolithic/internal/workers"
)

func TestSettleFoodClamp(t *testing.T) {
	cases := []struct {
		name               string
		produced, people   int
		keepers            int // storekeepers at 500 capacity each
		wantNet, wantStore int
	}{
		{"surplus under capacity", 300, 100, 1, 200, 200},
		{"surplus over capacity", 900, 100, 1, 800, 500},
		{"deficit", 50, 100, 1, -50, 0},
		{"no storage", 300, 100, 0, 200, 0},
		{"exact balance", 100, 100, 2, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSettlement(rules.Default())
			s.Demographics = workers.Demographics{Men: tc.people}
			s.Assignments.Set(economy.ActivityStorage, workers.ArchetypeStorekeeper, tc.keepers)
			s.Resources.Flows = economy.Ledger{economy.ActivityFishing: tc.produced}

			food := s.settleFood()
			if food.Net != tc.wantNet || food.Stored != tc.wantStore {
				t.Fatalf("net=%d stored=%d, want net=%d stored=%d", food.Net, food.Stored, tc.wantNet, tc.wantStore)
			}
			if food.Stored < 0 || food.Stored > food.Capacity || food.Stored > max(0, food.Net) {
				t.Fatalf("clamp violated: %+v", food)
			}
			if s.Resources.Flows[economy.ActivityStorage] != tc.wantStore {
				t.Fatalf("storage flow = %d, want %d", s.Resources.Flows[economy.ActivityStorage], tc.wantStore)
			}
			if s.Resources.Flows[economy.FoodNet] != tc.wantNet {
				t.Fatalf("food_net flow = %d, want %d", s.Resources.Flows[economy.FoodNet], tc.wantNet)
			}
		})
	}
}

func TestSettleFoodCountsAllFoodActivities(t *testing.T) {
	s := NewSettlement(rules.Default())
	s.Demographics = workers.Demographics{Infants: 5, ElderWomen: 5}
	s.Resources.Flows = economy.Ledger{
		economy.ActivityAgriculture: 10,
		economy.ActivityFishing:     20,
		economy.ActivityHunting:     30,
		economy.ActivityTools:       1000,
	}
	food := s.settleFood()
	if food.Produced != 60 || food.Consumed != 10 {
		t.Fatalf("produced=%d consumed=%d, want 60/10", food.Produced, food.Consumed)
	}
}

func TestUpdateStocksAccumulates(t *testing.T) {
	s := NewSettlement(rules.Default())
	s.Resources.Stocks = economy.Ledger{economy.ActivityStorage: 10}
	s.Resources.Flows = economy.Ledger{economy.ActivityStorage: 5, economy.ActivityTools: 7, economy.ActivityResearch: 99}
	s.updateStocks()
	s.updateStocks()
	if got := s.Resources.Stocks[economy.ActivityStorage]; got != 20 {
		t.Fatalf("storage stock = %d, want 20", got)
	}
	if got := s.Resources.Stocks[economy.ActivityTools]; got != 14 {
		t.Fatalf("tools stock = %d, want 14", got)
	}
	if _, ok := s.Resources.Stocks[economy.ActivityResearch]; ok {
		t.Fatalf("research must not be stocked")
	}
}
