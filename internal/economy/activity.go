// Package economy provides the settlement's activities, seasons, worker assignments,
// and resource ledgers.
// See design doc Section 3.
package economy

import (
	"fmt"
	"strings"
)

// Activity is a labeled productive or service category workers are assigned to.
type Activity uint8

const (
	// Stockable activities.
	ActivityStorage Activity = iota
	ActivityAgriculture
	ActivityFishing
	ActivityHunting
	ActivityTools
	ActivityResearch
	ActivityConstruction
	ActivityDefense

	// Non-stockable activities: same-turn coverage, no inventory.
	ActivityCulture
	ActivityEducation
	ActivityChildcare
	ActivityGovernance

	NumActivities // sentinel
)

// FoodNet is the reserved flow key carrying the turn's net food balance.
// It is reporting-only and never an assignable activity.
const FoodNet Activity = 255

var activityNames = [NumActivities]string{
	"storage", "agriculture", "fishing", "hunting", "tools", "research",
	"construction", "defense", "culture", "education", "childcare", "governance",
}

var activitySymbols = [NumActivities]string{
	"🥫", "🌾", "🐟", "🦌", "🔧", "🧪", "🏗", "🛡️", "🎭", "📚", "👩‍🍼", "🏛",
}

// FoodActivities produce edible output counted by food settlement.
var FoodActivities = []Activity{ActivityAgriculture, ActivityFishing, ActivityHunting}

// StockedResources are the persistent inventories, keyed by the activity that feeds them.
var StockedResources = []Activity{ActivityStorage, ActivityTools}

// Activities returns every assignable activity in declaration order.
func Activities() []Activity {
	out := make([]Activity, NumActivities)
	for i := range out {
		out[i] = Activity(i)
	}
	return out
}

// Valid reports whether a is an assignable activity.
func (a Activity) Valid() bool { return a < NumActivities }

// Stockable reports whether the activity's output is computed as a flow.
func (a Activity) Stockable() bool { return a <= ActivityDefense }

func (a Activity) String() string {
	if a == FoodNet {
		return "food_net"
	}
	if !a.Valid() {
		return fmt.Sprintf("activity(%d)", uint8(a))
	}
	return activityNames[a]
}

// Symbol returns the glyph used by the compact renderer.
func (a Activity) Symbol() string {
	if a == FoodNet {
		return "🍛"
	}
	if !a.Valid() {
		return "?"
	}
	return activitySymbols[a]
}

// ParseActivity resolves a canonical name or symbol (exact, case-insensitive).
func ParseActivity(s string) (Activity, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "food_net") {
		return FoodNet, true
	}
	for i := range activityNames {
		if strings.EqualFold(s, activityNames[i]) || s == activitySymbols[i] {
			return Activity(i), true
		}
	}
	return 0, false
}

// ActivityNames returns the canonical names of the assignable activities.
func ActivityNames() []string {
	return append([]string(nil), activityNames[:]...)
}

func (a Activity) MarshalText() ([]byte, error) {
	if a != FoodNet && !a.Valid() {
		return nil, fmt.Errorf("invalid activity %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Activity) UnmarshalText(b []byte) error {
	v, ok := ParseActivity(string(b))
	if !ok {
		return fmt.Errorf("unknown activity %q", string(b))
	}
	*a = v
	return nil
}
