// Package rules holds the immutable rule tables a session resolves turns against:
// production coefficients, seasonal multipliers, non-stockable coverage rules,
// and per-season event lists.
// Overrides never mutate a Rules value in place; every With* call returns a copy.
package rules

import (
	"encoding/json"
	"sort"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// Coefficients holds one per-worker coefficient for every archetype.
type Coefficients [workers.NumArchetypes]float64

// NeedsRef selects the population count a non-stockable activity is measured against.
type NeedsRef uint8

const (
	NeedsNone       NeedsRef = iota // resolves to 0 needs, i.e. full coverage
	NeedsPopulation                 // total population
	NeedsChildren                   // children only
	NeedsInfants                    // infants only
)

var needsNames = map[NeedsRef]string{
	NeedsNone:       "none",
	NeedsPopulation: "population_total",
	NeedsChildren:   "children_only",
	NeedsInfants:    "infants_only",
}

func (n NeedsRef) String() string {
	if s, ok := needsNames[n]; ok {
		return s
	}
	return "none"
}

// ParseNeedsRef accepts the canonical names; "babies_only" is an alias for infants.
func ParseNeedsRef(s string) (NeedsRef, bool) {
	if s == "babies_only" {
		return NeedsInfants, true
	}
	for ref, name := range needsNames {
		if name == s {
			return ref, true
		}
	}
	return NeedsNone, false
}

// Resolve returns the needs denominator for the given demographics.
func (n NeedsRef) Resolve(d workers.Demographics) int {
	switch n {
	case NeedsPopulation:
		return d.Total()
	case NeedsChildren:
		return d.Children
	case NeedsInfants:
		return d.Infants
	}
	return 0
}

// NonStockRule describes how a non-stockable activity's coverage is computed.
type NonStockRule struct {
	Capacity Coefficients
	Needs    NeedsRef
}

// Rules is a session's rule set. The zero value has no production and no events;
// use Default as the starting point.
type Rules struct {
	seasonal   map[economy.Season]float64
	production [economy.NumActivities]Coefficients
	nonStock   map[economy.Activity]NonStockRule
	events     map[economy.Season][]EventSpec
}

// SeasonalMultiplier returns the agriculture multiplier for a season.
// Seasons absent from the table are neutral (1.0).
func (r Rules) SeasonalMultiplier(s economy.Season) float64 {
	if m, ok := r.seasonal[s]; ok {
		return m
	}
	return 1.0
}

// Coefficient returns the production coefficient for one worker of archetype a on act.
// Unknown activities and archetypes contribute zero.
func (r Rules) Coefficient(act economy.Activity, a workers.Archetype) float64 {
	if !act.Valid() || !a.Valid() {
		return 0
	}
	return r.production[act][a]
}

// Production returns the full coefficient row for act.
func (r Rules) Production(act economy.Activity) Coefficients {
	if !act.Valid() {
		return Coefficients{}
	}
	return r.production[act]
}

// NonStock returns the coverage rule for act, if one is configured.
func (r Rules) NonStock(act economy.Activity) (NonStockRule, bool) {
	rule, ok := r.nonStock[act]
	return rule, ok
}

// CoverageActivities lists the activities with a coverage rule, in declaration order.
func (r Rules) CoverageActivities() []economy.Activity {
	out := make([]economy.Activity, 0, len(r.nonStock))
	for act := range r.nonStock {
		out = append(out, act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Events returns the ordered event list for a season. The slice is a copy.
func (r Rules) Events(s economy.Season) []EventSpec {
	return append([]EventSpec(nil), r.events[s]...)
}

// EventSeasons returns the seasons that carry at least one event, sorted.
func (r Rules) EventSeasons() []economy.Season {
	out := make([]economy.Season, 0, len(r.events))
	for s := range r.events {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// WithSeasonal returns a copy with the given multipliers merged over the current table.
func (r Rules) WithSeasonal(m map[economy.Season]float64) Rules {
	out := r.clone()
	for s, v := range m {
		out.seasonal[s] = v
	}
	return out
}

// WithCoefficients returns a copy with individual coefficients of act replaced.
// Archetypes not named keep their current coefficient.
func (r Rules) WithCoefficients(act economy.Activity, coefs map[workers.Archetype]float64) Rules {
	out := r.clone()
	if !act.Valid() {
		return out
	}
	for a, v := range coefs {
		if a.Valid() {
			out.production[act][a] = v
		}
	}
	return out
}

// WithNonStock returns a copy with the coverage rule for act replaced.
func (r Rules) WithNonStock(act economy.Activity, rule NonStockRule) Rules {
	out := r.clone()
	out.nonStock[act] = rule
	return out
}

// WithEvents returns a copy whose event list for season s is replaced by specs.
func (r Rules) WithEvents(s economy.Season, specs []EventSpec) Rules {
	out := r.clone()
	out.events[s] = append([]EventSpec(nil), specs...)
	return out
}

func (r Rules) clone() Rules {
	out := Rules{
		seasonal:   make(map[economy.Season]float64, len(r.seasonal)),
		production: r.production,
		nonStock:   make(map[economy.Activity]NonStockRule, len(r.nonStock)),
		events:     make(map[economy.Season][]EventSpec, len(r.events)),
	}
	for k, v := range r.seasonal {
		out.seasonal[k] = v
	}
	for k, v := range r.nonStock {
		out.nonStock[k] = v
	}
	for k, v := range r.events {
		out.events[k] = append([]EventSpec(nil), v...)
	}
	return out
}

type rulesDoc struct {
	Seasonal   map[economy.Season]float64                         `json:"seasonal_agri"`
	Production map[economy.Activity]map[workers.Archetype]float64 `json:"production_rules"`
	NonStock   map[economy.Activity]nonStockDoc                   `json:"nonstock_rules"`
	Events     map[economy.Season][]EventSpec                     `json:"events"`
}

type nonStockDoc struct {
	Capacity map[workers.Archetype]float64 `json:"capacity"`
	Needs    string                        `json:"needs"`
}

// MarshalJSON renders the rule set with zero coefficients omitted.
func (r Rules) MarshalJSON() ([]byte, error) {
	doc := rulesDoc{
		Seasonal:   r.seasonal,
		Production: make(map[economy.Activity]map[workers.Archetype]float64),
		NonStock:   make(map[economy.Activity]nonStockDoc),
		Events:     r.events,
	}
	for _, act := range economy.Activities() {
		if row := sparse(r.production[act]); len(row) > 0 {
			doc.Production[act] = row
		}
	}
	for act, rule := range r.nonStock {
		doc.NonStock[act] = nonStockDoc{Capacity: sparse(rule.Capacity), Needs: rule.Needs.String()}
	}
	return json.Marshal(doc)
}

func sparse(c Coefficients) map[workers.Archetype]float64 {
	m := make(map[workers.Archetype]float64)
	for i, v := range c {
		if v != 0 {
			m[workers.Archetype(i)] = v
		}
	}
	return m
}
