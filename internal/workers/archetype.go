// Package workers provides the closed set of worker archetypes, crews, and demographics.
// See design doc Section 3.
package workers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Archetype is a role a worker can be assigned under.
type Archetype uint8

const (
	// Generic demographic categories.
	ArchetypeMan Archetype = iota
	ArchetypeWoman
	ArchetypePregnant
	ArchetypeInfant
	ArchetypeChild
	ArchetypeElderMan
	ArchetypeElderWoman
	ArchetypeLeader

	// Specialists.
	ArchetypeFarmer
	ArchetypeFisher
	ArchetypeStorekeeper
	ArchetypeToolmaker
	ArchetypeResearcher
	ArchetypeBuilder
	ArchetypeSoldier
	ArchetypeArtisan
	ArchetypeEducator
	ArchetypeOrganizer
	ArchetypeNurse

	NumArchetypes // sentinel, not a role
)

var archetypeNames = [NumArchetypes]string{
	"man", "woman", "pregnant", "infant", "child", "elder_man", "elder_woman", "leader",
	"farmer", "fisher", "storekeeper", "toolmaker", "researcher",
	"builder", "soldier", "artisan", "educator", "organizer", "nurse",
}

var archetypeSymbols = [NumArchetypes]string{
	"🧔‍♂️", "👩", "🤰", "👶", "🧒", "👴", "👵", "👑",
	"🧑‍🌾", "🎣", "🧑‍🍳", "🧑‍🏭", "🧑‍🔬",
	"👷", "💂", "🧑‍🎨", "🧑🏻‍🏫", "🧑🏻‍💼", "👩‍⚕️",
}

// All returns every archetype in declaration order.
func All() []Archetype {
	out := make([]Archetype, NumArchetypes)
	for i := range out {
		out[i] = Archetype(i)
	}
	return out
}

// Valid reports whether a is one of the declared archetypes.
func (a Archetype) Valid() bool { return a < NumArchetypes }

// Specialist reports whether a is a trained role rather than a demographic category.
func (a Archetype) Specialist() bool { return a >= ArchetypeFarmer && a < NumArchetypes }

// String returns the canonical archetype name.
func (a Archetype) String() string {
	if !a.Valid() {
		return fmt.Sprintf("archetype(%d)", uint8(a))
	}
	return archetypeNames[a]
}

// Symbol returns the glyph used by the compact renderer.
func (a Archetype) Symbol() string {
	if !a.Valid() {
		return "?"
	}
	return archetypeSymbols[a]
}

// ParseArchetype resolves a canonical name or symbol. Matching is exact and
// case-insensitive; fuzzy matching lives in the order layer.
func ParseArchetype(s string) (Archetype, bool) {
	s = strings.TrimSpace(s)
	for i := range archetypeNames {
		if strings.EqualFold(s, archetypeNames[i]) || s == archetypeSymbols[i] {
			return Archetype(i), true
		}
	}
	return 0, false
}

// Names returns the canonical names of every archetype.
func Names() []string {
	return append([]string(nil), archetypeNames[:]...)
}

func (a Archetype) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid archetype %d", uint8(a))
	}
	return []byte(archetypeNames[a]), nil
}

func (a *Archetype) UnmarshalText(b []byte) error {
	v, ok := ParseArchetype(string(b))
	if !ok {
		return fmt.Errorf("unknown archetype %q", string(b))
	}
	*a = v
	return nil
}

// Crew holds one count (or coefficient) per archetype. Indexing by Archetype
// keeps every table exhaustive.
type Crew [NumArchetypes]int

// Total sums the crew.
func (c Crew) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Empty reports whether no archetype has a non-zero count.
func (c Crew) Empty() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// Moved returns Σ|c[a] − prev[a]| over all archetypes.
func (c Crew) Moved(prev Crew) int {
	moved := 0
	for i := range c {
		d := c[i] - prev[i]
		if d < 0 {
			d = -d
		}
		moved += d
	}
	return moved
}

// MarshalJSON encodes the crew as an object of non-zero counts keyed by name.
func (c Crew) MarshalJSON() ([]byte, error) {
	m := make(map[Archetype]int)
	for i, v := range c {
		if v != 0 {
			m[Archetype(i)] = v
		}
	}
	return json.Marshal(m)
}

func (c *Crew) UnmarshalJSON(b []byte) error {
	var m map[Archetype]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*c = Crew{}
	for a, v := range m {
		c[a] = v
	}
	return nil
}
