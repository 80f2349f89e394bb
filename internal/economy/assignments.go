package economy

import (
	"sort"

	"github.com/talgya/neolithic/internal/workers"
)

// Assignments maps each activity to the crew working it.
// Nothing here checks assigned counts against demographics; callers own that.
type Assignments map[Activity]workers.Crew

// Count returns how many workers of archetype a work activity act.
// Missing activities and invalid archetypes count as zero.
func (as Assignments) Count(act Activity, a workers.Archetype) int {
	if !a.Valid() {
		return 0
	}
	crew, ok := as[act]
	if !ok {
		return 0
	}
	return crew[a]
}

// Set overwrites one count. Invalid archetypes are ignored.
func (as Assignments) Set(act Activity, a workers.Archetype, n int) {
	if !a.Valid() {
		return
	}
	crew := as[act]
	crew[a] = n
	as[act] = crew
}

// Add shifts one count by delta. Invalid archetypes are ignored.
func (as Assignments) Add(act Activity, a workers.Archetype, delta int) {
	if !a.Valid() {
		return
	}
	crew := as[act]
	crew[a] += delta
	as[act] = crew
}

// Clone returns an independent copy. Crews are arrays, so a shallow map copy suffices.
func (as Assignments) Clone() Assignments {
	out := make(Assignments, len(as))
	for act, crew := range as {
		out[act] = crew
	}
	return out
}

// Sorted returns the assigned activities in declaration order.
func (as Assignments) Sorted() []Activity {
	out := make([]Activity, 0, len(as))
	for act := range as {
		out = append(out, act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Assigned returns the total number of workers across all activities.
func (as Assignments) Assigned() int {
	n := 0
	for _, crew := range as {
		n += crew.Total()
	}
	return n
}
