package workers

// Demographics counts the settlement's people by generic category.
// Specialists are drawn from these people and are not counted separately.
type Demographics struct {
	Men        int `json:"men" yaml:"men"`
	Women      int `json:"women" yaml:"women"`
	Pregnant   int `json:"pregnant" yaml:"pregnant"`
	Infants    int `json:"infants" yaml:"infants"`
	Children   int `json:"children" yaml:"children"`
	ElderMen   int `json:"elder_men" yaml:"elder_men"`
	ElderWomen int `json:"elder_women" yaml:"elder_women"`
	Leader     int `json:"leader" yaml:"leader"`
}

// Total is derived on every call, never stored.
func (d Demographics) Total() int {
	return d.Men + d.Women + d.Pregnant + d.Infants + d.Children + d.ElderMen + d.ElderWomen + d.Leader
}

// Workforce counts the able adults (men, active women, elders).
func (d Demographics) Workforce() int {
	return d.Men + d.Women + d.ElderMen + d.ElderWomen
}

// Count returns the head count for a generic category. Specialists return 0.
func (d Demographics) Count(a Archetype) int {
	switch a {
	case ArchetypeMan:
		return d.Men
	case ArchetypeWoman:
		return d.Women
	case ArchetypePregnant:
		return d.Pregnant
	case ArchetypeInfant:
		return d.Infants
	case ArchetypeChild:
		return d.Children
	case ArchetypeElderMan:
		return d.ElderMen
	case ArchetypeElderWoman:
		return d.ElderWomen
	case ArchetypeLeader:
		return d.Leader
	}
	return 0
}
