// Governance maturity.
// See design doc Section 4.3.
package engine

import (
	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// Governance reports the settlement's organisational maturity.
type Governance struct {
	MaturityIndex int `json:"maturity_index"`
}

const (
	maturityFloor = 10
	maturityBase  = 20
	maturityStep  = 10
	maturityCap   = 100
)

// governance scores the leader and organizers assigned to governance.
func (s *Settlement) governance() Governance {
	points := s.Assignments.Count(economy.ActivityGovernance, workers.ArchetypeLeader) +
		2*s.Assignments.Count(economy.ActivityGovernance, workers.ArchetypeOrganizer)
	if points <= 0 {
		return Governance{MaturityIndex: maturityFloor}
	}
	return Governance{MaturityIndex: min(maturityCap, maturityBase+maturityStep*points)}
}
