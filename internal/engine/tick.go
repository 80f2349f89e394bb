// Turn labelling.
package engine

import (
	"fmt"

	"github.com/talgya/neolithic/internal/economy"
)

// TurnLabel returns a human-readable label for a turn. When seasons rotate
// every turnsPerSeason turns, the label also carries the year.
func TurnLabel(turn int, season economy.Season, turnsPerSeason int) string {
	if turnsPerSeason <= 0 {
		return fmt.Sprintf("Turn %d, %s", turn, season)
	}
	year := (turn-1)/(4*turnsPerSeason) + 1
	return fmt.Sprintf("Turn %d, %s, Year %d", turn, season, year)
}
