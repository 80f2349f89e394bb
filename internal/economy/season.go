package economy

import "strings"

// Season names the part of the year. Unknown seasons are legal values; rule
// lookups fall back to neutral defaults for them.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

var seasonCycle = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

// NormalizeSeason lower-cases and trims a season name.
func NormalizeSeason(s string) Season {
	return Season(strings.ToLower(strings.TrimSpace(s)))
}

// Next returns the following season. Unknown seasons restart the cycle at spring.
func (s Season) Next() Season {
	for i, c := range seasonCycle {
		if c == s {
			return seasonCycle[(i+1)%len(seasonCycle)]
		}
	}
	return SeasonSpring
}

func (s Season) String() string { return string(s) }
