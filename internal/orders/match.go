package orders

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/talgya/neolithic/internal/economy"
	"github.com/talgya/neolithic/internal/workers"
)

// archetypeAliases maps plural and common spellings to canonical names.
var archetypeAliases = map[string]string{
	"men":         "man",
	"women":       "woman",
	"children":    "child",
	"kids":        "child",
	"babies":      "infant",
	"elders":      "elder_man",
	"elder_men":   "elder_man",
	"elder_women": "elder_woman",
	"king":        "leader",
	"chief":       "leader",
}

func editLimit(length int) int {
	if length <= 4 {
		return 1
	}
	return 2
}

// closest returns the index of the unique nearest name within the edit limit.
func closest(token string, names []string) (int, bool) {
	best, bestDist, tie := -1, 0, false
	for i, name := range names {
		if token == name {
			return i, true
		}
		d := levenshtein.ComputeDistance(token, name)
		if d > editLimit(len(name)) {
			continue
		}
		switch {
		case best < 0 || d < bestDist:
			best, bestDist, tie = i, d, false
		case d == bestDist:
			tie = true
		}
	}
	if best < 0 || tie {
		return -1, false
	}
	return best, true
}

// Suggest returns the name nearest to token, or "" when nothing is close
// enough to be a plausible typo.
func Suggest(token string, names []string) string {
	token = strings.ToLower(token)
	best, bestDist := "", 0
	for _, name := range names {
		d := levenshtein.ComputeDistance(token, name)
		if best == "" || d < bestDist {
			best, bestDist = name, d
		}
	}
	if best == "" || bestDist > len(best)/2+1 {
		return ""
	}
	return best
}

func hint(token string, names []string) string {
	if s := Suggest(token, names); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}

func normalizeToken(tok string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tok)), "-", "_")
}

// ResolveArchetype accepts a canonical name, symbol, plural alias, or a
// near-miss spelling of a canonical name.
func ResolveArchetype(tok string) (workers.Archetype, error) {
	if a, ok := workers.ParseArchetype(tok); ok {
		return a, nil
	}
	norm := normalizeToken(tok)
	if alias, ok := archetypeAliases[norm]; ok {
		norm = alias
	}
	names := workers.Names()
	if i, ok := closest(norm, names); ok {
		return workers.Archetype(i), nil
	}
	return 0, fmt.Errorf("%w %q%s", ErrUnknownArchetype, tok, hint(norm, names))
}

// ResolveActivity accepts a canonical name, symbol, or near-miss spelling of
// an assignable activity. The food_net reporting key is rejected.
func ResolveActivity(tok string) (economy.Activity, error) {
	if act, ok := economy.ParseActivity(tok); ok {
		if !act.Valid() {
			return 0, fmt.Errorf("%w %q: not assignable", ErrUnknownActivity, tok)
		}
		return act, nil
	}
	norm := normalizeToken(tok)
	names := economy.ActivityNames()
	if i, ok := closest(norm, names); ok {
		return economy.Activity(i), nil
	}
	return 0, fmt.Errorf("%w %q%s", ErrUnknownActivity, tok, hint(norm, names))
}
