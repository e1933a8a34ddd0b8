package domain

import (
	"strconv"
	"strings"
)

var scoreUnits = []struct {
	size   int64
	suffix string
}{
	{1_000_000_000_000, "T"},
	{1_000_000_000, "B"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// FormatScore renders points for the leaderboard: verbatim below 1000,
// otherwise scaled to one decimal with a K/M/B/T suffix ("1.2K", "3M").
func FormatScore(score int64) string {
	if score < 1000 {
		return strconv.FormatInt(score, 10)
	}
	for _, unit := range scoreUnits {
		if score >= unit.size {
			scaled := strconv.FormatFloat(float64(score)/float64(unit.size), 'f', 1, 64)
			return strings.TrimSuffix(scaled, ".0") + unit.suffix
		}
	}
	return strconv.FormatInt(score, 10)
}
