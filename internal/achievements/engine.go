// Package achievements derives badge state from the observation count.
// Badges are derived state: computed on every evaluation, never persisted or
// incrementally patched.
package achievements

// Badge is one achievement with its earned state for a given count.
type Badge struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
	Earned      bool   `json:"earned"`
}

// badgeTable is the fixed badge set, ascending by threshold for display.
// Badges are non-exclusive: several may be earned at once.
var badgeTable = []Badge{
	{Title: "Novice Observer", Description: "Awarded for 1+ observations", Threshold: 1},
	{Title: "Intermediate Observer", Description: "Awarded for 10+ observations", Threshold: 10},
	{Title: "Expert Observer", Description: "Awarded for 50+ observations", Threshold: 50},
}

// Evaluate returns the badge set for the given observation count. Pure: no
// side effects, no external calls, Earned == (count >= Threshold) for every
// badge.
func Evaluate(count int) []Badge {
	badges := make([]Badge, len(badgeTable))
	for i, badge := range badgeTable {
		badge.Earned = count >= badge.Threshold
		badges[i] = badge
	}
	return badges
}

// EarnedCount returns how many badges the given observation count earns.
func EarnedCount(count int) int {
	earned := 0
	for _, badge := range Evaluate(count) {
		if badge.Earned {
			earned++
		}
	}
	return earned
}
