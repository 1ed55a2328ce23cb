// Package profilestats derives the profile view's aggregate numbers: the
// goal count and the percentage distribution of goals across the fixed icon
// catalog, recomputed from a full query snapshot on every change.
package profilestats

import (
	"math"

	"github.com/carebright/carelog/internal/catalog"
	"github.com/carebright/carelog/internal/models"
)

// Distribution converts a snapshot of goals into integer percentages per
// catalog icon, rounded to the nearest whole percent. Every catalog icon is
// present in the result; with no goals all values are zero. Icons outside
// the catalog contribute to the total but get no bucket of their own.
func Distribution(goals []models.Goal) map[string]int {
	counts := make(map[string]int, len(catalog.Icons()))
	for _, goal := range goals {
		if goal.Icon != "" {
			counts[goal.Icon]++
		}
	}

	total := len(goals)
	percentages := make(map[string]int, len(catalog.Icons()))
	for _, icon := range catalog.Icons() {
		if total == 0 {
			percentages[icon] = 0
			continue
		}
		percentages[icon] = int(math.Round(float64(counts[icon]) / float64(total) * 100))
	}
	return percentages
}
