package logbook

import (
	"sort"

	"github.com/faizmokh/bridgelog/internal/calendar"
)

// Recompute re-derives the fuel summary of every archived day, oldest first, so
// that a corrected reading carries forward into the days after it. The result
// keeps the caller's order and entries; only summaries are replaced. history is
// not modified.
//
// When a date was archived more than once, the first record for it in history
// is the one the following day carries from, as with CarryInto.
func Recompute(history []DayRecord) []DayRecord {
	out := make([]DayRecord, len(history))
	copy(out, history)

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return out[order[a]].Date < out[order[b]].Date })

	first := make(map[string]int, len(out))
	for i, h := range out {
		if _, ok := first[h.Date]; !ok {
			first[h.Date] = i
		}
	}

	for _, i := range order {
		var prior *float64
		if j, ok := first[calendar.Yesterday(out[i].Date)]; ok {
			prior = CarryOf(out[j])
		}
		out[i].Fuel = ComputeFuel(out[i].Entries, prior).Summary()
	}
	return out
}
