package console

import (
	"sort"

	"github.com/example/delog/internal/model"
)

// Apply rewrites text by the given strategies, strictly descending by start
// offset so that an applied edit never invalidates the offsets of the edits
// still to come. Out-of-bounds and overlapping ranges are skipped rather than
// applied blind.
func Apply(text string, strategies []model.RemovalStrategy) string {
	if len(strategies) == 0 {
		return text
	}
	order := make([]model.RemovalStrategy, len(strategies))
	copy(order, strategies)
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Range.Start > order[j].Range.Start
	})

	out := text
	lowest := len(text) + 1
	for _, s := range order {
		r := s.Range
		if r.Start < 0 || r.End > len(text) || r.Start >= r.End {
			continue
		}
		if r.End > lowest {
			// overlaps an already applied edit
			continue
		}
		repl := ""
		if s.HasReplacement {
			repl = s.Replacement
		}
		out = out[:r.Start] + repl + out[r.End:]
		lowest = r.Start
	}
	return out
}
