package ingest

import (
	"orderlens/pkg/contracts/domain"
)

// Dedup collapses duplicate (order id, product code) keys to a single line.
// When source files overlap, the record from the most recently processed
// file wins; the row keeps the position of its first occurrence so output
// ordering stays stable across reruns.
func Dedup(lines []domain.OrderLine) []domain.OrderLine {
	if len(lines) == 0 {
		return lines
	}

	out := make([]domain.OrderLine, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		key := line.Key()
		if at, seen := index[key]; seen {
			out[at] = line
			continue
		}
		index[key] = len(out)
		out = append(out, line)
	}

	return out
}
