package enrich

import (
	"time"

	"orderlens/pkg/contracts/domain"
)

// monthIndex linearizes a date's calendar month so that cohort offsets are
// plain integer deltas across year boundaries.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// applyCohorts assigns each customer their acquisition month and each row
// its month offset from that cohort. Rows without a parseable order date
// stay at offset 0.
func applyCohorts(rows []domain.EnrichedOrderLine, custs []*customer) {
	for _, c := range custs {
		if c.firstDate.IsZero() {
			continue
		}
		c.cohortMonth = c.firstDate.Format("2006-01")
		firstIdx := monthIndex(c.firstDate)

		for _, i := range c.lineIdx {
			if rows[i].OrderedAt.IsZero() {
				continue
			}
			offset := monthIndex(rows[i].OrderedAt) - firstIdx
			if offset < 0 {
				offset = 0
			}
			rows[i].CohortOffset = offset
		}
	}
}
