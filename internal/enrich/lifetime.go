package enrich

import (
	"sort"
	"time"

	"orderlens/pkg/contracts/domain"
)

// applyIntervals computes per-line purchase intervals and returns the mean
// of all positive intervals across the population. Intervals are day gaps
// between a customer's consecutive lines in chronological order; a
// customer's first line, and any line without a parseable date, carries -1.
// When no positive interval exists the configured fallback is returned.
func applyIntervals(rows []domain.EnrichedOrderLine, custs []*customer, fallbackDays float64) float64 {
	var sum float64
	var count int

	for _, c := range custs {
		ordered := make([]int, len(c.lineIdx))
		copy(ordered, c.lineIdx)
		sort.SliceStable(ordered, func(a, b int) bool {
			ta, tb := rows[ordered[a]].OrderedAt, rows[ordered[b]].OrderedAt
			if ta.IsZero() || tb.IsZero() {
				// Undated lines sort last so they never displace the
				// customer's true first purchase.
				return tb.IsZero() && !ta.IsZero()
			}
			return ta.Before(tb)
		})

		var custSum float64
		var custCount int
		for pos := 1; pos < len(ordered); pos++ {
			prev := rows[ordered[pos-1]].OrderedAt
			cur := rows[ordered[pos]].OrderedAt
			if prev.IsZero() || cur.IsZero() {
				continue
			}
			days := int(cur.Sub(prev).Hours() / 24)
			rows[ordered[pos]].PurchaseInterval = days
			if days > 0 {
				sum += float64(days)
				count++
				custSum += float64(days)
				custCount++
			}
		}
		if custCount > 0 {
			c.meanInterval = custSum / float64(custCount)
		}
	}

	if count == 0 {
		return fallbackDays
	}
	return sum / float64(count)
}

// churnThresholds are the idle-day multipliers applied to the population
// mean purchase interval.
type churnThresholds struct {
	caution float64
	atRisk  float64
	churned float64
}

// classifyChurn buckets idle days against thresholds scaled from the mean
// interval. Bounds are exclusive on the low side: a customer sitting
// exactly at a multiple of the mean keeps the milder label. The boundaries
// move with the population: a 35-day silence is fully churned when
// customers buy every 10 days but active when they buy every 40.
func classifyChurn(idleDays int, meanInterval float64, t churnThresholds) string {
	idle := float64(idleDays)
	switch {
	case idle > meanInterval*t.churned:
		return domain.ChurnFullyChurned
	case idle > meanInterval*t.atRisk:
		return domain.ChurnAtRisk
	case idle > meanInterval*t.caution:
		return domain.ChurnCaution
	default:
		return domain.ChurnActive
	}
}

// applyLifetime fills lifespan, idle days, churn risk, and the anchor
// product for every customer.
func applyLifetime(rows []domain.EnrichedOrderLine, custs []*customer, ref time.Time, meanInterval float64, t churnThresholds) {
	for _, c := range custs {
		if !c.firstDate.IsZero() && !c.lastDate.IsZero() {
			c.lifespanDays = int(c.lastDate.Sub(c.firstDate).Hours() / 24)
		}
		if !c.lastDate.IsZero() && !ref.IsZero() {
			c.idleDays = int(ref.Sub(c.lastDate).Hours() / 24)
		}
		c.churnRisk = classifyChurn(c.idleDays, meanInterval, t)

		anchorLine := c.firstLine
		if anchorLine == -1 {
			// No dated lines; fall back to the first line seen.
			anchorLine = c.lineIdx[0]
		}
		c.anchor = rows[anchorLine].ProductName
	}
}
