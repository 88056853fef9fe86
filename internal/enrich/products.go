package enrich

import (
	"sort"

	"orderlens/pkg/contracts/domain"
)

// applyProducts aggregates per-product stats over the rows, writes each
// row's turnover index, and returns the stats sorted by product name.
// Turnover is quantity sold per distinct order with the denominator
// floored at 1, so single-order products keep a meaningful index.
func applyProducts(rows []domain.EnrichedOrderLine) []domain.ProductStats {
	type productAgg struct {
		quantity    int64
		orderIDs    map[string]struct{}
		revenue     float64
		grossProfit float64
	}

	aggs := make(map[string]*productAgg)
	for _, row := range rows {
		agg, ok := aggs[row.ProductName]
		if !ok {
			agg = &productAgg{orderIDs: make(map[string]struct{})}
			aggs[row.ProductName] = agg
		}
		agg.quantity += row.Quantity
		agg.orderIDs[row.OrderID] = struct{}{}
		agg.revenue += row.PaidAmount
		agg.grossProfit += row.GrossProfit
	}

	turnover := make(map[string]float64, len(aggs))
	stats := make([]domain.ProductStats, 0, len(aggs))
	for name, agg := range aggs {
		orders := len(agg.orderIDs)
		denom := orders
		if denom < 1 {
			denom = 1
		}
		index := float64(agg.quantity) / float64(denom)
		turnover[name] = index

		stats = append(stats, domain.ProductStats{
			ProductName:   name,
			TotalQuantity: agg.quantity,
			OrderCount:    orders,
			Revenue:       agg.revenue,
			GrossProfit:   agg.grossProfit,
			TurnoverIndex: index,
		})
	}

	sort.Slice(stats, func(a, b int) bool {
		return stats[a].ProductName < stats[b].ProductName
	})

	for i := range rows {
		rows[i].TurnoverIndex = turnover[rows[i].ProductName]
	}

	return stats
}
