package enrich

import (
	"orderlens/pkg/contracts/domain"
)

// EnrichRows computes every row-level derived field: financials, extracted
// features, and calendar features. Customer- and product-level fields are
// left at their zero values for Derive to fill.
func EnrichRows(lines []domain.OrderLine) []domain.EnrichedOrderLine {
	rows := make([]domain.EnrichedOrderLine, len(lines))

	for i, line := range lines {
		row := domain.EnrichedOrderLine{OrderLine: line}

		// Financial derivation. Gross profit is deliberately not clamped:
		// negative GP marks a loss line.
		row.GrossProfit = line.PaidAmount - line.SupplyCost
		row.Margin = margin(row.GrossProfit, line.PaidAmount)
		row.TotalDiscount = line.CouponAmount + line.PointAmount
		// Coupon and point redemptions are already reflected in the paid
		// amount; discount is tracked separately, not subtracted again.
		row.NetRevenue = line.PaidAmount
		if line.Quantity > 0 {
			row.UnitPrice = row.NetRevenue / float64(line.Quantity)
		}
		row.PriceBand = PriceBand(row.UnitPrice)
		row.DiscountRate = ratio(row.TotalDiscount, line.PaidAmount+row.TotalDiscount)

		// Feature extraction
		row.WeightTag = WeightTag(line.ProductName)
		row.GradeTag = GradeTag(line.ProductName)
		row.Region = Region(line.Address)

		// Calendar features
		if !line.OrderedAt.IsZero() {
			row.OrderWeekday = domain.WeekdayOf(line.OrderedAt)
			row.OrderHour = line.OrderedAt.Hour()
			row.IsWeekend = row.OrderWeekday.IsWeekend()
		}
		row.LeadTimeDays = -1
		if !line.OrderedAt.IsZero() && !line.ReadyAt.IsZero() {
			row.LeadTimeDays = int(line.ReadyAt.Sub(line.OrderedAt).Hours() / 24)
		}

		row.PurchaseInterval = -1
		rows[i] = row
	}

	return rows
}
