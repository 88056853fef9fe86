package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"orderlens/pkg/contracts/domain"
)

const (
	exportFilePrefix = "sales_dashboard_final_"
	exportTimeLayout = "2006-01-02 15:04:05"
)

// ExportFilename returns the dated export file name, e.g.
// "sales_dashboard_final_20260831.csv".
func ExportFilename(now time.Time) string {
	return exportFilePrefix + now.Format("20060102") + ".csv"
}

var enrichedHeader = []string{
	"order_id", "product_code", "product_name", "customer_id",
	"channel", "seller", "member_type",
	"ordered_at", "paid_at", "ready_at",
	"paid_amount", "supply_cost", "cancelled_amount", "coupon_amount", "point_amount",
	"address", "quantity", "source_file",
	"gross_profit", "margin", "total_discount", "net_revenue",
	"unit_price", "price_band", "discount_rate",
	"weight_tag", "grade_tag", "region",
	"order_weekday", "order_hour", "is_weekend", "lead_time_days",
	"customer_type", "rfm_segment", "cohort_month", "cohort_offset",
	"purchase_interval", "churn_risk", "anchor_product", "turnover_index",
}

var profileHeader = []string{
	"customer_id",
	"recency_days", "frequency", "monetary",
	"r_score", "f_score", "m_score", "rfm_total", "segment",
	"first_month", "lifespan_days", "purchase_count", "cumulative_revenue",
	"mean_interval", "idle_days", "churn_risk", "anchor_product",
}

// WriteEnriched writes the full enriched table through an already-encoded
// csv.Writer.
func WriteEnriched(w *csv.Writer, rows []domain.EnrichedOrderLine) error {
	if err := w.Write(enrichedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.OrderID, row.ProductCode, row.ProductName, row.CustomerID,
			row.Channel, row.Seller, row.MemberType,
			formatTime(row.OrderedAt), formatTime(row.PaidAt), formatTime(row.ReadyAt),
			formatFloat(row.PaidAmount), formatFloat(row.SupplyCost),
			formatFloat(row.CancelledAmount), formatFloat(row.CouponAmount),
			formatFloat(row.PointAmount),
			row.Address, strconv.FormatInt(row.Quantity, 10), row.SourceFile,
			formatFloat(row.GrossProfit), formatFloat(row.Margin),
			formatFloat(row.TotalDiscount), formatFloat(row.NetRevenue),
			formatFloat(row.UnitPrice), row.PriceBand, formatFloat(row.DiscountRate),
			row.WeightTag, row.GradeTag, row.Region,
			row.OrderWeekday.String(), strconv.Itoa(row.OrderHour),
			strconv.FormatBool(row.IsWeekend), strconv.Itoa(row.LeadTimeDays),
			row.CustomerType, row.RFMSegment, row.CohortMonth,
			strconv.Itoa(row.CohortOffset),
			strconv.Itoa(row.PurchaseInterval), row.ChurnRisk, row.AnchorProduct,
			formatFloat(row.TurnoverIndex),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteProfiles writes the per-customer profile table.
func WriteProfiles(w *csv.Writer, profiles []domain.CustomerProfile) error {
	if err := w.Write(profileHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range profiles {
		record := []string{
			p.CustomerID,
			strconv.Itoa(p.RecencyDays), strconv.Itoa(p.Frequency), formatFloat(p.Monetary),
			strconv.Itoa(p.RScore), strconv.Itoa(p.FScore), strconv.Itoa(p.MScore),
			strconv.Itoa(p.RFMTotal), p.Segment,
			p.FirstMonth, strconv.Itoa(p.LifespanDays), strconv.Itoa(p.PurchaseCount),
			formatFloat(p.CumulativeRevenue),
			formatFloat(p.MeanInterval), strconv.Itoa(p.IdleDays), p.ChurnRisk,
			p.AnchorProduct,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	return w.Error()
}

// formatTime renders a timestamp for CSV, with the zero time as an empty
// cell.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportTimeLayout)
}

// formatFloat renders a float without trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportToFile writes the enriched table to the dated export file under
// dir and returns the full path. The file is written atomically via a
// temp file so a failed export never leaves a truncated CSV behind.
func ExportToFile(ds *domain.Dataset, dir string, enc Encoding, now time.Time) (string, error) {
	if ds.Empty() {
		return "", fmt.Errorf("no data to export")
	}

	path := filepath.Join(dir, ExportFilename(now))
	tmp, err := os.CreateTemp(dir, "export-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w, err := NewCSVWriter(tmp, enc)
	if err != nil {
		tmp.Close()
		return "", err
	}
	if err := WriteEnriched(w, ds.Lines); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return path, nil
}
