package domain

import (
	"time"
)

// Sentinel values used when a derived feature cannot be computed.
const (
	// TagUnclassified marks a weight, grade, or region that no pattern matched.
	TagUnclassified = "unclassified"
	// NotComputable marks customer-level features when the source files carry
	// no customer contact column.
	NotComputable = "not computable"
)

// Customer type labels derived from distinct order counts.
const (
	CustomerTypeNew    = "new"
	CustomerTypeRepeat = "repeat"
)

// RFM segment labels assigned from the composite R+F+M total.
const (
	SegmentVIP            = "VIP"
	SegmentHighValue      = "high-value"
	SegmentDeveloping     = "developing"
	SegmentNeedsAttention = "needs attention"
)

// Churn risk labels relative to the dataset mean positive purchase interval.
const (
	ChurnActive       = "active"
	ChurnCaution      = "caution"
	ChurnAtRisk       = "at risk"
	ChurnFullyChurned = "fully churned"
)

// OrderLine is a single raw order record as read from a source file.
// One physical row corresponds to one product within one order.
type OrderLine struct {
	OrderID         string    `json:"order_id"`
	ProductCode     string    `json:"product_code"`
	ProductName     string    `json:"product_name"`
	CustomerID      string    `json:"customer_id,omitempty"`
	Channel         string    `json:"channel"`
	Seller          string    `json:"seller"`
	MemberType      string    `json:"member_type"`
	OrderedAt       time.Time `json:"ordered_at"`
	PaidAt          time.Time `json:"paid_at"`
	ReadyAt         time.Time `json:"ready_at"`
	PaidAmount      float64   `json:"paid_amount"`
	SupplyCost      float64   `json:"supply_cost"`
	CancelledAmount float64   `json:"cancelled_amount"`
	CouponAmount    float64   `json:"coupon_amount"`
	PointAmount     float64   `json:"point_amount"`
	Address         string    `json:"address"`
	Quantity        int64     `json:"quantity"`
	SourceFile      string    `json:"source_file"`
}

// Key returns the composite deduplication key for the line.
// Duplicate keys collapse to the last-seen record during ingestion.
func (o OrderLine) Key() string {
	return o.OrderID + "\x1f" + o.ProductCode
}

// EnrichedOrderLine is an OrderLine plus every derived field produced by the
// pipeline. Row-level fields (features, financials, calendar) are stable per
// line; population-level fields (segment, cohort, churn) depend on the row set
// the derivation ran over.
type EnrichedOrderLine struct {
	OrderLine

	// Financial derivation
	GrossProfit   float64 `json:"gross_profit"`
	Margin        float64 `json:"margin"`
	TotalDiscount float64 `json:"total_discount"`
	NetRevenue    float64 `json:"net_revenue"`
	UnitPrice     float64 `json:"unit_price"`
	PriceBand     string  `json:"price_band"`
	DiscountRate  float64 `json:"discount_rate"`

	// Feature extraction
	WeightTag string `json:"weight_tag"`
	GradeTag  string `json:"grade_tag"`
	Region    string `json:"region"`

	// Calendar features
	OrderWeekday Weekday `json:"order_weekday"`
	OrderHour    int     `json:"order_hour"`
	IsWeekend    bool    `json:"is_weekend"`
	// LeadTimeDays is days between order and ready-for-shipment; -1 when the
	// ready date is missing or unparseable.
	LeadTimeDays int `json:"lead_time_days"`

	// Customer-level joins
	CustomerType string `json:"customer_type"`
	RFMSegment   string `json:"rfm_segment"`
	CohortMonth  string `json:"cohort_month"`
	CohortOffset int    `json:"cohort_offset"`
	// PurchaseInterval is days since the same customer's previous line in
	// chronological order; -1 for the customer's first line.
	PurchaseInterval int    `json:"purchase_interval"`
	ChurnRisk        string `json:"churn_risk"`
	AnchorProduct    string `json:"anchor_product"`

	// Product-level join
	TurnoverIndex float64 `json:"turnover_index"`
}

// Capabilities records which optional source columns were present at
// ingestion. Downstream stages consult these flags once instead of probing
// for columns; a missing capability degrades the dependent features to
// sentinel values rather than failing.
type Capabilities struct {
	HasCustomerID bool `json:"has_customer_id"`
	HasCoupon     bool `json:"has_coupon"`
	HasPoints     bool `json:"has_points"`
	HasReadyDate  bool `json:"has_ready_date"`
}

// Merge combines capabilities across source files. A capability is available
// when any file provides the column; rows from files without it simply carry
// empty values.
func (c Capabilities) Merge(other Capabilities) Capabilities {
	return Capabilities{
		HasCustomerID: c.HasCustomerID || other.HasCustomerID,
		HasCoupon:     c.HasCoupon || other.HasCoupon,
		HasPoints:     c.HasPoints || other.HasPoints,
		HasReadyDate:  c.HasReadyDate || other.HasReadyDate,
	}
}

// ProductStats holds per-product aggregates across the derived row set.
type ProductStats struct {
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
	Revenue       float64 `json:"revenue"`
	GrossProfit   float64 `json:"gross_profit"`
	// TurnoverIndex is average units per order with a denominator floor of 1.
	TurnoverIndex float64 `json:"turnover_index"`
}

// Dataset is one immutable derivation result: the enriched table plus the
// customer and product aggregates computed from it. A Dataset is never
// mutated after it is built; changed source files produce a new Dataset.
type Dataset struct {
	Signature   string    `json:"signature"`
	LoadedAt    time.Time `json:"loaded_at"`
	SourceFiles []string  `json:"source_files"`

	Capabilities Capabilities `json:"capabilities"`
	// ReferenceDate is the maximum order date in the row set; recency and
	// idle-day calculations are relative to it.
	ReferenceDate time.Time `json:"reference_date"`
	// MeanPurchaseInterval is the population mean of positive purchase
	// intervals, the base for churn thresholds.
	MeanPurchaseInterval float64 `json:"mean_purchase_interval"`

	Lines    []EnrichedOrderLine `json:"lines"`
	Profiles []CustomerProfile   `json:"profiles"`
	Products []ProductStats      `json:"products"`
}

// Empty reports whether the dataset holds no rows, the recognizable
// "no data" state for an empty or missing input directory.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Lines) == 0
}
