package domain

// CustomerProfile is the per-customer behavioral profile derived from the
// current row set: RFM scores, lifetime value figures, and churn risk.
// Profiles exist only when the source files carry a customer contact column.
type CustomerProfile struct {
	CustomerID string `json:"customer_id"`

	// RFM inputs and scores. Recency is days since the customer's last order
	// relative to the dataset reference date; scores are 1-5 quantile ranks
	// over the current customer population.
	RecencyDays int     `json:"recency_days"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
	RScore      int     `json:"r_score"`
	FScore      int     `json:"f_score"`
	MScore      int     `json:"m_score"`
	RFMTotal    int     `json:"rfm_total"`
	Segment     string  `json:"segment"`

	// Lifetime value
	FirstMonth        string  `json:"first_month"`
	LifespanDays      int     `json:"lifespan_days"`
	PurchaseCount     int     `json:"purchase_count"`
	CumulativeRevenue float64 `json:"cumulative_revenue"`
	// MeanInterval is the mean gap in days between the customer's consecutive
	// lines; 0 when the customer has a single line.
	MeanInterval float64 `json:"mean_interval"`

	// Churn
	IdleDays  int    `json:"idle_days"`
	ChurnRisk string `json:"churn_risk"`

	AnchorProduct string `json:"anchor_product"`
}

// IsRepeat reports whether the customer placed more than one distinct order.
func (p CustomerProfile) IsRepeat() bool {
	return p.Frequency > 1
}
