package enrich

import (
	"sort"
	"time"

	"orderlens/pkg/contracts/domain"
)

// customer accumulates per-customer state across the aggregation and
// scoring stages. Customers are held in first-appearance order so every
// stage is deterministic for a given row set.
type customer struct {
	id       string
	lineIdx  []int
	orderIDs map[string]struct{}
	monetary float64

	// Date aggregates exclude lines whose order date failed to parse.
	firstDate time.Time
	lastDate  time.Time
	firstLine int

	recencyDays  int
	rScore       int
	fScore       int
	mScore       int
	segment      string
	cohortMonth  string
	lifespanDays int
	meanInterval float64
	idleDays     int
	churnRisk    string
	anchor       string
}

func (c *customer) frequency() int {
	return len(c.orderIDs)
}

func (c *customer) rfmTotal() int {
	return c.rScore + c.fScore + c.mScore
}

// collectCustomers groups rows by customer identifier. Rows with a blank
// identifier are left out; their customer-level fields stay at the
// not-computable sentinel.
func collectCustomers(rows []domain.EnrichedOrderLine) []*customer {
	var custs []*customer
	byID := make(map[string]*customer)

	for i, row := range rows {
		if row.CustomerID == "" {
			continue
		}
		c, ok := byID[row.CustomerID]
		if !ok {
			c = &customer{
				id:        row.CustomerID,
				orderIDs:  make(map[string]struct{}),
				firstLine: -1,
			}
			byID[row.CustomerID] = c
			custs = append(custs, c)
		}

		c.lineIdx = append(c.lineIdx, i)
		c.orderIDs[row.OrderID] = struct{}{}
		c.monetary += row.PaidAmount

		if row.OrderedAt.IsZero() {
			continue
		}
		if c.firstDate.IsZero() || row.OrderedAt.Before(c.firstDate) {
			c.firstDate = row.OrderedAt
			c.firstLine = i
		}
		if row.OrderedAt.After(c.lastDate) {
			c.lastDate = row.OrderedAt
		}
	}

	return custs
}

// referenceDate is the latest order date across all rows. The zero time
// means no row carried a parseable date.
func referenceDate(rows []domain.EnrichedOrderLine) time.Time {
	var ref time.Time
	for _, row := range rows {
		if row.OrderedAt.After(ref) {
			ref = row.OrderedAt
		}
	}
	return ref
}

// quantileBuckets assigns each value a quintile bucket in 0..4 by stable
// ascending rank: bucket[i] = rank(i)*5/n. Ties keep input order, and when
// n is not divisible by 5 the remainder lands in the lower buckets.
func quantileBuckets(values []float64) []int {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	buckets := make([]int, n)
	for rank, i := range order {
		buckets[i] = rank * 5 / n
	}
	return buckets
}

// scoreRFM computes recency, frequency, and monetary scores for every
// customer and assigns the value segment. Recency scores invert the bucket
// so that more recent buyers score higher.
func scoreRFM(custs []*customer, ref time.Time) {
	if len(custs) == 0 {
		return
	}

	recency := make([]float64, len(custs))
	frequency := make([]float64, len(custs))
	monetary := make([]float64, len(custs))
	for i, c := range custs {
		if !c.lastDate.IsZero() && !ref.IsZero() {
			c.recencyDays = int(ref.Sub(c.lastDate).Hours() / 24)
		}
		recency[i] = float64(c.recencyDays)
		frequency[i] = float64(c.frequency())
		monetary[i] = c.monetary
	}

	rBuckets := quantileBuckets(recency)
	fBuckets := quantileBuckets(frequency)
	mBuckets := quantileBuckets(monetary)

	for i, c := range custs {
		c.rScore = 5 - rBuckets[i]
		c.fScore = fBuckets[i] + 1
		c.mScore = mBuckets[i] + 1
		c.segment = segmentFor(c.rfmTotal())
	}
}

// segmentFor maps a combined RFM score to its value segment.
func segmentFor(total int) string {
	switch {
	case total >= 13:
		return domain.SegmentVIP
	case total >= 10:
		return domain.SegmentHighValue
	case total >= 7:
		return domain.SegmentDeveloping
	default:
		return domain.SegmentNeedsAttention
	}
}

// applyCustomerFields writes the customer-level derivations back onto each
// customer's rows. Rows without a customer identifier get the sentinel.
func applyCustomerFields(rows []domain.EnrichedOrderLine, custs []*customer) {
	for i := range rows {
		if rows[i].CustomerID == "" {
			rows[i].CustomerType = domain.NotComputable
			rows[i].RFMSegment = domain.NotComputable
			rows[i].ChurnRisk = domain.NotComputable
			rows[i].AnchorProduct = domain.NotComputable
		}
	}

	for _, c := range custs {
		custType := domain.CustomerTypeNew
		if c.frequency() >= 2 {
			custType = domain.CustomerTypeRepeat
		}
		for _, i := range c.lineIdx {
			rows[i].CustomerType = custType
			rows[i].RFMSegment = c.segment
			rows[i].CohortMonth = c.cohortMonth
			rows[i].ChurnRisk = c.churnRisk
			rows[i].AnchorProduct = c.anchor
		}
	}
}

// buildProfiles materializes the per-customer profile slice in
// first-appearance order.
func buildProfiles(custs []*customer) []domain.CustomerProfile {
	profiles := make([]domain.CustomerProfile, 0, len(custs))
	for _, c := range custs {
		profiles = append(profiles, domain.CustomerProfile{
			CustomerID:        c.id,
			RecencyDays:       c.recencyDays,
			Frequency:         c.frequency(),
			Monetary:          c.monetary,
			RScore:            c.rScore,
			FScore:            c.fScore,
			MScore:            c.mScore,
			RFMTotal:          c.rfmTotal(),
			Segment:           c.segment,
			FirstMonth:        c.cohortMonth,
			LifespanDays:      c.lifespanDays,
			PurchaseCount:     len(c.lineIdx),
			CumulativeRevenue: c.monetary,
			MeanInterval:      c.meanInterval,
			IdleDays:          c.idleDays,
			ChurnRisk:         c.churnRisk,
			AnchorProduct:     c.anchor,
		})
	}
	return profiles
}
