package enrich

import (
	"time"

	"orderlens/pkg/contracts/domain"
)

// Config holds the tunable derivation parameters. Zero values are not
// usable; start from DefaultConfig.
type Config struct {
	// ChurnCautionMultiplier scales the mean purchase interval into the
	// idle-day boundary for the caution label. AtRisk and Churned follow
	// the same rule and must be strictly increasing.
	ChurnCautionMultiplier float64
	ChurnAtRiskMultiplier  float64
	ChurnChurnedMultiplier float64
	// FallbackIntervalDays substitutes for the mean purchase interval when
	// no customer has two dated purchases.
	FallbackIntervalDays float64
}

// DefaultConfig returns the standard derivation parameters.
func DefaultConfig() Config {
	return Config{
		ChurnCautionMultiplier: 1,
		ChurnAtRiskMultiplier:  2,
		ChurnChurnedMultiplier: 3,
		FallbackIntervalDays:   30,
	}
}

// Run executes the full pipeline over normalized order lines and returns
// a new dataset. Signature, load time, and source file list are the
// caller's to fill; Run only owns the derivation.
func Run(lines []domain.OrderLine, caps domain.Capabilities, cfg Config) *domain.Dataset {
	return Derive(EnrichRows(lines), caps, cfg)
}

// Derive executes the population-level stages over already row-enriched
// lines. The input slice is not modified; the returned dataset owns its
// own copy.
func Derive(rows []domain.EnrichedOrderLine, caps domain.Capabilities, cfg Config) *domain.Dataset {
	out := make([]domain.EnrichedOrderLine, len(rows))
	copy(out, rows)

	ds := &domain.Dataset{
		Capabilities:  caps,
		ReferenceDate: referenceDate(out),
		Lines:         out,
	}
	ds.Products = applyProducts(out)

	if !caps.HasCustomerID {
		// Without a customer column every customer-level feature degrades
		// to the sentinel and no profiles exist.
		for i := range out {
			out[i].CustomerType = domain.NotComputable
			out[i].RFMSegment = domain.NotComputable
			out[i].ChurnRisk = domain.NotComputable
			out[i].AnchorProduct = domain.NotComputable
		}
		ds.MeanPurchaseInterval = cfg.FallbackIntervalDays
		return ds
	}

	custs := collectCustomers(out)
	scoreRFM(custs, ds.ReferenceDate)
	applyCohorts(out, custs)
	ds.MeanPurchaseInterval = applyIntervals(out, custs, cfg.FallbackIntervalDays)
	applyLifetime(out, custs, ds.ReferenceDate, ds.MeanPurchaseInterval, churnThresholds{
		caution: cfg.ChurnCautionMultiplier,
		atRisk:  cfg.ChurnAtRiskMultiplier,
		churned: cfg.ChurnChurnedMultiplier,
	})
	applyCustomerFields(out, custs)
	ds.Profiles = buildProfiles(custs)

	return ds
}

// Rederive reruns the population-level stages over a filtered subset of an
// existing dataset, producing segment boundaries and churn thresholds
// relative to the subset. Row-level fields carry over unchanged.
func Rederive(parent *domain.Dataset, rows []domain.EnrichedOrderLine, cfg Config) *domain.Dataset {
	ds := Derive(rows, parent.Capabilities, cfg)
	ds.Signature = parent.Signature
	ds.LoadedAt = time.Now()
	ds.SourceFiles = parent.SourceFiles
	return ds
}
