package dataset

import (
	"time"

	"orderlens/pkg/contracts/domain"
)

// Filter selects a subset of enriched rows. Empty slice fields and zero
// times match everything, so the zero Filter passes all rows.
type Filter struct {
	From time.Time
	To   time.Time

	Channels    []string
	Sellers     []string
	MemberTypes []string
	Weights     []string
	Grades      []string
	Regions     []string
	Segments    []string
}

// IsZero reports whether the filter selects every row.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() &&
		len(f.Channels) == 0 && len(f.Sellers) == 0 &&
		len(f.MemberTypes) == 0 && len(f.Weights) == 0 &&
		len(f.Grades) == 0 && len(f.Regions) == 0 &&
		len(f.Segments) == 0
}

// Match reports whether a row passes the filter. Date bounds are
// inclusive; rows without a parseable order date fail any date-bounded
// filter.
func (f Filter) Match(row domain.EnrichedOrderLine) bool {
	if !f.From.IsZero() {
		if row.OrderedAt.IsZero() || row.OrderedAt.Before(f.From) {
			return false
		}
	}
	if !f.To.IsZero() {
		if row.OrderedAt.IsZero() || row.OrderedAt.After(f.To) {
			return false
		}
	}

	return matchOne(f.Channels, row.Channel) &&
		matchOne(f.Sellers, row.Seller) &&
		matchOne(f.MemberTypes, row.MemberType) &&
		matchOne(f.Weights, row.WeightTag) &&
		matchOne(f.Grades, row.GradeTag) &&
		matchOne(f.Regions, row.Region) &&
		matchOne(f.Segments, row.RFMSegment)
}

// Apply returns the rows passing the filter, preserving order.
func (f Filter) Apply(rows []domain.EnrichedOrderLine) []domain.EnrichedOrderLine {
	if f.IsZero() {
		out := make([]domain.EnrichedOrderLine, len(rows))
		copy(out, rows)
		return out
	}

	var out []domain.EnrichedOrderLine
	for _, row := range rows {
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

func matchOne(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
