// Package enrich implements the derivation pipeline that turns normalized
// order lines into the enriched analytical dataset and per-customer
// behavioral profiles.
//
// Row-level stages (feature extraction, financial derivation, calendar
// features) depend only on the individual line. Population-level stages
// (customer aggregation, RFM scoring, cohort assignment, lifetime value,
// churn classification, product turnover) are pure functions of the full
// row set they run over: quantile boundaries and churn thresholds are
// relative to the current population and shift when the row set is
// filtered. Every derivation is a single full pass; there is no
// incremental update path.
package enrich
