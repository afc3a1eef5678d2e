// Package sources decodes the raw CSV exports into typed, per-source row
// variants. Aggregator films (RTMovie), external catalog films (IMDBMovie),
// and aggregator reviews (RTReview) each have their own struct; film fields
// are normalized on decode so the reconciliation step only sees canonical
// values.
package sources
