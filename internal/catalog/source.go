package catalog

import "context"

// Source supplies bounded lists of raw release records for a given day or
// anniversary. Implementations must never return more than ten records per
// call.
type Source interface {
	// DayReleases returns items whose digital release (movies) or premiere
	// (series) falls on the query day, most popular first.
	DayReleases(ctx context.Context, q Query) ([]RawItem, error)
	// YearReleases returns the top movies first released on monthDay
	// (MM-DD) of the given year.
	YearReleases(ctx context.Context, year int, monthDay string, limit int) ([]RawItem, error)
	// NextReleases returns items releasing after the query day, soonest
	// first, searching up to ninety days ahead.
	NextReleases(ctx context.Context, q Query) ([]RawItem, error)
}
