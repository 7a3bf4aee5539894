// Package catalog models the external metadata provider that supplies raw
// release records. The TMDB-backed client answers bounded day queries
// (digital movie releases, series premieres, this-day-in-history lookups)
// and attaches the secondary video links the enrichment pipeline mines for
// trailers. Provider failures surface as ErrUnavailable; everything past the
// fetch is the pipeline's concern.
package catalog
