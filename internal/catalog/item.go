package catalog

import "errors"

// ErrUnavailable marks a provider-level fetch failure. It aborts the whole
// digest invocation, unlike per-item enrichment failures which degrade.
var ErrUnavailable = errors.New("catalog source unavailable")

// Kind distinguishes the catalog record families marquee digests.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Link is a secondary media link attached to a catalog record, e.g. a
// YouTube trailer entry.
type Link struct {
	Site string
	Type string
	Key  string
}

// RawItem is an unprocessed catalog record. Immutable once produced by the
// source; enrichment copies it forward rather than mutating it.
type RawItem struct {
	ID          int64
	Kind        Kind
	Title       string
	Summary     string
	Language    string
	PosterPath  string
	ReleaseDate string
	Rating      float64
	VoteCount   int64
	Genres      []string
	Links       []Link
}

// Query bounds a day lookup against the source.
type Query struct {
	Kind   Kind
	Day    string // YYYY-MM-DD
	Region string
	Limit  int
}

// maxQueryLimit caps how many records a single source call may return.
const maxQueryLimit = 10
