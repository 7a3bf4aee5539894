package enrich

import (
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/mediaprobe"
)

// Item is an enriched catalog record: the raw item plus translated summary,
// resolved media, and a parsed trailer link. Items are created once per
// enrichment pass and owned exclusively by the pagination session that
// contains them; only the media delivery handle mutates afterwards, behind
// its own guard.
type Item struct {
	Raw        catalog.RawItem
	Summary    string
	Media      *mediaprobe.Resolved
	TrailerURL string
}

// trailerSite and trailerType pin the secondary-link category the pipeline
// mines; the first matching entry wins.
const (
	trailerSite = "YouTube"
	trailerType = "Trailer"
)

// TrailerURL extracts the first recognized trailer link. Absence is not an
// error; the result is simply empty.
func TrailerURL(links []catalog.Link) string {
	for _, link := range links {
		if link.Type == trailerType && link.Site == trailerSite && strings.TrimSpace(link.Key) != "" {
			return "https://www.youtube.com/watch?v=" + link.Key
		}
	}
	return ""
}
