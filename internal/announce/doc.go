// Package announce orchestrates digest runs: fetch raw releases, enrich
// them under a deadline, commit a pagination session, and deliver the first
// page to every subscriber. It also serves navigation callbacks against
// committed sessions. Failure containment follows one rule: only a source
// fetch failure aborts a run; everything below degrades per item or per
// destination.
package announce
