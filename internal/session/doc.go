// Package session holds committed enrichment results for later paginated
// reads. A session is immutable after commit: navigation callbacks observe
// exactly the snapshot that was announced, regardless of later runs.
//
// The store is deliberately not an LRU. Eviction order is commit time, not
// access time, so a heavily-browsed old digest still ages out on schedule
// while a fresh one survives untouched.
package session
