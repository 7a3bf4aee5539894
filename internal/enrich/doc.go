// Package enrich fans raw catalog records through translation, media
// resolution, and trailer-link mining, producing the immutable enriched
// items a pagination session serves. Item fan-out is bounded to respect
// downstream rate limits; output always preserves input order. A sub-step
// failing degrades that field, never the item; items still in flight when
// the invocation deadline expires are abandoned so one slow record cannot
// hold up the rest of the day's releases.
package enrich
