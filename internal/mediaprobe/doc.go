// Package mediaprobe resolves raw media pointers into verified, displayable
// media references. Provider poster URLs are frequently stale or slow to
// propagate, so each quality variant is liveness-probed (bounded attempts,
// fixed timeout) before the pipeline commits to a user-facing send. Probe
// failure is a normal branch: when every variant is exhausted the resolver
// reports Unavailable and callers degrade to a placeholder.
//
// Delivery handles are provider-assigned references to already-transmitted
// media. They are captured lazily at first delivery, not during resolution,
// because handle creation needs a real send round trip.
package mediaprobe
