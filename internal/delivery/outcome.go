package delivery

// Status classifies how a delivery ended.
type Status int

const (
	// StatusSent means the item went out with its verified media intact.
	StatusSent Status = iota
	// StatusSentDegraded means the caption arrived but the media did not.
	StatusSentDegraded
	// StatusFailed means nothing reached the destination.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusSentDegraded:
		return "sent-degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Degradation reasons annotated on non-Sent outcomes.
const (
	// ReasonMediaUnavailable: no usable media existed, the placeholder went out.
	ReasonMediaUnavailable = "media-unavailable"
	// ReasonMediaSendFailed: media sends failed, the caption went out as text.
	ReasonMediaSendFailed = "media-send-failed"
)

// Outcome reports a single item/destination delivery. Handle is set when the
// provider assigned (or reused) a durable media reference. Reason is empty
// for StatusSent.
type Outcome struct {
	Status  Status
	Handle  string
	Reason  string
	Message MessageRef
}
