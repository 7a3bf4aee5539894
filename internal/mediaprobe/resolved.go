package mediaprobe

import "sync"

// Kind tags the outcome of media resolution.
type Kind int

const (
	// KindUnavailable means every variant exhausted its probes.
	KindUnavailable Kind = iota
	// KindPlaceholder marks media substituted with the static fallback image.
	KindPlaceholder
	// KindVerified means a candidate URL answered a liveness probe.
	KindVerified
)

func (k Kind) String() string {
	switch k {
	case KindVerified:
		return "verified"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unavailable"
	}
}

// Candidate is one concrete quality-variant URL derived from a media pointer.
type Candidate struct {
	URL     string
	Variant string
}

// Resolved is the outcome of resolving a media pointer. The delivery handle
// is captured lazily on first successful transmission and reused for every
// later render of the same item.
type Resolved struct {
	kind      Kind
	candidate Candidate

	mu     sync.Mutex
	handle string
}

// Verified builds a resolution around a probe-certified candidate.
func Verified(candidate Candidate) *Resolved {
	return &Resolved{kind: KindVerified, candidate: candidate}
}

// Placeholder builds a resolution for the static fallback image.
func Placeholder() *Resolved {
	return &Resolved{kind: KindPlaceholder}
}

// Unavailable builds a resolution for media no variant could serve.
func Unavailable() *Resolved {
	return &Resolved{kind: KindUnavailable}
}

// Kind returns the resolution outcome.
func (r *Resolved) Kind() Kind {
	if r == nil {
		return KindUnavailable
	}
	return r.kind
}

// Candidate returns the verified candidate. Only meaningful for KindVerified.
func (r *Resolved) Candidate() Candidate {
	if r == nil {
		return Candidate{}
	}
	return r.candidate
}

// Handle returns the captured delivery handle, or "" when none exists yet.
func (r *Resolved) Handle() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

// EnsureHandle returns the existing delivery handle or, when none has been
// captured yet, runs acquire to obtain one and stores it. The guard is held
// across acquire so concurrent deliveries of the same item never allocate
// two distinct handles. acquired reports whether this call performed the
// allocation.
func (r *Resolved) EnsureHandle(acquire func() (string, error)) (handle string, acquired bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handle != "" {
		return r.handle, false, nil
	}
	handle, err = acquire()
	if err != nil {
		return "", false, err
	}
	r.handle = handle
	return handle, true, nil
}
