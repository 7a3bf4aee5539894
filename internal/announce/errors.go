package announce

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable: the catalog could not serve a run; fatal for
	// the invocation and reported to the requesting chat as "try later".
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSessionExpired: navigation referenced an evicted or unknown
	// session; the user is asked to request the digest again.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidToken: callback data failed to decode; a protocol error,
	// not user-recoverable state.
	ErrInvalidToken = errors.New("invalid token")
	// ErrDeliveryFailed: nothing reached one destination; logged and
	// skipped, never aborts the remaining destinations.
	ErrDeliveryFailed = errors.New("delivery failed")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrDeliveryFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "announce failure"
	}
	return strings.Join(parts, ": ")
}
