// Package token encodes navigation state into the opaque string carried by
// a callback button. The wire form is versioned ("m1.<session>.<index>") so
// stale buttons from an older scheme fail cleanly instead of misrouting.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid marks callback data that is not a well-formed token. It is
// distinct from session expiry: an invalid token is a protocol error, an
// expired session is normal aging.
var ErrInvalid = errors.New("invalid navigation token")

// version prefixes every token. Bump it when the wire form changes.
const version = "m1"

// maxWireLen is the transport's callback-data ceiling.
const maxWireLen = 64

// Token addresses one item inside a committed session.
type Token struct {
	SessionKey string
	Index      int
}

// Encode renders the wire form. Session keys are UUIDs, so the result stays
// well under the transport limit.
func (t Token) Encode() string {
	return version + "." + t.SessionKey + "." + strconv.Itoa(t.Index)
}

// Decode parses wire data back into a Token. Any malformed, oversized, or
// wrong-version input yields ErrInvalid.
func Decode(data string) (Token, error) {
	if len(data) > maxWireLen {
		return Token{}, fmt.Errorf("%w: data exceeds %d bytes", ErrInvalid, maxWireLen)
	}
	parts := strings.Split(data, ".")
	if len(parts) != 3 {
		return Token{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalid, len(parts))
	}
	if parts[0] != version {
		return Token{}, fmt.Errorf("%w: unsupported version %q", ErrInvalid, parts[0])
	}
	if parts[1] == "" {
		return Token{}, fmt.Errorf("%w: empty session key", ErrInvalid)
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return Token{}, fmt.Errorf("%w: bad index %q", ErrInvalid, parts[2])
	}
	if index < 0 {
		return Token{}, fmt.Errorf("%w: negative index %d", ErrInvalid, index)
	}
	return Token{SessionKey: parts[1], Index: index}, nil
}
