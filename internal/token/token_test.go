package token_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"marquee/internal/token"
)

func TestTokenRoundTrip(t *testing.T) {
	key := uuid.NewString()
	original := token.Token{SessionKey: key, Index: 4}

	wire := original.Encode()
	if len(wire) > 64 {
		t.Fatalf("wire form %q exceeds the 64-byte callback limit", wire)
	}

	decoded, err := token.Decode(wire)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDecodeRejectsMalformedData(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"no separators", "m1"},
		{"too few segments", "m1.abc"},
		{"too many segments", "m1.abc.1.extra"},
		{"wrong version", "m2.abc.1"},
		{"empty session key", "m1..1"},
		{"non-numeric index", "m1.abc.one"},
		{"negative index", "m1.abc.-1"},
		{"oversized", "m1." + strings.Repeat("x", 70) + ".0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := token.Decode(tc.data); !errors.Is(err, token.ErrInvalid) {
				t.Fatalf("expected ErrInvalid for %q, got %v", tc.data, err)
			}
		})
	}
}

func TestDecodeAcceptsZeroIndex(t *testing.T) {
	decoded, err := token.Decode("m1.abc.0")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Index != 0 {
		t.Fatalf("expected index 0, got %d", decoded.Index)
	}
}
