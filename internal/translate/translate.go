// Package translate provides the best-effort summary translation used by the
// enrichment pipeline. Translation failures never fail an item; callers fall
// back to the original text.
package translate

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Translator converts text into the target language. Implementations are
// best-effort: on failure the caller substitutes the original text.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Noop returns the input unchanged. Used when translation is disabled.
type Noop struct{}

func (Noop) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// Needed reports whether text in sourceLang must be translated to reach
// targetLang. Empty text and already-matching languages skip the call.
func Needed(text, sourceLang, targetLang string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	src, err := language.Parse(strings.TrimSpace(sourceLang))
	if err != nil {
		return true
	}
	dst, err := language.Parse(strings.TrimSpace(targetLang))
	if err != nil {
		return false
	}
	srcBase, srcConf := src.Base()
	dstBase, dstConf := dst.Base()
	if srcConf == language.No || dstConf == language.No {
		return true
	}
	return srcBase != dstBase
}
