package textnormalize

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Heavy normalizes text for drift-tolerant comparison of extracted quotes:
// - Unicode NFKC
// - transliteration to ASCII (best-effort)
// - lowercase
// - punctuation collapse to spaces
// - whitespace collapse
//
// This is far more aggressive than the anchoring normalizer: it destroys the
// positional correspondence with the source text, so it is only suitable for
// equality-style comparisons (did a resolved range reproduce the expected
// quote?), never for anchoring itself.
func Heavy(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = norm.NFKC.String(s)
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}

	return strings.TrimSpace(b.String())
}
