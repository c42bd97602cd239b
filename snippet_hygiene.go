package anchorkit

import (
	"strings"
	"unicode"
)

// LooksAnchorable reports whether a raw snippet is worth handing to the
// resolver at all. Empty, whitespace-only and symbol-only snippets (stray
// bullets, bare punctuation, page decoration picked up by extraction) can
// never anchor and are cheaper to reject here.
func LooksAnchorable(snippet string) bool {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return false
	}
	return hasAnyLetterOrNumber(snippet)
}

func hasAnyLetterOrNumber(q string) bool {
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
