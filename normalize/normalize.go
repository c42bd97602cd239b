// Package normalize canonicalizes document and snippet text so that evidence
// anchoring can compare the two despite PDF extraction drift: ligatures, smart
// quotes, en/em dashes, ellipses, form feeds and arbitrary whitespace runs.
//
// Documents additionally get a position map from every normalized byte back to
// the original byte offset that produced it, so a match found in normalized
// coordinates can be translated into a highlightable range of the original
// text.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Doc is a document in canonical comparable form.
//
// Text is lowercase, whitespace-collapsed and punctuation-canonicalized.
// Map has exactly one entry per byte of Text, holding the original-text byte
// offset that produced it; expanded runes (ligatures, ellipsis) repeat the
// source offset for every emitted byte, so entries are non-decreasing.
// OriginalLen is the byte length of the raw text the Doc was built from.
//
// A Doc is immutable once built and safe to share across any number of
// concurrent anchor resolutions.
type Doc struct {
	Text        string
	Map         []int
	OriginalLen int
}

// Document normalizes raw document text and builds its position map.
//
// It never fails: empty or whitespace-only input yields an empty Doc.
func Document(raw string) *Doc {
	text, m := normalize(raw, true)
	return &Doc{Text: text, Map: m, OriginalLen: len(raw)}
}

// Snippet normalizes snippet text. Snippets are only used as search needles,
// so no position map is kept.
func Snippet(raw string) string {
	text, _ := normalize(raw, false)
	return text
}

func normalize(raw string, withMap bool) (string, []int) {
	var b strings.Builder
	b.Grow(len(raw))

	var m []int
	if withMap {
		m = make([]int, 0, len(raw))
	}

	// Whitespace runs collapse to one space carrying the offset of the first
	// whitespace rune in the run. The space is held back until the next
	// non-space rune so leading and trailing whitespace never get emitted.
	spacePending := false
	spaceOffset := 0

	emit := func(s string, offset int) {
		if spacePending {
			if b.Len() > 0 {
				b.WriteByte(' ')
				if withMap {
					m = append(m, spaceOffset)
				}
			}
			spacePending = false
		}
		b.WriteString(s)
		if withMap {
			for j := 0; j < len(s); j++ {
				m = append(m, offset)
			}
		}
	}

	for i, r := range raw {
		if rep, ok := replacements[r]; ok {
			emit(rep, i)
			continue
		}
		// Form feed is whitespace per unicode, so page breaks fold into the
		// surrounding run here.
		if unicode.IsSpace(r) {
			if !spacePending {
				spacePending = true
				spaceOffset = i
			}
			continue
		}
		lr := unicode.ToLower(r)
		if lr < utf8.RuneSelf {
			emit(string(byte(lr)), i)
		} else {
			emit(string(lr), i)
		}
	}

	return b.String(), m
}
