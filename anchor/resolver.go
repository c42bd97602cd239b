// Package anchor locates the original-text range a quoted evidence snippet
// refers to inside a normalized document, or reports that no reliable match
// exists.
//
// Resolution is a pure, synchronous computation over the immutable normalized
// document, so a single normalize.Doc can be shared by any number of
// concurrent Resolve calls. The cascade runs three strategies in order, each
// only if the previous one produced no accepted candidate:
//
//  1. exact containment of the normalized snippet
//  2. anchored-prefix matching with keyword verification
//  3. keyword-density sliding window
//
// "Not found" is the expected outcome for hallucinated citations or snippets
// checked against the wrong document; it is never an error.
package anchor

import (
	"strings"
	"unicode/utf8"

	"github.com/sashaagafonoff/anchorkit/normalize"
)

// Result is the resolver's verdict. When Matched is true, [Start, End) is a
// non-empty byte range of the original document text; otherwise Start and End
// are zero.
type Result struct {
	Matched bool
	Start   int
	End     int
}

// Unmatched is the zero Result, returned whenever no stage produces an
// accepted candidate.
var Unmatched = Result{}

// Stats counts the work each stage performed during one resolution. Useful for
// asserting that cheaper stages short-circuit the cascade.
type Stats struct {
	ExactChecks      int
	PrefixCandidates int
	WindowCandidates int
}

// candidate is a byte range in normalized-document coordinates. Candidates
// never leave the resolver; accepted ones are translated through the position
// map first.
type candidate struct {
	start, end int
}

// Resolve anchors snippet inside doc.
func Resolve(doc *normalize.Doc, snippet string, opts Options) Result {
	res, _ := ResolveWithStats(doc, snippet, opts)
	return res
}

// ResolveWithStats is Resolve plus per-stage candidate counters.
func ResolveWithStats(doc *normalize.Doc, snippet string, opts Options) (Result, Stats) {
	var stats Stats
	if doc == nil || doc.Text == "" {
		return Unmatched, stats
	}
	snip := normalize.Snippet(snippet)
	if snip == "" {
		return Unmatched, stats
	}
	o := opts.withDefaults()

	// Stage 1: an exact substring match is definitionally correct, no keyword
	// verification needed.
	stats.ExactChecks++
	if idx := strings.Index(doc.Text, snip); idx >= 0 {
		return translate(doc, candidate{start: idx, end: idx + len(snip)}), stats
	}

	keywords := extractKeywords(snip, o.MinKeywordRunes)

	if c, ok := matchPrefix(doc.Text, snip, keywords, o, &stats); ok {
		return translate(doc, c), stats
	}

	if c, ok := matchWindow(doc.Text, snip, keywords, o, &stats); ok {
		return translate(doc, c), stats
	}

	return Unmatched, stats
}

// matchPrefix implements stage 2: anchor on the snippet's leading characters,
// extend each occurrence to a plausible sentence boundary, and verify by
// keyword density. Longer prefixes are tried first; the first prefix length
// that yields an accepted candidate wins.
func matchPrefix(text, snip string, keywords []string, o Options, stats *Stats) (candidate, bool) {
	for _, plen := range o.PrefixLengths {
		if plen <= 0 || len(snip) <= plen {
			continue
		}
		prefix := snip[:runeFloor(snip, plen)]

		best := candidate{}
		bestRatio := 0.0
		found := false

		// Enumerate every occurrence: boilerplate phrases can repeat, and the
		// highest-scoring (earliest on ties) region should win.
		from := 0
		for {
			i := strings.Index(text[from:], prefix)
			if i < 0 {
				break
			}
			start := from + i
			from = start + 1

			end := regionEnd(text, start, len(snip), o.SentenceSlack)
			stats.PrefixCandidates++
			ratio := keywordRatio(text[start:end], keywords)
			if ratio >= o.PrefixMinRatio && ratio > bestRatio {
				best = candidate{start: start, end: end}
				bestRatio = ratio
				found = true
			}
		}

		if found {
			return best, true
		}
	}
	return candidate{}, false
}

// regionEnd approximates "extend to the end of the sentence the snippet was
// drawn from": scan for a period followed by a space (or end of text) within
// slack bytes of the expected end. Without a boundary the region defaults to
// the snippet's own length.
func regionEnd(text string, start, snipLen, slack int) int {
	expected := start + snipLen
	if expected > len(text) {
		expected = len(text)
	}

	low := expected - slack
	if low < start {
		low = start
	}
	limit := expected + slack
	if limit > len(text) {
		limit = len(text)
	}

	for j := low; j < limit; j++ {
		if text[j] != '.' {
			continue
		}
		if j+1 >= len(text) || text[j+1] == ' ' {
			return j + 1
		}
	}
	return runeFloor(text, expected)
}

// matchWindow implements stage 3: slide a slack-extended window across the
// document and keep the densest one. Snippets with too few keywords are not
// reliably anchorable this way and are rejected up front.
func matchWindow(text, snip string, keywords []string, o Options, stats *Stats) (candidate, bool) {
	if len(keywords) < o.MinWindowKeywords {
		return candidate{}, false
	}

	winLen := len(snip) + o.WindowSlack
	step := winLen / 4
	if step < o.MinStep {
		step = o.MinStep
	}

	best := candidate{}
	bestRatio := 0.0
	found := false

	for start := 0; start < len(text); start += step {
		s := runeFloor(text, start)
		e := start + winLen
		if e > len(text) {
			e = len(text)
		} else {
			e = runeFloor(text, e)
		}
		stats.WindowCandidates++
		// Strict greater-than keeps the earliest window on ties, which makes
		// results deterministic and favors the first plausible citation over
		// later repeated boilerplate.
		if ratio := keywordRatio(text[s:e], keywords); ratio > bestRatio {
			best = candidate{start: s, end: e}
			bestRatio = ratio
			found = true
		}
	}

	if !found || bestRatio < o.WindowMinRatio {
		return candidate{}, false
	}
	return best, true
}

// translate maps an accepted normalized-coordinate candidate back to original
// text coordinates. A range that collapses or inverts after mapping is not a
// usable result and is reported Unmatched.
func translate(doc *normalize.Doc, c candidate) Result {
	if c.start < 0 || c.start >= len(doc.Map) || c.end <= c.start {
		return Unmatched
	}
	start := doc.Map[c.start]
	end := doc.OriginalLen
	if c.end < len(doc.Map) {
		end = doc.Map[c.end]
	}
	if end <= start {
		return Unmatched
	}
	return Result{Matched: true, Start: start, End: end}
}

// runeFloor backs i up to the nearest rune boundary so byte arithmetic on
// lengths and steps never slices mid-rune.
func runeFloor(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
