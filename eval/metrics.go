package eval

// This package is intentionally minimal: it provides a small set of evaluation
// metrics that apps can use with their own hand-written anchoring cases.

import (
	"github.com/sashaagafonoff/anchorkit/anchor"
	"github.com/sashaagafonoff/anchorkit/internal/textnormalize"
)

// Overlap returns the number of bytes shared by two matched ranges.
func Overlap(a, b anchor.Result) int {
	if !a.Matched || !b.Matched {
		return 0
	}
	lo := a.Start
	if b.Start > lo {
		lo = b.Start
	}
	hi := a.End
	if b.End < hi {
		hi = b.End
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// IoU computes intersection-over-union of two matched ranges. Either side
// being unmatched scores 0.
func IoU(a, b anchor.Result) float64 {
	inter := Overlap(a, b)
	if inter == 0 {
		return 0.0
	}
	union := (a.End - a.Start) + (b.End - b.Start) - inter
	if union <= 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// MatchRate computes the fraction of cases where the resolver's binary
// accept/reject decision agrees with the expectation.
func MatchRate(got []anchor.Result, want []bool) float64 {
	if len(want) == 0 {
		return 1.0
	}
	n := len(got)
	if n > len(want) {
		n = len(want)
	}
	hit := 0
	for i := 0; i < n; i++ {
		if got[i].Matched == want[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(want))
}

// MeanIoU averages IoU over all cases expected to match. Unmatched results
// for those cases contribute 0.
func MeanIoU(got, want []anchor.Result) float64 {
	expected := 0
	var sum float64
	for i, w := range want {
		if !w.Matched {
			continue
		}
		expected++
		if i < len(got) {
			sum += IoU(got[i], w)
		}
	}
	if expected == 0 {
		return 1.0
	}
	return sum / float64(expected)
}

// QuoteMatches reports whether a resolved range reproduces the expected quote
// up to heavy normalization (transliteration, case, punctuation, whitespace).
// Conservative position mapping at expansion boundaries means the resolved
// range can differ from the quote by a few bytes while still being the right
// citation; heavy comparison absorbs that.
func QuoteMatches(document string, r anchor.Result, expected string) bool {
	if !r.Matched {
		return false
	}
	if r.Start < 0 || r.End > len(document) || r.End <= r.Start {
		return false
	}
	return textnormalize.Heavy(document[r.Start:r.End]) == textnormalize.Heavy(expected)
}
