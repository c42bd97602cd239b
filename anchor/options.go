package anchor

// Options tune the matching cascade.
//
// The defaults reproduce the empirically chosen heuristics the cascade was
// validated with. Changing them shifts the recall/precision trade-off, so
// overrides should be deliberate.
type Options struct {
	// PrefixLengths are the anchored-prefix needle lengths tried in order by
	// stage 2. A length is only tried when the normalized snippet is longer
	// than it. Defaults to [80, 40].
	PrefixLengths []int

	// PrefixMinRatio is the minimum keyword-hit ratio a stage-2 region must
	// reach to become a candidate. Defaults to 0.35.
	PrefixMinRatio float64

	// SentenceSlack bounds the stage-2 scan for a sentence boundary around the
	// snippet's expected end. Defaults to 80.
	SentenceSlack int

	// WindowSlack extends the stage-3 sliding window beyond the snippet
	// length. Defaults to 40.
	WindowSlack int

	// WindowMinRatio is the minimum keyword-hit ratio the best stage-3 window
	// must reach to be accepted. Defaults to 0.5.
	WindowMinRatio float64

	// MinWindowKeywords is the minimum keyword count a snippet needs before
	// stage 3 is attempted at all. Defaults to 3.
	MinWindowKeywords int

	// MinStep floors the stage-3 window step size. The step is
	// max(MinStep, windowLength/4). Defaults to 20.
	MinStep int

	// MinKeywordRunes: tokens must be strictly longer than this to count as
	// keywords. Defaults to 3.
	MinKeywordRunes int
}

func (o *Options) withDefaults() Options {
	out := *o
	if len(out.PrefixLengths) == 0 {
		out.PrefixLengths = []int{80, 40}
	}
	if out.PrefixMinRatio <= 0 {
		out.PrefixMinRatio = 0.35
	}
	if out.SentenceSlack <= 0 {
		out.SentenceSlack = 80
	}
	if out.WindowSlack <= 0 {
		out.WindowSlack = 40
	}
	if out.WindowMinRatio <= 0 {
		out.WindowMinRatio = 0.5
	}
	if out.MinWindowKeywords <= 0 {
		out.MinWindowKeywords = 3
	}
	if out.MinStep <= 0 {
		out.MinStep = 20
	}
	if out.MinKeywordRunes <= 0 {
		out.MinKeywordRunes = 3
	}
	return out
}
