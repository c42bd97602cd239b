package anchor

import (
	"strings"
	"testing"

	"github.com/sashaagafonoff/anchorkit/normalize"
)

func TestResolve_ExactSentence(t *testing.T) {
	document := "We use Reinforcement Learning from Human Feedback (RLHF) to align the model. Unrelated sentence about cats."
	snippet := "We use Reinforcement Learning from Human Feedback (RLHF) to align the model."

	doc := normalize.Document(document)
	res, stats := ResolveWithStats(doc, snippet, Options{})
	if !res.Matched {
		t.Fatalf("expected match")
	}
	if res.Start != 0 {
		t.Fatalf("Start = %d, want 0", res.Start)
	}
	if wantEnd := strings.Index(document, " Unrelated"); res.End != wantEnd {
		t.Fatalf("End = %d, want %d", res.End, wantEnd)
	}
	if got := document[res.Start:res.End]; got != snippet {
		t.Fatalf("matched text = %q, want %q", got, snippet)
	}
	// Stage 1 succeeded, so the fuzzier stages must not have run.
	if stats.PrefixCandidates != 0 || stats.WindowCandidates != 0 {
		t.Fatalf("stages 2/3 ran after exact match: %+v", stats)
	}
}

func TestResolve_EllipsisAndDashDrift(t *testing.T) {
	document := "We keep …ﬁne–tuning the policy." // …ﬁne–tuning
	snippet := "...fine-tuning"

	doc := normalize.Document(document)
	res := Resolve(doc, snippet, Options{})
	if !res.Matched {
		t.Fatalf("expected match")
	}
	if got, want := document[res.Start:res.End], "…ﬁne–tuning"; got != want {
		t.Fatalf("matched text = %q, want %q", got, want)
	}
}

func TestResolve_QuoteInvariance(t *testing.T) {
	curly := "She said “controlled decoding” improves safety."
	straight := `She said "controlled decoding" improves safety.`

	// Curly document, straight snippet.
	if res := Resolve(normalize.Document(curly), `"controlled decoding"`, Options{}); !res.Matched {
		t.Fatalf("straight snippet did not match curly document")
	}
	// Straight document, curly snippet.
	if res := Resolve(normalize.Document(straight), "“controlled decoding”", Options{}); !res.Matched {
		t.Fatalf("curly snippet did not match straight document")
	}
}

func TestResolve_WhitespaceInvariance(t *testing.T) {
	document := "Robustness checks rely on adversarial probing of the reward model."
	snippet := "adversarial\n\t probing   of the\nreward model"

	res := Resolve(normalize.Document(document), snippet, Options{})
	if !res.Matched {
		t.Fatalf("expected match despite reflowed whitespace")
	}
	if got := document[res.Start:res.End]; got != "adversarial probing of the reward model" {
		t.Fatalf("matched text = %q", got)
	}
}

func TestResolve_PrefixStageTranscriptionDrift(t *testing.T) {
	// Snippet is a near-exact quote with one word changed mid-sentence: the
	// 80-byte prefix contains the drifted word and fails, the 40-byte prefix
	// anchors, and keyword verification accepts the sentence-bounded region.
	document := "The alignment team evaluated constitutional feedback signals across every deployment checkpoint before release. Cats are unrelated."
	snippet := "The alignment team evaluated constitutional feedback signals across every production checkpoint before release."

	doc := normalize.Document(document)
	res, stats := ResolveWithStats(doc, snippet, Options{})
	if !res.Matched {
		t.Fatalf("expected stage-2 match")
	}
	if stats.PrefixCandidates == 0 {
		t.Fatalf("expected stage 2 to evaluate candidates, stats = %+v", stats)
	}
	if stats.WindowCandidates != 0 {
		t.Fatalf("stage 3 ran after stage-2 acceptance: %+v", stats)
	}
	if res.Start != 0 {
		t.Fatalf("Start = %d, want 0", res.Start)
	}
	wantEnd := strings.Index(document, " Cats")
	if res.End != wantEnd {
		t.Fatalf("End = %d, want %d (matched %q)", res.End, wantEnd, document[res.Start:res.End])
	}
}

func TestResolve_WindowStageLeadingDrift(t *testing.T) {
	// The drift is at the start of the snippet, so both anchored prefixes
	// fail and only the keyword-density window can place it.
	document := "Reviewers confirmed that gradient checkpointing reduces catastrophic forgetting across finetuning runs in practice."
	snippet := "Evaluators confirmed that gradient checkpointing reduces catastrophic forgetting."

	doc := normalize.Document(document)
	res, stats := ResolveWithStats(doc, snippet, Options{})
	if !res.Matched {
		t.Fatalf("expected stage-3 match")
	}
	if stats.WindowCandidates == 0 {
		t.Fatalf("expected stage 3 to evaluate windows, stats = %+v", stats)
	}
	if res.Start != 0 {
		t.Fatalf("Start = %d, want 0", res.Start)
	}
	if res.End != len(document) {
		t.Fatalf("End = %d, want %d", res.End, len(document))
	}
}

func TestResolve_StopWordSnippetUnmatched(t *testing.T) {
	document := "Completely different text about gardening techniques and soil quality measurements."
	snippet := "the model is trained"

	res, stats := ResolveWithStats(normalize.Document(document), snippet, Options{})
	if res.Matched {
		t.Fatalf("expected Unmatched, got %+v", res)
	}
	// Too short for stage 2, too few keywords for stage 3.
	if stats.PrefixCandidates != 0 || stats.WindowCandidates != 0 {
		t.Fatalf("fuzzy stages ran for unanchorable snippet: %+v", stats)
	}
}

func TestResolve_NegativeControl(t *testing.T) {
	document := "Completely different text about gardening techniques and soil quality measurements."
	snippet := "quantum entanglement spectroscopy reveals hidden photon correlations"

	res := Resolve(normalize.Document(document), snippet, Options{})
	if res.Matched {
		t.Fatalf("expected Unmatched for foreign snippet, got %+v", res)
	}
}

func TestResolve_EmptyInputs(t *testing.T) {
	doc := normalize.Document("some document text")
	if res := Resolve(doc, "", Options{}); res.Matched {
		t.Fatalf("empty snippet matched")
	}
	if res := Resolve(doc, " \n\t ", Options{}); res.Matched {
		t.Fatalf("whitespace snippet matched")
	}
	if res := Resolve(normalize.Document(""), "text", Options{}); res.Matched {
		t.Fatalf("empty document matched")
	}
	if res := Resolve(nil, "text", Options{}); res.Matched {
		t.Fatalf("nil document matched")
	}
}

func TestResolve_PathologicalInputsDoNotPanic(t *testing.T) {
	doc := normalize.Document("tiny doc")
	long := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 200)
	if res := Resolve(doc, long, Options{}); res.Matched {
		t.Fatalf("oversized snippet matched tiny doc")
	}

	// Non-ASCII document with byte lengths that do not line up with rune
	// counts; must not slice mid-rune anywhere.
	uni := normalize.Document(strings.Repeat("日本語のテキスト désalignement café ", 40))
	if res := Resolve(uni, "désalignement café désalignement", Options{}); !res.Matched {
		t.Fatalf("expected match inside multibyte document")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	document := strings.Repeat("Boilerplate header for every page. ", 3) +
		"The actual finding appears once with unique terminology here. " +
		strings.Repeat("Boilerplate footer for every page. ", 3)
	snippet := "The actual finding appears once with unique terminology here."

	doc := normalize.Document(document)
	first := Resolve(doc, snippet, Options{})
	for i := 0; i < 10; i++ {
		if got := Resolve(doc, snippet, Options{}); got != first {
			t.Fatalf("run %d: result %+v != first %+v", i, got, first)
		}
	}
	if !first.Matched {
		t.Fatalf("expected match")
	}
}

func TestResolve_RoundTripNormalization(t *testing.T) {
	document := "  The ﬁnal   report… said “alignment tax” is—at most—modest. "
	doc := normalize.Document(document)

	snippets := []string{
		"The ﬁnal   report",
		"said “alignment tax”",
		"is—at most—modest.",
	}
	for _, snippet := range snippets {
		res := Resolve(doc, snippet, Options{})
		if !res.Matched {
			t.Fatalf("snippet %q did not match", snippet)
		}
		got := normalize.Snippet(document[res.Start:res.End])
		want := normalize.Snippet(snippet)
		if got != want {
			t.Fatalf("round trip: normalized range %q != normalized snippet %q", got, want)
		}
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := (&Options{}).withDefaults()
	if len(o.PrefixLengths) != 2 || o.PrefixLengths[0] != 80 || o.PrefixLengths[1] != 40 {
		t.Fatalf("PrefixLengths = %v", o.PrefixLengths)
	}
	if o.PrefixMinRatio != 0.35 || o.WindowMinRatio != 0.5 {
		t.Fatalf("ratios = %v / %v", o.PrefixMinRatio, o.WindowMinRatio)
	}
	if o.WindowSlack != 40 || o.MinStep != 20 || o.MinWindowKeywords != 3 {
		t.Fatalf("window params = %+v", o)
	}
}
