package normalize

import "testing"

func TestDocument_Whitespace(t *testing.T) {
	doc := Document("  Hello   World  ")
	if doc.Text != "hello world" {
		t.Fatalf("Text = %q, want %q", doc.Text, "hello world")
	}
	if len(doc.Map) != len(doc.Text) {
		t.Fatalf("len(Map) = %d, want %d", len(doc.Map), len(doc.Text))
	}
	if doc.Map[0] != 2 {
		t.Fatalf("Map[0] = %d, want 2", doc.Map[0])
	}
	// Collapsed space carries the offset of the first whitespace in the run.
	if doc.Map[5] != 7 {
		t.Fatalf("Map[5] = %d, want 7", doc.Map[5])
	}
	if doc.Map[6] != 10 {
		t.Fatalf("Map[6] = %d, want 10", doc.Map[6])
	}
}

func TestDocument_LigatureExpansion(t *testing.T) {
	doc := Document("ﬁne") // ﬁne
	if doc.Text != "fine" {
		t.Fatalf("Text = %q, want %q", doc.Text, "fine")
	}
	want := []int{0, 0, 3, 4}
	for i, w := range want {
		if doc.Map[i] != w {
			t.Fatalf("Map[%d] = %d, want %d", i, doc.Map[i], w)
		}
	}
	if doc.OriginalLen != 5 {
		t.Fatalf("OriginalLen = %d, want 5", doc.OriginalLen)
	}
}

func TestDocument_PunctuationCanonicalization(t *testing.T) {
	doc := Document("“A–B…”") // “A–B…”
	if doc.Text != `"a-b..."` {
		t.Fatalf("Text = %q, want %q", doc.Text, `"a-b..."`)
	}
	want := []int{0, 3, 4, 7, 8, 8, 8, 11}
	if len(doc.Map) != len(want) {
		t.Fatalf("len(Map) = %d, want %d", len(doc.Map), len(want))
	}
	for i, w := range want {
		if doc.Map[i] != w {
			t.Fatalf("Map[%d] = %d, want %d", i, doc.Map[i], w)
		}
	}
}

func TestDocument_FormFeed(t *testing.T) {
	doc := Document("a\fb")
	if doc.Text != "a b" {
		t.Fatalf("Text = %q, want %q", doc.Text, "a b")
	}
}

func TestDocument_MapInvariants(t *testing.T) {
	raw := "  The ﬂow of… “text”\f\n across—pages ﬃx  "
	doc := Document(raw)
	if len(doc.Map) != len(doc.Text) {
		t.Fatalf("len(Map) = %d, want %d", len(doc.Map), len(doc.Text))
	}
	for i := 1; i < len(doc.Map); i++ {
		if doc.Map[i] < doc.Map[i-1] {
			t.Fatalf("Map not non-decreasing at %d: %d < %d", i, doc.Map[i], doc.Map[i-1])
		}
	}
	for i, off := range doc.Map {
		if off < 0 || off >= len(raw) {
			t.Fatalf("Map[%d] = %d out of range [0, %d)", i, off, len(raw))
		}
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \t\n\f ", want: ""},
		{name: "trim and collapse", input: "  a \n\t b  ", want: "a b"},
		{name: "lowercase", input: "RLHF Training", want: "rlhf training"},
		{name: "ligatures", input: "eﬀective ﬁne-tuning", want: "effective fine-tuning"},
		{name: "triple ligatures", input: "oﬃce baﬄed", want: "office baffled"},
		{name: "ellipsis", input: "wait… what", want: "wait... what"},
		{name: "curly quotes", input: "‘a’ “b”", want: `'a' "b"`},
		{name: "dashes", input: "a–b—c", want: "a-b-c"},
		{name: "non-ascii passthrough", input: "Café Déjà", want: "café déjà"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.input); got != tt.want {
				t.Fatalf("Snippet(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalization_EquatesDriftedForms(t *testing.T) {
	// Both directions: a plain-ASCII snippet must normalize identically to its
	// typographic document form, and vice versa.
	plain := `the "final" answer... is fine-tuning`
	fancy := "The  “ﬁnal” answer… is ﬁne—tuning"

	// The ligature and dash make the words differ; only quote/ellipsis and
	// whitespace match here.
	if Snippet(`the "final"`) != Snippet("The  “final”") {
		t.Fatalf("quote normalization diverged")
	}
	if Snippet(plain) != Snippet(fancy) {
		t.Fatalf("Snippet(%q) = %q; Snippet(%q) = %q; want equal",
			plain, Snippet(plain), fancy, Snippet(fancy))
	}
}
