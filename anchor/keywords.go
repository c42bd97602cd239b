package anchor

import (
	"strings"
	"unicode/utf8"
)

// stopWords is the closed set of common English function words excluded from
// keyword extraction. Tokens this common carry no anchoring signal: they occur
// in nearly every region of nearly every document.
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "being": {}, "between": {}, "both": {},
	"but": {}, "by": {}, "can": {}, "could": {}, "did": {}, "do": {},
	"does": {}, "during": {}, "each": {}, "for": {}, "from": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "her": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "may": {}, "might": {}, "more": {}, "most": {}, "must": {},
	"no": {}, "nor": {}, "not": {}, "of": {}, "on": {}, "only": {},
	"or": {}, "other": {}, "our": {}, "over": {}, "shall": {}, "she": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "under": {}, "very": {}, "was": {}, "we": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "will": {}, "with": {}, "within": {}, "without": {},
	"would": {}, "you": {}, "your": {},
}

// extractKeywords splits a normalized snippet on whitespace and keeps tokens
// longer than minRunes that are not stop words. Punctuation attached to a
// token is kept: regions are scored by literal substring containment, so the
// token must stay exactly as it appears in normalized text.
func extractKeywords(normalized string, minRunes int) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) <= minRunes {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// keywordRatio scores a document region by the fraction of keywords that occur
// literally within it.
func keywordRatio(region string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(region, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}
