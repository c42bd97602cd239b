package normalize

// replacements maps source runes to their canonical ASCII spellings.
//
// PDF-to-text conversion routinely emits typographic ligatures, smart quotes,
// en/em dashes and a single ellipsis rune where the quoted snippet carries the
// plain ASCII form (or the other way round). Every replacement is already
// lowercase, so replaced runes skip the lowercasing pass.
var replacements = map[rune]string{
	// Typographic ligatures.
	'ﬁ': "fi",  // ﬁ
	'ﬂ': "fl",  // ﬂ
	'ﬀ': "ff",  // ﬀ
	'ﬃ': "ffi", // ﬃ
	'ﬄ': "ffl", // ﬄ

	// Horizontal ellipsis.
	'…': "...",

	// Single quotes / apostrophes.
	'‘': "'", // ‘
	'’': "'", // ’
	'‚': "'", // ‚
	'‹': "'", // ‹
	'›': "'", // ›

	// Double quotes.
	'“': `"`, // “
	'”': `"`, // ”
	'„': `"`, // „

	// Dashes.
	'–': "-", // en dash
	'—': "-", // em dash
}
