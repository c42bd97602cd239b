package pg

import "time"

// AnchorStatus tracks where a piece of evidence stands in the anchoring
// lifecycle.
type AnchorStatus string

const (
	// AnchorPending: not yet resolved against its document.
	AnchorPending AnchorStatus = "pending"
	// AnchorMatched: resolved to a verified range of the document.
	AnchorMatched AnchorStatus = "matched"
	// AnchorUnmatched: the resolver found no reliable range. This is a normal
	// terminal state (hallucinated citation, wrong document), not a failure.
	AnchorUnmatched AnchorStatus = "unmatched"
)

// Document is a stored source document in the curation dataset.
type Document struct {
	ID          int64
	SourceURL   string
	Content     string
	Fingerprint string // xxhash of Content, hex; changes whenever content is re-ingested
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Evidence is a claimed citation: a snippet a reviewer or extraction pipeline
// says appears in the document. AnchorStart/AnchorEnd are byte offsets into
// Document.Content and are only meaningful when Status is AnchorMatched.
type Evidence struct {
	ID          int64
	DocumentID  int64
	Snippet     string
	Claim       string
	Status      AnchorStatus
	AnchorStart int
	AnchorEnd   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
