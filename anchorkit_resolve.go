// Package anchorkit anchors quoted evidence snippets back into the source
// documents they claim to cite.
//
// The typical flow: normalize a document once with normalize.Document (or
// through a corpus.Cache when many documents are in play), then resolve each
// claimed snippet against it. Snippets that survived PDF extraction with
// ligatures, smart quotes, dashes or reflowed whitespace still anchor; snippets
// that are not verifiably present come back Unmatched.
package anchorkit

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sashaagafonoff/anchorkit/anchor"
	"github.com/sashaagafonoff/anchorkit/normalize"
)

// Resolve is the recommended entrypoint for anchoring a single snippet.
func Resolve(doc *normalize.Doc, snippet string, opts anchor.Options) anchor.Result {
	return anchor.Resolve(doc, snippet, opts)
}

type BatchOptions struct {
	// Anchor options forwarded to every resolution.
	Anchor anchor.Options

	// MaxConcurrent caps parallel resolutions. Defaults to 8.
	MaxConcurrent int
}

// ResolveAll anchors every snippet against one document concurrently.
//
// The document is normalized-once and immutable, so resolutions share it
// without locking. Results come back in snippet order; snippets that fail the
// LooksAnchorable pre-check are reported Unmatched without invoking the
// resolver.
func ResolveAll(ctx context.Context, doc *normalize.Doc, snippets []string, opts BatchOptions) ([]anchor.Result, error) {
	out := make([]anchor.Result, len(snippets))
	if doc == nil || len(snippets) == 0 {
		return out, nil
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, s := range snippets {
		if !LooksAnchorable(s) {
			continue
		}
		i, s := i, s
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out[i] = anchor.Resolve(doc, s, opts.Anchor)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
