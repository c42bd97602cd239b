package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashaagafonoff/anchorkit/anchor"
)

const evidenceTable = "evidence"

// InsertEvidence records a claimed citation against a document in the pending
// state and returns its row ID. Anchoring happens later (see the worker
// package) or synchronously by the host, via UpdateEvidenceAnchor.
func (s *Store) InsertEvidence(ctx context.Context, documentID int64, snippet, claim string) (int64, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("pool is required")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return 0, fmt.Errorf("invalid schema: %w", err)
	}
	if documentID <= 0 {
		return 0, fmt.Errorf("documentID is required")
	}
	if strings.TrimSpace(snippet) == "" {
		return 0, fmt.Errorf("snippet is required")
	}

	q := fmt.Sprintf(`
		INSERT INTO %s.%s (document_id, snippet, claim, status, anchor_start, anchor_end, created_at, updated_at)
		VALUES ($1, $2, $3, '%s', 0, 0, now(), now())
		RETURNING id
	`, qs, evidenceTable, AnchorPending)

	var id int64
	if err := s.pool.QueryRow(ctx, q, documentID, snippet, claim).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListEvidenceByDocument returns every evidence row claimed against a
// document, oldest first.
func (s *Store) ListEvidenceByDocument(ctx context.Context, documentID int64) ([]Evidence, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT id, document_id, snippet, claim, status, anchor_start, anchor_end, created_at, updated_at
		FROM %s.%s
		WHERE document_id = $1
		ORDER BY id ASC
	`, qs, evidenceTable)

	rows, err := s.pool.Query(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evidence
	for rows.Next() {
		var e Evidence
		if err := rows.Scan(
			&e.ID,
			&e.DocumentID,
			&e.Snippet,
			&e.Claim,
			&e.Status,
			&e.AnchorStart,
			&e.AnchorEnd,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateEvidenceAnchor writes a resolver verdict back onto an evidence row.
// Unmatched is stored as a terminal status with a zeroed range.
func (s *Store) UpdateEvidenceAnchor(ctx context.Context, id int64, res anchor.Result) error {
	if s.pool == nil {
		return fmt.Errorf("pool is required")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	if id <= 0 {
		return fmt.Errorf("evidence id is required")
	}

	status := AnchorUnmatched
	if res.Matched {
		status = AnchorMatched
	}

	q := fmt.Sprintf(`
		UPDATE %s.%s
		SET status = $2,
		    anchor_start = $3,
		    anchor_end = $4,
		    updated_at = now()
		WHERE id = $1
	`, qs, evidenceTable)

	_, err = s.pool.Exec(ctx, q, id, status, res.Start, res.End)
	return err
}
