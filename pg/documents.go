package pg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sashaagafonoff/anchorkit/corpus"
)

const documentsTable = "documents"

// Store persists the curation dataset (documents and their claimed evidence)
// into anchorkit-owned tables in the host application's schema.
//
// Tables:
//   - <schema>.documents
//   - <schema>.evidence
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

func NewStore(pool *pgxpool.Pool, schema string) *Store {
	return &Store{pool: pool, schema: schema}
}

// UpsertDocument stores a document's plain text keyed by source URL and
// returns its row ID. Re-ingesting the same URL with changed content bumps the
// fingerprint, which is what re-anchoring keys off.
func (s *Store) UpsertDocument(ctx context.Context, sourceURL, content string) (int64, error) {
	if s.pool == nil {
		return 0, fmt.Errorf("pool is required")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return 0, fmt.Errorf("invalid schema: %w", err)
	}
	if strings.TrimSpace(sourceURL) == "" {
		return 0, fmt.Errorf("sourceURL is required")
	}

	fp := strconv.FormatUint(corpus.Fingerprint(content), 16)

	q := fmt.Sprintf(`
		INSERT INTO %s.%s (source_url, content, fingerprint, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (source_url) DO UPDATE SET
			content = EXCLUDED.content,
			fingerprint = EXCLUDED.fingerprint,
			updated_at = now()
		RETURNING id
	`, qs, documentsTable)

	var id int64
	if err := s.pool.QueryRow(ctx, q, sourceURL, content, fp).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetDocument loads a document by row ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (Document, error) {
	if s.pool == nil {
		return Document{}, fmt.Errorf("pool is required")
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return Document{}, fmt.Errorf("invalid schema: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT id, source_url, content, fingerprint, created_at, updated_at
		FROM %s.%s
		WHERE id = $1
	`, qs, documentsTable)

	var d Document
	if err := s.pool.QueryRow(ctx, q, id).Scan(
		&d.ID,
		&d.SourceURL,
		&d.Content,
		&d.Fingerprint,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	return d, nil
}

// ListDocumentIDsAfter pages through document IDs in ascending order,
// returning up to limit IDs strictly greater than after. Used by backfill.
func (s *Store) ListDocumentIDsAfter(ctx context.Context, after int64, limit int) ([]int64, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if limit <= 0 {
		return nil, nil
	}
	qs, err := quoteIdent(s.schema)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	q := fmt.Sprintf(`
		SELECT id
		FROM %s.%s
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, qs, documentsTable)

	rows, err := s.pool.Query(ctx, q, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
