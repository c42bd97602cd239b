// Package backfill enqueues re-anchoring tasks for an entire corpus in
// bounded slices. Typical trigger: the normalization or matching heuristics
// changed and every stored evidence range should be recomputed.
package backfill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sashaagafonoff/anchorkit/pg"
	"github.com/sashaagafonoff/anchorkit/tasks"
)

type Options struct {
	// Defaults are chosen to be "fast but safe": large corpora get re-anchored
	// over many runs instead of blocking startup.
	PageSize       int
	MaxTasksPerRun int
	MaxRuntime     time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.PageSize <= 0 {
		out.PageSize = 1000
	}
	if out.MaxTasksPerRun <= 0 {
		out.MaxTasksPerRun = 50_000
	}
	if out.MaxRuntime <= 0 {
		out.MaxRuntime = 30 * time.Second
	}
	return out
}

func quoteIdent(ident string) (string, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", fmt.Errorf("empty identifier")
	}
	for _, r := range ident {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return "", fmt.Errorf("invalid identifier %q", ident)
	}
	return `"` + ident + `"`, nil
}

// RunOnce performs a bounded amount of backfill work: it pages document IDs
// from the cursor recorded in anchor_backfill_state and enqueues a re-anchor
// task for each.
//
// Designed to be called periodically (e.g. in a background loop) until it
// reports done.
func RunOnce(ctx context.Context, pool *pgxpool.Pool, schema string, store *pg.Store, repo *tasks.Repo, reason string, opts Options) (enqueued int, done bool, err error) {
	if pool == nil {
		return 0, false, fmt.Errorf("pool is required")
	}
	if store == nil {
		return 0, false, fmt.Errorf("store is required")
	}
	if repo == nil {
		return 0, false, fmt.Errorf("task repo is required")
	}
	if strings.TrimSpace(schema) == "" {
		return 0, false, fmt.Errorf("schema is required")
	}
	if strings.TrimSpace(reason) == "" {
		reason = "corpus_backfill"
	}

	cfg := opts.withDefaults()
	start := time.Now()

	qs, err := quoteIdent(schema)
	if err != nil {
		return 0, false, fmt.Errorf("invalid schema: %w", err)
	}

	// Ensure the singleton state row exists.
	_, _ = pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s.anchor_backfill_state (id, cursor, state, updated_at)
		VALUES (true, 0, 'running', now())
		ON CONFLICT (id) DO NOTHING
	`, qs))

	var cursor int64
	var state string
	if err := pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT cursor, state
		FROM %s.anchor_backfill_state
		LIMIT 1
	`, qs)).Scan(&cursor, &state); err != nil {
		return 0, false, err
	}
	if state == "done" {
		return 0, true, nil
	}

	for {
		if time.Since(start) > cfg.MaxRuntime || enqueued >= cfg.MaxTasksPerRun {
			return enqueued, false, nil
		}

		ids, err := store.ListDocumentIDsAfter(ctx, cursor, cfg.PageSize)
		if err != nil {
			_, _ = pool.Exec(ctx, fmt.Sprintf(`
				UPDATE %s.anchor_backfill_state
				SET last_error = $1, updated_at = now()
			`, qs), err.Error())
			return enqueued, false, err
		}
		if len(ids) == 0 {
			_, _ = pool.Exec(ctx, fmt.Sprintf(`
				UPDATE %s.anchor_backfill_state
				SET state = 'done', last_error = NULL, updated_at = now()
			`, qs))
			return enqueued, true, nil
		}

		for _, id := range ids {
			if time.Since(start) > cfg.MaxRuntime || enqueued >= cfg.MaxTasksPerRun {
				break
			}
			if err := repo.Enqueue(ctx, id, reason); err != nil {
				return enqueued, false, err
			}
			cursor = id
			enqueued++
		}

		if _, err := pool.Exec(ctx, fmt.Sprintf(`
			UPDATE %s.anchor_backfill_state
			SET cursor = $1, last_error = NULL, updated_at = now()
		`, qs), cursor); err != nil {
			return enqueued, false, err
		}
	}
}
