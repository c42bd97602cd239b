package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo manages the re-anchoring queue. One task covers one document; enqueuing
// an already-queued document only pulls its next run forward, so bursts of
// evidence edits against the same document collapse into a single resolution
// pass.
type Repo struct {
	pool   *pgxpool.Pool
	schema string
}

const anchorTasksTable = "anchor_tasks"
const anchorDeadLettersTable = "anchor_dead_letters"

func NewRepo(pool *pgxpool.Pool, schema string) *Repo {
	return &Repo{pool: pool, schema: schema}
}

func (r *Repo) Enqueue(ctx context.Context, documentID int64, reason string) error {
	if documentID <= 0 {
		return fmt.Errorf("documentID is required")
	}
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	q := fmt.Sprintf(`
		INSERT INTO %s.%s (document_id, reason)
		VALUES ($1, COALESCE($2, 'unknown'))
		ON CONFLICT (document_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			next_run_at = LEAST(%s.%s.next_run_at, now()),
			updated_at = now()
	`, r.schema, anchorTasksTable, r.schema, anchorTasksTable)
	_, err := r.pool.Exec(ctx, q, documentID, reason)
	return err
}

// FetchReady returns up to limit tasks ready to run now, and bumps next_run_at
// forward by lockAhead to reduce duplicate work across workers.
func (r *Repo) FetchReady(ctx context.Context, limit int, lockAhead time.Duration) ([]Task, error) {
	if limit <= 0 {
		return nil, nil
	}
	if lockAhead <= 0 {
		lockAhead = 30 * time.Second
	}
	if r.schema == "" {
		return nil, fmt.Errorf("schema is required")
	}

	now := time.Now().UTC()
	next := now.Add(lockAhead)

	q := fmt.Sprintf(`
		WITH picked AS (
			SELECT document_id
			FROM %s.%s
			WHERE next_run_at <= $1
			ORDER BY next_run_at ASC, document_id ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE %s.%s t
		SET next_run_at = $3,
		    started_at = COALESCE(t.started_at, $1),
		    updated_at = $1
		FROM picked p
		WHERE t.document_id = p.document_id
		RETURNING
			t.document_id, t.reason, t.attempts, t.next_run_at, t.started_at, t.created_at, t.updated_at
	`, r.schema, anchorTasksTable, r.schema, anchorTasksTable)

	rows, err := r.pool.Query(ctx, q, now, limit, next)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.DocumentID,
			&t.Reason,
			&t.Attempts,
			&t.NextRunAt,
			&t.StartedAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) Complete(ctx context.Context, documentID int64, leaseUntil time.Time) error {
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	if documentID <= 0 {
		return nil
	}
	q := fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE document_id = $1 AND next_run_at = $2
	`, r.schema, anchorTasksTable)
	_, err := r.pool.Exec(ctx, q, documentID, leaseUntil.UTC())
	return err
}

func (r *Repo) Fail(ctx context.Context, documentID int64, leaseUntil time.Time, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = 30 * time.Second
	}
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	if documentID <= 0 {
		return nil
	}
	secs := int64(backoff / time.Second)
	if secs < 1 {
		secs = 1
	}
	q := fmt.Sprintf(`
		UPDATE %s.%s
		SET attempts = attempts + 1,
		    next_run_at = now() + make_interval(secs => $1),
		    updated_at = now()
		WHERE document_id = $2 AND next_run_at = $3
	`, r.schema, anchorTasksTable)
	_, err := r.pool.Exec(ctx, q, secs, documentID, leaseUntil.UTC())
	return err
}

// DeadLetter moves a task into the dead-letter table and deletes it from
// anchor_tasks so the runnable queue stays small.
//
// This is lease-safe: the task is deleted only if next_run_at matches leaseUntil.
func (r *Repo) DeadLetter(ctx context.Context, t Task, leaseUntil time.Time, err error) error {
	if r.schema == "" {
		return fmt.Errorf("schema is required")
	}
	if t.DocumentID <= 0 {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("unknown error")
	}

	tx, txErr := r.pool.Begin(ctx)
	if txErr != nil {
		return txErr
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q1 := fmt.Sprintf(`
		INSERT INTO %s.%s (document_id, reason, error, attempts, failed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now(), now())
		ON CONFLICT (document_id) DO UPDATE SET
			reason = EXCLUDED.reason,
			error = EXCLUDED.error,
			attempts = EXCLUDED.attempts,
			failed_at = EXCLUDED.failed_at,
			updated_at = now()
	`, r.schema, anchorDeadLettersTable)
	attempts := t.Attempts
	if attempts < 0 {
		attempts = 0
	}
	if _, execErr := tx.Exec(ctx, q1, t.DocumentID, t.Reason, err.Error(), attempts); execErr != nil {
		return execErr
	}

	q2 := fmt.Sprintf(`
		DELETE FROM %s.%s
		WHERE document_id = $1 AND next_run_at = $2
	`, r.schema, anchorTasksTable)
	if _, execErr := tx.Exec(ctx, q2, t.DocumentID, leaseUntil.UTC()); execErr != nil {
		return execErr
	}

	return tx.Commit(ctx)
}
