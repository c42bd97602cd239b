// Package worker drains the re-anchoring queue: for each ready task it loads
// the document, normalizes it once, resolves every claimed evidence snippet
// against it concurrently, and writes the verdicts back.
package worker

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sashaagafonoff/anchorkit/anchor"
	"github.com/sashaagafonoff/anchorkit/corpus"
	"github.com/sashaagafonoff/anchorkit/pg"
	"github.com/sashaagafonoff/anchorkit/tasks"
)

type Options struct {
	BatchSize int
	LockAhead time.Duration
	PollEvery time.Duration

	// MaxConcurrentResolves caps parallel snippet resolutions per task.
	// Resolution is CPU-bound and lock-free over the shared normalized
	// document, so this mostly exists to keep one huge document from hogging
	// every core.
	MaxConcurrentResolves int

	MaxAttempts int
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// Anchor options forwarded to every resolution.
	Anchor anchor.Options
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.BatchSize <= 0 {
		out.BatchSize = 50
	}
	if out.LockAhead <= 0 {
		out.LockAhead = 30 * time.Second
	}
	if out.PollEvery <= 0 {
		out.PollEvery = 2 * time.Second
	}
	if out.MaxConcurrentResolves <= 0 {
		out.MaxConcurrentResolves = 8
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 10
	}
	if out.BackoffBase <= 0 {
		out.BackoffBase = 5 * time.Second
	}
	if out.BackoffMax <= 0 {
		out.BackoffMax = 10 * time.Minute
	}
	return out
}

func expBackoff(base time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := math.Pow(2, float64(attempt-1))
	d := time.Duration(float64(base) * mult)
	if d > max {
		return max
	}
	return d
}

func addJitter(rng *rand.Rand, d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	// Up to 25% jitter.
	j := time.Duration(rng.Int63n(int64(d / 4)))
	return d + j
}

// processTask anchors every evidence row of one document. Unmatched snippets
// are a normal outcome and are written back as such; only storage failures
// make the task fail.
func processTask(ctx context.Context, store *pg.Store, cache *corpus.Cache, cfg Options, task tasks.Task) error {
	document, err := store.GetDocument(ctx, task.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", task.DocumentID, err)
	}

	evidence, err := store.ListEvidenceByDocument(ctx, task.DocumentID)
	if err != nil {
		return fmt.Errorf("list evidence for document %d: %w", task.DocumentID, err)
	}
	if len(evidence) == 0 {
		return nil
	}

	// Normalize once; every resolution below reads the same immutable Doc.
	doc := cache.Get(document.Content)

	sem := make(chan struct{}, cfg.MaxConcurrentResolves)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	for _, ev := range evidence {
		ev := ev
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()

			res := anchor.Resolve(doc, ev.Snippet, cfg.Anchor)
			if err := store.UpdateEvidenceAnchor(ctx, ev.ID, res); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("update evidence %d: %w", ev.ID, err)
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return firstErr
}

func handleTaskResult(ctx context.Context, repo *tasks.Repo, cfg Options, rng *rand.Rand, task tasks.Task, err error) {
	if err == nil {
		_ = repo.Complete(ctx, task.DocumentID, task.NextRunAt)
		return
	}

	log.Printf(
		"anchorkit: task failed document_id=%d reason=%s attempts=%d err=%v",
		task.DocumentID,
		task.Reason,
		task.Attempts,
		err,
	)

	// This failure counts as the next attempt (tasks.Attempts is prior failures).
	task.Attempts = task.Attempts + 1

	// Attempt cap: move to dead-letter queue.
	if task.Attempts >= cfg.MaxAttempts {
		_ = repo.DeadLetter(ctx, task, task.NextRunAt, err)
		return
	}

	backoff := expBackoff(cfg.BackoffBase, task.Attempts, cfg.BackoffMax)
	backoff = addJitter(rng, backoff)
	_ = repo.Fail(ctx, task.DocumentID, task.NextRunAt, backoff)
}

// DrainOnce fetches and processes a single batch of ready tasks, then returns.
//
// This is useful for integrating anchorkit into an external job runner (e.g.
// River/Cron) where you do not want an internal infinite polling loop.
func DrainOnce(ctx context.Context, store *pg.Store, repo *tasks.Repo, cache *corpus.Cache, opts Options) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	if repo == nil {
		return fmt.Errorf("repo is required")
	}
	if cache == nil {
		return fmt.Errorf("cache is required")
	}
	cfg := opts.withDefaults()

	batch, err := repo.FetchReady(ctx, cfg.BatchSize, cfg.LockAhead)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, task := range batch {
		handleTaskResult(ctx, repo, cfg, rng, task, processTask(ctx, store, cache, cfg, task))
	}
	return nil
}

// Run drains re-anchoring tasks until ctx is cancelled.
//
// This helper is optional; host apps can implement their own runner in River/Cron/etc.
func Run(ctx context.Context, store *pg.Store, repo *tasks.Repo, cache *corpus.Cache, opts Options) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	if repo == nil {
		return fmt.Errorf("repo is required")
	}
	if cache == nil {
		return fmt.Errorf("cache is required")
	}
	cfg := opts.withDefaults()

	ticker := time.NewTicker(cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := DrainOnce(ctx, store, repo, cache, cfg); err != nil {
				return err
			}
		}
	}
}
