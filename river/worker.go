// Package river adapts the re-anchoring drain to hosts that already run a
// River job queue instead of the worker package's built-in poll loop.
package river

import (
	"context"

	"github.com/riverqueue/river"

	"github.com/sashaagafonoff/anchorkit/corpus"
	"github.com/sashaagafonoff/anchorkit/pg"
	"github.com/sashaagafonoff/anchorkit/tasks"
	"github.com/sashaagafonoff/anchorkit/worker"
)

type ReanchorBatchArgs struct {
	// Limit caps how many anchor tasks one job run drains. 0 uses the worker
	// default.
	Limit int `json:"limit"`
}

func (ReanchorBatchArgs) Kind() string { return "anchorkit_reanchor_batch" }

type ReanchorBatchWorker struct {
	river.WorkerDefaults[ReanchorBatchArgs]

	Store    *pg.Store
	TaskRepo *tasks.Repo
	Cache    *corpus.Cache
	Options  worker.Options
}

func (w *ReanchorBatchWorker) Work(ctx context.Context, job *river.Job[ReanchorBatchArgs]) error {
	if w.Store == nil || w.TaskRepo == nil || w.Cache == nil {
		return nil
	}

	opts := w.Options
	if job.Args.Limit > 0 {
		opts.BatchSize = job.Args.Limit
	}

	return worker.DrainOnce(ctx, w.Store, w.TaskRepo, w.Cache, opts)
}
