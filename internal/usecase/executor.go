package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
	"github.com/fairyhunter13/ai-job-analyzer/internal/observability"
)

// itemFunc processes one item, handles its own failure marking, and returns
// the metrics outcome label.
type itemFunc func(ctx context.Context, item *domain.AnalyzedJob) string

// runStage applies fn over items with a bounded worker pool. Per-item
// failures never abort the stage; only cancellation stops dispatch, leaving
// the remaining items untouched for the merge step to mark. Completions may
// land out of order, but items keep their slice position, so order is
// restored for free.
func (p *Pipeline) runStage(ctx context.Context, stage domain.Stage, items []*domain.AnalyzedJob, fn itemFunc) {
	total := len(items)
	if total == 0 {
		p.progress.Emit(domain.ProgressEvent{Stage: stage, Done: 0, Total: 0})
		return
	}
	start := time.Now()
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := fn(gctx, item)
			observability.StageItemDone(string(stage), outcome)
			n := atomic.AddInt64(&done, 1)
			if n%int64(p.opts.ProgressEvery) == 0 || n == int64(total) {
				p.progress.Emit(domain.ProgressEvent{Stage: stage, Done: int(n), Total: total})
			}
			return nil
		})
	}
	_ = g.Wait()
	observability.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

// callWithFallback tries the primary provider and retries once against the
// fallback on transient failures. Cancellation is never retried.
func callWithFallback(ctx context.Context, primary, fallback domain.Provider, call func(context.Context, domain.Provider) (domain.Completion, error)) (domain.Completion, error) {
	comp, err := call(ctx, primary)
	if err == nil {
		return comp, nil
	}
	if ctx.Err() != nil || fallback == nil || fallback.Name() == primary.Name() || !domain.IsTransient(err) {
		return domain.Completion{}, err
	}
	observability.LoggerFromContext(ctx).Warn("primary provider failed, retrying with fallback",
		slog.String("primary", primary.Name()),
		slog.String("fallback", fallback.Name()),
		slog.Any("error", err))
	return call(ctx, fallback)
}
