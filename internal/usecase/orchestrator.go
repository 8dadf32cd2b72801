package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
	"github.com/fairyhunter13/ai-job-analyzer/internal/observability"
	"github.com/fairyhunter13/ai-job-analyzer/internal/parser"
	"github.com/fairyhunter13/ai-job-analyzer/internal/prompt"
)

// Options tunes one Pipeline. Zero values fall back to sane defaults.
type Options struct {
	// ScreeningMode enables stage 1. When off every job goes straight to
	// extraction.
	ScreeningMode bool
	// Workers bounds per-stage concurrency.
	Workers int
	// ProgressEvery sets the progress emission granularity in items.
	ProgressEvery int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = 10
	}
	return o
}

// Result is the complete outcome of one Run.
type Result struct {
	RunID  string               `json:"run_id"`
	Jobs   []domain.AnalyzedJob `json:"jobs"`
	Report domain.MarketReport  `json:"market_report"`
}

// Pipeline drives screen, extract, market and match over a job batch.
// Providers may be swapped between runs; swaps are atomic and never tear an
// in-flight call.
type Pipeline struct {
	opts      Options
	cues      config.ScreeningCues
	progress  *ProgressBroadcaster
	extractor atomic.Pointer[domain.Provider]
	analyzer  atomic.Pointer[domain.Provider]
	validate  *validator.Validate
}

// New builds a Pipeline over the two provider roles. The extractor handles
// screening and extraction, the analyzer handles market and match.
func New(extractor, analyzer domain.Provider, cues config.ScreeningCues, opts Options) (*Pipeline, error) {
	if extractor == nil || analyzer == nil {
		return nil, fmt.Errorf("%w: pipeline needs both an extractor and an analyzer provider", domain.ErrConfig)
	}
	p := &Pipeline{
		opts:     opts.withDefaults(),
		cues:     cues,
		progress: NewProgressBroadcaster(),
		validate: validator.New(),
	}
	p.extractor.Store(&extractor)
	p.analyzer.Store(&analyzer)
	return p, nil
}

// Subscribe registers a progress listener for every subsequent Run.
func (p *Pipeline) Subscribe(l domain.ProgressListener) { p.progress.Subscribe(l) }

// Close releases the progress dispatcher. The Pipeline must not Run afterwards.
func (p *Pipeline) Close() { p.progress.Close() }

// SwapExtractor atomically replaces the extraction-side provider. In-flight
// calls finish on the old provider.
func (p *Pipeline) SwapExtractor(prov domain.Provider) {
	if prov != nil {
		p.extractor.Store(&prov)
	}
}

// SwapAnalyzer atomically replaces the analysis-side provider.
func (p *Pipeline) SwapAnalyzer(prov domain.Provider) {
	if prov != nil {
		p.analyzer.Store(&prov)
	}
}

func (p *Pipeline) extractorProvider() domain.Provider { return *p.extractor.Load() }
func (p *Pipeline) analyzerProvider() domain.Provider  { return *p.analyzer.Load() }

// Run executes the full pipeline over jobs. Output order matches input order
// and every input record appears exactly once. On cancellation the partial
// result is returned together with ctx.Err(); unreached items carry a
// cancellation fail-marker.
func (p *Pipeline) Run(ctx context.Context, jobs []domain.JobRecord, profile domain.UserProfile, resume *domain.ResumeSummary) (*Result, error) {
	if err := p.validate.Struct(profile); err != nil {
		return nil, fmt.Errorf("%w: invalid profile: %v", domain.ErrConfig, err)
	}
	if resume != nil {
		if err := p.validate.Struct(*resume); err != nil {
			return nil, fmt.Errorf("%w: invalid resume summary: %v", domain.ErrConfig, err)
		}
	}

	runID := ulid.Make().String()
	ctx = observability.ContextWithRunID(ctx, runID)
	lg := observability.LoggerFromContext(ctx).With(slog.String("run_id", runID))
	ctx = observability.ContextWithLogger(ctx, lg)
	tracer := otel.Tracer("pipeline")

	ctx, span := tracer.Start(ctx, "pipeline.run")
	span.SetAttributes(attribute.Int("jobs.total", len(jobs)))
	defer span.End()

	items := make([]*domain.AnalyzedJob, len(jobs))
	for i, j := range jobs {
		items[i] = &domain.AnalyzedJob{JobRecord: j}
	}

	lg.Info("pipeline run started",
		slog.Int("jobs", len(jobs)),
		slog.Bool("screening", p.opts.ScreeningMode),
		slog.Bool("resume", resume != nil))

	// Stage 1: screening. Call failures degrade gracefully, keeping the job.
	if p.opts.ScreeningMode {
		sctx, sspan := tracer.Start(ctx, "pipeline.screen")
		p.runStage(sctx, domain.StageScreen, items, p.screenItem(profile))
		sspan.End()
	}

	survivors := make([]*domain.AnalyzedJob, 0, len(items))
	for _, it := range items {
		if it.Screening == nil || it.Screening.Relevant {
			survivors = append(survivors, it)
		}
	}

	// Stage 2: extraction with cross-provider fallback.
	ectx, espan := tracer.Start(ctx, "pipeline.extract")
	espan.SetAttributes(attribute.Int("jobs.surviving", len(survivors)))
	p.runStage(ectx, domain.StageExtract, survivors, p.extractItem)
	espan.End()

	// Stage 3: market analysis over the extraction survivors.
	mctx, mspan := tracer.Start(ctx, "pipeline.market")
	report := p.marketStage(mctx, survivors)
	mspan.End()

	// Stage 4: per-job matching.
	requirements := prompt.RequirementsFromProfile(profile)
	hctx, hspan := tracer.Start(ctx, "pipeline.match")
	p.runStage(hctx, domain.StageMatch, survivors, p.matchItem(resume, requirements))
	hspan.End()

	// Merge: rejected jobs get an irrelevance placeholder, jobs the run was
	// cancelled before reaching get a fail-marker. Everything stays in input
	// order because items never move.
	for _, it := range items {
		if it.Screening != nil && !it.Screening.Relevant {
			it.Match = domain.IrrelevantMatch(it.Screening.Reason)
			continue
		}
		if it.Match.Recommendation == "" && it.Match.Error == "" {
			it.Match = domain.CancelledMatch()
		}
	}

	out := make([]domain.AnalyzedJob, len(items))
	for i, it := range items {
		out[i] = *it
	}
	res := &Result{RunID: runID, Jobs: out, Report: report}

	if err := ctx.Err(); err != nil {
		lg.Warn("pipeline run cancelled, returning partial result", slog.Any("error", err))
		return res, err
	}
	lg.Info("pipeline run finished",
		slog.Int("jobs", len(out)),
		slog.Int("analyzed", report.Overview.TotalJobsAnalyzed))
	return res, nil
}

// screenItem asks the extractor whether the job matches the profile. A failed
// call or unparseable verdict keeps the job in the pipeline rather than
// silently dropping it.
func (p *Pipeline) screenItem(profile domain.UserProfile) itemFunc {
	return func(ctx context.Context, item *domain.AnalyzedJob) string {
		pr := prompt.Screen(item.JobRecord, profile)
		comp, err := callWithFallback(ctx, p.extractorProvider(), p.analyzerProvider(),
			func(ctx context.Context, prov domain.Provider) (domain.Completion, error) {
				return prov.Complete(ctx, pr, domain.CallOptions{})
			})
		if err != nil {
			observability.LoggerFromContext(ctx).Warn("screening call failed, keeping job",
				slog.String("job", item.Identity()), slog.Any("error", err))
			return "error"
		}
		verdict, err := parser.ParseScreening(comp.Text, p.cues)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn("screening verdict unparseable, keeping job",
				slog.String("job", item.Identity()), slog.Any("error", err))
			return "parse_error"
		}
		item.Screening = &verdict
		if verdict.Relevant {
			return "relevant"
		}
		return "rejected"
	}
}

// extractItem pulls structured info out of one posting. Transient call
// failures and parse failures both earn one retry on the analyzer before the
// item is fail-marked with the unknown sentinel.
func (p *Pipeline) extractItem(ctx context.Context, item *domain.AnalyzedJob) string {
	pr := prompt.Extract(item.JobRecord)
	primary := p.extractorProvider()
	fallback := p.analyzerProvider()

	comp, err := primary.Complete(ctx, pr, domain.CallOptions{})
	if err == nil {
		info, perr := parser.ParseExtraction(comp.Text)
		if perr == nil {
			item.Extracted = &info
			return "ok"
		}
		err = perr
	}

	if ctx.Err() == nil && fallback.Name() != primary.Name() &&
		(domain.IsTransient(err) || errors.Is(err, domain.ErrParse)) {
		comp, ferr := fallback.Complete(ctx, pr, domain.CallOptions{})
		if ferr == nil {
			info, perr := parser.ParseExtraction(comp.Text)
			if perr == nil {
				item.Extracted = &info
				return "fallback_ok"
			}
			err = perr
		} else {
			err = ferr
		}
	}

	u := domain.UnknownExtractedInfo()
	item.Extracted = &u
	observability.LoggerFromContext(ctx).Warn("extraction failed, attaching unknown sentinel",
		slog.String("job", item.Identity()), slog.Any("error", err))
	return "failed"
}

// matchItem scores one survivor against the candidate. Full mode runs when a
// résumé digest is available, simple mode otherwise.
func (p *Pipeline) matchItem(resume *domain.ResumeSummary, requirements string) itemFunc {
	return func(ctx context.Context, item *domain.AnalyzedJob) string {
		var system, user string
		if resume != nil {
			system, user = prompt.MatchFull(item.JobRecord, *resume)
		} else {
			system, user = prompt.MatchSimple(item.JobRecord, requirements)
		}
		comp, err := callWithFallback(ctx, p.analyzerProvider(), p.extractorProvider(),
			func(ctx context.Context, prov domain.Provider) (domain.Completion, error) {
				return prov.Chat(ctx, system, user, domain.CallOptions{})
			})
		if err == nil {
			ma, perr := parser.ParseMatch(comp.Text)
			if perr == nil {
				item.Match = ma
				observability.MatchScoreHistogram.Observe(ma.Score)
				return "ok"
			}
			err = perr
		}
		item.Match = domain.FailedMatch(err)
		observability.LoggerFromContext(ctx).Warn("match analysis failed",
			slog.String("job", item.Identity()), slog.Any("error", err))
		return "failed"
	}
}

// isUnknownExtraction reports whether the info is the stage-2 fail-marker.
func isUnknownExtraction(info domain.ExtractedInfo) bool {
	return info.ExperienceRequired == domain.UnknownValue &&
		info.EducationRequired == domain.UnknownValue &&
		len(info.Responsibilities) == 0 &&
		len(info.HardSkills.Required) == 0 &&
		len(info.HardSkills.Preferred) == 0 &&
		len(info.SoftSkills) == 0
}

// marketStage produces the aggregate report. The analyzer gets one shot;
// any failure falls back to deterministic local aggregation so the report is
// never missing. TotalJobsAnalyzed always reflects the records that reached
// extraction, whatever the model claims.
func (p *Pipeline) marketStage(ctx context.Context, survivors []*domain.AnalyzedJob) domain.MarketReport {
	date := time.Now().Format("2006-01-02")
	total := len(survivors)

	extractions := make([]domain.ExtractedInfo, 0, total)
	for _, it := range survivors {
		if it.Extracted != nil && !isUnknownExtraction(*it.Extracted) {
			extractions = append(extractions, *it.Extracted)
		}
	}

	if total == 0 || ctx.Err() != nil {
		p.progress.Emit(domain.ProgressEvent{Stage: domain.StageMarket, Done: 1, Total: 1})
		return domain.EmptyMarketReport(total, date)
	}

	system, user := prompt.Market(prompt.SamplesFromExtractions(extractions), "")
	comp, err := p.analyzerProvider().Chat(ctx, system, user, domain.CallOptions{})
	if err == nil {
		report, perr := parser.ParseMarket(comp.Text)
		if perr == nil {
			report.Overview.TotalJobsAnalyzed = total
			if report.Overview.AnalysisDate == "" {
				report.Overview.AnalysisDate = date
			}
			p.progress.Emit(domain.ProgressEvent{Stage: domain.StageMarket, Done: 1, Total: 1})
			return report
		}
		err = perr
	}

	observability.LoggerFromContext(ctx).Warn("market analysis failed, aggregating locally",
		slog.Any("error", err))
	p.progress.Emit(domain.ProgressEvent{Stage: domain.StageMarket, Done: 1, Total: 1, Note: "deterministic fallback"})
	return BuildMarketReport(extractions, total, date)
}
