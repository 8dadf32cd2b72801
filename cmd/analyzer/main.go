// Package main provides the job-analysis CLI entry point. It reads a batch
// of job postings plus the candidate profile from JSON files, runs the full
// analysis pipeline, and writes the snapshot document.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/ai-job-analyzer/internal/adapter/provider"
	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
	"github.com/fairyhunter13/ai-job-analyzer/internal/observability"
	"github.com/fairyhunter13/ai-job-analyzer/internal/usecase"
)

func main() {
	var (
		jobsPath    = flag.String("jobs", "jobs.json", "path to the job postings JSON array")
		profilePath = flag.String("profile", "profile.json", "path to the user profile JSON")
		resumePath  = flag.String("resume", "", "optional path to a pre-analyzed resume summary JSON")
		outPath     = flag.String("out", "analysis.json", "path for the snapshot output")
		metricsAddr = flag.String("metrics-addr", "", "optional listen address for /metrics, e.g. :9090")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				slog.Error("metrics server error", slog.Any("error", err))
			}
		}()
	}

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	if err := run(cfg, *jobsPath, *profilePath, *resumePath, *outPath); err != nil {
		slog.Error("analysis run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, jobsPath, profilePath, resumePath, outPath string) error {
	var jobs []domain.JobRecord
	if err := readJSON(jobsPath, &jobs); err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}
	var profile domain.UserProfile
	if err := readJSON(profilePath, &profile); err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	var resume *domain.ResumeSummary
	if resumePath != "" {
		resume = &domain.ResumeSummary{}
		if err := readJSON(resumePath, resume); err != nil {
			return fmt.Errorf("load resume summary: %w", err)
		}
	}

	cues, err := config.LoadScreeningCues(cfg.ScreeningCuesFile)
	if err != nil {
		return fmt.Errorf("load screening cues: %w", err)
	}

	reg := provider.New(cfg)
	extractor, err := reg.Resolve(cfg.ExtractorProvider, "")
	if err != nil {
		return fmt.Errorf("resolve extractor: %w", err)
	}
	analyzer, err := reg.Resolve(cfg.AnalyzerProvider, "")
	if err != nil {
		return fmt.Errorf("resolve analyzer: %w", err)
	}

	pipe, err := usecase.New(extractor, analyzer, cues, usecase.Options{
		ScreeningMode: cfg.ScreeningMode,
		Workers:       cfg.StageWorkers,
		ProgressEvery: cfg.ProgressEvery,
	})
	if err != nil {
		return err
	}
	defer pipe.Close()

	pipe.Subscribe(func(ev domain.ProgressEvent) {
		slog.Info("stage progress",
			slog.String("stage", string(ev.Stage)),
			slog.Int("done", ev.Done),
			slog.Int("total", ev.Total),
			slog.String("note", ev.Note))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, runErr := pipe.Run(ctx, jobs, profile, resume)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		slog.Warn("run ended early, writing partial snapshot", slog.Any("error", runErr))
	}

	snap := usecase.BuildSnapshot(res, cfg.MinScore, time.Now())
	if err := usecase.WriteSnapshot(outPath, snap); err != nil {
		return err
	}
	slog.Info("snapshot written",
		slog.String("path", outPath),
		slog.String("run_id", res.RunID),
		slog.Int("jobs", len(snap.AllJobs)))
	return runErr
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
