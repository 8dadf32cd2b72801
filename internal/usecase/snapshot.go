package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// SnapshotMetadata describes one persisted run.
type SnapshotMetadata struct {
	GeneratedTime string `json:"generated_time"`
	RunID         string `json:"run_id"`
	TotalSearched int    `json:"total_searched"`
}

// Snapshot is the on-disk document for one run. MinScore filtering applies
// here only; the in-memory Result always stays 1:1 with the input.
type Snapshot struct {
	Metadata     SnapshotMetadata     `json:"metadata"`
	AllJobs      []domain.AnalyzedJob `json:"all_jobs"`
	MarketReport domain.MarketReport  `json:"market_report"`
}

// BuildSnapshot assembles the persistable view of a result. A positive
// minScore drops every job scoring below it, fail-markers included.
func BuildSnapshot(res *Result, minScore float64, now time.Time) Snapshot {
	jobs := res.Jobs
	if minScore > 0 {
		kept := make([]domain.AnalyzedJob, 0, len(jobs))
		for _, j := range jobs {
			if j.Match.Score >= minScore {
				kept = append(kept, j)
			}
		}
		jobs = kept
	}
	return Snapshot{
		Metadata: SnapshotMetadata{
			GeneratedTime: now.Format(time.RFC3339),
			RunID:         res.RunID,
			TotalSearched: len(res.Jobs),
		},
		AllJobs:      jobs,
		MarketReport: res.Report,
	}
}

// WriteSnapshot marshals the snapshot and writes it atomically via a
// temp-file rename next to the target path.
func WriteSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize snapshot: %w", err)
	}
	return nil
}
