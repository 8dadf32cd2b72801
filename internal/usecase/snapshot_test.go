package usecase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

func snapshotResult() *Result {
	return &Result{
		RunID: "01TESTRUN",
		Jobs: []domain.AnalyzedJob{
			{JobRecord: domain.JobRecord{Title: "A"}, Match: domain.MatchAnalysis{Score: 8, OverallScore: 8, Recommendation: domain.RecommendStrong}},
			{JobRecord: domain.JobRecord{Title: "B"}, Match: domain.MatchAnalysis{Score: 3, OverallScore: 3, Recommendation: domain.RecommendAgainst}},
			{JobRecord: domain.JobRecord{Title: "C"}, Match: domain.FailedMatch(domain.ErrUpstream)},
		},
		Report: domain.EmptyMarketReport(3, "2026-08-26"),
	}
}

func TestBuildSnapshot_NoFilter(t *testing.T) {
	t.Parallel()
	snap := BuildSnapshot(snapshotResult(), 0, time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "01TESTRUN", snap.Metadata.RunID)
	assert.Equal(t, 3, snap.Metadata.TotalSearched)
	assert.Len(t, snap.AllJobs, 3)
	assert.Equal(t, "2026-08-26T12:00:00Z", snap.Metadata.GeneratedTime)
}

func TestBuildSnapshot_MinScoreFilter(t *testing.T) {
	t.Parallel()
	snap := BuildSnapshot(snapshotResult(), 5, time.Now())
	// fail-markers score zero, so the filter drops them too
	require.Len(t, snap.AllJobs, 1)
	assert.Equal(t, "A", snap.AllJobs[0].Title)
	// metadata still counts the full batch
	assert.Equal(t, 3, snap.Metadata.TotalSearched)
}

func TestWriteSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "analysis.json")
	snap := BuildSnapshot(snapshotResult(), 0, time.Now())
	require.NoError(t, WriteSnapshot(path, snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, snap.Metadata.RunID, got.Metadata.RunID)
	assert.Len(t, got.AllJobs, 3)

	// the temp file must not linger
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
