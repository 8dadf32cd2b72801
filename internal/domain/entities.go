// Package domain defines the core entities and ports of the job analysis pipeline.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrConfig          = errors.New("configuration error")
	ErrTransport       = errors.New("transport failure")
	ErrTimeout         = errors.New("deadline exceeded")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstream        = errors.New("upstream error")
	ErrShape           = errors.New("unexpected response shape")
	ErrEmptyCompletion = errors.New("empty completion")
	ErrParse           = errors.New("unparseable completion")
)

// IsTransient reports whether err is worth a retry against a fallback
// provider: network trouble, deadlines, throttling, and empty completions.
// Upstream 4xx and shape errors are not transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrEmptyCompletion)
}

// JobRecord is one raw job posting. Immutable after creation.
type JobRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Salary      string `json:"salary,omitempty"`
	Location    string `json:"location,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description"`
}

// Identity returns the record key: URL when present, else title+company.
func (j JobRecord) Identity() string {
	if j.URL != "" {
		return j.URL
	}
	return j.Title + "|" + j.Company
}

// SalaryRange is a monthly salary band in units of 1000 CNY.
type SalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// UserProfile holds the candidate's search preferences.
type UserProfile struct {
	Intentions      []string    `json:"intentions"`
	ExcludedTypes   []string    `json:"excluded_types"`
	Skills          []string    `json:"skills"`
	ExperienceYears int         `json:"experience_years" validate:"gte=0"`
	SalaryRange     SalaryRange `json:"salary_range"`
}

// ResumeSummary is the optional pre-analyzed résumé digest supplied by the host.
type ResumeSummary struct {
	CompetitivenessScore float64            `json:"competitiveness_score" validate:"gte=0,lte=10"`
	Strengths            []string           `json:"strengths"`
	DimensionScores      map[string]float64 `json:"dimension_scores"`
	CareerAdvice         string             `json:"career_advice"`
	RecommendedJobs      []string           `json:"recommended_jobs"`
}

// ScreeningVerdict is the stage-1 relevance decision for one job.
// Confidence is 1 for schema-parsed verdicts and lower for verdicts
// recovered by lexical heuristics; the boolean may grow into a
// three-valued verdict later without changing stored shapes.
type ScreeningVerdict struct {
	Relevant   bool    `json:"relevant"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"`
}

// UnknownValue is the sentinel for extraction fields the model could not fill.
const UnknownValue = "未知"

// HardSkills splits requirement skills by必备/加分.
type HardSkills struct {
	Required  []string `json:"required"`
	Preferred []string `json:"preferred"`
}

// ExtractedInfo is the stage-2 structured summary of one posting.
type ExtractedInfo struct {
	Responsibilities   []string   `json:"responsibilities"`
	HardSkills         HardSkills `json:"hard_skills"`
	SoftSkills         []string   `json:"soft_skills"`
	ExperienceRequired string     `json:"experience_required"`
	EducationRequired  string     `json:"education_required"`
}

// UnknownExtractedInfo returns an ExtractedInfo with every field set to its
// unknown sentinel, used as the fail-marker attachment for stage 2.
func UnknownExtractedInfo() ExtractedInfo {
	return ExtractedInfo{
		Responsibilities:   []string{},
		HardSkills:         HardSkills{Required: []string{}, Preferred: []string{}},
		SoftSkills:         []string{},
		ExperienceRequired: UnknownValue,
		EducationRequired:  UnknownValue,
	}
}

// Recommendation labels. The two failure labels are the only ones that may
// accompany a zero score, and vice versa.
const (
	RecommendStrong     = "强烈推荐"
	Recommend           = "推荐"
	RecommendConsider   = "可以考虑"
	RecommendAgainst    = "不推荐"
	RecommendFailed     = "分析失败"
	RecommendIrrelevant = "岗位与求职意向不相关"
)

// RecommendationForScore maps a score to its non-failure label.
func RecommendationForScore(score float64) string {
	switch {
	case score >= 8:
		return RecommendStrong
	case score >= 6:
		return Recommend
	case score >= 4:
		return RecommendConsider
	default:
		return RecommendAgainst
	}
}

// IsFailureRecommendation reports whether rec is one of the failure labels.
func IsFailureRecommendation(rec string) bool {
	return rec == RecommendFailed || rec == RecommendIrrelevant
}

// Dimension score keys. Simple-mode analyses use a subset.
const (
	DimJobMatch         = "job_match"
	DimSkillMatch       = "skill_match"
	DimExperienceMatch  = "experience_match"
	DimSkillCoverage    = "skill_coverage"
	DimKeywordMatch     = "keyword_match"
	DimHardRequirements = "hard_requirements"
)

// MatchAnalysis is the stage-4 per-job result. When Error is set the record
// is a fail-marker and Score must be zero; the pipeline never manufactures
// a synthetic non-zero score.
type MatchAnalysis struct {
	Score                float64            `json:"score"`
	OverallScore         float64            `json:"overall_score"`
	Recommendation       string             `json:"recommendation"`
	DimensionScores      map[string]float64 `json:"dimension_scores,omitempty"`
	MatchedSkills        []string           `json:"matched_skills,omitempty"`
	MissingSkills        []string           `json:"missing_skills,omitempty"`
	MatchPoints          []string           `json:"match_points,omitempty"`
	MismatchPoints       []string           `json:"mismatch_points,omitempty"`
	Reason               string             `json:"reason,omitempty"`
	Summary              string             `json:"summary,omitempty"`
	ActionRecommendation string             `json:"action_recommendation,omitempty"`
	Error                string             `json:"error,omitempty"`
}

// FailedMatch builds the fail-marker for an item that could not be analyzed.
func FailedMatch(err error) MatchAnalysis {
	msg := "unknown"
	if err != nil {
		msg = err.Error()
	}
	return MatchAnalysis{Recommendation: RecommendFailed, Error: msg}
}

// IrrelevantMatch builds the placeholder for an item rejected at screening.
func IrrelevantMatch(reason string) MatchAnalysis {
	return MatchAnalysis{Recommendation: RecommendIrrelevant, Reason: reason}
}

// CancelledMatch marks an item the run was cancelled before reaching.
func CancelledMatch() MatchAnalysis {
	return MatchAnalysis{Recommendation: RecommendFailed, Error: "cancelled"}
}

// AnalyzedJob is one input record with everything the pipeline attached.
type AnalyzedJob struct {
	JobRecord
	Screening *ScreeningVerdict `json:"screening,omitempty"`
	Extracted *ExtractedInfo    `json:"extracted_info,omitempty"`
	Match     MatchAnalysis     `json:"match_analysis"`
}

// Provider ports

// CompletionSource tells the caller which field of the upstream response the
// text came from. Reasoning text is lower-confidence for the parser.
type CompletionSource string

const (
	SourcePrimary   CompletionSource = "primary"
	SourceReasoning CompletionSource = "reasoning"
)

// Completion is the normalized output of one provider call.
type Completion struct {
	Text   string
	Source CompletionSource
}

// CallOptions is the closed knob set callers may pass to a provider.
// Zero values mean "use the adapter default".
type CallOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Provider wraps one LLM endpoint behind a uniform two-method surface.
// Implementations must not parse domain JSON out of the completion text.
type Provider interface {
	Name() string
	Chat(ctx context.Context, system, user string, opts CallOptions) (Completion, error)
	Complete(ctx context.Context, prompt string, opts CallOptions) (Completion, error)
}

// Progress

// Stage identifies one of the four pipeline stages.
type Stage string

const (
	StageScreen  Stage = "screen"
	StageExtract Stage = "extract"
	StageMarket  Stage = "market"
	StageMatch   Stage = "match"
)

// ProgressEvent is emitted after every batch of completed items in a stage.
type ProgressEvent struct {
	Stage Stage  `json:"stage"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
	Note  string `json:"note,omitempty"`
}

// ProgressListener receives progress events. Implementations must be
// thread-safe; the pipeline calls them from multiple workers.
type ProgressListener func(ProgressEvent)
