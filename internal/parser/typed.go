package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// ParseScreening extracts a screening verdict. When no JSON object can be
// recovered it falls back to the cue-phrase heuristic: screening is one of
// the two schemas that opt into lexical salvage.
func ParseScreening(text string, cues config.ScreeningCues) (domain.ScreeningVerdict, error) {
	obj, err := Parse(text, SchemaScreening)
	if err == nil {
		verdict := domain.ScreeningVerdict{Confidence: 1}
		switch v := obj["relevant"].(type) {
		case bool:
			verdict.Relevant = v
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			verdict.Relevant = s == "true" || s == "yes" || s == "是"
		case float64:
			verdict.Relevant = v != 0
		default:
			err = fmt.Errorf("%w: screening field relevant has type %T", domain.ErrParse, v)
		}
		if err == nil {
			if reason, ok := obj["reason"].(string); ok {
				verdict.Reason = reason
			}
			return verdict, nil
		}
	}
	if verdict, ok := ScreenByCues(text, cues); ok {
		return verdict, nil
	}
	return domain.ScreeningVerdict{}, err
}

// ParseExtraction extracts the structured job summary. Absent fields are
// filled with the unknown sentinels; there is no lexical fallback here, a
// failed parse is the caller's signal to retry with the fallback provider.
func ParseExtraction(text string) (domain.ExtractedInfo, error) {
	raw, err := ExtractObject(text)
	if err != nil {
		return domain.ExtractedInfo{}, err
	}
	var info domain.ExtractedInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return domain.ExtractedInfo{}, fmt.Errorf("%w: %s", domain.ErrParse, err)
	}
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	for _, field := range SchemaExtraction.Required {
		if _, ok := obj[field]; !ok {
			return domain.ExtractedInfo{}, fmt.Errorf("%w: schema %s missing field %q", domain.ErrParse, SchemaExtraction.Name, field)
		}
	}
	return normalizeExtraction(info), nil
}

func normalizeExtraction(info domain.ExtractedInfo) domain.ExtractedInfo {
	if info.Responsibilities == nil {
		info.Responsibilities = []string{}
	}
	if info.HardSkills.Required == nil {
		info.HardSkills.Required = []string{}
	}
	if info.HardSkills.Preferred == nil {
		info.HardSkills.Preferred = []string{}
	}
	if info.SoftSkills == nil {
		info.SoftSkills = []string{}
	}
	if strings.TrimSpace(info.ExperienceRequired) == "" {
		info.ExperienceRequired = domain.UnknownValue
	}
	if strings.TrimSpace(info.EducationRequired) == "" {
		info.EducationRequired = domain.UnknownValue
	}
	return info
}

// ParseMarket extracts a market report from the stage-3 completion. All
// frequencies are clamped to [0,1] and nil collections materialized, so a
// structurally sloppy but parseable answer still satisfies the report shape.
func ParseMarket(text string) (domain.MarketReport, error) {
	raw, err := ExtractObject(text)
	if err != nil {
		return domain.MarketReport{}, err
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.MarketReport{}, fmt.Errorf("%w: %s", domain.ErrParse, err)
	}
	for _, field := range SchemaMarket.Required {
		if _, ok := obj[field]; !ok {
			return domain.MarketReport{}, fmt.Errorf("%w: schema %s missing field %q", domain.ErrParse, SchemaMarket.Name, field)
		}
	}
	var report domain.MarketReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return domain.MarketReport{}, fmt.Errorf("%w: %s", domain.ErrParse, err)
	}
	return NormalizeReport(report), nil
}

// NormalizeReport clamps frequencies, fills nil collections, and re-buckets
// every skill entry by its clamped frequency so the bucket thresholds hold
// even when the model placed an entry in the wrong list.
func NormalizeReport(report domain.MarketReport) domain.MarketReport {
	report.SkillRequirements.HardSkills = normalizeBuckets(report.SkillRequirements.HardSkills)
	report.SkillRequirements.SoftSkills = normalizeBuckets(report.SkillRequirements.SoftSkills)
	if report.CoreResponsibilities == nil {
		report.CoreResponsibilities = []string{}
	}
	if report.MarketInsights.TechStackTrends == nil {
		report.MarketInsights.TechStackTrends = []string{}
	}
	if report.MarketInsights.EmergingSkills == nil {
		report.MarketInsights.EmergingSkills = []string{}
	}
	if report.MarketInsights.ExperienceDistribution == nil {
		report.MarketInsights.ExperienceDistribution = map[string]int{}
	}
	if report.MarketInsights.EducationRequirements == nil {
		report.MarketInsights.EducationRequirements = map[string]int{}
	}
	if report.KeyFindings == nil {
		report.KeyFindings = []string{}
	}
	return report
}

func normalizeBuckets(b domain.SkillBuckets) domain.SkillBuckets {
	all := make([]domain.SkillDemand, 0, len(b.CoreRequired)+len(b.ImportantPreferred)+len(b.SpecialScenarios))
	all = append(all, b.CoreRequired...)
	all = append(all, b.ImportantPreferred...)
	all = append(all, b.SpecialScenarios...)

	out := domain.SkillBuckets{
		CoreRequired:       []domain.SkillDemand{},
		ImportantPreferred: []domain.SkillDemand{},
		SpecialScenarios:   []domain.SkillDemand{},
	}
	for _, d := range all {
		d.Frequency = clamp01(d.Frequency)
		// the bucket decides the label, not the model
		d.Importance = domain.ImportanceForFrequency(d.Frequency)
		switch {
		case d.Frequency >= domain.FrequencyCore:
			out.CoreRequired = append(out.CoreRequired, d)
		case d.Frequency >= domain.FrequencyPreferred:
			out.ImportantPreferred = append(out.ImportantPreferred, d)
		default:
			out.SpecialScenarios = append(out.SpecialScenarios, d)
		}
	}
	return out
}

// ParseMatch extracts a match analysis. The numeric-score heuristic is the
// second opted-in lexical fallback: find the first number after a score
// keyword, clamp, derive the recommendation from the thresholds.
func ParseMatch(text string) (domain.MatchAnalysis, error) {
	raw, extractErr := ExtractObject(text)
	if extractErr == nil {
		ma, err := matchFromJSON(raw)
		if err == nil {
			return ma, nil
		}
		extractErr = err
	}
	if score, ok := ScoreByKeyword(text); ok {
		return normalizeMatch(domain.MatchAnalysis{Score: score})
	}
	return domain.MatchAnalysis{}, extractErr
}

func matchFromJSON(raw json.RawMessage) (domain.MatchAnalysis, error) {
	var ma domain.MatchAnalysis
	if err := json.Unmarshal(raw, &ma); err != nil {
		return domain.MatchAnalysis{}, fmt.Errorf("%w: %s", domain.ErrParse, err)
	}
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	if _, ok := obj["score"]; !ok {
		if _, ok := obj["overall_score"]; !ok {
			return domain.MatchAnalysis{}, fmt.Errorf("%w: schema %s missing field %q", domain.ErrParse, SchemaMatch.Name, "score")
		}
		ma.Score = ma.OverallScore
	}
	return normalizeMatch(ma)
}

// normalizeMatch enforces the score bounds and the failure signal: zero is
// reserved for fail-markers and screening rejects, so a model answer that
// scores zero (or negative) is reported as a parse failure instead of
// masquerading as a successful analysis.
func normalizeMatch(ma domain.MatchAnalysis) (domain.MatchAnalysis, error) {
	score := ma.Score
	if score == 0 && ma.OverallScore != 0 {
		score = ma.OverallScore
	}
	score = clamp10(score)
	if score <= 0 {
		return domain.MatchAnalysis{}, fmt.Errorf("%w: non-positive score", domain.ErrParse)
	}
	ma.Score = score
	ma.OverallScore = score
	for k, v := range ma.DimensionScores {
		ma.DimensionScores[k] = clamp10(v)
	}
	if ma.Recommendation == "" || domain.IsFailureRecommendation(ma.Recommendation) {
		ma.Recommendation = domain.RecommendationForScore(score)
	}
	ma.Error = ""
	return ma, nil
}
