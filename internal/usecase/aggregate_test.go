package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

func extractionWithHard(required ...string) domain.ExtractedInfo {
	return domain.ExtractedInfo{
		Responsibilities: []string{"开发后端服务"},
		HardSkills:       domain.HardSkills{Required: required, Preferred: []string{}},
		SoftSkills:       []string{"沟通能力"},
	}
}

func TestBuildMarketReport_BucketThresholds(t *testing.T) {
	t.Parallel()
	// 10 extractions: Go in 8 (core), MySQL in 5 (preferred), Rust in 1
	// (special scenario).
	extractions := make([]domain.ExtractedInfo, 10)
	for i := range extractions {
		skills := []string{}
		if i < 8 {
			skills = append(skills, "Go")
		}
		if i < 5 {
			skills = append(skills, "MySQL")
		}
		if i < 1 {
			skills = append(skills, "Rust")
		}
		extractions[i] = extractionWithHard(skills...)
	}

	report := BuildMarketReport(extractions, 10, "2026-08-26")
	require.Equal(t, 10, report.Overview.TotalJobsAnalyzed)

	hard := report.SkillRequirements.HardSkills
	require.Len(t, hard.CoreRequired, 1)
	assert.Equal(t, "Go", hard.CoreRequired[0].Name)
	assert.InDelta(t, 0.8, hard.CoreRequired[0].Frequency, 1e-9)
	assert.Equal(t, "核心必备", hard.CoreRequired[0].Importance)

	require.Len(t, hard.ImportantPreferred, 1)
	assert.Equal(t, "MySQL", hard.ImportantPreferred[0].Name)

	require.Len(t, hard.SpecialScenarios, 1)
	assert.Equal(t, "Rust", hard.SpecialScenarios[0].Name)
}

func TestBuildMarketReport_PerJobDedupe(t *testing.T) {
	t.Parallel()
	// One job naming a skill twice (required and preferred, different case)
	// must count once, keeping frequencies within [0,1].
	e := domain.ExtractedInfo{
		HardSkills: domain.HardSkills{
			Required:  []string{"Go", "kubernetes"},
			Preferred: []string{"go", "Kubernetes"},
		},
	}
	report := BuildMarketReport([]domain.ExtractedInfo{e}, 1, "2026-08-26")
	core := report.SkillRequirements.HardSkills.CoreRequired
	require.Len(t, core, 2)
	for _, d := range core {
		assert.Equal(t, 1.0, d.Frequency)
	}
}

func TestBuildMarketReport_FrequencyDenominatorIsExtractions(t *testing.T) {
	t.Parallel()
	// total counts records that reached extraction, but frequencies are
	// computed over the successful extractions only.
	extractions := []domain.ExtractedInfo{extractionWithHard("Go"), extractionWithHard("Go")}
	report := BuildMarketReport(extractions, 5, "2026-08-26")
	assert.Equal(t, 5, report.Overview.TotalJobsAnalyzed)
	require.Len(t, report.SkillRequirements.HardSkills.CoreRequired, 1)
	assert.Equal(t, 1.0, report.SkillRequirements.HardSkills.CoreRequired[0].Frequency)
}

func TestBuildMarketReport_Distributions(t *testing.T) {
	t.Parallel()
	extractions := []domain.ExtractedInfo{
		{ExperienceRequired: "3-5年", EducationRequired: "本科及以上"},
		{ExperienceRequired: "5年以上", EducationRequired: "硕士优先"},
		{ExperienceRequired: domain.UnknownValue, EducationRequired: domain.UnknownValue},
		{ExperienceRequired: "经验不限", EducationRequired: "学历不限"},
	}
	report := BuildMarketReport(extractions, 4, "2026-08-26")
	exp := report.MarketInsights.ExperienceDistribution
	assert.Equal(t, 1, exp["3-5年"])
	assert.Equal(t, 1, exp["5年以上"])
	assert.Equal(t, 1, exp["不限"])
	// unknown sentinel contributes nothing
	assert.Equal(t, 3, exp["3-5年"]+exp["5年以上"]+exp["不限"])

	edu := report.MarketInsights.EducationRequirements
	assert.Equal(t, 1, edu["本科"])
	assert.Equal(t, 1, edu["硕士"])
	assert.Equal(t, 1, edu["不限"])
}

func TestBuildMarketReport_Empty(t *testing.T) {
	t.Parallel()
	report := BuildMarketReport(nil, 0, "2026-08-26")
	assert.Equal(t, 0, report.Overview.TotalJobsAnalyzed)
	assert.Empty(t, report.SkillRequirements.HardSkills.CoreRequired)
	assert.NotNil(t, report.CoreResponsibilities)
	assert.NotNil(t, report.MarketInsights.ExperienceDistribution)
}

func TestExperienceBucket(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1-3年", experienceBucket("1-3年工作经验"))
	assert.Equal(t, "3年以上", experienceBucket("3年以上"))
	assert.Equal(t, "应届", experienceBucket("应届毕业生"))
	assert.Equal(t, "不限", experienceBucket("经验不限"))
	assert.Equal(t, "其他", experienceBucket("资深"))
}
