package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

func sampleJob() domain.JobRecord {
	return domain.JobRecord{
		Title:       "Go后端工程师",
		Company:     "示例科技",
		Salary:      "25-40K",
		Location:    "上海",
		Description: "负责核心交易系统的设计与开发，要求熟悉Go、MySQL与Kubernetes。",
	}
}

func sampleProfile() domain.UserProfile {
	return domain.UserProfile{
		Intentions:      []string{"Go后端开发", "平台工程"},
		ExcludedTypes:   []string{"销售"},
		Skills:          []string{"Go", "MySQL"},
		ExperienceYears: 4,
		SalaryRange:     domain.SalaryRange{Min: 25, Max: 40},
	}
}

func TestScreen_ContainsJobAndIntentions(t *testing.T) {
	t.Parallel()
	p := Screen(sampleJob(), sampleProfile())
	assert.Contains(t, p, "Go后端工程师")
	assert.Contains(t, p, "Go后端开发、平台工程")
	assert.Contains(t, p, "排除类型：销售")
	assert.Contains(t, p, `"relevant"`)
}

func TestScreen_TruncatesLongDescription(t *testing.T) {
	t.Parallel()
	job := sampleJob()
	job.Description = strings.Repeat("岗位职责描述", 200)
	p := Screen(job, sampleProfile())
	// rune budget keeps the prompt bounded no matter the input
	assert.Less(t, len([]rune(p)), 700)
	assert.Contains(t, p, "…")
}

func TestScreen_Deterministic(t *testing.T) {
	t.Parallel()
	a := Screen(sampleJob(), sampleProfile())
	b := Screen(sampleJob(), sampleProfile())
	assert.Equal(t, a, b)
}

func TestExtract_DemandsUnknownSentinel(t *testing.T) {
	t.Parallel()
	p := Extract(sampleJob())
	assert.Contains(t, p, domain.UnknownValue)
	assert.Contains(t, p, `"hard_skills"`)
	assert.Contains(t, p, `"responsibilities"`)
}

func TestMarket_SamplesAndBudget(t *testing.T) {
	t.Parallel()
	extractions := []domain.ExtractedInfo{
		{
			Responsibilities:   []string{"开发服务"},
			HardSkills:         domain.HardSkills{Required: []string{"Go"}},
			SoftSkills:         []string{"沟通"},
			ExperienceRequired: "3-5年",
			EducationRequired:  domain.UnknownValue,
		},
	}
	samples := SamplesFromExtractions(extractions)
	assert.Equal(t, 1, samples.TotalJobs)
	assert.Equal(t, []string{"Go"}, samples.HardSkills)
	// unknown sentinels never reach the prompt
	assert.Empty(t, samples.Education)

	system, user := Market(samples, "deepseek-chat")
	assert.Contains(t, system, "JSON")
	assert.Contains(t, user, "共分析 1 个岗位")
	assert.Contains(t, user, "core_required")
}

func TestMatchFull_CarriesResume(t *testing.T) {
	t.Parallel()
	resume := domain.ResumeSummary{
		CompetitivenessScore: 7.5,
		Strengths:            []string{"分布式系统"},
		DimensionScores:      map[string]float64{"b_dim": 6, "a_dim": 7},
	}
	system, user := MatchFull(sampleJob(), resume)
	assert.Contains(t, system, "0-10")
	assert.Contains(t, user, "候选人简历摘要")
	assert.Contains(t, user, "7.5/10")
	assert.Contains(t, user, "分布式系统")
	// map iteration must not leak into the prompt: keys are sorted
	assert.Less(t, strings.Index(user, "a_dim"), strings.Index(user, "b_dim"))
	assert.Contains(t, user, domain.DimHardRequirements)
}

func TestMatchSimple_CarriesRequirements(t *testing.T) {
	t.Parallel()
	req := RequirementsFromProfile(sampleProfile())
	_, user := MatchSimple(sampleJob(), req)
	assert.Contains(t, user, "候选人要求")
	assert.Contains(t, user, "期望岗位：Go后端开发、平台工程")
	assert.Contains(t, user, "工作经验：4年")
	assert.Contains(t, user, "期望月薪：25-40K")
}

func TestRequirementsFromProfile_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "无特殊要求", RequirementsFromProfile(domain.UserProfile{}))
}

func TestBudgeter_Fit(t *testing.T) {
	t.Parallel()
	b := NewBudgeter()

	short := "短文本"
	assert.Equal(t, short, b.Fit(short, "gpt-4", 100))
	assert.Empty(t, b.Fit(short, "gpt-4", 0))

	long := strings.Repeat("市场分析样本数据 ", 5000)
	fitted := b.Fit(long, "gpt-4", 200)
	require.NotEmpty(t, fitted)
	assert.Less(t, len(fitted), len(long))
}

func TestNormalizeModelName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "gpt-4", normalizeModelName("openai/GPT-4o-mini"))
	assert.Equal(t, "gpt-3.5-turbo", normalizeModelName("gpt-3.5-turbo-0125"))
	assert.Equal(t, "gpt-4", normalizeModelName("deepseek-chat"))
}
