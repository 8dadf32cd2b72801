// Package prompt builds the five canonical task prompts. Builders are pure
// functions of their inputs; truncation budgets keep every prompt inside the
// adapters' token limits.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
	"github.com/fairyhunter13/ai-job-analyzer/pkg/textx"
)

// Per-field truncation budgets (runes), and the token ceiling for the
// cross-sectional market prompt.
const (
	screenDescriptionRunes  = 200
	extractDescriptionRunes = 300
	matchDescriptionRunes   = 400
	shortFieldRunes         = 80
	adviceRunes             = 300
	marketPromptTokens      = 6000
)

const jsonOnlyDirective = "请严格输出 JSON，不要输出任何解释、推理过程或 Markdown 标记。"

// Screen builds the stage-1 relevance prompt for one job against the
// candidate's intentions and exclusions.
func Screen(job domain.JobRecord, profile domain.UserProfile) string {
	var b strings.Builder
	b.WriteString("你是求职助手，判断下面的岗位是否与求职意向相关。\n\n")
	fmt.Fprintf(&b, "岗位名称：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Title), shortFieldRunes))
	fmt.Fprintf(&b, "公司：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Company), shortFieldRunes))
	fmt.Fprintf(&b, "岗位描述：%s\n\n", textx.TruncateRunes(textx.SanitizeText(job.Description), screenDescriptionRunes))
	fmt.Fprintf(&b, "求职意向：%s\n", strings.Join(profile.Intentions, "、"))
	if len(profile.ExcludedTypes) > 0 {
		fmt.Fprintf(&b, "排除类型：%s\n", strings.Join(profile.ExcludedTypes, "、"))
	}
	b.WriteString("\n判断规则：岗位属于排除类型时一律不相关；否则与任一求职意向对口即为相关。\n")
	b.WriteString(jsonOnlyDirective)
	b.WriteString("\n输出格式：{\"relevant\": true或false, \"reason\": \"一句话理由\"}")
	return b.String()
}

// Extract builds the stage-2 information extraction prompt.
func Extract(job domain.JobRecord) string {
	var b strings.Builder
	b.WriteString("从下面的岗位描述中提取结构化信息。\n\n")
	fmt.Fprintf(&b, "岗位名称：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Title), shortFieldRunes))
	fmt.Fprintf(&b, "公司：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Company), shortFieldRunes))
	fmt.Fprintf(&b, "岗位描述：%s\n\n", textx.TruncateRunes(textx.SanitizeText(job.Description), extractDescriptionRunes))
	b.WriteString("未提及的字段填 \"" + domain.UnknownValue + "\"，列表字段没有内容时填 []。\n")
	b.WriteString(jsonOnlyDirective)
	b.WriteString(`
输出格式：
{"responsibilities": ["职责"], "hard_skills": {"required": ["必备技能"], "preferred": ["加分技能"]}, "soft_skills": ["软技能"], "experience_required": "经验要求", "education_required": "学历要求"}`)
	return b.String()
}

// MarketSamples is the aggregated stage-2 material fed into the single
// market cognition call.
type MarketSamples struct {
	TotalJobs        int
	HardSkills       []string
	SoftSkills       []string
	Responsibilities []string
	Experience       []string
	Education        []string
}

// SamplesFromExtractions flattens extractions into market samples,
// preserving first-seen order of terms.
func SamplesFromExtractions(extractions []domain.ExtractedInfo) MarketSamples {
	s := MarketSamples{TotalJobs: len(extractions)}
	for _, e := range extractions {
		s.HardSkills = append(s.HardSkills, e.HardSkills.Required...)
		s.HardSkills = append(s.HardSkills, e.HardSkills.Preferred...)
		s.SoftSkills = append(s.SoftSkills, e.SoftSkills...)
		s.Responsibilities = append(s.Responsibilities, e.Responsibilities...)
		if e.ExperienceRequired != domain.UnknownValue {
			s.Experience = append(s.Experience, e.ExperienceRequired)
		}
		if e.EducationRequired != domain.UnknownValue {
			s.Education = append(s.Education, e.EducationRequired)
		}
	}
	return s
}

// Market builds the stage-3 system and user prompts over all extractions.
// The user portion is clamped to the market token budget.
func Market(samples MarketSamples, model string) (system, user string) {
	system = "你是资深招聘市场分析师，基于岗位提取数据输出市场认知报告。" + jsonOnlyDirective

	var b strings.Builder
	fmt.Fprintf(&b, "共分析 %d 个岗位。\n\n", samples.TotalJobs)
	fmt.Fprintf(&b, "硬技能样本：%s\n", strings.Join(samples.HardSkills, "、"))
	fmt.Fprintf(&b, "软技能样本：%s\n", strings.Join(samples.SoftSkills, "、"))
	fmt.Fprintf(&b, "职责样本：%s\n", strings.Join(samples.Responsibilities, "；"))
	fmt.Fprintf(&b, "经验要求样本：%s\n", strings.Join(samples.Experience, "、"))
	fmt.Fprintf(&b, "学历要求样本：%s\n\n", strings.Join(samples.Education, "、"))
	b.WriteString(`按出现频率将技能分桶：frequency>=0.7 为 core_required，0.3-0.7 为 important_preferred，<0.3 为 special_scenarios。
输出格式：
{"overview": {"total_jobs_analyzed": 数量, "analysis_date": "YYYY-MM-DD"},
 "skill_requirements": {"hard_skills": {"core_required": [{"name": "技能", "frequency": 0.8, "importance": "核心必备"}], "important_preferred": [], "special_scenarios": []}, "soft_skills": {"core_required": [], "important_preferred": [], "special_scenarios": []}},
 "core_responsibilities": ["职责"],
 "market_insights": {"tech_stack_trends": [], "emerging_skills": [], "experience_distribution": {}, "education_requirements": {}},
 "key_findings": ["结论"]}`)

	user = DefaultBudgeter.Fit(b.String(), model, marketPromptTokens)
	return system, user
}

func writeJobBlock(b *strings.Builder, job domain.JobRecord) {
	fmt.Fprintf(b, "岗位名称：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Title), shortFieldRunes))
	fmt.Fprintf(b, "公司：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Company), shortFieldRunes))
	if job.Salary != "" {
		fmt.Fprintf(b, "薪资：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Salary), shortFieldRunes))
	}
	if job.Location != "" {
		fmt.Fprintf(b, "地点：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Location), shortFieldRunes))
	}
	fmt.Fprintf(b, "岗位描述：%s\n", textx.TruncateRunes(textx.SanitizeText(job.Description), matchDescriptionRunes))
}

const matchSystem = "你是资深职业顾问，评估候选人与岗位的匹配程度，评分范围 0-10。" + jsonOnlyDirective

// MatchFull builds the stage-4 prompt used when a résumé summary is present.
// The demanded schema carries the full six-dimension breakdown.
func MatchFull(job domain.JobRecord, resume domain.ResumeSummary) (system, user string) {
	var b strings.Builder
	writeJobBlock(&b, job)

	b.WriteString("\n候选人简历摘要：\n")
	fmt.Fprintf(&b, "竞争力评分：%.1f/10\n", resume.CompetitivenessScore)
	fmt.Fprintf(&b, "优势：%s\n", strings.Join(resume.Strengths, "、"))
	if len(resume.DimensionScores) > 0 {
		keys := make([]string, 0, len(resume.DimensionScores))
		for k := range resume.DimensionScores {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s %.1f", k, resume.DimensionScores[k]))
		}
		fmt.Fprintf(&b, "维度评分：%s\n", strings.Join(pairs, "、"))
	}
	if resume.CareerAdvice != "" {
		fmt.Fprintf(&b, "职业建议：%s\n", textx.TruncateRunes(textx.SanitizeText(resume.CareerAdvice), adviceRunes))
	}
	if len(resume.RecommendedJobs) > 0 {
		fmt.Fprintf(&b, "推荐岗位方向：%s\n", strings.Join(resume.RecommendedJobs, "、"))
	}

	b.WriteString(`
输出格式：
{"score": 7.5, "recommendation": "推荐",
 "dimension_scores": {"job_match": 8, "skill_match": 7, "experience_match": 7, "skill_coverage": 6, "keyword_match": 7, "hard_requirements": 8},
 "matched_skills": [], "missing_skills": [], "match_points": [], "mismatch_points": [],
 "reason": "评分理由", "summary": "一句话总结", "action_recommendation": "求职行动建议"}`)
	return matchSystem, b.String()
}

// MatchSimple builds the reduced stage-4 prompt used without a résumé.
func MatchSimple(job domain.JobRecord, requirements string) (system, user string) {
	var b strings.Builder
	writeJobBlock(&b, job)
	fmt.Fprintf(&b, "\n候选人要求：%s\n", textx.TruncateRunes(textx.SanitizeText(requirements), adviceRunes))
	b.WriteString(`
输出格式：
{"score": 6.0, "recommendation": "可以考虑",
 "dimension_scores": {"job_match": 6, "skill_coverage": 5, "keyword_match": 6},
 "matched_skills": [], "missing_skills": [],
 "reason": "评分理由", "summary": "一句话总结"}`)
	return matchSystem, b.String()
}

// RequirementsFromProfile rule-assembles the requirements text fed to
// MatchSimple when no résumé summary is available.
func RequirementsFromProfile(profile domain.UserProfile) string {
	var parts []string
	if len(profile.Intentions) > 0 {
		parts = append(parts, "期望岗位："+strings.Join(profile.Intentions, "、"))
	}
	if len(profile.Skills) > 0 {
		parts = append(parts, "技能："+strings.Join(profile.Skills, "、"))
	}
	if profile.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("工作经验：%d年", profile.ExperienceYears))
	}
	if profile.SalaryRange.Min > 0 || profile.SalaryRange.Max > 0 {
		parts = append(parts, fmt.Sprintf("期望月薪：%d-%dK", profile.SalaryRange.Min, profile.SalaryRange.Max))
	}
	if len(profile.ExcludedTypes) > 0 {
		parts = append(parts, "排除："+strings.Join(profile.ExcludedTypes, "、"))
	}
	if len(parts) == 0 {
		return "无特殊要求"
	}
	return strings.Join(parts, "；")
}
