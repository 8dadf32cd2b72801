package domain

// Skill demand frequency buckets. An entry's frequency decides its bucket:
// core when at least 70% of extracted jobs name the skill, preferred between
// 30% and 70%, special below 30%.
const (
	FrequencyCore      = 0.7
	FrequencyPreferred = 0.3
)

// ImportanceForFrequency maps a frequency to the bucket's importance label.
func ImportanceForFrequency(freq float64) string {
	switch {
	case freq >= FrequencyCore:
		return "核心必备"
	case freq >= FrequencyPreferred:
		return "重要加分"
	default:
		return "特定场景"
	}
}

// SkillDemand is one skill with its demand frequency across the batch.
type SkillDemand struct {
	Name       string  `json:"name"`
	Frequency  float64 `json:"frequency"`
	Importance string  `json:"importance"`
}

// SkillBuckets splits skills into the three frequency buckets.
type SkillBuckets struct {
	CoreRequired       []SkillDemand `json:"core_required"`
	ImportantPreferred []SkillDemand `json:"important_preferred"`
	SpecialScenarios   []SkillDemand `json:"special_scenarios"`
}

// SkillRequirements covers hard and soft skills separately.
type SkillRequirements struct {
	HardSkills SkillBuckets `json:"hard_skills"`
	SoftSkills SkillBuckets `json:"soft_skills"`
}

// ReportOverview carries batch-level counters. TotalJobsAnalyzed counts the
// records that reached extraction, not the raw input count.
type ReportOverview struct {
	TotalJobsAnalyzed int    `json:"total_jobs_analyzed"`
	AnalysisDate      string `json:"analysis_date"`
}

// MarketInsights aggregates cross-sectional distributions.
type MarketInsights struct {
	TechStackTrends        []string       `json:"tech_stack_trends"`
	EmergingSkills         []string       `json:"emerging_skills"`
	ExperienceDistribution map[string]int `json:"experience_distribution"`
	EducationRequirements  map[string]int `json:"education_requirements"`
}

// MarketReport is the stage-3 cross-sectional aggregation over the batch.
type MarketReport struct {
	Overview             ReportOverview    `json:"overview"`
	SkillRequirements    SkillRequirements `json:"skill_requirements"`
	CoreResponsibilities []string          `json:"core_responsibilities"`
	MarketInsights       MarketInsights    `json:"market_insights"`
	KeyFindings          []string          `json:"key_findings"`
}

// EmptyMarketReport returns a structurally valid report with empty buckets.
// Used when stage 3 fails and no extractions are available to aggregate.
func EmptyMarketReport(total int, date string) MarketReport {
	empty := SkillBuckets{
		CoreRequired:       []SkillDemand{},
		ImportantPreferred: []SkillDemand{},
		SpecialScenarios:   []SkillDemand{},
	}
	return MarketReport{
		Overview: ReportOverview{TotalJobsAnalyzed: total, AnalysisDate: date},
		SkillRequirements: SkillRequirements{
			HardSkills: empty,
			SoftSkills: empty,
		},
		CoreResponsibilities: []string{},
		MarketInsights: MarketInsights{
			TechStackTrends:        []string{},
			EmergingSkills:         []string{},
			ExperienceDistribution: map[string]int{},
			EducationRequirements:  map[string]int{},
		},
		KeyFindings: []string{},
	}
}
