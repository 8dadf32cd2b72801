package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
	"github.com/fairyhunter13/ai-job-analyzer/pkg/textx"
)

// The deterministic aggregator. It backs stage 3 whenever the model call
// fails, guaranteeing a structurally complete report whose numbers reflect
// the actual extractions.

const (
	maxCoreResponsibilities = 5
	maxTrendSkills          = 5
)

var (
	expRangeRe = regexp.MustCompile(`(\d+)\s*[-~—至]\s*(\d+)\s*年`)
	expPlusRe  = regexp.MustCompile(`(\d+)\s*年以上`)
)

// education keywords, checked in order
var educationKeywords = []string{"博士", "硕士", "本科", "大专"}

// termCount tracks one normalized term with its first-seen display form.
type termCount struct {
	display string
	count   int
}

// countPerJob counts, for each normalized term, the number of jobs that
// mention it at least once. Per-job dedupe keeps every frequency <= 1.
func countPerJob(perJob [][]string) map[string]*termCount {
	counts := make(map[string]*termCount)
	for _, terms := range perJob {
		seen := make(map[string]bool)
		for _, t := range terms {
			key := textx.NormalizeTerm(t)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if c, ok := counts[key]; ok {
				c.count++
			} else {
				counts[key] = &termCount{display: strings.TrimSpace(t), count: 1}
			}
		}
	}
	return counts
}

func bucketize(counts map[string]*termCount, total int) domain.SkillBuckets {
	buckets := domain.SkillBuckets{
		CoreRequired:       []domain.SkillDemand{},
		ImportantPreferred: []domain.SkillDemand{},
		SpecialScenarios:   []domain.SkillDemand{},
	}
	if total == 0 {
		return buckets
	}
	demands := make([]domain.SkillDemand, 0, len(counts))
	for _, c := range counts {
		freq := float64(c.count) / float64(total)
		demands = append(demands, domain.SkillDemand{
			Name:       c.display,
			Frequency:  freq,
			Importance: domain.ImportanceForFrequency(freq),
		})
	}
	sort.Slice(demands, func(i, j int) bool {
		if demands[i].Frequency != demands[j].Frequency {
			return demands[i].Frequency > demands[j].Frequency
		}
		return demands[i].Name < demands[j].Name
	})
	for _, d := range demands {
		switch {
		case d.Frequency >= domain.FrequencyCore:
			buckets.CoreRequired = append(buckets.CoreRequired, d)
		case d.Frequency >= domain.FrequencyPreferred:
			buckets.ImportantPreferred = append(buckets.ImportantPreferred, d)
		default:
			buckets.SpecialScenarios = append(buckets.SpecialScenarios, d)
		}
	}
	return buckets
}

func topTerms(counts map[string]*termCount, n int) []string {
	type entry struct {
		display string
		count   int
	}
	entries := make([]entry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, entry{c.display, c.count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].display < entries[j].display
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.display
	}
	return out
}

// experienceBucket maps a free-text experience requirement to a bucket label.
func experienceBucket(s string) string {
	if m := expRangeRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "年"
	}
	if m := expPlusRe.FindStringSubmatch(s); m != nil {
		return m[1] + "年以上"
	}
	if strings.Contains(s, "应届") {
		return "应届"
	}
	if strings.Contains(s, "不限") || strings.Contains(s, "无要求") {
		return "不限"
	}
	return "其他"
}

// educationBucket maps a free-text education requirement to a bucket label.
func educationBucket(s string) string {
	for _, kw := range educationKeywords {
		if strings.Contains(s, kw) {
			return kw
		}
	}
	if strings.Contains(s, "不限") {
		return "不限"
	}
	return "其他"
}

// BuildMarketReport aggregates extractions into the market report. total is
// the count of records that reached the extraction stage, which may exceed
// len(extractions) when some extractions fail-marked.
func BuildMarketReport(extractions []domain.ExtractedInfo, total int, date string) domain.MarketReport {
	report := domain.EmptyMarketReport(total, date)
	if len(extractions) == 0 {
		return report
	}

	hardPerJob := make([][]string, len(extractions))
	softPerJob := make([][]string, len(extractions))
	respPerJob := make([][]string, len(extractions))
	for i, e := range extractions {
		hardPerJob[i] = append(append([]string{}, e.HardSkills.Required...), e.HardSkills.Preferred...)
		softPerJob[i] = e.SoftSkills
		respPerJob[i] = e.Responsibilities

		if e.ExperienceRequired != "" && e.ExperienceRequired != domain.UnknownValue {
			report.MarketInsights.ExperienceDistribution[experienceBucket(e.ExperienceRequired)]++
		}
		if e.EducationRequired != "" && e.EducationRequired != domain.UnknownValue {
			report.MarketInsights.EducationRequirements[educationBucket(e.EducationRequired)]++
		}
	}

	// frequency denominator is the number of successful extractions
	hardCounts := countPerJob(hardPerJob)
	softCounts := countPerJob(softPerJob)
	report.SkillRequirements.HardSkills = bucketize(hardCounts, len(extractions))
	report.SkillRequirements.SoftSkills = bucketize(softCounts, len(extractions))
	report.CoreResponsibilities = topTerms(countPerJob(respPerJob), maxCoreResponsibilities)

	report.MarketInsights.TechStackTrends = topTerms(hardCounts, maxTrendSkills)
	for _, d := range report.SkillRequirements.HardSkills.SpecialScenarios {
		if len(report.MarketInsights.EmergingSkills) >= maxTrendSkills {
			break
		}
		report.MarketInsights.EmergingSkills = append(report.MarketInsights.EmergingSkills, d.Name)
	}

	report.KeyFindings = append(report.KeyFindings, fmt.Sprintf("本次共分析 %d 个岗位", total))
	if trends := report.MarketInsights.TechStackTrends; len(trends) > 0 {
		report.KeyFindings = append(report.KeyFindings, fmt.Sprintf("需求最高的硬技能为 %s", trends[0]))
	}
	if core := report.SkillRequirements.HardSkills.CoreRequired; len(core) > 0 {
		report.KeyFindings = append(report.KeyFindings, fmt.Sprintf("核心必备硬技能共 %d 项", len(core)))
	}
	return report
}
