package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// heuristicConfidence marks verdicts recovered lexically rather than parsed.
const heuristicConfidence = 0.5

var sentenceSplit = regexp.MustCompile(`[。！？!?；;\n]+`)

// ScreenByCues scans sentences of a reasoning trace for the configured cue
// phrases. Negative cues win within a sentence, so "……不相关" is never read
// as a positive match. Only enumerated phrases are matched.
func ScreenByCues(text string, cues config.ScreeningCues) (domain.ScreeningVerdict, bool) {
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, neg := range cues.Negative {
			if neg != "" && strings.Contains(lower, strings.ToLower(neg)) {
				return domain.ScreeningVerdict{Relevant: false, Reason: sentence, Confidence: heuristicConfidence}, true
			}
		}
		for _, pos := range cues.Positive {
			if pos != "" && strings.Contains(lower, strings.ToLower(pos)) {
				return domain.ScreeningVerdict{Relevant: true, Reason: sentence, Confidence: heuristicConfidence}, true
			}
		}
	}
	return domain.ScreeningVerdict{}, false
}

var scoreRe = regexp.MustCompile(`(?i)(?:综合评分|综合得分|总评分|总分|评分|得分|分数|score)[^0-9]{0,12}(\d+(?:\.\d+)?)`)

// ScoreByKeyword finds the first number following a score keyword and
// clamps it to [0,10].
func ScoreByKeyword(text string) (float64, bool) {
	m := scoreRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return clamp10(v), true
}
