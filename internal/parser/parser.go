// Package parser extracts structured records from free-form model output.
//
// Model completions arrive as fenced JSON, JSON buried in prose, truncated
// objects, or a bare chain-of-thought. The extraction cascade tries the
// cheap exact paths first and degrades towards lexical heuristics for the
// schemas that opt in. The cascade is pure: no network, no clock.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

var (
	fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	// one nesting level of braces
	permissiveRe = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	lineComment  = regexp.MustCompile(`(?m)//[^\n]*`)
	trailingComm = regexp.MustCompile(`,(\s*[}\]])`)
)

// Schema names the record kind and its required top-level fields.
type Schema struct {
	Name     string
	Required []string
}

var (
	SchemaScreening  = Schema{Name: "screening", Required: []string{"relevant"}}
	SchemaExtraction = Schema{Name: "extraction", Required: []string{"responsibilities", "hard_skills"}}
	SchemaMarket     = Schema{Name: "market_report", Required: []string{"skill_requirements"}}
	SchemaMatch      = Schema{Name: "match", Required: []string{"score"}}
)

// ExtractObject runs the cascade over text and returns the first substring
// that parses as a JSON object. First success wins.
func ExtractObject(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)

	// 1. fenced block
	if m := fencedRe.FindStringSubmatch(trimmed); m != nil {
		if raw, ok := asObject(m[1]); ok {
			return raw, nil
		}
	}
	// 2. the whole text
	if raw, ok := asObject(trimmed); ok {
		return raw, nil
	}
	// 3. brace-balanced substring
	if sub := balancedObject(trimmed); sub != "" {
		if raw, ok := asObject(sub); ok {
			return raw, nil
		}
	}
	// 4. permissive one-level regex
	if m := permissiveRe.FindString(trimmed); m != "" {
		if raw, ok := asObject(m); ok {
			return raw, nil
		}
	}
	// 5. strip line comments and trailing commas, retry
	stripped := trailingComm.ReplaceAllString(lineComment.ReplaceAllString(trimmed, ""), "$1")
	if raw, ok := asObject(strings.TrimSpace(stripped)); ok {
		return raw, nil
	}
	if sub := balancedObject(stripped); sub != "" {
		if raw, ok := asObject(sub); ok {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: no JSON object found", domain.ErrParse)
}

// Parse extracts a JSON object and checks the schema's required fields.
func Parse(text string, schema Schema) (map[string]any, error) {
	raw, err := ExtractObject(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrParse, err)
	}
	for _, field := range schema.Required {
		if _, ok := obj[field]; !ok {
			return nil, fmt.Errorf("%w: schema %s missing field %q", domain.ErrParse, schema.Name, field)
		}
	}
	return obj, nil
}

// asObject reports whether s parses as a JSON object.
func asObject(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}

// balancedObject walks from the first '{' counting depth, aware of strings
// and escapes, and returns the balanced substring or "".
func balancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// clamp10 bounds a score to [0,10].
func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// clamp01 bounds a frequency to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
