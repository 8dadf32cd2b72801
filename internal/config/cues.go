package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed cues.yaml
var defaultCuesYAML []byte

// ScreeningCues holds the phrase lists the lexical screening heuristic scans
// for. The lists are configuration: only enumerated phrases are matched.
type ScreeningCues struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// LoadScreeningCues returns the cue lists from path, or the embedded
// defaults when path is empty.
func LoadScreeningCues(path string) (ScreeningCues, error) {
	data := defaultCuesYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return ScreeningCues{}, fmt.Errorf("op=config.LoadScreeningCues: %w", err)
		}
		data = b
	}
	var cues ScreeningCues
	if err := yaml.Unmarshal(data, &cues); err != nil {
		return ScreeningCues{}, fmt.Errorf("op=config.LoadScreeningCues: %w", err)
	}
	if len(cues.Positive) == 0 && len(cues.Negative) == 0 {
		return ScreeningCues{}, fmt.Errorf("op=config.LoadScreeningCues: empty cue lists")
	}
	return cues, nil
}
