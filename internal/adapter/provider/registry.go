package provider

import (
	"fmt"
	"sort"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// Provider identifiers.
const (
	IDDeepSeek = "deepseek"
	IDOpenAI   = "openai"
	IDGLM      = "glm"
	IDClaude   = "claude"
	IDGemini   = "gemini"
)

// Factory builds a provider, optionally overriding the default model.
type Factory func(modelOverride string) (domain.Provider, error)

// Registry maps provider identifiers to adapter factories. Read-mostly and
// immutable after New.
type Registry struct {
	factories map[string]Factory
}

// New builds the registry over all five adapters. Credentials are resolved
// lazily: a missing key surfaces as ErrConfig when the provider is resolved,
// not at registry construction.
func New(cfg config.Config) *Registry {
	mk := func(st settings, build func(settings, config.Config) domain.Provider) Factory {
		return func(modelOverride string) (domain.Provider, error) {
			if st.apiKey == "" {
				return nil, fmt.Errorf("%w: credential missing for provider %q", domain.ErrConfig, st.name)
			}
			// copy so an override never leaks into later resolutions
			local := st
			if modelOverride != "" {
				local.model = modelOverride
			}
			return build(local, cfg), nil
		}
	}

	base := settings{
		temperature: cfg.AITemperature,
		maxTokens:   cfg.AIMaxTokens,
		timeout:     cfg.AICallTimeout,
	}
	deepseek := base
	deepseek.name, deepseek.baseURL, deepseek.apiKey, deepseek.model = IDDeepSeek, cfg.DeepSeekBaseURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel
	// DeepSeek reasoner models need the long deadline and reasoning salvage.
	deepseek.reasoning = true
	deepseek.timeout = cfg.AIReasoningTimeout

	openai := base
	openai.name, openai.baseURL, openai.apiKey, openai.model = IDOpenAI, cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel

	glm := base
	glm.name, glm.baseURL, glm.apiKey, glm.model = IDGLM, cfg.GLMBaseURL, cfg.GLMAPIKey, cfg.GLMModel

	claude := base
	claude.name, claude.baseURL, claude.apiKey, claude.model = IDClaude, cfg.ClaudeBaseURL, cfg.ClaudeAPIKey, cfg.ClaudeModel

	gemini := base
	gemini.name, gemini.baseURL, gemini.apiKey, gemini.model = IDGemini, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel

	compat := func(st settings, cfg config.Config) domain.Provider { return newOpenAICompat(st, cfg) }
	return &Registry{factories: map[string]Factory{
		IDDeepSeek: mk(deepseek, compat),
		IDOpenAI:   mk(openai, compat),
		IDGLM:      mk(glm, compat),
		IDClaude:   mk(claude, func(st settings, cfg config.Config) domain.Provider { return newClaude(st, cfg) }),
		IDGemini:   mk(gemini, func(st settings, cfg config.Config) domain.Provider { return newGemini(st, cfg) }),
	}}
}

// Resolve returns a ready adapter for id, with modelOverride applied when
// non-empty. Unknown ids and missing credentials are ErrConfig.
func (r *Registry) Resolve(id, modelOverride string) (domain.Provider, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrConfig, id)
	}
	return f(modelOverride)
}

// IDs returns the registered provider identifiers sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
