package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

func TestRegistry_ResolveKnownProviders(t *testing.T) {
	t.Parallel()
	cfg := config.Config{
		DeepSeekAPIKey: "k1",
		ClaudeAPIKey:   "k2",
		GeminiAPIKey:   "k3",
		OpenAIAPIKey:   "k4",
		GLMAPIKey:      "k5",
	}
	reg := New(cfg)
	for _, id := range reg.IDs() {
		p, err := reg.Resolve(id, "")
		require.NoError(t, err, id)
		assert.Equal(t, id, p.Name())
	}
}

func TestRegistry_MissingCredential(t *testing.T) {
	t.Parallel()
	reg := New(config.Config{DeepSeekAPIKey: "k1"})

	_, err := reg.Resolve(IDClaude, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)

	// the configured provider still resolves
	_, err = reg.Resolve(IDDeepSeek, "")
	assert.NoError(t, err)
}

func TestRegistry_UnknownID(t *testing.T) {
	t.Parallel()
	reg := New(config.Config{})
	_, err := reg.Resolve("grok", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestRegistry_IDsSorted(t *testing.T) {
	t.Parallel()
	reg := New(config.Config{})
	assert.Equal(t, []string{IDClaude, IDDeepSeek, IDGemini, IDGLM, IDOpenAI}, reg.IDs())
}

func TestRegistry_ModelOverride(t *testing.T) {
	t.Parallel()
	cfg := config.Config{OpenAIAPIKey: "k", OpenAIModel: "gpt-4o-mini"}
	reg := New(cfg)
	p, err := reg.Resolve(IDOpenAI, "gpt-4o")
	require.NoError(t, err)
	compat, ok := p.(*openAICompat)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", compat.model)

	// the override is scoped to one resolution, not sticky
	p, err = reg.Resolve(IDOpenAI, "")
	require.NoError(t, err)
	compat, ok = p.(*openAICompat)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", compat.model)
}
