package prompt

import (
	"strings"
	"sync"

	"log/slog"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/fairyhunter13/ai-job-analyzer/pkg/textx"
)

// Budgeter provides thread-safe token counting and truncation so that
// assembled prompts stay inside adapter token limits.
type Budgeter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewBudgeter creates a new token budgeter.
func NewBudgeter() *Budgeter {
	return &Budgeter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultBudgeter is the package-level budgeter used by the builders.
var DefaultBudgeter = NewBudgeter()

// getEncodingForModel returns the tiktoken encoding for a model, cached.
func (b *Budgeter) getEncodingForModel(model string) (*tiktoken.Tiktoken, error) {
	normalized := normalizeModelName(model)

	b.mu.RLock()
	if enc, ok := b.encodingCache[normalized]; ok {
		b.mu.RUnlock()
		return enc, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if enc, ok := b.encodingCache[normalized]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(normalized)
	if err != nil {
		// cl100k_base approximates most modern chat models well enough
		// for budgeting purposes.
		slog.Debug("falling back to cl100k_base encoding",
			slog.String("model", model),
			slog.Any("error", err))
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	b.encodingCache[normalized] = enc
	return enc, nil
}

// normalizeModelName maps provider model IDs to tiktoken-compatible names.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if strings.Contains(model, "/") {
		parts := strings.Split(model, "/")
		model = parts[len(parts)-1]
	}
	switch {
	case strings.Contains(model, "gpt-4"):
		return "gpt-4"
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		// DeepSeek, GLM, Claude, and Gemini tokenize close enough to
		// cl100k_base for budget enforcement.
		return "gpt-4"
	}
}

// Count returns the token count of text for model, estimating roughly four
// characters per token when the encoding is unavailable.
func (b *Budgeter) Count(text, model string) int {
	enc, err := b.getEncodingForModel(model)
	if err != nil {
		slog.Warn("failed to load encoding, using estimate", slog.String("model", model), slog.Any("error", err))
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Fit truncates text to at most maxTokens tokens for model.
func (b *Budgeter) Fit(text, model string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	enc, err := b.getEncodingForModel(model)
	if err != nil {
		// rune-based cut so a multi-byte character is never split
		return textx.TruncateRunes(text, maxTokens*4)
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}
