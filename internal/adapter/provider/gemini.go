package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// geminiClient speaks the Google generateContent API.
type geminiClient struct {
	httpCore
}

func newGemini(st settings, cfg config.Config) *geminiClient {
	return &geminiClient{httpCore: newHTTPCore(st, cfg)}
}

func (c *geminiClient) Name() string { return c.name }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (c *geminiClient) Chat(ctx context.Context, system, user string, opts domain.CallOptions) (domain.Completion, error) {
	return c.generate(ctx, "chat", system, user, opts)
}

func (c *geminiClient) Complete(ctx context.Context, prompt string, opts domain.CallOptions) (domain.Completion, error) {
	return c.generate(ctx, "complete", "", prompt, opts)
}

func (c *geminiClient) generate(ctx context.Context, op, system, user string, opts domain.CallOptions) (domain.Completion, error) {
	opts = c.resolve(opts)
	body := map[string]any{
		"contents": []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: user}}},
		},
		"generationConfig": map[string]any{
			"temperature":     opts.Temperature,
			"maxOutputTokens": opts.MaxTokens,
		},
	}
	if system != "" {
		body["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%w: marshal request: %s", domain.ErrConfig, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, opts.Model)
	header := map[string]string{"x-goog-api-key": c.apiKey}
	raw, err := c.roundTrip(ctx, op, endpoint, header, b, opts.Timeout)
	if err != nil {
		return domain.Completion{}, err
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Completion{}, fmt.Errorf("%w: %s: %s", domain.ErrShape, c.name, truncateDetail(err.Error()))
	}
	if out.Error != nil && out.Error.Message != "" {
		return domain.Completion{}, fmt.Errorf("%w: %s: %s", domain.ErrUpstream, c.name, truncateDetail(out.Error.Message))
	}
	if len(out.Candidates) == 0 {
		return domain.Completion{}, fmt.Errorf("%w: %s", domain.ErrEmptyCompletion, c.name)
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	// Gemini has no separate reasoning field; salvage only enforces the
	// empty-completion error here.
	return c.salvage(strings.TrimSpace(text.String()), "")
}
