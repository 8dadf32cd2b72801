package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

const anthropicVersion = "2023-06-01"

// claudeClient speaks the Anthropic messages API. Extended-thinking blocks
// are collected as the reasoning trace for salvage.
type claudeClient struct {
	httpCore
}

func newClaude(st settings, cfg config.Config) *claudeClient {
	return &claudeClient{httpCore: newHTTPCore(st, cfg)}
}

func (c *claudeClient) Name() string { return c.name }

func (c *claudeClient) Chat(ctx context.Context, system, user string, opts domain.CallOptions) (domain.Completion, error) {
	return c.messages(ctx, "chat", system, user, opts)
}

func (c *claudeClient) Complete(ctx context.Context, prompt string, opts domain.CallOptions) (domain.Completion, error) {
	return c.messages(ctx, "complete", "", prompt, opts)
}

func (c *claudeClient) messages(ctx context.Context, op, system, user string, opts domain.CallOptions) (domain.Completion, error) {
	opts = c.resolve(opts)
	body := map[string]any{
		"model":       opts.Model,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}
	if system != "" {
		body["system"] = system
	}
	b, err := json.Marshal(body)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%w: marshal request: %s", domain.ErrConfig, err)
	}

	header := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}
	raw, err := c.roundTrip(ctx, op, c.baseURL+"/v1/messages", header, b, opts.Timeout)
	if err != nil {
		return domain.Completion{}, err
	}

	var out struct {
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			Thinking string `json:"thinking"`
		} `json:"content"`
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
	if len(out.Content) == 0 {
		return domain.Completion{}, fmt.Errorf("%w: %s: no content blocks", domain.ErrShape, c.name)
	}

	var text, thinking strings.Builder
	for _, block := range out.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "thinking":
			thinking.WriteString(block.Thinking)
		}
	}
	return c.salvage(strings.TrimSpace(text.String()), strings.TrimSpace(thinking.String()))
}
