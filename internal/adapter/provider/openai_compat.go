package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fairyhunter13/ai-job-analyzer/internal/config"
	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// openAICompat speaks the OpenAI chat-completions dialect shared by
// DeepSeek, OpenAI, and GLM. DeepSeek's reasoner models put their
// chain-of-thought into message.reasoning_content, which salvage handles.
type openAICompat struct {
	httpCore
}

func newOpenAICompat(st settings, cfg config.Config) *openAICompat {
	return &openAICompat{httpCore: newHTTPCore(st, cfg)}
}

func (c *openAICompat) Name() string { return c.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *openAICompat) Chat(ctx context.Context, system, user string, opts domain.CallOptions) (domain.Completion, error) {
	msgs := []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	return c.chat(ctx, "chat", msgs, opts)
}

func (c *openAICompat) Complete(ctx context.Context, prompt string, opts domain.CallOptions) (domain.Completion, error) {
	msgs := []chatMessage{{Role: "user", Content: prompt}}
	return c.chat(ctx, "complete", msgs, opts)
}

func (c *openAICompat) chat(ctx context.Context, op string, msgs []chatMessage, opts domain.CallOptions) (domain.Completion, error) {
	opts = c.resolve(opts)
	body := map[string]any{
		"model":       opts.Model,
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
		"messages":    msgs,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("%w: marshal request: %s", domain.ErrConfig, err)
	}

	header := map[string]string{"Authorization": "Bearer " + c.apiKey}
	raw, err := c.roundTrip(ctx, op, c.baseURL+"/chat/completions", header, b, opts.Timeout)
	if err != nil {
		return domain.Completion{}, err
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content          string `json:"content"`
				ReasoningContent string `json:"reasoning_content"`
			} `json:"message"`
		} `json:"choices"`
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
	if len(out.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("%w: %s: no choices", domain.ErrShape, c.name)
	}
	msg := out.Choices[0].Message
	return c.salvage(msg.Content, msg.ReasoningContent)
}
