package services

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"

	"aidraw-backend/internal/models"
)

const (
	AnthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	AnthropicDefaultModel   = "claude-sonnet-4-5"
)

// AnthropicProvider talks to the Anthropic Messages API. Unlike OpenAI, the
// API takes system prompts in a top-level field; the client hoists every
// system message there.
type AnthropicProvider struct {
	maxTokens int
}

func NewAnthropicProvider(maxTokens int) *AnthropicProvider {
	return &AnthropicProvider{maxTokens: maxTokens}
}

func (p *AnthropicProvider) Name() string { return models.ProviderAnthropic }

func (p *AnthropicProvider) Complete(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (string, error) {
	cfg = withDefaults(cfg, AnthropicDefaultBaseURL, AnthropicDefaultModel)

	llm, err := p.newLLM(cfg)
	if err != nil {
		return "", err
	}

	resp, err := llm.GenerateContent(ctx, toAnthropicMessages(messages), p.callOptions(cfg)...)
	if err != nil {
		return "", classifyAnthropicError(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Provider: p.Name(), Message: "anthropic returned no content"}
	}
	return resp.Choices[0].Content, nil
}

// Stream runs the streaming call in a producer goroutine; each text delta is
// handed to the consumer through a channel.
func (p *AnthropicProvider) Stream(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (TextStream, error) {
	cfg = withDefaults(cfg, AnthropicDefaultBaseURL, AnthropicDefaultModel)

	llm, err := p.newLLM(cfg)
	if err != nil {
		return nil, err
	}

	content := toAnthropicMessages(messages)
	return newChanStream(ctx, func(ctx context.Context, emit func(string) error) error {
		opts := append(p.callOptions(cfg), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			return emit(string(chunk))
		}))

		if _, err := llm.GenerateContent(ctx, content, opts...); err != nil {
			if ctx.Err() != nil {
				log.WithField("provider", p.Name()).Debug("stream cancelled by consumer")
				return ctx.Err()
			}
			return classifyAnthropicError(p.Name(), err)
		}
		return nil
	}), nil
}

func (p *AnthropicProvider) newLLM(cfg models.ProviderConfig) (*anthropic.LLM, error) {
	llm, err := anthropic.New(
		anthropic.WithToken(cfg.APIKey),
		anthropic.WithModel(cfg.ModelID),
		anthropic.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, &UpstreamError{Provider: p.Name(), Message: err.Error()}
	}
	return llm, nil
}

func (p *AnthropicProvider) callOptions(cfg models.ProviderConfig) []llms.CallOption {
	return []llms.CallOption{
		llms.WithModel(cfg.ModelID),
		llms.WithMaxTokens(p.maxTokens),
	}
}

func toAnthropicMessages(messages []models.ChatMessage) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case models.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case models.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		result = append(result, llms.TextParts(role, msg.Content))
	}
	return result
}
