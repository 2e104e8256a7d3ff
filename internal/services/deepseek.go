package services

import (
	"context"

	"aidraw-backend/internal/models"
)

const (
	DeepSeekDefaultBaseURL = "https://api.deepseek.com/v1"
	DeepSeekDefaultModel   = "deepseek-chat"
)

// DeepSeekProvider reuses the OpenAI adapter: DeepSeek speaks the same request
// shape and the same incremental event framing.
type DeepSeekProvider struct {
	openai *OpenAIProvider
}

func NewDeepSeekProvider(openai *OpenAIProvider) *DeepSeekProvider {
	return &DeepSeekProvider{openai: openai}
}

func (p *DeepSeekProvider) Name() string { return models.ProviderDeepSeek }

func (p *DeepSeekProvider) Complete(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (string, error) {
	cfg = withDefaults(cfg, DeepSeekDefaultBaseURL, DeepSeekDefaultModel)
	return p.openai.complete(ctx, p.Name(), messages, cfg)
}

func (p *DeepSeekProvider) Stream(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (TextStream, error) {
	cfg = withDefaults(cfg, DeepSeekDefaultBaseURL, DeepSeekDefaultModel)
	return p.openai.stream(ctx, p.Name(), messages, cfg), nil
}
