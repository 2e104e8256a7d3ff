package services

import (
	"context"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/openai/openai-go/v3/shared"
	log "github.com/sirupsen/logrus"

	"aidraw-backend/internal/models"
)

const (
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
	OpenAIDefaultModel   = "gpt-4o-mini"
)

// OpenAIProvider talks to OpenAI-compatible chat completion endpoints.
type OpenAIProvider struct {
	httpClient *http.Client
}

func NewOpenAIProvider(httpClient *http.Client) *OpenAIProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIProvider{httpClient: httpClient}
}

func (p *OpenAIProvider) Name() string { return models.ProviderOpenAI }

func (p *OpenAIProvider) Complete(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (string, error) {
	cfg = withDefaults(cfg, OpenAIDefaultBaseURL, OpenAIDefaultModel)
	return p.complete(ctx, p.Name(), messages, cfg)
}

func (p *OpenAIProvider) Stream(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (TextStream, error) {
	cfg = withDefaults(cfg, OpenAIDefaultBaseURL, OpenAIDefaultModel)
	return p.stream(ctx, p.Name(), messages, cfg), nil
}

// newClient builds a client for one call. Retries are disabled: a failed call
// is reported to the caller as is.
func (p *OpenAIProvider) newClient(cfg models.ProviderConfig) openai.Client {
	return openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(p.httpClient),
		option.WithMaxRetries(0),
	)
}

func (p *OpenAIProvider) complete(ctx context.Context, provider string, messages []models.ChatMessage, cfg models.ProviderConfig) (string, error) {
	client := p.newClient(cfg)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(cfg.ModelID),
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", classifyOpenAIError(provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Provider: provider, Message: provider + " returned no choices"}
	}

	log.WithFields(log.Fields{
		"provider":          provider,
		"model":             cfg.ModelID,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("completion received")

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) stream(ctx context.Context, provider string, messages []models.ChatMessage, cfg models.ProviderConfig) TextStream {
	client := p.newClient(cfg)

	stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(cfg.ModelID),
		Messages: toOpenAIMessages(messages),
	})
	return &openAIStream{provider: provider, stream: stream}
}

// System prompts stay inline in the messages array.
func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case models.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}

// openAIStream yields the non-empty content deltas of an OpenAI chunk stream.
// The SSE decoder stops at "data: [DONE]" or at EOF.
type openAIStream struct {
	provider string
	stream   *ssestream.Stream[openai.ChatCompletionChunk]
	cur      string
}

func (s *openAIStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			s.cur = delta
			return true
		}
	}
	return false
}

func (s *openAIStream) Current() string { return s.cur }

func (s *openAIStream) Err() error {
	return classifyOpenAIError(s.provider, s.stream.Err())
}

func (s *openAIStream) Close() error { return s.stream.Close() }
