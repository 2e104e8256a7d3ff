package models

// Message roles accepted by the chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Supported upstream providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderDeepSeek  = "deepseek"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"oneof=system user assistant"`
	Content string `json:"content"`
}

// ProviderConfig selects the upstream provider and its credentials.
type ProviderConfig struct {
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	ModelID  string `json:"modelId,omitempty"`
}

// HasKey reports whether the config carries a non-empty API key. Only such
// configs override server defaults. The key is not trimmed: whatever the
// caller sent is forwarded.
func (c *ProviderConfig) HasKey() bool {
	return c != nil && c.APIKey != ""
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages  []ChatMessage   `json:"messages" validate:"required,dive"`
	Stream    bool            `json:"stream"`
	LLMConfig *ProviderConfig `json:"llmConfig,omitempty"`
}

// ChatResponse is the reply for non-streaming calls.
type ChatResponse struct {
	Content string `json:"content"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServerInfo describes the public part of the server configuration.
type ServerInfo struct {
	DailyQuota             int    `json:"dailyQuota"`
	AccessPasswordRequired bool   `json:"accessPasswordRequired"`
	Provider               string `json:"provider"`
	ModelID                string `json:"modelId"`
}
