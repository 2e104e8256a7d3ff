package services

import (
	"context"
	"strings"

	"aidraw-backend/internal/models"
)

// ChatProvider is one upstream LLM family. Implementations hold no per-request
// state; everything a call needs arrives in cfg.
type ChatProvider interface {
	Name() string
	// Complete returns the assistant's full reply.
	Complete(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (string, error)
	// Stream opens an upstream stream of text deltas. The caller must Close it.
	Stream(ctx context.Context, messages []models.ChatMessage, cfg models.ProviderConfig) (TextStream, error)
}

// Registry resolves a provider name to its adapter.
type Registry struct {
	providers map[string]ChatProvider
	fallback  string
}

// NewRegistry registers the given providers. Unknown names resolve to the
// OpenAI adapter, which must therefore be among them.
func NewRegistry(providers ...ChatProvider) *Registry {
	r := &Registry{
		providers: make(map[string]ChatProvider, len(providers)),
		fallback:  models.ProviderOpenAI,
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Lookup returns the provider registered under name, or the OpenAI adapter.
func (r *Registry) Lookup(name string) ChatProvider {
	if p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return r.providers[r.fallback]
}

// ResolveConfig merges a caller-supplied override over server defaults. The
// override only applies when it carries an API key; its empty fields fall
// back to the defaults one by one.
func ResolveConfig(defaults models.ProviderConfig, override *models.ProviderConfig) models.ProviderConfig {
	eff := defaults
	if override.HasKey() {
		eff.APIKey = override.APIKey
		if override.Provider != "" {
			eff.Provider = override.Provider
		}
		if override.BaseURL != "" {
			eff.BaseURL = override.BaseURL
		}
		if override.ModelID != "" {
			eff.ModelID = override.ModelID
		}
	}
	if eff.Provider == "" {
		eff.Provider = models.ProviderOpenAI
	}
	return eff
}

func withDefaults(cfg models.ProviderConfig, baseURL, modelID string) models.ProviderConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	if cfg.ModelID == "" {
		cfg.ModelID = modelID
	}
	return cfg
}
