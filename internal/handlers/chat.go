package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"aidraw-backend/internal/metrics"
	"aidraw-backend/internal/middleware"
	"aidraw-backend/internal/models"
	"aidraw-backend/internal/services"
)

type providerRegistry interface {
	Lookup(name string) services.ChatProvider
}

type ChatHandler struct {
	providers providerRegistry
	defaults  models.ProviderConfig
	validate  *validator.Validate
}

func NewChatHandler(providers providerRegistry, defaults models.ProviderConfig) *ChatHandler {
	return &ChatHandler{
		providers: providers,
		defaults:  defaults,
		validate:  validator.New(),
	}
}

// Chat is POST /api/chat. The access gate has already run.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, r, &services.ValidationError{Message: "Invalid request: messages required"})
		return
	}
	if req.Messages == nil {
		handleServiceError(w, r, &services.ValidationError{Message: "Invalid request: messages required"})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		handleServiceError(w, r, &services.ValidationError{Message: "Invalid request: message role must be system, user or assistant"})
		return
	}

	access := middleware.GetAccess(r.Context()).WithOverride(req.LLMConfig)
	cfg := services.ResolveConfig(h.defaults, req.LLMConfig)
	provider := h.providers.Lookup(cfg.Provider)

	log.WithFields(log.Fields{
		"provider":   provider.Name(),
		"model":      cfg.ModelID,
		"stream":     req.Stream,
		"exempt":     access.Exempt,
		"custom_llm": req.LLMConfig.HasKey(),
		"messages":   len(req.Messages),
		"request_id": r.Header.Get(middleware.RequestIDHeader),
	}).Debug("dispatching chat request")

	if req.Stream {
		h.relay(w, r, provider, req.Messages, cfg, access.Exempt)
		return
	}

	content, err := provider.Complete(r.Context(), req.Messages, cfg)
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues(provider.Name(), metrics.ModeOnce, metrics.OutcomeError).Inc()
		handleServiceError(w, r, err)
		return
	}
	metrics.UpstreamCalls.WithLabelValues(provider.Name(), metrics.ModeOnce, metrics.OutcomeOK).Inc()

	setQuotaHeader(w, access.Exempt)
	writeJSON(w, http.StatusOK, models.ChatResponse{Content: content})
}

func setQuotaHeader(w http.ResponseWriter, exempt bool) {
	if exempt {
		metrics.ExemptCalls.Inc()
	}
	w.Header().Set(middleware.QuotaExemptHeader, strconv.FormatBool(exempt))
}
