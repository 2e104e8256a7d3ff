package handlers

import (
	"net/http"

	"aidraw-backend/internal/models"
)

// ConfigHandler exposes the public part of the server configuration so the
// client can render its quota meter. Keys are never included.
type ConfigHandler struct {
	info models.ServerInfo
}

func NewConfigHandler(info models.ServerInfo) *ConfigHandler {
	return &ConfigHandler{info: info}
}

func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}
