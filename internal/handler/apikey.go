package handler

import (
	"encoding/json"
	"net/http"

	"amlscreen/internal/auth"
	"amlscreen/internal/middleware"
	"amlscreen/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// APIKeyHandler manages API key administration. All endpoints require the
// admin role.
type APIKeyHandler struct {
	service *auth.APIKeyService
	logger  logger.Logger
}

// NewAPIKeyHandler creates an APIKeyHandler.
func NewAPIKeyHandler(service *auth.APIKeyService, log logger.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		service: service,
		logger:  log,
	}
}

type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

func (h *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	key, rawKey, err := h.service.CreateKey(r.Context(), req.Name)
	if err != nil {
		h.logger.Error("Failed to create API key", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to create API key")
		return
	}

	// Return the raw key only once
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"api_key": key,
		"secret":  rawKey,
	})
}

func (h *APIKeyHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	keys, err := h.service.ListKeys(r.Context())
	if err != nil {
		h.logger.Error("Failed to list API keys", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}

	h.respondJSON(w, http.StatusOK, keys)
}

func (h *APIKeyHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	if err := h.service.RevokeKey(r.Context(), id); err != nil {
		h.logger.Error("Failed to revoke API key", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to revoke API key")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *APIKeyHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	role, ok := middleware.RoleFromContext(r.Context())
	if !ok || role != "admin" {
		h.respondError(w, http.StatusForbidden, "Admin access required")
		return false
	}
	return true
}

// Helpers

func (h *APIKeyHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *APIKeyHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
