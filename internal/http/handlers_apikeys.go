package httpx

import (
	"net/http"
	"strconv"

	apperrors "github.com/probeops/console/internal/errors"
	"github.com/probeops/console/internal/service"
)

// APIKeyHandlers exposes probe API key management.
type APIKeyHandlers struct {
	keys *service.APIKeyService
}

// NewAPIKeyHandlers constructs APIKeyHandlers.
func NewAPIKeyHandlers(keys *service.APIKeyService) *APIKeyHandlers {
	return &APIKeyHandlers{keys: keys}
}

// List returns the account's keys.
func (h *APIKeyHandlers) List(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	keys, err := h.keys.List(r.Context(), profileID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"api_keys": keys})
}

type createKeyRequest struct {
	Name string `json:"name"`
}

// Create issues a new named key and returns it with the secret.
func (h *APIKeyHandlers) Create(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	var req createKeyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	key, err := h.keys.Create(r.Context(), profileID, req.Name)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, key)
}

// Delete revokes a key.
func (h *APIKeyHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	profileID := ProfileIDFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteAppError(w, apperrors.ValidationField("id", "key id must be numeric"))
		return
	}

	if err := h.keys.Delete(r.Context(), profileID, id); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
