// Package api provides HTTP handlers for the Hanatore API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/store"
)

// Error codes surfaced to clients.
const (
	CodeNotFound         = "not_found"
	CodeSessionCompleted = "session_completed"
	CodeNoAnswers        = "no_answers"
	CodeValidation       = "validation_error"
	CodeInternal         = "internal_error"
)

// Handler provides common handler utilities.
type Handler struct {
	repo store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers the service-level routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/api/subscription/status", h.SubscriptionStatus)
}

// Root reports service identity and liveness.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.repo.Ping(r.Context()); err != nil {
		status = "degraded"
	}
	JSON(w, http.StatusOK, map[string]string{
		"name":    "Hanatore API",
		"version": "1.0.0",
		"status":  status,
	})
}

// SubscriptionStatus reports the account plan. Billing is not built
// yet, so every account is on the free plan.
func (h *Handler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"plan":   "free",
		"status": "active",
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"internal_error","message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes the error envelope: a stable machine-readable code plus
// a human message.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, map[string]string{"error": code, "message": message})
}

// decodeJSON decodes the request body into v, rejecting unknown
// payload shapes with a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "invalid JSON body")
		return false
	}
	return true
}

// queryInt reads an integer query parameter, falling back to def and
// clamping into [min, max].
func queryInt(r *http.Request, key string, def, min, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
