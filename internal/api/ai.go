package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/evaluate"
)

// AIHandler exposes the evaluation gateway directly and reports the
// generative backend's availability.
type AIHandler struct {
	*Handler
	gateway   *evaluate.Gateway
	available bool
	model     string
}

// NewAIHandler creates an AI handler. available and model describe the
// configured generative backend.
func NewAIHandler(base *Handler, gateway *evaluate.Gateway, available bool, model string) *AIHandler {
	return &AIHandler{Handler: base, gateway: gateway, available: available, model: model}
}

// RegisterRoutes registers the AI routes.
func (h *AIHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/ai", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
		r.Get("/status", h.Status)
	})
}

type evaluateRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Method     string `json:"method"`
	Mode       string `json:"mode"`
	Difficulty int    `json:"difficulty"`
}

// Evaluate scores an answer without touching any session state. The
// gateway's fallback guarantees a result for every input.
func (h *AIHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := h.gateway.Evaluate(r.Context(), domain.EvaluationRequest{
		Question:   req.Question,
		Answer:     req.Answer,
		Method:     req.Method,
		Mode:       req.Mode,
		Difficulty: req.Difficulty,
	})
	JSON(w, http.StatusOK, result)
}

// Status reports whether the generative backend is configured.
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"available": h.available,
		"model":     h.model,
	})
}
