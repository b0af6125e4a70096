package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/identity"
	"github.com/hanatore/api/internal/training"
)

// TrainingHandler handles the session lifecycle endpoints.
type TrainingHandler struct {
	*Handler
	svc *training.Service
}

// NewTrainingHandler creates a training handler.
func NewTrainingHandler(base *Handler, svc *training.Service) *TrainingHandler {
	return &TrainingHandler{Handler: base, svc: svc}
}

// RegisterRoutes registers the training routes.
func (h *TrainingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/training", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/answer", h.SubmitAnswer)
		r.Post("/complete", h.Complete)
		r.Get("/history", h.History)
		r.Get("/session/{id}", h.SessionDetail)
	})
}

type startRequest struct {
	Mode         domain.TrainingMode `json:"mode"`
	TrainingType domain.TrainingType `json:"trainingType"`
}

// Start opens a new training session.
func (h *TrainingHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Mode.Valid() || !req.TrainingType.Valid() {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "unknown mode or trainingType")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	session, err := h.svc.Start(r.Context(), userID, req.Mode, req.TrainingType)
	if err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to start session")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId":    session.ID,
		"mode":         session.Mode,
		"trainingType": session.TrainingType,
		"startedAt":    session.StartedAt,
	})
}

type answerRequest struct {
	SessionID        string `json:"sessionId"`
	QuestionID       string `json:"questionId"`
	Content          string `json:"content"`
	TimeSpentSeconds *int   `json:"timeSpentSeconds"`
}

// SubmitAnswer evaluates and records one answer.
func (h *TrainingHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.QuestionID == "" || strings.TrimSpace(req.Content) == "" {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "sessionId, questionId and content are required")
		return
	}
	if req.TimeSpentSeconds != nil && *req.TimeSpentSeconds < 0 {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "timeSpentSeconds must be non-negative")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	answer, err := h.svc.SubmitAnswer(r.Context(), userID, req.SessionID, req.QuestionID, req.Content, req.TimeSpentSeconds)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"answerId":     answer.ID,
		"score":        answer.Score,
		"scoreDetail":  answer.ScoreDetail,
		"feedback":     answer.Feedback,
		"improvements": answer.Improvements,
		"xpEarned":     answer.XpEarned,
	})
}

type completeRequest struct {
	SessionID string `json:"sessionId"`
}

// Complete closes a session and reports its summary.
func (h *TrainingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "sessionId is required")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	session, summary, err := h.svc.Complete(r.Context(), userID, req.SessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":   session.ID,
		"completedAt": session.CompletedAt,
		"summary":     summary,
	})
}

// History lists completed sessions, most recent first.
func (h *TrainingHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10, 1, 50)
	offset := queryInt(r, "offset", 0, 0, 1<<30)

	userID := identity.UserIDFromContext(r.Context())
	page, err := h.svc.History(r.Context(), userID, limit, offset)
	if err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to load history")
		return
	}

	items := make([]map[string]interface{}, 0, len(page.Sessions))
	for _, s := range page.Sessions {
		items = append(items, map[string]interface{}{
			"sessionId":      s.ID,
			"mode":           s.Mode,
			"trainingType":   s.TrainingType,
			"startedAt":      s.StartedAt,
			"completedAt":    s.CompletedAt,
			"questionsCount": s.QuestionsCount,
			"totalXpEarned":  s.TotalXpEarned,
			"averageScore":   s.AverageScore(),
		})
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sessions": items,
		"total":    page.Total,
		"limit":    page.Limit,
		"offset":   page.Offset,
		"hasMore":  page.HasMore,
	})
}

// SessionDetail returns one session with per-answer detail.
func (h *TrainingHandler) SessionDetail(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	userID := identity.UserIDFromContext(r.Context())

	session, err := h.svc.SessionDetail(r.Context(), userID, sessionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	answers := make([]map[string]interface{}, 0, len(session.Answers))
	for _, a := range session.Answers {
		answers = append(answers, map[string]interface{}{
			"id":               a.ID,
			"questionId":       a.QuestionID,
			"score":            a.Score,
			"scoreDetail":      a.ScoreDetail,
			"feedback":         a.Feedback,
			"timeSpentSeconds": a.TimeSpentSeconds,
			"createdAt":        a.CreatedAt,
		})
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sessionId":      session.ID,
		"mode":           session.Mode,
		"trainingType":   session.TrainingType,
		"startedAt":      session.StartedAt,
		"completedAt":    session.CompletedAt,
		"questionsCount": session.QuestionsCount,
		"totalXpEarned":  session.TotalXpEarned,
		"answers":        answers,
	})
}

// writeSessionError maps lifecycle errors to the stable error codes.
func (h *TrainingHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, "Session not found")
	case errors.Is(err, domain.ErrSessionCompleted):
		Error(w, http.StatusBadRequest, CodeSessionCompleted, "Session is already completed")
	case errors.Is(err, domain.ErrNoAnswers):
		Error(w, http.StatusBadRequest, CodeNoAnswers, "Cannot complete session without answers")
	default:
		Error(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}
}
