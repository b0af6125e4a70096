package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/question"
)

// dailyQuestionCount is how many recommendations /questions/daily returns.
const dailyQuestionCount = 5

// QuestionHandler serves the read-only question catalog. Sample
// answers never leave the server.
type QuestionHandler struct {
	*Handler
	catalog *question.Catalog
}

// NewQuestionHandler creates a question handler.
func NewQuestionHandler(base *Handler, catalog *question.Catalog) *QuestionHandler {
	return &QuestionHandler{Handler: base, catalog: catalog}
}

// RegisterRoutes registers the question routes.
func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/questions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/daily", h.Daily)
		r.Get("/{id}", h.Get)
	})
}

// List returns a filtered, paginated page of questions.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := question.Filter{
		Mode:         domain.TrainingMode(q.Get("mode")),
		TrainingType: domain.TrainingType(q.Get("trainingType")),
		Difficulty:   queryInt(r, "difficulty", 0, 0, 5),
	}
	if filter.Mode != "" && !filter.Mode.Valid() {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "unknown mode")
		return
	}
	if filter.TrainingType != "" && !filter.TrainingType.Valid() {
		Error(w, http.StatusUnprocessableEntity, CodeValidation, "unknown trainingType")
		return
	}
	limit := queryInt(r, "limit", 10, 1, 50)
	offset := queryInt(r, "offset", 0, 0, 1<<30)

	page, total := h.catalog.List(filter, limit, offset)
	if page == nil {
		page = []domain.Question{}
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"questions": page,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
		"hasMore":   offset+limit < total,
	})
}

// Daily returns today's recommended questions.
func (h *QuestionHandler) Daily(w http.ResponseWriter, r *http.Request) {
	daily := h.catalog.Daily(dailyQuestionCount)
	JSON(w, http.StatusOK, map[string]interface{}{
		"date":       time.Now().Format("2006-01-02"),
		"questions":  daily,
		"totalCount": len(daily),
	})
}

// Get returns a single question by id.
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, CodeNotFound, "Question not found")
		return
	}
	JSON(w, http.StatusOK, q)
}
