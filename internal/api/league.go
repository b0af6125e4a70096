package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/identity"
	"github.com/hanatore/api/internal/league"
)

// LeagueHandler serves the weekly league endpoints.
type LeagueHandler struct {
	*Handler
	svc *league.Service
}

// NewLeagueHandler creates a league handler.
func NewLeagueHandler(base *Handler, svc *league.Service) *LeagueHandler {
	return &LeagueHandler{Handler: base, svc: svc}
}

// RegisterRoutes registers the league routes.
func (h *LeagueHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/league", func(r chi.Router) {
		r.Get("/current", h.Current)
		r.Get("/ranking", h.Ranking)
		r.Get("/history", h.History)
	})
}

// Current returns the user's view of this week's league.
func (h *LeagueHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	info, err := h.svc.CurrentInfo(r.Context(), userID)
	if err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to load league info")
		return
	}
	JSON(w, http.StatusOK, info)
}

// Ranking returns the top entries of this week's pool.
func (h *LeagueHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 1, 100)
	userID := identity.UserIDFromContext(r.Context())

	page, err := h.svc.Ranking(r.Context(), userID, limit)
	if err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to load ranking")
		return
	}
	JSON(w, http.StatusOK, page)
}

// History returns past league outcomes.
func (h *LeagueHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	results, err := h.svc.History(r.Context(), userID)
	if err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to load league history")
		return
	}
	if results == nil {
		results = []*domain.LeagueResult{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"history":    results,
		"totalWeeks": len(results),
	})
}
