package api

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/identity"
)

// UserHandler serves profile and progress endpoints.
type UserHandler struct {
	*Handler
}

// NewUserHandler creates a user handler.
func NewUserHandler(base *Handler) *UserHandler {
	return &UserHandler{Handler: base}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateMe)
		r.Get("/me/progress", h.Progress)
	})
}

// userResponse flattens the profile and the headline progress numbers
// the client shows on the profile screen.
type userResponse struct {
	ID               string                `json:"id"`
	Email            string                `json:"email"`
	DisplayName      string                `json:"displayName"`
	Level            int                   `json:"level"`
	TotalXp          int                   `json:"totalXp"`
	CurrentStreak    int                   `json:"currentStreak"`
	LongestStreak    int                   `json:"longestStreak"`
	LastTrainingDate *time.Time            `json:"lastTrainingDate"`
	PreferredModes   []domain.TrainingMode `json:"preferredModes"`
	CreatedAt        time.Time             `json:"createdAt"`
}

func toUserResponse(user *domain.User) userResponse {
	modes := user.PreferredModes
	if modes == nil {
		modes = []domain.TrainingMode{}
	}
	return userResponse{
		ID:               user.UserID,
		Email:            user.Email,
		DisplayName:      user.DisplayName,
		Level:            user.Progress.Level,
		TotalXp:          user.Progress.TotalXp,
		CurrentStreak:    user.Progress.CurrentStreak,
		LongestStreak:    user.Progress.LongestStreak,
		LastTrainingDate: user.Progress.LastTrainingDate,
		PreferredModes:   modes,
		CreatedAt:        user.CreatedAt,
	}
}

func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request) *domain.User {
	userID := identity.UserIDFromContext(r.Context())
	user, err := h.repo.GetUser(r.Context(), userID)
	if err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to load user")
		return nil
	}
	if user == nil {
		Error(w, http.StatusNotFound, CodeNotFound, "User not found")
		return nil
	}
	return user
}

// Me returns the current user's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.loadUser(w, r)
	if user == nil {
		return
	}
	JSON(w, http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	DisplayName    *string               `json:"displayName"`
	PreferredModes []domain.TrainingMode `json:"preferredModes"`
}

// UpdateMe patches the profile fields a client may change.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DisplayName != nil {
		n := utf8.RuneCountInString(*req.DisplayName)
		if n < 1 || n > 50 {
			Error(w, http.StatusUnprocessableEntity, CodeValidation, "displayName must be 1-50 characters")
			return
		}
	}
	for _, m := range req.PreferredModes {
		if !m.Valid() {
			Error(w, http.StatusUnprocessableEntity, CodeValidation, "unknown mode in preferredModes")
			return
		}
	}

	user := h.loadUser(w, r)
	if user == nil {
		return
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.PreferredModes != nil {
		user.PreferredModes = req.PreferredModes
	}
	user.UpdatedAt = time.Now()

	if err := h.repo.UpsertUser(r.Context(), user); err != nil {
		Error(w, http.StatusInternalServerError, CodeInternal, "failed to update profile")
		return
	}
	JSON(w, http.StatusOK, toUserResponse(user))
}

// progressResponse adds the derived same-day flag to the stored state.
type progressResponse struct {
	domain.UserProgress
	TodayCompleted bool `json:"todayCompleted"`
}

// Progress returns XP, level and streak state.
func (h *UserHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := h.loadUser(w, r)
	if user == nil {
		return
	}
	JSON(w, http.StatusOK, progressResponse{
		UserProgress:   user.Progress,
		TodayCompleted: user.Progress.TrainedOn(time.Now()),
	})
}
