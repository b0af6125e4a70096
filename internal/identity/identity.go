// Package identity provides anonymous per-device identity. Every
// request carries a long-lived cookie id; the first request from a
// device creates its user record with fresh progress.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/progress"
	"github.com/hanatore/api/internal/store"
)

const (
	AnonCookieName   = "hanatore_anon_id"
	anonCookieMaxAge = 365 * 24 * time.Hour
)

type contextKey int

const userIDKey contextKey = iota

var anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)

// UserIDFromContext extracts the user id from the request context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// WithUserID returns a context carrying the user id. Used by tests and
// by the websocket handler, which runs outside the HTTP middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

func deriveDisplayName(userID string) string {
	if len(userID) > 13 {
		return "トレーニー" + userID[len(userID)-4:]
	}
	return "トレーニー"
}

func ensureUser(ctx context.Context, repo store.Repository, userID string) error {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}

	initial := domain.NewUserProgress()
	initial.Title = progress.TitleForLevel(initial.Level)

	now := time.Now()
	return repo.UpsertUser(ctx, &domain.User{
		UserID:      userID,
		Email:       userID + "@anon.hanatore.app",
		DisplayName: deriveDisplayName(userID),
		Progress:    initial,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func setAnonCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

func getOrCreateAnonID(w http.ResponseWriter, r *http.Request, isDev bool) (string, error) {
	if c, err := r.Cookie(AnonCookieName); err == nil && isValidAnonID(c.Value) {
		setAnonCookie(w, c.Value, isDev)
		return c.Value, nil
	}

	id, err := generateAnonID()
	if err != nil {
		return "", err
	}
	setAnonCookie(w, id, isDev)
	return id, nil
}

// Middleware injects the anonymous user id into the request context,
// creating the user record on first contact.
func Middleware(repo store.Repository, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := getOrCreateAnonID(w, r, isDev)
			if err != nil {
				http.Error(w, `{"error":"internal_error","message":"failed to establish anonymous identity"}`, http.StatusInternalServerError)
				return
			}

			if err := ensureUser(r.Context(), repo, userID); err != nil {
				http.Error(w, `{"error":"internal_error","message":"failed to initialize anonymous user"}`, http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
