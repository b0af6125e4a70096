// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/hanatore/api/internal/domain"
)

// Repository defines the interface for persisting users, training
// sessions and league history.
type Repository interface {
	// GetUser retrieves a user by id. Returns (nil, nil) when absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record, including progress.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateProgress overwrites the progress columns for a user.
	UpdateProgress(ctx context.Context, userID string, p domain.UserProgress) error

	// CreateSession persists a newly started session.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session with its answers.
	// Returns (nil, nil) when absent.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// InsertAnswer appends an answer to a session and updates the
	// session's running totals in the same transaction.
	InsertAnswer(ctx context.Context, sessionID string, answer *domain.Answer) error

	// CompleteSession stamps the completion time on an open session.
	CompleteSession(ctx context.Context, sessionID string, completedAt time.Time) error

	// ListCompletedSessions returns a page of the user's completed
	// sessions, most recent first, with answers loaded, plus the total
	// number of completed sessions.
	ListCompletedSessions(ctx context.Context, userID string, limit, offset int) ([]*domain.Session, int, error)

	// SumWeeklyXp totals the XP earned from sessions completed within
	// [from, to].
	SumWeeklyXp(ctx context.Context, userID string, from, to time.Time) (int, error)

	// InsertLeagueResult records a finished week's league outcome.
	InsertLeagueResult(ctx context.Context, userID string, result *domain.LeagueResult) error

	// ListLeagueResults returns past league outcomes, most recent first.
	ListLeagueResults(ctx context.Context, userID string) ([]*domain.LeagueResult, error)

	// Ping verifies connectivity to the backing database.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
