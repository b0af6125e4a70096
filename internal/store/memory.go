package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hanatore/api/internal/domain"
)

// MemoryStore implements Repository entirely in memory. It backs unit
// tests and can stand in for SQLite in ephemeral deployments.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	sessions map[string]*domain.Session
	results  map[string][]*domain.LeagueResult
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*domain.User),
		sessions: make(map[string]*domain.Session),
		results:  make(map[string][]*domain.LeagueResult),
	}
}

// GetUser retrieves a user by id.
func (m *MemoryStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.users[userID]
	if user == nil {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// UpsertUser creates or updates a user record.
func (m *MemoryStore) UpsertUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	if existing, ok := m.users[user.UserID]; ok {
		// Progress is owned by UpdateProgress; an upsert only touches
		// the profile fields, mirroring the SQLite ON CONFLICT clause.
		copied.Progress = existing.Progress
		copied.CreatedAt = existing.CreatedAt
	}
	m.users[user.UserID] = &copied
	return nil
}

// UpdateProgress overwrites the progress state for a user.
func (m *MemoryStore) UpdateProgress(_ context.Context, userID string, p domain.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.users[userID]
	if user == nil {
		return &notFoundError{kind: "user", id: userID}
	}
	user.Progress = p
	user.UpdatedAt = time.Now()
	return nil
}

// CreateSession persists a newly started session.
func (m *MemoryStore) CreateSession(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	copied.Answers = nil
	m.sessions[session.ID] = &copied
	return nil
}

// GetSession retrieves a session with its answers.
func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[sessionID]
	if session == nil {
		return nil, nil
	}
	return cloneSession(session), nil
}

// InsertAnswer appends an answer and updates the session totals.
func (m *MemoryStore) InsertAnswer(_ context.Context, sessionID string, answer *domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[sessionID]
	if session == nil {
		return &notFoundError{kind: "session", id: sessionID}
	}
	if session.IsCompleted() {
		return domain.ErrSessionCompleted
	}
	session.AppendAnswer(*answer)
	return nil
}

// CompleteSession stamps the completion time on an open session.
func (m *MemoryStore) CompleteSession(_ context.Context, sessionID string, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := m.sessions[sessionID]
	if session == nil {
		return &notFoundError{kind: "session", id: sessionID}
	}
	if session.IsCompleted() {
		return domain.ErrSessionCompleted
	}
	t := completedAt
	session.CompletedAt = &t
	return nil
}

// ListCompletedSessions returns completed sessions, most recent first.
func (m *MemoryStore) ListCompletedSessions(_ context.Context, userID string, limit, offset int) ([]*domain.Session, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var completed []*domain.Session
	for _, session := range m.sessions {
		if session.UserID == userID && session.IsCompleted() {
			completed = append(completed, cloneSession(session))
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})

	total := len(completed)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return completed[offset:end], total, nil
}

// SumWeeklyXp totals the XP earned from sessions completed in [from, to].
func (m *MemoryStore) SumWeeklyXp(_ context.Context, userID string, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, session := range m.sessions {
		if session.UserID != userID || !session.IsCompleted() {
			continue
		}
		if session.CompletedAt.Before(from) || session.CompletedAt.After(to) {
			continue
		}
		total += session.TotalXpEarned
	}
	return total, nil
}

// InsertLeagueResult records a finished week's league outcome.
func (m *MemoryStore) InsertLeagueResult(_ context.Context, userID string, result *domain.LeagueResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *result
	m.results[userID] = append([]*domain.LeagueResult{&copied}, m.results[userID]...)
	return nil
}

// ListLeagueResults returns past league outcomes, most recent first.
func (m *MemoryStore) ListLeagueResults(_ context.Context, userID string) ([]*domain.LeagueResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]*domain.LeagueResult, 0, len(m.results[userID]))
	for _, r := range m.results[userID] {
		copied := *r
		results = append(results, &copied)
	}
	return results, nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

func cloneSession(session *domain.Session) *domain.Session {
	copied := *session
	if session.CompletedAt != nil {
		t := *session.CompletedAt
		copied.CompletedAt = &t
	}
	copied.Answers = append([]domain.Answer(nil), session.Answers...)
	return &copied
}

type notFoundError struct {
	kind string
	id   string
}

func (e *notFoundError) Error() string {
	return e.kind + " " + e.id + " not found"
}

func (e *notFoundError) Is(target error) bool {
	return target == domain.ErrNotFound
}
