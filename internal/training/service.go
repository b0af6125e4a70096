// Package training implements the session lifecycle: start, answer
// submission with evaluation, completion with progression updates, and
// history queries.
package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/evaluate"
	"github.com/hanatore/api/internal/progress"
	"github.com/hanatore/api/internal/question"
	"github.com/hanatore/api/internal/store"
)

// Service drives training sessions. Concurrent mutations of the same
// session are serialized through a per-session mutex so the running
// totals stay consistent with the answer list.
type Service struct {
	repo    store.Repository
	catalog *question.Catalog
	gateway *evaluate.Gateway
	now     func() time.Time

	sessionLocks sync.Map // session id -> *sync.Mutex
}

// NewService creates a training service. now may be nil for the wall
// clock; tests pass a fixed clock for deterministic durations and
// streaks.
func NewService(repo store.Repository, catalog *question.Catalog, gateway *evaluate.Gateway, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		gateway: gateway,
		now:     now,
	}
}

func (s *Service) lockSession(sessionID string) func() {
	value, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start opens a new session. Always succeeds for valid mode and type.
func (s *Service) Start(ctx context.Context, userID string, mode domain.TrainingMode, trainingType domain.TrainingType) (*domain.Session, error) {
	session := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Mode:         mode,
		TrainingType: trainingType,
		StartedAt:    s.now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// SubmitAnswer evaluates the answer and appends it to an open session.
// The evaluation never fails; errors here mean an unknown session or
// question, a completed session, or a storage failure, in which case no
// answer is recorded.
func (s *Service) SubmitAnswer(ctx context.Context, userID, sessionID, questionID, content string, timeSpentSeconds *int) (*domain.Answer, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.loadOwnSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, domain.ErrSessionCompleted
	}

	q, ok := s.catalog.Get(questionID)
	if !ok {
		return nil, fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}

	result := s.gateway.Evaluate(ctx, domain.EvaluationRequest{
		Question:   q.Title,
		Answer:     content,
		Method:     q.Method,
		Mode:       string(q.Mode),
		Difficulty: q.Difficulty,
	})

	answer := &domain.Answer{
		ID:               uuid.NewString(),
		QuestionID:       questionID,
		Content:          content,
		Score:            result.Score,
		ScoreDetail:      result.ScoreDetail,
		Feedback:         result.Feedback,
		Improvements:     result.Improvements,
		XpEarned:         result.XpEarned,
		TimeSpentSeconds: timeSpentSeconds,
		CreatedAt:        s.now(),
	}
	if err := s.repo.InsertAnswer(ctx, sessionID, answer); err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	return answer, nil
}

// Complete closes an open session with at least one answer, stamps the
// completion time and folds the earned XP and the day of activity into
// the user's progress.
func (s *Service) Complete(ctx context.Context, userID, sessionID string) (*domain.Session, *domain.SessionSummary, error) {
	unlock := s.lockSession(sessionID)
	defer unlock()

	session, err := s.loadOwnSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.IsCompleted() {
		return nil, nil, domain.ErrSessionCompleted
	}
	if len(session.Answers) == 0 {
		return nil, nil, domain.ErrNoAnswers
	}

	completedAt := s.now()
	if err := s.repo.CompleteSession(ctx, sessionID, completedAt); err != nil {
		return nil, nil, fmt.Errorf("complete session: %w", err)
	}
	session.CompletedAt = &completedAt

	if err := s.applyProgress(ctx, userID, session.TotalXpEarned, completedAt); err != nil {
		return nil, nil, err
	}

	summary := &domain.SessionSummary{
		QuestionsCount:  session.QuestionsCount,
		TotalXpEarned:   session.TotalXpEarned,
		AverageScore:    session.AverageScore(),
		DurationSeconds: int(completedAt.Sub(session.StartedAt).Seconds()),
	}
	return session, summary, nil
}

// applyProgress runs the leveling and streak rules and persists the
// resulting state.
func (s *Service) applyProgress(ctx context.Context, userID string, xpEarned int, now time.Time) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	p := progress.ApplyXP(user.Progress, xpEarned)
	p = progress.RecordTraining(p, now)
	if err := s.repo.UpdateProgress(ctx, userID, p); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// SessionDetail returns one of the user's sessions with its answers.
func (s *Service) SessionDetail(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return s.loadOwnSession(ctx, userID, sessionID)
}

// HistoryPage is one page of completed sessions, most recent first.
type HistoryPage struct {
	Sessions []*domain.Session `json:"sessions"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	HasMore  bool              `json:"hasMore"`
}

// History lists the user's completed sessions.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) (*HistoryPage, error) {
	sessions, total, err := s.repo.ListCompletedSessions(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return &HistoryPage{
		Sessions: sessions,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+len(sessions) < total,
	}, nil
}

// loadOwnSession fetches a session and verifies ownership. A session
// belonging to another user is indistinguishable from a missing one.
func (s *Service) loadOwnSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return session, nil
}
