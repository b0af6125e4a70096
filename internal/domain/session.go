package domain

import (
	"time"
)

// Answer is a single scored response, owned by its parent session.
type Answer struct {
	ID               string      `json:"id"`
	QuestionID       string      `json:"questionId"`
	Content          string      `json:"content"`
	Score            int         `json:"score"`
	ScoreDetail      ScoreDetail `json:"scoreDetail"`
	Feedback         string      `json:"feedback"`
	Improvements     []string    `json:"improvements"`
	XpEarned         int         `json:"xpEarned"`
	TimeSpentSeconds *int        `json:"timeSpentSeconds"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Session is one training session for a user. Answers are append-only
// while the session is open; a completed session is read-only.
type Session struct {
	ID            string       `json:"id"`
	UserID        string       `json:"-"`
	Mode          TrainingMode `json:"mode"`
	TrainingType  TrainingType `json:"trainingType"`
	StartedAt     time.Time    `json:"startedAt"`
	CompletedAt   *time.Time   `json:"completedAt"`
	TotalXpEarned int          `json:"totalXpEarned"`
	QuestionsCount int         `json:"questionsCount"`
	Answers       []Answer     `json:"answers"`
}

// IsCompleted reports whether the session has been closed.
func (s *Session) IsCompleted() bool {
	return s.CompletedAt != nil
}

// AppendAnswer records an answer and keeps the running totals consistent
// (questionsCount == len(answers), totalXpEarned == sum of answer XP).
func (s *Session) AppendAnswer(a Answer) {
	s.Answers = append(s.Answers, a)
	s.QuestionsCount = len(s.Answers)
	s.TotalXpEarned += a.XpEarned
}

// AverageScore returns the rounded mean score across all answers,
// or 0 for a session without answers.
func (s *Session) AverageScore() int {
	if len(s.Answers) == 0 {
		return 0
	}
	sum := 0
	for _, a := range s.Answers {
		sum += a.Score
	}
	return int(float64(sum)/float64(len(s.Answers)) + 0.5)
}

// SessionSummary is the completion report for a finished session.
type SessionSummary struct {
	QuestionsCount  int `json:"questionsCount"`
	TotalXpEarned   int `json:"totalXpEarned"`
	AverageScore    int `json:"averageScore"`
	DurationSeconds int `json:"duration"`
}
