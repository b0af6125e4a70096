package domain

import (
	"time"
)

// UserProgress tracks XP, level and streak state for one user.
// Mutated only through the progression ledger.
type UserProgress struct {
	Level            int        `json:"level"`
	TotalXp          int        `json:"totalXp"`
	CurrentXp        int        `json:"currentXp"`
	XpToNextLevel    int        `json:"xpToNextLevel"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastTrainingDate *time.Time `json:"lastTrainingDate"`
	Title            string     `json:"title"`
}

// NewUserProgress returns the initial state for a brand-new user.
func NewUserProgress() UserProgress {
	return UserProgress{
		Level:         1,
		CurrentXp:     0,
		XpToNextLevel: 100,
	}
}

// TrainedOn reports whether the last training activity happened on the
// same calendar day as t (in t's location).
func (p UserProgress) TrainedOn(t time.Time) bool {
	if p.LastTrainingDate == nil {
		return false
	}
	y1, m1, d1 := p.LastTrainingDate.In(t.Location()).Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// User is an account record. Auth is out of scope: users are created
// implicitly by the anonymous identity middleware.
type User struct {
	UserID         string         `json:"id"`
	Email          string         `json:"email"`
	DisplayName    string         `json:"displayName"`
	PreferredModes []TrainingMode `json:"preferredModes"`
	Progress       UserProgress   `json:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"-"`
}
