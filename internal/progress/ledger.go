// Package progress implements the XP/leveling and streak rules. All
// functions are pure over the passed-in state; callers persist the
// returned value.
package progress

import (
	"time"

	"github.com/hanatore/api/internal/domain"
)

// levelTitles are the rank titles, one per band of five levels. Levels
// past the last band keep the final title.
var levelTitles = []string{
	"言語化ビギナー",
	"言語化チャレンジャー",
	"言語化プラクティショナー",
	"言語化エキスパート",
	"言語化マスター",
	"言語化レジェンド",
}

// TitleForLevel returns the rank title for a level.
func TitleForLevel(level int) string {
	index := (level - 1) / 5
	if index < 0 {
		index = 0
	}
	if index >= len(levelTitles) {
		index = len(levelTitles) - 1
	}
	return levelTitles[index]
}

// ApplyXP adds earned XP to the progress state and resolves any
// level-ups. The threshold for each new level grows by 20:
// level 1→2 needs 100 XP, 2→3 needs 120, and so on. TotalXp accumulates
// the same delta and never decreases.
func ApplyXP(p domain.UserProgress, xpDelta int) domain.UserProgress {
	if xpDelta < 0 {
		xpDelta = 0
	}

	p.TotalXp += xpDelta
	p.CurrentXp += xpDelta
	for p.CurrentXp >= p.XpToNextLevel {
		p.CurrentXp -= p.XpToNextLevel
		p.Level++
		p.XpToNextLevel = 100 + (p.Level-1)*20
	}
	p.Title = TitleForLevel(p.Level)
	return p
}

// RecordTraining updates the streak for a day of activity. Consecutive
// calendar days extend the streak, repeat same-day completions are
// idempotent, and any gap resets the streak to 1.
func RecordTraining(p domain.UserProgress, now time.Time) domain.UserProgress {
	switch daysSince(p.LastTrainingDate, now) {
	case 0:
		// Already trained today.
	case 1:
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	t := now
	p.LastTrainingDate = &t
	return p
}

// daysSince returns the number of calendar-day boundaries between the
// last training date and now, or -1 when there is no prior training.
func daysSince(last *time.Time, now time.Time) int {
	if last == nil {
		return -1
	}
	lastDay := startOfDay(last.In(now.Location()))
	today := startOfDay(now)
	return int(today.Sub(lastDay).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
