// Package league computes weekly league rankings. Rankings are a lazy
// snapshot: regenerated when the calendar-week key changes, never by a
// scheduled job.
package league

import (
	"fmt"
	"time"
)

// WeekKey derives the calendar-week identifier ("2024-W15") used to
// scope and reset rankings.
//
// The week number is ceil((dayOfYear + jan1Weekday + 1) / 7), counting
// weekdays with Sunday as 0. This intentionally deviates from ISO-8601
// (weeks are anchored to January 1st, not to the first Thursday);
// existing clients depend on the exact boundaries so the arithmetic is
// preserved as-is.
func WeekKey(now time.Time) string {
	jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	days := now.YearDay() - 1
	week := (days + int(jan1.Weekday()) + 1 + 6) / 7
	return fmt.Sprintf("%d-W%02d", now.Year(), week)
}

// WeekBounds returns the current week's span: Monday 00:00:00.000
// through Sunday 23:59:59.999 in now's location.
func WeekBounds(now time.Time) (start, end time.Time) {
	diffToMonday := 1 - int(now.Weekday())
	if now.Weekday() == time.Sunday {
		diffToMonday = -6
	}

	y, m, d := now.AddDate(0, 0, diffToMonday).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)
	return start, end
}
