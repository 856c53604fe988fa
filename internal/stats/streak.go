// Package stats derives dashboard figures from a newest-first entry list.
//
// Every function here is pure and total: empty lists and entries whose
// analysis is missing produce zero or neutral values, never errors.
package stats

import (
	"time"

	"github.com/pbaille/journal/internal/domain"
)

// MaxStreak is the length of the streak display window
const MaxStreak = 7

// ComputeStreak counts consecutive calendar days with entries, walking
// from the newest entry backwards. Two entries on the same day end the
// walk: only an exact one-day step extends the streak.
func ComputeStreak(entries []domain.Entry, loc *time.Location) int {
	if len(entries) == 0 {
		return 0
	}

	streak := 1
	for i := 0; i < len(entries)-1; i++ {
		current := Midnight(entries[i].CreatedAt, loc)
		next := Midnight(entries[i+1].CreatedAt, loc)
		if !current.AddDate(0, 0, -1).Equal(next) {
			break
		}
		streak++
		if streak >= MaxStreak {
			break
		}
	}

	return min(streak, MaxStreak)
}

// Midnight truncates t to the start of its calendar day in loc.
// A nil loc means the process-local zone.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	return Midnight(a, loc).Equal(Midnight(b, loc))
}
