package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/journal/internal/domain"
)

// DefaultWindowDays is the size of the weekly mood calendar
const DefaultWindowDays = 7

// Locale selects the language of calendar labels and motivation texts
type Locale string

const (
	LocaleTurkish Locale = "tr"
	LocaleEnglish Locale = "en"
)

var weekdayLabels = map[Locale][7]string{
	LocaleTurkish: {"Paz", "Pzt", "Sal", "Çar", "Per", "Cum", "Cmt"},
	LocaleEnglish: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
}

// ParseLocale validates a locale name
func ParseLocale(s string) (Locale, error) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := weekdayLabels[l]; !ok {
		return LocaleTurkish, fmt.Errorf("unsupported locale %q: must be tr or en", s)
	}
	return l, nil
}

// Weekday returns the abbreviated weekday name; unknown locales fall back to Turkish
func (l Locale) Weekday(d time.Weekday) string {
	labels, ok := weekdayLabels[l]
	if !ok {
		labels = weekdayLabels[LocaleTurkish]
	}
	return labels[d]
}

// CalendarDay is one cell of the trailing mood calendar
type CalendarDay struct {
	Date      time.Time     `json:"date"`
	DayLabel  string        `json:"dayLabel"`
	DayNumber int           `json:"dayNumber"`
	Mood      *domain.Mood  `json:"mood"`
	Entry     *domain.Entry `json:"entry"`
}

// BuildTrailingCalendar returns windowDays cells, oldest first, ending on
// the calendar day of ref. Days are computed in ref's location. When a day
// has several entries the first one in the newest-first list is used.
func BuildTrailingCalendar(entries []domain.Entry, windowDays int, ref time.Time, locale Locale) []CalendarDay {
	if windowDays <= 0 {
		return []CalendarDay{}
	}

	loc := ref.Location()
	today := Midnight(ref, loc)
	days := make([]CalendarDay, 0, windowDays)

	for i := windowDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		day := CalendarDay{
			Date:      date,
			DayLabel:  locale.Weekday(date.Weekday()),
			DayNumber: date.Day(),
		}

		for j := range entries {
			if !Midnight(entries[j].CreatedAt, loc).Equal(date) {
				continue
			}
			entry := entries[j]
			day.Entry = &entry
			if mood, ok := entry.Mood(); ok {
				day.Mood = &mood
			}
			break
		}

		days = append(days, day)
	}

	return days
}
