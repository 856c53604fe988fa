// Package timeline filters the entry list for the journal view.
package timeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pbaille/journal/internal/domain"
)

// MoodFilter restricts the timeline to one sentiment bucket
type MoodFilter string

const (
	MoodAll      MoodFilter = "all"
	MoodPositive MoodFilter = "positive"
	MoodNeutral  MoodFilter = "neutral"
	MoodNegative MoodFilter = "negative"
)

// ParseMoodFilter accepts the filter names, and the Turkish chip labels
func ParseMoodFilter(s string) (MoodFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "tümü":
		return MoodAll, nil
	case "positive", "mutlu":
		return MoodPositive, nil
	case "neutral", "nötr":
		return MoodNeutral, nil
	case "negative", "üzgün":
		return MoodNegative, nil
	default:
		return MoodAll, fmt.Errorf("invalid mood filter %q: must be all, positive, neutral or negative", s)
	}
}

// Filter applies a text search over entry text and topics, then the mood
// filter. Order is preserved. Entries without sentiment match neutral.
func Filter(entries []domain.Entry, query string, mood MoodFilter) []domain.Entry {
	fold := cases.Lower(language.Turkish)
	needle := fold.String(strings.TrimSpace(query))

	result := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" && !matches(e, needle, fold) {
			continue
		}
		if !moodMatches(e, mood) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matches(e domain.Entry, needle string, fold cases.Caser) bool {
	if strings.Contains(fold.String(e.Text), needle) {
		return true
	}
	for _, t := range e.Topics() {
		if strings.Contains(fold.String(t), needle) {
			return true
		}
	}
	return false
}

func moodMatches(e domain.Entry, filter MoodFilter) bool {
	mood, ok := e.Mood()
	switch filter {
	case MoodPositive:
		return mood == domain.MoodPositive
	case MoodNegative:
		return mood == domain.MoodNegative
	case MoodNeutral:
		return !ok || mood == domain.MoodNeutral
	default:
		return true
	}
}
