package stats

import (
	"math"
	"time"

	"github.com/pbaille/journal/internal/domain"
)

// NoTopic is returned by TopTopic when no entry carries a topic
const NoTopic = "none"

// DerivedStats are the headline numbers of the home view. They are
// recomputed on every load and never stored.
type DerivedStats struct {
	Streak            int     `json:"streak"`
	Total             int     `json:"total"`
	LastMood          float64 `json:"lastMood"`
	PositivityPercent int     `json:"positivityPercent"`
	TopTopic          string  `json:"topTopic"`
}

// SentimentBreakdown counts entries per sentiment bucket
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total is the number of entries counted
func (b SentimentBreakdown) Total() int {
	return b.Positive + b.Negative + b.Neutral
}

// Derive computes all headline numbers for a newest-first entry list
func Derive(entries []domain.Entry, loc *time.Location) DerivedStats {
	s := DerivedStats{
		Streak:            ComputeStreak(entries, loc),
		Total:             len(entries),
		PositivityPercent: PositivityPercent(entries),
		TopTopic:          TopTopic(entries),
	}
	if len(entries) > 0 {
		s.LastMood = entries[0].Score()
	}
	return s
}

// PositivityPercent is the rounded share of positive entries, 0-100
func PositivityPercent(entries []domain.Entry) int {
	if len(entries) == 0 {
		return 0
	}

	positive := 0
	for _, e := range entries {
		if mood, ok := e.Mood(); ok && mood == domain.MoodPositive {
			positive++
		}
	}

	return int(math.Round(100 * float64(positive) / float64(len(entries))))
}

// TopTopic returns the most frequent topic across all entries. Ties go to
// the topic seen first when scanning entries and their topics in order.
func TopTopic(entries []domain.Entry) string {
	counts := make(map[string]int)
	var order []string

	for _, e := range entries {
		for _, t := range e.Topics() {
			if _, seen := counts[t]; !seen {
				order = append(order, t)
			}
			counts[t]++
		}
	}

	if len(order) == 0 {
		return NoTopic
	}

	top := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[top] {
			top = t
		}
	}
	return top
}

// Breakdown places every entry in exactly one bucket. Entries without a
// sentiment, or with an unrecognised label, count as neutral.
func Breakdown(entries []domain.Entry) SentimentBreakdown {
	var b SentimentBreakdown
	for _, e := range entries {
		mood, _ := e.Mood()
		switch mood {
		case domain.MoodPositive:
			b.Positive++
		case domain.MoodNegative:
			b.Negative++
		default:
			b.Neutral++
		}
	}
	return b
}
