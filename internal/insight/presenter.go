// Package insight maps server-supplied insight and sentiment values to
// display parameters.
package insight

import (
	"github.com/pbaille/journal/internal/domain"
)

// Color is a hex colour token from the app palette
type Color string

// Palette
const (
	ColorBackground    Color = "#0F172A"
	ColorCard          Color = "#1E293B"
	ColorCardElevated  Color = "#334155"
	ColorPrimary       Color = "#8B5CF6"
	ColorAccent        Color = "#06B6D4"
	ColorPositive      Color = "#34D399"
	ColorNegative      Color = "#F87171"
	ColorWarning       Color = "#FBBF24"
	ColorTextPrimary   Color = "#F1F5F9"
	ColorTextSecondary Color = "#94A3B8"
	ColorTextTertiary  Color = "#64748B"

	// stronger shades used for calendar borders and strong sentiment
	ColorPositiveStrong Color = "#10B981"
	ColorNegativeStrong Color = "#EF4444"
	ColorNeutralIcon    Color = "#F59E0B"
)

// DefaultRelatedCount is how many related entries accompany an insight
const DefaultRelatedCount = 5

// StrongScore is the score from which a sentiment is shown as strong
const StrongScore = 0.7

// FallbackInsight is shown when the insight request fails
func FallbackInsight() domain.DailyInsight {
	return domain.DailyInsight{
		Insight: "İçgörüler şu an oluşturulamıyor.",
		Trend:   domain.MoodNeutral,
		Source:  "fallback",
	}
}

// TrendToColor maps an insight trend to its accent colour. Unknown or
// empty trends get the warning colour.
func TrendToColor(trend domain.Mood) Color {
	switch trend {
	case domain.MoodPositive:
		return ColorPositive
	case domain.MoodNegative:
		return ColorNegative
	default:
		return ColorWarning
	}
}

// SelectRelatedEntries keeps the entries tagged with relatedTopic, in
// their input order, up to maxCount. A nil topic selects nothing.
func SelectRelatedEntries(entries []domain.Entry, relatedTopic *string, maxCount int) []domain.Entry {
	related := []domain.Entry{}
	if relatedTopic == nil || maxCount <= 0 {
		return related
	}

	for _, e := range entries {
		if !e.HasTopic(*relatedTopic) {
			continue
		}
		related = append(related, e)
		if len(related) == maxCount {
			break
		}
	}
	return related
}

// MoodColor is the calendar border colour for a day's mood; nil means no entry
func MoodColor(mood *domain.Mood) Color {
	if mood == nil || *mood == "" {
		return ColorTextTertiary
	}
	switch *mood {
	case domain.MoodPositive:
		return ColorPositiveStrong
	case domain.MoodNegative:
		return ColorNegativeStrong
	default:
		return ColorWarning
	}
}

// MoodEmoji is the calendar glyph for a day's mood
func MoodEmoji(mood *domain.Mood) string {
	if mood == nil || *mood == "" {
		return "⚪"
	}
	switch *mood {
	case domain.MoodPositive:
		return "😊"
	case domain.MoodNegative:
		return "😔"
	default:
		return "😐"
	}
}

// Icon is a named glyph with a colour
type Icon struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// SentimentIcon grades a sentiment into five levels: strong and mild for
// each polarity, plus neutral. A missing sentiment gets a muted icon.
func SentimentIcon(s *domain.Sentiment) Icon {
	if s == nil {
		return Icon{Name: "happy-outline", Color: ColorTextTertiary}
	}

	switch s.Mood {
	case domain.MoodPositive:
		if s.Score >= StrongScore {
			return Icon{Name: "happy", Color: ColorPositiveStrong}
		}
		return Icon{Name: "happy-outline", Color: ColorPositive}
	case domain.MoodNegative:
		if s.Score >= StrongScore {
			return Icon{Name: "sad", Color: ColorNegativeStrong}
		}
		return Icon{Name: "sad-outline", Color: ColorNegative}
	default:
		return Icon{Name: "happy-outline", Color: ColorNeutralIcon}
	}
}
