package insight

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/journal/internal/domain"
)

func TestTrendToColor(t *testing.T) {
	tests := []struct {
		trend domain.Mood
		want  Color
	}{
		{domain.MoodPositive, ColorPositive},
		{domain.MoodNegative, ColorNegative},
		{domain.MoodNeutral, ColorWarning},
		{"", ColorWarning},
		{"mixed", ColorWarning},
	}

	for _, tt := range tests {
		t.Run(string(tt.trend), func(t *testing.T) {
			assert.Equal(t, tt.want, TrendToColor(tt.trend))
		})
	}
}

func topicEntries(n int, topic string) []domain.Entry {
	base := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	var entries []domain.Entry
	for i := 0; i < n; i++ {
		topics := []string{"other"}
		if i%2 == 0 {
			topics = append(topics, topic)
		}
		entries = append(entries, domain.Entry{
			ID:        domain.EntryID(fmt.Sprint(i)),
			CreatedAt: base.AddDate(0, 0, -i),
			Analysis:  &domain.Analysis{Topics: topics},
		})
	}
	return entries
}

func TestSelectRelatedEntries_NilTopic(t *testing.T) {
	got := SelectRelatedEntries(topicEntries(4, "work"), nil, DefaultRelatedCount)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectRelatedEntries_TruncatesInOrder(t *testing.T) {
	// 14 entries, topic on the even ones: 7 matches
	entries := topicEntries(14, "work")
	topic := "work"

	got := SelectRelatedEntries(entries, &topic, DefaultRelatedCount)

	var ids []domain.EntryID
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []domain.EntryID{"0", "2", "4", "6", "8"}, ids)
}

func TestSelectRelatedEntries_ExactMatchOnly(t *testing.T) {
	entries := []domain.Entry{
		{ID: "1", Analysis: &domain.Analysis{Topics: []string{"Work"}}},
		{ID: "2", Analysis: &domain.Analysis{Topics: []string{"workout"}}},
		{ID: "3"},
	}
	topic := "work"
	assert.Empty(t, SelectRelatedEntries(entries, &topic, 5))
}

func TestMoodColorAndEmoji(t *testing.T) {
	pos, neg, neu := domain.MoodPositive, domain.MoodNegative, domain.MoodNeutral

	assert.Equal(t, ColorTextTertiary, MoodColor(nil))
	assert.Equal(t, ColorPositiveStrong, MoodColor(&pos))
	assert.Equal(t, ColorNegativeStrong, MoodColor(&neg))
	assert.Equal(t, ColorWarning, MoodColor(&neu))

	assert.Equal(t, "⚪", MoodEmoji(nil))
	assert.Equal(t, "😊", MoodEmoji(&pos))
	assert.Equal(t, "😔", MoodEmoji(&neg))
	assert.Equal(t, "😐", MoodEmoji(&neu))
}

func TestSentimentIcon(t *testing.T) {
	tests := []struct {
		name string
		in   *domain.Sentiment
		want Icon
	}{
		{"missing", nil, Icon{"happy-outline", ColorTextTertiary}},
		{"strong positive", &domain.Sentiment{Mood: domain.MoodPositive, Score: 0.7}, Icon{"happy", ColorPositiveStrong}},
		{"mild positive", &domain.Sentiment{Mood: domain.MoodPositive, Score: 0.55}, Icon{"happy-outline", ColorPositive}},
		{"strong negative", &domain.Sentiment{Mood: domain.MoodNegative, Score: 0.93}, Icon{"sad", ColorNegativeStrong}},
		{"mild negative", &domain.Sentiment{Mood: domain.MoodNegative, Score: 0.2}, Icon{"sad-outline", ColorNegative}},
		{"neutral", &domain.Sentiment{Mood: domain.MoodNeutral, Score: 0.9}, Icon{"happy-outline", ColorNeutralIcon}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SentimentIcon(tt.in))
		})
	}
}

func TestFallbackInsight(t *testing.T) {
	fb := FallbackInsight()
	assert.Equal(t, domain.MoodNeutral, fb.Trend)
	assert.Nil(t, fb.RelatedTopic)
	assert.NotEmpty(t, fb.Insight)
}
