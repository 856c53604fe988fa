package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/journal/internal/dashboard"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/insight"
	"github.com/pbaille/journal/internal/stats"
)

const timeLayout = "2006-01-02 15:04"

// Entries prints entries as a table, newest first
func (p *Printer) Entries(entries []domain.Entry) error {
	if len(entries) == 0 {
		p.Print("No entries yet. Use 'journal add' to write one.")
		return nil
	}

	t := NewTable(p.out, []string{"ID", "DATE", "MOOD", "TOPICS", "TEXT"})
	for _, e := range entries {
		t.AddRow(
			string(e.ID),
			p.localTime(e.CreatedAt).Format(timeLayout),
			p.moodCell(e),
			truncate(strings.Join(e.Topics(), ", "), 30),
			truncate(e.Text, 60),
		)
	}
	return t.Render()
}

// Entry prints one entry with its analysis
func (p *Printer) Entry(e domain.Entry) {
	icon := insight.SentimentIcon(e.Sentiment())

	p.Print("ID:      %s", e.ID)
	p.Print("Created: %s", p.localTime(e.CreatedAt).Format("2006-01-02 15:04:05"))
	if s := e.Sentiment(); s != nil {
		p.Print("Mood:    %s %s", p.Hex(string(icon.Color), icon.Name), p.Dim(fmt.Sprintf("(%s, %.2f)", s.Mood, s.Score)))
	} else {
		p.Print("Mood:    %s", p.Dim("not analysed yet"))
	}
	p.Print("Content:\n%s", e.Text)

	if topics := e.Topics(); len(topics) > 0 {
		p.Print("\nTopics:")
		for _, topic := range topics {
			p.Print("  - %s", topic)
		}
	}
	if entities := e.Entities(); len(entities) > 0 {
		p.Print("\nEntities:")
		for _, ent := range entities {
			p.Print("  - %s %s", ent.Text, p.Dim("("+ent.Kind+")"))
		}
	}
}

// Calendar prints the trailing calendar as two aligned rows
func (p *Printer) Calendar(days []stats.CalendarDay) {
	var labels, cells strings.Builder
	for _, d := range days {
		fmt.Fprintf(&labels, "%-5s", d.DayLabel)
		mark := fmt.Sprintf("%s%2d", insight.MoodEmoji(d.Mood), d.DayNumber)
		cells.WriteString(p.Hex(string(insight.MoodColor(d.Mood)), mark))
		cells.WriteString(" ")
	}
	p.Print("%s", strings.TrimRight(labels.String(), " "))
	p.Print("%s", strings.TrimRight(cells.String(), " "))
}

// Stats prints the headline numbers and the sentiment breakdown
func (p *Printer) Stats(s stats.DerivedStats, b stats.SentimentBreakdown) {
	p.Print("Streak:      %s", p.Bold(fmt.Sprintf("%d day(s)", s.Streak)))
	p.Print("Entries:     %d", s.Total)
	p.Print("Positivity:  %d%%", s.PositivityPercent)
	p.Print("Top topic:   %s", s.TopTopic)
	p.Print("Last mood:   %.2f", s.LastMood)

	total := b.Total()
	p.Print("")
	p.Print("%s %s", p.Hex(string(insight.ColorPositive), "positive"), bar(b.Positive, total))
	p.Print("%s %s", p.Hex(string(insight.ColorWarning), "neutral "), bar(b.Neutral, total))
	p.Print("%s %s", p.Hex(string(insight.ColorNegative), "negative"), bar(b.Negative, total))
}

// Insight prints the daily insight and the entries related to its topic
func (p *Printer) Insight(v dashboard.InsightView) {
	text := v.Insight
	if v.Fallback {
		text += " " + p.Dim("(offline)")
	}
	p.Print("%s %s", p.Hex(string(v.Color), "●"), text)
	if v.RelatedTopic != nil {
		p.Print("Topic: %s", *v.RelatedTopic)
	}
	for _, e := range v.Related {
		p.Print("  %s  %s", p.Dim(string(e.ID)), truncate(e.Text, 60))
	}
}

// Motivation prints the motivation card
func (p *Printer) Motivation(card stats.MotivationCard) {
	p.Print("%s", p.Hex(card.Color, p.Bold(card.Title)))
	p.Print("%s", card.Message)
	if card.Quote != "" {
		p.Print("%s", p.Dim(card.Quote))
	}
}

// Prediction prints a mood prediction
func (p *Printer) Prediction(pred domain.MoodPrediction) {
	p.Print("%s  %.1f / 5", pred.Prediction.Emoji, pred.Prediction.MoodScore)
	if pred.Prediction.Message != "" {
		p.Print("%s", pred.Prediction.Message)
	}
}

// Home prints the full home view
func (p *Printer) Home(h *dashboard.Home) error {
	p.Motivation(h.Motivation)

	p.Header("This week")
	p.Calendar(h.Calendar)

	p.Header("Stats")
	p.Stats(h.Stats, h.Breakdown)

	p.Header("Insight")
	p.Insight(h.Insight)

	if len(h.Recent) == 0 {
		return nil
	}
	p.Header("Recent entries")
	return p.Entries(h.Recent)
}

// Origin warns when a view was built from fallback data
func (p *Printer) Origin(origin dashboard.Origin, err error) {
	switch origin {
	case dashboard.OriginSnapshot:
		p.Warning("service unreachable (%v), showing the last saved entries", err)
	case dashboard.OriginEmpty:
		if err != nil {
			p.Warning("could not load entries: %v", err)
		}
	}
}

func (p *Printer) moodCell(e domain.Entry) string {
	mood, ok := e.Mood()
	if !ok {
		return p.Dim("-")
	}
	return p.Hex(string(insight.MoodColor(&mood)), string(mood))
}

func (p *Printer) localTime(t time.Time) time.Time {
	if p.loc == nil {
		return t.Local()
	}
	return t.In(p.loc)
}

func bar(n, total int) string {
	const width = 20
	filled := 0
	if total > 0 {
		filled = n * width / total
	}
	return fmt.Sprintf("%s%s %d", strings.Repeat("█", filled), strings.Repeat("░", width-filled), n)
}

func truncate(s string, limit int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
