package stats

import (
	"fmt"
	"time"

	"github.com/pbaille/journal/internal/domain"
)

// CardKind identifies which motivation message applies
type CardKind string

const (
	CardWelcome   CardKind = "welcome"
	CardCompleted CardKind = "completed"
	CardReminder  CardKind = "reminder"
)

// MotivationCard is the nudge shown at the top of the home view
type MotivationCard struct {
	Kind        CardKind `json:"type"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Quote       string   `json:"quote,omitempty"`
	LinkEntries bool     `json:"linkEntries"`
}

type motivationTexts struct {
	welcomeTitle, welcomeMessage     string
	completedTitle, completedMessage string
	reminderTodayTitle               string
	reminderTodayMessage             string
	reminderDaysTitle                string // %d days
	reminderDaysMessage              string // %d days
	quotes                           []string
}

var motivation = map[Locale]motivationTexts{
	LocaleTurkish: {
		welcomeTitle:         "Hoş Geldin! 🎉",
		welcomeMessage:       "Günlük tutmak, zihinsel sağlığını iyileştirmenin en etkili yollarından biri. Hadi başlayalım!",
		completedTitle:       "Harika! ✨",
		completedMessage:     "Bugün günlüğünü yazdın. Düzenli yazmaya devam et!",
		reminderTodayTitle:   "Bugün Henüz Yazmadın",
		reminderTodayMessage: "Bugün nasıl hissettiğini paylaşmak ister misin?",
		reminderDaysTitle:    "%d Gündür Yazmadın",
		reminderDaysMessage:  "Son %d gündür yazmadın. Bugün nasıl hissettiğini paylaşmak ister misin?",
		quotes: []string{
			`"Yazı yazmak, düşünceleri netleştirmenin en güçlü yoludur."`,
			`"Her gün kendine birkaç dakika ayır, yarın sana teşekkür edecek."`,
			`"Duyguları yazmak, onları anlamlandırmanın ilk adımıdır."`,
			`"Küçük adımlar büyük değişimlere yol açar."`,
		},
	},
	LocaleEnglish: {
		welcomeTitle:         "Welcome! 🎉",
		welcomeMessage:       "Keeping a journal is one of the most effective ways to look after your mental health. Let's begin!",
		completedTitle:       "Great! ✨",
		completedMessage:     "You wrote today's entry. Keep the habit going!",
		reminderTodayTitle:   "Nothing Written Yet Today",
		reminderTodayMessage: "Would you like to share how you feel today?",
		reminderDaysTitle:    "%d Days Without Writing",
		reminderDaysMessage:  "You haven't written for %d days. Would you like to share how you feel today?",
		quotes: []string{
			`"Writing is the strongest way to clarify your thoughts."`,
			`"Give yourself a few minutes every day; tomorrow you will thank you."`,
			`"Putting feelings into words is the first step to understanding them."`,
			`"Small steps lead to big changes."`,
		},
	},
}

// TodayEntry returns the first entry written on now's calendar day
func TodayEntry(entries []domain.Entry, now time.Time) (domain.Entry, bool) {
	for _, e := range entries {
		if SameDay(e.CreatedAt, now, now.Location()) {
			return e, true
		}
	}
	return domain.Entry{}, false
}

// DaysSinceLastEntry is the number of whole 24h periods between now and the newest entry
func DaysSinceLastEntry(entries []domain.Entry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}
	elapsed := now.Sub(entries[0].CreatedAt)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(elapsed / (24 * time.Hour))
}

// Motivation picks the home-view nudge. pick chooses a quote index in [0, n)
// for the reminder card; a nil pick always uses the first quote.
func Motivation(entries []domain.Entry, now time.Time, locale Locale, pick func(n int) int) MotivationCard {
	texts, ok := motivation[locale]
	if !ok {
		texts = motivation[LocaleTurkish]
	}

	if len(entries) == 0 {
		return MotivationCard{
			Kind:    CardWelcome,
			Icon:    "rocket",
			Color:   "#3B82F6",
			Title:   texts.welcomeTitle,
			Message: texts.welcomeMessage,
		}
	}

	if _, ok := TodayEntry(entries, now); ok {
		return MotivationCard{
			Kind:        CardCompleted,
			Icon:        "checkmark-circle",
			Color:       "#10B981",
			Title:       texts.completedTitle,
			Message:     texts.completedMessage,
			LinkEntries: true,
		}
	}

	idx := 0
	if pick != nil {
		idx = pick(len(texts.quotes))
		if idx < 0 || idx >= len(texts.quotes) {
			idx = 0
		}
	}

	card := MotivationCard{
		Kind:  CardReminder,
		Icon:  "time",
		Color: "#F59E0B",
		Quote: texts.quotes[idx],
	}
	if days := DaysSinceLastEntry(entries, now); days == 0 {
		card.Title = texts.reminderTodayTitle
		card.Message = texts.reminderTodayMessage
	} else {
		card.Title = fmt.Sprintf(texts.reminderDaysTitle, days)
		card.Message = fmt.Sprintf(texts.reminderDaysMessage, days)
	}
	return card
}
