package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEntryNotFound is returned by FindEntry when no entry matches
	ErrEntryNotFound = errors.New("entry not found")
	// ErrAmbiguousID is returned by FindEntry when an id prefix matches several entries
	ErrAmbiguousID = errors.New("entry id is ambiguous")
)

// Mood is the sentiment label assigned by the analysis service
type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNegative Mood = "negative"
	MoodNeutral  Mood = "neutral"
)

// EntryID is the server-assigned entry identifier. The service may send it
// as a JSON number or string; both decode to the same textual form.
type EntryID string

// UnmarshalJSON accepts numeric and string ids
func (id *EntryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode entry id: %w", err)
		}
		*id = EntryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode entry id: %w", err)
	}
	*id = EntryID(n.String())
	return nil
}

// MarshalJSON writes ids in canonical integer form back as numbers.
// "007" or "+5" stay strings.
func (id EntryID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Entry is one diary record as returned by the entry service
type Entry struct {
	ID        EntryID   `json:"id"`
	Text      string    `json:"metin"`
	CreatedAt time.Time `json:"created_at"`
	Analysis  *Analysis `json:"analiz_sonucu,omitempty"`
}

// Analysis holds server-computed annotations; absent while analysis is pending
type Analysis struct {
	Sentiment *Sentiment `json:"sentiment,omitempty"`
	Topics    []string   `json:"topics"`
	Entities  []Entity   `json:"entities"`
}

// Sentiment is the label and confidence score for an entry
type Sentiment struct {
	Mood  Mood    `json:"duygu"`
	Score float64 `json:"skor"`
}

// Entity is a named entity detected in the entry text
type Entity struct {
	Text  string  `json:"metin"`
	Kind  string  `json:"varlik"`
	Score float64 `json:"skor,omitempty"`
}

// Sentiment returns the entry's sentiment, or nil when none was computed
func (e Entry) Sentiment() *Sentiment {
	if e.Analysis == nil {
		return nil
	}
	return e.Analysis.Sentiment
}

// Mood returns the sentiment label and whether one is present
func (e Entry) Mood() (Mood, bool) {
	s := e.Sentiment()
	if s == nil || s.Mood == "" {
		return "", false
	}
	return s.Mood, true
}

// Score returns the sentiment score, 0 when no sentiment is present
func (e Entry) Score() float64 {
	if s := e.Sentiment(); s != nil {
		return s.Score
	}
	return 0
}

// Topics returns the topic labels in server order
func (e Entry) Topics() []string {
	if e.Analysis == nil {
		return nil
	}
	return e.Analysis.Topics
}

// Entities returns the detected entities
func (e Entry) Entities() []Entity {
	if e.Analysis == nil {
		return nil
	}
	return e.Analysis.Entities
}

// HasTopic reports whether the entry lists topic exactly
func (e Entry) HasTopic(topic string) bool {
	for _, t := range e.Topics() {
		if t == topic {
			return true
		}
	}
	return false
}

// FindEntry returns the entry whose id equals id, or else the only entry
// whose id starts with it.
func FindEntry(entries []Entry, id string) (*Entry, error) {
	for i := range entries {
		if string(entries[i].ID) == id {
			return &entries[i], nil
		}
	}

	var match *Entry
	for i := range entries {
		if !strings.HasPrefix(string(entries[i].ID), id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
		match = &entries[i]
	}

	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return match, nil
}

// DailyInsight is the server-generated narrative for the current user
type DailyInsight struct {
	Insight      string  `json:"insight"`
	Trend        Mood    `json:"trend"`
	RelatedTopic *string `json:"related_topic,omitempty"`
	Source       string  `json:"source,omitempty"`
}

// MoodPrediction is the model-based 1-5 mood estimate for a single entry
type MoodPrediction struct {
	EntryID    EntryID `json:"entry_id"`
	Prediction struct {
		MoodScore float64 `json:"mood_score"`
		Emoji     string  `json:"emoji"`
		Message   string  `json:"message"`
	} `json:"ai_prediction"`
}

// Session is a stored authentication session
type Session struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	Email       string     `json:"email"`
	SavedAt     time.Time  `json:"saved_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
