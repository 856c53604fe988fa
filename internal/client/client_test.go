package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/journal/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("192.168.1.5:8000")
	assert.Error(t, err)

	_, err = New("ftp://example.com")
	assert.Error(t, err)

	c, err := New("http://localhost:8000", WithTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestWithTimeout_KeepsCallerClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c, err := New("http://localhost:8000", WithHTTPClient(shared), WithTimeout(2*time.Second))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)
}

func TestListEntries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/entries", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Write([]byte(`[
			{"id": 42, "metin": "güzel bir gün", "created_at": "2025-03-12T09:15:00.123456+00:00",
			 "analiz_sonucu": {"sentiment": {"duygu": "positive", "skor": 0.91},
			                   "topics": ["Sosyal"], "entities": [{"metin": "Ayşe", "varlik": "PER"}]}},
			{"id": "b7", "metin": "bekliyor", "created_at": "2025-03-11T20:00:00Z"}
		]`))
	}, WithToken("tok"))

	entries, err := c.ListEntries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, domain.EntryID("42"), first.ID)
	mood, ok := first.Mood()
	assert.True(t, ok)
	assert.Equal(t, domain.MoodPositive, mood)
	assert.InDelta(t, 0.91, first.Score(), 1e-9)
	assert.Equal(t, []string{"Sosyal"}, first.Topics())
	assert.Equal(t, []domain.Entity{{Text: "Ayşe", Kind: "PER"}}, first.Entities())

	second := entries[1]
	assert.Equal(t, domain.EntryID("b7"), second.ID)
	assert.Nil(t, second.Analysis)
	_, ok = second.Mood()
	assert.False(t, ok)
}

func TestListEntries_NullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})

	entries, err := c.ListEntries(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestCreateEntry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bugün koştum", body["metin"])

		w.Write([]byte(`{"status": "success", "data": {"id": 7, "metin": "bugün koştum", "created_at": "2025-03-12T10:00:00Z"}}`))
	})

	entry, err := c.CreateEntry(context.Background(), "bugün koştum")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryID("7"), entry.ID)
}

func TestCreateEntry_EmptyTextNeverSent(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.CreateEntry(context.Background(), "   \n")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.False(t, called)
}

func TestCreateEntry_DetailError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "DB Bağlantı Hatası"}`))
	})

	_, err := c.CreateEntry(context.Background(), "metin")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "DB Bağlantı Hatası", apiErr.Detail)
}

func TestCreateEntry_NonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "analysis failed"}`))
	})

	_, err := c.CreateEntry(context.Background(), "metin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis failed")
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Geçersiz token"}`))
	})

	_, err := c.ListEntries(context.Background(), 5)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDailyInsight(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/insights", r.URL.Path)
		w.Write([]byte(`{"insight": "Uykuna dikkat et.", "related_topic": "Sağlık", "trend": "negative", "source": "cache"}`))
	})

	in, err := c.DailyInsight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.MoodNegative, in.Trend)
	require.NotNil(t, in.RelatedTopic)
	assert.Equal(t, "Sağlık", *in.RelatedTopic)
	assert.Equal(t, "cache", in.Source)
}

func TestDailyInsight_NullTopic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"insight": "Henüz yeterli veri yok", "related_topic": null, "trend": "neutral"}`))
	})

	in, err := c.DailyInsight(context.Background())
	require.NoError(t, err)
	assert.Nil(t, in.RelatedTopic)
}

func TestPredictMood(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict-mood/12", r.URL.Path)
		w.Write([]byte(`{"entry_id": 12, "ai_prediction": {"mood_score": 4.2, "emoji": "😊", "message": "Gayet olumlu ve keyifli."}}`))
	})

	p, err := c.PredictMood(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryID("12"), p.EntryID)
	assert.InDelta(t, 4.2, p.Prediction.MoodScore, 1e-9)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"access_token": "abc.def.ghi", "token_type": "bearer", "user": {"id": "u1"}}`))
	})

	s, err := c.Login(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", s.AccessToken)
	assert.Equal(t, "a@b.co", s.Email)
}

func TestLogin_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Giriş başarısız. Email veya şifre hatalı."}`))
	})

	_, err := c.Login(context.Background(), "a@b.co", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Detail, "Giriş başarısız")
}

func TestErrorDetail_ValidationList(t *testing.T) {
	got := errorDetail([]byte(`{"detail": [{"loc": ["body", "metin"], "msg": "field required"}]}`))
	assert.Contains(t, got, "field required")
	assert.Equal(t, "plain text", errorDetail([]byte("plain text")))
}
