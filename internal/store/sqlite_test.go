package store

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/journal/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSession_NoneStored(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Session()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_SaveLoadClear(t *testing.T) {
	s := newTestStore(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	require.NoError(t, s.SaveSession(domain.Session{
		AccessToken: signedToken(t, exp),
		Email:       "deniz@example.com",
	}))

	got, err := s.Session()
	require.NoError(t, err)
	assert.Equal(t, "deniz@example.com", got.Email)
	assert.Equal(t, "bearer", got.TokenType)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, exp.Equal(*got.ExpiresAt), "expiry %v != %v", got.ExpiresAt, exp)
	assert.False(t, Expired(got, time.Now()))
	assert.True(t, Expired(got, exp.Add(time.Second)))

	require.NoError(t, s.ClearSession())
	_, err = s.Session()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_OpaqueToken(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSession(domain.Session{AccessToken: "opaque-token"}))

	got, err := s.Session()
	require.NoError(t, err)
	assert.Nil(t, got.ExpiresAt)
	assert.False(t, Expired(got, time.Now().AddDate(10, 0, 0)))
}

func TestSnapshot_RoundTripKeepsOrder(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	entries := []domain.Entry{
		{ID: "12", Text: "yeni", CreatedAt: base, Analysis: &domain.Analysis{
			Sentiment: &domain.Sentiment{Mood: domain.MoodPositive, Score: 0.7},
			Topics:    []string{"Aile"},
		}},
		{ID: "9", Text: "eski", CreatedAt: base.AddDate(0, 0, -1)},
	}
	require.NoError(t, s.ReplaceSnapshot(entries))

	got, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EntryID("12"), got[0].ID)
	assert.Equal(t, domain.EntryID("9"), got[1].ID)
	assert.Equal(t, []string{"Aile"}, got[0].Topics())
	assert.True(t, base.Equal(got[0].CreatedAt))

	// a second replace drops what is no longer returned
	require.NoError(t, s.ReplaceSnapshot(entries[1:]))
	got, err = s.Snapshot()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EntryID("9"), got[0].ID)
}

func TestSnapshotEntry_Prefix(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceSnapshot([]domain.Entry{
		{ID: "123", CreatedAt: time.Now()},
		{ID: "12", CreatedAt: time.Now()},
		{ID: "15", CreatedAt: time.Now()},
		{ID: "27", CreatedAt: time.Now()},
	}))

	e, err := s.SnapshotEntry("12")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryID("12"), e.ID)

	e, err = s.SnapshotEntry("123")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryID("123"), e.ID)

	e, err = s.SnapshotEntry("2")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryID("27"), e.ID)

	_, err = s.SnapshotEntry("1")
	assert.ErrorIs(t, err, domain.ErrAmbiguousID)

	_, err = s.SnapshotEntry("_7")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	_, err = s.SnapshotEntry("%")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)

	_, err = s.SnapshotEntry("99")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSnapshot_LeadingZeroID(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceSnapshot([]domain.Entry{{ID: "007", CreatedAt: time.Now()}}))

	got, err := s.Snapshot()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.EntryID("007"), got[0].ID)
}

func TestReplaceSnapshot_Concurrent(t *testing.T) {
	s := newTestStore(t)
	entries := []domain.Entry{
		{ID: "2", CreatedAt: time.Now()},
		{ID: "1", CreatedAt: time.Now()},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.ReplaceSnapshot(entries)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	got, err := s.Snapshot()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
