// Package dashboard loads entries and insight for one view and derives
// everything the view shows from that single fetched list.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/insight"
	"github.com/pbaille/journal/internal/stats"
	"github.com/pbaille/journal/internal/timeline"
)

var (
	// ErrEntryNotFound is returned by Find when no entry matches
	ErrEntryNotFound = domain.ErrEntryNotFound
	// ErrAmbiguousID is returned by Find when an id prefix matches several entries
	ErrAmbiguousID = domain.ErrAmbiguousID
)

// EntrySource is the remote entry service
type EntrySource interface {
	ListEntries(ctx context.Context, limit int) ([]domain.Entry, error)
	DailyInsight(ctx context.Context) (*domain.DailyInsight, error)
}

// Snapshotter keeps the last successfully fetched entry list
type Snapshotter interface {
	ReplaceSnapshot(entries []domain.Entry) error
	Snapshot() ([]domain.Entry, error)
}

// Origin says where a view's entries came from
type Origin string

const (
	OriginLive     Origin = "live"
	OriginSnapshot Origin = "snapshot"
	OriginEmpty    Origin = "empty"
)

// Options tune a Service
type Options struct {
	Limit           int
	WindowDays      int
	Location        *time.Location
	Locale          stats.Locale
	OfflineFallback bool
	// Now and Pick are replaceable for tests
	Now  func() time.Time
	Pick func(n int) int
}

// Service loads view data. It holds no view state: every call fetches and
// derives its own copy, so overlapping calls never share data.
type Service struct {
	src  EntrySource
	snap Snapshotter
	opts Options
	log  zerolog.Logger
}

// New creates a Service. snap may be nil to disable the local snapshot.
func New(src EntrySource, snap Snapshotter, opts Options, log zerolog.Logger) *Service {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = stats.DefaultWindowDays
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Locale == "" {
		opts.Locale = stats.LocaleTurkish
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{src: src, snap: snap, opts: opts, log: log}
}

// EntryList is a fetched entry list with its provenance
type EntryList struct {
	Entries []domain.Entry `json:"entries"`
	Origin  Origin         `json:"origin"`
	// Err is the fetch failure that forced a fallback, if any
	Err error `json:"-"`
}

// InsightView is the insight plus its display parameters
type InsightView struct {
	domain.DailyInsight
	Color    insight.Color  `json:"color"`
	Related  []domain.Entry `json:"related_entries"`
	Fallback bool           `json:"fallback"`
}

// Home is everything the home view shows
type Home struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Origin      Origin                   `json:"origin"`
	Stats       stats.DerivedStats       `json:"stats"`
	Breakdown   stats.SentimentBreakdown `json:"breakdown"`
	Calendar    []stats.CalendarDay      `json:"calendar"`
	Motivation  stats.MotivationCard     `json:"motivation"`
	Insight     InsightView              `json:"insight"`
	Recent      []domain.Entry           `json:"recent"`

	// EntriesErr and InsightErr record fetch failures hidden by fallbacks
	EntriesErr error `json:"-"`
	InsightErr error `json:"-"`
}

// Entries fetches the entry list. A failed fetch never surfaces as an
// error: it degrades to the stored snapshot, or an empty list.
func (s *Service) Entries(ctx context.Context) EntryList {
	entries, err := s.src.ListEntries(ctx, s.opts.Limit)
	if err == nil {
		if s.snap != nil {
			if serr := s.snap.ReplaceSnapshot(entries); serr != nil {
				s.log.Warn().Err(serr).Msg("could not store entry snapshot")
			}
		}
		return EntryList{Entries: entries, Origin: OriginLive}
	}

	s.log.Warn().Err(err).Msg("entry fetch failed, using fallback")

	if s.opts.OfflineFallback && s.snap != nil {
		cached, serr := s.snap.Snapshot()
		if serr == nil && len(cached) > 0 {
			return EntryList{Entries: cached, Origin: OriginSnapshot, Err: err}
		}
		if serr != nil {
			s.log.Warn().Err(serr).Msg("could not read entry snapshot")
		}
	}
	return EntryList{Entries: []domain.Entry{}, Origin: OriginEmpty, Err: err}
}

// Insight fetches the daily insight, or the fixed fallback on failure
func (s *Service) Insight(ctx context.Context) (domain.DailyInsight, error) {
	in, err := s.src.DailyInsight(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("insight fetch failed, using fallback")
		return insight.FallbackInsight(), err
	}
	if in == nil {
		return insight.FallbackInsight(), fmt.Errorf("daily insight: empty response")
	}
	return *in, nil
}

// load fetches entries and insight concurrently. Both branches are
// non-fatal: failures are already replaced by fallbacks.
func (s *Service) load(ctx context.Context) (EntryList, domain.DailyInsight, error) {
	var list EntryList
	var daily domain.DailyInsight
	var insightErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list = s.Entries(gctx)
		return nil
	})
	g.Go(func() error {
		daily, insightErr = s.Insight(gctx)
		return nil
	})
	_ = g.Wait()

	return list, daily, insightErr
}

// Home fetches entries and insight concurrently and derives the home view
func (s *Service) Home(ctx context.Context) *Home {
	list, daily, insightErr := s.load(ctx)

	now := s.opts.Now().In(s.opts.Location)
	entries := list.Entries

	home := &Home{
		GeneratedAt: now,
		Origin:      list.Origin,
		Stats:       stats.Derive(entries, s.opts.Location),
		Breakdown:   stats.Breakdown(entries),
		Calendar:    stats.BuildTrailingCalendar(entries, s.opts.WindowDays, now, s.opts.Locale),
		Motivation:  stats.Motivation(entries, now, s.opts.Locale, s.opts.Pick),
		Insight:     s.insightView(daily, entries, insightErr != nil),
		Recent:      entries[:min(len(entries), 3)],
		EntriesErr:  list.Err,
		InsightErr:  insightErr,
	}

	s.log.Debug().
		Str("origin", string(home.Origin)).
		Int("entries", len(entries)).
		Int("streak", home.Stats.Streak).
		Msg("home view derived")

	return home
}

func (s *Service) insightView(daily domain.DailyInsight, entries []domain.Entry, fallback bool) InsightView {
	return InsightView{
		DailyInsight: daily,
		Color:        insight.TrendToColor(daily.Trend),
		Related:      insight.SelectRelatedEntries(entries, daily.RelatedTopic, insight.DefaultRelatedCount),
		Fallback:     fallback,
	}
}

// InsightWithEntries fetches the insight and the entries it refers to
func (s *Service) InsightWithEntries(ctx context.Context) (InsightView, EntryList) {
	list, daily, insightErr := s.load(ctx)
	return s.insightView(daily, list.Entries, insightErr != nil), list
}

// Calendar returns the trailing calendar over days days ending today
func (s *Service) Calendar(ctx context.Context, days int) ([]stats.CalendarDay, EntryList) {
	if days <= 0 {
		days = s.opts.WindowDays
	}
	list := s.Entries(ctx)
	now := s.opts.Now().In(s.opts.Location)
	return stats.BuildTrailingCalendar(list.Entries, days, now, s.opts.Locale), list
}

// Timeline returns the entries matching query and mood, newest first
func (s *Service) Timeline(ctx context.Context, query string, mood timeline.MoodFilter) EntryList {
	list := s.Entries(ctx)
	list.Entries = timeline.Filter(list.Entries, query, mood)
	return list
}

// Find returns the entry with the given id. An unambiguous id prefix also
// matches. The lookup runs over the fetched list.
func (s *Service) Find(ctx context.Context, id string) (*domain.Entry, EntryList, error) {
	list := s.Entries(ctx)
	entry, err := domain.FindEntry(list.Entries, id)
	return entry, list, err
}
