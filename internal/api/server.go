// Package api serves the dashboard views as JSON for local frontends.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pbaille/journal/internal/client"
	"github.com/pbaille/journal/internal/dashboard"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/insight"
	"github.com/pbaille/journal/internal/stats"
	"github.com/pbaille/journal/internal/timeline"
)

// EntryCreator posts new entries to the entry service
type EntryCreator interface {
	CreateEntry(ctx context.Context, text string) (*domain.Entry, error)
}

// Server handles HTTP requests for the dashboard API
type Server struct {
	dash    *dashboard.Service
	creator EntryCreator
	addr    string
	log     zerolog.Logger
}

// New creates a new API server
func New(dash *dashboard.Service, creator EntryCreator, addr string, log zerolog.Logger) *Server {
	return &Server{dash: dash, creator: creator, addr: addr, log: log}
}

// Handler returns the routed handler with CORS and request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Views
	mux.HandleFunc("GET /dashboard", s.home)
	mux.HandleFunc("GET /calendar", s.calendar)
	mux.HandleFunc("GET /insights", s.insight)

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("POST /entries", s.addEntry)
	mux.HandleFunc("GET /entries/{id}", s.getEntry)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withLogging(withCORS(mux))
}

// Run starts the HTTP server and shuts it down when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("starting dashboard server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down dashboard server")
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HomeResponse is the dashboard view plus any fallback warnings
type HomeResponse struct {
	*dashboard.Home
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	home := s.dash.Home(r.Context())

	resp := HomeResponse{Home: home}
	if home.EntriesErr != nil {
		resp.Warnings = append(resp.Warnings, "entries: "+home.EntriesErr.Error())
	}
	if home.InsightErr != nil {
		resp.Warnings = append(resp.Warnings, "insight: "+home.InsightErr.Error())
	}

	writeJSON(w, http.StatusOK, resp)
}

// CalendarResponse is the trailing calendar and where its entries came from
type CalendarResponse struct {
	Days   []stats.CalendarDay `json:"days"`
	Origin dashboard.Origin    `json:"origin"`
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	days := 0
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 || n > 366 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = n
	}

	cal, list := s.dash.Calendar(r.Context(), days)

	writeJSON(w, http.StatusOK, CalendarResponse{Days: cal, Origin: list.Origin})
}

func (s *Server) insight(w http.ResponseWriter, r *http.Request) {
	view, _ := s.dash.InsightWithEntries(r.Context())
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	mood, err := timeline.ParseMoodFilter(r.URL.Query().Get("mood"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list := s.dash.Timeline(r.Context(), query, mood)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": list.Entries,
		"origin":  list.Origin,
		"query":   query,
		"mood":    mood,
	})
}

// EntryResponse is one entry with its display icon
type EntryResponse struct {
	Entry  domain.Entry     `json:"entry"`
	Icon   insight.Icon     `json:"icon"`
	Origin dashboard.Origin `json:"origin"`
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, list, err := s.dash.Find(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, dashboard.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{
		Entry:  *entry,
		Icon:   insight.SentimentIcon(entry.Sentiment()),
		Origin: list.Origin,
	})
}

// AddEntryRequest is the request body for adding an entry
type AddEntryRequest struct {
	Text string `json:"metin"`
}

// AddEntryResponse mirrors the entry service's create response
type AddEntryResponse struct {
	Status string        `json:"status"`
	Data   *domain.Entry `json:"data"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.creator.CreateEntry(r.Context(), req.Text)
	if err != nil {
		var apiErr *client.APIError
		switch {
		case errors.Is(err, client.ErrEmptyText):
			writeError(w, http.StatusBadRequest, "metin is required")
		case errors.Is(err, client.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.As(err, &apiErr):
			writeError(w, apiErr.Status, apiErr.Detail)
		default:
			s.log.Error().Err(err).Msg("create entry failed")
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, AddEntryResponse{Status: "success", Data: entry})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	// Encode first so a failure can still change the status
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(map[string]string{"detail": "encode response: " + err.Error()})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
