// Package client talks to the journal entry service over HTTP/JSON.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pbaille/journal/internal/domain"
)

// DefaultListLimit matches the service's default page of recent entries
const DefaultListLimit = 50

// maxBody caps response bodies read from the service
const maxBody = 5 * 1024 * 1024

var (
	// ErrUnauthorized is returned when the service rejects the token
	ErrUnauthorized = errors.New("unauthorized: please log in again")
	// ErrEmptyText is returned for blank entry text; the service would reject it
	ErrEmptyText = errors.New("entry text is empty")
)

// APIError is a non-2xx response from the service
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("service error (status %d)", e.Status)
	}
	return fmt.Sprintf("service error (status %d): %s", e.Status, e.Detail)
}

// Client handles requests to the entry service
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. The http.Client is copied, so
// one passed to WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			hc := *c.httpClient
			hc.Timeout = timeout
			c.httpClient = &hc
		}
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the request logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a Client for the service at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("service URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("service url %q has no scheme", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListEntries returns the user's most recent entries, newest first
func (c *Client) ListEntries(ctx context.Context, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}

	var entries []domain.Entry
	if err := c.do(ctx, http.MethodGet, "/entries", q, nil, &entries); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

type createEntryRequest struct {
	Text string `json:"metin"`
}

type createEntryResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Data    *domain.Entry `json:"data"`
}

// CreateEntry posts a new entry and returns it as stored by the service
func (c *Client) CreateEntry(ctx context.Context, text string) (*domain.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var resp createEntryResponse
	if err := c.do(ctx, http.MethodPost, "/entries", nil, createEntryRequest{Text: text}, &resp); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	if resp.Status != "success" {
		msg := resp.Message
		if msg == "" {
			msg = "unexpected response from service"
		}
		return nil, fmt.Errorf("create entry: %s", msg)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("create entry: response has no data")
	}
	return resp.Data, nil
}

// DailyInsight fetches the generated insight for the current user
func (c *Client) DailyInsight(ctx context.Context) (*domain.DailyInsight, error) {
	var in domain.DailyInsight
	if err := c.do(ctx, http.MethodGet, "/insights", nil, nil, &in); err != nil {
		return nil, fmt.Errorf("daily insight: %w", err)
	}
	return &in, nil
}

// PredictMood asks the service for a 1-5 mood estimate of one entry
func (c *Client) PredictMood(ctx context.Context, id domain.EntryID) (*domain.MoodPrediction, error) {
	var p domain.MoodPrediction
	path := "/predict-mood/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &p); err != nil {
		return nil, fmt.Errorf("predict mood: %w", err)
	}
	return &p, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{email, password}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: response has no access token")
	}
	return &domain.Session{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		Email:       email,
		SavedAt:     time.Now(),
	}, nil
}

// SignUp registers a new account
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, credentials{email, password}, nil); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("service request")

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// errorDetail extracts the service's error text. detail is usually a string
// but validation failures send a list of objects; those are kept verbatim.
func errorDetail(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return strings.TrimSpace(string(data))
	}
	if len(eb.Detail) > 0 {
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil {
			return s
		}
		return string(eb.Detail)
	}
	return eb.Message
}
