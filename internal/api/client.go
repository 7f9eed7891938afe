// Package api is a typed client for the lexicon REST API. Every call takes a
// context, sends and expects JSON, carries the bearer token when one is set
// and tags the request with a fresh X-Request-ID so failures can be matched
// to server logs.
package api

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

	"github.com/kingrea/lexicon/internal/lexicon"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

const requestIDHeader = "X-Request-ID"

// Error is a non-2xx response.
type Error struct {
	Method    string
	Path      string
	Status    int
	Body      string
	RequestID string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s %s: status=%d request=%s body=%s", e.Method, e.Path, e.Status, e.RequestID, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Logger is the subset of a leveled logger the client writes to.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}

// Client talks to one lexicon API deployment. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     Logger
	newID      func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger routes request logging to l.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     nopLogger{},
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any) error {
	_, err := c.send(ctx, method, path, query, body, target)
	return err
}

// send performs the request and decodes the response into target. decoded
// is false when the server answered without a body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, target any) (bool, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return false, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	requestID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "request", requestID, "took", time.Since(started))

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &Error{
			Method:    method,
			Path:      path,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(data)),
			RequestID: requestID,
		}
	}
	if target == nil || resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return true, nil
}

// Health reports the API's health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEntries fetches one page of entries with their translations.
func (c *Client) ListEntries(ctx context.Context, q lexicon.Query) (*lexicon.Page, error) {
	q = q.Normalize()
	params := url.Values{}
	params.Set("skip", strconv.Itoa(q.Skip()))
	params.Set("limit", strconv.Itoa(q.PageSize))
	params.Set("include_translations", "true")
	params.Set("sorted_by", q.SortBy)
	params.Set("sort_direction", string(q.SortDirection))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.FuzzySearch != "" {
		params.Set("fuzzy_search", q.FuzzySearch)
	}
	if q.LanguageCode != "" {
		params.Set("language_code", q.LanguageCode)
	}
	if q.EntryType != "" {
		params.Set("entry_type", q.EntryType)
	}
	var page lexicon.Page
	if err := c.do(ctx, http.MethodGet, "/api/v1/entries", params, nil, &page); err != nil {
		return nil, err
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.Limit == 0 {
		page.Limit = q.PageSize
	}
	if page.Pages == 0 && page.Total > 0 {
		page.Pages = (page.Total + q.PageSize - 1) / q.PageSize
	}
	return &page, nil
}

// GetEntry fetches one entry with its translations.
func (c *Client) GetEntry(ctx context.Context, id string) (*lexicon.Entry, error) {
	var entry lexicon.Entry
	if err := c.do(ctx, http.MethodGet, "/api/v1/entries/"+url.PathEscape(id), nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntryField writes a single entry property. value is sent as-is, so
// nil becomes JSON null. A success without a body returns a nil entry.
func (c *Client) UpdateEntryField(ctx context.Context, id, field string, value any) (*lexicon.Entry, error) {
	var entry lexicon.Entry
	body := map[string]any{field: value}
	decoded, err := c.send(ctx, http.MethodPut, "/api/v1/entries/"+url.PathEscape(id), nil, body, &entry)
	if err != nil || !decoded {
		return nil, err
	}
	return &entry, nil
}

// UpdateTranslationField writes a single translation property.
func (c *Client) UpdateTranslationField(ctx context.Context, id, field string, value any) (*lexicon.Translation, error) {
	var tr lexicon.Translation
	body := map[string]any{field: value}
	decoded, err := c.send(ctx, http.MethodPut, "/api/v1/translations/"+url.PathEscape(id), nil, body, &tr)
	if err != nil || !decoded {
		return nil, err
	}
	return &tr, nil
}

// DeleteEntry removes an entry.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/entries/"+url.PathEscape(id), nil, nil, nil)
}

// BulkUpdate applies the same updates (language_code, entry_type,
// is_verified) to several entries.
func (c *Client) BulkUpdate(ctx context.Context, ids []string, updates map[string]any) ([]*lexicon.Entry, error) {
	body := map[string]any{"entry_ids": ids, "updates": updates}
	var out []*lexicon.Entry
	if err := c.do(ctx, http.MethodPut, "/api/v1/entries/bulk", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Metadata fetches the dashboard summary.
func (c *Client) Metadata(ctx context.Context) (*lexicon.Metadata, error) {
	var md lexicon.Metadata
	if err := c.do(ctx, http.MethodGet, "/api/v1/entries/metadata", nil, nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}
