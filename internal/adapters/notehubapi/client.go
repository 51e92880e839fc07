// Package notehubapi implements the NoteGateway port over the remote
// note service's REST API.
package notehubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/notehub/internal/ctxutil"
	"github.com/example/notehub/internal/ports/secondary"
	"github.com/example/notehub/internal/version"
)

// DefaultBaseURL is the public note service.
const DefaultBaseURL = "https://notehub-public.goit.study/api"

const maxErrorBody = 64 << 10

// Client talks to the note service. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for baseURL. token is sent as a bearer credential;
// an empty token is sent as-is and left for the service to reject.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		token:   token,
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ secondary.NoteGateway = (*Client)(nil)

type noteJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listJSON struct {
	Notes      []noteJSON `json:"notes"`
	TotalPages int        `json:"totalPages"`
}

type createJSON struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

type patchJSON struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Tag     *string `json:"tag,omitempty"`
}

type errorJSON struct {
	Message string `json:"message"`
}

// ListNotes fetches one page of notes. The tag filter is omitted when empty or "all".
func (c *Client) ListNotes(ctx context.Context, params secondary.ListParams) (*secondary.NoteListRecord, error) {
	q := url.Values{}
	q.Set("search", params.Search)
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("perPage", strconv.Itoa(params.PerPage))
	if params.Tag != "" && !strings.EqualFold(params.Tag, "all") {
		q.Set("tag", params.Tag)
	}

	var out listJSON
	if err := c.do(ctx, http.MethodGet, "/notes", q, nil, &out); err != nil {
		return nil, err
	}

	list := &secondary.NoteListRecord{
		Notes:      make([]*secondary.NoteRecord, 0, len(out.Notes)),
		TotalPages: out.TotalPages,
	}
	for _, n := range out.Notes {
		list.Notes = append(list.Notes, n.toRecord())
	}
	return list, nil
}

// GetNote fetches a note by ID.
func (c *Client) GetNote(ctx context.Context, id string) (*secondary.NoteRecord, error) {
	var out noteJSON
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.toRecord(), nil
}

// CreateNote creates a note.
func (c *Client) CreateNote(ctx context.Context, fields secondary.NoteFields) (*secondary.NoteRecord, error) {
	body := createJSON{Title: fields.Title, Content: fields.Content, Tag: fields.Tag}

	var out noteJSON
	if err := c.do(ctx, http.MethodPost, "/notes", nil, body, &out); err != nil {
		return nil, err
	}
	return out.toRecord(), nil
}

// UpdateNote sends a partial update.
func (c *Client) UpdateNote(ctx context.Context, id string, patch secondary.NotePatch) (*secondary.NoteRecord, error) {
	body := patchJSON{Title: patch.Title, Content: patch.Content, Tag: patch.Tag}

	var out noteJSON
	if err := c.do(ctx, http.MethodPatch, notePath(id), nil, body, &out); err != nil {
		return nil, err
	}
	return out.toRecord(), nil
}

// DeleteNote deletes a note.
func (c *Client) DeleteNote(ctx context.Context, id string) (*secondary.NoteRecord, error) {
	var out noteJSON
	if err := c.do(ctx, http.MethodDelete, notePath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.toRecord(), nil
}

func requestFields(ctx context.Context, method, path string) []zap.Field {
	fields := []zap.Field{zap.String("method", method), zap.String("path", path)}
	if cmd := ctxutil.CommandFromContext(ctx); cmd != "" {
		fields = append(fields, zap.String("cmd", cmd))
	}
	return fields
}

func notePath(id string) string {
	return "/notes/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := *c.baseURL
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", append(requestFields(ctx, method, path), zap.Error(err))...)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request", append(requestFields(ctx, method, path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))...)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Method: method, Path: path}
		var e errorJSON
		if raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
			if json.Unmarshal(raw, &e) == nil {
				httpErr.Message = e.Message
			}
		}
		c.logger.Warn("request rejected", append(requestFields(ctx, method, path),
			zap.Int("status", resp.StatusCode), zap.String("message", httpErr.Message))...)
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w from %s %s: %w", ErrMalformedResponse, method, path, err)
	}
	return nil
}

func (n noteJSON) toRecord() *secondary.NoteRecord {
	return &secondary.NoteRecord{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tag:       n.Tag,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
