// Package notehubtest is an in-memory stand-in for the remote note
// service. It backs the API client tests and the mock-server command.
package notehubtest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/notehub/internal/core/note"
)

// DefaultPerPage is used when a list request omits perPage.
const DefaultPerPage = 12

// Note is the wire representation of a stored note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Auth   string
}

// Service is a fake note service. Token, when non-empty, is the only
// accepted bearer credential.
type Service struct {
	Token string
	Now   func() time.Time

	mu       sync.Mutex
	notes    map[string]*Note
	requests []Request
	failNext map[string]int
}

// NewService creates an empty service.
func NewService(token string) *Service {
	return &Service{
		Token:    token,
		Now:      time.Now,
		notes:    make(map[string]*Note),
		failNext: make(map[string]int),
	}
}

// Routes returns the service's HTTP handler, rooted at /notes.
func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.authenticate, s.injectFailures)

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.get)
			r.Patch("/", s.update)
			r.Delete("/", s.delete)
		})
	})

	return r
}

// Seed stores notes directly. Missing ids and timestamps are filled in.
func (s *Service) Seed(notes ...Note) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.Now()
		}
		if n.UpdatedAt.IsZero() {
			n.UpdatedAt = n.CreatedAt
		}
		stored := n
		s.notes[n.ID] = &stored
		out = append(out, n)
	}
	return out
}

// Requests returns every recorded request in arrival order.
func (s *Service) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests clears the request log.
func (s *Service) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// FailNext makes the next n requests with method respond 500.
func (s *Service) FailNext(method string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method] += n
}

// Count returns the number of recorded requests matching method and path.
func (s *Service) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Get returns a stored note.
func (s *Service) Get(id string) (Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return Note{}, false
	}
	return *n, true
}

func (s *Service) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			raw, err := io.ReadAll(r.Body)
			if err == nil && len(raw) > 0 {
				_ = json.Unmarshal(raw, &req.Body)
			}
			r.Body = io.NopCloser(strings.NewReader(string(raw)))
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Service) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failNext[r.Method] > 0
		if fail {
			s.failNext[r.Method]--
		}
		s.mu.Unlock()

		if fail {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := positiveInt(q.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	perPage, err := positiveInt(q.Get("perPage"), DefaultPerPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "perPage must be a positive integer")
		return
	}

	var tag note.Tag
	if raw, ok := q["tag"]; ok {
		tag = note.Tag(raw[0])
		if !tag.Valid() {
			writeError(w, http.StatusBadRequest, "tag must be one of: Todo, Work, Personal, Meeting, Shopping")
			return
		}
	}
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))

	s.mu.Lock()
	matched := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		if tag != "" && n.Tag != string(tag) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Content), search) {
			continue
		}
		matched = append(matched, *n)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	totalPages := (len(matched) + perPage - 1) / perPage
	start := (page - 1) * perPage
	notes := []Note{}
	if start < len(matched) {
		end := min(start+perPage, len(matched))
		notes = matched[start:end]
	}

	writeJSON(w, http.StatusOK, map[string]any{"notes": notes, "totalPages": totalPages})
}

func (s *Service) get(w http.ResponseWriter, r *http.Request) {
	n, ok := s.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

type fieldsJSON struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Tag     *string `json:"tag"`
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	var req fieldsJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	values := note.Values{}
	applyFields(&values, req)
	if err := note.Validate(values); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	now := s.Now()
	created := s.Seed(Note{
		ID:        uuid.NewString(),
		Title:     values.Title,
		Content:   values.Content,
		Tag:       string(values.Tag),
		CreatedAt: now,
		UpdatedAt: now,
	})[0]
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req fieldsJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	values := note.Values{Title: n.Title, Content: n.Content, Tag: note.Tag(n.Tag)}
	applyFields(&values, req)
	if err := note.Validate(values); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	n.Title, n.Content, n.Tag = values.Title, values.Content, string(values.Tag)
	n.UpdatedAt = s.Now()
	writeJSON(w, http.StatusOK, *n)
}

func (s *Service) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	n, ok := s.notes[id]
	if ok {
		delete(s.notes, id)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}
	writeJSON(w, http.StatusOK, *n)
}

func applyFields(v *note.Values, f fieldsJSON) {
	if f.Title != nil {
		v.Title = *f.Title
	}
	if f.Content != nil {
		v.Content = *f.Content
	}
	if f.Tag != nil {
		v.Tag = note.Tag(*f.Tag)
	}
}

func validationMessage(err error) string {
	var verr *note.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.New("not a positive integer")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
