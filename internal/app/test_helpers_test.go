package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/example/notehub/internal/ports/secondary"
	"github.com/example/notehub/internal/querycache"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.NoteGateway = (*mockNoteGateway)(nil)
	_ secondary.Notifier    = (*recordingNotifier)(nil)
)

// mockNoteGateway implements secondary.NoteGateway for testing.
type mockNoteGateway struct {
	mu        sync.Mutex
	notes     map[string]*secondary.NoteRecord
	nextID    int
	listCalls []secondary.ListParams
	getCalls  []string
	lastPatch *secondary.NotePatch
	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newMockNoteGateway() *mockNoteGateway {
	return &mockNoteGateway{notes: make(map[string]*secondary.NoteRecord)}
}

func (m *mockNoteGateway) seed(title, tag string) *secondary.NoteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec := &secondary.NoteRecord{
		ID:        fmt.Sprintf("n%d", m.nextID),
		Title:     title,
		Tag:       tag,
		CreatedAt: time.Date(2024, 1, 1, 0, m.nextID, 0, 0, time.UTC),
	}
	m.notes[rec.ID] = rec
	return rec
}

func (m *mockNoteGateway) ListNotes(ctx context.Context, params secondary.ListParams) (*secondary.NoteListRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, params)
	if m.listErr != nil {
		return nil, m.listErr
	}

	var matched []*secondary.NoteRecord
	for _, n := range m.notes {
		if params.Tag != "" && n.Tag != params.Tag {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(params.Search)) {
			continue
		}
		cp := *n
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	perPage := params.PerPage
	if perPage < 1 {
		perPage = 9
	}
	total := (len(matched) + perPage - 1) / perPage
	start := (params.Page - 1) * perPage
	page := []*secondary.NoteRecord{}
	if start >= 0 && start < len(matched) {
		page = matched[start:min(start+perPage, len(matched))]
	}
	return &secondary.NoteListRecord{Notes: page, TotalPages: total}, nil
}

func (m *mockNoteGateway) GetNote(ctx context.Context, id string) (*secondary.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = append(m.getCalls, id)
	n, ok := m.notes[id]
	if !ok {
		return nil, errors.New("note not found")
	}
	cp := *n
	return &cp, nil
}

func (m *mockNoteGateway) CreateNote(ctx context.Context, fields secondary.NoteFields) (*secondary.NoteRecord, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	rec := m.seed(fields.Title, fields.Tag)
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Content = fields.Content
	cp := *rec
	return &cp, nil
}

func (m *mockNoteGateway) UpdateNote(ctx context.Context, id string, patch secondary.NotePatch) (*secondary.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPatch = &patch
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, errors.New("note not found")
	}
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Tag != nil {
		n.Tag = *patch.Tag
	}
	cp := *n
	return &cp, nil
}

func (m *mockNoteGateway) DeleteNote(ctx context.Context, id string) (*secondary.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, errors.New("note not found")
	}
	delete(m.notes, id)
	return n, nil
}

func (m *mockNoteGateway) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listCalls)
}

func (m *mockNoteGateway) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.getCalls)
}

type notification struct {
	level   string
	message string
}

// recordingNotifier implements secondary.Notifier for testing.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(ctx context.Context, level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{level: level, message: message})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

func newTestCache(t *testing.T) *querycache.Cache {
	t.Helper()
	c, err := querycache.New(querycache.Options{
		Retries: -1,
		BackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return c
}
