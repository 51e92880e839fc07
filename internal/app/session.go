package app

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"go.uber.org/zap"

	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/debounce"
	"github.com/example/notehub/internal/ports/primary"
	"github.com/example/notehub/internal/querycache"
)

// DefaultSearchDebounce is the quiet period before typed search text applies.
const DefaultSearchDebounce = time.Second

// ListSource provides the uncached list read a session observes.
type ListSource interface {
	ListFetcher(view listview.State) func(ctx context.Context) (*primary.NoteList, error)
}

// SessionOptions configures a NotesSession.
type SessionOptions struct {
	Tag      note.Tag
	PerPage  int
	Debounce time.Duration
	Clock    clock.Clock
	Logger   *zap.Logger
	// OnChange is called after every state change, outside any lock.
	OnChange func(Snapshot)
}

// Snapshot is everything a list view renders.
type Snapshot struct {
	View           listview.State
	Input          string
	List           querycache.State[*primary.NoteList]
	TotalPages     int
	ShowPagination bool
}

// NotesSession binds the list view state, the debounced search box and the
// cache observer for one interactive browse session.
type NotesSession struct {
	source    ListSource
	observer  *querycache.Observer[*primary.NoteList]
	scheduler *debounce.Scheduler
	delay     time.Duration
	logger    *zap.Logger
	onChange  func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	view  listview.State
	input string
}

// NewNotesSession creates a session for the given tag route. Debounced
// refreshes run under ctx until Close.
func NewNotesSession(ctx context.Context, source ListSource, cache *querycache.Cache, opts SessionOptions) *NotesSession {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSearchDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &NotesSession{
		source:    source,
		scheduler: debounce.New(opts.Clock),
		delay:     opts.Debounce,
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		ctx:       ctx,
		cancel:    cancel,
		view:      listview.New(opts.Tag, opts.PerPage),
	}
	s.observer = querycache.NewObserver[*primary.NoteList](cache, func(querycache.State[*primary.NoteList]) {
		s.emit()
	})
	return s
}

// TypeSearch records raw input. The search applies, and the page resets,
// only after the debounce period passes without further input.
func (s *NotesSession) TypeSearch(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()

	s.scheduler.Schedule(func() {
		s.applySearch(text)
	}, s.delay)
	s.emit()
}

// FlushSearch applies pending search input immediately.
func (s *NotesSession) FlushSearch() bool {
	return s.scheduler.Flush()
}

func (s *NotesSession) applySearch(text string) {
	s.mu.Lock()
	s.view = listview.ApplySearch(s.view, text)
	s.mu.Unlock()

	s.logger.Debug("search applied", zap.String("search", text))
	s.Refresh(s.ctx)
}

// SetPage moves to page without touching search or tag.
func (s *NotesSession) SetPage(ctx context.Context, page int) querycache.State[*primary.NoteList] {
	s.mu.Lock()
	s.view = listview.SetPage(s.view, page)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// NextPage advances one page if there is one.
func (s *NotesSession) NextPage(ctx context.Context) querycache.State[*primary.NoteList] {
	snap := s.Snapshot()
	if snap.TotalPages > 0 && snap.View.Page >= snap.TotalPages {
		return snap.List
	}
	return s.SetPage(ctx, snap.View.Page+1)
}

// PrevPage goes back one page, stopping at 1.
func (s *NotesSession) PrevPage(ctx context.Context) querycache.State[*primary.NoteList] {
	snap := s.Snapshot()
	if snap.View.Page <= 1 {
		return snap.List
	}
	return s.SetPage(ctx, snap.View.Page-1)
}

// Navigate resets the session to a different tag route. Pending search
// input is discarded.
func (s *NotesSession) Navigate(ctx context.Context, tag note.Tag) querycache.State[*primary.NoteList] {
	s.scheduler.Stop()

	s.mu.Lock()
	s.view = listview.Navigate(s.view, tag)
	s.input = ""
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh reads the current view through the cache.
func (s *NotesSession) Refresh(ctx context.Context) querycache.State[*primary.NoteList] {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()

	return s.observer.Fetch(ctx, ListKey(view), s.source.ListFetcher(view))
}

// Snapshot returns the current state.
func (s *NotesSession) Snapshot() Snapshot {
	s.mu.Lock()
	view, input := s.view, s.input
	s.mu.Unlock()

	list := s.observer.State()
	total := 0
	if list.HasData && list.Data != nil {
		total = list.Data.TotalPages
	}
	return Snapshot{
		View:           view,
		Input:          input,
		List:           list,
		TotalPages:     total,
		ShowPagination: listview.ShowPagination(total),
	}
}

// Close stops pending search input and cancels debounced refreshes.
func (s *NotesSession) Close() {
	s.scheduler.Stop()
	s.cancel()
}

func (s *NotesSession) emit() {
	if s.onChange != nil {
		s.onChange(s.Snapshot())
	}
}
