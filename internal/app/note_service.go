package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/ports/primary"
	"github.com/example/notehub/internal/ports/secondary"
	"github.com/example/notehub/internal/querycache"
)

// MsgNoMatches is shown when a search returns no notes.
const MsgNoMatches = "No matches for your query"

// NoteKey returns the cache key for a single note.
func NoteKey(id string) querycache.Key {
	return querycache.Key{"note", id}
}

// ListKey returns the cache key for a list view.
func ListKey(view listview.State) querycache.Key {
	return querycache.Key(view.Key())
}

// NoteServiceImpl implements the NoteService interface. Reads go through
// the query cache; successful mutations invalidate it.
type NoteServiceImpl struct {
	gateway  secondary.NoteGateway
	cache    *querycache.Cache
	notifier secondary.Notifier
	logger   *zap.Logger
}

// NewNoteService creates a new NoteService with injected dependencies.
func NewNoteService(gateway secondary.NoteGateway, cache *querycache.Cache, notifier secondary.Notifier, logger *zap.Logger) *NoteServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteServiceImpl{
		gateway:  gateway,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

var _ primary.NoteService = (*NoteServiceImpl)(nil)

// ListNotes returns the page of notes for view.
func (s *NoteServiceImpl) ListNotes(ctx context.Context, view listview.State) (*primary.NoteList, error) {
	list, err := querycache.Fetch(ctx, s.cache, ListKey(view), s.ListFetcher(view))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return list, nil
}

// ListFetcher returns the uncached network read for view. Observers wrap
// it with the cache themselves.
func (s *NoteServiceImpl) ListFetcher(view listview.State) func(ctx context.Context) (*primary.NoteList, error) {
	return func(ctx context.Context) (*primary.NoteList, error) {
		rec, err := s.gateway.ListNotes(ctx, secondary.ListParams{
			Search:  view.Search,
			Page:    view.Page,
			PerPage: view.PerPage,
			Tag:     view.TagParam(),
		})
		if err != nil {
			return nil, err
		}

		list := &primary.NoteList{
			Notes:      make([]note.Note, 0, len(rec.Notes)),
			TotalPages: rec.TotalPages,
		}
		for _, n := range rec.Notes {
			list.Notes = append(list.Notes, recordToNote(n))
		}

		if len(list.Notes) == 0 && view.Search != "" && s.notifier != nil {
			s.notifier.Notify(ctx, effects.LevelInfo, MsgNoMatches)
		}
		return list, nil
	}
}

// GetNote retrieves a note by ID.
func (s *NoteServiceImpl) GetNote(ctx context.Context, noteID string) (*note.Note, error) {
	n, err := querycache.Fetch(ctx, s.cache, NoteKey(noteID), s.NoteFetcher(noteID))
	if err != nil {
		return nil, fmt.Errorf("failed to get note %s: %w", noteID, err)
	}
	return n, nil
}

// NoteFetcher returns the uncached network read for one note.
func (s *NoteServiceImpl) NoteFetcher(noteID string) func(ctx context.Context) (*note.Note, error) {
	return func(ctx context.Context) (*note.Note, error) {
		rec, err := s.gateway.GetNote(ctx, noteID)
		if err != nil {
			return nil, err
		}
		n := recordToNote(rec)
		return &n, nil
	}
}

// CreateNote creates a note.
func (s *NoteServiceImpl) CreateNote(ctx context.Context, values note.Values) (*note.Note, error) {
	if err := note.Validate(values); err != nil {
		return nil, err
	}

	rec, err := s.gateway.CreateNote(ctx, secondary.NoteFields{
		Title:   values.Title,
		Content: values.Content,
		Tag:     string(values.Tag),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	created := recordToNote(rec)
	s.cache.Invalidate(querycache.Key{listview.KeyRoot})
	s.logger.Info("note created", zap.String("id", created.ID))
	return &created, nil
}

// UpdateNote applies a partial update.
func (s *NoteServiceImpl) UpdateNote(ctx context.Context, noteID string, patch note.Patch) (*note.Note, error) {
	if err := note.CanUpdate(note.CanUpdateContext{NoteID: noteID}).Error(); err != nil {
		return nil, err
	}

	rec, err := s.gateway.UpdateNote(ctx, noteID, patchToRecord(patch))
	if err != nil {
		return nil, fmt.Errorf("failed to update note %s: %w", noteID, err)
	}

	updated := recordToNote(rec)
	s.cache.Invalidate(querycache.Key{listview.KeyRoot})
	s.cache.Set(NoteKey(updated.ID), &updated)
	s.logger.Info("note updated", zap.String("id", updated.ID))
	return &updated, nil
}

// DeleteNote deletes a note and returns the deleted record.
func (s *NoteServiceImpl) DeleteNote(ctx context.Context, noteID string) (*note.Note, error) {
	rec, err := s.gateway.DeleteNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete note %s: %w", noteID, err)
	}

	deleted := recordToNote(rec)
	s.cache.Invalidate(querycache.Key{listview.KeyRoot})
	s.cache.Remove(NoteKey(noteID))
	s.logger.Info("note deleted", zap.String("id", noteID))
	return &deleted, nil
}

func recordToNote(r *secondary.NoteRecord) note.Note {
	return note.Note{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Tag:       note.Tag(r.Tag),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func patchToRecord(p note.Patch) secondary.NotePatch {
	out := secondary.NotePatch{Title: p.Title, Content: p.Content}
	if p.Tag != nil {
		tag := string(*p.Tag)
		out.Tag = &tag
	}
	return out
}
