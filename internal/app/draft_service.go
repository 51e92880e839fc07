package app

import (
	"context"
	"fmt"

	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/ports/primary"
	"github.com/example/notehub/internal/ports/secondary"
)

// DraftServiceImpl implements the DraftService interface.
type DraftServiceImpl struct {
	repo secondary.DraftRepository
}

// NewDraftService creates a new DraftService with injected dependencies.
func NewDraftService(repo secondary.DraftRepository) *DraftServiceImpl {
	return &DraftServiceImpl{repo: repo}
}

var _ primary.DraftService = (*DraftServiceImpl)(nil)

// GetDraft returns the stored draft, or empty defaults when there is none.
func (s *DraftServiceImpl) GetDraft(ctx context.Context) (note.Values, error) {
	rec, err := s.repo.Get(ctx)
	if err != nil {
		return note.Values{}, fmt.Errorf("failed to load draft: %w", err)
	}
	if rec == nil {
		return note.EmptyValues(), nil
	}

	values := note.Values{Title: rec.Title, Content: rec.Content, Tag: note.Tag(rec.Tag)}
	if values.Tag == "" {
		values.Tag = note.TagTodo
	}
	return values, nil
}

// SetDraft replaces the stored draft.
func (s *DraftServiceImpl) SetDraft(ctx context.Context, values note.Values) error {
	err := s.repo.Save(ctx, &secondary.DraftRecord{
		Title:   values.Title,
		Content: values.Content,
		Tag:     string(values.Tag),
	})
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// ClearDraft resets the draft to empty defaults.
func (s *DraftServiceImpl) ClearDraft(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
