// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces the CLI and the interactive browser call into.
package primary

import (
	"context"

	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/modal"
	"github.com/example/notehub/internal/core/note"
)

// NoteService defines the primary port for note operations.
type NoteService interface {
	// ListNotes returns the page of notes for a view state.
	ListNotes(ctx context.Context, view listview.State) (*NoteList, error)

	// GetNote retrieves a note by ID.
	GetNote(ctx context.Context, noteID string) (*note.Note, error)

	// CreateNote creates a note.
	CreateNote(ctx context.Context, values note.Values) (*note.Note, error)

	// UpdateNote applies a partial update.
	UpdateNote(ctx context.Context, noteID string, patch note.Patch) (*note.Note, error)

	// DeleteNote deletes a note and returns the deleted record.
	DeleteNote(ctx context.Context, noteID string) (*note.Note, error)
}

// NoteList is one page of notes.
type NoteList struct {
	Notes      []note.Note
	TotalPages int
}

// DraftService defines the primary port for the create-form draft.
type DraftService interface {
	// GetDraft returns the current draft, or empty defaults.
	GetDraft(ctx context.Context) (note.Values, error)

	// SetDraft replaces the draft.
	SetDraft(ctx context.Context, values note.Values) error

	// ClearDraft resets the draft to empty defaults.
	ClearDraft(ctx context.Context) error
}

// FormService defines the primary port for the create/edit form workflow.
type FormService interface {
	// InitialValues returns the values a newly opened form starts with.
	InitialValues(ctx context.Context, w modal.Workflow) (note.Values, error)

	// Change records a field edit (persists the draft in create mode).
	Change(ctx context.Context, w modal.Workflow, values note.Values) error

	// Submit validates and sends the form, then runs the follow-up effects.
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error)
}

// SubmitRequest contains the form being submitted.
type SubmitRequest struct {
	Workflow modal.Workflow
	Initial  note.Values
	Values   note.Values
}

// SubmitResponse contains the outcome of a submission.
// Note is nil when the mutation failed; Workflow stays open in that case.
type SubmitResponse struct {
	Workflow modal.Workflow
	Note     *note.Note
}
