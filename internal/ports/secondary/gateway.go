package secondary

import (
	"context"
	"time"
)

// NoteGateway defines the secondary port for the remote note service.
type NoteGateway interface {
	// ListNotes returns one page of notes matching params.
	ListNotes(ctx context.Context, params ListParams) (*NoteListRecord, error)

	// GetNote retrieves a note by its ID.
	GetNote(ctx context.Context, id string) (*NoteRecord, error)

	// CreateNote creates a note. The service assigns ID and timestamps.
	CreateNote(ctx context.Context, fields NoteFields) (*NoteRecord, error)

	// UpdateNote changes only the non-nil fields of patch.
	UpdateNote(ctx context.Context, id string, patch NotePatch) (*NoteRecord, error)

	// DeleteNote deletes a note and returns the deleted record.
	DeleteNote(ctx context.Context, id string) (*NoteRecord, error)
}

// NoteRecord represents a note as returned by the remote service.
type NoteRecord struct {
	ID        string
	Title     string
	Content   string
	Tag       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteListRecord is one page of a list response.
type NoteListRecord struct {
	Notes      []*NoteRecord
	TotalPages int
}

// ListParams contains the list query. Tag is empty for no filter.
type ListParams struct {
	Search  string
	Page    int
	PerPage int
	Tag     string
}

// NoteFields contains every editable field.
type NoteFields struct {
	Title   string
	Content string
	Tag     string
}

// NotePatch contains the fields to change; nil fields are omitted.
type NotePatch struct {
	Title   *string
	Content *string
	Tag     *string
}
