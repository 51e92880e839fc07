// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// DraftRepository defines the secondary port for the create-form draft.
// There is exactly one draft per installation.
type DraftRepository interface {
	// Get returns the stored draft, or nil when none has been saved.
	Get(ctx context.Context) (*DraftRecord, error)

	// Save replaces the stored draft.
	Save(ctx context.Context, draft *DraftRecord) error

	// Clear removes the stored draft.
	Clear(ctx context.Context) error
}

// DraftRecord represents the draft as stored in persistence.
type DraftRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tag     string `json:"tag"`
}
