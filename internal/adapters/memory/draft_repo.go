// Package memory contains in-process implementations of repository
// interfaces, used by tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"github.com/example/notehub/internal/ports/secondary"
)

// DraftRepository keeps the draft in memory.
type DraftRepository struct {
	mu    sync.Mutex
	draft *secondary.DraftRecord
}

// NewDraftRepository creates an empty in-memory draft repository.
func NewDraftRepository() *DraftRepository {
	return &DraftRepository{}
}

var _ secondary.DraftRepository = (*DraftRepository)(nil)

func (r *DraftRepository) Get(ctx context.Context) (*secondary.DraftRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.draft == nil {
		return nil, nil
	}
	d := *r.draft
	return &d, nil
}

func (r *DraftRepository) Save(ctx context.Context, draft *secondary.DraftRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *draft
	r.draft = &d
	return nil
}

func (r *DraftRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draft = nil
	return nil
}
