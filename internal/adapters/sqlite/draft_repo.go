// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/notehub/internal/ports/secondary"
)

// DraftKey is the kv_store key holding the create-form draft.
const DraftKey = "note-draft"

// DraftRepository implements secondary.DraftRepository with SQLite.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new SQLite draft repository.
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

var _ secondary.DraftRepository = (*DraftRepository)(nil)

// Get returns the stored draft, or nil when none has been saved.
func (r *DraftRepository) Get(ctx context.Context) (*secondary.DraftRecord, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", DraftKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft secondary.DraftRecord
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

// Save replaces the stored draft.
func (r *DraftRepository) Save(ctx context.Context, draft *secondary.DraftRecord) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		DraftKey, string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Clear removes the stored draft.
func (r *DraftRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", DraftKey); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
