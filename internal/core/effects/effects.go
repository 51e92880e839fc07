// Package effects defines effect types as data structures representing I/O operations.
// Planners in the core return effects; the app layer interprets them.
package effects

import "github.com/example/notehub/internal/core/note"

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// InvalidateEffect marks every cached query under Prefix as stale.
type InvalidateEffect struct {
	Prefix []string
}

func (e InvalidateEffect) EffectType() string { return "invalidate" }

// RemoveEffect drops cached queries under Prefix entirely.
type RemoveEffect struct {
	Prefix []string
}

func (e RemoveEffect) EffectType() string { return "remove" }

// SaveDraftEffect replaces the stored create-form draft.
type SaveDraftEffect struct {
	Values note.Values
}

func (e SaveDraftEffect) EffectType() string { return "save_draft" }

// ClearDraftEffect resets the stored draft to empty defaults.
type ClearDraftEffect struct{}

func (e ClearDraftEffect) EffectType() string { return "clear_draft" }

// CloseModalEffect closes the create/edit modal.
type CloseModalEffect struct{}

func (e CloseModalEffect) EffectType() string { return "close_modal" }

// NotifyEffect shows a transient notification to the user.
type NotifyEffect struct {
	Level   string
	Message string
}

func (e NotifyEffect) EffectType() string { return "notify" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }

// Contains reports whether effs (including nested composites) holds an effect of the given type.
func Contains(effs []Effect, effectType string) bool {
	for _, eff := range effs {
		if eff.EffectType() == effectType {
			return true
		}
		if composite, ok := eff.(CompositeEffect); ok && Contains(composite.Effects, effectType) {
			return true
		}
	}
	return false
}
