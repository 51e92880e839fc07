// Package modal contains the pure state machine for the create/edit
// modal, the preview overlay, and the submission planners that decide
// which effects follow a create or edit attempt.
package modal

import (
	"fmt"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/note"
)

// Mode is the modal state.
type Mode string

const (
	ModeClosed Mode = "closed"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Notification texts shown after a submission.
const (
	MsgCreated     = "Note created successfully!"
	MsgEdited      = "Note edited successfully!"
	MsgCreateError = "There was an error creating the note"
	MsgEditError   = "There was an error editing the note"
)

// Preview is the read-only overlay for a single note.
type Preview struct {
	NoteID string
}

// Workflow is the modal plus the independent preview overlay.
// Target is set only in edit mode.
type Workflow struct {
	Mode    Mode
	Target  *note.Note
	Preview *Preview
}

// Closed returns the initial workflow.
func Closed() Workflow {
	return Workflow{Mode: ModeClosed}
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// OpenCreate opens the create form. The preview overlay is left alone.
func OpenCreate(w Workflow) Workflow {
	w.Mode = ModeCreate
	w.Target = nil
	return w
}

// OpenEdit opens the edit form for target.
func OpenEdit(w Workflow, target note.Note) Workflow {
	w.Mode = ModeEdit
	w.Target = &target
	return w
}

// Close closes the create/edit modal.
func Close(w Workflow) Workflow {
	w.Mode = ModeClosed
	w.Target = nil
	return w
}

// OpenPreview shows the overlay for a single note.
func OpenPreview(w Workflow, noteID string) Workflow {
	w.Preview = &Preview{NoteID: noteID}
	return w
}

// ClosePreview dismisses the overlay without touching the modal.
func ClosePreview(w Workflow) Workflow {
	w.Preview = nil
	return w
}

// IsOpen reports whether the create or edit modal is shown.
func (w Workflow) IsOpen() bool {
	return w.Mode == ModeCreate || w.Mode == ModeEdit
}

// InitialValues seeds the form. Create starts from the draft, edit from the
// target note; the draft is never consulted in edit mode.
func InitialValues(w Workflow, draft note.Values) note.Values {
	switch w.Mode {
	case ModeCreate:
		if draft.Tag == "" {
			draft.Tag = note.TagTodo
		}
		return draft
	case ModeEdit:
		if w.Target != nil {
			return w.Target.Values()
		}
	}
	return note.EmptyValues()
}

// CanSubmitContext provides context for the submit guard.
type CanSubmitContext struct {
	Mode    Mode
	Initial note.Values
	Current note.Values
}

// CanSubmit evaluates whether the form may be submitted.
// Rules:
// - Modal must be open
// - Values must pass validation
// - Create forms must differ from their initial values
func CanSubmit(ctx CanSubmitContext) GuardResult {
	if ctx.Mode != ModeCreate && ctx.Mode != ModeEdit {
		return GuardResult{Allowed: false, Reason: "no form is open"}
	}

	if result := note.CanSave(ctx.Current); !result.Allowed {
		return GuardResult{Allowed: false, Reason: result.Reason}
	}

	if ctx.Mode == ModeCreate && ctx.Current == ctx.Initial {
		return GuardResult{Allowed: false, Reason: "form has no changes"}
	}

	return GuardResult{Allowed: true}
}

// PlanDraftEdit returns the effects of a user changing a form field.
// Only create mode writes the draft.
func PlanDraftEdit(w Workflow, values note.Values) []effects.Effect {
	if w.Mode != ModeCreate {
		return []effects.Effect{effects.NoEffect{}}
	}
	return []effects.Effect{effects.SaveDraftEffect{Values: values}}
}

// PlanSubmitSuccess returns the effects that follow a successful mutation.
func PlanSubmitSuccess(mode Mode) []effects.Effect {
	switch mode {
	case ModeCreate:
		return []effects.Effect{
			effects.InvalidateEffect{Prefix: []string{listview.KeyRoot}},
			effects.ClearDraftEffect{},
			effects.CloseModalEffect{},
			effects.NotifyEffect{Level: effects.LevelSuccess, Message: MsgCreated},
		}
	case ModeEdit:
		return []effects.Effect{
			effects.InvalidateEffect{Prefix: []string{listview.KeyRoot}},
			effects.CloseModalEffect{},
			effects.NotifyEffect{Level: effects.LevelSuccess, Message: MsgEdited},
		}
	default:
		return []effects.Effect{effects.NoEffect{}}
	}
}

// PlanSubmitFailure returns the effects that follow a failed mutation.
// The modal stays open and the draft is untouched.
func PlanSubmitFailure(mode Mode, err error) []effects.Effect {
	msg := MsgCreateError
	if mode == ModeEdit {
		msg = MsgEditError
	}
	effs := []effects.Effect{
		effects.NotifyEffect{Level: effects.LevelError, Message: msg},
	}
	if err != nil {
		effs = append(effs, effects.LogEffect{
			Level:   "warn",
			Message: "note submission failed",
			Fields:  map[string]any{"mode": string(mode), "error": err.Error()},
		})
	}
	return effs
}

// Apply folds executed effects back into the workflow.
func Apply(w Workflow, effs []effects.Effect) Workflow {
	if effects.Contains(effs, "close_modal") {
		return Close(w)
	}
	return w
}
