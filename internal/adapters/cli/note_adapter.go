// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/modal"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/ports/primary"
)

// FieldChanges holds the form fields given on the command line.
// Nil fields were not given.
type FieldChanges struct {
	Title   *string
	Content *string
	Tag     *note.Tag
}

// Empty reports whether no field was given.
func (c FieldChanges) Empty() bool {
	return c.Title == nil && c.Content == nil && c.Tag == nil
}

// Apply overlays the given fields on v.
func (c FieldChanges) Apply(v note.Values) note.Values {
	if c.Title != nil {
		v.Title = *c.Title
	}
	if c.Content != nil {
		v.Content = *c.Content
	}
	if c.Tag != nil {
		v.Tag = *c.Tag
	}
	return v
}

// NoteAdapter is a thin adapter that translates CLI operations to note service calls.
type NoteAdapter struct {
	notes  primary.NoteService
	drafts primary.DraftService
	form   primary.FormService
	out    io.Writer
}

// NewNoteAdapter creates a new NoteAdapter.
func NewNoteAdapter(notes primary.NoteService, drafts primary.DraftService, form primary.FormService, out io.Writer) *NoteAdapter {
	return &NoteAdapter{
		notes:  notes,
		drafts: drafts,
		form:   form,
		out:    out,
	}
}

// List prints one page of notes.
func (a *NoteAdapter) List(ctx context.Context, view listview.State) error {
	list, err := a.notes.ListNotes(ctx, view)
	if err != nil {
		return err
	}

	if len(list.Notes) == 0 {
		fmt.Fprintln(a.out, "No notes found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-26s %-10s %-18s %s\n", "ID", "TAG", "UPDATED", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────")
	for _, n := range list.Notes {
		fmt.Fprintf(a.out, "%-26s %-10s %-18s %s\n", n.ID, tagLabel(n.Tag), note.FormatTimestamp(n.UpdatedAt), n.Title)
	}
	if listview.ShowPagination(list.TotalPages) {
		fmt.Fprintf(a.out, "\nPage %d of %d\n", view.Page, list.TotalPages)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show prints a single note.
func (a *NoteAdapter) Show(ctx context.Context, noteID string) (*note.Note, error) {
	n, err := a.notes.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\n%s\n", color.New(color.Bold).Sprint(n.Title))
	fmt.Fprintf(a.out, "ID:      %s\n", n.ID)
	fmt.Fprintf(a.out, "Tag:     %s\n", tagLabel(n.Tag))
	fmt.Fprintf(a.out, "Created: %s\n", note.FormatTimestamp(n.CreatedAt))
	if !n.UpdatedAt.Equal(n.CreatedAt) {
		fmt.Fprintf(a.out, "Updated: %s\n", note.FormatTimestamp(n.UpdatedAt))
	}
	if n.Content != "" {
		fmt.Fprintf(a.out, "\n%s\n", n.Content)
	}
	fmt.Fprintln(a.out)

	return n, nil
}

// Create submits the create form. The form starts from the saved draft;
// given fields are written to the draft first, as typing would.
func (a *NoteAdapter) Create(ctx context.Context, changes FieldChanges) (*note.Note, error) {
	w := modal.OpenCreate(modal.Closed())

	draft, err := a.form.InitialValues(ctx, w)
	if err != nil {
		return nil, err
	}
	values := changes.Apply(draft)
	if !changes.Empty() {
		if err := a.form.Change(ctx, w, values); err != nil {
			return nil, err
		}
	}

	resp, err := a.form.Submit(ctx, primary.SubmitRequest{
		Workflow: w,
		Initial:  note.EmptyValues(),
		Values:   values,
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "  %s  %s\n", resp.Note.ID, resp.Note.Title)
	return resp.Note, nil
}

// Edit submits the edit form for noteID with the given fields changed.
func (a *NoteAdapter) Edit(ctx context.Context, noteID string, changes FieldChanges) (*note.Note, error) {
	if changes.Empty() {
		return nil, fmt.Errorf("nothing to change: give at least one of --title, --content, --tag")
	}

	target, err := a.notes.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	w := modal.OpenEdit(modal.Closed(), *target)

	initial, err := a.form.InitialValues(ctx, w)
	if err != nil {
		return nil, err
	}

	resp, err := a.form.Submit(ctx, primary.SubmitRequest{
		Workflow: w,
		Initial:  initial,
		Values:   changes.Apply(initial),
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "  %s  %s\n", resp.Note.ID, resp.Note.Title)
	return resp.Note, nil
}

// Delete deletes a note.
func (a *NoteAdapter) Delete(ctx context.Context, noteID string) error {
	deleted, err := a.notes.DeleteNote(ctx, noteID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Deleted note %s: %s\n", deleted.ID, deleted.Title)
	return nil
}

// ShowDraft prints the saved create-form draft.
func (a *NoteAdapter) ShowDraft(ctx context.Context) error {
	d, err := a.drafts.GetDraft(ctx)
	if err != nil {
		return err
	}

	if d == note.EmptyValues() {
		fmt.Fprintln(a.out, "No draft saved")
		return nil
	}

	fmt.Fprintf(a.out, "Title:   %s\n", d.Title)
	fmt.Fprintf(a.out, "Tag:     %s\n", tagLabel(d.Tag))
	if d.Content != "" {
		fmt.Fprintf(a.out, "Content: %s\n", d.Content)
	}
	return nil
}

// SetDraft overlays the given fields on the saved draft.
func (a *NoteAdapter) SetDraft(ctx context.Context, changes FieldChanges) error {
	w := modal.OpenCreate(modal.Closed())

	current, err := a.form.InitialValues(ctx, w)
	if err != nil {
		return err
	}
	if err := a.form.Change(ctx, w, changes.Apply(current)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "✓ Draft saved")
	return nil
}

// ClearDraft resets the draft.
func (a *NoteAdapter) ClearDraft(ctx context.Context) error {
	if err := a.drafts.ClearDraft(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✓ Draft cleared")
	return nil
}

var tagColors = map[note.Tag]color.Attribute{
	note.TagTodo:     color.FgYellow,
	note.TagWork:     color.FgBlue,
	note.TagPersonal: color.FgMagenta,
	note.TagMeeting:  color.FgCyan,
	note.TagShopping: color.FgGreen,
}

func tagLabel(tag note.Tag) string {
	label := fmt.Sprintf("%-8s", string(tag))
	if attr, ok := tagColors[tag]; ok {
		return color.New(attr).Sprint(label)
	}
	return label
}
