package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/notehub/internal/core/modal"
	"github.com/example/notehub/internal/core/note"
)

const (
	fieldTitle = iota
	fieldContent
	fieldTag
	fieldCount
)

// editor is the create/edit form.
type editor struct {
	workflow modal.Workflow
	initial  note.Values

	title   textinput.Model
	content textarea.Model
	tag     note.Tag
	focus   int

	// touched is set by the first submit attempt; field errors show from then on.
	touched    bool
	errors     map[string]string
	submitting bool
}

func newEditor(w modal.Workflow, initial note.Values) editor {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 50
	title.Prompt = ""
	title.Width = 50
	title.SetValue(initial.Title)

	content := textarea.New()
	content.Placeholder = "Content"
	content.CharLimit = 500
	content.ShowLineNumbers = false
	content.SetWidth(50)
	content.SetHeight(6)
	content.SetValue(initial.Content)

	tag := initial.Tag
	if !tag.Valid() {
		tag = note.TagTodo
	}

	// A restored draft still counts as changed: create forms are compared
	// against empty defaults, not against what they were seeded with.
	baseline := initial
	if w.Mode == modal.ModeCreate {
		baseline = note.EmptyValues()
	}

	e := editor{
		workflow: w,
		initial:  baseline,
		title:    title,
		content:  content,
		tag:      tag,
	}
	e.setFocus(fieldTitle)
	return e
}

func (e editor) values() note.Values {
	return note.Values{
		Title:   e.title.Value(),
		Content: e.content.Value(),
		Tag:     e.tag,
	}
}

func (e *editor) setFocus(field int) {
	e.focus = (field + fieldCount) % fieldCount
	e.title.Blur()
	e.content.Blur()
	switch e.focus {
	case fieldTitle:
		e.title.Focus()
	case fieldContent:
		e.content.Focus()
	}
}

func (e *editor) cycleTag(delta int) {
	idx := 0
	for i, t := range note.Tags {
		if t == e.tag {
			idx = i
		}
	}
	n := len(note.Tags)
	e.tag = note.Tags[((idx+delta)%n+n)%n]
}

// revalidate refreshes field errors once the form has been touched.
func (e *editor) revalidate() {
	if !e.touched {
		return
	}
	e.errors = fieldErrors(note.Validate(e.values()))
}

func fieldErrors(err error) map[string]string {
	var verr *note.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func (e editor) canSubmit() modal.GuardResult {
	return modal.CanSubmit(modal.CanSubmitContext{
		Mode:    e.workflow.Mode,
		Initial: e.initial,
		Current: e.values(),
	})
}

// update handles a key for the focused field. changed reports whether the
// form values differ afterwards.
func (e editor) update(msg tea.KeyMsg) (editor, tea.Cmd, bool) {
	before := e.values()
	var cmd tea.Cmd

	switch msg.String() {
	case "tab", "down":
		if e.focus != fieldContent || msg.String() == "tab" {
			e.setFocus(e.focus + 1)
			return e, nil, false
		}
	case "shift+tab", "up":
		if e.focus != fieldContent || msg.String() == "shift+tab" {
			e.setFocus(e.focus - 1)
			return e, nil, false
		}
	}

	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
	case fieldContent:
		e.content, cmd = e.content.Update(msg)
	case fieldTag:
		switch msg.String() {
		case "left", "h":
			e.cycleTag(-1)
		case "right", "l", " ":
			e.cycleTag(1)
		}
	}

	changed := e.values() != before
	if changed {
		e.revalidate()
	}
	return e, cmd, changed
}

func (e editor) view() string {
	var b strings.Builder

	heading := "Create note"
	if e.workflow.Mode == modal.ModeEdit {
		heading = "Edit note"
	}
	b.WriteString(labelStyle.Render(heading))
	b.WriteString("\n\n")

	b.WriteString(e.fieldLabel("Title", fieldTitle))
	b.WriteString(e.title.View())
	b.WriteString("\n")
	b.WriteString(e.fieldError("title"))

	b.WriteString(e.fieldLabel("Content", fieldContent))
	b.WriteString(e.content.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/500", len([]rune(e.content.Value())))))
	b.WriteString("\n")
	b.WriteString(e.fieldError("content"))

	b.WriteString(e.fieldLabel("Tag", fieldTag))
	tags := make([]string, 0, len(note.Tags))
	for _, t := range note.Tags {
		if t == e.tag {
			tags = append(tags, activeTabStyle.Render(string(t)))
		} else {
			tags = append(tags, tabStyle.Render(string(t)))
		}
	}
	b.WriteString(strings.Join(tags, "  "))
	b.WriteString("\n")
	b.WriteString(e.fieldError("tag"))

	b.WriteString("\n")
	switch {
	case e.submitting:
		b.WriteString(dimStyle.Render("Saving..."))
	case e.canSubmit().Allowed:
		b.WriteString(footerKeyStyle.Render("ctrl+s") + dimStyle.Render(" save  ") +
			footerKeyStyle.Render("esc") + dimStyle.Render(" cancel"))
	default:
		b.WriteString(dimStyle.Render("ctrl+s save (disabled)  ") +
			footerKeyStyle.Render("esc") + dimStyle.Render(" cancel"))
	}

	return modalStyle.Render(b.String())
}

func (e editor) fieldLabel(name string, field int) string {
	marker := "  "
	if e.focus == field {
		marker = "▸ "
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, marker, labelStyle.Render(name)) + "\n"
}

func (e editor) fieldError(field string) string {
	if msg, ok := e.errors[field]; ok {
		return fieldErrorStyle.Render(msg) + "\n"
	}
	return ""
}
