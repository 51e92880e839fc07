// Package tui is the interactive notes browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/notehub/internal/app"
	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/modal"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/ports/primary"
	"github.com/example/notehub/internal/querycache"
)

const toastTTL = 3 * time.Second

// Session is the list state the browser drives.
type Session interface {
	TypeSearch(text string)
	FlushSearch() bool
	NextPage(ctx context.Context) querycache.State[*primary.NoteList]
	PrevPage(ctx context.Context) querycache.State[*primary.NoteList]
	Navigate(ctx context.Context, tag note.Tag) querycache.State[*primary.NoteList]
	Refresh(ctx context.Context) querycache.State[*primary.NoteList]
	Snapshot() app.Snapshot
}

// filterTabs is the tag navigation order.
var filterTabs = append([]note.Tag{note.TagAll}, note.Tags...)

// Message types
type snapshotMsg app.Snapshot

type toastMsg struct {
	level   string
	message string
}

type toastExpiredMsg struct{ id int }

type formOpenedMsg struct {
	workflow modal.Workflow
	values   note.Values
	err      error
}

type submitDoneMsg struct {
	resp *primary.SubmitResponse
	err  error
}

type previewMsg struct {
	note *note.Note
	err  error
}

type deletedMsg struct {
	note *note.Note
	err  error
}

type errMsg struct{ err error }

type toast struct {
	id      int
	level   string
	message string
}

// Model is the browser state.
type Model struct {
	ctx     context.Context
	session Session
	notes   primary.NoteService
	form    primary.FormService

	snap      app.Snapshot
	search    textinput.Model
	searching bool
	cursor    int

	workflow modal.Workflow
	editor   editor
	preview  *note.Note

	toasts    []toast
	nextToast int

	width    int
	quitting bool
}

// NewModel creates the browser model.
func NewModel(ctx context.Context, session Session, notes primary.NoteService, form primary.FormService) Model {
	search := textinput.New()
	search.Placeholder = "Search notes"
	search.Prompt = "/ "
	search.Width = 40

	return Model{
		ctx:      ctx,
		session:  session,
		notes:    notes,
		form:     form,
		snap:     session.Snapshot(),
		search:   search,
		workflow: modal.Closed(),
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.sessionCmd(m.session.Refresh)
}

func (m Model) sessionCmd(fn func(ctx context.Context) querycache.State[*primary.NoteList]) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return snapshotMsg(m.session.Snapshot())
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snap = app.Snapshot(msg)
		m.clampCursor()
		return m, nil

	case toastMsg:
		return m.addToast(msg.level, msg.message)

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.id == msg.id {
				m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
				break
			}
		}
		return m, nil

	case formOpenedMsg:
		if msg.err != nil {
			return m.addToast(effects.LevelError, msg.err.Error())
		}
		m.workflow = msg.workflow
		m.editor = newEditor(msg.workflow, msg.values)
		return m, nil

	case submitDoneMsg:
		return m.handleSubmit(msg)

	case previewMsg:
		if msg.err != nil {
			m.workflow = modal.ClosePreview(m.workflow)
			return m.addToast(effects.LevelError, msg.err.Error())
		}
		m.preview = msg.note
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			return m.addToast(effects.LevelError, msg.err.Error())
		}
		next, cmd := m.addToast(effects.LevelSuccess, fmt.Sprintf("Deleted %q", msg.note.Title))
		return next, tea.Batch(cmd, m.sessionCmd(m.session.Refresh))

	case errMsg:
		return m.addToast(effects.LevelError, msg.err.Error())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case m.workflow.IsOpen():
			return m.updateForm(msg)
		case m.workflow.Preview != nil:
			return m.updatePreview(msg)
		case m.searching:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visibleNotes())-1 {
			m.cursor++
		}
	case "right", "l":
		m.cursor = 0
		return m, m.sessionCmd(m.session.NextPage)
	case "left", "h":
		m.cursor = 0
		return m, m.sessionCmd(m.session.PrevPage)
	case "tab":
		return m.navigate(1)
	case "shift+tab":
		return m.navigate(-1)
	case "r":
		return m, m.sessionCmd(m.session.Refresh)
	case "n":
		return m, m.openForm(modal.OpenCreate(m.workflow))
	case "e":
		if n := m.selected(); n != nil {
			return m, m.openForm(modal.OpenEdit(m.workflow, *n))
		}
	case "enter":
		if n := m.selected(); n != nil {
			m.workflow = modal.OpenPreview(m.workflow, n.ID)
			m.preview = nil
			return m, m.loadPreview(n.ID)
		}
	case "d":
		if n := m.selected(); n != nil {
			return m, m.deleteNote(n.ID)
		}
	}
	return m, nil
}

func (m Model) navigate(delta int) (tea.Model, tea.Cmd) {
	idx := 0
	for i, t := range filterTabs {
		if t == m.snap.View.Tag {
			idx = i
		}
	}
	n := len(filterTabs)
	tag := filterTabs[((idx+delta)%n+n)%n]

	m.cursor = 0
	m.search.SetValue("")
	return m, m.sessionCmd(func(ctx context.Context) querycache.State[*primary.NoteList] {
		return m.session.Navigate(ctx, tag)
	})
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.cursor = 0
		session := m.session
		return m, func() tea.Msg {
			session.FlushSearch()
			return snapshotMsg(session.Snapshot())
		}
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor = 0
		m.session.TypeSearch(m.search.Value())
	}
	return m, cmd
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.workflow = modal.ClosePreview(m.workflow)
		m.preview = nil
	case "e":
		if m.preview != nil {
			target := *m.preview
			m.workflow = modal.ClosePreview(m.workflow)
			m.preview = nil
			return m, m.openForm(modal.OpenEdit(m.workflow, target))
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.workflow = modal.Close(m.workflow)
		m.editor = editor{}
		return m, nil
	case "ctrl+s":
		if m.editor.submitting {
			return m, nil
		}
		m.editor.touched = true
		m.editor.revalidate()
		if len(m.editor.errors) > 0 {
			return m, nil
		}
		if guard := m.editor.canSubmit(); !guard.Allowed {
			return m.addToast(effects.LevelInfo, guard.Reason)
		}
		m.editor.submitting = true
		return m, m.submit(m.editor)
	}

	var cmd tea.Cmd
	var changed bool
	m.editor, cmd, changed = m.editor.update(msg)
	if changed {
		cmd = tea.Batch(cmd, m.saveDraft(m.editor.workflow, m.editor.values()))
	}
	return m, cmd
}

func (m Model) handleSubmit(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.editor.submitting = false
	if msg.err != nil {
		if errs := fieldErrors(msg.err); errs != nil {
			m.editor.errors = errs
			return m, nil
		}
		// Mutation failures are reported by the form service's notifier.
		if msg.resp == nil {
			return m.addToast(effects.LevelError, msg.err.Error())
		}
		return m, nil
	}

	m.workflow = msg.resp.Workflow
	if !m.workflow.IsOpen() {
		m.editor = editor{}
	}
	return m, m.sessionCmd(m.session.Refresh)
}

func (m Model) openForm(w modal.Workflow) tea.Cmd {
	form := m.form
	ctx := m.ctx
	return func() tea.Msg {
		values, err := form.InitialValues(ctx, w)
		return formOpenedMsg{workflow: w, values: values, err: err}
	}
}

func (m Model) saveDraft(w modal.Workflow, values note.Values) tea.Cmd {
	form := m.form
	ctx := m.ctx
	return func() tea.Msg {
		if err := form.Change(ctx, w, values); err != nil {
			return errMsg{err: fmt.Errorf("failed to save draft: %w", err)}
		}
		return nil
	}
}

func (m Model) submit(e editor) tea.Cmd {
	form := m.form
	ctx := m.ctx
	req := primary.SubmitRequest{
		Workflow: e.workflow,
		Initial:  e.initial,
		Values:   e.values(),
	}
	return func() tea.Msg {
		resp, err := form.Submit(ctx, req)
		return submitDoneMsg{resp: resp, err: err}
	}
}

func (m Model) loadPreview(id string) tea.Cmd {
	notes := m.notes
	ctx := m.ctx
	return func() tea.Msg {
		n, err := notes.GetNote(ctx, id)
		return previewMsg{note: n, err: err}
	}
}

func (m Model) deleteNote(id string) tea.Cmd {
	notes := m.notes
	ctx := m.ctx
	return func() tea.Msg {
		n, err := notes.DeleteNote(ctx, id)
		return deletedMsg{note: n, err: err}
	}
}

func (m Model) addToast(level, message string) (tea.Model, tea.Cmd) {
	m.nextToast++
	id := m.nextToast
	m.toasts = append(m.toasts, toast{id: id, level: level, message: message})
	return m, tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m Model) visibleNotes() []note.Note {
	if m.snap.List.Data == nil {
		return nil
	}
	return m.snap.List.Data.Notes
}

func (m Model) selected() *note.Note {
	notes := m.visibleNotes()
	if m.cursor < 0 || m.cursor >= len(notes) {
		return nil
	}
	n := notes[m.cursor]
	return &n
}

func (m *Model) clampCursor() {
	if n := len(m.visibleNotes()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the browser
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("NoteHub"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderSearch())
	b.WriteString("\n\n")

	switch {
	case m.workflow.IsOpen():
		b.WriteString(m.editor.view())
	case m.workflow.Preview != nil:
		b.WriteString(m.renderPreview())
	default:
		b.WriteString(m.renderList())
	}
	b.WriteString("\n")
	b.WriteString(m.renderToasts())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(filterTabs))
	for _, t := range filterTabs {
		label := string(t)
		if t == note.TagAll {
			label = "All notes"
		}
		if t == m.snap.View.Tag {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, "  ")
}

func (m Model) renderSearch() string {
	if m.searching || m.search.Value() != "" {
		return m.search.View()
	}
	return dimStyle.Render("/ search")
}

func (m Model) renderList() string {
	list := m.snap.List
	var b strings.Builder

	switch {
	case list.Status == querycache.StatusError && !list.HasData:
		b.WriteString(fieldErrorStyle.Render("Could not load notes: " + errorText(list.Err)))
		b.WriteString("\n")
		return b.String()
	case !list.HasData:
		b.WriteString(dimStyle.Render("Loading..."))
		b.WriteString("\n")
		return b.String()
	}

	notes := m.visibleNotes()
	if len(notes) == 0 {
		b.WriteString(dimStyle.Render("No notes found"))
		b.WriteString("\n")
	}
	for i, n := range notes {
		line := fmt.Sprintf("%-50s %s", truncate(n.Title, 50), tagBadge(n.Tag))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.snap.ShowPagination {
		b.WriteString("\n")
		b.WriteString(renderPages(m.snap.View.Page, m.snap.TotalPages))
		b.WriteString("\n")
	}
	if list.IsPlaceholder || list.Status == querycache.StatusPending {
		b.WriteString(dimStyle.Render("Refreshing..."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderPages(page, total int) string {
	parts := make([]string, 0, total+2)
	parts = append(parts, dimStyle.Render("←"))
	for p := 1; p <= total; p++ {
		label := fmt.Sprintf("%d", p)
		if p == page {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	parts = append(parts, dimStyle.Render("→"))
	return strings.Join(parts, " ")
}

func (m Model) renderPreview() string {
	if m.preview == nil {
		return modalStyle.Render(dimStyle.Render("Loading, please wait..."))
	}
	n := m.preview
	var b strings.Builder
	b.WriteString(labelStyle.Render(n.Title))
	b.WriteString("\n\n")
	if n.Content != "" {
		b.WriteString(n.Content)
		b.WriteString("\n\n")
	}
	b.WriteString(tagBadge(n.Tag))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(note.FormatTimestamp(n.CreatedAt)))
	return modalStyle.Render(b.String())
}

func (m Model) renderToasts() string {
	var b strings.Builder
	for _, t := range m.toasts {
		style, ok := toastStyles[t.level]
		if !ok {
			style = toastStyles[effects.LevelInfo]
		}
		b.WriteString(style.Render(toastMarker(t.level) + " " + t.message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	var keys [][2]string
	switch {
	case m.workflow.IsOpen():
		keys = [][2]string{{"tab", "next field"}, {"←/→", "tag"}, {"ctrl+s", "save"}, {"esc", "cancel"}}
	case m.workflow.Preview != nil:
		keys = [][2]string{{"e", "edit"}, {"esc", "close"}}
	case m.searching:
		keys = [][2]string{{"enter", "apply now"}, {"esc", "done"}}
	default:
		keys = [][2]string{{"/", "search"}, {"tab", "filter"}}
		if m.snap.ShowPagination {
			keys = append(keys, [2]string{"←/→", "page"})
		}
		keys = append(keys, [][2]string{
			{"enter", "view"}, {"n", "new"}, {"e", "edit"}, {"d", "delete"}, {"q", "quit"},
		}...)
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k[0])+" "+k[1])
	}
	return footerStyle.Render(strings.Join(parts, "  "))
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
