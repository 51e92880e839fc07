package modal

import (
	"errors"
	"testing"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/note"
)

func TestTransitions(t *testing.T) {
	target := note.Note{ID: "n1", Title: "Groceries", Tag: note.TagShopping}

	w := Closed()
	if w.IsOpen() {
		t.Fatal("initial workflow must be closed")
	}

	w = OpenCreate(w)
	if w.Mode != ModeCreate || w.Target != nil {
		t.Errorf("OpenCreate() = %+v", w)
	}

	w = OpenEdit(w, target)
	if w.Mode != ModeEdit || w.Target == nil || w.Target.ID != "n1" {
		t.Errorf("OpenEdit() = %+v", w)
	}

	w = Close(w)
	if w.Mode != ModeClosed || w.Target != nil {
		t.Errorf("Close() = %+v", w)
	}
}

func TestPreviewIsIndependent(t *testing.T) {
	w := OpenCreate(Closed())
	w = OpenPreview(w, "n7")

	if w.Preview == nil || w.Preview.NoteID != "n7" {
		t.Fatalf("OpenPreview() = %+v", w)
	}
	if w.Mode != ModeCreate {
		t.Error("preview must not change modal mode")
	}

	w = ClosePreview(w)
	if w.Preview != nil || w.Mode != ModeCreate {
		t.Errorf("ClosePreview() = %+v", w)
	}
}

func TestInitialValues(t *testing.T) {
	draft := note.Values{Title: "draft title", Content: "draft body", Tag: note.TagWork}
	target := note.Note{ID: "n1", Title: "Stored", Content: "stored body", Tag: note.TagMeeting}

	tests := []struct {
		name string
		w    Workflow
		want note.Values
	}{
		{name: "create uses draft", w: OpenCreate(Closed()), want: draft},
		{name: "edit ignores draft", w: OpenEdit(Closed(), target), want: target.Values()},
		{name: "closed uses defaults", w: Closed(), want: note.EmptyValues()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InitialValues(tt.w, draft); got != tt.want {
				t.Errorf("InitialValues() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if got := InitialValues(OpenCreate(Closed()), note.Values{}); got.Tag != note.TagTodo {
		t.Errorf("empty draft tag = %q, want Todo", got.Tag)
	}
}

func TestCanSubmit(t *testing.T) {
	valid := note.Values{Title: "Hello", Tag: note.TagTodo}

	tests := []struct {
		name        string
		ctx         CanSubmitContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "create with changes",
			ctx:         CanSubmitContext{Mode: ModeCreate, Initial: note.EmptyValues(), Current: valid},
			wantAllowed: true,
		},
		{
			name:        "pristine create form is blocked even when valid",
			ctx:         CanSubmitContext{Mode: ModeCreate, Initial: valid, Current: valid},
			wantAllowed: false,
			wantReason:  "form has no changes",
		},
		{
			name:        "pristine edit form is allowed",
			ctx:         CanSubmitContext{Mode: ModeEdit, Initial: valid, Current: valid},
			wantAllowed: true,
		},
		{
			name:        "closed modal",
			ctx:         CanSubmitContext{Mode: ModeClosed, Current: valid},
			wantAllowed: false,
			wantReason:  "no form is open",
		},
		{
			name:        "invalid values",
			ctx:         CanSubmitContext{Mode: ModeEdit, Current: note.Values{Title: "Hi", Tag: note.TagTodo}},
			wantAllowed: false,
			wantReason:  "validation failed: Title must be at least 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanSubmit(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestPlanDraftEdit(t *testing.T) {
	values := note.Values{Title: "abc", Tag: note.TagTodo}

	effs := PlanDraftEdit(OpenCreate(Closed()), values)
	save, ok := effs[0].(effects.SaveDraftEffect)
	if !ok || save.Values != values {
		t.Errorf("create: got %+v, want SaveDraftEffect", effs)
	}

	effs = PlanDraftEdit(OpenEdit(Closed(), note.Note{ID: "n1"}), values)
	if effects.Contains(effs, "save_draft") {
		t.Error("edit mode must never write the draft")
	}
}

func TestPlanSubmitSuccess(t *testing.T) {
	create := PlanSubmitSuccess(ModeCreate)
	for _, want := range []string{"invalidate", "clear_draft", "close_modal", "notify"} {
		if !effects.Contains(create, want) {
			t.Errorf("create success missing %s effect", want)
		}
	}
	if n := create[len(create)-1].(effects.NotifyEffect); n.Message != MsgCreated || n.Level != effects.LevelSuccess {
		t.Errorf("notify = %+v", n)
	}
	if inv := create[0].(effects.InvalidateEffect); len(inv.Prefix) != 1 || inv.Prefix[0] != "notes" {
		t.Errorf("invalidate prefix = %v", inv.Prefix)
	}

	edit := PlanSubmitSuccess(ModeEdit)
	if effects.Contains(edit, "clear_draft") {
		t.Error("edit success must not clear the draft")
	}
	if n := edit[len(edit)-1].(effects.NotifyEffect); n.Message != MsgEdited {
		t.Errorf("notify = %+v", n)
	}
}

func TestPlanSubmitFailure(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{mode: ModeCreate, want: MsgCreateError},
		{mode: ModeEdit, want: MsgEditError},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			effs := PlanSubmitFailure(tt.mode, errors.New("boom"))
			n, ok := effs[0].(effects.NotifyEffect)
			if !ok || n.Message != tt.want || n.Level != effects.LevelError {
				t.Errorf("first effect = %+v", effs[0])
			}
			for _, forbidden := range []string{"close_modal", "clear_draft", "invalidate"} {
				if effects.Contains(effs, forbidden) {
					t.Errorf("failure plan must not contain %s", forbidden)
				}
			}
		})
	}
}

func TestApply(t *testing.T) {
	w := OpenCreate(Closed())
	if got := Apply(w, PlanSubmitFailure(ModeCreate, nil)); got.Mode != ModeCreate {
		t.Error("failure must keep the modal open")
	}
	if got := Apply(w, PlanSubmitSuccess(ModeCreate)); got.Mode != ModeClosed {
		t.Error("success must close the modal")
	}
}
