package app

import (
	"context"
	"fmt"

	"github.com/example/notehub/internal/core/modal"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/ports/primary"
)

// FormServiceImpl implements the FormService interface.
type FormServiceImpl struct {
	notes    primary.NoteService
	drafts   primary.DraftService
	executor EffectExecutor
}

// NewFormService creates a new FormService with injected dependencies.
func NewFormService(notes primary.NoteService, drafts primary.DraftService, executor EffectExecutor) *FormServiceImpl {
	return &FormServiceImpl{
		notes:    notes,
		drafts:   drafts,
		executor: executor,
	}
}

var _ primary.FormService = (*FormServiceImpl)(nil)

// InitialValues returns the values a newly opened form starts with.
// The draft is read only in create mode.
func (s *FormServiceImpl) InitialValues(ctx context.Context, w modal.Workflow) (note.Values, error) {
	if w.Mode != modal.ModeCreate {
		return modal.InitialValues(w, note.Values{}), nil
	}
	draft, err := s.drafts.GetDraft(ctx)
	if err != nil {
		return note.Values{}, err
	}
	return modal.InitialValues(w, draft), nil
}

// Change records a field edit.
func (s *FormServiceImpl) Change(ctx context.Context, w modal.Workflow, values note.Values) error {
	return s.executor.Execute(ctx, modal.PlanDraftEdit(w, values))
}

// Submit validates the form, sends the mutation and runs the follow-up effects.
// Validation failures return a *note.ValidationError without touching the
// network. A failed mutation returns the error together with a response
// whose workflow is still open.
func (s *FormServiceImpl) Submit(ctx context.Context, req primary.SubmitRequest) (*primary.SubmitResponse, error) {
	guard := modal.CanSubmit(modal.CanSubmitContext{
		Mode:    req.Workflow.Mode,
		Initial: req.Initial,
		Current: req.Values,
	})
	if !guard.Allowed {
		if err := note.Validate(req.Values); err != nil {
			return nil, err
		}
		return nil, guard.Error()
	}

	mode := req.Workflow.Mode
	saved, mutErr := s.mutate(ctx, req)
	if mutErr != nil {
		if err := s.executor.Execute(ctx, modal.PlanSubmitFailure(mode, mutErr)); err != nil {
			return nil, err
		}
		return &primary.SubmitResponse{Workflow: req.Workflow}, mutErr
	}

	effs := modal.PlanSubmitSuccess(mode)
	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, err
	}
	return &primary.SubmitResponse{
		Workflow: modal.Apply(req.Workflow, effs),
		Note:     saved,
	}, nil
}

func (s *FormServiceImpl) mutate(ctx context.Context, req primary.SubmitRequest) (*note.Note, error) {
	switch req.Workflow.Mode {
	case modal.ModeCreate:
		return s.notes.CreateNote(ctx, req.Values)
	case modal.ModeEdit:
		if req.Workflow.Target == nil {
			return nil, fmt.Errorf("edit form has no target note")
		}
		patch := note.Diff(*req.Workflow.Target, req.Values)
		return s.notes.UpdateNote(ctx, req.Workflow.Target.ID, patch)
	default:
		return nil, fmt.Errorf("no form is open")
	}
}
