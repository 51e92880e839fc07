package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/listview"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/querycache"
)

func newTestNoteService(t *testing.T) (*NoteServiceImpl, *mockNoteGateway, *recordingNotifier, *querycache.Cache) {
	t.Helper()
	gateway := newMockNoteGateway()
	notifier := &recordingNotifier{}
	cache := newTestCache(t)
	return NewNoteService(gateway, cache, notifier, nil), gateway, notifier, cache
}

func TestNoteService_ListNotes_CachesByKey(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)
	gateway.seed("Buy milk", "Shopping")
	ctx := context.Background()
	view := listview.New(note.TagAll, 9)

	list, err := svc.ListNotes(ctx, view)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(list.Notes) != 1 || list.Notes[0].Tag != note.TagShopping {
		t.Errorf("unexpected list %+v", list)
	}

	if _, err := svc.ListNotes(ctx, view); err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if got := gateway.listCount(); got != 1 {
		t.Errorf("gateway list calls = %d, want 1", got)
	}

	if _, err := svc.ListNotes(ctx, listview.SetPage(view, 2)); err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if got := gateway.listCount(); got != 2 {
		t.Errorf("different key should fetch; calls = %d", got)
	}
}

func TestNoteService_ListNotes_AllTagNotSent(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)

	if _, err := svc.ListNotes(context.Background(), listview.New(note.TagAll, 9)); err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if tag := gateway.listCalls[0].Tag; tag != "" {
		t.Errorf("tag param = %q, want empty", tag)
	}
}

func TestNoteService_ListNotes_EmptySearchNotifies(t *testing.T) {
	svc, _, notifier, _ := newTestNoteService(t)
	ctx := context.Background()

	list, err := svc.ListNotes(ctx, listview.ApplySearch(listview.New(note.TagAll, 9), "zzz999"))
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(list.Notes) != 0 || list.TotalPages != 0 {
		t.Errorf("expected empty result, got %+v", list)
	}

	sent := notifier.all()
	if len(sent) != 1 || sent[0].message != MsgNoMatches || sent[0].level != effects.LevelInfo {
		t.Errorf("notifications = %+v", sent)
	}

	if _, err := svc.ListNotes(ctx, listview.New(note.TagWork, 9)); err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notifier.all()) != 1 {
		t.Error("an empty unfiltered list must not notify")
	}
}

func TestNoteService_ListNotes_Error(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)
	gateway.listErr = errors.New("offline")

	if _, err := svc.ListNotes(context.Background(), listview.New(note.TagAll, 9)); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoteService_CreateInvalidatesLists(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)
	ctx := context.Background()
	views := []listview.State{
		listview.New(note.TagAll, 9),
		listview.ApplySearch(listview.New(note.TagWork, 9), "plan"),
	}
	for _, v := range views {
		if _, err := svc.ListNotes(ctx, v); err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
	}

	created, err := svc.CreateNote(ctx, note.Values{Title: "Plan sprint", Tag: note.TagWork})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected service-assigned id")
	}

	for _, v := range views {
		if _, err := svc.ListNotes(ctx, v); err != nil {
			t.Fatalf("ListNotes failed: %v", err)
		}
	}
	if got := gateway.listCount(); got != 4 {
		t.Errorf("gateway list calls = %d, want 4 (every list refetched)", got)
	}
}

func TestNoteService_CreateRejectsInvalidWithoutNetwork(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)

	_, err := svc.CreateNote(context.Background(), note.Values{Title: "Hi", Tag: note.TagTodo})
	var verr *note.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(gateway.notes) != 0 {
		t.Error("invalid note reached the gateway")
	}
}

func TestNoteService_UpdateThenGetReflectsChange(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)
	ctx := context.Background()
	seeded := gateway.seed("Old", "Todo")

	if _, err := svc.GetNote(ctx, seeded.ID); err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}

	title := "New"
	if _, err := svc.UpdateNote(ctx, seeded.ID, note.Patch{Title: &title}); err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if p := gateway.lastPatch; p.Title == nil || p.Content != nil || p.Tag != nil {
		t.Errorf("patch = %+v, want title only", p)
	}

	got, err := svc.GetNote(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.Title != "New" {
		t.Errorf("Title = %q, want New", got.Title)
	}
}

func TestNoteService_SingleNoteNotRefetchedOnListInvalidation(t *testing.T) {
	svc, gateway, _, _ := newTestNoteService(t)
	ctx := context.Background()
	seeded := gateway.seed("Keep", "Todo")

	if _, err := svc.GetNote(ctx, seeded.ID); err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if _, err := svc.CreateNote(ctx, note.Values{Title: "Other", Tag: note.TagTodo}); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := svc.GetNote(ctx, seeded.ID); err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got := gateway.getCount(); got != 1 {
		t.Errorf("gateway get calls = %d, want 1", got)
	}
}

func TestNoteService_DeleteRemovesSingleEntry(t *testing.T) {
	svc, gateway, _, cache := newTestNoteService(t)
	ctx := context.Background()
	seeded := gateway.seed("Temp", "Todo")

	if _, err := svc.GetNote(ctx, seeded.ID); err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	deleted, err := svc.DeleteNote(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if deleted.ID != seeded.ID {
		t.Errorf("deleted id = %q", deleted.ID)
	}
	if _, ok, _ := cache.Peek(NoteKey(seeded.ID)); ok {
		t.Error("single-note entry must be removed")
	}
	if _, err := svc.GetNote(ctx, seeded.ID); err == nil {
		t.Error("expected not found after delete")
	}
}

func TestNoteService_FailedMutationKeepsCache(t *testing.T) {
	svc, gateway, _, cache := newTestNoteService(t)
	ctx := context.Background()
	view := listview.New(note.TagAll, 9)
	if _, err := svc.ListNotes(ctx, view); err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}

	gateway.createErr = errors.New("500")
	if _, err := svc.CreateNote(ctx, note.Values{Title: "Hello", Tag: note.TagTodo}); err == nil {
		t.Fatal("expected error")
	}
	if _, _, stale := cache.Peek(ListKey(view)); stale {
		t.Error("failed create must not invalidate lists")
	}
}
