package app

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/notehub/internal/adapters/memory"
	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/core/note"
	"github.com/example/notehub/internal/querycache"
)

type unknownEffect struct{}

func (unknownEffect) EffectType() string { return "unknown" }

func TestEffectExecutor(t *testing.T) {
	cache := newTestCache(t)
	drafts := NewDraftService(memory.NewDraftRepository())
	notifier := &recordingNotifier{}
	core, logs := observer.New(zapcore.DebugLevel)
	exec := NewEffectExecutor(cache, drafts, notifier, zap.New(core))
	ctx := context.Background()

	cache.Set(querycache.Key{"notes", "", "1"}, "list")
	cache.Set(querycache.Key{"note", "n1"}, "single")

	draft := note.Values{Title: "draft", Tag: note.TagWork}
	err := exec.Execute(ctx, []effects.Effect{
		effects.SaveDraftEffect{Values: draft},
		effects.CompositeEffect{Effects: []effects.Effect{
			effects.InvalidateEffect{Prefix: []string{"notes"}},
			effects.RemoveEffect{Prefix: []string{"note", "n1"}},
		}},
		effects.NotifyEffect{Level: effects.LevelSuccess, Message: "done"},
		effects.LogEffect{Level: "warn", Message: "logged", Fields: map[string]any{"k": "v"}},
		effects.CloseModalEffect{},
		effects.NoEffect{},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got, _ := drafts.GetDraft(ctx); got != draft {
		t.Errorf("draft = %+v", got)
	}
	if _, _, stale := cache.Peek(querycache.Key{"notes", "", "1"}); !stale {
		t.Error("list entry should be stale")
	}
	if _, ok, _ := cache.Peek(querycache.Key{"note", "n1"}); ok {
		t.Error("single entry should be removed")
	}
	if sent := notifier.all(); len(sent) != 1 || sent[0].message != "done" {
		t.Errorf("notifications = %+v", sent)
	}
	if logs.FilterMessage("logged").Len() != 1 {
		t.Error("expected log effect to be written")
	}

	if err := exec.Execute(ctx, []effects.Effect{effects.ClearDraftEffect{}}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got, _ := drafts.GetDraft(ctx); got != note.EmptyValues() {
		t.Errorf("draft after clear = %+v", got)
	}

	if err := exec.Execute(ctx, []effects.Effect{unknownEffect{}}); err == nil {
		t.Error("expected error for unknown effect")
	}
}
