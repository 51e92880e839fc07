package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/notehub/internal/adapters/sqlite"
	"github.com/example/notehub/internal/ports/secondary"
)

func TestDraftRepository_GetEmpty(t *testing.T) {
	repo := sqlite.NewDraftRepository(setupTestDB(t))

	draft, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if draft != nil {
		t.Errorf("expected nil draft, got %+v", draft)
	}
}

func TestDraftRepository_SaveReplaces(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewDraftRepository(testDB)
	ctx := context.Background()

	if err := repo.Save(ctx, &secondary.DraftRecord{Title: "first", Content: "a", Tag: "Work"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, &secondary.DraftRecord{Title: "second", Tag: "Todo"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	draft, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := secondary.DraftRecord{Title: "second", Content: "", Tag: "Todo"}
	if draft == nil || *draft != want {
		t.Errorf("Get() = %+v, want %+v", draft, want)
	}

	var rows int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM kv_store WHERE key = ?", sqlite.DraftKey).Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected a single draft row, got %d", rows)
	}
}

func TestDraftRepository_StoredAsJSON(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewDraftRepository(testDB)

	if err := repo.Save(context.Background(), &secondary.DraftRecord{Title: "t", Content: "c", Tag: "Meeting"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var raw string
	if err := testDB.QueryRow("SELECT value FROM kv_store WHERE key = 'note-draft'").Scan(&raw); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if raw != `{"title":"t","content":"c","tag":"Meeting"}` {
		t.Errorf("stored value = %s", raw)
	}
}

func TestDraftRepository_Clear(t *testing.T) {
	repo := sqlite.NewDraftRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Save(ctx, &secondary.DraftRecord{Title: "gone soon", Tag: "Todo"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}

	draft, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if draft != nil {
		t.Errorf("expected nil after Clear, got %+v", draft)
	}
}

func TestDraftRepository_CorruptValue(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewDraftRepository(testDB)

	if _, err := testDB.Exec("INSERT INTO kv_store (key, value) VALUES ('note-draft', 'not json')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := repo.Get(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}
