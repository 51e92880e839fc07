package ctxutil

import (
	"context"
	"testing"
)

func TestCommandFromContext(t *testing.T) {
	if got := CommandFromContext(context.Background()); got != "" {
		t.Errorf("empty context: got %q", got)
	}

	ctx := WithCommand(context.Background(), "list")
	if got := CommandFromContext(ctx); got != "list" {
		t.Errorf("got %q, want %q", got, "list")
	}
}
