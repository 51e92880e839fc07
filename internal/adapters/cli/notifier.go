package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/ports/secondary"
)

// ColorNotifier prints notifications as coloured lines.
type ColorNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewColorNotifier creates a notifier writing to out.
func NewColorNotifier(out io.Writer) *ColorNotifier {
	return &ColorNotifier{out: out}
}

var _ secondary.Notifier = (*ColorNotifier)(nil)

// Notify prints message with a level marker.
func (n *ColorNotifier) Notify(ctx context.Context, level, message string) {
	var marker string
	switch level {
	case effects.LevelSuccess:
		marker = color.New(color.FgGreen).Sprint("✓")
	case effects.LevelError:
		marker = color.New(color.FgRed).Sprint("✗")
	default:
		marker = color.New(color.FgCyan).Sprint("ℹ")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%s %s\n", marker, message)
}
