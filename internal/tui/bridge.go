package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/notehub/internal/app"
	"github.com/example/notehub/internal/ports/secondary"
)

// Bridge forwards events raised on background goroutines into a running
// program. Events raised before Attach are dropped.
type Bridge struct {
	mu sync.Mutex
	p  *tea.Program
}

// NewBridge creates an unattached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

var _ secondary.Notifier = (*Bridge)(nil)

// Attach starts forwarding to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p = p
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Notify shows message as a toast.
func (b *Bridge) Notify(ctx context.Context, level, message string) {
	b.send(toastMsg{level: level, message: message})
}

// OnChange delivers a session snapshot. Pass it as SessionOptions.OnChange.
func (b *Bridge) OnChange(s app.Snapshot) {
	b.send(snapshotMsg(s))
}
