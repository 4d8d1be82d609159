// internal/fault/trap.go
package fault

import (
	"sync"
	"sync/atomic"
)

// Trap models the satellite fault-trap status line.
// The satellite side raises it; the host side reads and clears it.
// A raised line stays asserted until cleared.
type Trap struct {
	asserted atomic.Bool

	mu       sync.Mutex
	handlers []func()
}

// NewTrap returns a de-asserted trap line.
func NewTrap() *Trap { return &Trap{} }

// Raise asserts the line and runs every registered handler synchronously,
// the way an interrupt vector would.
func (t *Trap) Raise() {
	t.asserted.Store(true)

	t.mu.Lock()
	hs := make([]func(), len(t.handlers))
	copy(hs, t.handlers)
	t.mu.Unlock()

	for _, h := range hs {
		h()
	}
}

// Asserted reports the status line.
func (t *Trap) Asserted() bool { return t.asserted.Load() }

// Clear de-asserts the status line.
func (t *Trap) Clear() { t.asserted.Store(false) }

// OnRaise registers an interrupt handler.
// Handlers must do negligible work and must not block.
func (t *Trap) OnRaise(h func()) {
	if h == nil {
		return
	}
	t.mu.Lock()
	t.handlers = append(t.handlers, h)
	t.mu.Unlock()
}
