// internal/fault/source.go
package fault

import (
	"fmt"
	"strings"

	"github.com/tamzrod/ulp-supervisor/internal/region"
)

// Source is the crash monitor contract.
// Pending stays true from the first fault until Acknowledge.
// After Acknowledge it reads false until a new fault occurs.
type Source interface {
	Pending() bool
	Acknowledge()
}

// Mode selects how the host learns about crashes.
type Mode string

const (
	ModeInterrupt Mode = "interrupt"
	ModePoll      Mode = "poll"
	ModeBoth      Mode = "both"
)

// ParseMode accepts the config spelling of a mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeInterrupt:
		return ModeInterrupt, nil
	case ModePoll:
		return ModePoll, nil
	case ModeBoth:
		return ModeBoth, nil
	default:
		return "", fmt.Errorf("fault: unknown crash mode %q", raw)
	}
}

// New builds the Source for mode.
func New(mode Mode, trap *Trap, r *region.Region) (Source, error) {
	switch mode {
	case ModeInterrupt:
		return NewInterrupt(trap, r), nil
	case ModePoll:
		return NewPoll(trap), nil
	case ModeBoth:
		return Combined{NewInterrupt(trap, r), NewPoll(trap)}, nil
	default:
		return nil, fmt.Errorf("fault: unknown crash mode %q", mode)
	}
}

// ---- INTERRUPT MODE ----

// InterruptSource latches crashes into the region's crash flag from the
// trap handler.
type InterruptSource struct {
	trap *Trap
	host region.HostView
}

// NewInterrupt registers the crash handler on trap.
// The handler only sets the crash flag.
func NewInterrupt(trap *Trap, r *region.Region) *InterruptSource {
	line := r.CrashLine()
	trap.OnRaise(line.Set)
	return &InterruptSource{trap: trap, host: r.Host()}
}

func (s *InterruptSource) Pending() bool { return s.host.Crashed() }

// Acknowledge clears the flag and the underlying status bit.
// Leaving the status bit set would re-trigger crash wakes forever.
func (s *InterruptSource) Acknowledge() {
	s.host.ClearCrash()
	s.trap.Clear()
}

// ---- POLL MODE ----

// PollSource tests the trap status line directly.
type PollSource struct {
	trap *Trap
}

func NewPoll(trap *Trap) *PollSource { return &PollSource{trap: trap} }

func (s *PollSource) Pending() bool { return s.trap.Asserted() }

func (s *PollSource) Acknowledge() { s.trap.Clear() }

// ---- COMBINED ----

// Combined reports a crash if any member does and acknowledges all of them.
type Combined []Source

func (c Combined) Pending() bool {
	for _, s := range c {
		if s.Pending() {
			return true
		}
	}
	return false
}

func (c Combined) Acknowledge() {
	for _, s := range c {
		s.Acknowledge()
	}
}
