// internal/power/sim.go
package power

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tamzrod/ulp-supervisor/internal/fault"
)

// ErrNoWakeSource is returned when Suspend is called with nothing armed.
var ErrNoWakeSource = errors.New("power: suspend with no wake source armed")

// WakeSources is the wake-source collaborator.
// Sources are armed per suspension; Suspend disarms them all on return.
type WakeSources interface {
	EnableTimerWake(d time.Duration)
	EnableSatelliteWake()
	EnableCrashWake()
	Suspend(ctx context.Context) (CauseSet, error)
}

// Sim is an in-process WakeSources.
// The satellite wakes it through WakeHost; the fault trap wakes it
// through its raise handler.
type Sim struct {
	clock clock.Clock
	trap  *fault.Trap

	satCh   chan struct{}
	crashCh chan struct{}

	mu      sync.Mutex
	timer   time.Duration
	timerOn bool
	satOn   bool
	crashOn bool
}

// NewSim builds a simulated power manager bound to trap.
// trap may be nil when crash wake is never used.
func NewSim(clk clock.Clock, trap *fault.Trap) *Sim {
	if clk == nil {
		clk = clock.New()
	}
	s := &Sim{
		clock:   clk,
		trap:    trap,
		satCh:   make(chan struct{}, 1),
		crashCh: make(chan struct{}, 1),
	}
	if trap != nil {
		trap.OnRaise(s.signalCrash)
	}
	return s
}

// WakeHost is the satellite's wake signal. It never blocks.
// Signals raised while the host is awake are latched until the next
// EnableSatelliteWake discards them.
func (s *Sim) WakeHost() {
	select {
	case s.satCh <- struct{}{}:
	default:
	}
}

func (s *Sim) signalCrash() {
	select {
	case s.crashCh <- struct{}{}:
	default:
	}
}

func (s *Sim) EnableTimerWake(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = d
	s.timerOn = d > 0
}

func (s *Sim) EnableSatelliteWake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	drain(s.satCh)
	s.satOn = true
}

func (s *Sim) EnableCrashWake() {
	s.mu.Lock()
	defer s.mu.Unlock()
	drain(s.crashCh)
	s.crashOn = true
}

// Suspend blocks until an armed source fires or ctx ends.
// It returns every armed source that had fired by the time it woke.
func (s *Sim) Suspend(ctx context.Context) (CauseSet, error) {
	s.mu.Lock()
	timerOn, d := s.timerOn, s.timer
	satOn, crashOn := s.satOn, s.crashOn
	s.timerOn, s.satOn, s.crashOn = false, false, false
	s.mu.Unlock()

	if !timerOn && !satOn && !crashOn {
		return 0, ErrNoWakeSource
	}

	// Crash wake is level-triggered on the status line.
	if crashOn && s.trap != nil && s.trap.Asserted() {
		return Causes(CauseCrash), nil
	}

	var timerC <-chan time.Time
	if timerOn {
		t := s.clock.Timer(d)
		defer t.Stop()
		timerC = t.C
	}
	var satC, crashC <-chan struct{}
	if satOn {
		satC = s.satCh
	}
	if crashOn {
		crashC = s.crashCh
	}

	var fired CauseSet
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timerC:
		fired = fired.With(CauseTimer)
	case <-satC:
		fired = fired.With(CauseSatellite)
	case <-crashC:
		fired = fired.With(CauseCrash)
	}

	// Collect sources that fired at the same moment.
	select {
	case <-timerC:
		fired = fired.With(CauseTimer)
	default:
	}
	select {
	case <-satC:
		fired = fired.With(CauseSatellite)
	default:
	}
	select {
	case <-crashC:
		fired = fired.With(CauseCrash)
	default:
	}

	return fired, nil
}

func drain(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
