// internal/satellite/satellite.go
package satellite

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tamzrod/ulp-supervisor/internal/fault"
	"github.com/tamzrod/ulp-supervisor/internal/region"
)

// DefaultWakeEvery is how often (in ticks) the satellite wakes the host.
const DefaultWakeEvery = 5

// Waker is the satellite's wake-the-host signal.
type Waker interface {
	WakeHost()
}

// Config is the satellite program's build-time policy.
type Config struct {
	// WakeEvery signals the host when loop_count % WakeEvery == 0.
	// Zero disables self-initiated wakes.
	WakeEvery uint32

	// AcquireDepth is the call nesting of the acquisition routine.
	// Each level is a stack checkpoint. Zero means 1.
	AcquireDepth int
}

// Env holds the collaborators a satellite runs against.
// Nil fields get defaults: real clock, instant delay, DefaultStack,
// no waker, no trap.
type Env struct {
	Clock clock.Clock
	Delay DelaySource
	Stack StackProbe
	Waker Waker
	Trap  *fault.Trap
}

// Satellite is the duty-cycled co-processor program.
// Its only state outside the region is the history cursor.
type Satellite struct {
	cfg   Config
	view  region.SatelliteView
	clock clock.Clock
	delay DelaySource
	stack StackProbe
	waker Waker
	trap  *fault.Trap

	period atomic.Int64 // time.Duration
	cursor int

	halted atomic.Bool
	fault  atomic.Bool
	err    atomic.Value // error

	tickMu sync.Mutex
}

// New builds a satellite over r.
func New(cfg Config, r *region.Region, env Env) (*Satellite, error) {
	if r == nil {
		return nil, errors.New("satellite: region required")
	}
	if cfg.AcquireDepth < 0 {
		return nil, errors.New("satellite: acquire depth must be >= 0")
	}
	if cfg.AcquireDepth == 0 {
		cfg.AcquireDepth = 1
	}
	if env.Clock == nil {
		env.Clock = clock.New()
	}
	if env.Delay == nil {
		env.Delay = Instant{}
	}
	if env.Stack == nil {
		env.Stack = DefaultStack
	}
	return &Satellite{
		cfg:   cfg,
		view:  r.Satellite(),
		clock: env.Clock,
		delay: env.Delay,
		stack: env.Stack,
		waker: env.Waker,
		trap:  env.Trap,
	}, nil
}

// SetPeriod sets the tick period used by Run.
func (s *Satellite) SetPeriod(d time.Duration) { s.period.Store(int64(d)) }

// Period returns the configured tick period.
func (s *Satellite) Period() time.Duration { return time.Duration(s.period.Load()) }

// InjectFault makes the next tick trap.
func (s *Satellite) InjectFault() { s.fault.Store(true) }

// Halted reports whether the satellite stopped after a fault.
func (s *Satellite) Halted() bool { return s.halted.Load() }

// Err returns the fault that halted the satellite, if any.
func (s *Satellite) Err() error {
	if v, ok := s.err.Load().(error); ok {
		return v
	}
	return nil
}

// ---- tick ----

// Tick runs one bounded work unit. It panics on a satellite fault;
// Step is the trapping variant.
func (s *Satellite) Tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	n := s.view.IncrementLoopCount()
	s.checkpoint(1)

	if s.fault.CompareAndSwap(true, false) {
		panic(errors.New("satellite: injected fault"))
	}

	if s.view.BeginWork() {
		s.acquire(n, 2)
	}

	if s.cfg.WakeEvery > 0 && n%s.cfg.WakeEvery == 0 && s.waker != nil {
		s.waker.WakeHost()
	}
}

// acquire simulates the sensor read. depth is the current call depth;
// the routine nests AcquireDepth levels below the loop entry.
func (s *Satellite) acquire(n uint32, depth int) {
	s.checkpoint(depth)
	if depth <= s.cfg.AcquireDepth {
		s.acquire(n, depth+1)
		return
	}

	s.delay.Delay()

	// n == 0 only after wraparound: 1/0 is +Inf and is published as such.
	v := float64(n) + 1/float64(n)

	s.view.WriteHistory(s.cursor, v)
	s.cursor = (s.cursor + 1) % region.HistoryLength

	s.view.CompleteWork(v)
}

// Step runs one tick and converts a fault into a trap.
// It returns false once the satellite has halted.
func (s *Satellite) Step() (ok bool) {
	if s.halted.Load() {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			err, isErr := r.(error)
			if !isErr {
				err = errors.New("satellite: fault")
			}
			s.err.Store(err)
			s.halted.Store(true)
			if s.trap != nil {
				s.trap.Raise()
			}
			ok = false
		}
	}()
	s.Tick()
	return true
}

// Run ticks at the configured period until ctx ends or the satellite faults.
// There is no restart after a fault.
func (s *Satellite) Run(ctx context.Context) error {
	period := s.Period()
	if period <= 0 {
		return errors.New("satellite: tick period must be > 0")
	}

	ticker := s.clock.Ticker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !s.Step() {
				return s.Err()
			}
		}
	}
}
