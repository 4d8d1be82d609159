// internal/host/controller.go
package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/tamzrod/ulp-supervisor/internal/fault"
	"github.com/tamzrod/ulp-supervisor/internal/observability"
	"github.com/tamzrod/ulp-supervisor/internal/power"
	"github.com/tamzrod/ulp-supervisor/internal/region"
	"github.com/tamzrod/ulp-supervisor/internal/satellite"
	"github.com/tamzrod/ulp-supervisor/internal/telemetry"
)

// ErrColdBoot wraps any satellite initialization failure. It is fatal.
var ErrColdBoot = errors.New("host: satellite cold boot failed")

// Config is the minimal runtime config the controller needs.
type Config struct {
	Image        []byte
	TickPeriodUs uint32

	// Iterations per activation before sleeping. Zero never sleeps.
	Iterations   int
	PollInterval time.Duration

	// Wake sources armed before each suspension.
	TimerWake     time.Duration // zero => off
	SatelliteWake bool
	CrashWake     bool

	// StallAfter is the heartbeat stall threshold; zero disables it.
	StallAfter time.Duration
}

// Publisher receives one telemetry snapshot per iteration.
type Publisher interface {
	Publish(s telemetry.Snapshot) error
}

// Deps are the controller's collaborators.
// Publisher is optional; a nil Clock means the wall clock.
type Deps struct {
	Loader    satellite.Loader
	Wake      power.WakeSources
	Faults    fault.Source
	Clock     clock.Clock
	Log       zerolog.Logger
	Publisher Publisher
}

// Controller runs host activations.
// Each activation starts from the top; only Retained carries over.
type Controller struct {
	cfg  Config
	deps Deps
	ret  *Retained

	host region.HostView
	obs  *Observer

	state atomic.Uint32 // power.State
}

// NewController validates cfg and binds it to retained memory.
func NewController(cfg Config, ret *Retained, deps Deps) (*Controller, error) {
	if ret == nil || ret.Region == nil {
		return nil, errors.New("host: retained region required")
	}
	if deps.Loader == nil || deps.Wake == nil || deps.Faults == nil {
		return nil, errors.New("host: loader, wake sources and fault source required")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("host: poll interval must be > 0")
	}
	if cfg.Iterations < 0 {
		return nil, errors.New("host: iterations must be >= 0")
	}
	if cfg.Iterations > 0 && cfg.TimerWake <= 0 && !cfg.SatelliteWake && !cfg.CrashWake {
		return nil, errors.New("host: sleeping requires at least one wake source")
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	obs, err := NewObserver(ret.Region, deps.Clock)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:  cfg,
		deps: deps,
		ret:  ret,
		host: ret.Region.Host(),
		obs:  obs,
	}
	c.state.Store(uint32(power.StateColdBoot))
	return c, nil
}

// State returns the current power state.
func (c *Controller) State() power.State {
	return power.State(c.state.Load())
}

// Run repeats activations until ctx ends or cold boot fails.
// Cancellation is a clean shutdown and returns nil.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if _, err := c.Activate(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Activate performs one host activation: wake handling, the iteration
// loop, then sleep. It returns the cause this activation ran under.
func (c *Controller) Activate(ctx context.Context) (power.WakeCause, error) {
	causes := c.ret.Wake
	cause := power.Classify(causes)
	c.ret.Wake = 0
	c.ret.BootCount++

	c.deps.Log.Info().
		Str("event", "wake").
		Str("cause", cause.String()).
		Str("causes", causes.String()).
		Uint32("boot", c.ret.BootCount).
		Msg("host awake")
	observability.RecordWake(cause.String())

	if cause == power.CauseColdBoot {
		c.setState(power.StateColdBoot)
		if err := c.coldBoot(); err != nil {
			c.deps.Log.Error().Err(err).Str("event", "cold_boot").Msg("satellite init failed")
			return cause, err
		}
	}

	if causes.Has(power.CauseCrash) {
		c.checkCrash("wake")
	}

	c.setState(power.StateRunning)

	hb := NewHeartbeatMonitor(c.cfg.StallAfter)
	if err := c.loop(ctx, cause, hb); err != nil {
		return cause, err
	}

	return cause, c.sleep(ctx)
}

func (c *Controller) coldBoot() error {
	h, err := c.deps.Loader.Load(c.cfg.Image)
	if err != nil {
		return fmt.Errorf("%w: load: %w", ErrColdBoot, err)
	}
	if err := c.deps.Loader.SetTickPeriod(h, c.cfg.TickPeriodUs); err != nil {
		return fmt.Errorf("%w: set tick period: %w", ErrColdBoot, err)
	}
	if err := c.deps.Loader.Start(h); err != nil {
		return fmt.Errorf("%w: start: %w", ErrColdBoot, err)
	}

	c.ret.resetSatellite()

	c.deps.Log.Info().
		Str("event", "cold_boot").
		Uint32("entry", h.Entry()).
		Uint32("tick_period_us", c.cfg.TickPeriodUs).
		Msg("satellite started")
	return nil
}

// loop runs the iterations of one activation. Iterations == 0 runs until
// ctx ends.
func (c *Controller) loop(ctx context.Context, cause power.WakeCause, hb *HeartbeatMonitor) error {
	ticker := c.deps.Clock.Ticker(c.cfg.PollInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.iterate(cause, hb)

		if c.cfg.Iterations > 0 && i+1 >= c.cfg.Iterations {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// iterate is one observe/harvest/request pass.
func (c *Controller) iterate(cause power.WakeCause, hb *HeartbeatMonitor) {
	obs := c.obs.PollOnce()
	observability.SetLoopCount(obs.LoopCount)

	c.harvest()
	c.request()
	c.checkCrash("poll")

	if old, changed := c.ret.Watermark.Observe(obs.MinStackAddress); changed {
		c.deps.Log.Info().
			Str("event", "watermark").
			Uint32("old", old).
			Uint32("new", obs.MinStackAddress).
			Msg("stack watermark moved")
		observability.SetWatermark(obs.MinStackAddress)
	}

	switch hb.Observe(obs.LoopCount, obs.At) {
	case HeartbeatStalled:
		c.deps.Log.Warn().
			Str("event", "heartbeat_stalled").
			Uint32("loop_count", obs.LoopCount).
			Msg("satellite heartbeat stalled")
		observability.RecordStall()
	case HeartbeatResumed:
		c.deps.Log.Info().
			Str("event", "heartbeat_resumed").
			Uint32("loop_count", obs.LoopCount).
			Msg("satellite heartbeat resumed")
	}

	c.publish(cause, obs, hb)
}

// harvest stores the reading of an outstanding request once it is READY.
func (c *Controller) harvest() {
	if !c.ret.Outstanding {
		return
	}
	v, ok := c.host.Reading()
	if !ok {
		return
	}

	c.ret.Outstanding = false
	c.ret.LastValue = v

	degenerate := math.IsInf(v, 0) || math.IsNaN(v)
	ev := c.deps.Log.Info()
	if degenerate {
		ev = c.deps.Log.Warn()
	}
	ev.Str("event", "reading").
		Float64("value", v).
		Bool("degenerate", degenerate).
		Msg("reading harvested")
	observability.RecordReading(degenerate)
}

// request asks for the next reading. A request while one is outstanding
// is a no-op.
func (c *Controller) request() {
	if c.host.Request() {
		c.ret.Outstanding = true
		observability.RecordRequest(true)
		return
	}
	c.deps.Log.Debug().
		Str("event", "request_ignored").
		Str("state", c.host.State().String()).
		Msg("request already outstanding")
	observability.RecordRequest(false)
}

// checkCrash acknowledges a pending crash exactly once.
// Wake and poll paths both call it; the first to see it wins.
func (c *Controller) checkCrash(via string) {
	if !c.deps.Faults.Pending() {
		return
	}
	c.deps.Faults.Acknowledge()
	c.ret.Crashes++

	c.deps.Log.Error().
		Str("event", "crash").
		Str("via", via).
		Uint32("crashes", c.ret.Crashes).
		Msg("satellite crashed")
	c.deps.Log.Info().
		Str("event", "crash_acknowledged").
		Bool("flag", c.host.Crashed()).
		Msg("crash acknowledged")
	observability.RecordCrash()
}

func (c *Controller) publish(cause power.WakeCause, obs Observation, hb *HeartbeatMonitor) {
	if c.deps.Publisher == nil {
		return
	}

	health := telemetry.HealthOK
	switch {
	case c.ret.Crashes > 0:
		health = telemetry.HealthCrashed
	case hb.Stalled():
		health = telemetry.HealthStalled
	}

	s := telemetry.Snapshot{
		Health:          health,
		WakeCause:       uint16(cause),
		PowerState:      uint16(c.State()),
		ReadingState:    uint16(obs.State),
		LoopCount:       obs.LoopCount,
		MinStackAddress: obs.MinStackAddress,
		BootCount:       c.ret.BootCount,
		CrashCount:      c.ret.Crashes,
		Value:           c.ret.LastValue,
		History:         obs.History,
	}

	if err := c.deps.Publisher.Publish(s); err != nil {
		c.deps.Log.Warn().Err(err).Str("event", "telemetry").Msg("telemetry publish failed")
		observability.RecordTelemetryError()
	}
}

// sleep arms the configured wake sources and suspends.
// The fired sources are stored in Retained for the next activation.
func (c *Controller) sleep(ctx context.Context) error {
	c.setState(power.StateSleepArmed)

	if c.cfg.TimerWake > 0 {
		c.deps.Wake.EnableTimerWake(c.cfg.TimerWake)
	}
	if c.cfg.SatelliteWake {
		c.deps.Wake.EnableSatelliteWake()
	}
	if c.cfg.CrashWake {
		c.deps.Wake.EnableCrashWake()
	}

	c.setState(power.StateAsleep)

	causes, err := c.deps.Wake.Suspend(ctx)
	if err != nil {
		return fmt.Errorf("host: suspend: %w", err)
	}
	if causes.Empty() {
		// An empty set would read as a cold boot and reload the satellite.
		return errors.New("host: woke with no wake cause")
	}
	c.ret.Wake = causes
	return nil
}

func (c *Controller) setState(s power.State) {
	prev := power.State(c.state.Swap(uint32(s)))
	if prev == s {
		return
	}
	c.deps.Log.Debug().
		Str("event", "state").
		Str("from", prev.String()).
		Str("to", s.String()).
		Msg("power state")
}
