// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/ulp-supervisor/internal/fault"
	"github.com/tamzrod/ulp-supervisor/internal/telemetry"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// SATELLITE
	// ------------------------------------------------------------

	s := cfg.Satellite

	if s.TickPeriodUs != 0 && s.AcquisitionDelayUs >= s.TickPeriodUs {
		return fmt.Errorf(
			"satellite: acquisition_delay_us (%d) must be shorter than tick_period_us (%d)",
			s.AcquisitionDelayUs,
			s.TickPeriodUs,
		)
	}
	if s.AcquireDepth < 0 {
		return fmt.Errorf("satellite: acquire_depth must be >= 0, got %d", s.AcquireDepth)
	}

	st := s.Stack
	if st != (StackConfig{}) {
		if st.Frame == 0 {
			return errors.New("satellite.stack: frame must be > 0")
		}
		if st.Top <= st.Limit {
			return fmt.Errorf("satellite.stack: top (%#x) must be above limit (%#x)", st.Top, st.Limit)
		}
	}

	// ------------------------------------------------------------
	// HOST
	// ------------------------------------------------------------

	h := cfg.Host

	if h.Iterations < 0 || h.PollIntervalMs < 0 || h.StallAfterMs < 0 || h.Wake.TimerMs < 0 {
		return errors.New("host: iterations, poll_interval_ms, stall_after_ms and wake.timer_ms must be >= 0")
	}

	// A finite activation ends in sleep; sleep needs a way back.
	if h.Iterations > 0 && h.Wake.TimerMs == 0 && !h.Wake.Satellite && !h.Wake.Crash {
		return errors.New("host: iterations > 0 requires at least one wake source")
	}

	if h.Wake.Satellite && s.WakeEvery != nil && *s.WakeEvery == 0 && h.Wake.TimerMs == 0 && !h.Wake.Crash {
		return errors.New("host: satellite wake is the only wake source but satellite.wake_every is 0")
	}

	// ------------------------------------------------------------
	// CRASH MONITOR
	// ------------------------------------------------------------

	if cfg.Crash.Mode != "" {
		if _, err := fault.ParseMode(cfg.Crash.Mode); err != nil {
			return fmt.Errorf("crash: %w", err)
		}
	}

	// ------------------------------------------------------------
	// TELEMETRY (OPT-IN)
	// ------------------------------------------------------------

	t := cfg.Telemetry
	if t.Enabled() {
		switch t.Transport {
		case "", TransportModbus, TransportIngest:
		default:
			return fmt.Errorf("telemetry: unknown transport %q", t.Transport)
		}

		if t.TimeoutMs < 0 {
			return errors.New("telemetry: timeout_ms must be >= 0")
		}

		if uint32(t.BaseSlot)*telemetry.SlotsPerDevice+telemetry.SlotsPerDevice > 1<<16 {
			return fmt.Errorf("telemetry: base_slot %d does not fit the register space", t.BaseSlot)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(t.DeviceName); i++ {
			if t.DeviceName[i] > 0x7F {
				return errors.New("telemetry: device_name must contain ASCII characters only")
			}
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}

	return nil
}
