// internal/config/normalize.go
package config

import (
	"github.com/tamzrod/ulp-supervisor/internal/fault"
	"github.com/tamzrod/ulp-supervisor/internal/satellite"
)

// Defaults applied by Normalize.
const (
	DefaultTickPeriodUs   = 100_000
	DefaultTelemetryMs    = 1000
	DefaultStallPeriods   = 2
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultTelemetryTrans = TransportModbus
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Satellite
	if s.TickPeriodUs == 0 {
		s.TickPeriodUs = DefaultTickPeriodUs
	}
	if s.WakeEvery == nil {
		v := uint32(satellite.DefaultWakeEvery)
		s.WakeEvery = &v
	}
	if s.AcquireDepth == 0 {
		s.AcquireDepth = 1
	}
	if s.Stack == (StackConfig{}) {
		s.Stack = StackConfig{
			Top:   satellite.DefaultStack.Top,
			Frame: satellite.DefaultStack.Frame,
			Limit: satellite.DefaultStack.Floor,
		}
	}

	h := &cfg.Host
	if h.StallAfterMs == 0 {
		// ceil(periods * tick) in milliseconds
		h.StallAfterMs = int((uint64(s.TickPeriodUs)*DefaultStallPeriods + 999) / 1000)
	}

	if cfg.Crash.Mode == "" {
		cfg.Crash.Mode = string(fault.ModeInterrupt)
	}

	t := &cfg.Telemetry
	if t.Enabled() {
		if t.Transport == "" {
			t.Transport = DefaultTelemetryTrans
		}
		if t.TimeoutMs == 0 {
			t.TimeoutMs = DefaultTelemetryMs
		}
		// Truncate to max 16 characters; packing happens in the writer.
		if len(t.DeviceName) > 16 {
			t.DeviceName = t.DeviceName[:16]
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
