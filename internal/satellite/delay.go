// internal/satellite/delay.go
package satellite

import (
	"time"

	"github.com/benbjohnson/clock"
)

// DelaySource models acquisition latency.
// Delay must not yield to a scheduler the satellite does not have:
// real implementations spin.
type DelaySource interface {
	Delay()
}

// Instant returns immediately.
type Instant struct{}

func (Instant) Delay() {}

// DelayFunc adapts a function.
type DelayFunc func()

func (f DelayFunc) Delay() { f() }

// BusyWait spins on Clock until D has elapsed.
// With a mock clock it only returns once the mock is advanced.
type BusyWait struct {
	Clock clock.Clock
	D     time.Duration
}

func (b BusyWait) Delay() {
	if b.D <= 0 {
		return
	}
	clk := b.Clock
	if clk == nil {
		clk = clock.New()
	}
	start := clk.Now()
	for clk.Since(start) < b.D {
	}
}
