// internal/host/observer.go
package host

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tamzrod/ulp-supervisor/internal/region"
)

// Observation is what one observer pass saw in the region.
// Fields are read one by one; they are not a consistent snapshot.
type Observation struct {
	At time.Time

	LoopCount       uint32
	State           region.State
	History         [region.HistoryLength]float64
	MinStackAddress uint32
	Crashed         bool
}

// Observer is a dumb, read-only view of the region.
// It never changes region state: requests and acknowledgements belong to
// the controller.
type Observer struct {
	host  region.HostView
	clock clock.Clock
}

// NewObserver creates an observer over r.
func NewObserver(r *region.Region, clk clock.Clock) (*Observer, error) {
	if r == nil {
		return nil, errors.New("observer: region required")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Observer{host: r.Host(), clock: clk}, nil
}

// PollOnce performs exactly one observation pass.
func (o *Observer) PollOnce() Observation {
	return Observation{
		At:              o.clock.Now(),
		LoopCount:       o.host.LoopCount(),
		State:           o.host.State(),
		History:         o.host.History(),
		MinStackAddress: o.host.MinStackAddress(),
		Crashed:         o.host.Crashed(),
	}
}
