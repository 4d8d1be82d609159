// internal/host/retained.go
package host

import (
	"errors"

	"github.com/tamzrod/ulp-supervisor/internal/power"
	"github.com/tamzrod/ulp-supervisor/internal/region"
)

// Retained is everything that survives host suspension.
// Anything not reachable from here is lost on every wake.
type Retained struct {
	Region *region.Region

	// Wake is the set of sources that ended the last suspension.
	// Empty means the host has never slept: a cold boot.
	Wake power.CauseSet

	BootCount uint32
	Crashes   uint32

	// Outstanding is true between an accepted request and its harvest.
	Outstanding bool
	LastValue   float64

	Watermark WatermarkTracker
}

// NewRetained binds retained memory to the shared region.
func NewRetained(r *region.Region) (*Retained, error) {
	if r == nil {
		return nil, errors.New("host: region required")
	}
	return &Retained{Region: r}, nil
}

// resetSatellite forgets everything tied to a previous satellite image.
// Called on cold boot, after the loader has zeroed the region.
func (r *Retained) resetSatellite() {
	r.Outstanding = false
	r.LastValue = 0
	r.Watermark = WatermarkTracker{}
}
