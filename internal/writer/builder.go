// internal/writer/builder.go
package writer

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/ulp-supervisor/internal/config"
	"github.com/tamzrod/ulp-supervisor/internal/writer/ingest"
	wmodbus "github.com/tamzrod/ulp-supervisor/internal/writer/modbus"
)

// Build creates the telemetry client and writer for tc.
// Assumes config has already passed validation.
// Returns (nil, no-op closer, nil) when telemetry is disabled.
func Build(tc cfg.TelemetryConfig) (*TelemetryWriter, func() error, error) {
	noop := func() error { return nil }
	if !tc.Enabled() {
		return nil, noop, nil
	}

	timeout := time.Duration(tc.TimeoutMs) * time.Millisecond

	var (
		cli     endpointClient
		closeFn func() error
	)

	switch tc.Transport {
	case cfg.TransportModbus:
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: tc.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, noop, err
		}
		cli, closeFn = c, c.Close

	case cfg.TransportIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: tc.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, noop, err
		}
		cli, closeFn = c, c.Close

	default:
		return nil, noop, fmt.Errorf("telemetry: unknown transport %q", tc.Transport)
	}

	w, err := NewTelemetryWriter(Plan{
		UnitID:     tc.UnitID,
		BaseSlot:   tc.BaseSlot,
		DeviceName: tc.DeviceName,
	}, cli)
	if err != nil {
		_ = closeFn()
		return nil, noop, err
	}

	return w, closeFn, nil
}
