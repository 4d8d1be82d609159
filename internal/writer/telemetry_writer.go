// internal/writer/telemetry_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/ulp-supervisor/internal/telemetry"
)

// endpointClient is the exact contract the writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan places one device's telemetry block in holding-register memory.
type Plan struct {
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// TelemetryWriter delivers telemetry snapshots verbatim.
// The first successful write asserts the full block (including the device
// name); later writes only touch registers that changed.
type TelemetryWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// NewTelemetryWriter binds a plan to a client.
func NewTelemetryWriter(plan Plan, cli endpointClient) (*TelemetryWriter, error) {
	if cli == nil {
		return nil, errors.New("telemetry writer: client required")
	}
	if uint32(plan.BaseSlot)*telemetry.SlotsPerDevice+telemetry.SlotsPerDevice > 1<<16 {
		return nil, fmt.Errorf("telemetry writer: base slot %d out of range", plan.BaseSlot)
	}
	return &TelemetryWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: telemetry.EncodeDeviceName(plan.DeviceName),
	}, nil
}

// Publish writes s into telemetry memory.
// On any write failure, the next successful call will re-assert the full block.
func (w *TelemetryWriter) Publish(s telemetry.Snapshot) error {
	regs := telemetry.Encode(s)
	baseAddr := w.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if w.needFull {
		full := w.fullBlockRegs(regs)

		if err := w.cli.WriteRegisters(w.plan.UnitID, baseAddr, full); err != nil {
			w.needFull = true
			return fmt.Errorf("telemetry writer: full block write failed: %w", err)
		}

		w.needFull = false
		w.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per contiguous run of changed slots
	// ------------------------------------------------------------
	var errs []string

	for start := 0; start < telemetry.SlotReservedStart; {
		if regs[start] == w.last[start] {
			start++
			continue
		}
		end := start
		for end < telemetry.SlotReservedStart && regs[end] != w.last[end] {
			end++
		}

		if err := w.cli.WriteRegisters(
			w.plan.UnitID,
			baseAddr+uint16(start),
			regs[start:end],
		); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d-%d write failed: %v", start, end-1, err))
		} else {
			copy(w.last[start:end], regs[start:end])
		}
		start = end
	}

	if len(errs) > 0 {
		// Any partial failure: re-assert the full block on next success.
		w.needFull = true
		return errors.New("telemetry writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (w *TelemetryWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return w.plan.BaseSlot * telemetry.SlotsPerDevice
}

func (w *TelemetryWriter) fullBlockRegs(live []uint16) []uint16 {
	regs := make([]uint16, telemetry.SlotsPerDevice)
	copy(regs, live[:telemetry.SlotReservedStart])

	// Reserved slots are left as zero.

	// Device name always lives at the end of the block
	copy(regs[telemetry.SlotDeviceNameStart:], w.nameRegs)

	return regs
}
