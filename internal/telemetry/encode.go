// internal/telemetry/encode.go
package telemetry

import "math"

// Encode converts a Snapshot into a full telemetry block.
// Layout is protocol-locked. Device name slots are left zero.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotWakeCause] = s.WakeCause
	regs[SlotPowerState] = s.PowerState
	regs[SlotReadingState] = s.ReadingState

	putU32(regs[SlotLoopCount:], s.LoopCount)
	putU32(regs[SlotMinStackAddress:], s.MinStackAddress)
	putU32(regs[SlotBootCount:], s.BootCount)
	putU32(regs[SlotCrashCount:], s.CrashCount)

	putF64(regs[SlotValue:], s.Value)
	for i, v := range s.History {
		putF64(regs[SlotHistoryStart+4*i:], v)
	}

	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}

// DecodeU32 reads a big-endian 2-register value.
func DecodeU32(regs []uint16) uint32 {
	return uint32(regs[0])<<16 | uint32(regs[1])
}

// DecodeF64 reads a big-endian 4-register float64.
func DecodeF64(regs []uint16) float64 {
	var bits uint64
	for i := 0; i < 4; i++ {
		bits = bits<<16 | uint64(regs[i])
	}
	return math.Float64frombits(bits)
}

func putU32(dst []uint16, v uint32) {
	dst[0] = uint16(v >> 16)
	dst[1] = uint16(v)
}

func putF64(dst []uint16, v float64) {
	bits := math.Float64bits(v)
	dst[0] = uint16(bits >> 48)
	dst[1] = uint16(bits >> 32)
	dst[2] = uint16(bits >> 16)
	dst[3] = uint16(bits)
}
