// internal/region/views.go
package region

// Each view exposes only the writes its domain owns:
//
//   loop_count         satellite
//   reading.value      satellite
//   reading.state      host (READY->BEGIN), satellite (BEGIN->IN_PROGRESS->READY)
//   history            satellite
//   min_stack_address  satellite
//   crash_flag         crash handler sets, host clears
//
// Reads are unrestricted. A read that races a write of the same word sees
// either the old or the new value, never a torn one. Two reads of different
// fields are not a consistent snapshot.

// Snapshot is a field-by-field copy of the region as seen by the host.
// It is NOT an atomic snapshot.
type Snapshot struct {
	LoopCount       uint32
	State           State
	Value           float64 // undefined unless State == Ready
	History         [HistoryLength]float64
	MinStackAddress uint32
	Crashed         bool
}

// ---- HOST VIEW ----

// HostView is the host's handle on the region.
type HostView struct {
	r *Region
}

// LoopCount returns the satellite heartbeat counter.
func (h HostView) LoopCount() uint32 { return h.r.loadU32(OffLoopCount) }

// State returns the current handshake state.
func (h HostView) State() State { return h.r.state() }

// Reading returns the last completed value.
// ok is false while a request is outstanding; the value is then undefined.
func (h HostView) Reading() (float64, bool) {
	if h.r.state() != Ready {
		return 0, false
	}
	return h.r.loadF64(OffReadingValue), true
}

// Request asks the satellite for a new reading (READY -> BEGIN).
// It returns false and changes nothing if a request is already outstanding.
func (h HostView) Request() bool {
	return h.r.casState(Ready, Begin)
}

// History returns the ring slots in slot order.
func (h HostView) History() [HistoryLength]float64 {
	var out [HistoryLength]float64
	for i := range out {
		out[i] = h.r.loadF64(historyOffset(i))
	}
	return out
}

// MinStackAddress returns the stack watermark; zero means unset.
func (h HostView) MinStackAddress() uint32 { return h.r.loadU32(OffMinStackAddress) }

// Crashed reports the one-shot crash flag.
func (h HostView) Crashed() bool { return h.r.loadU32(OffCrashFlag) != 0 }

// ClearCrash acknowledges a crash so the next one can be seen.
func (h HostView) ClearCrash() { h.r.storeU32(OffCrashFlag, 0) }

// Snapshot reads every field once.
func (h HostView) Snapshot() Snapshot {
	s := Snapshot{
		LoopCount:       h.LoopCount(),
		State:           h.State(),
		History:         h.History(),
		MinStackAddress: h.MinStackAddress(),
		Crashed:         h.Crashed(),
	}
	s.Value = h.r.loadF64(OffReadingValue)
	return s
}

// ---- SATELLITE VIEW ----

// SatelliteView is the satellite's handle on the region.
type SatelliteView struct {
	r *Region
}

// LoopCount returns the heartbeat counter.
func (s SatelliteView) LoopCount() uint32 { return s.r.loadU32(OffLoopCount) }

// SetLoopCount overwrites the heartbeat counter.
func (s SatelliteView) SetLoopCount(v uint32) { s.r.storeU32(OffLoopCount, v) }

// IncrementLoopCount adds one to the counter and returns the new value.
// Wraps silently at 2^32.
func (s SatelliteView) IncrementLoopCount() uint32 {
	n := s.r.loadU32(OffLoopCount) + 1
	s.r.storeU32(OffLoopCount, n)
	return n
}

// State returns the current handshake state.
func (s SatelliteView) State() State { return s.r.state() }

// BeginWork claims an outstanding request (BEGIN -> IN_PROGRESS).
func (s SatelliteView) BeginWork() bool {
	return s.r.casState(Begin, InProgress)
}

// CompleteWork publishes v and then releases the reading (IN_PROGRESS -> READY).
// The value store happens before the state store.
func (s SatelliteView) CompleteWork(v float64) {
	s.r.storeF64(OffReadingValue, v)
	s.r.casState(InProgress, Ready)
}

// WriteHistory stores v into ring slot i.
func (s SatelliteView) WriteHistory(i int, v float64) {
	s.r.storeF64(historyOffset(i%HistoryLength), v)
}

// CheckpointStack lowers the stack watermark to addr if addr is deeper.
// The watermark never moves up.
func (s SatelliteView) CheckpointStack(addr uint32) {
	cur := s.r.loadU32(OffMinStackAddress)
	if cur == 0 || addr < cur {
		s.r.storeU32(OffMinStackAddress, addr)
	}
}

// ---- CRASH LINE ----

// CrashLine is the only thing the crash interrupt handler may touch.
type CrashLine struct {
	r *Region
}

// Set raises the crash flag.
func (c CrashLine) Set() { c.r.storeU32(OffCrashFlag, 1) }
