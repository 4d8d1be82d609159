// internal/host/tracker.go
package host

import "time"

// ---- STACK WATERMARK ----

// WatermarkTracker reports the stack watermark only when it moves.
// The zero value has seen nothing.
type WatermarkTracker struct {
	last uint32
}

// Observe records v and reports the previous value if v is new.
// Zero (unset) is never reported.
func (w *WatermarkTracker) Observe(v uint32) (old uint32, changed bool) {
	if v == 0 || v == w.last {
		return w.last, false
	}
	old = w.last
	w.last = v
	return old, true
}

// Last returns the last reported watermark.
func (w *WatermarkTracker) Last() uint32 { return w.last }

// ---- HEARTBEAT ----

// HeartbeatEvent is an edge in the satellite heartbeat.
type HeartbeatEvent uint8

const (
	HeartbeatNone HeartbeatEvent = iota
	HeartbeatStalled
	HeartbeatResumed
)

// HeartbeatMonitor detects a loop_count that stopped moving.
// A stall is reported once; the next change reports a resume.
type HeartbeatMonitor struct {
	after time.Duration

	seen      bool
	last      uint32
	changedAt time.Time
	stalled   bool
}

// NewHeartbeatMonitor reports a stall after the counter stays unchanged
// for longer than after. after <= 0 disables detection.
func NewHeartbeatMonitor(after time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{after: after}
}

// Observe feeds one loop_count sample taken at at.
func (m *HeartbeatMonitor) Observe(count uint32, at time.Time) HeartbeatEvent {
	if m.after <= 0 {
		return HeartbeatNone
	}
	if !m.seen {
		m.seen = true
		m.last = count
		m.changedAt = at
		return HeartbeatNone
	}

	if count != m.last {
		m.last = count
		m.changedAt = at
		if m.stalled {
			m.stalled = false
			return HeartbeatResumed
		}
		return HeartbeatNone
	}

	if !m.stalled && at.Sub(m.changedAt) > m.after {
		m.stalled = true
		return HeartbeatStalled
	}
	return HeartbeatNone
}

// Stalled reports whether the heartbeat is currently stalled.
func (m *HeartbeatMonitor) Stalled() bool { return m.stalled }
