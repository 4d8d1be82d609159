// internal/host/tracker_test.go
package host

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tamzrod/ulp-supervisor/internal/region"
)

func TestWatermarkTracker_EdgeOnly(t *testing.T) {
	var w WatermarkTracker

	if _, changed := w.Observe(0); changed {
		t.Fatalf("unset watermark must not be reported")
	}
	if old, changed := w.Observe(0x1FE0); !changed || old != 0 {
		t.Fatalf("first value: old=%#x changed=%v", old, changed)
	}
	if _, changed := w.Observe(0x1FE0); changed {
		t.Fatalf("unchanged value reported")
	}
	if old, changed := w.Observe(0x1FC0); !changed || old != 0x1FE0 {
		t.Fatalf("second value: old=%#x changed=%v", old, changed)
	}
}

func TestHeartbeatMonitor_StallAndResume(t *testing.T) {
	m := NewHeartbeatMonitor(200 * time.Millisecond)
	t0 := time.Unix(0, 0)

	steps := []struct {
		count uint32
		at    time.Duration
		want  HeartbeatEvent
	}{
		{1, 0, HeartbeatNone},
		{1, 100 * time.Millisecond, HeartbeatNone},
		{1, 250 * time.Millisecond, HeartbeatStalled},
		{1, 400 * time.Millisecond, HeartbeatNone}, // reported once
		{2, 450 * time.Millisecond, HeartbeatResumed},
		{3, 500 * time.Millisecond, HeartbeatNone},
	}

	for i, s := range steps {
		if got := m.Observe(s.count, t0.Add(s.at)); got != s.want {
			t.Fatalf("step %d: got=%d want=%d", i, got, s.want)
		}
	}
	if m.Stalled() {
		t.Fatalf("monitor still stalled after resume")
	}
}

func TestHeartbeatMonitor_Disabled(t *testing.T) {
	m := NewHeartbeatMonitor(0)
	t0 := time.Unix(0, 0)

	m.Observe(1, t0)
	if got := m.Observe(1, t0.Add(time.Hour)); got != HeartbeatNone {
		t.Fatalf("disabled monitor reported %d", got)
	}
}

func TestObserver_ReadOnly(t *testing.T) {
	r := region.New()
	clk := clock.NewMock()
	o, err := NewObserver(r, clk)
	if err != nil {
		t.Fatalf("NewObserver err=%v", err)
	}

	sat := r.Satellite()
	sat.SetLoopCount(7)
	sat.CheckpointStack(0x50001FE0)
	sat.WriteHistory(0, 1.5)

	obs := o.PollOnce()
	if obs.LoopCount != 7 || obs.MinStackAddress != 0x50001FE0 || obs.History[0] != 1.5 {
		t.Fatalf("observation: %+v", obs)
	}
	if !obs.At.Equal(clk.Now()) {
		t.Fatalf("observation time not taken from clock")
	}
	if r.Host().State() != region.Ready {
		t.Fatalf("observer changed handshake state")
	}
}
