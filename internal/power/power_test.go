// internal/power/power_test.go
package power

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tamzrod/ulp-supervisor/internal/fault"
)

type suspendResult struct {
	set CauseSet
	err error
}

func suspendAsync(s *Sim, ctx context.Context) <-chan suspendResult {
	out := make(chan suspendResult, 1)
	go func() {
		set, err := s.Suspend(ctx)
		out <- suspendResult{set, err}
	}()
	return out
}

// ---- classification ----

func TestClassify_Priority(t *testing.T) {
	cases := []struct {
		set  CauseSet
		want WakeCause
	}{
		{Causes(), CauseColdBoot},
		{Causes(CauseCrash), CauseCrash},
		{Causes(CauseSatellite), CauseSatellite},
		{Causes(CauseTimer), CauseTimer},
		{Causes(CauseSatellite, CauseCrash), CauseSatellite},
		{Causes(CauseTimer, CauseSatellite), CauseTimer},
		{Causes(CauseTimer, CauseSatellite, CauseCrash), CauseTimer},
	}
	for _, c := range cases {
		if got := Classify(c.set); got != c.want {
			t.Fatalf("Classify(%s)=%s want %s", c.set, got, c.want)
		}
	}
}

func TestCauseSet_String(t *testing.T) {
	if got := Causes(CauseCrash, CauseTimer).String(); got != "timer|crash" {
		t.Fatalf("got %q", got)
	}
	if got := CauseSet(0).String(); got != "none" {
		t.Fatalf("got %q", got)
	}
}

// ---- simulated wake sources ----

func TestSuspend_NoSourceArmed(t *testing.T) {
	s := NewSim(clock.NewMock(), nil)
	if _, err := s.Suspend(context.Background()); !errors.Is(err, ErrNoWakeSource) {
		t.Fatalf("expected ErrNoWakeSource, got %v", err)
	}
}

func TestSuspend_SatelliteWake(t *testing.T) {
	s := NewSim(clock.NewMock(), nil)
	s.EnableSatelliteWake()

	done := suspendAsync(s, context.Background())
	s.WakeHost()

	select {
	case res := <-done:
		if res.err != nil || !res.set.Has(CauseSatellite) {
			t.Fatalf("got set=%s err=%v", res.set, res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("suspend did not return on satellite wake")
	}
}

func TestSuspend_StaleSatelliteSignalDiscarded(t *testing.T) {
	mock := clock.NewMock()
	s := NewSim(mock, nil)

	s.WakeHost() // while host awake
	s.EnableSatelliteWake()
	s.EnableTimerWake(time.Second)

	done := suspendAsync(s, context.Background())
	deadline := time.After(2 * time.Second)
	for {
		select {
		case res := <-done:
			if res.set.Has(CauseSatellite) {
				t.Fatalf("stale satellite signal woke the host: %s", res.set)
			}
			if !res.set.Has(CauseTimer) {
				t.Fatalf("expected timer wake, got %s", res.set)
			}
			return
		case <-deadline:
			t.Fatalf("timer wake never fired")
		default:
			mock.Add(time.Second)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestSuspend_CrashWakeLevelTriggered(t *testing.T) {
	trap := fault.NewTrap()
	s := NewSim(clock.NewMock(), trap)

	trap.Raise()
	s.EnableCrashWake()

	set, err := s.Suspend(context.Background())
	if err != nil || !set.Has(CauseCrash) {
		t.Fatalf("got set=%s err=%v", set, err)
	}
}

func TestSuspend_CrashWakeWhileAsleep(t *testing.T) {
	trap := fault.NewTrap()
	s := NewSim(clock.NewMock(), trap)
	s.EnableCrashWake()

	done := suspendAsync(s, context.Background())
	trap.Raise()

	select {
	case res := <-done:
		if !res.set.Has(CauseCrash) {
			t.Fatalf("got %s", res.set)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("crash did not wake the host")
	}
}

func TestSuspend_DisarmsAfterReturn(t *testing.T) {
	s := NewSim(clock.NewMock(), nil)
	s.EnableSatelliteWake()
	s.WakeHost()

	if _, err := s.Suspend(context.Background()); err != nil {
		t.Fatalf("first suspend: %v", err)
	}
	if _, err := s.Suspend(context.Background()); !errors.Is(err, ErrNoWakeSource) {
		t.Fatalf("sources must be re-armed per suspension, got %v", err)
	}
}

func TestSuspend_ContextCancel(t *testing.T) {
	s := NewSim(clock.NewMock(), nil)
	s.EnableSatelliteWake()

	ctx, cancel := context.WithCancel(context.Background())
	done := suspendAsync(s, ctx)
	cancel()

	select {
	case res := <-done:
		if !errors.Is(res.err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("suspend ignored cancellation")
	}
}
