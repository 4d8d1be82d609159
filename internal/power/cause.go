// internal/power/cause.go
package power

import "strings"

// WakeCause classifies why the host is running.
type WakeCause uint8

const (
	CauseColdBoot WakeCause = iota
	CauseTimer
	CauseSatellite
	CauseCrash
)

func (c WakeCause) String() string {
	switch c {
	case CauseColdBoot:
		return "cold_boot"
	case CauseTimer:
		return "timer"
	case CauseSatellite:
		return "satellite"
	case CauseCrash:
		return "crash"
	default:
		return "unknown"
	}
}

// CauseSet is every wake source that fired during one suspension.
// Several can fire together; Classify picks one.
type CauseSet uint8

// Causes builds a set.
func Causes(cs ...WakeCause) CauseSet {
	var s CauseSet
	for _, c := range cs {
		s = s.With(c)
	}
	return s
}

func (s CauseSet) With(c WakeCause) CauseSet { return s | 1<<c }

func (s CauseSet) Has(c WakeCause) bool { return s&(1<<c) != 0 }

func (s CauseSet) Empty() bool { return s == 0 }

func (s CauseSet) String() string {
	if s.Empty() {
		return "none"
	}
	var parts []string
	for _, c := range []WakeCause{CauseTimer, CauseSatellite, CauseCrash, CauseColdBoot} {
		if s.Has(c) {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, "|")
}

// Classify picks the cause an activation is reported under.
// Priority: timer, satellite, crash. An empty set is a cold boot.
func Classify(s CauseSet) WakeCause {
	switch {
	case s.Has(CauseTimer):
		return CauseTimer
	case s.Has(CauseSatellite):
		return CauseSatellite
	case s.Has(CauseCrash):
		return CauseCrash
	default:
		return CauseColdBoot
	}
}
