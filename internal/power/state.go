// internal/power/state.go
package power

// State is the host power state.
type State uint8

const (
	StateColdBoot State = iota
	StateRunning
	StateSleepArmed
	// StateAsleep is the suspension point itself.
	StateAsleep
)

func (s State) String() string {
	switch s {
	case StateColdBoot:
		return "COLD_BOOT"
	case StateRunning:
		return "RUNNING"
	case StateSleepArmed:
		return "SLEEP_ARMED"
	case StateAsleep:
		return "ASLEEP"
	default:
		return "UNKNOWN"
	}
}
