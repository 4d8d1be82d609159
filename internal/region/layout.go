// internal/region/layout.go
package region

// Shared State Region layout constants.
// Both domains address the same bytes. These values define the protocol
// and MUST NOT be configurable.

// ---- FIELD OFFSETS (bytes) ----

// OffLoopCount holds the satellite heartbeat counter (uint32, wraps).
const OffLoopCount = 0

// OffMinStackAddress holds the lowest stack address ever observed (uint32).
// Zero means "not yet set".
const OffMinStackAddress = 4

// OffReadingValue holds the last reading (IEEE-754 float64).
const OffReadingValue = 8

// OffReadingState holds the handshake state (uint32, see State).
const OffReadingState = 16

// OffCrashFlag holds the one-shot crash indication (uint32, 0 or 1).
const OffCrashFlag = 20

// OffHistory is the start of the packed float64 history ring.
const OffHistory = 24

// ---- GEOMETRY ----

// HistoryLength is the fixed number of history samples.
const HistoryLength = 5

// historyStride is the size of one history sample in bytes.
const historyStride = 8

// Size is the total region size in bytes.
const Size = OffHistory + HistoryLength*historyStride

// ---- HANDSHAKE STATES ----

// State is the value of reading.state.
type State uint32

const (
	// Ready is the initial state and the terminal state of every cycle.
	Ready State = 0
	// Begin means the host requested a reading.
	Begin State = 1
	// InProgress means the satellite is acquiring.
	InProgress State = 2
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case Begin:
		return "BEGIN"
	case InProgress:
		return "IN_PROGRESS"
	default:
		return "UNKNOWN"
	}
}
