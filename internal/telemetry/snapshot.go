// internal/telemetry/snapshot.go
package telemetry

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health       uint16
	WakeCause    uint16
	PowerState   uint16
	ReadingState uint16

	LoopCount       uint32
	MinStackAddress uint32
	BootCount       uint32
	CrashCount      uint32

	Value   float64
	History [5]float64
}
