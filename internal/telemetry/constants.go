// internal/telemetry/constants.go
package telemetry

// Telemetry Block layout constants.
// These values define the protocol and MUST NOT be configurable.
// Every slot is one 16-bit holding register. Multi-register values are
// big-endian (high word first).

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per supervised device.
const SlotsPerDevice = 48

// ---- SLOT INDICES ----

// SlotHealthCode holds the supervisor's view of satellite health.
const SlotHealthCode = 0

// SlotWakeCause holds the cause of the current host activation.
const SlotWakeCause = 1

// SlotPowerState holds the host power state.
const SlotPowerState = 2

// SlotReadingState holds the handshake state (0 READY, 1 BEGIN, 2 IN_PROGRESS).
const SlotReadingState = 3

// SlotLoopCount holds loop_count (2 slots).
const SlotLoopCount = 4

// SlotMinStackAddress holds the stack watermark (2 slots).
const SlotMinStackAddress = 6

// SlotBootCount holds the host activation counter (2 slots).
const SlotBootCount = 8

// SlotCrashCount holds acknowledged crashes (2 slots).
const SlotCrashCount = 10

// SlotValue holds the last harvested reading as IEEE-754 float64 (4 slots).
const SlotValue = 12

// SlotHistoryStart is the first history slot; each sample takes 4 slots.
const SlotHistoryStart = 16

// SlotHistorySlots is the number of slots used by the history ring.
const SlotHistorySlots = 5 * 4

// ---- RESERVED RANGE ----

// Slots 36–39 are reserved for future use.
const SlotReservedStart = 36
const SlotReservedEnd = 39

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the block.
const SlotDeviceNameStart = 40

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents boot state before the first observation.
const HealthUnknown uint16 = 0

// HealthOK represents a ticking satellite.
const HealthOK uint16 = 1

// HealthCrashed represents an observed satellite crash.
const HealthCrashed uint16 = 2

// HealthStalled represents a satellite whose heartbeat stopped.
const HealthStalled uint16 = 3
