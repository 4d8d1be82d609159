// internal/config/config.go
package config

type Config struct {
	Satellite SatelliteConfig `yaml:"satellite"`
	Host      HostConfig      `yaml:"host"`
	Crash     CrashConfig     `yaml:"crash"`
	Region    RegionConfig    `yaml:"region"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ---- SATELLITE ----

type SatelliteConfig struct {
	ImagePath          string      `yaml:"image_path"` // empty => built-in image
	TickPeriodUs       uint32      `yaml:"tick_period_us"`
	AcquisitionDelayUs uint32      `yaml:"acquisition_delay_us"`
	WakeEvery          *uint32     `yaml:"wake_every"` // nil => 5, 0 => disabled
	AcquireDepth       int         `yaml:"acquire_depth"`
	Stack              StackConfig `yaml:"stack"`
}

type StackConfig struct {
	Top   uint32 `yaml:"top"`
	Frame uint32 `yaml:"frame"`
	Limit uint32 `yaml:"limit"`
}

// ---- HOST ----

type HostConfig struct {
	Iterations     int        `yaml:"iterations"` // per activation; 0 => never sleep
	PollIntervalMs int        `yaml:"poll_interval_ms"`
	StallAfterMs   int        `yaml:"stall_after_ms"` // 0 => 2 tick periods
	Wake           WakeConfig `yaml:"wake"`
}

type WakeConfig struct {
	TimerMs   int  `yaml:"timer_ms"` // 0 => no timer wake
	Satellite bool `yaml:"satellite"`
	Crash     bool `yaml:"crash"`
}

// ---- CRASH MONITOR ----

type CrashConfig struct {
	Mode string `yaml:"mode"` // interrupt | poll | both
}

// ---- SHARED REGION ----

type RegionConfig struct {
	Path string `yaml:"path"` // empty => in-process buffer
}

// ---- TELEMETRY (optional, opt-in) ----

const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

type TelemetryConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Transport  string `yaml:"transport"` // modbus | ingest
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	DeviceName string `yaml:"device_name"`
}

// Enabled reports whether telemetry delivery is configured.
func (t TelemetryConfig) Enabled() bool { return t.Endpoint != "" }

// ---- LOGGING / METRICS ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty => no /metrics listener
}
