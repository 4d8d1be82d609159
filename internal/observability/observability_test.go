// internal/observability/observability_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"off":     zerolog.Disabled,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", in, got, want)
		}
	}
}

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "ulp-test", "info")

	log.Debug().Msg("hidden")
	log.Info().Str("event", "wake").Msg("host wake")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["app"] != "ulp-test" || entry["event"] != "wake" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(wakesTotal.WithLabelValues("timer"))
	RecordWake("timer")
	if got := testutil.ToFloat64(wakesTotal.WithLabelValues("timer")); got != before+1 {
		t.Fatalf("wakes_total{timer}: got=%v want=%v", got, before+1)
	}

	RecordRequest(false)
	if got := testutil.ToFloat64(requestsTotal.WithLabelValues("ignored")); got < 1 {
		t.Fatalf("requests_total{ignored} not recorded")
	}

	SetWatermark(0x50001F00)
	if got := testutil.ToFloat64(watermarkGauge); got != float64(0x50001F00) {
		t.Fatalf("watermark gauge: got=%v", got)
	}
}

func TestRegisterMetrics_Idempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordCrash()
	RecordReading(true)
	RecordStall()
	RecordTelemetryError()
	SetLoopCount(42)

	if got := testutil.ToFloat64(loopCountGauge); got != 42 {
		t.Fatalf("loop_count gauge: got=%v", got)
	}
}
