// internal/region/file_unix_test.go
//go:build unix

package region

import (
	"path/filepath"
	"testing"
)

func TestOpenFile_SharedMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtc.bin")

	a, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer a.Close()

	a.Satellite().SetLoopCount(42)
	a.Host().Request()

	b, err := MapFile(path)
	if err != nil {
		t.Fatalf("MapFile: %v", err)
	}
	defer b.Close()

	if got := b.Host().LoopCount(); got != 42 {
		t.Fatalf("second mapping loop_count: got=%d want=42", got)
	}
	if got := b.Host().State(); got != Begin {
		t.Fatalf("second mapping state: got=%s want=BEGIN", got)
	}

	// Re-opening is a cold boot.
	c, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	if got := c.Host().LoopCount(); got != 0 {
		t.Fatalf("reopened region not zeroed: loop_count=%d", got)
	}
}
