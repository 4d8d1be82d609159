// internal/telemetry/encode_test.go
package telemetry

import "testing"

func TestEncode_SlotPlacement(t *testing.T) {
	s := Snapshot{
		Health:          HealthOK,
		WakeCause:       2,
		PowerState:      1,
		ReadingState:    1,
		LoopCount:       0x00010002,
		MinStackAddress: 0x50001F00,
		BootCount:       7,
		CrashCount:      1,
		Value:           3.25,
		History:         [5]float64{1, 2, 3, 4, 5},
	}

	regs := Encode(s)

	if len(regs) != SlotsPerDevice {
		t.Fatalf("block size: got=%d want=%d", len(regs), SlotsPerDevice)
	}
	if regs[SlotHealthCode] != HealthOK || regs[SlotWakeCause] != 2 || regs[SlotReadingState] != 1 {
		t.Fatalf("header slots wrong: %v", regs[:4])
	}
	if regs[SlotLoopCount] != 0x0001 || regs[SlotLoopCount+1] != 0x0002 {
		t.Fatalf("loop_count not big-endian: %v", regs[SlotLoopCount:SlotLoopCount+2])
	}
	if got := DecodeU32(regs[SlotMinStackAddress:]); got != 0x50001F00 {
		t.Fatalf("watermark: got=%#x", got)
	}
	if got := DecodeF64(regs[SlotValue:]); got != 3.25 {
		t.Fatalf("value: got=%v", got)
	}
	for i := 0; i < 5; i++ {
		if got := DecodeF64(regs[SlotHistoryStart+4*i:]); got != float64(i+1) {
			t.Fatalf("history[%d]: got=%v", i, got)
		}
	}
	for i := SlotReservedStart; i <= SlotDeviceNameEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("slot %d should be zero, got %d", i, regs[i])
		}
	}
}

func TestLayout_HistoryEndsBeforeReserved(t *testing.T) {
	if SlotHistoryStart+SlotHistorySlots != SlotReservedStart {
		t.Fatalf("history overlaps reserved range")
	}
	if SlotDeviceNameEnd != SlotsPerDevice-1 {
		t.Fatalf("device name must end the block")
	}
}

func TestEncodeDeviceName(t *testing.T) {
	regs := EncodeDeviceName("ULP-01\x01 this name is too long")
	if len(regs) != SlotDeviceNameSlots {
		t.Fatalf("name slots: got=%d", len(regs))
	}
	if regs[0] != uint16('U')<<8|uint16('L') {
		t.Fatalf("first pair: got=%#x", regs[0])
	}
	// control byte sanitized
	if lo := byte(regs[3]); lo != ' ' || byte(regs[3]>>8) != '?' {
		t.Fatalf("sanitize: got=%#x", regs[3])
	}
}
