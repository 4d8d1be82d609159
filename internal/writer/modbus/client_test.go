// internal/writer/modbus/client_test.go
package modbus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/goburrow/modbus"
)

type fcWrite struct {
	addr, qty uint16
	payload   []byte
}

type fakeRegisterWriter struct {
	calls []fcWrite
	err   error
}

func (f *fakeRegisterWriter) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, fcWrite{addr: address, qty: quantity, payload: append([]byte(nil), value...)})
	return nil, nil
}

func newTestClient(w registerWriter) *EndpointClient {
	// Never dialed: the fake stands in for the wire.
	return &EndpointClient{
		endpoint: "test",
		handler:  modbus.NewTCPClientHandler("127.0.0.1:0"),
		client:   w,
	}
}

func TestWriteRegisters_BigEndianPayload(t *testing.T) {
	f := &fakeRegisterWriter{}
	c := newTestClient(f)

	if err := c.WriteRegisters(9, 96, []uint16{0x1234, 0xABCD}); err != nil {
		t.Fatalf("WriteRegisters: %v", err)
	}
	if len(f.calls) != 1 {
		t.Fatalf("calls: got=%d want=1", len(f.calls))
	}
	got := f.calls[0]
	if got.addr != 96 || got.qty != 2 || !bytes.Equal(got.payload, []byte{0x12, 0x34, 0xAB, 0xCD}) {
		t.Fatalf("call: %+v", got)
	}
	if c.handler.SlaveId != 9 {
		t.Fatalf("unit id not applied: %d", c.handler.SlaveId)
	}
}

func TestWriteRegisters_SplitsLargeBlocks(t *testing.T) {
	f := &fakeRegisterWriter{}
	c := newTestClient(f)

	regs := make([]uint16, MaxWriteRegisters+10)
	if err := c.WriteRegisters(1, 1000, regs); err != nil {
		t.Fatalf("WriteRegisters: %v", err)
	}
	if len(f.calls) != 2 {
		t.Fatalf("calls: got=%d want=2", len(f.calls))
	}
	if f.calls[0].qty != MaxWriteRegisters || f.calls[1].addr != 1000+MaxWriteRegisters || f.calls[1].qty != 10 {
		t.Fatalf("split: %+v / %+v", f.calls[0].qty, f.calls[1])
	}
}

func TestWriteRegisters_ErrorWrapped(t *testing.T) {
	boom := errors.New("exception 2")
	c := newTestClient(&fakeRegisterWriter{err: boom})

	if err := c.WriteRegisters(1, 0, []uint16{1}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestWriteRegisters_EmptyIsNoop(t *testing.T) {
	f := &fakeRegisterWriter{}
	if err := newTestClient(f).WriteRegisters(1, 0, nil); err != nil || len(f.calls) != 0 {
		t.Fatalf("empty write: err=%v calls=%d", err, len(f.calls))
	}
}
