// internal/writer/ingest/client_test.go
package ingest

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

// serveOnce accepts one connection, decodes one packet and answers status.
func serveOnce(t *testing.T, status byte) (string, <-chan Packet) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan Packet, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		p, err := ReadPacket(conn)
		if err != nil {
			return
		}
		got <- p
		_, _ = conn.Write([]byte{status})
	}()

	return ln.Addr().String(), got
}

func TestPacket_HeaderLayout(t *testing.T) {
	pkt := EncodePacket(Packet{Area: AreaHoldingRegisters, UnitID: 7, Addr: 0x0102, Regs: []uint16{0xAABB}})

	want := []byte{'R', 'I', 0x01, 0x03, 0x00, 0x07, 0x01, 0x02, 0x00, 0x01, 0xAA, 0xBB}
	if !bytes.Equal(pkt, want) {
		t.Fatalf("packet: got=% x want=% x", pkt, want)
	}

	p, err := ReadPacket(bytes.NewReader(pkt))
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if p.UnitID != 7 || p.Addr != 0x0102 || len(p.Regs) != 1 || p.Regs[0] != 0xAABB {
		t.Fatalf("decoded: %+v", p)
	}
}

func TestReadPacket_BadMagic(t *testing.T) {
	pkt := EncodePacket(Packet{Regs: []uint16{1}})
	pkt[0] = 'X'
	if _, err := ReadPacket(bytes.NewReader(pkt)); err == nil {
		t.Fatalf("expected bad magic error")
	}
}

func TestWriteRegisters_OK(t *testing.T) {
	addr, got := serveOnce(t, StatusOK)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewEndpointClient: %v", err)
	}
	if err := c.WriteRegisters(2, 96, []uint16{1, 2, 3}); err != nil {
		t.Fatalf("WriteRegisters: %v", err)
	}

	p := <-got
	if p.Area != AreaHoldingRegisters || p.UnitID != 2 || p.Addr != 96 || len(p.Regs) != 3 {
		t.Fatalf("server saw %+v", p)
	}
}

func TestWriteRegisters_Rejected(t *testing.T) {
	addr, _ := serveOnce(t, StatusRejected)

	c, _ := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	if err := c.WriteRegisters(1, 0, []uint16{1}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}
