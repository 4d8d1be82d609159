// internal/writer/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

//
// ---- Raw Ingest v1 packet (LOCKED) ----
//
// Layout (10 bytes header, big-endian):
// 0–1  Magic "RI"
// 2    Version (0x01)
// 3    Area (3 = holding registers)
// 4–5  UnitID
// 6–7  Address
// 8–9  Count (registers)
// 10+  Payload (count*2 bytes)
//
// The endpoint answers with one status byte.
//

const (
	HeaderLen = 10

	versionV1 byte = 0x01

	AreaHoldingRegisters byte = 3

	StatusOK       byte = 0x00
	StatusRejected byte = 0x01
)

var magic = [2]byte{'R', 'I'}

// ErrRejected is returned when the endpoint refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// Packet is one decoded ingest packet.
type Packet struct {
	Area   byte
	UnitID uint8
	Addr   uint16
	Regs   []uint16
}

// EncodePacket builds the wire form of p.
func EncodePacket(p Packet) []byte {
	buf := make([]byte, HeaderLen+2*len(p.Regs))
	copy(buf[0:2], magic[:])
	buf[2] = versionV1
	buf[3] = p.Area
	binary.BigEndian.PutUint16(buf[4:6], uint16(p.UnitID))
	binary.BigEndian.PutUint16(buf[6:8], p.Addr)
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(p.Regs)))
	for i, r := range p.Regs {
		binary.BigEndian.PutUint16(buf[HeaderLen+2*i:], r)
	}
	return buf
}

// ReadPacket reads one packet from r.
func ReadPacket(r io.Reader) (Packet, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Packet{}, err
	}
	if hdr[0] != magic[0] || hdr[1] != magic[1] {
		return Packet{}, errors.New("writer ingest: bad magic")
	}
	if hdr[2] != versionV1 {
		return Packet{}, fmt.Errorf("writer ingest: unsupported version 0x%02x", hdr[2])
	}

	count := binary.BigEndian.Uint16(hdr[8:10])
	payload := make([]byte, 2*int(count))
	if _, err := io.ReadFull(r, payload); err != nil {
		return Packet{}, err
	}

	p := Packet{
		Area:   hdr[3],
		UnitID: uint8(binary.BigEndian.Uint16(hdr[4:6])),
		Addr:   binary.BigEndian.Uint16(hdr[6:8]),
		Regs:   make([]uint16, count),
	}
	for i := range p.Regs {
		p.Regs[i] = binary.BigEndian.Uint16(payload[2*i:])
	}
	return p, nil
}

// ---- client ----

// EndpointClient is a stateless Raw Ingest v1 client: one packet per
// connection.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters sends one holding-register packet and waits for the status byte.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	pkt := EncodePacket(Packet{
		Area:   AreaHoldingRegisters,
		UnitID: unitID,
		Addr:   addr,
		Regs:   regs,
	})

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(conn, status[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch status[0] {
	case StatusOK:
		return nil
	case StatusRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", status[0])
	}
}
