// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// MaxWriteRegisters is the FC16 per-request register limit.
const MaxWriteRegisters = 123

// registerWriter is the slice of modbus.Client the telemetry path uses.
type registerWriter interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// EndpointClient writes telemetry registers to one Modbus TCP endpoint.
// Requests are serialized: the unit id lives on the shared handler.
// A failed write drops the connection; the handler redials on the next one.
type EndpointClient struct {
	mu       sync.Mutex
	endpoint string
	handler  *modbus.TCPClientHandler
	client   registerWriter
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// NewEndpointClient dials the endpoint once so a bad address fails at startup.
func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("writer modbus: connect %s: %w", cfg.Endpoint, err)
	}

	return &EndpointClient{
		endpoint: cfg.Endpoint,
		handler:  h,
		client:   modbus.NewClient(h),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes holding registers (FC 16), split into requests of
// at most MaxWriteRegisters.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	for off := 0; off < len(regs); off += MaxWriteRegisters {
		end := min(off+MaxWriteRegisters, len(regs))
		chunk := regs[off:end]
		at := addr + uint16(off)

		if _, err := c.client.WriteMultipleRegisters(at, uint16(len(chunk)), packRegisters(chunk)); err != nil {
			_ = c.handler.Close()
			return fmt.Errorf("writer modbus: %s unit %d addr %d (%d regs): %w", c.endpoint, unitID, at, len(chunk), err)
		}
	}
	return nil
}

// Register payloads are big-endian on the wire.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, 2*len(regs))
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
