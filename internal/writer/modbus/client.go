// internal/writer/modbus/client.go
package modbus

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"
)

// maxWriteRegs is the FC16 quantity limit.
const maxWriteRegs = 123

// EndpointClient owns one TCP connection to a status memory endpoint.
// Writes are serialized because SlaveId is switched per write.
type EndpointClient struct {
	mu       sync.Mutex
	endpoint string
	handler  *modbus.TCPClientHandler
	client   modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, errors.Wrapf(err, "writer modbus: connect %s", cfg.Endpoint)
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

// WriteRegisters writes regs with one FC16 request.
// A failed write drops the socket; the handler dials again on the next
// request, which the status writer makes a full block re-assert.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}
	if len(regs) > maxWriteRegs {
		return errors.Errorf("writer modbus: %d registers exceed one FC16 request", len(regs))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID
	if _, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), encodeRegisters(regs)); err != nil {
		_ = c.handler.Close()
		return errors.Wrapf(err, "writer modbus: ep=%s unit=%d addr=%d qty=%d", c.endpoint, unitID, addr, len(regs))
	}
	return nil
}

// encodeRegisters lays regs out in Modbus wire order (big-endian).
func encodeRegisters(regs []uint16) []byte {
	out := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(out[2*i:], r)
	}
	return out
}
