// internal/transport/modbus/bridge.go
package modbus

import (
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/pkg/errors"

	"github.com/tamzrod/rt0013/internal/memif"
)

// Protocol limits per request.
const (
	maxReadRegs  = 125 // FC 3
	maxWriteRegs = 123 // FC 16
)

const (
	KindTCP = "modbus-tcp"
	KindRTU = "modbus-rtu"
)

// DefaultBankBase maps each EPC Gen2 bank onto a holding register window.
var DefaultBankBase = map[memif.Bank]uint16{
	memif.BankReserved: 0x0000,
	memif.BankEPC:      0x1000,
	memif.BankTID:      0x2000,
	memif.BankUser:     0x3000,
}

// Config is the reader gateway configuration.
type Config struct {
	Kind     string // KindTCP or KindRTU
	Endpoint string // host:port, or serial device for RTU
	BaudRate int
	DataBits int
	Parity   string // "N", "E" or "O"
	StopBits int
	UnitID   uint8
	Timeout  time.Duration

	TagID    string
	BankBase map[memif.Bank]uint16 // nil means DefaultBankBase
}

// registerClient is the subset of modbus.Client the bridge uses.
type registerClient interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// Bridge implements memif.Transport over a Modbus reader gateway that
// exposes the addressed tag's memory banks as holding registers.
// It serializes requests: the gateway runs one air command at a time.
type Bridge struct {
	mu     sync.Mutex
	closer io.Closer
	client registerClient
	tag    string
	base   map[memif.Bank]uint16
}

// New connects to the gateway.
func New(cfg Config) (*Bridge, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus bridge: endpoint required")
	}
	if cfg.TagID == "" {
		return nil, errors.New("modbus bridge: tag id required")
	}

	var (
		handler interface {
			modbus.ClientHandler
			Connect() error
			Close() error
		}
	)
	switch cfg.Kind {
	case KindTCP, "":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		handler = h
	case KindRTU:
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.BaudRate = cfg.BaudRate
		h.DataBits = cfg.DataBits
		h.Parity = cfg.Parity
		h.StopBits = cfg.StopBits
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		handler = h
	default:
		return nil, errors.Errorf("modbus bridge: unsupported kind %q", cfg.Kind)
	}

	if err := handler.Connect(); err != nil {
		return nil, errors.Wrapf(err, "modbus bridge: connect %s", cfg.Endpoint)
	}
	return newBridge(modbus.NewClient(handler), handler, cfg), nil
}

func newBridge(cli registerClient, closer io.Closer, cfg Config) *Bridge {
	base := cfg.BankBase
	if base == nil {
		base = DefaultBankBase
	}
	return &Bridge{
		closer: closer,
		client: cli,
		tag:    cfg.TagID,
		base:   base,
	}
}

// Close releases the gateway connection.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// ReadBank implements memif.Transport.
func (b *Bridge) ReadBank(tag string, bank memif.Bank, offset, n uint16) ([]byte, error) {
	regs := (int(n) + 1) / 2
	start, err := b.window(tag, bank, offset, regs)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, 0, regs*2)
	for done := 0; done < regs; {
		q := regs - done
		if q > maxReadRegs {
			q = maxReadRegs
		}
		addr := start + uint16(done)
		data, err := b.client.ReadHoldingRegisters(addr, uint16(q))
		if err != nil {
			return nil, errors.Wrapf(err, "modbus bridge: read bank %d reg=%d qty=%d", bank, addr, q)
		}
		if len(data) != q*2 {
			return nil, errors.Errorf("modbus bridge: read bank %d reg=%d: got %d bytes, want %d", bank, addr, len(data), q*2)
		}
		out = append(out, data...)
		done += q
	}
	return out[:n], nil
}

// WriteBank implements memif.Transport.
func (b *Bridge) WriteBank(tag string, bank memif.Bank, offset uint16, data []byte) error {
	if len(data)%2 != 0 {
		return errors.Errorf("modbus bridge: odd write length %d", len(data))
	}
	regs := len(data) / 2
	start, err := b.window(tag, bank, offset, regs)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for done := 0; done < regs; {
		q := regs - done
		if q > maxWriteRegs {
			q = maxWriteRegs
		}
		addr := start + uint16(done)
		if _, err := b.client.WriteMultipleRegisters(addr, uint16(q), data[done*2:(done+q)*2]); err != nil {
			return errors.Wrapf(err, "modbus bridge: write bank %d reg=%d qty=%d", bank, addr, q)
		}
		done += q
	}
	return nil
}

// window resolves the first holding register of a bank access.
func (b *Bridge) window(tag string, bank memif.Bank, offset uint16, regs int) (uint16, error) {
	if tag != b.tag {
		return 0, errors.Errorf("modbus bridge: tag %q is not served by this gateway (have %q)", tag, b.tag)
	}
	if offset%2 != 0 {
		return 0, errors.Errorf("modbus bridge: odd byte offset 0x%04X", offset)
	}
	base, ok := b.base[bank]
	if !ok {
		return 0, errors.Errorf("modbus bridge: bank %d not mapped", bank)
	}
	start := int(base) + int(offset)/2
	if start+regs > 0x10000 {
		return 0, errors.Errorf("modbus bridge: bank %d offset 0x%04X+%d exceeds register space", bank, offset, regs)
	}
	return uint16(start), nil
}
