// internal/tag/manager.go
package tag

import (
	"errors"
	"log"

	"github.com/tamzrod/rt0013/internal/regmap"
)

// Registers is the register store a Manager works through.
// *regcache.Cache implements it.
type Registers interface {
	Get(addr uint16) (uint16, error)
	GetRange(addr uint16, n int) ([]uint16, error)
	Set(addr, v uint16) error
	PrefetchAll() error
	Reset()
}

// Config carries optional collaborators.
type Config struct {
	Logger *log.Logger
}

// Manager exposes the logical view of one RT0013 tag.
// Every read goes through the register store, so a prefetch turns
// a batch of accessor calls into cache hits.
type Manager struct {
	regs Registers
	log  *log.Logger
}

// New creates a Manager over regs.
func New(regs Registers, cfg Config) (*Manager, error) {
	if regs == nil {
		return nil, errors.New("tag: register store required")
	}
	m := &Manager{regs: regs, log: cfg.Logger}
	if m.log == nil {
		m.log = log.Default()
	}
	return m, nil
}

// ReadRegister returns one register value.
func (m *Manager) ReadRegister(addr uint16) (uint16, error) { return m.regs.Get(addr) }

// WriteRegister writes one register and verifies it.
func (m *Manager) WriteRegister(addr, v uint16) error { return m.regs.Set(addr, v) }

// ReadRegisters returns n consecutive register values.
func (m *Manager) ReadRegisters(addr uint16, n int) ([]uint16, error) {
	return m.regs.GetRange(addr, n)
}

// PrefetchAll loads the whole register map.
func (m *Manager) PrefetchAll() error { return m.regs.PrefetchAll() }

// ResetCache forgets every cached register.
func (m *Manager) ResetCache() { m.regs.Reset() }

func (m *Manager) bit(addr uint16, pos uint) (bool, error) {
	v, err := m.regs.Get(addr)
	if err != nil {
		return false, err
	}
	return regmap.Bit(v, pos), nil
}

// setBit is a read-modify-write; an unchanged register is not rewritten.
func (m *Manager) setBit(addr uint16, pos uint, on bool) error {
	v, err := m.regs.Get(addr)
	if err != nil {
		return err
	}
	next := regmap.SetBit(v, pos, on)
	if next == v {
		return nil
	}
	return m.regs.Set(addr, next)
}

func (m *Manager) get32(high, low uint16) (uint32, error) {
	h, err := m.regs.Get(high)
	if err != nil {
		return 0, err
	}
	l, err := m.regs.Get(low)
	if err != nil {
		return 0, err
	}
	return regmap.Word32(h, l), nil
}

// set32 writes the low word first.
func (m *Manager) set32(high, low uint16, v uint32) error {
	h, l := regmap.Split32(v)
	if err := m.regs.Set(low, l); err != nil {
		return err
	}
	return m.regs.Set(high, h)
}
