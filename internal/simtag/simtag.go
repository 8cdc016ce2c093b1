// internal/simtag/simtag.go
package simtag

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/tamzrod/rt0013/internal/memif"
	"github.com/tamzrod/rt0013/internal/regmap"
)

const userBankBytes = int(memif.AddrData) + memif.MaxDataBytes

// Command is one handshake as seen by the tag firmware.
type Command struct {
	ID      byte
	Code    byte
	Address uint16
	Size    uint16
}

// Tag is an in-memory RT0013 implementing memif.Transport.
// It executes commands on trigger reads the way the tag firmware does,
// and exposes fault knobs for tests and dry runs.
type Tag struct {
	mu sync.Mutex

	id   string
	regs []uint16
	user [userBankBytes]byte
	pins map[uint16]uint16

	// Fault injection.
	FailCalls int  // fail the next N transport calls
	NACK      bool // answer every command with NACK
	Stale     bool // never update the reply slot
	ReplyCode byte // when non-zero, overrides the reply code

	Calls    int
	Commands []Command
}

// New returns a tag with a factory-fresh register image.
func New(id string) *Tag {
	t := &Tag{
		id:   id,
		regs: make([]uint16, int(regmap.RegEnd)+1),
		pins: map[uint16]uint16{},
	}
	t.regs[regmap.RegFWRevision] = 0x0103
	t.regs[regmap.RegHWRevision] = 0x0200
	t.regs[regmap.RegBinEnaCounter] = 1<<regmap.BitBin0TEn | 1<<regmap.BitBin0HEn
	t.regs[regmap.RegBinEnaSampleStore] = 1<<regmap.BitBin0TEn | 1<<regmap.BitBin0HEn
	t.regs[regmap.RegStatus] = 1<<regmap.BitBatMS | 1<<regmap.BitBatLS
	for _, ch := range regmap.Channels {
		for bin := 0; bin < regmap.BinCount; bin++ {
			if a, err := regmap.BinAddr(regmap.OptSampleTime, ch, bin); err == nil {
				t.regs[a] = 0x1E
			}
			if a, err := regmap.BinAddr(regmap.OptThreshold, ch, bin); err == nil {
				t.regs[a] = regmap.ThresholdNever
			}
		}
		start, n, _ := regmap.LogArea(ch)
		for i := 0; i < n; i++ {
			t.regs[int(start)+i] = regmap.Sentinel
		}
	}
	return t
}

// ID returns the tag identifier.
func (t *Tag) ID() string { return t.id }

// Reg returns a register value without going through the air interface.
func (t *Tag) Reg(addr uint16) uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.regs[addr]
}

// SetReg sets a register value without going through the air interface.
func (t *Tag) SetReg(addr, v uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regs[addr] = v
}

// SetRegs copies values starting at addr.
func (t *Tag) SetRegs(addr uint16, vals []uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	copy(t.regs[addr:], vals)
}

// Pin makes addr read back v regardless of what is written.
func (t *Tag) Pin(addr, v uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pins[addr] = v
	t.regs[addr] = v
}

// ReadBank implements memif.Transport.
func (t *Tag) ReadBank(tag string, bank memif.Bank, offset, n uint16) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.call(tag); err != nil {
		return nil, err
	}

	switch bank {
	case memif.CmdBank:
		end := int(offset) + int(n)
		if end > userBankBytes {
			return nil, fmt.Errorf("simtag: user bank read 0x%04X+%d out of range", offset, n)
		}
		out := make([]byte, n)
		copy(out, t.user[offset:end])
		return out, nil
	case memif.TrigBank:
		if offset == memif.AddrTrigger {
			t.execute()
		}
		return make([]byte, n), nil
	default:
		return make([]byte, n), nil
	}
}

// WriteBank implements memif.Transport.
func (t *Tag) WriteBank(tag string, bank memif.Bank, offset uint16, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.call(tag); err != nil {
		return err
	}
	if bank != memif.CmdBank {
		return fmt.Errorf("simtag: bank %d is read-only", bank)
	}
	end := int(offset) + len(data)
	if end > userBankBytes {
		return fmt.Errorf("simtag: user bank write 0x%04X+%d out of range", offset, len(data))
	}
	copy(t.user[offset:end], data)
	return nil
}

func (t *Tag) call(tag string) error {
	t.Calls++
	if tag != t.id {
		return fmt.Errorf("simtag: tag %q not in field", tag)
	}
	if t.FailCalls > 0 {
		t.FailCalls--
		return fmt.Errorf("simtag: injected transport failure")
	}
	return nil
}

func (t *Tag) execute() {
	word := binary.BigEndian.Uint16(t.user[memif.AddrCommand:])
	cmd := Command{
		ID:      byte(word >> 8),
		Code:    byte(word),
		Address: binary.BigEndian.Uint16(t.user[memif.AddrAddress:]),
		Size:    binary.BigEndian.Uint16(t.user[memif.AddrSize:]),
	}
	t.Commands = append(t.Commands, cmd)
	if t.Stale {
		return
	}

	code := memif.ReplyACK
	end := int(cmd.Address) + int(cmd.Size)
	switch {
	case t.NACK, cmd.Size == 0, int(cmd.Size) > memif.MaxWords, end > len(t.regs):
		code = memif.ReplyNACK
	case cmd.Code == memif.CmdRead:
		for i := 0; i < int(cmd.Size); i++ {
			binary.BigEndian.PutUint16(t.user[int(memif.AddrData)+2*i:], t.regs[int(cmd.Address)+i])
		}
	case cmd.Code == memif.CmdWrite:
		for i := 0; i < int(cmd.Size); i++ {
			addr := cmd.Address + uint16(i)
			v := binary.BigEndian.Uint16(t.user[int(memif.AddrData)+2*i:])
			t.store(addr, v)
		}
	default:
		code = memif.ReplyNACK
	}
	if t.ReplyCode != 0 {
		code = t.ReplyCode
	}
	t.user[memif.AddrReply] = cmd.ID
	t.user[memif.AddrReply+1] = code
}

func (t *Tag) store(addr, v uint16) {
	if p, ok := t.pins[addr]; ok {
		t.regs[addr] = p
		return
	}
	if addr == regmap.RegControl && regmap.Bit(v, regmap.BitCtrlRST) {
		// The reset completes immediately: the log is cleared and RST drops.
		t.resetLog()
		v = regmap.SetBit(v, regmap.BitCtrlRST, false)
	}
	t.regs[addr] = v
}

func (t *Tag) resetLog() {
	for _, ch := range regmap.Channels {
		start, n, _ := regmap.LogArea(ch)
		for i := 0; i < n; i++ {
			t.regs[int(start)+i] = regmap.Sentinel
		}
		if a, err := regmap.SamplesNumAddr(ch); err == nil {
			t.regs[a] = 0
		}
	}
}
