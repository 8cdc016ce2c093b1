// internal/transport/modbus/bridge_test.go
package modbus

import (
	"errors"
	"testing"

	"github.com/tamzrod/rt0013/internal/memif"
)

type fakeGateway struct {
	regs   [0x10000]uint16
	reads  []uint16 // quantities
	writes []uint16
	fail   bool
}

func (f *fakeGateway) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	if f.fail {
		return nil, errors.New("gateway down")
	}
	f.reads = append(f.reads, quantity)
	out := make([]byte, 0, int(quantity)*2)
	for i := 0; i < int(quantity); i++ {
		r := f.regs[int(address)+i]
		out = append(out, byte(r>>8), byte(r))
	}
	return out, nil
}

func (f *fakeGateway) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	if f.fail {
		return nil, errors.New("gateway down")
	}
	f.writes = append(f.writes, quantity)
	for i := 0; i < int(quantity); i++ {
		f.regs[int(address)+i] = uint16(value[2*i])<<8 | uint16(value[2*i+1])
	}
	return nil, nil
}

func newTestBridge(gw *fakeGateway) *Bridge {
	return newBridge(gw, nil, Config{TagID: "tag-1"})
}

func TestReadBank_MapsBankAndOffset(t *testing.T) {
	gw := &fakeGateway{}
	gw.regs[0x3000+3] = 0x01AC // reply slot of the user bank
	b := newTestBridge(gw)

	got, err := b.ReadBank("tag-1", memif.BankUser, memif.AddrReply, 2)
	if err != nil {
		t.Fatalf("ReadBank err=%v", err)
	}
	if got[0] != 0x01 || got[1] != 0xAC {
		t.Fatalf("got % X", got)
	}
}

func TestReadBank_OddLengthTrimmed(t *testing.T) {
	gw := &fakeGateway{}
	gw.regs[0x1000] = 0xAABB
	b := newTestBridge(gw)

	got, err := b.ReadBank("tag-1", memif.BankEPC, 0, 1)
	if err != nil || len(got) != 1 || got[0] != 0xAA {
		t.Fatalf("got % X err=%v", got, err)
	}
}

func TestReadBank_Chunks(t *testing.T) {
	gw := &fakeGateway{}
	b := newTestBridge(gw)

	if _, err := b.ReadBank("tag-1", memif.BankUser, 0, 408); err != nil {
		t.Fatalf("ReadBank err=%v", err)
	}
	if len(gw.reads) != 2 || gw.reads[0] != maxReadRegs || gw.reads[1] != 204-maxReadRegs {
		t.Fatalf("reads=%v", gw.reads)
	}
}

func TestWriteBank_Chunks(t *testing.T) {
	gw := &fakeGateway{}
	b := newTestBridge(gw)

	data := make([]byte, 400)
	data[398], data[399] = 0x12, 0x34
	if err := b.WriteBank("tag-1", memif.BankUser, memif.AddrData, data); err != nil {
		t.Fatalf("WriteBank err=%v", err)
	}
	if len(gw.writes) != 2 || gw.writes[0] != maxWriteRegs || gw.writes[1] != 200-maxWriteRegs {
		t.Fatalf("writes=%v", gw.writes)
	}
	if gw.regs[0x3000+4+199] != 0x1234 {
		t.Fatalf("last register=0x%04X", gw.regs[0x3000+4+199])
	}
}

func TestBridge_Rejects(t *testing.T) {
	gw := &fakeGateway{}
	b := newTestBridge(gw)

	if _, err := b.ReadBank("other", memif.BankUser, 0, 2); err == nil {
		t.Fatalf("foreign tag accepted")
	}
	if _, err := b.ReadBank("tag-1", memif.BankUser, 1, 2); err == nil {
		t.Fatalf("odd offset accepted")
	}
	if err := b.WriteBank("tag-1", memif.BankUser, 0, []byte{1}); err == nil {
		t.Fatalf("odd write accepted")
	}
	if _, err := b.ReadBank("tag-1", memif.Bank(9), 0, 2); err == nil {
		t.Fatalf("unmapped bank accepted")
	}
	if len(gw.reads)+len(gw.writes) != 0 {
		t.Fatalf("rejected requests reached the gateway")
	}
	gw.fail = true
	if _, err := b.ReadBank("tag-1", memif.BankUser, 0, 2); err == nil {
		t.Fatalf("gateway error swallowed")
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{TagID: "t"}); err == nil {
		t.Fatalf("missing endpoint accepted")
	}
	if _, err := New(Config{Endpoint: "x:502"}); err == nil {
		t.Fatalf("missing tag accepted")
	}
	if _, err := New(Config{Endpoint: "x:502", TagID: "t", Kind: "udp"}); err == nil {
		t.Fatalf("unknown kind accepted")
	}
}
