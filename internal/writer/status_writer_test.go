// internal/writer/status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/rt0013/internal/status"
)

// ---- fake endpoint client ----

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("endpoint down")
	}
	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: cp})
	return nil
}

func (f *fakeEndpointClient) last() writeCall { return f.writes[len(f.writes)-1] }

func testPlan() *StatusPlan {
	return &StatusPlan{
		TagID:    "t1",
		Endpoint: "status-endpoint",
		UnitID:   1,
		BaseSlot: 2,
		Name:     "COLD-01",
	}
}

func TestNewStatusWriter_Disabled(t *testing.T) {
	if _, enabled := NewStatusWriter(nil, &fakeEndpointClient{}); enabled {
		t.Fatalf("nil plan must disable status")
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()

	sw, enabled := NewStatusWriter(plan, cli)
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{Health: status.HealthOK, TagStatus: 0x0003, LastSampleT: 0x0500}
	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	w := cli.last()
	if len(w.regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(w.regs))
	}
	if w.addr != 2*status.SlotsPerDevice || w.unitID != 1 {
		t.Fatalf("full block at unit=%d addr=%d", w.unitID, w.addr)
	}
	if w.regs[status.SlotTagStatus] != 0x0003 || w.regs[status.SlotLastSampleT] != 0x0500 {
		t.Fatalf("live slots not in full block: %v", w.regs)
	}

	expectedNameRegs := status.EncodeName(plan.Name)
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if w.regs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, w.regs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := first
	second.Health = status.HealthError
	second.LastErrorCode = 7

	before := len(cli.writes)
	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	if got := len(cli.writes) - before; got != 2 {
		t.Fatalf("expected 2 slot writes, got %d", got)
	}
	for _, w := range cli.writes[before:] {
		if len(w.regs) != 1 {
			t.Fatalf("incremental write of %d regs", len(w.regs))
		}
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewStatusWriter(testPlan(), cli)

	s := status.Snapshot{Health: status.HealthOK, SamplesH: 4}
	_ = sw.WriteStatus(s)
	before := len(cli.writes)

	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(cli.writes) != before {
		t.Fatalf("unchanged snapshot produced writes")
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := testPlan()
	sw, _ := NewStatusWriter(plan, cli)

	errSnap := status.Snapshot{Health: status.HealthError, LastErrorCode: 42, SecondsInError: 3}
	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	okSnap := status.Snapshot{Health: status.HealthOK}
	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	w := cli.last()
	expectedAddr := plan.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError
	if w.addr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", w.addr, expectedAddr)
	}
	if len(w.regs) != 1 || w.regs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: %v", w.regs)
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewStatusWriter(testPlan(), cli)

	_ = sw.WriteStatus(status.Snapshot{Health: status.HealthOK})

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 5}); err == nil {
		t.Fatalf("expected error")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 5}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(cli.last().regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure")
	}
}

func TestMissingClient(t *testing.T) {
	sw, _ := NewStatusWriter(testPlan(), nil)
	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("expected error")
	}
}
