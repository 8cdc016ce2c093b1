// internal/writer/status_writer.go
package writer

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/tamzrod/rt0013/internal/status"
)

// StatusWriter delivers a tag's status snapshot into status memory.
// It writes the snapshot verbatim: no interpretation.
type StatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// NewStatusWriter builds a status writer if status is enabled for the tag.
// If plan is nil, status is disabled.
func NewStatusWriter(plan *StatusPlan, cli endpointClient) (*StatusWriter, bool) {
	if plan == nil {
		return nil, false
	}
	return &StatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: status.EncodeName(plan.Name),
	}, true
}

// WriteStatus delivers a snapshot.
// On any write failure, the next call re-asserts the full block.
func (sw *StatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return errors.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.EncodeBlock(s, sw.nameRegs)
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return errors.Wrap(err, "status writer: full block write failed")
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Changed live slots only
	// ------------------------------------------------------------
	want := status.Encode(s)
	have := status.Encode(sw.last)

	var errs []string
	for _, slot := range status.LiveSlots {
		if want[slot] == have[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			sw.plan.UnitID,
			baseAddr+uint16(slot),
			[]uint16{want[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *StatusWriter) baseAddr() uint16 {
	// Each tag owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}
