// internal/status/tracker.go
package status

import (
	"errors"

	"github.com/tamzrod/rt0013/internal/tagerr"
)

// MaxSecondsInError is where SecondsInError saturates.
const MaxSecondsInError = 65535

// Tracker owns the health state of one watched tag.
// It is driven by poll outcomes and a 1 Hz tick; it performs no IO.
// Every method reports whether the snapshot changed.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown with no error recorded.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Success records a completed poll. live carries the tag-derived slots;
// its health fields are ignored.
func (t *Tracker) Success(live Snapshot, logging bool, st TagStatus) bool {
	next := live
	next.Health = HealthOf(logging, st)
	next.LastErrorCode = 0
	next.SecondsInError = 0

	if next == t.snap {
		return false
	}
	t.snap = next
	return true
}

// Failure records a failed poll. Live slots keep their last good values.
func (t *Tracker) Failure(err error) bool {
	changed := false

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}
	if code := ErrorCode(err); t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}
	// NOTE: seconds_in_error increments on Tick only.
	return changed
}

// Tick advances SecondsInError while the tag is not known to be reachable.
func (t *Tracker) Tick() bool {
	if t.snap.Health != HealthError && t.snap.Health != HealthUnknown {
		return false
	}
	if t.snap.SecondsInError >= MaxSecondsInError {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// HealthOf maps a successful poll onto a health code.
// A full log outranks disabled logging: it needs operator action either way.
func HealthOf(logging bool, st TagStatus) uint16 {
	switch {
	case st.AnyMemFull():
		return HealthStale
	case !logging:
		return HealthDisabled
	default:
		return HealthOK
	}
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// An error without a code maps to tagerr.Unknown.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }
	type coderC interface{ ModbusCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}
	var c coderC
	if errors.As(err, &c) {
		return c.ModbusCode()
	}

	return uint16(tagerr.Unknown)
}
