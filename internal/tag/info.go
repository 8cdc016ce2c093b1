// internal/tag/info.go
package tag

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

// Revision is a firmware or hardware revision: major in the high byte,
// minor (tenths) in the low byte.
type Revision struct {
	Major uint8
	Minor uint8
}

// Float returns major + minor/10.
func (r Revision) Float() float64 { return float64(r.Major) + float64(r.Minor)/10 }

func (r Revision) String() string { return fmt.Sprintf("v%.1f", r.Float()) }

// FirmwareRevision reads the firmware revision.
func (m *Manager) FirmwareRevision() (Revision, error) { return m.revision(regmap.RegFWRevision) }

// HardwareRevision reads the hardware revision.
func (m *Manager) HardwareRevision() (Revision, error) { return m.revision(regmap.RegHWRevision) }

func (m *Manager) revision(addr uint16) (Revision, error) {
	v, err := m.regs.Get(addr)
	if err != nil {
		return Revision{}, err
	}
	return Revision{Major: uint8(v >> 8), Minor: uint8(v)}, nil
}

// Control reports a bit of the control register.
func (m *Manager) Control(b regmap.CtrlBit) (bool, error) {
	pos, err := b.Pos()
	if err != nil {
		return false, err
	}
	return m.bit(regmap.RegControl, pos)
}

// SetControl sets or clears a bit of the control register.
func (m *Manager) SetControl(b regmap.CtrlBit, on bool) error {
	pos, err := b.Pos()
	if err != nil {
		return err
	}
	return m.setBit(regmap.RegControl, pos, on)
}

const (
	DefaultResetPoll    = 10 * time.Second
	DefaultResetTimeout = 600 * time.Second
)

// ResetTag raises RST and waits for the tag to clear it.
// The cache is dropped before every check because a reset rewrites the tag.
// It reports false when RST is still set after timeout. ctx is only checked
// between polls.
func (m *Manager) ResetTag(ctx context.Context, poll, timeout time.Duration) (bool, error) {
	if poll <= 0 {
		poll = DefaultResetPoll
	}
	if timeout <= 0 {
		timeout = DefaultResetTimeout
	}
	if err := m.SetControl(regmap.CtrlReset, true); err != nil {
		return false, err
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}

		m.regs.Reset()
		busy, err := m.Control(regmap.CtrlReset)
		if err != nil {
			return false, err
		}
		if !busy {
			return true, nil
		}
		if time.Now().After(deadline) {
			m.log.Printf("tag: reset still pending after %s", timeout)
			return false, nil
		}
	}
}

// RoundUp5 rounds seconds up to the tag's 5 s sampling unit.
// 65535 is itself a multiple of 5, so the result always fits.
func RoundUp5(sec uint16) uint16 {
	return uint16((int(sec) + 4) / 5 * 5)
}

// SamplingDelay is the delay in seconds between enabling logging and the first sample.
func (m *Manager) SamplingDelay() (uint16, error) { return m.regs.Get(regmap.RegSamplingDelay) }

// SetSamplingDelay writes the delay, rounded up to a multiple of 5 s.
func (m *Manager) SetSamplingDelay(sec uint16) error {
	if r := RoundUp5(sec); r != sec {
		m.log.Printf("tag: sampling delay %ds is not a multiple of 5, using %ds", sec, r)
		sec = r
	}
	return m.regs.Set(regmap.RegSamplingDelay, sec)
}

func unixTime(sec uint32) time.Time { return time.Unix(int64(sec), 0).UTC() }

func toUnix32(op string, t time.Time) (uint32, error) {
	sec := t.Unix()
	if sec < 0 || sec > math.MaxUint32 {
		return 0, tagerr.New(tagerr.InvalidArgument, op, "%s not representable as 32-bit UNIX seconds", t)
	}
	return uint32(sec), nil
}

// InitDate is when the tag was initialised.
func (m *Manager) InitDate() (time.Time, error) {
	v, err := m.get32(regmap.RegInitDateH, regmap.RegInitDateL)
	return unixTime(v), err
}

// SetInitDate writes the initialisation date.
func (m *Manager) SetInitDate(t time.Time) error {
	v, err := toUnix32("tag.SetInitDate", t)
	if err != nil {
		return err
	}
	return m.set32(regmap.RegInitDateH, regmap.RegInitDateL, v)
}

// ShippingDate is set by the tag when logging starts.
func (m *Manager) ShippingDate() (time.Time, error) {
	v, err := m.get32(regmap.RegShippingDateH, regmap.RegShippingDateL)
	return unixTime(v), err
}

// StopDate is set by the tag when logging stops.
func (m *Manager) StopDate() (time.Time, error) {
	v, err := m.get32(regmap.RegStopDateH, regmap.RegStopDateL)
	return unixTime(v), err
}

// ETA is the expected transit time in seconds, counted from the shipping date.
func (m *Manager) ETA() (uint32, error) { return m.get32(regmap.RegETAH, regmap.RegETAL) }

// SetETA writes the expected transit time in seconds.
func (m *Manager) SetETA(sec uint32) error { return m.set32(regmap.RegETAH, regmap.RegETAL, sec) }

// ETADate is ShippingDate + ETA.
func (m *Manager) ETADate() (time.Time, error) {
	ship, err := m.ShippingDate()
	if err != nil {
		return time.Time{}, err
	}
	eta, err := m.ETA()
	if err != nil {
		return time.Time{}, err
	}
	return ship.Add(time.Duration(eta) * time.Second), nil
}
