// internal/tag/readings.go
package tag

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/tamzrod/rt0013/internal/fixedpoint"
	"github.com/tamzrod/rt0013/internal/logdecode"
	"github.com/tamzrod/rt0013/internal/memif"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/status"
)

// UserAreaBytes is the capacity of the user area.
const UserAreaBytes = regmap.UserAreaWords * 2

// Status reads and decodes the STATUS register.
func (m *Manager) Status() (status.TagStatus, error) {
	v, err := m.regs.Get(regmap.RegStatus)
	if err != nil {
		return status.TagStatus{}, err
	}
	return status.DecodeTag(v), nil
}

// StatusBit reports one bit of the STATUS register.
func (m *Manager) StatusBit(b regmap.StatusBit) (bool, error) {
	pos, err := b.Pos()
	if err != nil {
		return false, err
	}
	return m.bit(regmap.RegStatus, pos)
}

// Battery reads the battery level.
func (m *Manager) Battery() (status.Battery, error) {
	s, err := m.Status()
	return s.Battery, err
}

// BinAlarm reports whether a bin reached its threshold.
func (m *Manager) BinAlarm(ch regmap.Channel, bin int) (bool, error) {
	pos, err := regmap.BinAlarmPos(ch, bin)
	if err != nil {
		return false, err
	}
	return m.bit(regmap.RegBinAlarm, pos)
}

// LastSampleRaw reads the raw code of the most recent sample.
func (m *Manager) LastSampleRaw(ch regmap.Channel) (uint16, error) {
	addr, err := regmap.LastSampleAddr(ch)
	if err != nil {
		return 0, err
	}
	return m.regs.Get(addr)
}

// LastSample reads the most recent sample in channel units.
func (m *Manager) LastSample(ch regmap.Channel) (float64, error) {
	raw, err := m.LastSampleRaw(ch)
	if err != nil {
		return 0, err
	}
	return fixedpoint.Decode(ch, raw), nil
}

// SamplesNum reads how many samples the tag has logged on a channel.
func (m *Manager) SamplesNum(ch regmap.Channel) (uint16, error) {
	addr, err := regmap.SamplesNumAddr(ch)
	if err != nil {
		return 0, err
	}
	return m.regs.Get(addr)
}

// UserArea returns the raw user area words.
func (m *Manager) UserArea() ([]uint16, error) {
	return m.regs.GetRange(regmap.RegUserAreaStart, regmap.UserAreaWords)
}

// UserText returns the user area as text with padding removed.
func (m *Manager) UserText() (string, error) {
	words, err := m.UserArea()
	if err != nil {
		return "", err
	}
	b := bytes.TrimRight(memif.Bytes(words), "\x00")
	return strings.TrimSpace(string(b)), nil
}

// SetUserText stores s as UTF-8 in the user area, zero padded. Text that does
// not fit is cut at a rune boundary and truncated is reported true.
func (m *Manager) SetUserText(s string) (truncated bool, err error) {
	b := []byte(s)
	if len(b) > UserAreaBytes {
		truncated = true
		cut := UserAreaBytes
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		b = b[:cut]
		m.log.Printf("tag: user text is %d bytes, keeping the first %d", len(s), cut)
	}
	padded := make([]byte, UserAreaBytes)
	copy(padded, b)

	for i, w := range memif.Words(padded) {
		if err := m.regs.Set(regmap.RegUserAreaStart+uint16(i), w); err != nil {
			return truncated, err
		}
	}
	return truncated, nil
}

// LogArea returns the raw log area of a channel.
func (m *Manager) LogArea(ch regmap.Channel) ([]uint16, error) {
	start, n, err := regmap.LogArea(ch)
	if err != nil {
		return nil, err
	}
	return m.regs.GetRange(start, n)
}

// LogMode derives the logging mode of a channel from its bin flags.
func (m *Manager) LogMode(ch regmap.Channel) (logdecode.Mode, error) {
	times, err := m.BinEnabledAll(regmap.FlagTimeStore, ch)
	if err != nil {
		return logdecode.ModeNone, err
	}
	samples, err := m.BinEnabledAll(regmap.FlagSampleStore, ch)
	if err != nil {
		return logdecode.ModeNone, err
	}
	return logdecode.ModeOf(times, samples), nil
}

// DecodeLog reconstructs the measurement points logged on a channel.
func (m *Manager) DecodeLog(ch regmap.Channel) ([]logdecode.Point, error) {
	mode, err := m.LogMode(ch)
	if err != nil {
		return nil, err
	}
	count, err := m.SamplesNum(ch)
	if err != nil {
		return nil, err
	}
	if mode == logdecode.ModeNone || count == 0 {
		// Nothing to replay; let the decoder report why.
		return logdecode.Decode(ch, mode, count, nil)
	}
	words, err := m.LogArea(ch)
	if err != nil {
		return nil, err
	}
	return logdecode.Decode(ch, mode, count, words)
}
