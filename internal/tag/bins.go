// internal/tag/bins.go
package tag

import (
	"github.com/tamzrod/rt0013/internal/fixedpoint"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

// MinSampleTime is the tag's sampling unit in seconds.
const MinSampleTime = 5

// DefaultSampleTime is the factory sampling interval (0x1E).
const DefaultSampleTime = 30

// Bin is the configuration of one bin of one channel.
type Bin struct {
	HighLimit    float64 // channel units
	Threshold    uint16  // samples until alarm, regmap.ThresholdNever disables it
	StoreSamples bool
	StoreTimes   bool
	SampleTime   uint16 // seconds
}

// DefaultBin is the factory configuration of a bin.
// Bin 0 counts and stores samples up to the channel maximum; the others are off.
func DefaultBin(ch regmap.Channel, bin int) Bin {
	b := Bin{
		Threshold:  regmap.ThresholdNever,
		SampleTime: DefaultSampleTime,
	}
	if bin == 0 {
		b.StoreSamples = true
		b.HighLimit = channelMax(ch)
	}
	return b
}

func channelMax(ch regmap.Channel) float64 {
	if ch == regmap.Humidity {
		return fixedpoint.HumMax
	}
	return fixedpoint.TempMax
}

func channelMin(ch regmap.Channel) float64 {
	if ch == regmap.Humidity {
		return fixedpoint.HumMin
	}
	return fixedpoint.TempMin
}

// BinEnabled reports a bin enable flag.
func (m *Manager) BinEnabled(f regmap.BinFlag, ch regmap.Channel, bin int) (bool, error) {
	reg, pos, err := regmap.EnableBit(f, ch, bin)
	if err != nil {
		return false, err
	}
	return m.bit(reg, pos)
}

// SetBinEnabled sets or clears a bin enable flag.
func (m *Manager) SetBinEnabled(f regmap.BinFlag, ch regmap.Channel, bin int, on bool) error {
	reg, pos, err := regmap.EnableBit(f, ch, bin)
	if err != nil {
		return err
	}
	return m.setBit(reg, pos, on)
}

// BinEnabledAll returns one flag for every bin of a channel.
func (m *Manager) BinEnabledAll(f regmap.BinFlag, ch regmap.Channel) ([]bool, error) {
	out := make([]bool, regmap.BinCount)
	for bin := range out {
		on, err := m.BinEnabled(f, ch, bin)
		if err != nil {
			return nil, err
		}
		out[bin] = on
	}
	return out, nil
}

// BinHighLimit reads the upper limit of a bin in channel units.
func (m *Manager) BinHighLimit(ch regmap.Channel, bin int) (float64, error) {
	v, err := m.binOption(regmap.OptHighLimit, ch, bin)
	if err != nil {
		return 0, err
	}
	return fixedpoint.Decode(ch, v), nil
}

// SetBinHighLimit writes the upper limit of a bin; out of range values clamp.
func (m *Manager) SetBinHighLimit(ch regmap.Channel, bin int, limit float64) error {
	return m.setBinOption(regmap.OptHighLimit, ch, bin, fixedpoint.Encode(ch, limit))
}

// BinSampleTime reads the sampling interval of a bin in seconds.
func (m *Manager) BinSampleTime(ch regmap.Channel, bin int) (uint16, error) {
	return m.binOption(regmap.OptSampleTime, ch, bin)
}

// SetBinSampleTime writes the sampling interval of a bin: at least 5 s,
// rounded up to a multiple of 5.
func (m *Manager) SetBinSampleTime(ch regmap.Channel, bin int, sec uint16) error {
	fixed := sec
	if fixed < MinSampleTime {
		fixed = MinSampleTime
	}
	fixed = RoundUp5(fixed)
	if fixed != sec {
		m.log.Printf("tag: %s bin %d sample time %ds adjusted to %ds", ch, bin, sec, fixed)
	}
	return m.setBinOption(regmap.OptSampleTime, ch, bin, fixed)
}

// BinThreshold reads the alarm threshold of a bin.
func (m *Manager) BinThreshold(ch regmap.Channel, bin int) (uint16, error) {
	return m.binOption(regmap.OptThreshold, ch, bin)
}

// SetBinThreshold writes the alarm threshold of a bin.
func (m *Manager) SetBinThreshold(ch regmap.Channel, bin int, n uint16) error {
	return m.setBinOption(regmap.OptThreshold, ch, bin, n)
}

// BinCounter reads how many samples fell into a bin.
func (m *Manager) BinCounter(ch regmap.Channel, bin int) (uint16, error) {
	return m.binOption(regmap.OptCounter, ch, bin)
}

func (m *Manager) binOption(o regmap.BinOption, ch regmap.Channel, bin int) (uint16, error) {
	addr, err := regmap.BinAddr(o, ch, bin)
	if err != nil {
		return 0, err
	}
	return m.regs.Get(addr)
}

func (m *Manager) setBinOption(o regmap.BinOption, ch regmap.Channel, bin int, v uint16) error {
	addr, err := regmap.BinAddr(o, ch, bin)
	if err != nil {
		return err
	}
	return m.regs.Set(addr, v)
}

// Bins reads the configuration of all six bins of a channel.
func (m *Manager) Bins(ch regmap.Channel) ([]Bin, error) {
	out := make([]Bin, regmap.BinCount)
	for i := range out {
		var (
			b   Bin
			err error
		)
		if b.HighLimit, err = m.BinHighLimit(ch, i); err != nil {
			return nil, err
		}
		if b.Threshold, err = m.BinThreshold(ch, i); err != nil {
			return nil, err
		}
		if b.StoreSamples, err = m.BinEnabled(regmap.FlagSampleStore, ch, i); err != nil {
			return nil, err
		}
		if b.StoreTimes, err = m.BinEnabled(regmap.FlagTimeStore, ch, i); err != nil {
			return nil, err
		}
		if b.SampleTime, err = m.BinSampleTime(ch, i); err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// ConfigureBins writes bins[i] to bin i and resets every bin past len(bins)
// to DefaultBin. The counter of every supplied bin is enabled since the log
// depends on it. bins is written as given; see ValidateBins.
func (m *Manager) ConfigureBins(ch regmap.Channel, bins []Bin) error {
	const op = "tag.ConfigureBins"
	if !ch.Valid() {
		return tagerr.New(tagerr.InvalidArgument, op, "unknown channel %d", ch)
	}
	if len(bins) > regmap.BinCount {
		return tagerr.New(tagerr.InvalidArgument, op, "%d bins, at most %d", len(bins), regmap.BinCount)
	}
	if len(bins) == 0 {
		m.log.Printf("tag: no bins configured for %s, restoring defaults", ch)
	}

	for i := 0; i < regmap.BinCount; i++ {
		b := DefaultBin(ch, i)
		counter := i == 0
		if i < len(bins) {
			b = bins[i]
			counter = true
		}
		if err := m.SetBinHighLimit(ch, i, b.HighLimit); err != nil {
			return err
		}
		if err := m.SetBinEnabled(regmap.FlagCounter, ch, i, counter); err != nil {
			return err
		}
		if err := m.SetBinThreshold(ch, i, b.Threshold); err != nil {
			return err
		}
		if err := m.SetBinEnabled(regmap.FlagSampleStore, ch, i, b.StoreSamples); err != nil {
			return err
		}
		if err := m.SetBinEnabled(regmap.FlagTimeStore, ch, i, b.StoreTimes); err != nil {
			return err
		}
		if err := m.SetBinSampleTime(ch, i, b.SampleTime); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBins checks a bin list for ConfigureBins: at most six bins, limits
// inside the channel range and strictly ascending. With fix set, a limit not
// above its predecessor is raised to predecessor + 1 instead of failing.
// The returned slice is a copy.
func ValidateBins(ch regmap.Channel, bins []Bin, fix bool) ([]Bin, error) {
	const op = "tag.ValidateBins"
	if !ch.Valid() {
		return nil, tagerr.New(tagerr.InvalidArgument, op, "unknown channel %d", ch)
	}
	if len(bins) > regmap.BinCount {
		return nil, tagerr.New(tagerr.InvalidArgument, op, "%d bins, at most %d", len(bins), regmap.BinCount)
	}
	lo, hi := channelMin(ch), channelMax(ch)
	out := make([]Bin, len(bins))
	copy(out, bins)
	for i := range out {
		l := out[i].HighLimit
		if l < lo || l > hi {
			return nil, tagerr.New(tagerr.InvalidArgument, op, "bin %d limit %.2f outside [%.0f, %.0f]", i, l, lo, hi)
		}
		if i == 0 || l > out[i-1].HighLimit {
			continue
		}
		if !fix {
			return nil, tagerr.New(tagerr.InvalidArgument, op,
				"bin %d limit %.2f not above bin %d limit %.2f", i, l, i-1, out[i-1].HighLimit)
		}
		next := out[i-1].HighLimit + 1
		if next > hi {
			return nil, tagerr.New(tagerr.InvalidArgument, op, "bin %d cannot be placed above %.2f", i, out[i-1].HighLimit)
		}
		out[i].HighLimit = next
	}
	return out, nil
}
