// internal/regmap/bins.go
package regmap

import "github.com/tamzrod/rt0013/internal/tagerr"

// BinFlag selects one of the bin enable registers.
type BinFlag uint8

const (
	FlagCounter BinFlag = iota
	FlagSampleStore
	FlagTimeStore
)

var flagRegs = [...]uint16{
	FlagCounter:     RegBinEnaCounter,
	FlagSampleStore: RegBinEnaSampleStore,
	FlagTimeStore:   RegBinEnaTimeStore,
}

var flagNames = [...]string{
	FlagCounter:     "COUNTER",
	FlagSampleStore: "SAMPLE_STORE",
	FlagTimeStore:   "TIME_STORE",
}

func (f BinFlag) String() string {
	if int(f) >= len(flagNames) {
		return "UNKNOWN"
	}
	return flagNames[f]
}

// BinOption selects one of the per-bin register blocks.
type BinOption uint8

const (
	OptHighLimit BinOption = iota
	OptSampleTime
	OptThreshold
	OptCounter
)

// CheckBin validates a bin index.
func CheckBin(bin int) error {
	if bin < 0 || bin >= BinCount {
		return tagerr.New(tagerr.InvalidArgument, "regmap", "invalid bin number %d", bin)
	}
	return nil
}

// EnableBit resolves the register and bit position of a bin enable flag.
func EnableBit(f BinFlag, c Channel, bin int) (uint16, uint, error) {
	if int(f) >= len(flagRegs) {
		return 0, 0, tagerr.New(tagerr.InvalidArgument, "regmap", "unknown bin flag %d", f)
	}
	l, err := c.layout()
	if err != nil {
		return 0, 0, err
	}
	if err := CheckBin(bin); err != nil {
		return 0, 0, err
	}
	return flagRegs[f], l.binBit + uint(bin), nil
}

// BinAlarmPos is the bit position of a bin inside RegBinAlarm.
func BinAlarmPos(c Channel, bin int) (uint, error) {
	l, err := c.layout()
	if err != nil {
		return 0, err
	}
	if err := CheckBin(bin); err != nil {
		return 0, err
	}
	return l.binBit + uint(bin), nil
}

// BinAddr resolves the register of a per-bin option.
func BinAddr(o BinOption, c Channel, bin int) (uint16, error) {
	l, err := c.layout()
	if err != nil {
		return 0, err
	}
	if err := CheckBin(bin); err != nil {
		return 0, err
	}
	var base uint16
	switch o {
	case OptHighLimit:
		base = l.hlimit
	case OptSampleTime:
		base = l.sampleTime
	case OptThreshold:
		base = l.threshold
	case OptCounter:
		base = l.counter
	default:
		return 0, tagerr.New(tagerr.InvalidArgument, "regmap", "unknown bin option %d", o)
	}
	return base + uint16(bin), nil
}
