// internal/regmap/registers.go
package regmap

// RT0013 register layout.
// Addresses are word addresses fixed by the tag hardware and MUST NOT be configurable.

// ---- ADDRESS SPACE ----

const (
	RegStart uint16 = 0x0000
	RegEnd   uint16 = 0x1089
)

// ---- SCALAR REGISTERS ----

const (
	RegFWRevision uint16 = 0x08
	RegHWRevision uint16 = 0x09

	RegControl uint16 = 0x0A

	RegSamplingDelay uint16 = 0x0B
	RegInitDateL     uint16 = 0x0C
	RegInitDateH     uint16 = 0x0D
	RegETAL          uint16 = 0x0E
	RegETAH          uint16 = 0x0F

	RegStatus   uint16 = 0x51
	RegBinAlarm uint16 = 0x55

	RegShippingDateL uint16 = 0x6A
	RegShippingDateH uint16 = 0x6B
	RegStopDateL     uint16 = 0x6C
	RegStopDateH     uint16 = 0x6D
)

// ---- BIN ENABLE REGISTERS ----
// One bit per bin and channel, see EnableBit.

const (
	RegBinEnaCounter     uint16 = 0x10
	RegBinEnaSampleStore uint16 = 0x11
	RegBinEnaTimeStore   uint16 = 0x12
)

// ---- PER-CHANNEL BIN BLOCKS (bin 0; bins 1..5 follow contiguously) ----

const (
	RegBinHLimitT0 uint16 = 0x13
	RegBinHLimitH0 uint16 = 0x19

	RegBinSampleTimeT0 uint16 = 0x23
	RegBinSampleTimeH0 uint16 = 0x29

	RegBinThresholdT0 uint16 = 0x33
	RegBinThresholdH0 uint16 = 0x39

	RegBinCounterT0 uint16 = 0x56
	RegBinCounterH0 uint16 = 0x5C
)

// ---- PER-CHANNEL SCALARS ----

const (
	RegLastSampleT uint16 = 0x62
	RegLastSampleH uint16 = 0x63

	RegSamplesNumT uint16 = 0x64
	RegSamplesNumH uint16 = 0x65
)

// ---- USER AND LOG AREAS (inclusive bounds) ----

const (
	RegUserAreaStart uint16 = 0x6E
	RegUserAreaEnd   uint16 = 0x89

	RegLogAreaTStart uint16 = 0x8A
	RegLogAreaTEnd   uint16 = 0x889

	RegLogAreaHStart uint16 = 0x88A
	RegLogAreaHEnd   uint16 = 0x1089
)

// UserAreaWords is the size of the user-defined area.
const UserAreaWords = int(RegUserAreaEnd-RegUserAreaStart) + 1

// ---- CONTROL REGISTER BITS ----

const (
	BitCtrlRST  uint = 0
	BitCtrlLE   uint = 1
	BitCtrlDE   uint = 2
	BitCtrlRFSL uint = 3
)

// ---- STATUS REGISTER BITS ----

const (
	BitBatLS    uint = 0
	BitBatMS    uint = 1
	BitMemFullT uint = 2
	BitETAAlarm uint = 3
	BitBinAlrmT uint = 4
	BitMemFullH uint = 10
	BitBinAlrmH uint = 11
)

// ---- BIN ENABLE / BIN ALARM BIT BASES ----
// Temperature bins use bits 0..5, humidity bins bits 6..11.

const (
	BitBin0TEn uint = 0
	BitBin0HEn uint = 6
)

// ---- LIMITS ----

// BinCount is the number of bins per channel.
const BinCount = 6

// Sentinel marks an unwritten register or log slot.
const Sentinel uint16 = 0xFFFF

// ThresholdNever disables the bin alarm counter.
const ThresholdNever uint16 = 0xFFFF
