// internal/regmap/channel.go
package regmap

import "github.com/tamzrod/rt0013/internal/tagerr"

// Channel selects the sensor domain.
type Channel uint8

const (
	Temperature Channel = iota
	Humidity
)

// Channels lists every channel in register order.
var Channels = [...]Channel{Temperature, Humidity}

type channelLayout struct {
	name       string
	unit       string
	hlimit     uint16
	sampleTime uint16
	threshold  uint16
	counter    uint16
	lastSample uint16
	samplesNum uint16
	logStart   uint16
	logEnd     uint16
	binBit     uint
	memFull    uint
	binAlarm   uint
}

var layouts = [...]channelLayout{
	Temperature: {
		name:       "temperature",
		unit:       "°C",
		hlimit:     RegBinHLimitT0,
		sampleTime: RegBinSampleTimeT0,
		threshold:  RegBinThresholdT0,
		counter:    RegBinCounterT0,
		lastSample: RegLastSampleT,
		samplesNum: RegSamplesNumT,
		logStart:   RegLogAreaTStart,
		logEnd:     RegLogAreaTEnd,
		binBit:     BitBin0TEn,
		memFull:    BitMemFullT,
		binAlarm:   BitBinAlrmT,
	},
	Humidity: {
		name:       "humidity",
		unit:       "%",
		hlimit:     RegBinHLimitH0,
		sampleTime: RegBinSampleTimeH0,
		threshold:  RegBinThresholdH0,
		counter:    RegBinCounterH0,
		lastSample: RegLastSampleH,
		samplesNum: RegSamplesNumH,
		logStart:   RegLogAreaHStart,
		logEnd:     RegLogAreaHEnd,
		binBit:     BitBin0HEn,
		memFull:    BitMemFullH,
		binAlarm:   BitBinAlrmH,
	},
}

func (c Channel) Valid() bool { return int(c) < len(layouts) }

func (c Channel) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return layouts[c].name
}

// Unit is the display unit of the channel.
func (c Channel) Unit() string {
	if !c.Valid() {
		return ""
	}
	return layouts[c].unit
}

// ParseChannel accepts "temperature"/"t" and "humidity"/"h".
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "temperature", "temp", "t", "T":
		return Temperature, nil
	case "humidity", "hum", "h", "H":
		return Humidity, nil
	}
	return 0, tagerr.New(tagerr.InvalidArgument, "regmap", "unknown channel %q", s)
}

func (c Channel) layout() (channelLayout, error) {
	if !c.Valid() {
		return channelLayout{}, tagerr.New(tagerr.InvalidArgument, "regmap", "unknown channel %d", c)
	}
	return layouts[c], nil
}

// LastSampleAddr is the register holding the channel's latest raw sample.
func LastSampleAddr(c Channel) (uint16, error) {
	l, err := c.layout()
	return l.lastSample, err
}

// SamplesNumAddr is the register holding the channel's logged sample count.
func SamplesNumAddr(c Channel) (uint16, error) {
	l, err := c.layout()
	return l.samplesNum, err
}

// LogArea returns the first word address and the word length of the channel's log area.
func LogArea(c Channel) (uint16, int, error) {
	l, err := c.layout()
	if err != nil {
		return 0, 0, err
	}
	return l.logStart, int(l.logEnd-l.logStart) + 1, nil
}

// MemFullBit is the STATUS bit signalling the channel's log area is full.
func MemFullBit(c Channel) (uint, error) {
	l, err := c.layout()
	return l.memFull, err
}

// BinAlarmBit is the STATUS bit signalling a threshold alarm on the channel.
func BinAlarmBit(c Channel) (uint, error) {
	l, err := c.layout()
	return l.binAlarm, err
}
