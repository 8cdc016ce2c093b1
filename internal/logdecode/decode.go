// internal/logdecode/decode.go
package logdecode

import (
	"sort"
	"time"

	"github.com/tamzrod/rt0013/internal/fixedpoint"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

// Mode is the logging mode of a channel.
// Bit 0: some bin stores timestamps. Bit 1: some bin stores samples.
type Mode uint8

const (
	ModeNone  Mode = 0
	ModeTime  Mode = 1 << 0
	ModeValue Mode = 1 << 1
	ModeBoth       = ModeTime | ModeValue
)

// ModeOf reduces the per-bin store flags of a channel to a Mode.
func ModeOf(timeStore, sampleStore []bool) Mode {
	var m Mode
	for _, on := range timeStore {
		if on {
			m |= ModeTime
		}
	}
	for _, on := range sampleStore {
		if on {
			m |= ModeValue
		}
	}
	return m
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeTime:
		return "time"
	case ModeValue:
		return "value"
	case ModeBoth:
		return "time+value"
	}
	return "invalid"
}

// Point is one reconstructed measurement. Fields not logged in the active mode are nil.
type Point struct {
	Timestamp *time.Time
	Value     *float64
}

type field uint8

const (
	fieldValue field = iota
	fieldLow
	fieldHigh
)

// record layouts per mode, in log order.
var layouts = map[Mode][]field{
	ModeTime:  {fieldLow, fieldHigh},
	ModeValue: {fieldValue},
	ModeBoth:  {fieldValue, fieldLow, fieldHigh},
}

type accumulator struct {
	value           float64
	low, high       uint16
	hasValue        bool
	hasLow, hasHigh bool
}

func (a *accumulator) complete(m Mode) bool {
	if m&ModeValue != 0 && !a.hasValue {
		return false
	}
	if m&ModeTime != 0 && !(a.hasLow && a.hasHigh) {
		return false
	}
	return true
}

func (a *accumulator) point(m Mode) Point {
	var p Point
	if m&ModeTime != 0 {
		ts := time.Unix(int64(regmap.Word32(a.high, a.low)), 0).UTC()
		p.Timestamp = &ts
	}
	if m&ModeValue != 0 {
		v := a.value
		p.Value = &v
	}
	return p
}

// Decode replays a raw log area and returns the completed points.
//
// The scan stops at the first sentinel word or once count points are complete.
// Values outside the channel's physical range never complete a point, and a
// record that is still incomplete when the next one starts is dropped.
// With timestamps logged the result is sorted by time, untimed points last.
func Decode(ch regmap.Channel, mode Mode, count uint16, words []uint16) ([]Point, error) {
	const op = "logdecode.Decode"
	if !ch.Valid() {
		return nil, tagerr.New(tagerr.InvalidArgument, op, "unknown channel %d", ch)
	}
	layout, ok := layouts[mode]
	if !ok {
		return nil, tagerr.New(tagerr.Configuration, op, "%s logging disabled (mode %d)", ch, mode)
	}
	if count == 0 {
		return nil, tagerr.New(tagerr.Configuration, op, "%s reports no samples", ch)
	}

	var (
		points []Point
		acc    accumulator
	)
	for i, w := range words {
		if len(points) >= int(count) {
			break
		}
		if w == regmap.Sentinel {
			break
		}
		pos := i % len(layout)
		if pos == 0 {
			acc = accumulator{}
		}
		switch layout[pos] {
		case fieldValue:
			if v := fixedpoint.Decode(ch, w); fixedpoint.IsValid(ch, v) {
				acc.value, acc.hasValue = v, true
			}
		case fieldLow:
			acc.low, acc.hasLow = w, true
		case fieldHigh:
			acc.high, acc.hasHigh = w, true
		}
		if acc.complete(mode) {
			points = append(points, acc.point(mode))
			acc = accumulator{}
		}
	}

	if mode&ModeTime != 0 {
		sort.SliceStable(points, func(i, j int) bool {
			a, b := points[i].Timestamp, points[j].Timestamp
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.Before(*b)
		})
	}
	return points, nil
}
