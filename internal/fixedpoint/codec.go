// internal/fixedpoint/codec.go
package fixedpoint

import (
	"math"

	"github.com/tamzrod/rt0013/internal/regmap"
)

// Tag-native encoding: 1/32 unit per LSB.
// Negative temperatures are stored with a +8192 offset.
// These constants are compared against by the tag firmware and MUST NOT change.

const Scale = 32

const (
	TempMin = -30.0
	TempMax = 70.0
	HumMin  = 0.0
	HumMax  = 100.0
)

const (
	tempMaxCode uint16 = TempMax * Scale             // 2240
	tempNegBase        = 8192                        // offset of the negative branch
	tempMinCode uint16 = TempMin*Scale + tempNegBase // 7232
	humMaxCode  uint16 = HumMax * Scale              // 3200
	signBit     uint16 = 0x8000                      // raw values read as negative by the firmware
)

// Encode converts a channel value into its register code, clamping to the channel range.
func Encode(ch regmap.Channel, v float64) uint16 {
	switch ch {
	case regmap.Temperature:
		switch {
		case v > TempMax:
			return tempMaxCode
		case v >= 0 && v <= TempMax:
			return uint16(math.Round(v * Scale))
		case v < 0 && v >= TempMin:
			return uint16(int(math.Round(v*Scale)) + tempNegBase)
		case v < TempMin:
			return tempMinCode
		}
	case regmap.Humidity:
		switch {
		case v > HumMax:
			return humMaxCode
		case v >= 0 && v <= HumMax:
			return uint16(math.Round(v * Scale))
		}
	}
	return 0
}

// Decode converts a register code into a channel value.
func Decode(ch regmap.Channel, raw uint16) float64 {
	switch ch {
	case regmap.Temperature:
		switch {
		case raw <= tempMaxCode:
			return float64(raw) / Scale
		case raw < tempMinCode:
			return TempMax
		case raw < tempNegBase:
			return float64(int(raw)-tempNegBase) / Scale
		}
	case regmap.Humidity:
		switch {
		case raw <= humMaxCode:
			return float64(raw) / Scale
		case raw < signBit:
			return HumMax
		}
	}
	return 0
}

// IsValid reports whether a decoded value lies within the channel's physical range.
func IsValid(ch regmap.Channel, v float64) bool {
	switch ch {
	case regmap.Temperature:
		return v >= TempMin && v <= TempMax
	case regmap.Humidity:
		return v >= HumMin && v <= HumMax
	}
	return false
}
