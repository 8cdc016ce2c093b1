// internal/regmap/bits.go
package regmap

// Bit reports whether bit pos of v is set.
func Bit(v uint16, pos uint) bool {
	return (v>>pos)&1 == 1
}

// SetBit returns v with bit pos forced to on.
func SetBit(v uint16, pos uint, on bool) uint16 {
	if on {
		return v | 1<<pos
	}
	return v &^ (1 << pos)
}

// Word32 joins a high and low register into one 32-bit value.
func Word32(high, low uint16) uint32 {
	return uint32(high)<<16 | uint32(low)
}

// Split32 splits v into its high and low registers.
func Split32(v uint32) (high, low uint16) {
	return uint16(v >> 16), uint16(v)
}
