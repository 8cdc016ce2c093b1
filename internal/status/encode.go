// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block, name slots left zero.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotTagStatus] = s.TagStatus
	regs[SlotLastSampleT] = s.LastSampleT
	regs[SlotLastSampleH] = s.LastSampleH
	regs[SlotSamplesT] = s.SamplesT
	regs[SlotSamplesH] = s.SamplesH

	return regs
}

// EncodeName packs up to 16 ASCII characters into the name slots,
// two bytes per slot, big-endian. Non-printable bytes become '?'.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}
	for i := range b {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}
	return out
}

// EncodeBlock is Encode with the name slots filled in.
func EncodeBlock(s Snapshot, name []uint16) []uint16 {
	regs := Encode(s)
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], name)
	return regs
}
