// internal/memif/transport.go
package memif

// Transport is the reader/air-interface collaborator.
// It exposes raw EPC Gen2 bank access for one addressed tag. Offsets and
// lengths are in bytes. Errors are classified by the engine as tagerr.Transport.
type Transport interface {
	ReadBank(tag string, bank Bank, offset uint16, n uint16) ([]byte, error)
	WriteBank(tag string, bank Bank, offset uint16, data []byte) error
}

// Words unpacks big-endian registers.
func Words(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

// Bytes packs registers big-endian.
func Bytes(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
