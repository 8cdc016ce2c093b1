// internal/memif/layout.go
package memif

import "time"

// Bank is an EPC Gen2 memory bank.
type Bank uint8

const (
	BankReserved Bank = 0
	BankEPC      Bank = 1
	BankTID      Bank = 2
	BankUser     Bank = 3
)

// Memory interface layout inside the tag.
// Byte offsets are protocol-locked and MUST NOT be configurable.

const (
	CmdBank  = BankUser
	TrigBank = BankEPC

	AddrTrigger uint16 = 0x001F * 2
	TriggerLen  uint16 = 4

	AddrCommand uint16 = 0
	AddrAddress        = AddrCommand + 2
	AddrSize           = AddrAddress + 2
	AddrReply          = AddrSize + 2
	AddrData           = AddrReply + 2

	// MaxDataBytes is the size of the tag's command data buffer (200 words).
	MaxDataBytes = 200 * 2
	MaxWords     = MaxDataBytes / 2
)

const (
	CmdRead  byte = 0x12
	CmdWrite byte = 0x13

	ReplyACK  byte = 0xAC
	ReplyNACK byte = 0xFC
)

// Settle times required by the tag firmware loop between trigger and reply.
// They are hardware-mandated and MUST NOT be shortened.
const (
	waitReadBase  = 100 * time.Millisecond
	waitReadPage  = 7 * time.Millisecond
	waitWriteFlat = 400 * time.Millisecond
)

// Attempts is the number of full handshakes tried before giving up.
const Attempts = 3

// ReadWait is the settle time for a read of n words.
func ReadWait(words uint16) time.Duration {
	numBytes := int(words) * 2
	return waitReadBase + waitReadPage*time.Duration(numBytes/4+1)
}

// WriteWait is the settle time for any write.
func WriteWait() time.Duration { return waitWriteFlat }
