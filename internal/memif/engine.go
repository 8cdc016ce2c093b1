// internal/memif/engine.go
package memif

import (
	"encoding/binary"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

// Config wires an Engine to one tag.
type Config struct {
	TagID  string
	Sleep  func(time.Duration) // nil means time.Sleep
	Logger *log.Logger         // nil means log.Default()
}

// Engine drives the command/reply handshake of the tag's memory interface.
// It serializes handshakes: two commands on one tag must never interleave.
type Engine struct {
	mu    sync.Mutex
	tr    Transport
	tag   string
	sleep func(time.Duration)
	log   *log.Logger

	lastID byte
}

// New creates an engine bound to a transport and a tag.
func New(tr Transport, cfg Config) (*Engine, error) {
	if tr == nil {
		return nil, errors.New("memif: transport required")
	}
	if cfg.TagID == "" {
		return nil, errors.New("memif: tag id required")
	}
	e := &Engine{
		tr:    tr,
		tag:   cfg.TagID,
		sleep: cfg.Sleep,
		log:   cfg.Logger,
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	if e.log == nil {
		e.log = log.Default()
	}
	return e, nil
}

// TagID returns the addressed tag.
func (e *Engine) TagID() string { return e.tag }

// Read reads n words starting at word address addr, retrying the full
// handshake up to Attempts times.
func (e *Engine) Read(addr uint16, n uint16) ([]uint16, error) {
	if err := checkSpan("memif.Read", addr, int(n)); err != nil {
		return nil, err
	}
	var out []uint16
	err := e.retry("read", addr, int(n), func() error {
		b, err := e.ReadOnce(addr*2, n)
		if err != nil {
			return err
		}
		out = Words(b)
		return nil
	})
	return out, err
}

// Write writes words starting at word address addr, retrying the full
// handshake up to Attempts times.
func (e *Engine) Write(addr uint16, words []uint16) error {
	if err := checkSpan("memif.Write", addr, len(words)); err != nil {
		return err
	}
	data := Bytes(words)
	return e.retry("write", addr, len(words), func() error {
		return e.WriteOnce(addr*2, data)
	})
}

// ReadOnce performs a single read handshake. byteAddr must be word aligned.
func (e *Engine) ReadOnce(byteAddr uint16, n uint16) ([]byte, error) {
	const op = "memif.ReadOnce"
	if byteAddr%2 != 0 {
		return nil, tagerr.New(tagerr.InvalidArgument, op, "byte address 0x%04X not word aligned", byteAddr)
	}
	if err := checkSpan(op, byteAddr/2, int(n)); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.nextID(op)
	if err != nil {
		return nil, err
	}
	if err := e.writeParams(op, id, CmdRead, byteAddr/2, n); err != nil {
		return nil, err
	}
	if err := e.trigger(op); err != nil {
		return nil, err
	}
	e.sleep(ReadWait(n))
	if err := e.checkReply(op, id); err != nil {
		return nil, err
	}

	data, err := e.readBank(op, CmdBank, AddrData, n*2)
	if err != nil {
		return nil, err
	}
	if len(data) < int(n)*2 {
		return nil, tagerr.New(tagerr.Transport, op, "short data: got %d bytes, want %d", len(data), int(n)*2)
	}
	return data[:int(n)*2], nil
}

// WriteOnce performs a single write handshake. byteAddr must be word aligned
// and data a whole number of words.
func (e *Engine) WriteOnce(byteAddr uint16, data []byte) error {
	const op = "memif.WriteOnce"
	if byteAddr%2 != 0 {
		return tagerr.New(tagerr.InvalidArgument, op, "byte address 0x%04X not word aligned", byteAddr)
	}
	if len(data)%2 != 0 {
		return tagerr.New(tagerr.InvalidArgument, op, "odd payload length %d", len(data))
	}
	n := len(data) / 2
	if err := checkSpan(op, byteAddr/2, n); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.nextID(op)
	if err != nil {
		return err
	}
	if err := e.writeParams(op, id, CmdWrite, byteAddr/2, uint16(n)); err != nil {
		return err
	}
	if err := e.writeBank(op, CmdBank, AddrData, data); err != nil {
		return err
	}
	if err := e.trigger(op); err != nil {
		return err
	}
	e.sleep(WriteWait())
	return e.checkReply(op, id)
}

func (e *Engine) retry(kind string, addr uint16, n int, fn func() error) error {
	var last error
	for attempt := 1; attempt <= Attempts; attempt++ {
		last = fn()
		if last == nil {
			return nil
		}
		if tagerr.Is(last, tagerr.InvalidArgument) {
			return last
		}
		e.log.Printf("memif: %s attempt %d/%d failed (tag=%s addr=0x%04X words=%d): %v",
			kind, attempt, Attempts, e.tag, addr, n, last)
	}
	return tagerr.Wrap(tagerr.CommunicationExhausted, "memif."+kind, last,
		"giving up after %d attempts (addr=0x%04X words=%d)", Attempts, addr, n)
}

// nextID alternates against whatever id the tag last answered with.
func (e *Engine) nextID(op string) (byte, error) {
	reply, err := e.readBank(op, CmdBank, AddrReply, 2)
	if err != nil {
		return 0, err
	}
	if len(reply) < 1 {
		return 0, tagerr.New(tagerr.Transport, op, "empty reply slot")
	}
	id := byte(1)
	if reply[0] != 0 {
		id = 0
	}
	e.lastID = id
	return id, nil
}

func (e *Engine) writeParams(op string, id, cmd byte, wordAddr, n uint16) error {
	var p [6]byte
	binary.BigEndian.PutUint16(p[0:2], uint16(id)<<8|uint16(cmd))
	binary.BigEndian.PutUint16(p[2:4], wordAddr)
	binary.BigEndian.PutUint16(p[4:6], n)
	return e.writeBank(op, CmdBank, AddrCommand, p[:])
}

// trigger is a read of the trigger area; the tag starts processing on it.
func (e *Engine) trigger(op string) error {
	_, err := e.readBank(op, TrigBank, AddrTrigger, TriggerLen)
	return err
}

func (e *Engine) checkReply(op string, id byte) error {
	reply, err := e.readBank(op, CmdBank, AddrReply, 2)
	if err != nil {
		return err
	}
	if len(reply) < 2 {
		return tagerr.New(tagerr.Transport, op, "short reply: %d bytes", len(reply))
	}
	if reply[0] != id {
		return tagerr.New(tagerr.ProtocolTimeout, op, "reply id 0x%02X, want 0x%02X", reply[0], id)
	}
	switch reply[1] {
	case ReplyACK:
		return nil
	case ReplyNACK:
		return tagerr.New(tagerr.TagRejected, op, "tag answered NACK")
	default:
		return tagerr.New(tagerr.ProtocolTimeout, op, "unknown reply code 0x%02X", reply[1])
	}
}

func (e *Engine) readBank(op string, bank Bank, offset, n uint16) ([]byte, error) {
	b, err := e.tr.ReadBank(e.tag, bank, offset, n)
	if err != nil {
		return nil, tagerr.Wrap(tagerr.Transport, op, err, "read bank %d offset 0x%04X", bank, offset)
	}
	return b, nil
}

func (e *Engine) writeBank(op string, bank Bank, offset uint16, data []byte) error {
	if err := e.tr.WriteBank(e.tag, bank, offset, data); err != nil {
		return tagerr.Wrap(tagerr.Transport, op, err, "write bank %d offset 0x%04X", bank, offset)
	}
	return nil
}

func checkSpan(op string, addr uint16, n int) error {
	if n <= 0 {
		return tagerr.New(tagerr.InvalidArgument, op, "zero-length transfer")
	}
	if n > MaxWords {
		return tagerr.New(tagerr.InvalidArgument, op, "%d words exceeds the %d-byte command buffer", n, MaxDataBytes)
	}
	if int(addr)+n-1 > int(regmap.RegEnd) {
		return tagerr.New(tagerr.InvalidArgument, op, "span 0x%04X+%d leaves the register map", addr, n)
	}
	return nil
}
