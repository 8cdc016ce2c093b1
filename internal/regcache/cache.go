// internal/regcache/cache.go
package regcache

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

// PrefetchChunk is the number of words read per handshake during PrefetchAll.
const PrefetchChunk = 100

// SettleAfterWrite is the pause between a write and its verification read.
const SettleAfterWrite = 1000 * time.Millisecond

// Device is the register-level view of the tag.
// *memif.Engine implements it.
type Device interface {
	Read(addr uint16, n uint16) ([]uint16, error)
	Write(addr uint16, words []uint16) error
}

// Config carries the optional collaborators of a Cache.
type Config struct {
	Sleep  func(time.Duration)
	Logger *log.Logger
}

// Cache is a write-through, read-filled map of register values for one tag.
// One lock covers every operation, so at most one handshake is in flight.
type Cache struct {
	mu    sync.Mutex
	dev   Device
	regs  map[uint16]uint16
	sleep func(time.Duration)
	log   *log.Logger
}

// New creates an empty cache in front of dev.
func New(dev Device, cfg Config) (*Cache, error) {
	if dev == nil {
		return nil, errors.New("regcache: device required")
	}
	c := &Cache{
		dev:   dev,
		regs:  make(map[uint16]uint16),
		sleep: cfg.Sleep,
		log:   cfg.Logger,
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	if c.log == nil {
		c.log = log.Default()
	}
	return c, nil
}

// PrefetchAll reads the whole register map in chunks.
// Chunks completed before a failure stay cached.
func (c *Cache) PrefetchAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for addr := int(regmap.RegStart); addr <= int(regmap.RegEnd); addr += PrefetchChunk {
		n := PrefetchChunk
		if rest := int(regmap.RegEnd) - addr + 1; rest < n {
			n = rest
		}
		words, err := c.dev.Read(uint16(addr), uint16(n))
		if err != nil {
			return err
		}
		c.store(uint16(addr), words)
	}
	return nil
}

// Get returns the cached value of addr, reading it from the tag on a miss.
func (c *Cache) Get(addr uint16) (uint16, error) {
	if err := checkAddr("regcache.Get", addr, 1); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.regs[addr]; ok {
		return v, nil
	}
	words, err := c.dev.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	c.store(addr, words)
	return words[0], nil
}

// GetRange returns n consecutive values, reading only if any is missing.
// Misses are filled with as few handshakes as the command buffer allows.
func (c *Cache) GetRange(addr uint16, n int) ([]uint16, error) {
	if err := checkAddr("regcache.GetRange", addr, n); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]uint16, n)
	for i := 0; i < n; {
		a := addr + uint16(i)
		if v, ok := c.regs[a]; ok {
			out[i] = v
			i++
			continue
		}
		chunk := n - i
		if chunk > PrefetchChunk {
			chunk = PrefetchChunk
		}
		words, err := c.dev.Read(a, uint16(chunk))
		if err != nil {
			return nil, err
		}
		c.store(a, words)
		copy(out[i:], words)
		i += chunk
	}
	return out, nil
}

// Set writes v to the tag, waits, reads it back and caches what the tag
// actually holds. A mismatch is logged as a data integrity warning and is
// not returned as an error.
func (c *Cache) Set(addr, v uint16) error {
	if err := checkAddr("regcache.Set", addr, 1); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.dev.Write(addr, []uint16{v}); err != nil {
		return err
	}
	c.sleep(SettleAfterWrite)

	words, err := c.dev.Read(addr, 1)
	if err != nil {
		delete(c.regs, addr)
		return err
	}
	got := words[0]
	if got != v {
		warn := tagerr.New(tagerr.DataIntegrity, "regcache.Set",
			"register 0x%04X written 0x%04X, still reads 0x%04X", addr, v, got)
		c.log.Printf("regcache: %v", warn)
	}
	c.regs[addr] = got
	return nil
}

// Reset discards every cached value.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs = make(map[uint16]uint16)
}

func (c *Cache) store(addr uint16, words []uint16) {
	for i, w := range words {
		c.regs[addr+uint16(i)] = w
	}
}

func checkAddr(op string, addr uint16, n int) error {
	if n <= 0 {
		return tagerr.New(tagerr.InvalidArgument, op, "zero-length range")
	}
	if int(addr)+n-1 > int(regmap.RegEnd) {
		return tagerr.New(tagerr.InvalidArgument, op, "register 0x%04X+%d outside the register map", addr, n)
	}
	return nil
}
