// internal/poller/poller.go
package poller

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/status"
	"github.com/tamzrod/rt0013/internal/tagerr"
)

// Tag abstracts the tag reads the poller needs.
// *tag.Manager implements it.
type Tag interface {
	ResetCache()
	Status() (status.TagStatus, error)
	Control(b regmap.CtrlBit) (bool, error)
	LastSampleRaw(ch regmap.Channel) (uint16, error)
	SamplesNum(ch regmap.Channel) (uint16, error)
}

// Factory builds a fresh tag session. The closer releases its transport.
type Factory func() (Tag, io.Closer, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	TagID    string
	Interval time.Duration
	Logger   *log.Logger
}

// Poller is a dumb, clock-driven reader of one tag.
type Poller struct {
	cfg     Config
	tag     Tag
	closer  io.Closer
	factory Factory
	log     *log.Logger
}

// New creates a poller with immutable config.
// factory may be nil; then a dead session is never replaced.
func New(cfg Config, t Tag, closer io.Closer, factory Factory) (*Poller, error) {
	if cfg.TagID == "" {
		return nil, errors.New("poller: tag id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if t == nil && factory == nil {
		return nil, errors.New("poller: tag or factory required")
	}
	p := &Poller{cfg: cfg, tag: t, closer: closer, factory: factory, log: cfg.Logger}
	if p.log == nil {
		p.log = log.Default()
	}
	return p, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		TagID: p.cfg.TagID,
		At:    time.Now(),
	}

	if p.tag == nil {
		t, c, err := p.factory()
		if err != nil {
			res.Err = err
			return res
		}
		p.tag, p.closer = t, c
	}

	// Live values only: never serve a cached register.
	p.tag.ResetCache()

	st, err := p.tag.Status()
	if err != nil {
		return p.fail(res, err)
	}
	logging, err := p.tag.Control(regmap.CtrlLoggingEnable)
	if err != nil {
		return p.fail(res, err)
	}
	lastT, err := p.tag.LastSampleRaw(regmap.Temperature)
	if err != nil {
		return p.fail(res, err)
	}
	lastH, err := p.tag.LastSampleRaw(regmap.Humidity)
	if err != nil {
		return p.fail(res, err)
	}
	nT, err := p.tag.SamplesNum(regmap.Temperature)
	if err != nil {
		return p.fail(res, err)
	}
	nH, err := p.tag.SamplesNum(regmap.Humidity)
	if err != nil {
		return p.fail(res, err)
	}

	// Commit only if all reads succeeded
	res.Status = st
	res.Logging = logging
	res.LastT, res.LastH = lastT, lastH
	res.SamplesT, res.SamplesH = nT, nH
	return res
}

// fail records err and, when the session looks dead, discards it so the
// factory builds a new one on a future tick.
func (p *Poller) fail(res PollResult, err error) PollResult {
	res.Err = err
	if p.factory != nil && (tagerr.Is(err, tagerr.CommunicationExhausted) || tagerr.Is(err, tagerr.Transport)) {
		if p.closer != nil {
			if cerr := p.closer.Close(); cerr != nil {
				p.log.Printf("poller: close failed (tag=%s): %v", p.cfg.TagID, cerr)
			}
		}
		p.tag, p.closer = nil, nil
	}
	return res
}

// Close releases the current session.
func (p *Poller) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.tag, p.closer = nil, nil
	return err
}
