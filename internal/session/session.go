// internal/session/session.go
package session

import (
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/tamzrod/rt0013/internal/config"
	"github.com/tamzrod/rt0013/internal/memif"
	"github.com/tamzrod/rt0013/internal/regcache"
	"github.com/tamzrod/rt0013/internal/simtag"
	"github.com/tamzrod/rt0013/internal/tag"
	tmodbus "github.com/tamzrod/rt0013/internal/transport/modbus"
)

// Session is one open tag: transport, handshake engine, register cache
// and the logical accessor layer on top.
type Session struct {
	Tag    *tag.Manager
	Engine *memif.Engine
	Cache  *regcache.Cache

	closer io.Closer
}

// Open connects the reader described by tc and stacks the tag layers on it.
// ONE attempt per call; callers own the retry policy.
func Open(tc config.TagConfig, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Default()
	}

	var (
		tr     memif.Transport
		closer io.Closer
		sleep  func(time.Duration) // nil keeps real air timing
	)

	switch tc.Reader.Kind {
	case config.ReaderSim:
		tr = simtag.New(tc.ID)
		sleep = func(time.Duration) {}
	case config.ReaderModbusTCP, config.ReaderModbusRTU, "":
		b, err := tmodbus.New(BridgeConfig(tc))
		if err != nil {
			return nil, err
		}
		tr, closer = b, b
	default:
		return nil, errors.Errorf("session: reader kind %q not supported", tc.Reader.Kind)
	}

	s, err := stack(tr, tc.ID, sleep, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	s.closer = closer
	return s, nil
}

// stack layers engine, cache and manager over a transport.
func stack(tr memif.Transport, tagID string, sleep func(time.Duration), logger *log.Logger) (*Session, error) {
	eng, err := memif.New(tr, memif.Config{TagID: tagID, Sleep: sleep, Logger: logger})
	if err != nil {
		return nil, err
	}
	cache, err := regcache.New(eng, regcache.Config{Sleep: sleep, Logger: logger})
	if err != nil {
		return nil, err
	}
	mgr, err := tag.New(cache, tag.Config{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Session{Tag: mgr, Engine: eng, Cache: cache}, nil
}

// Close releases the reader connection.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// BridgeConfig maps a tag's reader section onto the Modbus gateway config.
// Bank bases left unset keep the gateway defaults.
func BridgeConfig(tc config.TagConfig) tmodbus.Config {
	r := tc.Reader

	base := make(map[memif.Bank]uint16, len(tmodbus.DefaultBankBase))
	for b, v := range tmodbus.DefaultBankBase {
		base[b] = v
	}
	for b, v := range map[memif.Bank]*uint16{
		memif.BankReserved: r.Banks.Reserved,
		memif.BankEPC:      r.Banks.EPC,
		memif.BankTID:      r.Banks.TID,
		memif.BankUser:     r.Banks.User,
	} {
		if v != nil {
			base[b] = *v
		}
	}

	return tmodbus.Config{
		Kind:     r.Kind,
		Endpoint: r.Endpoint,
		BaudRate: r.BaudRate,
		DataBits: r.DataBits,
		Parity:   r.Parity,
		StopBits: r.StopBits,
		UnitID:   r.UnitID,
		Timeout:  time.Duration(r.TimeoutMs) * time.Millisecond,
		TagID:    tc.ID,
		BankBase: base,
	}
}
