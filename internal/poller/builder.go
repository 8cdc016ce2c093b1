// internal/poller/builder.go
package poller

import (
	"io"
	"log"
	"time"

	cfg "github.com/tamzrod/rt0013/internal/config"
	"github.com/tamzrod/rt0013/internal/session"
)

// Build constructs a Poller and wires the tag session lifecycle.
// The session is reused while healthy.
// On transport death, Poller discards the session and uses factory on a future tick.
// No retries here: the handshake engine owns them.
func Build(tc cfg.TagConfig, logger *log.Logger) (*Poller, error) {
	// session factory: ONE attempt per call
	factory := func() (Tag, io.Closer, error) {
		s, err := session.Open(tc, logger)
		if err != nil {
			return nil, nil, err
		}
		return s.Tag, s, nil
	}

	// initial session (fail fast at startup)
	t, closer, err := factory()
	if err != nil {
		return nil, err
	}

	p, err := New(
		Config{
			TagID:    tc.ID,
			Interval: time.Duration(tc.Watch.IntervalMs) * time.Millisecond,
			Logger:   logger,
		},
		t,
		closer,
		factory,
	)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return p, nil
}
