// internal/writer/writer.go
package writer

import (
	"errors"
	"log"
	"time"

	"github.com/tamzrod/rt0013/internal/logdecode"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/state"
)

// Exporter pushes log points that are newer than the last export of the
// same tag and channel, then records the new high-water mark.
type Exporter struct {
	sink  SampleSink
	state state.State
	log   *log.Logger
}

// NewExporter wires a sink to the export bookkeeping.
func NewExporter(sink SampleSink, st state.State, logger *log.Logger) (*Exporter, error) {
	if sink == nil {
		return nil, errors.New("writer: sample sink required")
	}
	if st == nil {
		return nil, errors.New("writer: state required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{sink: sink, state: st, log: logger}, nil
}

// Export sends the fresh points and returns how many were sent.
// State is only advanced after the sink accepted the batch.
func (e *Exporter) Export(tagID string, ch regmap.Channel, points []logdecode.Point) (int, error) {
	last := e.state.LastExported(tagID, ch)
	fresh := FilterNew(points, last)
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := e.sink.PutSamples(tagID, ch, fresh); err != nil {
		return 0, err
	}

	newest := last
	for _, p := range fresh {
		if p.Timestamp.After(newest) {
			newest = *p.Timestamp
		}
	}
	e.state.Update(tagID, ch, newest)
	if err := e.state.Save(); err != nil {
		return len(fresh), err
	}

	e.log.Printf("export: %d %s points sent (tag=%s, newest=%s)",
		len(fresh), ch, tagID, newest.UTC().Format(time.RFC3339))
	return len(fresh), nil
}

// FilterNew keeps the complete points stamped after last.
// Points without a timestamp cannot be ordered against last and are dropped.
func FilterNew(points []logdecode.Point, last time.Time) []logdecode.Point {
	var out []logdecode.Point
	for _, p := range points {
		if p.Timestamp == nil || p.Value == nil {
			continue
		}
		if p.Timestamp.After(last) {
			out = append(out, p)
		}
	}
	return out
}
