// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/rt0013/internal/config"
	wmodbus "github.com/tamzrod/rt0013/internal/writer/modbus"
	"github.com/tamzrod/rt0013/internal/writer/opentsdb"
)

// BuildStatusPlan converts one tag's watch config into a StatusPlan.
// Returns nil when status is not enabled for the tag.
// Assumes config has already passed collision validation.
func BuildStatusPlan(t cfg.TagConfig) *StatusPlan {
	s := t.Watch.Status
	if s == nil {
		return nil
	}
	return &StatusPlan{
		TagID:    t.ID,
		Endpoint: s.Endpoint,
		UnitID:   s.UnitID,
		BaseSlot: s.Slot,
		Name:     t.Name,
	}
}

// BuildEndpointClients creates one TCP client per unique status endpoint.
func BuildEndpointClients(tags []cfg.TagConfig) (map[string]*wmodbus.EndpointClient, func() error, error) {
	timeouts := map[string]int{}
	for _, t := range tags {
		if s := t.Watch.Status; s != nil {
			timeouts[s.Endpoint] = s.TimeoutMs
		}
	}

	clients := make(map[string]*wmodbus.EndpointClient)
	var closers []func() error

	for endpoint, ms := range timeouts {
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  time.Duration(ms) * time.Millisecond,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}

// BuildSink creates the configured sample sink.
func BuildSink(e cfg.ExportConfig) (SampleSink, error) {
	o := e.OpenTSDB
	if o == nil {
		return nil, errors.New("writer: export.opentsdb is not configured")
	}
	c, err := opentsdb.NewClient(opentsdb.Config{
		Host:    o.Host,
		Port:    o.Port,
		Timeout: time.Duration(o.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	return NewOpenTSDB(c, o.MetricPrefix), nil
}
