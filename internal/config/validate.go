// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil || len(cfg.Tags) == 0 {
		return errors.Errorf("at least one tag is required")
	}

	seen := make(map[string]bool)

	// key = kind | endpoint | unit_id ; a gateway unit addresses exactly one tag
	readerOwner := make(map[string]string)

	// key = endpoint | unit_id | slot
	statusOwner := make(map[string]string)

	for _, t := range cfg.Tags {
		if t.ID == "" {
			return errors.Errorf("tag id is required")
		}
		if seen[t.ID] {
			return errors.Errorf("tag %q: duplicate id", t.ID)
		}
		seen[t.ID] = true

		// name sanity (ASCII only)
		for i := 0; i < len(t.Name); i++ {
			if t.Name[i] > 0x7F {
				return errors.Errorf("tag %q: name must contain ASCII characters only", t.ID)
			}
		}

		if err := validateReader(t.ID, t.Reader); err != nil {
			return err
		}
		if t.Reader.Kind != ReaderSim {
			key := fmt.Sprintf("%s|%s|%d", t.Reader.Kind, t.Reader.Endpoint, t.Reader.UnitID)
			if prev, exists := readerOwner[key]; exists {
				return errors.Errorf(
					"reader collision: endpoint=%s unit_id=%d used by tags %q and %q",
					t.Reader.Endpoint, t.Reader.UnitID, prev, t.ID,
				)
			}
			readerOwner[key] = t.ID
		}

		if t.Watch.IntervalMs < 0 {
			return errors.Errorf("tag %q: watch.interval_ms must be >= 0", t.ID)
		}

		// status is opt-in
		s := t.Watch.Status
		if s == nil {
			continue
		}
		if s.Endpoint == "" {
			return errors.Errorf("tag %q: watch.status.endpoint is required", t.ID)
		}
		if s.TimeoutMs < 0 {
			return errors.Errorf("tag %q: watch.status.timeout_ms must be >= 0", t.ID)
		}
		key := fmt.Sprintf("%s|%d|%d", s.Endpoint, s.UnitID, s.Slot)
		if prev, exists := statusOwner[key]; exists {
			return errors.Errorf(
				"status slot collision: endpoint=%s unit_id=%d slot=%d used by tags %q and %q",
				s.Endpoint, s.UnitID, s.Slot, prev, t.ID,
			)
		}
		statusOwner[key] = t.ID
	}

	if o := cfg.Export.OpenTSDB; o != nil {
		if o.Host == "" {
			return errors.Errorf("export.opentsdb.host is required")
		}
		if o.Port < 0 || o.Port > 65535 {
			return errors.Errorf("export.opentsdb.port %d out of range", o.Port)
		}
	}

	switch cfg.State.Backend {
	case "", StateFile:
	case StateRedis:
		if cfg.State.Redis == nil || cfg.State.Redis.Host == "" {
			return errors.Errorf("state.redis.host is required for the redis backend")
		}
	default:
		return errors.Errorf("state.backend %q is not supported", cfg.State.Backend)
	}

	return nil
}

func validateReader(tagID string, r ReaderConfig) error {
	switch r.Kind {
	case "", ReaderModbusTCP, ReaderModbusRTU:
		if r.Endpoint == "" {
			return errors.Errorf("tag %q: reader.endpoint is required", tagID)
		}
	case ReaderSim:
	default:
		return errors.Errorf("tag %q: reader.kind %q is not supported", tagID, r.Kind)
	}

	switch r.Parity {
	case "", "N", "E", "O":
	default:
		return errors.Errorf("tag %q: reader.parity must be N, E or O", tagID)
	}
	if r.BaudRate < 0 || r.TimeoutMs < 0 {
		return errors.Errorf("tag %q: reader.baud_rate and reader.timeout_ms must be >= 0", tagID)
	}

	// bank windows must not share a base
	bases := map[uint16]string{}
	for name, b := range map[string]*uint16{
		"reserved": r.Banks.Reserved,
		"epc":      r.Banks.EPC,
		"tid":      r.Banks.TID,
		"user":     r.Banks.User,
	} {
		if b == nil {
			continue
		}
		if prev, exists := bases[*b]; exists {
			return errors.Errorf("tag %q: banks %s and %s share base %d", tagID, prev, name, *b)
		}
		bases[*b] = name
	}
	return nil
}
