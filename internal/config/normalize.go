// internal/config/normalize.go
package config

import "github.com/tamzrod/rt0013/internal/status"

const (
	DefaultTimeoutMs       = 2000
	DefaultWatchIntervalMs = 60000
	DefaultBaudRate        = 9600
	DefaultOpenTSDBPort    = 4242
	DefaultMetricPrefix    = "rt0013"
	DefaultStateFilename   = "rt0013-state.json"
	DefaultRedisPort       = 6379
	DefaultRedisKey        = "rt0013:state"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Tags {
		t := &cfg.Tags[i]

		// ---- reader ----
		r := &t.Reader
		if r.Kind == "" {
			r.Kind = ReaderModbusTCP
		}
		if r.TimeoutMs == 0 {
			r.TimeoutMs = DefaultTimeoutMs
		}
		if r.Kind == ReaderModbusRTU {
			if r.BaudRate == 0 {
				r.BaudRate = DefaultBaudRate
			}
			if r.DataBits == 0 {
				r.DataBits = 8
			}
			if r.Parity == "" {
				r.Parity = "E"
			}
			if r.StopBits == 0 {
				r.StopBits = 1
			}
		}

		// ---- name ----
		// ASCII already validated; truncate to what the status block holds.
		if len(t.Name) > status.DeviceNameMaxChars {
			t.Name = t.Name[:status.DeviceNameMaxChars]
		}

		// ---- watch ----
		if t.Watch.IntervalMs == 0 {
			t.Watch.IntervalMs = DefaultWatchIntervalMs
		}
		if s := t.Watch.Status; s != nil && s.TimeoutMs == 0 {
			s.TimeoutMs = DefaultTimeoutMs
		}
	}

	if o := cfg.Export.OpenTSDB; o != nil {
		if o.Port == 0 {
			o.Port = DefaultOpenTSDBPort
		}
		if o.MetricPrefix == "" {
			o.MetricPrefix = DefaultMetricPrefix
		}
		if o.TimeoutMs == 0 {
			o.TimeoutMs = DefaultTimeoutMs
		}
	}

	if cfg.State.Backend == "" {
		cfg.State.Backend = StateFile
	}
	if cfg.State.Backend == StateFile && cfg.State.Filename == "" {
		cfg.State.Filename = DefaultStateFilename
	}
	if r := cfg.State.Redis; r != nil {
		if r.Port == 0 {
			r.Port = DefaultRedisPort
		}
		if r.Key == "" {
			r.Key = DefaultRedisKey
		}
	}
}
