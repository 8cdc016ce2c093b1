// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "rt0013.yaml", `
tags:
  - id: "E280-1160"
    name: cold-room-1
    reader:
      kind: modbus-tcp
      endpoint: 10.0.0.5:502
      unit_id: 3
      banks:
        user: 12288
    watch:
      interval_ms: 30000
      status:
        endpoint: 10.0.0.9:502
        unit_id: 1
        slot: 2
export:
  opentsdb:
    host: tsdb.local
state:
  backend: file
  filename: /var/lib/rt0013/state.json
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tg, ok := cfg.FindTag("E280-1160")
	if !ok {
		t.Fatalf("tag not found")
	}
	if tg.Reader.UnitID != 3 || tg.Reader.Banks.User == nil || *tg.Reader.Banks.User != 0x3000 {
		t.Fatalf("reader decoded wrong: %+v", tg.Reader)
	}
	if tg.Watch.Status == nil || tg.Watch.Status.Slot != 2 {
		t.Fatalf("status decoded wrong: %+v", tg.Watch.Status)
	}
	if cfg.Export.OpenTSDB == nil || cfg.Export.OpenTSDB.Host != "tsdb.local" {
		t.Fatalf("export decoded wrong")
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	p := writeFile(t, "rt0013.toml", `
[[tags]]
id = "sim-1"
[tags.reader]
kind = "sim"

[state]
backend = "redis"
[state.redis]
host = "localhost"
db = 2
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Tags) != 1 || cfg.Tags[0].Reader.Kind != ReaderSim {
		t.Fatalf("tags decoded wrong: %+v", cfg.Tags)
	}
	if cfg.State.Redis == nil || cfg.State.Redis.DB != 2 {
		t.Fatalf("state decoded wrong: %+v", cfg.State)
	}
}

func TestLoad_UnknownKeys(t *testing.T) {
	if _, err := Load(writeFile(t, "a.yaml", "tagz: []\n")); err == nil {
		t.Fatalf("expected yaml unknown key error")
	}
	if _, err := Load(writeFile(t, "a.toml", "tagz = 1\n")); err == nil {
		t.Fatalf("expected toml unknown key error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFindTag_DefaultsToFirst(t *testing.T) {
	cfg := &Config{Tags: []TagConfig{{ID: "a"}, {ID: "b"}}}
	if tg, ok := cfg.FindTag(""); !ok || tg.ID != "a" {
		t.Fatalf("FindTag(\"\") = %+v, %v", tg, ok)
	}
	if _, ok := cfg.FindTag("c"); ok {
		t.Fatalf("FindTag(c) should miss")
	}
}
