// internal/config/config.go
package config

type Config struct {
	Tags   []TagConfig  `yaml:"tags" toml:"tags"`
	Export ExportConfig `yaml:"export" toml:"export"`
	State  StateConfig  `yaml:"state" toml:"state"`
}

// ---- TAG ----

type TagConfig struct {
	ID     string       `yaml:"id" toml:"id"`     // EPC / reader handle
	Name   string       `yaml:"name" toml:"name"` // ASCII, published in the status block
	Reader ReaderConfig `yaml:"reader" toml:"reader"`
	Watch  WatchConfig  `yaml:"watch" toml:"watch"`
}

// ---- READER ----

const (
	ReaderModbusTCP = "modbus-tcp"
	ReaderModbusRTU = "modbus-rtu"
	ReaderSim       = "sim" // in-memory tag, for dry runs
)

type ReaderConfig struct {
	Kind      string `yaml:"kind" toml:"kind"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"` // host:port or serial device
	BaudRate  int    `yaml:"baud_rate" toml:"baud_rate"`
	DataBits  int    `yaml:"data_bits" toml:"data_bits"`
	Parity    string `yaml:"parity" toml:"parity"`
	StopBits  int    `yaml:"stop_bits" toml:"stop_bits"`
	UnitID    uint8  `yaml:"unit_id" toml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms" toml:"timeout_ms"`

	// Holding register base of each memory bank; nil keeps the gateway default.
	Banks BankConfig `yaml:"banks" toml:"banks"`
}

type BankConfig struct {
	Reserved *uint16 `yaml:"reserved" toml:"reserved"`
	EPC      *uint16 `yaml:"epc" toml:"epc"`
	TID      *uint16 `yaml:"tid" toml:"tid"`
	User     *uint16 `yaml:"user" toml:"user"`
}

// ---- WATCH ----

type WatchConfig struct {
	IntervalMs int           `yaml:"interval_ms" toml:"interval_ms"`
	Status     *StatusConfig `yaml:"status" toml:"status"` // optional, opt-in
}

type StatusConfig struct {
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id" toml:"unit_id"`
	Slot      uint16 `yaml:"slot" toml:"slot"` // block index, not register address
	TimeoutMs int    `yaml:"timeout_ms" toml:"timeout_ms"`
}

// ---- EXPORT ----

type ExportConfig struct {
	OpenTSDB *OpenTSDBConfig `yaml:"opentsdb" toml:"opentsdb"`
}

type OpenTSDBConfig struct {
	Host         string `yaml:"host" toml:"host"`
	Port         int    `yaml:"port" toml:"port"`
	MetricPrefix string `yaml:"metric_prefix" toml:"metric_prefix"`
	TimeoutMs    int    `yaml:"timeout_ms" toml:"timeout_ms"`
}

// ---- STATE ----

const (
	StateFile  = "file"
	StateRedis = "redis"
)

type StateConfig struct {
	Backend  string       `yaml:"backend" toml:"backend"`
	Filename string       `yaml:"filename" toml:"filename"`
	Redis    *RedisConfig `yaml:"redis" toml:"redis"`
}

type RedisConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	Key      string `yaml:"key" toml:"key"`
}

// FindTag returns the tag with the given id, or the first tag when id is empty.
func (c *Config) FindTag(id string) (TagConfig, bool) {
	for _, t := range c.Tags {
		if id == "" || t.ID == id {
			return t, true
		}
	}
	return TagConfig{}, false
}
