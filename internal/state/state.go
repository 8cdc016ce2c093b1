// internal/state/state.go
package state

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tamzrod/rt0013/internal/config"
	"github.com/tamzrod/rt0013/internal/regmap"
)

// State remembers the newest sample timestamp exported per tag and channel.
type State interface {
	LastExported(tagID string, ch regmap.Channel) time.Time
	Update(tagID string, ch regmap.Channel, t time.Time)
	Save() error
	Close() error
}

// marks is the persisted form: tag id -> channel name -> timestamp.
type marks struct {
	mu          sync.Mutex
	LastUpdated map[string]map[string]time.Time
}

func newMarks() *marks {
	return &marks{LastUpdated: make(map[string]map[string]time.Time)}
}

func (m *marks) LastExported(tagID string, ch regmap.Channel) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LastUpdated[tagID] == nil {
		return time.Time{}
	}
	return m.LastUpdated[tagID][ch.String()]
}

func (m *marks) Update(tagID string, ch regmap.Channel, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LastUpdated[tagID] == nil {
		m.LastUpdated[tagID] = make(map[string]time.Time)
	}
	m.LastUpdated[tagID][ch.String()] = t
}

func (m *marks) marshal() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(m)
}

func (m *marks) unmarshal(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	if m.LastUpdated == nil {
		m.LastUpdated = make(map[string]map[string]time.Time)
	}
	return nil
}

type fileState struct {
	*marks
	filename string
}

// OpenFile loads the state stored in filename. A missing file yields an empty state.
func OpenFile(filename string) (State, error) {
	s := &fileState{marks: newMarks(), filename: filename}
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "state: read")
	}
	if err := s.unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "state: decode %s", filename)
	}
	return s, nil
}

func (s *fileState) Save() error {
	data, err := s.marshal()
	if err != nil {
		return errors.Wrap(err, "state: encode")
	}
	return errors.Wrap(os.WriteFile(s.filename, data, 0o600), "state: write")
}

func (s *fileState) Close() error { return nil }

// Open builds the backend selected by cfg. cfg must be normalized.
func Open(cfg config.StateConfig) (State, error) {
	switch cfg.Backend {
	case config.StateRedis:
		r := cfg.Redis
		return OpenRedis(RedisOptions{
			Host:     r.Host,
			Port:     r.Port,
			Password: r.Password,
			DB:       r.DB,
			Key:      r.Key,
		})
	case config.StateFile, "":
		return OpenFile(cfg.Filename)
	}
	return nil, errors.Errorf("state: backend %q not supported", cfg.Backend)
}
