// internal/state/redis.go
package state

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/redis.v5"
)

// RedisOptions locates the key holding the state.
type RedisOptions struct {
	Host     string
	Port     int
	Password string
	DB       int
	Key      string
}

type redisState struct {
	*marks
	client *redis.Client
	key    string
}

// OpenRedis loads the JSON state stored under opts.Key. A missing key yields an empty state.
func OpenRedis(opts RedisOptions) (State, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})
	s := &redisState{marks: newMarks(), client: client, key: opts.Key}

	data, err := client.Get(opts.Key).Bytes()
	if err == redis.Nil {
		return s, nil
	}
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "state: redis get")
	}
	if err := s.unmarshal(data); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "state: decode key %s", opts.Key)
	}
	return s, nil
}

func (s *redisState) Save() error {
	data, err := s.marshal()
	if err != nil {
		return errors.Wrap(err, "state: encode")
	}
	return errors.Wrap(s.client.Set(s.key, data, 0).Err(), "state: redis set")
}

func (s *redisState) Close() error {
	return errors.Wrap(s.client.Close(), "state: redis close")
}
