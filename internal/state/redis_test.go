// internal/state/redis_test.go
package state

import (
	"fmt"
	"testing"
	"time"

	"gopkg.in/redis.v5"

	"github.com/tamzrod/rt0013/internal/regmap"
)

const (
	testRedisHost = "localhost"
	testRedisPort = 6379
	testRedisKey  = "rt0013.test"
)

// redisClient skips the test when no local server answers.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	c := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%d", testRedisHost, testRedisPort)})
	if err := c.Ping().Err(); err != nil {
		c.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		c.Del(testRedisKey)
		c.Close()
	})
	return c
}

func testOpts() RedisOptions {
	return RedisOptions{Host: testRedisHost, Port: testRedisPort, Key: testRedisKey}
}

func TestOpenRedis_MissingKey(t *testing.T) {
	c := redisClient(t)
	c.Del(testRedisKey)

	s, err := OpenRedis(testOpts())
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	if !s.LastExported("t1", regmap.Temperature).IsZero() {
		t.Fatalf("expected empty state")
	}
}

func TestOpenRedis_CorruptKey(t *testing.T) {
	c := redisClient(t)
	c.Set(testRedisKey, []byte(`"garbage`), 0)

	if _, err := OpenRedis(testOpts()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisState_SaveAndReload(t *testing.T) {
	redisClient(t)

	s, err := OpenRedis(testOpts())
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Update("t1", regmap.Temperature, ts)
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := OpenRedis(testOpts())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := again.LastExported("t1", regmap.Temperature); !got.Equal(ts) {
		t.Fatalf("LastExported = %v", got)
	}
}

func TestRedisState_Close(t *testing.T) {
	redisClient(t)

	s, err := OpenRedis(testOpts())
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.Update("t1", regmap.Temperature, time.Now())
	if err := s.Save(); err == nil {
		t.Fatalf("Save after Close must fail")
	}
}
