// internal/writer/opentsdb/client.go
package opentsdb

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bluebreezecf/opentsdb-goclient/client"
	"github.com/bluebreezecf/opentsdb-goclient/config"
	"github.com/pkg/errors"
)

// DataPoint is one sample as handed over by the writer.
type DataPoint struct {
	Metric    string
	Timestamp int64
	Value     float64
	Tags      map[string]string
}

// Client puts data points to one OpenTSDB server.
type Client struct {
	tsdb client.Client
}

type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("writer opentsdb: host required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	c, err := client.NewClient(config.OpenTSDBConfig{
		OpentsdbHost: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Transport:    &http.Transport{ResponseHeaderTimeout: cfg.Timeout},
	})
	if err != nil {
		return nil, errors.Wrap(err, "writer opentsdb: client")
	}
	return &Client{tsdb: c}, nil
}

// Put sends points in one request.
func (c *Client) Put(points []DataPoint) error {
	data := make([]client.DataPoint, 0, len(points))
	for _, p := range points {
		data = append(data, client.DataPoint{
			Metric:    p.Metric,
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Tags:      p.Tags,
		})
	}
	if _, err := c.tsdb.Put(data, "summary"); err != nil {
		return errors.Wrapf(err, "writer opentsdb: put %d points", len(data))
	}
	return nil
}
