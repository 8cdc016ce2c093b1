// internal/writer/tsdb.go
package writer

import (
	"fmt"
	"strings"

	"github.com/tamzrod/rt0013/internal/logdecode"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/writer/opentsdb"
)

type putter interface {
	Put(points []opentsdb.DataPoint) error
}

// OpenTSDB is a SampleSink writing one metric per channel.
type OpenTSDB struct {
	client putter
	prefix string
}

func NewOpenTSDB(client putter, metricPrefix string) *OpenTSDB {
	return &OpenTSDB{client: client, prefix: metricPrefix}
}

// PutSamples sends every point that carries both a timestamp and a value.
func (o *OpenTSDB) PutSamples(tagID string, ch regmap.Channel, points []logdecode.Point) error {
	data := make([]opentsdb.DataPoint, 0, len(points))
	for _, p := range points {
		if p.Timestamp == nil || p.Value == nil {
			continue
		}
		data = append(data, o.prepareValue(tagID, ch, p))
	}
	if len(data) == 0 {
		return nil
	}
	return o.client.Put(data)
}

func (o *OpenTSDB) prepareValue(tagID string, ch regmap.Channel, p logdecode.Point) opentsdb.DataPoint {
	return opentsdb.DataPoint{
		Metric:    fmt.Sprintf("%s.%s", o.prefix, ch),
		Timestamp: p.Timestamp.Unix(),
		Value:     *p.Value,
		Tags: map[string]string{
			"tag":     strings.Replace(tagID, " ", "_", -1),
			"channel": ch.String(),
		},
	}
}
