// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/rt0013/internal/fixedpoint"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/status"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	TagID string
	At    time.Time

	Status  status.TagStatus
	Logging bool // LE bit of the control register

	// Raw fixed-point codes, copied verbatim from the tag.
	LastT uint16
	LastH uint16

	SamplesT uint16
	SamplesH uint16

	Err error // non-nil means the poll cycle failed
}

// Temperature decodes LastT.
func (r PollResult) Temperature() float64 { return fixedpoint.Decode(regmap.Temperature, r.LastT) }

// Humidity decodes LastH.
func (r PollResult) Humidity() float64 { return fixedpoint.Decode(regmap.Humidity, r.LastH) }

// Live returns the tag-derived slots of a status block.
func (r PollResult) Live() status.Snapshot {
	return status.Snapshot{
		TagStatus:   r.Status.Raw,
		LastSampleT: r.LastT,
		LastSampleH: r.LastH,
		SamplesT:    r.SamplesT,
		SamplesH:    r.SamplesH,
	}
}
