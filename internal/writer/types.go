// internal/writer/types.go
package writer

import (
	"github.com/tamzrod/rt0013/internal/logdecode"
	"github.com/tamzrod/rt0013/internal/regmap"
)

// StatusPlan locates the status block of one watched tag.
type StatusPlan struct {
	TagID    string
	Endpoint string
	UnitID   uint8
	BaseSlot uint16 // block index; register address = BaseSlot * status.SlotsPerDevice
	Name     string
}

// SampleSink stores decoded log points in a time series database.
type SampleSink interface {
	PutSamples(tagID string, ch regmap.Channel, points []logdecode.Point) error
}

// endpointClient is the exact contract the status writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
