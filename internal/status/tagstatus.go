// internal/status/tagstatus.go
package status

import "github.com/tamzrod/rt0013/internal/regmap"

// Battery is the two-bit battery level reported in STATUS (BAT_MS, BAT_LS).
type Battery uint8

const (
	BatteryEmpty Battery = iota
	BatteryLow
	BatteryNormal
	BatteryFull
)

func (b Battery) String() string {
	switch b {
	case BatteryEmpty:
		return "empty"
	case BatteryLow:
		return "low"
	case BatteryNormal:
		return "normal"
	case BatteryFull:
		return "full"
	}
	return "unknown"
}

// TagStatus is the decoded STATUS register.
type TagStatus struct {
	Raw       uint16
	Battery   Battery
	MemFullT  bool
	MemFullH  bool
	BinAlarmT bool
	BinAlarmH bool
	ETAAlarm  bool
}

// DecodeTag decodes a raw STATUS register.
func DecodeTag(raw uint16) TagStatus {
	var bat Battery
	if regmap.Bit(raw, regmap.BitBatMS) {
		bat |= 2
	}
	if regmap.Bit(raw, regmap.BitBatLS) {
		bat |= 1
	}
	return TagStatus{
		Raw:       raw,
		Battery:   bat,
		MemFullT:  regmap.Bit(raw, regmap.BitMemFullT),
		MemFullH:  regmap.Bit(raw, regmap.BitMemFullH),
		BinAlarmT: regmap.Bit(raw, regmap.BitBinAlrmT),
		BinAlarmH: regmap.Bit(raw, regmap.BitBinAlrmH),
		ETAAlarm:  regmap.Bit(raw, regmap.BitETAAlarm),
	}
}

// MemFull reports the memory-full flag of a channel.
func (t TagStatus) MemFull(ch regmap.Channel) bool {
	if ch == regmap.Humidity {
		return t.MemFullH
	}
	return t.MemFullT
}

// BinAlarm reports the bin alarm flag of a channel.
func (t TagStatus) BinAlarm(ch regmap.Channel) bool {
	if ch == regmap.Humidity {
		return t.BinAlarmH
	}
	return t.BinAlarmT
}

// AnyMemFull reports whether either log area is full.
func (t TagStatus) AnyMemFull() bool { return t.MemFullT || t.MemFullH }
