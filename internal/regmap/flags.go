// internal/regmap/flags.go
package regmap

import "github.com/tamzrod/rt0013/internal/tagerr"

// CtrlBit names a bit of RegControl.
type CtrlBit uint8

const (
	CtrlReset CtrlBit = iota
	CtrlLoggingEnable
	CtrlDelayEnable
	CtrlRFSensitivity
)

var ctrlBits = [...]struct {
	pos  uint
	name string
}{
	CtrlReset:         {BitCtrlRST, "RST"},
	CtrlLoggingEnable: {BitCtrlLE, "LE"},
	CtrlDelayEnable:   {BitCtrlDE, "DE"},
	CtrlRFSensitivity: {BitCtrlRFSL, "RFSL"},
}

// Pos is the bit position inside RegControl.
func (b CtrlBit) Pos() (uint, error) {
	if int(b) >= len(ctrlBits) {
		return 0, tagerr.New(tagerr.InvalidArgument, "regmap", "unknown control bit %d", b)
	}
	return ctrlBits[b].pos, nil
}

func (b CtrlBit) String() string {
	if int(b) >= len(ctrlBits) {
		return "UNKNOWN"
	}
	return ctrlBits[b].name
}

// StatusBit names a bit of RegStatus.
type StatusBit uint8

const (
	StatusBatLS StatusBit = iota
	StatusBatMS
	StatusMemFullT
	StatusMemFullH
	StatusBinAlarmT
	StatusBinAlarmH
	StatusETAAlarm
)

var statusBits = [...]struct {
	pos  uint
	name string
}{
	StatusBatLS:     {BitBatLS, "BAT_LS"},
	StatusBatMS:     {BitBatMS, "BAT_MS"},
	StatusMemFullT:  {BitMemFullT, "MEMFULL_T"},
	StatusMemFullH:  {BitMemFullH, "MEMFULL_H"},
	StatusBinAlarmT: {BitBinAlrmT, "BIN_ALRM_T"},
	StatusBinAlarmH: {BitBinAlrmH, "BIN_ALRM_H"},
	StatusETAAlarm:  {BitETAAlarm, "ETA_ALRM"},
}

// Pos is the bit position inside RegStatus.
func (b StatusBit) Pos() (uint, error) {
	if int(b) >= len(statusBits) {
		return 0, tagerr.New(tagerr.InvalidArgument, "regmap", "unknown status bit %d", b)
	}
	return statusBits[b].pos, nil
}

func (b StatusBit) String() string {
	if int(b) >= len(statusBits) {
		return "UNKNOWN"
	}
	return statusBits[b].name
}
