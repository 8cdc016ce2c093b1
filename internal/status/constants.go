// internal/status/constants.go
package status

// Watch status block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per watched tag.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

const (
	SlotHealthCode     = 0 // health state, see Health* codes
	SlotLastErrorCode  = 1 // tagerr code of the last failed poll
	SlotSecondsInError = 2 // seconds since the first failed poll, saturating
	SlotTagStatus      = 3 // raw STATUS register
	SlotLastSampleT    = 4 // raw fixed-point code
	SlotLastSampleH    = 5 // raw fixed-point code
	SlotSamplesT       = 6
	SlotSamplesH       = 7
)

// LiveSlots are rewritten whenever they change.
var LiveSlots = [...]int{
	SlotHealthCode,
	SlotLastErrorCode,
	SlotSecondsInError,
	SlotTagStatus,
	SlotLastSampleT,
	SlotLastSampleH,
	SlotSamplesT,
	SlotSamplesH,
}

// ---- RESERVED RANGE ----

// Slots 8..10 are reserved for future use.
const SlotReservedStart = 8
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the tag name.
// The name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the tag name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the tag name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// DeviceNameMaxChars is the maximum number of ASCII characters stored for the name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

const (
	HealthUnknown  uint16 = 0 // boot, nothing polled yet
	HealthOK       uint16 = 1
	HealthError    uint16 = 2 // last poll failed
	HealthStale    uint16 = 3 // log memory full, no new samples will be stored
	HealthDisabled uint16 = 4 // logging disabled on the tag
)
