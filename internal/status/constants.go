// internal/status/constants.go
package status

// Loop health block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed register count of one health block.
const SlotsPerBlock = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the loop health state.
const SlotHealthCode = 0

// SlotFeedFailures holds the consecutive feed failure count.
const SlotFeedFailures = 1

// SlotSecondsStale holds the seconds elapsed since the last good poll.
const SlotSecondsStale = 2

// ---- RESERVED RANGE ----

// Slots 3-10 are reserved for future use.
const SlotReservedStart = 3
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the health block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first poll completes.
const HealthUnknown uint16 = 0

// HealthOK means the last poll succeeded and the display is current.
const HealthOK uint16 = 1

// HealthStale means recent polls failed but the display still shows the
// last good state.
const HealthStale uint16 = 2

// HealthDegraded means the fail-safe engaged and all slots were cleared.
const HealthDegraded uint16 = 3
