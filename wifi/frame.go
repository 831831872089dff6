package wifi

import "github.com/airtimelab/wifair/sim"

// StationClass tells which channel access generation a station belongs to.
type StationClass int

const (
	// ClassLegacy stations only use contention based single user access.
	ClassLegacy StationClass = iota

	// ClassScheduled stations can be granted trigger based multi user
	// access by the access point.
	ClassScheduled
)

func (c StationClass) String() string {
	switch c {
	case ClassLegacy:
		return "legacy"
	case ClassScheduled:
		return "scheduled"
	}
	return "unknown"
}

// AccessMode tags how a frame made it onto the air.
type AccessMode int

const (
	// AccessOther marks frames sent through a mode the measurement does not
	// classify (management traffic, for example).
	AccessOther AccessMode = iota

	// AccessSingleUser marks a full channel frame sent after winning
	// contention.
	AccessSingleUser

	// AccessScheduled marks a frame sent inside a multi user trigger round.
	AccessScheduled
)

// A Frame is one uplink MAC frame queued at a station device.
type Frame struct {
	// Station is the index of the source station.
	Station int

	// Payload is the number of datagram payload bytes carried.
	Payload int

	// Bytes is the on-air size, payload plus MAC overhead.
	Bytes int

	// Mode is filled in when the frame is transmitted.
	Mode AccessMode
}

// MAC timing and framing constants. Values approximate a 5 GHz OFDM channel;
// the measurement only needs them to be internally consistent.
const (
	slotTime sim.VTimeInSec = 9e-6
	difs     sim.VTimeInSec = 34e-6
	sifs     sim.VTimeInSec = 16e-6
	preamble sim.VTimeInSec = 40e-6

	// airtime of the trigger frame that opens a multi user round, and of
	// the (block) acknowledgement that closes an exchange
	triggerAirtime sim.VTimeInSec = 32e-6
	ackAirtime     sim.VTimeInSec = 28e-6
)

// MacOverheadBytes is added to every datagram payload to form the on-air
// frame size.
const MacOverheadBytes = 36

// Defaults used by the channel builder.
const (
	DefaultPhyRateMbps        = 65.0
	DefaultCwMin              = 15
	DefaultCwMax              = 1023
	DefaultRetryLimit         = 7
	DefaultQueueCapacityBytes = 650000
)

// Notification hook positions fired on a station's device. The stats layer
// registers per-station hooks on these positions.
var (
	// HookPosAccessFailure fires when a transmission attempt collided but
	// stays eligible for retry.
	HookPosAccessFailure = &sim.HookPos{Name: "AccessFailure"}

	// HookPosFinalAccessFailure fires when a frame is abandoned after
	// exhausting its retry budget.
	HookPosFinalAccessFailure = &sim.HookPos{Name: "FinalAccessFailure"}

	// HookPosPhyDrop fires when a frame is dropped before ever contending,
	// e.g. on transmit queue overflow.
	HookPosPhyDrop = &sim.HookPos{Name: "PhyDrop"}

	// HookPosFrameTransmitted fires on successful transmission. Item is the
	// *Frame carrying the on-air byte size and the access mode tag.
	HookPosFrameTransmitted = &sim.HookPos{Name: "FrameTransmitted"}
)
