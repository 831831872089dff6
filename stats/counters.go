package stats

import "github.com/airtimelab/wifair/wifi"

// StationCounters is the raw per-station counter record filled in during a
// run.
type StationCounters struct {
	// contention failures that left the frame eligible for retry
	AccessFailures uint64

	// frames abandoned after exhausting the retry budget
	FinalFailures uint64

	// frames dropped before ever contending
	PhyDrops uint64

	// queue occupancy accumulation, bytes summed over samples
	QueueByteSum uint64
	QueueSamples uint64

	// frames classified by access mode, scheduled (multi user) vs single
	// user
	ScheduledFrames  uint64
	ScheduledBytes   uint64
	SingleUserFrames uint64
	SingleUserBytes  uint64
}

// A CounterTable holds one StationCounters record per station. The table is
// allocated once, fully sized, and never resized during a run, so pointers
// into it stay valid for the run's lifetime.
//
// All mutation happens serially inside the event processing sequence, and
// the table is only read after the run completes, so no locking is needed.
type CounterTable struct {
	counters []StationCounters
}

// NewCounterTable creates a table sized for nStations stations.
func NewCounterTable(nStations int) *CounterTable {
	t := new(CounterTable)
	t.counters = make([]StationCounters, nStations)
	return t
}

// Len returns the number of stations in the table.
func (t *CounterTable) Len() int {
	return len(t.counters)
}

// Station returns the counter record of the given station. The pointer stays
// valid for the table's lifetime.
func (t *CounterTable) Station(i int) *StationCounters {
	return &t.counters[i]
}

// OnAccessFailure records one contention failure for the station.
func (t *CounterTable) OnAccessFailure(station int) {
	t.counters[station].AccessFailures++
}

// OnFinalAccessFailure records one retry budget exhaustion for the station.
func (t *CounterTable) OnFinalAccessFailure(station int) {
	t.counters[station].FinalFailures++
}

// OnPhysicalDrop records one physical layer drop for the station.
func (t *CounterTable) OnPhysicalDrop(station int) {
	t.counters[station].PhyDrops++
}

// OnFrameTransmitted classifies one transmitted frame by its access mode.
// Modes other than scheduled and single user are ignored.
func (t *CounterTable) OnFrameTransmitted(
	station int,
	frameBytes int,
	mode wifi.AccessMode,
) {
	switch mode {
	case wifi.AccessScheduled:
		t.counters[station].ScheduledFrames++
		t.counters[station].ScheduledBytes += uint64(frameBytes)
	case wifi.AccessSingleUser:
		t.counters[station].SingleUserFrames++
		t.counters[station].SingleUserBytes += uint64(frameBytes)
	}
}

// SampleQueue records one instantaneous queue occupancy reading.
func (t *CounterTable) SampleQueue(station int, queueBytes int) {
	t.counters[station].QueueByteSum += uint64(queueBytes)
	t.counters[station].QueueSamples++
}
