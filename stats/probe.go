package stats

import "github.com/airtimelab/wifair/sim"

// DefaultProbePeriod is the queue sampling period of the reference
// configuration.
const DefaultProbePeriod sim.VTimeInSec = 1e-3

// A QueueReader exposes instantaneous queue occupancy in bytes.
type QueueReader interface {
	QueueBytes() int
}

// A QueueProbe periodically samples one station's queue occupancy into the
// counter table. The probe self-reschedules for as long as the simulation
// runs; it has no stop state of its own. The last probe scheduled past the
// run horizon simply never executes.
type QueueProbe struct {
	engine  sim.Engine
	station int
	queue   QueueReader
	table   *CounterTable
	period  sim.VTimeInSec
}

type probeEvent struct {
	sim.EventBase
}

// NewQueueProbe creates a probe for the given station.
func NewQueueProbe(
	engine sim.Engine,
	station int,
	queue QueueReader,
	table *CounterTable,
	period sim.VTimeInSec,
) *QueueProbe {
	p := new(QueueProbe)
	p.engine = engine
	p.station = station
	p.queue = queue
	p.table = table
	p.period = period

	return p
}

// Start schedules the first sample one period from now.
func (p *QueueProbe) Start() {
	p.scheduleNext()
}

// Handle takes one sample and schedules the next.
func (p *QueueProbe) Handle(e sim.Event) error {
	p.table.SampleQueue(p.station, p.queue.QueueBytes())
	p.scheduleNext()
	return nil
}

func (p *QueueProbe) scheduleNext() {
	evt := &probeEvent{
		EventBase: sim.MakeEventBase(p.engine.CurrentTime()+p.period, p),
	}
	p.engine.Schedule(evt)
}
