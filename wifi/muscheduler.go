package wifi

import (
	"golang.org/x/exp/rand"

	"github.com/airtimelab/wifair/sim"
)

// A MuScheduler is the access point's round-robin multi user grant
// scheduler. When enabled it periodically opens trigger rounds: every
// managed station with backlog transmits one frame inside the round, without
// contending, tagged as scheduled access.
type MuScheduler struct {
	name   string
	engine sim.Engine
	rng    *rand.Rand

	channel *Channel

	// extra gap between consecutive rounds; zero means back to back
	interval sim.VTimeInSec

	stations []*Device

	pending *roundEvent
}

type roundEvent struct {
	sim.EventBase
}

// NewMuScheduler creates a multi user scheduler managing the given stations.
// Managed stations stop contending on their own; the scheduler is what puts
// their frames on the air.
func NewMuScheduler(
	name string,
	engine sim.Engine,
	channel *Channel,
	stations []*Device,
	interval sim.VTimeInSec,
	seed uint64,
) *MuScheduler {
	s := new(MuScheduler)
	s.name = name
	s.engine = engine
	s.rng = rand.New(rand.NewSource(seed))
	s.channel = channel
	s.interval = interval
	s.stations = stations

	channel.muSched = s
	for _, d := range stations {
		d.muManaged = true
	}

	return s
}

// Name returns the name of the scheduler.
func (s *MuScheduler) Name() string {
	return s.name
}

// Handle runs one trigger round.
func (s *MuScheduler) Handle(e sim.Event) error {
	s.pending = nil
	now := s.engine.CurrentTime()

	participants := s.backloggedStations()
	if len(participants) == 0 {
		// nothing to grant; the next backlog notification restarts rounds
		return nil
	}

	var maxAir sim.VTimeInSec
	for _, d := range participants {
		air := s.channel.airtime(d.headFrame().Bytes)
		if air > maxAir {
			maxAir = air
		}
	}
	duration := triggerAirtime + sifs + maxAir + sifs + ackAirtime

	if !s.channel.reserve(now + duration) {
		// lost the medium to a single user transmission, retry after it
		s.scheduleRound(s.channel.busyUntil + s.grantDelay())
		return nil
	}

	for _, d := range participants {
		f := d.headFrame()
		f.Mode = AccessScheduled
		d.notifyFrameTransmitted(f)
		d.dequeueHead()
		s.channel.ap.receive(f)
	}

	s.scheduleRound(now + duration + s.interval + s.grantDelay())

	return nil
}

// notifyBacklog is called through the channel when a managed station
// enqueues a frame. It kicks off rounds when none is pending.
func (s *MuScheduler) notifyBacklog() {
	if s.pending != nil {
		return
	}

	s.scheduleRound(s.engine.CurrentTime() + s.grantDelay())
}

func (s *MuScheduler) scheduleRound(at sim.VTimeInSec) {
	evt := &roundEvent{EventBase: sim.MakeEventBase(at, s)}
	s.pending = evt
	s.engine.Schedule(evt)
}

// grantDelay models the AP's own access delay before a trigger: DIFS plus a
// backoff drawn from the AP's contention window.
func (s *MuScheduler) grantDelay() sim.VTimeInSec {
	slots := s.rng.Intn(s.channel.ap.cwMin + 1)
	return difs + sim.VTimeInSec(slots)*slotTime
}

func (s *MuScheduler) backloggedStations() []*Device {
	var out []*Device
	for _, d := range s.stations {
		if d.QueueBytes() > 0 {
			out = append(out, d)
		}
	}
	return out
}
