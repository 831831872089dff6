package wifi

import (
	"log"

	"golang.org/x/exp/rand"

	"github.com/airtimelab/wifair/sim"
)

// A Channel is the shared wireless medium. It arbitrates single user access
// among contending station devices with a DCF-style backoff abstraction:
// each contender draws a uniform backoff in [0, CW] slots, the window
// doubles on failure, two attempts landing in the same slot collide, and a
// frame is abandoned after the retry budget runs out.
type Channel struct {
	name   string
	engine sim.Engine
	rng    *rand.Rand

	ap      *AccessPoint
	muSched *MuScheduler

	phyRateMbps float64
	cwMin       int
	cwMax       int
	retryLimit  int

	busyUntil   sim.VTimeInSec
	lastTxStart sim.VTimeInSec
	collidedAt  sim.VTimeInSec
	current     *contender

	contenders map[int]*contender
}

// A contender tracks one device's contention state: its current window, the
// retry count of the head frame, and the handles of its pending events.
type contender struct {
	dev     *Device
	cw      int
	retries int

	attempt *attemptEvent
	txDone  *txDoneEvent
}

type attemptEvent struct {
	sim.EventBase
	cont *contender
}

type txDoneEvent struct {
	sim.EventBase
	cont  *contender
	frame *Frame
}

// ChannelBuilder can build channels.
type ChannelBuilder struct {
	engine      sim.Engine
	ap          *AccessPoint
	phyRateMbps float64
	cwMin       int
	cwMax       int
	retryLimit  int
	seed        uint64
}

// MakeChannelBuilder creates a ChannelBuilder with default parameters.
func MakeChannelBuilder() ChannelBuilder {
	return ChannelBuilder{
		phyRateMbps: DefaultPhyRateMbps,
		cwMin:       DefaultCwMin,
		cwMax:       DefaultCwMax,
		retryLimit:  DefaultRetryLimit,
		seed:        1,
	}
}

// WithEngine sets the engine that drives the channel.
func (b ChannelBuilder) WithEngine(engine sim.Engine) ChannelBuilder {
	b.engine = engine
	return b
}

// WithAccessPoint sets the access point frames are delivered to.
func (b ChannelBuilder) WithAccessPoint(ap *AccessPoint) ChannelBuilder {
	b.ap = ap
	return b
}

// WithPhyRate sets the physical layer rate in Mbps.
func (b ChannelBuilder) WithPhyRate(mbps float64) ChannelBuilder {
	b.phyRateMbps = mbps
	return b
}

// WithContentionWindow sets the station backoff window bounds.
func (b ChannelBuilder) WithContentionWindow(min, max int) ChannelBuilder {
	b.cwMin = min
	b.cwMax = max
	return b
}

// WithRetryLimit sets how many access failures a frame survives before it is
// abandoned.
func (b ChannelBuilder) WithRetryLimit(limit int) ChannelBuilder {
	b.retryLimit = limit
	return b
}

// WithSeed seeds the backoff random stream.
func (b ChannelBuilder) WithSeed(seed uint64) ChannelBuilder {
	b.seed = seed
	return b
}

// Build creates the channel.
func (b ChannelBuilder) Build(name string) *Channel {
	if b.engine == nil {
		log.Panic("channel requires an engine")
	}
	if b.ap == nil {
		log.Panic("channel requires an access point")
	}

	c := &Channel{
		name:        name,
		engine:      b.engine,
		rng:         rand.New(rand.NewSource(b.seed)),
		ap:          b.ap,
		phyRateMbps: b.phyRateMbps,
		cwMin:       b.cwMin,
		cwMax:       b.cwMax,
		retryLimit:  b.retryLimit,
		lastTxStart: -1,
		collidedAt:  -1,
		contenders:  make(map[int]*contender),
	}

	return c
}

// Name returns the name of the channel.
func (c *Channel) Name() string {
	return c.name
}

// Handle processes backoff expirations and transmission completions.
func (c *Channel) Handle(e sim.Event) error {
	switch evt := e.(type) {
	case *attemptEvent:
		c.handleAttempt(evt)
	case *txDoneEvent:
		c.handleTxDone(evt)
	default:
		log.Panicf("channel cannot handle event %T", e)
	}

	return nil
}

// notifyBacklog is called by a device when it has frames waiting. Contention
// devices enter the backoff machinery; trigger-managed devices are left for
// the multi user scheduler.
func (c *Channel) notifyBacklog(d *Device) {
	if d.muManaged {
		if c.muSched != nil {
			c.muSched.notifyBacklog()
		}
		return
	}

	c.startContention(d)
}

func (c *Channel) startContention(d *Device) {
	if _, ok := c.contenders[d.index]; ok {
		return
	}

	cont := &contender{dev: d, cw: c.cwMin}
	c.contenders[d.index] = cont
	c.scheduleAttempt(cont)
}

func (c *Channel) scheduleAttempt(cont *contender) {
	base := c.engine.CurrentTime()
	if c.busyUntil > base {
		base = c.busyUntil
	}

	slots := c.rng.Intn(cont.cw + 1)
	at := base + difs + sim.VTimeInSec(slots)*slotTime

	evt := &attemptEvent{
		EventBase: sim.MakeEventBase(at, c),
		cont:      cont,
	}
	cont.attempt = evt
	c.engine.Schedule(evt)
}

func (c *Channel) handleAttempt(evt *attemptEvent) {
	cont := evt.cont
	cont.attempt = nil

	frame := cont.dev.headFrame()
	if frame == nil {
		delete(c.contenders, cont.dev.index)
		return
	}

	now := evt.Time()

	if now < c.busyUntil {
		if now == c.lastTxStart {
			// another station picked the same backoff slot
			c.collide(cont, now)
			return
		}
		if now == c.collidedAt {
			// a third station joining an already garbled slot
			c.failAccess(cont)
			return
		}
		// the medium was seized earlier, resume backoff once it frees
		c.scheduleAttempt(cont)
		return
	}

	c.beginTransmission(cont, frame, now)
}

func (c *Channel) beginTransmission(
	cont *contender,
	frame *Frame,
	now sim.VTimeInSec,
) {
	frame.Mode = AccessSingleUser

	c.lastTxStart = now
	c.collidedAt = -1
	c.busyUntil = now + c.airtime(frame.Bytes) + sifs + ackAirtime
	c.current = cont

	done := &txDoneEvent{
		EventBase: sim.MakeEventBase(c.busyUntil, c),
		cont:      cont,
		frame:     frame,
	}
	cont.txDone = done
	c.engine.Schedule(done)
}

func (c *Channel) collide(cont *contender, now sim.VTimeInSec) {
	other := c.current
	c.current = nil
	c.lastTxStart = -1
	c.collidedAt = now
	// the garbled exchange keeps occupying the medium until busyUntil

	if other != nil {
		other.txDone.Cancel()
		other.txDone = nil
		c.failAccess(other)
	}
	c.failAccess(cont)
}

func (c *Channel) failAccess(cont *contender) {
	d := cont.dev
	frame := d.headFrame()
	d.notifyAccessFailure(frame)

	cont.retries++
	if cont.retries > c.retryLimit {
		d.notifyFinalAccessFailure(frame)
		d.dequeueHead()
		cont.retries = 0
		cont.cw = c.cwMin

		if d.headFrame() == nil {
			delete(c.contenders, d.index)
			return
		}
	} else {
		cont.cw = cont.cw*2 + 1
		if cont.cw > c.cwMax {
			cont.cw = c.cwMax
		}
	}

	c.scheduleAttempt(cont)
}

func (c *Channel) handleTxDone(evt *txDoneEvent) {
	cont := evt.cont
	cont.txDone = nil
	c.current = nil
	c.lastTxStart = -1

	d := cont.dev
	d.notifyFrameTransmitted(evt.frame)
	d.dequeueHead()
	c.ap.receive(evt.frame)

	cont.retries = 0
	cont.cw = c.cwMin

	if d.headFrame() != nil {
		c.scheduleAttempt(cont)
	} else {
		delete(c.contenders, d.index)
	}
}

// reserve blocks contention access until the given time. It fails when the
// medium is already busy.
func (c *Channel) reserve(until sim.VTimeInSec) bool {
	if c.engine.CurrentTime() < c.busyUntil {
		return false
	}

	c.busyUntil = until
	c.lastTxStart = -1
	c.collidedAt = -1

	return true
}

func (c *Channel) airtime(bytes int) sim.VTimeInSec {
	return preamble + sim.VTimeInSec(float64(bytes)*8/(c.phyRateMbps*1e6))
}
