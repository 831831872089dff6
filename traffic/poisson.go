package traffic

import (
	"log"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/airtimelab/wifair/sim"
)

// An Endpoint is the send-capable handle a source transmits through. A
// station device implements it.
type Endpoint interface {
	Send(payloadBytes int) error
}

// A PoissonSource generates uplink datagrams with exponentially distributed
// inter-arrival times, the memoryless load model for independent traffic
// sources sharing a medium.
//
// A source is either idle or running. While running it keeps at most one
// pending send event, and Stop cancels that event, so no send ever fires on
// a stopped source.
type PoissonSource struct {
	name   string
	engine sim.Engine

	endpoint Endpoint
	payload  int
	rate     float64
	sendCap  uint64 // 0 means unlimited

	interArrival distuv.Exponential

	running bool
	sent    uint64
	pending *sendEvent
}

type sendEvent struct {
	sim.EventBase
}

// PoissonSourceBuilder can build Poisson sources.
type PoissonSourceBuilder struct {
	engine   sim.Engine
	endpoint Endpoint
	payload  int
	rate     float64
	sendCap  uint64
	seed     uint64
}

// MakePoissonSourceBuilder creates a PoissonSourceBuilder with default
// parameters.
func MakePoissonSourceBuilder() PoissonSourceBuilder {
	return PoissonSourceBuilder{
		payload: 1200,
		rate:    100,
		seed:    1,
	}
}

// WithEngine sets the engine the source schedules on.
func (b PoissonSourceBuilder) WithEngine(engine sim.Engine) PoissonSourceBuilder {
	b.engine = engine
	return b
}

// WithEndpoint sets the endpoint the source transmits through.
func (b PoissonSourceBuilder) WithEndpoint(ep Endpoint) PoissonSourceBuilder {
	b.endpoint = ep
	return b
}

// WithPayloadSize sets the fixed datagram payload size in bytes.
func (b PoissonSourceBuilder) WithPayloadSize(bytes int) PoissonSourceBuilder {
	b.payload = bytes
	return b
}

// WithRate sets the mean arrival rate in packets per second. A source with
// a non-positive rate stays permanently idle.
func (b PoissonSourceBuilder) WithRate(pktPerSec float64) PoissonSourceBuilder {
	b.rate = pktPerSec
	return b
}

// WithSendCap bounds the number of datagrams the source will send. Zero
// means unlimited.
func (b PoissonSourceBuilder) WithSendCap(cap uint64) PoissonSourceBuilder {
	b.sendCap = cap
	return b
}

// WithSeed seeds the inter-arrival random stream.
func (b PoissonSourceBuilder) WithSeed(seed uint64) PoissonSourceBuilder {
	b.seed = seed
	return b
}

// Build creates the source.
func (b PoissonSourceBuilder) Build(name string) *PoissonSource {
	if b.engine == nil {
		log.Panic("poisson source requires an engine")
	}
	if b.endpoint == nil {
		log.Panic("poisson source requires an endpoint")
	}

	s := &PoissonSource{
		name:     name,
		engine:   b.engine,
		endpoint: b.endpoint,
		payload:  b.payload,
		rate:     b.rate,
		sendCap:  b.sendCap,
	}

	if b.rate > 0 {
		s.interArrival = distuv.Exponential{
			Rate: b.rate,
			Src:  rand.NewSource(b.seed),
		}
	}

	return s
}

// Name returns the name of the source.
func (s *PoissonSource) Name() string {
	return s.name
}

// Rate returns the assigned arrival rate in packets per second.
func (s *PoissonSource) Rate() float64 {
	return s.rate
}

// SentCount returns the number of datagrams sent so far.
func (s *PoissonSource) SentCount() uint64 {
	return s.sent
}

// Running reports whether the source is generating traffic.
func (s *PoissonSource) Running() bool {
	return s.running
}

// Start transitions the source to running and schedules its first send.
func (s *PoissonSource) Start() {
	if s.running {
		return
	}

	s.running = true
	s.scheduleNext()
}

// Stop transitions the source to idle and cancels the pending send, if any.
// After Stop returns, no send from this source will fire.
func (s *PoissonSource) Stop() {
	if !s.running {
		return
	}

	s.running = false
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
}

// Handle fires one send and schedules the next.
func (s *PoissonSource) Handle(e sim.Event) error {
	s.pending = nil
	s.sendOnce()
	return nil
}

func (s *PoissonSource) sendOnce() {
	if !s.running {
		return
	}

	if s.sendCap != 0 && s.sent >= s.sendCap {
		return
	}

	if err := s.endpoint.Send(s.payload); err != nil {
		log.Printf("%s: send failed: %v", s.name, err)
	}
	s.sent++

	s.scheduleNext()
}

func (s *PoissonSource) scheduleNext() {
	if !s.running || s.rate <= 0 {
		return
	}

	delay := sim.VTimeInSec(s.interArrival.Rand())
	evt := &sendEvent{
		EventBase: sim.MakeEventBase(s.engine.CurrentTime()+delay, s),
	}
	s.pending = evt
	s.engine.Schedule(evt)
}
