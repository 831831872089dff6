package wifi

import (
	"github.com/airtimelab/wifair/sim"
)

// A Device is one station's network interface. It owns the uplink transmit
// queue and is the domain on which the per-station notification hooks fire.
type Device struct {
	sim.HookableBase

	name  string
	index int
	class StationClass

	channel *Channel

	// a trigger-managed device never contends on its own; the AP's
	// multi user scheduler grants it transmission opportunities
	muManaged bool

	queue      []*Frame
	queueBytes int
	capacity   int
}

// NewDevice creates a station device attached to the shared channel.
// queueCapacity bounds the transmit queue in bytes.
func NewDevice(
	name string,
	index int,
	class StationClass,
	channel *Channel,
	queueCapacity int,
) *Device {
	d := new(Device)
	d.name = name
	d.index = index
	d.class = class
	d.channel = channel
	d.capacity = queueCapacity

	return d
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Index returns the station index of the device.
func (d *Device) Index() int {
	return d.index
}

// Class returns the station class of the device.
func (d *Device) Class() StationClass {
	return d.class
}

// QueueBytes returns the instantaneous transmit queue occupancy in bytes.
// This is the attribute the queue probe samples.
func (d *Device) QueueBytes() int {
	return d.queueBytes
}

// Send enqueues one uplink datagram for transmission. A full queue drops the
// frame silently, after firing the drop notification.
func (d *Device) Send(payloadBytes int) error {
	f := &Frame{
		Station: d.index,
		Payload: payloadBytes,
		Bytes:   payloadBytes + MacOverheadBytes,
	}

	if d.queueBytes+f.Bytes > d.capacity {
		d.notifyDrop(f)
		return nil
	}

	d.queue = append(d.queue, f)
	d.queueBytes += f.Bytes

	d.channel.notifyBacklog(d)

	return nil
}

// headFrame returns the frame at the front of the transmit queue, nil when
// the queue is empty.
func (d *Device) headFrame() *Frame {
	if len(d.queue) == 0 {
		return nil
	}
	return d.queue[0]
}

// dequeueHead removes the frame at the front of the transmit queue.
func (d *Device) dequeueHead() {
	f := d.queue[0]
	d.queue = d.queue[1:]
	d.queueBytes -= f.Bytes
}

func (d *Device) notifyAccessFailure(f *Frame) {
	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosAccessFailure,
		Item:   f,
	})
}

func (d *Device) notifyFinalAccessFailure(f *Frame) {
	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosFinalAccessFailure,
		Item:   f,
	})
}

func (d *Device) notifyDrop(f *Frame) {
	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosPhyDrop,
		Item:   f,
	})
}

func (d *Device) notifyFrameTransmitted(f *Frame) {
	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosFrameTransmitted,
		Item:   f,
	})
}
