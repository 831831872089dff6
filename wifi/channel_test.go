package wifi

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airtimelab/wifair/sim"
)

// hookRecorder counts fired notifications by position name and keeps the
// transmitted frames.
type hookRecorder struct {
	counts map[string]int
	frames []*Frame
}

func newHookRecorder() *hookRecorder {
	return &hookRecorder{counts: make(map[string]int)}
}

func (h *hookRecorder) Func(ctx sim.HookCtx) {
	h.counts[ctx.Pos.Name]++
	if ctx.Pos == HookPosFrameTransmitted {
		h.frames = append(h.frames, ctx.Item.(*Frame))
	}
}

var _ = Describe("Channel", func() {
	var (
		engine  *sim.SerialEngine
		ap      *AccessPoint
		channel *Channel
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		ap = NewAccessPoint("AP", 2, DefaultCwMin, DefaultCwMax)
		channel = MakeChannelBuilder().
			WithEngine(engine).
			WithAccessPoint(ap).
			WithSeed(1).
			Build("Channel")
	})

	It("should deliver a lone station's frame", func() {
		dev := NewDevice("STA0", 0, ClassLegacy, channel,
			DefaultQueueCapacityBytes)
		rec := newHookRecorder()
		dev.AcceptHook(rec)

		Expect(dev.Send(1200)).To(Succeed())
		Expect(dev.QueueBytes()).To(Equal(1200 + MacOverheadBytes))

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRx(0)).To(Equal(uint64(1200)))
		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(1)))
		Expect(dev.QueueBytes()).To(Equal(0))

		Expect(rec.counts["AccessFailure"]).To(Equal(0))
		Expect(rec.frames).To(HaveLen(1))
		Expect(rec.frames[0].Mode).To(Equal(AccessSingleUser))
	})

	It("should drain a backlog in order", func() {
		dev := NewDevice("STA0", 0, ClassLegacy, channel,
			DefaultQueueCapacityBytes)

		for i := 0; i < 5; i++ {
			Expect(dev.Send(1200)).To(Succeed())
		}

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(5)))
		Expect(ap.TotalRx(0)).To(Equal(uint64(5 * 1200)))
		Expect(dev.QueueBytes()).To(Equal(0))
	})

	It("should deliver frames from two contending stations", func() {
		dev0 := NewDevice("STA0", 0, ClassLegacy, channel,
			DefaultQueueCapacityBytes)
		dev1 := NewDevice("STA1", 1, ClassLegacy, channel,
			DefaultQueueCapacityBytes)
		rec0 := newHookRecorder()
		rec1 := newHookRecorder()
		dev0.AcceptHook(rec0)
		dev1.AcceptHook(rec1)

		Expect(dev0.Send(1200)).To(Succeed())
		Expect(dev1.Send(800)).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(1)))
		Expect(ap.TotalRxFrames(1)).To(Equal(uint64(1)))
		Expect(ap.TotalRx(0)).To(Equal(uint64(1200)))
		Expect(ap.TotalRx(1)).To(Equal(uint64(800)))

		transmitted := len(rec0.frames) + len(rec1.frames)
		received := ap.TotalRxFrames(0) + ap.TotalRxFrames(1)
		Expect(uint64(transmitted)).To(Equal(received))
	})

	It("should drop a frame that overflows the transmit queue", func() {
		dev := NewDevice("STA0", 0, ClassLegacy, channel, 2000)
		rec := newHookRecorder()
		dev.AcceptHook(rec)

		Expect(dev.Send(1200)).To(Succeed())
		Expect(dev.Send(1200)).To(Succeed())

		Expect(rec.counts["PhyDrop"]).To(Equal(1))

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(1)))
		Expect(ap.TotalRx(0)).To(Equal(uint64(1200)))
	})
})
