package wifi

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/airtimelab/wifair/sim"
)

var _ = Describe("MuScheduler", func() {
	var (
		engine  *sim.SerialEngine
		ap      *AccessPoint
		channel *Channel
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		ap = NewAccessPoint("AP", 3, DefaultCwMin, DefaultCwMax)
		channel = MakeChannelBuilder().
			WithEngine(engine).
			WithAccessPoint(ap).
			WithSeed(1).
			Build("Channel")
	})

	It("should serve all backlogged stations in one round", func() {
		dev0 := NewDevice("STA0", 0, ClassScheduled, channel,
			DefaultQueueCapacityBytes)
		dev1 := NewDevice("STA1", 1, ClassScheduled, channel,
			DefaultQueueCapacityBytes)
		NewMuScheduler("MuSched", engine, channel,
			[]*Device{dev0, dev1}, 0, 1)

		rec0 := newHookRecorder()
		rec1 := newHookRecorder()
		dev0.AcceptHook(rec0)
		dev1.AcceptHook(rec1)

		Expect(dev0.Send(1200)).To(Succeed())
		Expect(dev1.Send(1200)).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(1)))
		Expect(ap.TotalRxFrames(1)).To(Equal(uint64(1)))

		Expect(rec0.frames[0].Mode).To(Equal(AccessScheduled))
		Expect(rec1.frames[0].Mode).To(Equal(AccessScheduled))

		// managed stations never enter contention
		Expect(rec0.counts["AccessFailure"]).To(Equal(0))
		Expect(rec1.counts["AccessFailure"]).To(Equal(0))
	})

	It("should keep granting rounds while backlog remains", func() {
		dev := NewDevice("STA0", 0, ClassScheduled, channel,
			DefaultQueueCapacityBytes)
		NewMuScheduler("MuSched", engine, channel, []*Device{dev}, 0, 1)

		for i := 0; i < 3; i++ {
			Expect(dev.Send(1200)).To(Succeed())
		}

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(3)))
		Expect(dev.QueueBytes()).To(Equal(0))
	})

	It("should coexist with a legacy contender", func() {
		legacy := NewDevice("STA0", 0, ClassLegacy, channel,
			DefaultQueueCapacityBytes)
		sched := NewDevice("STA1", 1, ClassScheduled, channel,
			DefaultQueueCapacityBytes)
		NewMuScheduler("MuSched", engine, channel, []*Device{sched}, 0, 1)

		recLegacy := newHookRecorder()
		recSched := newHookRecorder()
		legacy.AcceptHook(recLegacy)
		sched.AcceptHook(recSched)

		Expect(legacy.Send(1200)).To(Succeed())
		Expect(sched.Send(1200)).To(Succeed())

		Expect(engine.Run()).To(Succeed())

		Expect(ap.TotalRxFrames(0)).To(Equal(uint64(1)))
		Expect(ap.TotalRxFrames(1)).To(Equal(uint64(1)))

		Expect(recLegacy.frames[0].Mode).To(Equal(AccessSingleUser))
		Expect(recSched.frames[0].Mode).To(Equal(AccessScheduled))
	})
})
