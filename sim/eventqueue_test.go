package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		queue   *EventQueueImpl
		handler *recordingHandler
	)

	BeforeEach(func() {
		queue = NewEventQueue()
		handler = &recordingHandler{}
	})

	It("should pop in time order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			t := VTimeInSec(rand.Float64() / 1e8)
			queue.Push(newTaggedEvent(t, handler, i))
		}

		now := VTimeInSec(-1)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time() >= now).To(BeTrue())
			now = event.Time()
		}
	})

	It("should pop same-time events in push order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(newTaggedEvent(1.0, handler, i))
		}

		for i := 0; i < numEvents; i++ {
			event := queue.Pop().(*taggedEvent)
			Expect(event.tag).To(Equal(i))
		}
	})

	It("should peek without removing", func() {
		queue.Push(newTaggedEvent(2.0, handler, 2))
		queue.Push(newTaggedEvent(1.0, handler, 1))

		Expect(queue.Peek().Time()).To(Equal(VTimeInSec(1.0)))
		Expect(queue.Len()).To(Equal(2))
	})
})
