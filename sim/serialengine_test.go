package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type taggedEvent struct {
	EventBase
	tag int
}

func newTaggedEvent(t VTimeInSec, h Handler, tag int) *taggedEvent {
	return &taggedEvent{EventBase: MakeEventBase(t, h), tag: tag}
}

type recordingHandler struct {
	handled  []*taggedEvent
	onHandle func(e *taggedEvent)
}

func (h *recordingHandler) Handle(e Event) error {
	evt := e.(*taggedEvent)
	h.handled = append(h.handled, evt)
	if h.onHandle != nil {
		h.onHandle(evt)
	}
	return nil
}

func (h *recordingHandler) tags() []int {
	tags := make([]int, 0, len(h.handled))
	for _, e := range h.handled {
		tags = append(tags, e.tag)
	}
	return tags
}

type endRecorder struct {
	called bool
	at     VTimeInSec
}

func (r *endRecorder) Handle(now VTimeInSec) {
	r.called = true
	r.at = now
}

type eventCountingHook struct {
	before int
	after  int
}

func (h *eventCountingHook) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeEvent:
		h.before++
	case HookPosAfterEvent:
		h.after++
	}
}

var _ = Describe("SerialEngine", func() {
	var (
		engine  *SerialEngine
		handler *recordingHandler
	)

	BeforeEach(func() {
		engine = NewSerialEngine()
		handler = &recordingHandler{}
	})

	It("should run events in time order", func() {
		engine.Schedule(newTaggedEvent(4.0, handler, 4))
		engine.Schedule(newTaggedEvent(2.0, handler, 2))
		engine.Schedule(newTaggedEvent(3.0, handler, 3))

		Expect(engine.Run()).To(Succeed())

		Expect(handler.tags()).To(Equal([]int{2, 3, 4}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(4.0)))
	})

	It("should keep scheduling order for events at the same time", func() {
		for i := 0; i < 10; i++ {
			engine.Schedule(newTaggedEvent(1.0, handler, i))
		}

		Expect(engine.Run()).To(Succeed())

		Expect(handler.tags()).To(
			Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	})

	It("should let a handler schedule follow-up events", func() {
		handler.onHandle = func(e *taggedEvent) {
			if e.tag == 1 {
				engine.Schedule(newTaggedEvent(2.5, handler, 2))
			}
		}

		engine.Schedule(newTaggedEvent(2.0, handler, 1))
		engine.Schedule(newTaggedEvent(3.0, handler, 3))

		Expect(engine.Run()).To(Succeed())

		Expect(handler.tags()).To(Equal([]int{1, 2, 3}))
	})

	It("should discard canceled events without handling them", func() {
		canceled := newTaggedEvent(1.0, handler, 1)
		kept := newTaggedEvent(2.0, handler, 2)

		engine.Schedule(canceled)
		engine.Schedule(kept)
		canceled.Cancel()

		Expect(engine.Run()).To(Succeed())

		Expect(handler.tags()).To(Equal([]int{2}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(2.0)))
	})

	It("should leave events beyond the horizon unexecuted", func() {
		engine.Schedule(newTaggedEvent(1.0, handler, 1))
		engine.Schedule(newTaggedEvent(3.0, handler, 3))

		Expect(engine.RunUntil(2.0)).To(Succeed())

		Expect(handler.tags()).To(Equal([]int{1}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(1.0)))
	})

	It("should run an event scheduled exactly at the horizon", func() {
		engine.Schedule(newTaggedEvent(2.0, handler, 2))

		Expect(engine.RunUntil(2.0)).To(Succeed())

		Expect(handler.tags()).To(Equal([]int{2}))
	})

	It("should panic when scheduling into the past", func() {
		engine.Schedule(newTaggedEvent(2.0, handler, 2))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(newTaggedEvent(1.0, handler, 1))
		}).To(Panic())
	})

	It("should call end handlers with the final time", func() {
		recorder := &endRecorder{}
		engine.RegisterSimulationEndHandler(recorder)

		engine.Schedule(newTaggedEvent(5.0, handler, 5))
		Expect(engine.Run()).To(Succeed())
		engine.Finished()

		Expect(recorder.called).To(BeTrue())
		Expect(recorder.at).To(Equal(VTimeInSec(5.0)))
	})

	It("should invoke hooks around each handled event", func() {
		hook := &eventCountingHook{}
		engine.AcceptHook(hook)

		canceled := newTaggedEvent(1.0, handler, 1)
		engine.Schedule(canceled)
		engine.Schedule(newTaggedEvent(2.0, handler, 2))
		engine.Schedule(newTaggedEvent(3.0, handler, 3))
		canceled.Cancel()

		Expect(engine.Run()).To(Succeed())

		Expect(hook.before).To(Equal(2))
		Expect(hook.after).To(Equal(2))
	})
})
