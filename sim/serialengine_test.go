package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	handled []Event
}

func (h *recordingHandler) Handle(e Event) error {
	h.handled = append(h.handled, e)
	return nil
}

type secondaryEvent struct {
	*EventBase
}

func newSecondaryEvent(t VTimeInSec, handler Handler) secondaryEvent {
	base := NewEventBase(t, handler)
	base.secondary = true
	return secondaryEvent{base}
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
		evt1 := NewEventBase(3.0, handler)
		evt2 := NewEventBase(1.0, handler)
		evt3 := NewEventBase(2.0, handler)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(handler.handled).To(HaveLen(3))
		Expect(handler.handled[0].Time()).To(Equal(VTimeInSec(1.0)))
		Expect(handler.handled[1].Time()).To(Equal(VTimeInSec(2.0)))
		Expect(handler.handled[2].Time()).To(Equal(VTimeInSec(3.0)))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(3.0)))
	})

	It("should run same-time primary events before secondary events", func() {
		primary := NewEventBase(1.0, handler)
		secondary := newSecondaryEvent(1.0, handler)

		engine.Schedule(secondary)
		engine.Schedule(primary)

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(handler.handled).To(HaveLen(2))
		Expect(handler.handled[0]).To(
			BeAssignableToTypeOf(&EventBase{}))
		Expect(handler.handled[1]).To(
			BeAssignableToTypeOf(secondaryEvent{}))
	})

	It("should run an earlier secondary event before a later primary event", func() {
		primary := NewEventBase(2.0, handler)
		secondary := newSecondaryEvent(1.0, handler)

		engine.Schedule(primary)
		engine.Schedule(secondary)

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(handler.handled[0].Time()).To(Equal(VTimeInSec(1.0)))
		Expect(handler.handled[1].Time()).To(Equal(VTimeInSec(2.0)))
	})

	It("should panic when scheduling an event in the past", func() {
		engine.Schedule(NewEventBase(2.0, handler))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(NewEventBase(1.0, handler))
		}).To(Panic())
	})

	It("should invoke simulation end handlers on Finished", func() {
		endHandler := &recordingEndHandler{}
		engine.RegisterSimulationEndHandler(endHandler)

		engine.Schedule(NewEventBase(1.5, handler))
		Expect(engine.Run()).To(Succeed())

		engine.Finished()

		Expect(endHandler.times).To(Equal([]VTimeInSec{1.5}))
	})
})

type recordingEndHandler struct {
	times []VTimeInSec
}

func (h *recordingEndHandler) Handle(now VTimeInSec) {
	h.times = append(h.times, now)
}
