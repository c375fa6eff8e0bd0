package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		queue *EventQueueImpl
	)

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop events in time order", func() {
		evt1 := NewEventBase(2.0, nil)
		evt2 := NewEventBase(1.0, nil)
		evt3 := NewEventBase(3.0, nil)

		queue.Push(evt1)
		queue.Push(evt2)
		queue.Push(evt3)

		Expect(queue.Len()).To(Equal(3))
		Expect(queue.Peek().Time()).To(Equal(VTimeInSec(1.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(1.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(2.0)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(3.0)))
		Expect(queue.Len()).To(Equal(0))
	})
})
