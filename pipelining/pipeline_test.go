package pipelining

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wormnet/sim"
)

type pipelineItem struct {
	id string
}

func (i pipelineItem) TaskID() string {
	return i.id
}

func newItem(i int) pipelineItem {
	return pipelineItem{id: fmt.Sprintf("item-%d", i)}
}

var _ = Describe("Pipeline", func() {
	var (
		buf      sim.Buffer
		pipeline Pipeline
	)

	BeforeEach(func() {
		buf = sim.NewBuffer("PostPipelineBuf", 4)
		pipeline = MakeBuilder().
			WithNumStage(2).
			WithCyclePerStage(1).
			WithPipelineWidth(1).
			WithPostPipelineBuffer(buf).
			Build("Pipeline")
	})

	It("should deliver an item after one cycle per stage", func() {
		pipeline.Accept(newItem(1))

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(buf.Size()).To(Equal(0))

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(newItem(1)))

		Expect(pipeline.Tick()).To(BeFalse())
	})

	It("should hold items for multiple cycles per stage", func() {
		pipeline = MakeBuilder().
			WithNumStage(2).
			WithCyclePerStage(2).
			WithPipelineWidth(1).
			WithPostPipelineBuffer(buf).
			Build("Pipeline")

		pipeline.Accept(newItem(1))

		for i := 0; i < 3; i++ {
			Expect(pipeline.Tick()).To(BeTrue())
			Expect(buf.Size()).To(Equal(0))
		}

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))
	})

	It("should keep items in order", func() {
		pipeline.Accept(newItem(1))
		pipeline.Tick()
		pipeline.Accept(newItem(2))

		pipeline.Tick()
		pipeline.Tick()

		Expect(buf.Pop()).To(Equal(newItem(1)))
		Expect(buf.Pop()).To(Equal(newItem(2)))
	})

	It("should stall when the post-pipeline buffer is full", func() {
		buf = sim.NewBuffer("PostPipelineBuf", 1)
		pipeline = MakeBuilder().
			WithNumStage(1).
			WithCyclePerStage(1).
			WithPipelineWidth(1).
			WithPostPipelineBuffer(buf).
			Build("Pipeline")

		pipeline.Accept(newItem(1))
		pipeline.Tick()
		pipeline.Accept(newItem(2))

		Expect(pipeline.Tick()).To(BeFalse())
		Expect(pipeline.CanAccept()).To(BeFalse())

		buf.Pop()

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(buf.Pop()).To(Equal(newItem(2)))
	})

	It("should refuse a new item when the first stage is occupied", func() {
		pipeline.Accept(newItem(1))

		Expect(pipeline.CanAccept()).To(BeFalse())
		Expect(func() { pipeline.Accept(newItem(2)) }).To(Panic())
	})

	It("should accept one item per lane", func() {
		pipeline = MakeBuilder().
			WithNumStage(2).
			WithCyclePerStage(1).
			WithPipelineWidth(2).
			WithPostPipelineBuffer(buf).
			Build("Pipeline")

		pipeline.Accept(newItem(1))
		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(newItem(2))
		Expect(pipeline.CanAccept()).To(BeFalse())

		pipeline.Tick()
		pipeline.Tick()

		Expect(buf.Size()).To(Equal(2))
	})

	It("should bypass the stages when there are none", func() {
		pipeline = MakeBuilder().
			WithNumStage(0).
			WithCyclePerStage(1).
			WithPipelineWidth(1).
			WithPostPipelineBuffer(buf).
			Build("Pipeline")

		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(newItem(1))

		Expect(buf.Pop()).To(Equal(newItem(1)))
	})

	It("should discard in-flight items on clear", func() {
		pipeline.Accept(newItem(1))

		pipeline.Clear()

		Expect(pipeline.Tick()).To(BeFalse())
		Expect(pipeline.CanAccept()).To(BeTrue())
	})
})
