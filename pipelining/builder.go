package pipelining

import "github.com/sarchlab/wormnet/sim"

// Builder can build pipelines.
type Builder struct {
	width           int
	numStage        int
	cyclePerStage   int
	postPipelineBuf sim.Buffer
}

// MakeBuilder creates a default builder.
func MakeBuilder() Builder {
	return Builder{
		width:         1,
		numStage:      5,
		cyclePerStage: 1,
	}
}

// WithPipelineWidth sets the number of lanes in the pipeline. Items in
// different lanes can advance in parallel in the same cycle.
func (b Builder) WithPipelineWidth(width int) Builder {
	b.width = width
	return b
}

// WithNumStage sets the number of pipeline stages.
func (b Builder) WithNumStage(n int) Builder {
	b.numStage = n
	return b
}

// WithCyclePerStage sets the number of cycles that each element needs to
// stay in each stage.
func (b Builder) WithCyclePerStage(n int) Builder {
	b.cyclePerStage = n
	return b
}

// WithPostPipelineBuffer sets the buffer that the elements are pushed to
// after passing through the pipeline.
func (b Builder) WithPostPipelineBuffer(buf sim.Buffer) Builder {
	b.postPipelineBuf = buf
	return b
}

// Build creates a pipeline.
func (b Builder) Build(name string) Pipeline {
	sim.NameMustBeValid(name)

	b.mustHaveValidParams()

	p := &pipelineImpl{
		name:            name,
		width:           b.width,
		numStage:        b.numStage,
		cyclePerStage:   b.cyclePerStage,
		postPipelineBuf: b.postPipelineBuf,
	}

	p.Clear()

	return p
}

func (b Builder) mustHaveValidParams() {
	if b.width <= 0 {
		panic("pipeline width must be positive")
	}

	if b.numStage < 0 {
		panic("the number of pipeline stages must not be negative")
	}

	if b.cyclePerStage <= 0 {
		panic("cycle per stage must be positive")
	}

	if b.postPipelineBuf == nil {
		panic("pipeline requires a post-pipeline buffer")
	}
}
