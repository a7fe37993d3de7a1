package workflow

// PipeMode selects how the compiled fragments of one block are joined.
type PipeMode int

const (
	// ModeSequence runs fragments one after another.
	ModeSequence PipeMode = iota

	// ModePipeline connects fragments with pipes.
	ModePipeline

	// ModeParallel backgrounds each fragment and waits for all.
	ModeParallel
)

func (m PipeMode) String() string {
	switch m {
	case ModePipeline:
		return "pipeline"
	case ModeParallel:
		return "parallel"
	default:
		return "sequence"
	}
}

// PipelineContext is the state for compiling one control-flow block:
// the raw steps, the join mode, and the failure behavior. It is created
// per block and never shared across sibling blocks.
type PipelineContext struct {
	Steps    []any
	Mode     PipeMode
	FailFast bool
}

// NewPipelineContext builds a block context with fail-fast behavior on,
// which is the default for every document shape.
func NewPipelineContext(steps []any, mode PipeMode) *PipelineContext {
	return &PipelineContext{Steps: steps, Mode: mode, FailFast: true}
}

// Count returns the number of raw steps in the block.
func (p *PipelineContext) Count() int {
	return len(p.Steps)
}
