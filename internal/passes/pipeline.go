package passes

import (
	"sync"

	"mica/internal/oir"
)

// FunctionPass is a single transformation over one function. Run
// mutates fn in place and reports whether anything changed.
type FunctionPass interface {
	Name() string
	Description() string
	Run(fn *oir.Function, mod *oir.Module) bool
}

// InvalidationKind tells the pipeline which cached analyses a pass made
// stale.
type InvalidationKind uint8

const (
	// InvalidateNothing means no analysis needs recomputation.
	InvalidateNothing InvalidationKind = iota
	// InvalidateCallsAndInstructions means call sites and instruction
	// counts changed.
	InvalidateCallsAndInstructions
)

func (k InvalidationKind) String() string {
	if k == InvalidateCallsAndInstructions {
		return "calls-and-instructions"
	}
	return "nothing"
}

// FunctionInfo is the per-function analysis the pipeline caches between
// passes: anything keyed on instruction content or call-graph edges.
type FunctionInfo struct {
	InstructionCount int
	CallSites        []string
}

// Pipeline applies function passes in order, guarding the
// preconditions every pass shares and invalidating cached analysis
// when a pass reports changes.
type Pipeline struct {
	passes []FunctionPass

	mu   sync.Mutex
	info map[*oir.Function]*FunctionInfo
}

// NewPipeline creates a pipeline with the passes cfg enables.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{info: make(map[*oir.Function]*FunctionInfo)}
	if cfg.DeinitDevirtualization {
		p.AddPass(&DeinitDevirtualization{})
	}
	return p
}

// AddPass appends a pass to the pipeline.
func (p *Pipeline) AddPass(pass FunctionPass) {
	p.passes = append(p.passes, pass)
}

// Passes returns the registered passes in execution order.
func (p *Pipeline) Passes() []FunctionPass { return p.passes }

// RunOnFunction applies every pass to fn and returns the strongest
// invalidation any of them requested.
//
// Bodies deserialized in canonical stage are skipped: they were already
// rewritten (or deliberately left alone) when their unit was compiled,
// and replaying the transform risks duplicate rewrites. Passes require
// raw-stage OIR with full ownership annotations; handing the pipeline a
// later stage is a caller bug.
func (p *Pipeline) RunOnFunction(mod *oir.Module, fn *oir.Function) InvalidationKind {
	if fn.DeserializedCanonical {
		return InvalidateNothing
	}
	if fn.Stage != oir.StageRaw {
		panic("pass pipeline requires raw-stage OIR, got " + fn.Stage.String() + " for " + fn.Name)
	}

	kind := InvalidateNothing
	for _, pass := range p.passes {
		log.Debugf("===> %s. Visiting: %s", pass.Name(), fn.Name)
		if pass.Run(fn, mod) {
			kind = InvalidateCallsAndInstructions
			p.invalidate(fn)
		}
	}
	return kind
}

// Run applies the pipeline to every function of mod sequentially and
// reports whether any function changed.
func (p *Pipeline) Run(mod *oir.Module) bool {
	changed := false
	for _, fn := range mod.Functions {
		if p.RunOnFunction(mod, fn) != InvalidateNothing {
			changed = true
		}
	}
	return changed
}

// Info returns the cached analysis for fn, computing it on first use
// or after invalidation.
func (p *Pipeline) Info(fn *oir.Function) *FunctionInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.info[fn]; ok {
		return cached
	}
	computed := computeInfo(fn)
	p.info[fn] = computed
	return computed
}

func (p *Pipeline) invalidate(fn *oir.Function) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.info, fn)
}

func computeInfo(fn *oir.Function) *FunctionInfo {
	info := &FunctionInfo{InstructionCount: fn.InstructionCount()}
	for _, block := range fn.Blocks {
		for i := range block.Instrs {
			in := &block.Instrs[i]
			if in.Op != oir.OpApply {
				continue
			}
			if def := fn.Definer(in.Apply.Callee); def != nil && def.Op == oir.OpFunctionRef {
				info.CallSites = append(info.CallSites, def.FunctionRef.Symbol)
			}
		}
	}
	return info
}
