package oir

// OIR is the ownership-annotated SSA form the pass pipeline operates on.
// Functions own their blocks; blocks own their instructions; every value
// is defined exactly once and referenced through a stable ValueID handle,
// so passes can rewrite instruction streams without invalidating
// references held elsewhere.

import (
	"fmt"

	"mica/internal/types"
)

// Stage describes how far a function body has been lowered.
type Stage uint8

const (
	// StageRaw retains full ownership annotations. Ownership-sensitive
	// passes only run at this stage.
	StageRaw Stage = iota
	// StageCanonical has been canonicalized; ownership annotations may
	// have been erased.
	StageCanonical
)

func (s Stage) String() string {
	if s == StageCanonical {
		return "canonical"
	}
	return "raw"
}

// Module is one compilation unit: its functions, the nominal types it
// declares, and the deinit registry populated while declarations were
// processed.
type Module struct {
	Name      string
	Functions []*Function
	Nominals  []*types.NominalDecl
	Deinits   *types.DeinitTable
}

// NewModule creates an empty module with an empty deinit registry.
func NewModule(name string) *Module {
	return &Module{
		Name:    name,
		Deinits: types.NewDeinitTable(),
	}
}

// AddNominal records a nominal declaration in the module.
func (m *Module) AddNominal(decl *types.NominalDecl) {
	m.Nominals = append(m.Nominals, decl)
}

// AddFunction appends fn to the module.
func (m *Module) AddFunction(fn *Function) {
	m.Functions = append(m.Functions, fn)
}

// Function returns the function named name, or nil.
func (m *Module) Function(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// ValueID is a stable handle into a function's value arena.
type ValueID int32

// NoValue marks an absent value (e.g. an apply used only for effect).
const NoValue ValueID = -1

func (v ValueID) String() string {
	if v == NoValue {
		return "%none"
	}
	return fmt.Sprintf("%%%d", v)
}

// Param is a function parameter; its value is defined on entry.
type Param struct {
	Value ValueID
	Type  types.Type
}

// Function is an ordered sequence of basic blocks plus the arena of
// value definitions referenced by its instructions.
type Function struct {
	Name   string
	Params []Param
	Blocks []*Block
	Stage  Stage

	// DeserializedCanonical marks a body imported from a previously
	// compiled unit. Such bodies were already rewritten (or deliberately
	// left alone) and must not be visited again by the pipeline.
	DeserializedCanonical bool

	defs []types.Type
}

// NewFunction creates an empty raw-stage function.
func NewFunction(name string) *Function {
	return &Function{Name: name, Stage: StageRaw}
}

// NewValue allocates a fresh value of type t and returns its handle.
// Definitions are append-only; handles never move or get reused.
func (f *Function) NewValue(t types.Type) ValueID {
	f.defs = append(f.defs, t)
	return ValueID(len(f.defs) - 1)
}

// AddParam allocates a fresh entry value of type t as a parameter.
func (f *Function) AddParam(t types.Type) ValueID {
	v := f.NewValue(t)
	f.Params = append(f.Params, Param{Value: v, Type: t})
	return v
}

// TypeOf returns the static type of v.
func (f *Function) TypeOf(v ValueID) types.Type {
	if v < 0 || int(v) >= len(f.defs) {
		panic(fmt.Sprintf("%s: no such value %s", f.Name, v))
	}
	return f.defs[v]
}

// NumValues returns the number of values allocated so far.
func (f *Function) NumValues() int { return len(f.defs) }

// NewBlock appends a fresh block labeled bbN.
func (f *Function) NewBlock() *Block {
	b := &Block{Label: fmt.Sprintf("bb%d", len(f.Blocks))}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Block returns the block with the given label, or nil.
func (f *Function) Block(label string) *Block {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// InstructionCount returns the number of instructions across all
// blocks, terminators excluded.
func (f *Function) InstructionCount() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Instrs)
	}
	return n
}

// Definer returns the instruction defining v, or nil when v is a
// function parameter.
func (f *Function) Definer(v ValueID) *Instr {
	for _, b := range f.Blocks {
		for i := range b.Instrs {
			if b.Instrs[i].Result() == v {
				return &b.Instrs[i]
			}
		}
	}
	return nil
}

// LookThroughOwnershipInsts returns the instruction defining v after
// skipping pure ownership-forwarding instructions, or nil when the
// chain bottoms out at a function parameter.
func LookThroughOwnershipInsts(f *Function, v ValueID) *Instr {
	for {
		def := f.Definer(v)
		if def == nil {
			return nil
		}
		if def.Op == OpMoveValue {
			v = def.MoveValue.Value
			continue
		}
		return def
	}
}

// Block is an ordered instruction sequence ended by one terminator.
type Block struct {
	Label  string
	Instrs []Instr
	Term   Terminator
}

// Terminated reports whether the block already has a terminator.
func (b *Block) Terminated() bool { return b.Term.Kind != TermNone }
