package oir

import "mica/internal/types"

// Opcode enumerates OIR instruction kinds. The set is closed: every
// switch over it in a pass either handles a kind or deliberately passes
// it through.
type Opcode uint8

const (
	// OpConstruct builds an aggregate value of a nominal type.
	OpConstruct Opcode = iota
	// OpTuple builds a tuple value.
	OpTuple
	// OpMoveValue forwards ownership of a value to a fresh one.
	OpMoveValue
	// OpDropDeinit forwards a value while suppressing its deinit for
	// the destroy that eventually consumes it.
	OpDropDeinit
	// OpDestroyValue ends the lifetime of an owned value.
	OpDestroyValue
	// OpDestroyAddr ends the lifetime of the value stored at an address.
	OpDestroyAddr
	// OpLoad reads a value out of memory.
	OpLoad
	// OpStore writes a value into memory.
	OpStore
	// OpAllocStack allocates a stack slot.
	OpAllocStack
	// OpDeallocStack frees a stack slot.
	OpDeallocStack
	// OpFunctionRef materializes a reference to a function symbol.
	OpFunctionRef
	// OpApply calls a function reference.
	OpApply
)

var opcodeNames = [...]string{
	OpConstruct:    "construct",
	OpTuple:        "tuple",
	OpMoveValue:    "move_value",
	OpDropDeinit:   "drop_deinit",
	OpDestroyValue: "destroy_value",
	OpDestroyAddr:  "destroy_addr",
	OpLoad:         "load",
	OpStore:        "store",
	OpAllocStack:   "alloc_stack",
	OpDeallocStack: "dealloc_stack",
	OpFunctionRef:  "function_ref",
	OpApply:        "apply",
}

func (op Opcode) String() string { return opcodeNames[op] }

// LoadOwnership qualifies how a load treats the loaded memory.
type LoadOwnership uint8

const (
	// LoadTake consumes the value out of memory, leaving the slot
	// uninitialized.
	LoadTake LoadOwnership = iota
	// LoadCopy duplicates the value, leaving memory intact.
	LoadCopy
)

func (q LoadOwnership) String() string {
	if q == LoadCopy {
		return "copy"
	}
	return "take"
}

// StoreOwnership qualifies how a store treats the destination memory.
type StoreOwnership uint8

const (
	// StoreInit initializes uninitialized memory, consuming the value.
	StoreInit StoreOwnership = iota
	// StoreAssign replaces an existing value, destroying the old one.
	StoreAssign
)

func (q StoreOwnership) String() string {
	if q == StoreAssign {
		return "assign"
	}
	return "init"
}

// Instr is one OIR instruction: a kind tag plus the payload for that
// kind. Only the payload matching Op is meaningful.
type Instr struct {
	Op Opcode

	Construct    ConstructInstr
	Tuple        TupleInstr
	MoveValue    MoveValueInstr
	DropDeinit   DropDeinitInstr
	DestroyValue DestroyValueInstr
	DestroyAddr  DestroyAddrInstr
	Load         LoadInstr
	Store        StoreInstr
	AllocStack   AllocStackInstr
	DeallocStack DeallocStackInstr
	FunctionRef  FunctionRefInstr
	Apply        ApplyInstr
}

// ConstructInstr builds a value of a nominal type from element values.
type ConstructInstr struct {
	Result ValueID
	Type   types.Type
	Args   []ValueID
}

// TupleInstr builds a tuple from element values.
type TupleInstr struct {
	Result ValueID
	Elems  []ValueID
}

// MoveValueInstr forwards ownership from Value to Result.
type MoveValueInstr struct {
	Result ValueID
	Value  ValueID
}

// DropDeinitInstr forwards Value to Result with its deinit suppressed.
type DropDeinitInstr struct {
	Result ValueID
	Value  ValueID
}

// DestroyValueInstr consumes and destroys an owned value.
type DestroyValueInstr struct {
	Value ValueID
}

// DestroyAddrInstr destroys the value held at Addr in place.
type DestroyAddrInstr struct {
	Addr ValueID
}

// LoadInstr reads memory at Addr with the given ownership qualifier.
type LoadInstr struct {
	Result    ValueID
	Addr      ValueID
	Ownership LoadOwnership
}

// StoreInstr writes Value to Addr with the given ownership qualifier.
type StoreInstr struct {
	Value     ValueID
	Addr      ValueID
	Ownership StoreOwnership
}

// AllocStackInstr allocates a slot holding a value of Type; Result is
// the slot's address.
type AllocStackInstr struct {
	Result ValueID
	Type   types.Type
}

// DeallocStackInstr frees a slot produced by alloc_stack.
type DeallocStackInstr struct {
	Addr ValueID
}

// FunctionRefInstr materializes a reference to the function named
// Symbol.
type FunctionRefInstr struct {
	Result ValueID
	Symbol string
}

// ApplyInstr calls Callee with Args under the given substitution map.
// Result is NoValue when the call is only for effect.
type ApplyInstr struct {
	Result ValueID
	Callee ValueID
	Subs   types.SubstitutionMap
	Args   []ValueID
}

// Result returns the value defined by the instruction, or NoValue.
func (in *Instr) Result() ValueID {
	switch in.Op {
	case OpConstruct:
		return in.Construct.Result
	case OpTuple:
		return in.Tuple.Result
	case OpMoveValue:
		return in.MoveValue.Result
	case OpDropDeinit:
		return in.DropDeinit.Result
	case OpLoad:
		return in.Load.Result
	case OpAllocStack:
		return in.AllocStack.Result
	case OpFunctionRef:
		return in.FunctionRef.Result
	case OpApply:
		return in.Apply.Result
	case OpDestroyValue, OpDestroyAddr, OpStore, OpDeallocStack:
		return NoValue
	default:
		return NoValue
	}
}

// Operands returns the values the instruction reads.
func (in *Instr) Operands() []ValueID {
	switch in.Op {
	case OpConstruct:
		return in.Construct.Args
	case OpTuple:
		return in.Tuple.Elems
	case OpMoveValue:
		return []ValueID{in.MoveValue.Value}
	case OpDropDeinit:
		return []ValueID{in.DropDeinit.Value}
	case OpDestroyValue:
		return []ValueID{in.DestroyValue.Value}
	case OpDestroyAddr:
		return []ValueID{in.DestroyAddr.Addr}
	case OpLoad:
		return []ValueID{in.Load.Addr}
	case OpStore:
		return []ValueID{in.Store.Value, in.Store.Addr}
	case OpAllocStack:
		return nil
	case OpDeallocStack:
		return []ValueID{in.DeallocStack.Addr}
	case OpFunctionRef:
		return nil
	case OpApply:
		ops := make([]ValueID, 0, len(in.Apply.Args)+1)
		ops = append(ops, in.Apply.Callee)
		ops = append(ops, in.Apply.Args...)
		return ops
	default:
		return nil
	}
}

// TermKind enumerates block terminators.
type TermKind uint8

const (
	// TermNone marks a block still under construction.
	TermNone TermKind = iota
	// TermReturn returns from the function.
	TermReturn
	// TermBr branches unconditionally.
	TermBr
	// TermCondBr branches on a boolean value.
	TermCondBr
)

// Terminator ends a block. Only the payload matching Kind is
// meaningful.
type Terminator struct {
	Kind TermKind

	Return ReturnTerm
	Br     BrTerm
	CondBr CondBrTerm
}

// ReturnTerm returns Value, or nothing when Value is NoValue.
type ReturnTerm struct {
	Value ValueID
}

// BrTerm jumps to Target.
type BrTerm struct {
	Target *Block
}

// CondBrTerm branches to True or False on Cond.
type CondBrTerm struct {
	Cond  ValueID
	True  *Block
	False *Block
}

// Operands returns the values the terminator reads.
func (t *Terminator) Operands() []ValueID {
	switch t.Kind {
	case TermReturn:
		if t.Return.Value != NoValue {
			return []ValueID{t.Return.Value}
		}
		return nil
	case TermCondBr:
		return []ValueID{t.CondBr.Cond}
	default:
		return nil
	}
}
