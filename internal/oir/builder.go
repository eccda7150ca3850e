package oir

import (
	"fmt"

	"mica/internal/types"
)

// Builder emits instructions, allocating result values in the owning
// function's arena. A block builder appends directly to a block while a
// module is being constructed; a detached builder collects into a
// buffer so a pass can splice a rewrite sequence into an instruction
// stream it is still iterating.
type Builder struct {
	fn    *Function
	block *Block
	buf   []Instr
}

// NewBuilder creates a detached builder collecting into a buffer.
func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn}
}

// NewBlockBuilder creates a builder appending to block.
func NewBlockBuilder(fn *Function, block *Block) *Builder {
	return &Builder{fn: fn, block: block}
}

// Take returns the buffered instructions and resets the buffer.
func (b *Builder) Take() []Instr {
	out := b.buf
	b.buf = nil
	return out
}

func (b *Builder) emit(in Instr) {
	if b.block != nil {
		b.block.Instrs = append(b.block.Instrs, in)
		return
	}
	b.buf = append(b.buf, in)
}

// CreateConstruct emits construction of a value of type t.
func (b *Builder) CreateConstruct(t types.Type, args ...ValueID) ValueID {
	result := b.fn.NewValue(t)
	b.emit(Instr{Op: OpConstruct, Construct: ConstructInstr{Result: result, Type: t, Args: args}})
	return result
}

// CreateTuple emits construction of a tuple from elems.
func (b *Builder) CreateTuple(elems ...ValueID) ValueID {
	elemTypes := make([]types.Type, len(elems))
	for i, e := range elems {
		elemTypes[i] = b.fn.TypeOf(e)
	}
	result := b.fn.NewValue(&types.TupleType{Elements: elemTypes})
	b.emit(Instr{Op: OpTuple, Tuple: TupleInstr{Result: result, Elems: elems}})
	return result
}

// CreateMoveValue emits an ownership-forwarding move of v.
func (b *Builder) CreateMoveValue(v ValueID) ValueID {
	result := b.fn.NewValue(b.fn.TypeOf(v))
	b.emit(Instr{Op: OpMoveValue, MoveValue: MoveValueInstr{Result: result, Value: v}})
	return result
}

// CreateDropDeinit emits a drop_deinit marker forwarding v.
func (b *Builder) CreateDropDeinit(v ValueID) ValueID {
	result := b.fn.NewValue(b.fn.TypeOf(v))
	b.emit(Instr{Op: OpDropDeinit, DropDeinit: DropDeinitInstr{Result: result, Value: v}})
	return result
}

// CreateDestroyValue emits a destroy of the owned value v.
func (b *Builder) CreateDestroyValue(v ValueID) {
	b.emit(Instr{Op: OpDestroyValue, DestroyValue: DestroyValueInstr{Value: v}})
}

// CreateDestroyAddr emits an in-place destroy of the value at addr.
func (b *Builder) CreateDestroyAddr(addr ValueID) {
	b.emit(Instr{Op: OpDestroyAddr, DestroyAddr: DestroyAddrInstr{Addr: addr}})
}

// CreateLoad emits a load from addr. The result type is the pointee of
// addr's address type.
func (b *Builder) CreateLoad(addr ValueID, q LoadOwnership) ValueID {
	at, ok := b.fn.TypeOf(addr).(*types.AddrType)
	if !ok {
		panic(fmt.Sprintf("load from non-address value %s of type %s", addr, b.fn.TypeOf(addr)))
	}
	result := b.fn.NewValue(at.Pointee)
	b.emit(Instr{Op: OpLoad, Load: LoadInstr{Result: result, Addr: addr, Ownership: q}})
	return result
}

// CreateStore emits a store of v to addr.
func (b *Builder) CreateStore(v, addr ValueID, q StoreOwnership) {
	b.emit(Instr{Op: OpStore, Store: StoreInstr{Value: v, Addr: addr, Ownership: q}})
}

// CreateAllocStack emits allocation of a slot for a value of type t and
// returns the slot's address.
func (b *Builder) CreateAllocStack(t types.Type) ValueID {
	result := b.fn.NewValue(&types.AddrType{Pointee: t})
	b.emit(Instr{Op: OpAllocStack, AllocStack: AllocStackInstr{Result: result, Type: t}})
	return result
}

// CreateDeallocStack emits deallocation of the slot at addr.
func (b *Builder) CreateDeallocStack(addr ValueID) {
	b.emit(Instr{Op: OpDeallocStack, DeallocStack: DeallocStackInstr{Addr: addr}})
}

// CreateFunctionRef emits a reference to the function named symbol.
func (b *Builder) CreateFunctionRef(symbol string) ValueID {
	result := b.fn.NewValue(&types.FuncType{Symbol: symbol})
	b.emit(Instr{Op: OpFunctionRef, FunctionRef: FunctionRefInstr{Result: result, Symbol: symbol}})
	return result
}

// CreateApply emits a call of callee. resultType may be nil for a call
// used only for effect.
func (b *Builder) CreateApply(callee ValueID, subs types.SubstitutionMap, resultType types.Type, args ...ValueID) ValueID {
	result := NoValue
	if resultType != nil {
		result = b.fn.NewValue(resultType)
	}
	b.emit(Instr{Op: OpApply, Apply: ApplyInstr{Result: result, Callee: callee, Subs: subs, Args: args}})
	return result
}

// SetReturn terminates the block, returning v (NoValue for none).
func (b *Builder) SetReturn(v ValueID) {
	b.terminate(Terminator{Kind: TermReturn, Return: ReturnTerm{Value: v}})
}

// SetBr terminates the block with an unconditional branch.
func (b *Builder) SetBr(target *Block) {
	b.terminate(Terminator{Kind: TermBr, Br: BrTerm{Target: target}})
}

// SetCondBr terminates the block with a conditional branch.
func (b *Builder) SetCondBr(cond ValueID, truthy, falsy *Block) {
	b.terminate(Terminator{Kind: TermCondBr, CondBr: CondBrTerm{Cond: cond, True: truthy, False: falsy}})
}

func (b *Builder) terminate(t Terminator) {
	if b.block == nil {
		panic("terminator emitted through a detached builder")
	}
	if b.block.Terminated() {
		panic("block " + b.block.Label + " already terminated")
	}
	b.block.Term = t
}
