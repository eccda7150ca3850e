package oir

import (
	"fmt"

	"mica/internal/types"
)

// Verify checks the ownership discipline rewrites must preserve: every
// noncopyable owned value is consumed exactly once, every stack slot is
// deallocated exactly once, and every block is terminated.
//
// The check counts consuming uses across the whole function, so it
// assumes each block executes at most once per invocation; functions
// with loops or reconverging paths need a stricter liveness analysis
// than this verifier provides.
func Verify(fn *Function) []error {
	var errs []error

	consumed := make(map[ValueID]int)
	dealloced := make(map[ValueID]int)

	consume := func(v ValueID) {
		if isOwned(fn, v) {
			consumed[v]++
		}
	}

	for _, block := range fn.Blocks {
		for i := range block.Instrs {
			in := &block.Instrs[i]
			switch in.Op {
			case OpConstruct:
				for _, a := range in.Construct.Args {
					consume(a)
				}
			case OpTuple:
				for _, e := range in.Tuple.Elems {
					consume(e)
				}
			case OpMoveValue:
				consume(in.MoveValue.Value)
			case OpDropDeinit:
				consume(in.DropDeinit.Value)
			case OpDestroyValue:
				consume(in.DestroyValue.Value)
			case OpStore:
				consume(in.Store.Value)
			case OpApply:
				for _, a := range in.Apply.Args {
					consume(a)
				}
			case OpDeallocStack:
				dealloced[in.DeallocStack.Addr]++
			case OpDestroyAddr, OpLoad, OpAllocStack, OpFunctionRef:
				// reads or definitions only
			}
		}

		switch block.Term.Kind {
		case TermNone:
			errs = append(errs, fmt.Errorf("%s: block %s is not terminated", fn.Name, block.Label))
		case TermReturn:
			if v := block.Term.Return.Value; v != NoValue {
				consume(v)
			}
		}
	}

	for v := ValueID(0); int(v) < fn.NumValues(); v++ {
		if isOwned(fn, v) {
			switch n := consumed[v]; {
			case n == 0:
				errs = append(errs, fmt.Errorf("%s: noncopyable value %s of type %s is never consumed",
					fn.Name, v, fn.TypeOf(v)))
			case n > 1:
				errs = append(errs, fmt.Errorf("%s: noncopyable value %s of type %s consumed %d times",
					fn.Name, v, fn.TypeOf(v), n))
			}
		}

		if def := fn.Definer(v); def != nil && def.Op == OpAllocStack {
			if n := dealloced[v]; n != 1 {
				errs = append(errs, fmt.Errorf("%s: stack slot %s deallocated %d times",
					fn.Name, v, n))
			}
		}
	}

	return errs
}

// VerifyModule verifies every function of a module.
func VerifyModule(m *Module) []error {
	var errs []error
	for _, fn := range m.Functions {
		errs = append(errs, Verify(fn)...)
	}
	return errs
}

// isOwned reports whether v is an owned noncopyable value whose
// consumption is tracked. Addresses and copyable values are exempt.
func isOwned(fn *Function, v ValueID) bool {
	if v == NoValue {
		return false
	}
	t := fn.TypeOf(v)
	if _, isAddr := t.(*types.AddrType); isAddr {
		return false
	}
	return types.Noncopyable(t)
}
