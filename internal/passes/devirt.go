package passes

// Deinit devirtualization rewrites generic destroys of noncopyable
// values into direct calls of the type's synthesized deinitializer.
// It runs after ownership checking, while the IR is still in the raw
// stage, and is purely an optimization: any destroy it cannot resolve
// is left for the generic destruction lowering that runs later.

import (
	"github.com/tliron/commonlog"

	"mica/internal/oir"
	"mica/internal/types"
)

var log = commonlog.GetLogger("mica.passes")

// DeinitDevirtualization turns destroy_value/destroy_addr of
// noncopyable nominal types into function_ref + apply of the registered
// deinit, honoring drop_deinit markers and the deinit's self
// convention.
type DeinitDevirtualization struct{}

func (p *DeinitDevirtualization) Name() string {
	return "Deinit Devirtualization"
}

func (p *DeinitDevirtualization) Description() string {
	return "Replaces destroys of noncopyable values with direct deinit calls"
}

// Run rewrites fn in place and reports whether any site changed. The
// cursor advances over a snapshot of each block's instructions, so
// rewrites never revisit the code they insert.
func (p *DeinitDevirtualization) Run(fn *oir.Function, mod *oir.Module) bool {
	changed := false

	for _, block := range fn.Blocks {
		blockChanged := false
		rewritten := make([]oir.Instr, 0, len(block.Instrs))

		for i := range block.Instrs {
			inst := &block.Instrs[i]

			switch inst.Op {
			case oir.OpDestroyValue:
				if seq, ok := p.rewriteDestroyValue(fn, mod, inst.DestroyValue); ok {
					rewritten = append(rewritten, seq...)
					blockChanged = true
					continue
				}
			case oir.OpDestroyAddr:
				if seq, ok := p.rewriteDestroyAddr(fn, mod, inst.DestroyAddr); ok {
					rewritten = append(rewritten, seq...)
					blockChanged = true
					continue
				}
			}

			rewritten = append(rewritten, *inst)
		}

		if blockChanged {
			block.Instrs = rewritten
			changed = true
		}
	}

	return changed
}

// rewriteDestroyValue handles destroy_value of a noncopyable value.
// The value is consumed exactly once: either by the store into the
// transient slot (indirect convention) or by the apply itself (direct).
func (p *DeinitDevirtualization) rewriteDestroyValue(fn *oir.Function, mod *oir.Module, d oir.DestroyValueInstr) ([]oir.Instr, bool) {
	destroyType := fn.TypeOf(d.Value)
	if !types.Noncopyable(destroyType) {
		return nil, false
	}
	if def := oir.LookThroughOwnershipInsts(fn, d.Value); def != nil && def.Op == oir.OpDropDeinit {
		return nil, false
	}

	deinit, subs, ok := p.resolveDeinit(fn, mod, destroyType)
	if !ok {
		return nil, false
	}

	b := oir.NewBuilder(fn)
	arg := d.Value
	slot := oir.NoValue
	if deinit.Self.Indirect() {
		slot = b.CreateAllocStack(destroyType)
		b.CreateStore(d.Value, slot, oir.StoreInit)
		arg = slot
	}
	ref := b.CreateFunctionRef(deinit.Name)
	b.CreateApply(ref, subs, nil, arg)
	if slot != oir.NoValue {
		b.CreateDeallocStack(slot)
	}
	return b.Take(), true
}

// rewriteDestroyAddr handles destroy_addr when the pointee is loadable
// and noncopyable. An indirect deinit takes the original address
// unchanged; a direct one takes the value loaded out of it.
func (p *DeinitDevirtualization) rewriteDestroyAddr(fn *oir.Function, mod *oir.Module, d oir.DestroyAddrInstr) ([]oir.Instr, bool) {
	addrType, ok := fn.TypeOf(d.Addr).(*types.AddrType)
	if !ok {
		panic("destroy_addr of non-address value " + d.Addr.String() + " in " + fn.Name)
	}
	pointee := addrType.Pointee
	if !types.Loadable(pointee) || !types.Noncopyable(pointee) {
		return nil, false
	}
	if def := fn.Definer(d.Addr); def != nil && def.Op == oir.OpDropDeinit {
		return nil, false
	}

	deinit, subs, ok := p.resolveDeinit(fn, mod, pointee)
	if !ok {
		return nil, false
	}

	b := oir.NewBuilder(fn)
	ref := b.CreateFunctionRef(deinit.Name)
	arg := d.Addr
	if !deinit.Self.Indirect() {
		arg = b.CreateLoad(d.Addr, oir.LoadTake)
	}
	b.CreateApply(ref, subs, nil, arg)
	return b.Take(), true
}

// resolveDeinit maps a destroyed type to its registered deinit and the
// substitution map for the concrete instantiation. Missing nominal
// declarations and unregistered deinits are conservative skips, not
// errors.
func (p *DeinitDevirtualization) resolveDeinit(fn *oir.Function, mod *oir.Module, t types.Type) (*types.DeinitFunc, types.SubstitutionMap, bool) {
	nom := types.NominalOf(t)
	if nom == nil {
		log.Debugf("%s: %s is not a nominal type, so no deinit, skipping", fn.Name, t)
		return nil, types.SubstitutionMap{}, false
	}
	deinit := mod.Deinits.Lookup(nom.Decl)
	if deinit == nil {
		log.Debugf("%s: no deinit registered for %s, skipping", fn.Name, nom.Decl.Name)
		return nil, types.SubstitutionMap{}, false
	}
	return deinit, types.Substitutions(nom.Decl, nom.Args), true
}
