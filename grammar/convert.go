package grammar

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"mica/internal/errors"
	"mica/internal/oir"
	"mica/internal/types"
)

// Convert lowers a parsed file into an OIR module. Diagnostics are
// collected rather than aborting on the first problem; the module is
// only usable when the returned slice is empty.
func Convert(file *File) (*oir.Module, []errors.CompilerError) {
	c := &converter{
		mod:   oir.NewModule(file.Module),
		decls: make(map[string]*types.NominalDecl),
	}

	// Declarations first so function bodies can reference any nominal
	// type regardless of order.
	for _, decl := range file.Decls {
		if decl.Nominal != nil {
			c.convertNominal(decl.Nominal)
		}
	}
	for _, decl := range file.Decls {
		if decl.Func != nil {
			c.convertFunc(decl.Func)
		}
	}
	return c.mod, c.errs
}

type converter struct {
	mod   *oir.Module
	decls map[string]*types.NominalDecl
	errs  []errors.CompilerError
}

func (c *converter) errorAt(pos lexer.Position, code string, length int, format string, args ...interface{}) {
	c.errs = append(c.errs, errors.CompilerError{
		Level:    errors.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: errors.Position{Line: pos.Line, Column: pos.Column},
		Length:   length,
	})
}

func (c *converter) convertNominal(def *NominalDef) {
	if _, exists := c.decls[def.Name]; exists {
		c.errorAt(def.Pos, errors.ErrorRedefinedValue, len(def.Name),
			"nominal type '%s' declared more than once", def.Name)
		return
	}

	decl := &types.NominalDecl{
		Name:       def.Name,
		TypeParams: def.TypeParams,
	}
	for _, attr := range def.Attrs {
		switch attr {
		case "noncopyable":
			decl.Noncopyable = true
		case "address_only":
			decl.AddressOnly = true
		}
	}
	c.decls[def.Name] = decl
	c.mod.AddNominal(decl)

	if def.Deinit != nil {
		conv := types.ConventionDirect
		if def.Deinit.Convention == "indirect" {
			conv = types.ConventionIndirect
		}
		c.mod.Deinits.Register(decl, &types.DeinitFunc{
			Name: strings.TrimPrefix(def.Deinit.Symbol, "@"),
			Self: conv,
		})
	}
}

func (c *converter) convertFunc(def *FuncDef) {
	fn := oir.NewFunction(def.Name)
	values := make(map[string]oir.ValueID)

	bind := func(name string, v oir.ValueID, pos lexer.Position) {
		if _, exists := values[name]; exists {
			c.errorAt(pos, errors.ErrorRedefinedValue, len(name),
				"value %s bound more than once", name)
			return
		}
		values[name] = v
	}
	lookup := func(name string, pos lexer.Position) (oir.ValueID, bool) {
		v, ok := values[name]
		if !ok {
			c.errorAt(pos, errors.ErrorUndefinedValue, len(name),
				"use of undefined value %s", name)
			return oir.NoValue, false
		}
		return v, true
	}

	for _, param := range def.Params {
		t, ok := c.resolveType(param.Type)
		if !ok {
			continue
		}
		bind(param.Value, fn.AddParam(t), param.Pos)
	}

	// Blocks exist before bodies are lowered so branches can target
	// labels defined later in the source.
	for _, bdef := range def.Blocks {
		if fn.Block(bdef.Label) != nil {
			c.errorAt(bdef.Pos, errors.ErrorRedefinedValue, len(bdef.Label),
				"block label %s defined more than once", bdef.Label)
			continue
		}
		fn.Blocks = append(fn.Blocks, &oir.Block{Label: bdef.Label})
	}

	for _, bdef := range def.Blocks {
		block := fn.Block(bdef.Label)
		b := oir.NewBlockBuilder(fn, block)
		for _, instr := range bdef.Instrs {
			c.convertInstr(b, fn, instr, bind, lookup)
		}
		c.convertTerm(b, fn, bdef.Term, lookup)
	}

	c.mod.AddFunction(fn)
}

type bindFunc func(name string, v oir.ValueID, pos lexer.Position)
type lookupFunc func(name string, pos lexer.Position) (oir.ValueID, bool)

func (c *converter) convertInstr(b *oir.Builder, fn *oir.Function, def *InstrDef, bind bindFunc, lookup lookupFunc) {
	if def.Assign != nil {
		result, ok := c.convertValueOp(b, fn, def, def.Assign.Op, lookup)
		if ok {
			bind(def.Assign.Result, result, def.Pos)
		}
		return
	}
	c.convertEffect(b, fn, def, def.Effect, lookup)
}

// requireAddr checks that a value used as a memory operand actually has
// an address type, so passes downstream never see a malformed operand.
func (c *converter) requireAddr(fn *oir.Function, v oir.ValueID, name, opcode string, pos lexer.Position) bool {
	if _, isAddr := fn.TypeOf(v).(*types.AddrType); !isAddr {
		c.errorAt(pos, errors.ErrorOperandMismatch, len(name),
			"%s requires an address operand, %s has type %s", opcode, name, fn.TypeOf(v))
		return false
	}
	return true
}

func (c *converter) convertValueOp(b *oir.Builder, fn *oir.Function, def *InstrDef, op *ValueOpDef, lookup lookupFunc) (oir.ValueID, bool) {
	switch {
	case op.Construct != nil:
		t, ok := c.resolveType(op.Construct.Type)
		if !ok {
			return oir.NoValue, false
		}
		args, ok := c.lookupAll(op.Construct.Args, def.Pos, lookup)
		if !ok {
			return oir.NoValue, false
		}
		return b.CreateConstruct(t, args...), true

	case op.Tuple != nil:
		elems, ok := c.lookupAll(op.Tuple.Elems, def.Pos, lookup)
		if !ok {
			return oir.NoValue, false
		}
		return b.CreateTuple(elems...), true

	case op.MoveValue != nil:
		v, ok := lookup(op.MoveValue.Value, def.Pos)
		if !ok {
			return oir.NoValue, false
		}
		return b.CreateMoveValue(v), true

	case op.DropDeinit != nil:
		v, ok := lookup(op.DropDeinit.Value, def.Pos)
		if !ok {
			return oir.NoValue, false
		}
		return b.CreateDropDeinit(v), true

	case op.Load != nil:
		addr, ok := lookup(op.Load.Addr, def.Pos)
		if !ok {
			return oir.NoValue, false
		}
		if !c.requireAddr(fn, addr, op.Load.Addr, "load", def.Pos) {
			return oir.NoValue, false
		}
		ownership := oir.LoadTake
		if op.Load.Ownership == "copy" {
			ownership = oir.LoadCopy
		}
		return b.CreateLoad(addr, ownership), true

	case op.AllocStack != nil:
		t, ok := c.resolveType(op.AllocStack.Type)
		if !ok {
			return oir.NoValue, false
		}
		return b.CreateAllocStack(t), true

	case op.FunctionRef != nil:
		return b.CreateFunctionRef(strings.TrimPrefix(op.FunctionRef.Symbol, "@")), true

	case op.Apply != nil:
		// The textual form does not spell result types; a call bound
		// to a value gets the empty tuple.
		return c.convertApply(b, op.Apply, &types.TupleType{}, lookup)

	default:
		panic("instruction with no recognized operation")
	}
}

func (c *converter) convertEffect(b *oir.Builder, fn *oir.Function, def *InstrDef, op *EffectDef, lookup lookupFunc) {
	switch {
	case op.DestroyValue != nil:
		if v, ok := lookup(op.DestroyValue.Value, def.Pos); ok {
			b.CreateDestroyValue(v)
		}

	case op.DestroyAddr != nil:
		addr, ok := lookup(op.DestroyAddr.Addr, def.Pos)
		if !ok {
			return
		}
		if !c.requireAddr(fn, addr, op.DestroyAddr.Addr, "destroy_addr", def.Pos) {
			return
		}
		b.CreateDestroyAddr(addr)

	case op.Store != nil:
		v, vok := lookup(op.Store.Value, def.Pos)
		addr, aok := lookup(op.Store.Addr, def.Pos)
		if !vok || !aok {
			return
		}
		if !c.requireAddr(fn, addr, op.Store.Addr, "store", def.Pos) {
			return
		}
		ownership := oir.StoreInit
		if op.Store.Ownership == "assign" {
			ownership = oir.StoreAssign
		}
		b.CreateStore(v, addr, ownership)

	case op.DeallocStack != nil:
		addr, ok := lookup(op.DeallocStack.Addr, def.Pos)
		if !ok {
			return
		}
		if !c.requireAddr(fn, addr, op.DeallocStack.Addr, "dealloc_stack", def.Pos) {
			return
		}
		b.CreateDeallocStack(addr)

	case op.Apply != nil:
		c.convertApply(b, op.Apply, nil, lookup)

	default:
		panic("instruction with no recognized operation")
	}
}

func (c *converter) convertApply(b *oir.Builder, op *ApplyOp, resultType types.Type, lookup lookupFunc) (oir.ValueID, bool) {
	callee, ok := lookup(op.Callee, op.Pos)
	if !ok {
		return oir.NoValue, false
	}
	args, ok := c.lookupAll(op.Args, op.Pos, lookup)
	if !ok {
		return oir.NoValue, false
	}

	subs := make([]types.Substitution, 0, len(op.Subs))
	for _, sub := range op.Subs {
		arg, ok := c.resolveType(sub.Arg)
		if !ok {
			return oir.NoValue, false
		}
		subs = append(subs, types.Substitution{Param: sub.Param, Arg: arg})
	}

	return b.CreateApply(callee, types.NewSubstitutionMap(subs...), resultType, args...), true
}

func (c *converter) convertTerm(b *oir.Builder, fn *oir.Function, def *TermDef, lookup lookupFunc) {
	switch {
	case def.Return != nil:
		v := oir.NoValue
		if def.Return.Value != nil {
			got, ok := lookup(*def.Return.Value, def.Pos)
			if !ok {
				return
			}
			v = got
		}
		b.SetReturn(v)

	case def.Br != nil:
		target := fn.Block(def.Br.Target)
		if target == nil {
			c.errorAt(def.Pos, errors.ErrorUnknownBlock, len(def.Br.Target),
				"branch to unknown block %s", def.Br.Target)
			return
		}
		b.SetBr(target)

	case def.CondBr != nil:
		cond, ok := lookup(def.CondBr.Cond, def.Pos)
		if !ok {
			return
		}
		truthy := fn.Block(def.CondBr.True)
		falsy := fn.Block(def.CondBr.False)
		if truthy == nil {
			c.errorAt(def.Pos, errors.ErrorUnknownBlock, len(def.CondBr.True),
				"branch to unknown block %s", def.CondBr.True)
			return
		}
		if falsy == nil {
			c.errorAt(def.Pos, errors.ErrorUnknownBlock, len(def.CondBr.False),
				"branch to unknown block %s", def.CondBr.False)
			return
		}
		b.SetCondBr(cond, truthy, falsy)
	}
}

func (c *converter) lookupAll(names []string, pos lexer.Position, lookup lookupFunc) ([]oir.ValueID, bool) {
	vals := make([]oir.ValueID, len(names))
	ok := true
	for i, name := range names {
		v, found := lookup(name, pos)
		if !found {
			ok = false
		}
		vals[i] = v
	}
	return vals, ok
}

func (c *converter) resolveType(ref *TypeRef) (types.Type, bool) {
	switch {
	case ref.Addr != nil:
		pointee, ok := c.resolveType(ref.Addr)
		if !ok {
			return nil, false
		}
		return &types.AddrType{Pointee: pointee}, true

	case ref.Tuple != nil:
		elems := make([]types.Type, len(ref.Tuple.Elems))
		for i, elem := range ref.Tuple.Elems {
			t, ok := c.resolveType(elem)
			if !ok {
				return nil, false
			}
			elems[i] = t
		}
		return &types.TupleType{Elements: elems}, true

	case ref.Named != nil:
		return c.resolveNamed(ref)

	default:
		panic("type reference with no alternative set")
	}
}

func (c *converter) resolveNamed(ref *TypeRef) (types.Type, bool) {
	named := ref.Named
	switch named.Name {
	case "Bool":
		if len(named.Args) > 0 {
			c.errorAt(ref.Pos, errors.ErrorArityMismatch, len(named.Name),
				"type Bool takes no arguments")
			return nil, false
		}
		return &types.BoolType{}, true
	case "Int8", "Int16", "Int32", "Int64":
		if len(named.Args) > 0 {
			c.errorAt(ref.Pos, errors.ErrorArityMismatch, len(named.Name),
				"type %s takes no arguments", named.Name)
			return nil, false
		}
		var bits int
		fmt.Sscanf(named.Name, "Int%d", &bits)
		return &types.IntType{Bits: bits}, true
	}

	decl, ok := c.decls[named.Name]
	if !ok {
		c.errorAt(ref.Pos, errors.ErrorUnknownNominal, len(named.Name),
			"unknown nominal type '%s'", named.Name)
		return nil, false
	}
	if len(named.Args) != len(decl.TypeParams) {
		c.errorAt(ref.Pos, errors.ErrorArityMismatch, len(named.Name),
			"type %s expects %d arguments, got %d", decl.Name, len(decl.TypeParams), len(named.Args))
		return nil, false
	}

	args := make([]types.Type, len(named.Args))
	for i, argRef := range named.Args {
		arg, ok := c.resolveType(argRef)
		if !ok {
			return nil, false
		}
		args[i] = arg
	}
	return decl.Instantiate(args...), true
}
