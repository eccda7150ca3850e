package oir

import (
	"fmt"
	"strings"
)

// Printer pretty-prints OIR in the same textual form the grammar
// package parses.
type Printer struct {
	output strings.Builder
}

// NewPrinter creates a printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print returns the textual form of a module.
func Print(m *Module) string {
	p := NewPrinter()
	p.printModule(m)
	return p.output.String()
}

// PrintFunction returns the textual form of a single function.
func PrintFunction(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printModule(m *Module) {
	p.writeLine("module %s", m.Name)

	for _, decl := range m.Nominals {
		p.writeLine("")
		name := decl.Name
		if len(decl.TypeParams) > 0 {
			name += "<" + strings.Join(decl.TypeParams, ", ") + ">"
		}
		var attrs []string
		if decl.Noncopyable {
			attrs = append(attrs, "noncopyable")
		}
		if decl.AddressOnly {
			attrs = append(attrs, "address_only")
		}
		header := "nominal " + name
		if len(attrs) > 0 {
			header += ": " + strings.Join(attrs, ", ")
		}
		if deinit := m.Deinits.Lookup(decl); deinit != nil {
			p.writeLine("%s {", header)
			p.writeLine("  deinit @%s %s", deinit.Name, deinit.Self)
			p.writeLine("}")
		} else {
			p.writeLine("%s {}", header)
		}
	}

	for _, fn := range m.Functions {
		p.writeLine("")
		p.printFunction(fn)
	}
}

func (p *Printer) printFunction(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", param.Value, param.Type)
	}
	p.writeLine("fn %s(%s) {", fn.Name, strings.Join(params, ", "))

	for _, block := range fn.Blocks {
		p.writeLine("%s:", block.Label)
		for i := range block.Instrs {
			p.writeLine("  %s", p.formatInstr(&block.Instrs[i]))
		}
		p.writeLine("  %s", p.formatTerm(&block.Term))
	}
	p.writeLine("}")
}

func (p *Printer) formatInstr(in *Instr) string {
	switch in.Op {
	case OpConstruct:
		c := in.Construct
		if len(c.Args) == 0 {
			return fmt.Sprintf("%s = construct %s", c.Result, c.Type)
		}
		return fmt.Sprintf("%s = construct %s(%s)", c.Result, c.Type, formatValues(c.Args))
	case OpTuple:
		return fmt.Sprintf("%s = tuple (%s)", in.Tuple.Result, formatValues(in.Tuple.Elems))
	case OpMoveValue:
		return fmt.Sprintf("%s = move_value %s", in.MoveValue.Result, in.MoveValue.Value)
	case OpDropDeinit:
		return fmt.Sprintf("%s = drop_deinit %s", in.DropDeinit.Result, in.DropDeinit.Value)
	case OpDestroyValue:
		return fmt.Sprintf("destroy_value %s", in.DestroyValue.Value)
	case OpDestroyAddr:
		return fmt.Sprintf("destroy_addr %s", in.DestroyAddr.Addr)
	case OpLoad:
		l := in.Load
		return fmt.Sprintf("%s = load [%s] %s", l.Result, l.Ownership, l.Addr)
	case OpStore:
		s := in.Store
		return fmt.Sprintf("store %s to [%s] %s", s.Value, s.Ownership, s.Addr)
	case OpAllocStack:
		return fmt.Sprintf("%s = alloc_stack %s", in.AllocStack.Result, in.AllocStack.Type)
	case OpDeallocStack:
		return fmt.Sprintf("dealloc_stack %s", in.DeallocStack.Addr)
	case OpFunctionRef:
		return fmt.Sprintf("%s = function_ref @%s", in.FunctionRef.Result, in.FunctionRef.Symbol)
	case OpApply:
		a := in.Apply
		call := fmt.Sprintf("apply %s%s(%s)", a.Callee, a.Subs, formatValues(a.Args))
		if a.Result != NoValue {
			return fmt.Sprintf("%s = %s", a.Result, call)
		}
		return call
	default:
		panic(fmt.Sprintf("unknown opcode %d", in.Op))
	}
}

func (p *Printer) formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.Value != NoValue {
			return fmt.Sprintf("return %s", t.Return.Value)
		}
		return "return"
	case TermBr:
		return fmt.Sprintf("br %s", t.Br.Target.Label)
	case TermCondBr:
		c := t.CondBr
		return fmt.Sprintf("cond_br %s, %s, %s", c.Cond, c.True.Label, c.False.Label)
	case TermNone:
		return "<unterminated>"
	default:
		panic(fmt.Sprintf("unknown terminator kind %d", t.Kind))
	}
}

func formatValues(vals []ValueID) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
