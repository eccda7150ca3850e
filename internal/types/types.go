package types

import (
	"fmt"
	"strings"
)

// Type is the interface implemented by every OIR type.
type Type interface {
	String() string
}

// IntType is a fixed-width integer type.
type IntType struct {
	Bits int
}

// BoolType is the boolean type.
type BoolType struct{}

// TupleType is an anonymous aggregate. Tuples are structural: they never
// carry a nominal declaration and therefore never have a deinit.
type TupleType struct {
	Elements []Type
}

// NominalType is a named type, possibly instantiated with concrete
// generic arguments (e.g. Box<Int64>).
type NominalType struct {
	Decl *NominalDecl
	Args []Type
}

// AddrType is the type of an address of a memory location holding a
// Pointee value. Addresses themselves are always copyable.
type AddrType struct {
	Pointee Type
}

// FuncType is the type of a function reference.
type FuncType struct {
	Symbol string
}

func (i *IntType) String() string  { return fmt.Sprintf("Int%d", i.Bits) }
func (b *BoolType) String() string { return "Bool" }

func (t *TupleType) String() string {
	if len(t.Elements) == 0 {
		return "()"
	}
	parts := make([]string, len(t.Elements))
	for i, elem := range t.Elements {
		parts[i] = elem.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (n *NominalType) String() string {
	if len(n.Args) == 0 {
		return n.Decl.Name
	}
	parts := make([]string, len(n.Args))
	for i, arg := range n.Args {
		parts[i] = arg.String()
	}
	return n.Decl.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (a *AddrType) String() string { return "*" + a.Pointee.String() }
func (f *FuncType) String() string { return "@" + f.Symbol }

// Noncopyable reports whether values of t may not be implicitly
// duplicated. Tuples are noncopyable if any element is.
func Noncopyable(t Type) bool {
	switch tt := t.(type) {
	case *NominalType:
		return tt.Decl.Noncopyable
	case *TupleType:
		for _, elem := range tt.Elements {
			if Noncopyable(elem) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Loadable reports whether a value of t can be materialized as a direct
// value, as opposed to only being manipulated through memory.
func Loadable(t Type) bool {
	switch tt := t.(type) {
	case *NominalType:
		if tt.Decl.AddressOnly {
			return false
		}
		for _, arg := range tt.Args {
			if !Loadable(arg) {
				return false
			}
		}
		return true
	case *TupleType:
		for _, elem := range tt.Elements {
			if !Loadable(elem) {
				return false
			}
		}
		return true
	case *AddrType:
		return true
	default:
		return true
	}
}

// NominalOf returns the nominal type underlying t, looking through
// generic instantiation, or nil if t has no nominal declaration.
func NominalOf(t Type) *NominalType {
	nom, _ := t.(*NominalType)
	return nom
}
