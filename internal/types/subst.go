package types

import (
	"fmt"
	"strings"
)

// Substitution pairs one generic parameter with a concrete argument.
type Substitution struct {
	Param string
	Arg   Type
}

// SubstitutionMap maps a generic declaration's type parameters to the
// concrete arguments supplied at a use site. Built fresh per site;
// empty for non-generic declarations.
type SubstitutionMap struct {
	subs []Substitution
}

// Substitutions pairs decl's type parameters with the concrete
// arguments of an instantiation, in declaration order. An arity
// mismatch means the instantiation was never type-checked and panics.
func Substitutions(decl *NominalDecl, args []Type) SubstitutionMap {
	if len(decl.TypeParams) != len(args) {
		panic(fmt.Sprintf("substitution arity mismatch for %s: %d params, %d args",
			decl.Name, len(decl.TypeParams), len(args)))
	}
	subs := make([]Substitution, len(args))
	for i, param := range decl.TypeParams {
		subs[i] = Substitution{Param: param, Arg: args[i]}
	}
	return SubstitutionMap{subs: subs}
}

// NewSubstitutionMap builds a map from explicit pairs. Used when the
// pairing comes from parsed source rather than a declaration.
func NewSubstitutionMap(subs ...Substitution) SubstitutionMap {
	return SubstitutionMap{subs: subs}
}

// Empty reports whether the map carries no substitutions.
func (m SubstitutionMap) Empty() bool { return len(m.subs) == 0 }

// Len returns the number of substitutions.
func (m SubstitutionMap) Len() int { return len(m.subs) }

// Lookup returns the concrete argument bound to param.
func (m SubstitutionMap) Lookup(param string) (Type, bool) {
	for _, s := range m.subs {
		if s.Param == param {
			return s.Arg, true
		}
	}
	return nil, false
}

// Entries returns the substitutions in declaration order.
func (m SubstitutionMap) Entries() []Substitution { return m.subs }

func (m SubstitutionMap) String() string {
	if len(m.subs) == 0 {
		return ""
	}
	parts := make([]string, len(m.subs))
	for i, s := range m.subs {
		parts[i] = fmt.Sprintf("%s = %s", s.Param, s.Arg)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
