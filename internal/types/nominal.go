package types

// NominalDecl is the declaration of a named type. Generic declarations
// carry type parameter names; instantiations pair them with concrete
// arguments via a SubstitutionMap.
type NominalDecl struct {
	Name        string
	TypeParams  []string
	Noncopyable bool
	AddressOnly bool // layout only accessible through memory
}

// Instantiate builds the nominal type for this declaration applied to
// the given concrete arguments.
func (d *NominalDecl) Instantiate(args ...Type) *NominalType {
	return &NominalType{Decl: d, Args: args}
}

// Convention selects how a callee receives its self parameter.
type Convention uint8

const (
	// ConventionDirect passes self by value.
	ConventionDirect Convention = iota
	// ConventionIndirect passes the address of self.
	ConventionIndirect
)

func (c Convention) String() string {
	if c == ConventionIndirect {
		return "indirect"
	}
	return "direct"
}

// Indirect reports whether the callee expects an address.
func (c Convention) Indirect() bool { return c == ConventionIndirect }

// DeinitFunc describes a synthesized deinitializer: the symbol to call
// and the convention of its single self parameter. Its generic
// parameters are those of the declaring nominal type.
type DeinitFunc struct {
	Name string
	Self Convention
}
