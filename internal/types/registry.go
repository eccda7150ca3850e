package types

// DeinitTable maps nominal declarations to their synthesized
// deinitializers. It is populated while declarations are processed and
// treated as read-only once the pass pipeline starts, so concurrent
// lookups from parallel pass instances need no locking.
type DeinitTable struct {
	deinits map[*NominalDecl]*DeinitFunc
}

// NewDeinitTable creates an empty deinit table.
func NewDeinitTable() *DeinitTable {
	return &DeinitTable{
		deinits: make(map[*NominalDecl]*DeinitFunc),
	}
}

// Register associates a deinitializer with a declaration. Registering a
// second deinit for the same declaration indicates a synthesis bug and
// panics.
func (dt *DeinitTable) Register(decl *NominalDecl, fn *DeinitFunc) {
	if _, exists := dt.deinits[decl]; exists {
		panic("deinit already registered for " + decl.Name)
	}
	dt.deinits[decl] = fn
}

// Lookup returns the deinitializer registered for decl, or nil if the
// declaration has none.
func (dt *DeinitTable) Lookup(decl *NominalDecl) *DeinitFunc {
	return dt.deinits[decl]
}
