// Package summary builds and persists per-module call-graph summaries
// used by whole-program analysis. A summary records the module name
// and, per function, a GUID, a liveness flag, the symbol name, and the
// function's outgoing call edges.
package summary

import (
	"crypto/sha256"
	"encoding/binary"

	"mica/internal/oir"
)

// EdgeKind classifies how a call edge dispatches.
type EdgeKind uint8

const (
	// EdgeStatic is a direct call of a known function.
	EdgeStatic EdgeKind = iota
	// EdgeWitness dispatches through a protocol witness table.
	EdgeWitness
	// EdgeVTable dispatches through a class vtable.
	EdgeVTable
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeWitness:
		return "witness"
	case EdgeVTable:
		return "vtable"
	default:
		return "static"
	}
}

// Edge is one call-graph edge. Table identifies the witness/vtable the
// call dispatches through; it is zero for static calls.
type Edge struct {
	Kind   EdgeKind `msgpack:"kind"`
	Target uint64   `msgpack:"target"`
	Table  uint64   `msgpack:"table"`
}

// FunctionSummary is the per-function metadata record.
type FunctionSummary struct {
	GUID  uint64 `msgpack:"guid"`
	Live  bool   `msgpack:"live"`
	Name  string `msgpack:"name"`
	Edges []Edge `msgpack:"edges"`
}

// ModuleSummary is the whole-module record set.
type ModuleSummary struct {
	Name      string             `msgpack:"name"`
	Functions []*FunctionSummary `msgpack:"functions"`
}

// Function returns the summary for the function named name, or nil.
func (m *ModuleSummary) Function(name string) *FunctionSummary {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// GUID derives a stable identifier from a symbol name.
func GUID(name string) uint64 {
	h := sha256.Sum256([]byte(name))
	return binary.BigEndian.Uint64(h[:8])
}

// Build derives a summary from a module: one record per function,
// static call edges from apply sites whose callee is a function_ref,
// and liveness propagated from the entry point.
func Build(mod *oir.Module) *ModuleSummary {
	out := &ModuleSummary{Name: mod.Name}

	for _, fn := range mod.Functions {
		fs := &FunctionSummary{
			GUID: GUID(fn.Name),
			Name: fn.Name,
		}
		for _, block := range fn.Blocks {
			for i := range block.Instrs {
				in := &block.Instrs[i]
				if in.Op != oir.OpApply {
					continue
				}
				def := fn.Definer(in.Apply.Callee)
				if def == nil || def.Op != oir.OpFunctionRef {
					continue
				}
				fs.Edges = append(fs.Edges, Edge{
					Kind:   EdgeStatic,
					Target: GUID(def.FunctionRef.Symbol),
				})
			}
		}
		out.Functions = append(out.Functions, fs)
	}

	markLive(out)
	return out
}

// markLive flags the entry point and everything statically reachable
// from it. Edges into other modules are kept but contribute nothing to
// local liveness.
func markLive(m *ModuleSummary) {
	byGUID := make(map[uint64]*FunctionSummary, len(m.Functions))
	for _, fn := range m.Functions {
		byGUID[fn.GUID] = fn
	}

	var worklist []*FunctionSummary
	for _, fn := range m.Functions {
		if fn.Name == "main" {
			fn.Live = true
			worklist = append(worklist, fn)
		}
	}

	for len(worklist) > 0 {
		fn := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, edge := range fn.Edges {
			if target, ok := byGUID[edge.Target]; ok && !target.Live {
				target.Live = true
				worklist = append(worklist, target)
			}
		}
	}
}
