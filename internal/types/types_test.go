package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoncopyableClassification(t *testing.T) {
	handle := &NominalDecl{Name: "FileHandle", Noncopyable: true}
	point := &NominalDecl{Name: "Point"}

	assert.True(t, Noncopyable(handle.Instantiate()))
	assert.False(t, Noncopyable(point.Instantiate()))
	assert.False(t, Noncopyable(&IntType{Bits: 64}))
	assert.False(t, Noncopyable(&BoolType{}))

	// A tuple is noncopyable as soon as one element is.
	mixed := &TupleType{Elements: []Type{&IntType{Bits: 64}, handle.Instantiate()}}
	assert.True(t, Noncopyable(mixed))
	trivial := &TupleType{Elements: []Type{&IntType{Bits: 64}, &BoolType{}}}
	assert.False(t, Noncopyable(trivial))

	// Addresses are copyable even when the pointee is not.
	assert.False(t, Noncopyable(&AddrType{Pointee: handle.Instantiate()}))
}

func TestLoadableClassification(t *testing.T) {
	opaque := &NominalDecl{Name: "Opaque", Noncopyable: true, AddressOnly: true}
	box := &NominalDecl{Name: "Box", TypeParams: []string{"T"}, Noncopyable: true}

	assert.False(t, Loadable(opaque.Instantiate()))
	assert.True(t, Loadable(box.Instantiate(&IntType{Bits: 64})))

	// Instantiating with an address-only argument poisons loadability.
	assert.False(t, Loadable(box.Instantiate(opaque.Instantiate())))
	assert.False(t, Loadable(&TupleType{Elements: []Type{opaque.Instantiate()}}))
	assert.True(t, Loadable(&IntType{Bits: 32}))
}

func TestNominalOf(t *testing.T) {
	box := &NominalDecl{Name: "Box", TypeParams: []string{"T"}}
	nom := NominalOf(box.Instantiate(&BoolType{}))
	require.NotNil(t, nom)
	assert.Equal(t, box, nom.Decl)

	assert.Nil(t, NominalOf(&TupleType{}))
	assert.Nil(t, NominalOf(&IntType{Bits: 8}))
}

func TestTypePrinting(t *testing.T) {
	box := &NominalDecl{Name: "Box", TypeParams: []string{"T"}}
	assert.Equal(t, "Box<Int64>", box.Instantiate(&IntType{Bits: 64}).String())
	assert.Equal(t, "*Box<Int64>", (&AddrType{Pointee: box.Instantiate(&IntType{Bits: 64})}).String())
	assert.Equal(t, "()", (&TupleType{}).String())
	assert.Equal(t, "(Int64, Bool)", (&TupleType{Elements: []Type{&IntType{Bits: 64}, &BoolType{}}}).String())
}

func TestDeinitTable(t *testing.T) {
	table := NewDeinitTable()
	handle := &NominalDecl{Name: "FileHandle", Noncopyable: true}
	deinit := &DeinitFunc{Name: "fileHandleDeinit", Self: ConventionIndirect}

	assert.Nil(t, table.Lookup(handle))
	table.Register(handle, deinit)
	assert.Equal(t, deinit, table.Lookup(handle))

	assert.Panics(t, func() { table.Register(handle, deinit) })
}

func TestSubstitutions(t *testing.T) {
	box := &NominalDecl{Name: "Box", TypeParams: []string{"T"}}
	subs := Substitutions(box, []Type{&IntType{Bits: 64}})
	require.Equal(t, 1, subs.Len())

	arg, ok := subs.Lookup("T")
	require.True(t, ok)
	assert.Equal(t, "Int64", arg.String())
	assert.Equal(t, "<T = Int64>", subs.String())

	handle := &NominalDecl{Name: "FileHandle"}
	empty := Substitutions(handle, nil)
	assert.True(t, empty.Empty())
	assert.Equal(t, "", empty.String())

	assert.Panics(t, func() { Substitutions(box, nil) })
}
