package grammar_test

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mica/grammar"
	"mica/internal/oir"
	"mica/internal/types"
)

func init() {
	color.NoColor = true
}

const demoSource = `module demo

// File descriptors must be closed exactly once.
nominal FileHandle: noncopyable {
  deinit @fileHandleDeinit indirect
}

nominal Token: noncopyable {
  deinit @tokenDeinit direct
}

nominal Box<T>: noncopyable {
  deinit @boxDeinit indirect
}

nominal Blob: noncopyable, address_only {
  deinit @blobDeinit indirect
}

nominal Plain {}

fn consume(%0: *FileHandle) {
bb0:
  destroy_addr %0
  return
}

fn run() {
bb0:
  %0 = construct Token
  %1 = move_value %0
  destroy_value %1
  return
}
`

func TestParseDemo(t *testing.T) {
	file, err := grammar.ParseSource("demo.oir", demoSource)
	require.NoError(t, err)

	assert.Equal(t, "demo", file.Module)
	assert.Equal(t, 7, len(file.Decls))

	handle := file.Decls[0].Nominal
	require.NotNil(t, handle)
	assert.Equal(t, "FileHandle", handle.Name)
	assert.Equal(t, []string{"noncopyable"}, handle.Attrs)
	require.NotNil(t, handle.Deinit)
	assert.Equal(t, "@fileHandleDeinit", handle.Deinit.Symbol)
	assert.Equal(t, "indirect", handle.Deinit.Convention)

	token := file.Decls[1].Nominal
	require.NotNil(t, token)
	assert.Equal(t, "direct", token.Deinit.Convention)

	box := file.Decls[2].Nominal
	require.NotNil(t, box)
	assert.Equal(t, []string{"T"}, box.TypeParams)

	blob := file.Decls[3].Nominal
	require.NotNil(t, blob)
	assert.Equal(t, []string{"noncopyable", "address_only"}, blob.Attrs)

	plain := file.Decls[4].Nominal
	require.NotNil(t, plain)
	assert.Nil(t, plain.Deinit)
	assert.Empty(t, plain.Attrs)

	consume := file.Decls[5].Func
	require.NotNil(t, consume)
	assert.Equal(t, "consume", consume.Name)
	require.Equal(t, 1, len(consume.Params))
	assert.Equal(t, "%0", consume.Params[0].Value)
	require.NotNil(t, consume.Params[0].Type.Addr)
	assert.Equal(t, "FileHandle", consume.Params[0].Type.Addr.Named.Name)

	require.Equal(t, 1, len(consume.Blocks))
	block := consume.Blocks[0]
	assert.Equal(t, "bb0", block.Label)
	require.Equal(t, 1, len(block.Instrs))
	require.NotNil(t, block.Instrs[0].Effect)
	assert.Equal(t, "%0", block.Instrs[0].Effect.DestroyAddr.Addr)
	require.NotNil(t, block.Term.Return)
	assert.Nil(t, block.Term.Return.Value)
}

func TestParseSubstitutions(t *testing.T) {
	source := `module demo

nominal Box<T>: noncopyable {
  deinit @boxDeinit indirect
}

fn callDeinit(%0: *Box<Int64>) {
bb0:
  %1 = function_ref @boxDeinit
  apply %1<T = Int64>(%0)
  return
}
`
	file, err := grammar.ParseSource("subs.oir", source)
	require.NoError(t, err)

	fn := file.Decls[1].Func
	require.NotNil(t, fn)
	apply := fn.Blocks[0].Instrs[1].Effect.Apply
	require.NotNil(t, apply)
	assert.Equal(t, "%1", apply.Callee)
	require.Equal(t, 1, len(apply.Subs))
	assert.Equal(t, "T", apply.Subs[0].Param)
	assert.Equal(t, "Int64", apply.Subs[0].Arg.Named.Name)
	assert.Equal(t, []string{"%0"}, apply.Args)
}

func TestParseControlFlow(t *testing.T) {
	source := `module demo

fn pick(%0: Bool) {
bb0:
  cond_br %0, bb1, bb2
bb1:
  br bb3
bb2:
  br bb3
bb3:
  return
}
`
	file, err := grammar.ParseSource("cfg.oir", source)
	require.NoError(t, err)

	fn := file.Decls[0].Func
	require.Equal(t, 4, len(fn.Blocks))
	condBr := fn.Blocks[0].Term.CondBr
	require.NotNil(t, condBr)
	assert.Equal(t, "%0", condBr.Cond)
	assert.Equal(t, "bb1", condBr.True)
	assert.Equal(t, "bb2", condBr.False)
	assert.Equal(t, "bb3", fn.Blocks[1].Term.Br.Target)
}

func TestParseError(t *testing.T) {
	_, err := grammar.ParseSource("bad.oir", "module demo\nfn broken( {\n")
	assert.Error(t, err)
}

func TestConvertDemo(t *testing.T) {
	file, err := grammar.ParseSource("demo.oir", demoSource)
	require.NoError(t, err)

	mod, errs := grammar.Convert(file)
	require.Empty(t, errs)

	assert.Equal(t, "demo", mod.Name)
	assert.Equal(t, 5, len(mod.Nominals))
	assert.Equal(t, 2, len(mod.Functions))

	handle := mod.Nominals[0]
	assert.Equal(t, "FileHandle", handle.Name)
	assert.True(t, handle.Noncopyable)
	deinit := mod.Deinits.Lookup(handle)
	require.NotNil(t, deinit)
	assert.Equal(t, "fileHandleDeinit", deinit.Name)
	assert.True(t, deinit.Self.Indirect())

	token := mod.Nominals[1]
	assert.False(t, mod.Deinits.Lookup(token).Self.Indirect())

	blob := mod.Nominals[3]
	assert.True(t, blob.AddressOnly)

	plain := mod.Nominals[4]
	assert.False(t, plain.Noncopyable)
	assert.Nil(t, mod.Deinits.Lookup(plain))

	consume := mod.Function("consume")
	require.NotNil(t, consume)
	require.Equal(t, 1, len(consume.Params))
	addr, ok := consume.Params[0].Type.(*types.AddrType)
	require.True(t, ok)
	assert.Equal(t, "FileHandle", addr.Pointee.String())
	assert.Equal(t, oir.StageRaw, consume.Stage)

	run := mod.Function("run")
	require.NotNil(t, run)
	block := run.Blocks[0]
	require.Equal(t, 3, len(block.Instrs))
	assert.Equal(t, oir.OpConstruct, block.Instrs[0].Op)
	assert.Equal(t, oir.OpMoveValue, block.Instrs[1].Op)
	assert.Equal(t, oir.OpDestroyValue, block.Instrs[2].Op)
	assert.Equal(t, block.Instrs[0].Result(), block.Instrs[1].MoveValue.Value)
	assert.Equal(t, block.Instrs[1].Result(), block.Instrs[2].DestroyValue.Value)
	assert.Equal(t, oir.TermReturn, block.Term.Kind)
}

func TestConvertSubstitutions(t *testing.T) {
	source := `module demo

nominal Box<T>: noncopyable {
  deinit @boxDeinit indirect
}

fn callDeinit(%0: *Box<Int64>) {
bb0:
  %1 = function_ref @boxDeinit
  apply %1<T = Int64>(%0)
  return
}
`
	file, err := grammar.ParseSource("subs.oir", source)
	require.NoError(t, err)
	mod, errs := grammar.Convert(file)
	require.Empty(t, errs)

	fn := mod.Function("callDeinit")
	apply := fn.Blocks[0].Instrs[1].Apply
	assert.Equal(t, oir.NoValue, apply.Result)
	arg, ok := apply.Subs.Lookup("T")
	require.True(t, ok)
	assert.Equal(t, "Int64", arg.String())
}

func TestConvertErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		code   string
	}{
		{
			name:   "undefined value",
			source: "module m\nfn f() {\nbb0:\n  destroy_value %9\n  return\n}\n",
			code:   "E0002",
		},
		{
			name:   "redefined value",
			source: "module m\nfn f() {\nbb0:\n  %0 = construct Int64\n  %0 = construct Int64\n  return\n}\n",
			code:   "E0003",
		},
		{
			name:   "unknown block",
			source: "module m\nfn f() {\nbb0:\n  br bb7\n}\n",
			code:   "E0004",
		},
		{
			name:   "unknown nominal",
			source: "module m\nfn f(%0: Mystery) {\nbb0:\n  return\n}\n",
			code:   "E0001",
		},
		{
			name:   "generic arity",
			source: "module m\nnominal Box<T>: noncopyable {}\nfn f(%0: Box<Int64, Bool>) {\nbb0:\n  return\n}\n",
			code:   "E0005",
		},
		{
			name:   "load from non-address",
			source: "module m\nfn f(%0: Int64) {\nbb0:\n  %1 = load [take] %0\n  return\n}\n",
			code:   "E0007",
		},
		{
			name:   "destroy_addr of non-address",
			source: "module m\nnominal Token: noncopyable {}\nfn f(%0: Token) {\nbb0:\n  destroy_addr %0\n  return\n}\n",
			code:   "E0007",
		},
		{
			name:   "store to non-address",
			source: "module m\nfn f(%0: Int64, %1: Int64) {\nbb0:\n  store %0 to [init] %1\n  return\n}\n",
			code:   "E0007",
		},
		{
			name:   "dealloc_stack of non-address",
			source: "module m\nfn f(%0: Int64) {\nbb0:\n  dealloc_stack %0\n  return\n}\n",
			code:   "E0007",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			file, err := grammar.ParseSource(tc.name+".oir", tc.source)
			require.NoError(t, err)
			_, errs := grammar.Convert(file)
			require.NotEmpty(t, errs)
			assert.Equal(t, tc.code, errs[0].Code)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	source := `module demo

nominal FileHandle: noncopyable {
  deinit @fileHandleDeinit indirect
}

nominal Box<T>: noncopyable {
  deinit @boxDeinit indirect
}

fn consume(%0: *FileHandle) {
bb0:
  destroy_addr %0
  return
}

fn stage(%0: Box<Int64>) {
bb0:
  %1 = alloc_stack Box<Int64>
  store %0 to [init] %1
  destroy_addr %1
  dealloc_stack %1
  return
}
`
	file, err := grammar.ParseSource("roundtrip.oir", source)
	require.NoError(t, err)
	mod, errs := grammar.Convert(file)
	require.Empty(t, errs)

	printed := oir.Print(mod)

	file2, err := grammar.ParseSource("roundtrip2.oir", printed)
	require.NoError(t, err)
	mod2, errs := grammar.Convert(file2)
	require.Empty(t, errs)

	assert.Equal(t, printed, oir.Print(mod2))
}
