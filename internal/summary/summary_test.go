package summary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mica/internal/oir"
	"mica/internal/types"
)

// callerModule builds: main calls helper, helper calls an external
// symbol, orphan calls nothing and nothing calls it.
func callerModule() *oir.Module {
	mod := oir.NewModule("demo")

	main := oir.NewFunction("main")
	b := oir.NewBlockBuilder(main, main.NewBlock())
	ref := b.CreateFunctionRef("helper")
	b.CreateApply(ref, types.SubstitutionMap{}, nil)
	b.SetReturn(oir.NoValue)
	mod.AddFunction(main)

	helper := oir.NewFunction("helper")
	b = oir.NewBlockBuilder(helper, helper.NewBlock())
	ref = b.CreateFunctionRef("externalCleanup")
	b.CreateApply(ref, types.SubstitutionMap{}, nil)
	b.SetReturn(oir.NoValue)
	mod.AddFunction(helper)

	orphan := oir.NewFunction("orphan")
	b = oir.NewBlockBuilder(orphan, orphan.NewBlock())
	b.SetReturn(oir.NoValue)
	mod.AddFunction(orphan)

	return mod
}

func TestBuildEdgesAndLiveness(t *testing.T) {
	m := Build(callerModule())

	require.Len(t, m.Functions, 3)
	assert.Equal(t, "demo", m.Name)

	main := m.Function("main")
	require.NotNil(t, main)
	assert.True(t, main.Live)
	require.Len(t, main.Edges, 1)
	assert.Equal(t, EdgeStatic, main.Edges[0].Kind)
	assert.Equal(t, GUID("helper"), main.Edges[0].Target)

	helper := m.Function("helper")
	require.NotNil(t, helper)
	assert.True(t, helper.Live)
	require.Len(t, helper.Edges, 1)
	assert.Equal(t, GUID("externalCleanup"), helper.Edges[0].Target)

	orphan := m.Function("orphan")
	require.NotNil(t, orphan)
	assert.False(t, orphan.Live)
	assert.Empty(t, orphan.Edges)
}

func TestGUIDIsStable(t *testing.T) {
	assert.Equal(t, GUID("main"), GUID("main"))
	assert.NotEqual(t, GUID("main"), GUID("helper"))
}

func TestWriteAndReadFile(t *testing.T) {
	m := Build(callerModule())
	path := filepath.Join(t.TempDir(), "demo.mods")

	require.NoError(t, WriteFile(path, m))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Name, loaded.Name)
	require.Len(t, loaded.Functions, len(m.Functions))
	for i, fn := range m.Functions {
		assert.Equal(t, fn.GUID, loaded.Functions[i].GUID)
		assert.Equal(t, fn.Live, loaded.Functions[i].Live)
		assert.Equal(t, fn.Name, loaded.Functions[i].Name)
		assert.Equal(t, fn.Edges, loaded.Functions[i].Edges)
	}
}

func TestReadFileRejectsForeignData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.mods")
	require.NoError(t, os.WriteFile(path, []byte("not a summary at all"), 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a module summary file")
}

func TestReadFileRejectsVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.mods")
	// Valid magic, bogus version.
	require.NoError(t, os.WriteFile(path, []byte{'M', 'O', 'D', 'S', 0xFF, 0xFF, 0, 0, 0, 0}, 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}
