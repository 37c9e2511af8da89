package solsmith

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramStateRequiresUnit(t *testing.T) {

	t.Parallel()

	st := NewProgramState()
	r := newRNG(1, zerolog.Nop(), false)

	for name, f := range map[string]func(){
		"CurrentUnit":   func() { st.CurrentUnit() },
		"CurrentPath":   func() { st.CurrentPath() },
		"ExportSymbol":  func() { st.ExportSymbol("x") },
		"RandomPath":    func() { st.RandomPath(r) },
		"RandomOther":   func() { st.RandomOtherPath(r) },
		"RegisterFunc":  func() { st.RegisterFunction(&FunctionSignature{Name: "f0"}) },
		"SignatureSeen": func() { st.SignatureExists(&FunctionSignature{Name: "f0"}) },
	} {
		t.Run(name, func(t *testing.T) {
			requireInternalPanic(t, f)
		})
	}
}

func TestProgramStateUnits(t *testing.T) {

	t.Parallel()

	st := NewProgramState()
	assert.True(t, st.Empty())

	st.BeginSourceUnit("su0.sol")
	st.ExportSymbol("f0")
	st.BeginSourceUnit("su1.sol")

	assert.Equal(t, 2, st.Len())
	assert.Equal(t, []string{"su0.sol", "su1.sol"}, st.Paths())
	assert.Equal(t, "su1.sol", st.CurrentPath())

	first, ok := st.Unit("su0.sol")
	require.True(t, ok)
	assert.Equal(t, []string{"f0"}, first.Exports.Symbols)

	_, ok = st.Unit("su9.sol")
	assert.False(t, ok)

	requireInternalPanic(t, func() {
		st.BeginSourceUnit("su0.sol")
	})
}

func TestProgramStateRandomOtherPath(t *testing.T) {

	t.Parallel()

	st := NewProgramState()
	r := newRNG(5, zerolog.Nop(), false)

	st.BeginSourceUnit("su0.sol")
	_, ok := st.RandomOtherPath(r)
	assert.False(t, ok)

	st.BeginSourceUnit("su1.sol")
	st.BeginSourceUnit("su2.sol")
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		path, ok := st.RandomOtherPath(r)
		require.True(t, ok)
		require.NotEqual(t, "su2.sol", path)
		seen[path] = true
	}
	assert.Equal(t, map[string]bool{"su0.sol": true, "su1.sol": true}, seen)
}

func TestExportedSymbolsMerge(t *testing.T) {

	t.Parallel()

	var a, b ExportedSymbols
	a.AddSymbol("f1")
	a.AddType("C0")
	b.AddSymbol("f0")
	b.AddSymbol("f1")
	b.AddType("E2")

	a.Merge(b)
	a.Merge(b)

	assert.Equal(t, []string{"C0", "E2", "f0", "f1"}, a.Symbols)
	assert.Equal(t, []string{"C0", "E2"}, a.Types)
	assert.True(t, a.HasType("E2"))
	assert.False(t, a.HasType("f0"))

	r := newRNG(1, zerolog.Nop(), false)
	typ, ok := a.RandomType(r)
	require.True(t, ok)
	assert.Contains(t, a.Types, typ)

	var empty ExportedSymbols
	_, ok = empty.RandomSymbol(r)
	assert.False(t, ok)
}

func TestRegisterFunctionRejectsDuplicates(t *testing.T) {

	t.Parallel()

	st := NewProgramState()
	st.BeginSourceUnit("su0.sol")

	sig := func() *FunctionSignature {
		return &FunctionSignature{
			Name:        "f0",
			Mutability:  MutabilityView,
			Visibility:  VisibilityPublic,
			Inputs:      []Param{{Type: "uint8", Name: "p0"}},
			Inheritance: InheritanceNone,
		}
	}

	require.True(t, st.RegisterFunction(sig()))
	assert.False(t, st.RegisterFunction(sig()))

	other := sig()
	other.Outputs = []Param{{Type: "bool", Name: "r0"}}
	assert.True(t, st.RegisterFunction(other))

	assert.Len(t, st.CurrentUnit().Functions, 2)
	assert.Equal(t, []string{"f0"}, st.CurrentUnit().Exports.Symbols)
}

func TestProgramStateDump(t *testing.T) {

	t.Parallel()

	st := NewProgramState()
	st.BeginSourceUnit("su0.sol")
	st.AddContract("C0")
	st.AddImport(ImportRelation{Path: "su0.sol", UnitAlias: "I0"})

	var out bytes.Buffer
	require.NoError(t, st.Dump(&out, false))
	assert.Contains(t, out.String(), "su0.sol")
	assert.Contains(t, out.String(), "C0")
	assert.Contains(t, out.String(), "I0")
}
