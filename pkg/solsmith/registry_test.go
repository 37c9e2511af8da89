package solsmith

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	base
	k    Kind
	deps []Kind
}

func (f *fakeGenerator) kind() Kind       { return f.k }
func (f *fakeGenerator) name() string     { return "fake " + f.k.String() }
func (f *fakeGenerator) requires() []Kind { return f.deps }
func (f *fakeGenerator) setup()           {}
func (f *fakeGenerator) visit() string    { return "" }
func (f *fakeGenerator) reset()           {}

func TestSetupOrderRespectsDependencies(t *testing.T) {

	t.Parallel()

	g := newTestGraph(t, testOptions(), 1)
	order := g.SetupOrder()
	require.Len(t, order, int(kindCount))

	position := map[Kind]int{}
	for i, k := range order {
		position[k] = i
	}
	for _, k := range order {
		for _, dep := range g.Lookup(k).requires() {
			assert.Less(t, position[dep], position[k], "%s must be set up before %s", dep, k)
		}
	}
}

func TestSetupOrderRejectsCycles(t *testing.T) {

	t.Parallel()

	t.Run("cycle", func(t *testing.T) {
		requireInternalPanic(t, func() {
			setupOrder([]generator{
				&fakeGenerator{k: KindIntegerType, deps: []Kind{KindBoolType}},
				&fakeGenerator{k: KindBoolType, deps: []Kind{KindAddressType}},
				&fakeGenerator{k: KindAddressType, deps: []Kind{KindIntegerType}},
			})
		})
	})

	t.Run("self", func(t *testing.T) {
		requireInternalPanic(t, func() {
			setupOrder([]generator{
				&fakeGenerator{k: KindIntegerType, deps: []Kind{KindIntegerType}},
			})
		})
	})

	t.Run("acyclic", func(t *testing.T) {
		order := setupOrder([]generator{
			&fakeGenerator{k: KindIntegerType, deps: []Kind{KindBoolType}},
			&fakeGenerator{k: KindBoolType},
		})
		assert.Equal(t, []Kind{KindBoolType, KindIntegerType}, order)
	})
}

func TestGraphLookup(t *testing.T) {

	t.Parallel()

	g := newTestGraph(t, testOptions(), 1)
	for k := Kind(0); k < kindCount; k++ {
		gen := g.Lookup(k)
		assert.Equal(t, k, gen.kind())
		assert.NotEmpty(t, gen.name())
	}
	assert.Same(t, g.Lookup(KindExpression), g.Lookup(KindExpression))
	assert.NotSame(t, g.Lookup(KindExpression), g.Lookup(KindConstantExpression))

	requireInternalPanic(t, func() {
		g.Lookup(kindCount)
	})
}

func TestGraphUndeclaredDependency(t *testing.T) {

	t.Parallel()

	g := newTestGraph(t, testOptions(), 1)
	pragma := g.Lookup(KindPragma).core()
	requireInternalPanic(t, func() {
		pragma.dependency(KindExpression)
	})
}

func TestGraphRandomGenerator(t *testing.T) {

	t.Parallel()

	g := newTestGraph(t, testOptions(), 9)
	seen := map[Kind]bool{}
	for i := 0; i < 2000; i++ {
		seen[g.randomGenerator(nil).kind()] = true
	}
	assert.Len(t, seen, int(kindCount))
}

func TestRandomDependencyHonoursExclusions(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 10)
	unit := g.Lookup(KindSourceUnit).core()
	seen := map[Kind]bool{}
	for i := 0; i < 2000; i++ {
		k := unit.randomDependency(KindPragma, KindImport, KindContractDefinition).kind()
		require.True(t, unit.dependsOn(k), "picked undeclared %s", k)
		seen[k] = true
	}
	assert.NotContains(t, seen, KindPragma)
	assert.NotContains(t, seen, KindImport)
	assert.NotContains(t, seen, KindContractDefinition)
	assert.Len(t, seen, int(unit.deps.Count())-3)
}

func TestGraphResetIsIdempotent(t *testing.T) {

	t.Parallel()

	opts := testOptions()
	s, err := NewSynthesizer(opts)
	require.NoError(t, err)

	first := s.Synthesize(11)
	other := s.Synthesize(12)

	graph := s.gen.(*defaultProgramGenerator).graph
	graph.Reset()
	graph.Reset()

	expr := graph.Lookup(KindExpression).(*expressionGenerator)
	assert.Zero(t, expr.count)
	assert.Zero(t, expr.nesting)
	assert.Zero(t, graph.Lookup(KindBlock).(*blockGenerator).depth)
	assert.Zero(t, graph.Lookup(KindNatSpec).(*natSpecGenerator).depth)

	again := s.Synthesize(11)
	assert.Equal(t, first.Text, again.Text)
	assert.NotEqual(t, first.Text, other.Text)
	requireEqualState(t, first.State, again.State)
}

func TestKindString(t *testing.T) {

	t.Parallel()

	names := map[string]bool{}
	for k := Kind(0); k < kindCount; k++ {
		name := k.String()
		require.NotEmpty(t, name)
		require.False(t, names[name], "duplicate name %q", name)
		names[name] = true
	}
	assert.Equal(t, "kind(99)", Kind(99).String())
}
