package solsmith

import (
	"sort"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OpenDotSo/solidity/pkg/render"
)

// Kind identifies one production rule. Every Graph holds exactly one
// generator per Kind.
type Kind uint

const (
	KindIntegerType Kind = iota
	KindBytesType
	KindBoolType
	KindAddressType
	KindUserDefinedType
	KindFunctionType
	KindArrayType
	KindType
	KindLocation
	KindExpression
	KindConstantExpression
	KindVariableDeclaration
	KindParameterList
	KindSimpleStatement
	KindBlock
	KindNatSpec
	KindStateVariable
	KindConstantVariable
	KindEvent
	KindEnum
	KindFunctionDefinition
	KindContractDefinition
	KindPragma
	KindImport
	KindSourceUnit
	KindTestCase
	kindCount
)

// generator is the closed set of production rules. setup runs once, in
// dependency order, after the graph has registered the kinds returned by
// requires into the generator's dependency set.
type generator interface {
	core() *base
	kind() Kind
	name() string
	requires() []Kind
	setup()
	visit() string
	reset()
}

// base carries what every generator shares: the owning graph, the shared
// random stream and its own dependency set.
type base struct {
	graph *Graph
	deps  *bitset.BitSet
}

func (b *base) core() *base {
	return b
}

func (b *base) rand() *rng {
	return b.graph.rand
}

func (b *base) state() *ProgramState {
	return b.graph.state
}

func (b *base) opts() *Options {
	return &b.graph.opts
}

func (b *base) render(tmpl string, ctx render.Context) string {
	return b.graph.opts.Renderer.Render(tmpl, ctx)
}

func (b *base) dependsOn(k Kind) bool {
	return b.deps.Test(uint(k))
}

// dependency returns a declared dependency. Reaching for an undeclared kind
// means the graph is miswired.
func (b *base) dependency(k Kind) generator {
	assertf(b.dependsOn(k), "undeclared dependency on %s", k)
	return b.graph.Lookup(k)
}

// randomDependency picks uniformly among the declared dependencies, minus
// the excluded kinds.
func (b *base) randomDependency(exclude ...Kind) generator {
	candidates := b.deps.Clone()
	for _, k := range exclude {
		candidates.Clear(uint(k))
	}
	return b.graph.randomGenerator(candidates)
}

func nonEmptyCount(set *bitset.BitSet) int {
	n := int(set.Count())
	assertf(n > 0, "random pick from an empty kind set")
	return n
}

// nthSet returns the index of the n-th (zero based) set bit.
func nthSet(set *bitset.BitSet, n int) (uint, bool) {
	i, ok := set.NextSet(0)
	for ; ok; i, ok = set.NextSet(i + 1) {
		if n == 0 {
			return i, true
		}
		n--
	}
	return 0, false
}

// Graph is the arena of all generators of one synthesis pass. Generators
// refer to each other by Kind only.
type Graph struct {
	generators [kindCount]generator
	order      []Kind
	rand       *rng
	state      *ProgramState
	opts       Options
	log        zerolog.Logger
}

// newGraph creates every generator, wires the declared dependencies and runs
// setup in dependency order. A dependency cycle panics.
func newGraph(opts Options, r *rng) *Graph {
	g := &Graph{
		rand:  r,
		state: NewProgramState(),
		opts:  opts,
		log:   opts.Logger,
	}
	for k := Kind(0); k < kindCount; k++ {
		gen := newGenerator(k)
		gen.core().graph = g
		gen.core().deps = bitset.New(uint(kindCount))
		assertf(gen.kind() == k, "generator %q registered as %s", gen.name(), k)
		g.generators[k] = gen
	}
	g.order = setupOrder(g.generators[:])
	for _, k := range g.order {
		gen := g.generators[k]
		for _, dep := range gen.requires() {
			gen.core().deps.Set(uint(dep))
		}
		gen.setup()
	}
	return g
}

// setupOrder sorts kinds so every generator comes after its dependencies.
func setupOrder(generators []generator) []Kind {
	dg := simple.NewDirectedGraph()
	for _, gen := range generators {
		dg.AddNode(simple.Node(gen.kind()))
	}
	for _, gen := range generators {
		for _, dep := range gen.requires() {
			assertf(dep != gen.kind(), "generator %q depends on itself", gen.name())
			assertf(dep < kindCount, "generator %q depends on unknown kind %d", gen.name(), dep)
			dg.SetEdge(simple.Edge{F: simple.Node(dep), T: simple.Node(gen.kind())})
		}
	}
	sorted, err := topo.SortStabilized(dg, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].ID() < nodes[j].ID()
		})
	})
	if err != nil {
		panic(NewInvariantViolationError("generator dependency cycle: %v", err))
	}
	order := make([]Kind, 0, len(sorted))
	for _, n := range sorted {
		order = append(order, Kind(n.ID()))
	}
	return order
}

// Lookup returns the generator of kind k.
func (g *Graph) Lookup(k Kind) generator {
	assertf(k < kindCount, "unknown generator kind %d", k)
	gen := g.generators[k]
	assertf(gen != nil, "no generator registered for %s", k)
	return gen
}

// randomGenerator picks uniformly among the generators whose kinds are set
// in candidates. A nil set stands for the whole arena.
func (g *Graph) randomGenerator(candidates *bitset.BitSet) generator {
	if candidates == nil {
		candidates = bitset.New(uint(kindCount))
		candidates.FlipRange(0, uint(kindCount))
	}
	k, ok := nthSet(candidates, g.rand.pickIndex(nonEmptyCount(candidates)))
	assertf(ok, "no generator left to pick")
	return g.Lookup(Kind(k))
}

// Visit applies the rule of kind k once.
func (g *Graph) Visit(k Kind) string {
	return g.Lookup(k).visit()
}

// Reset clears every per-invocation counter. It is idempotent.
func (g *Graph) Reset() {
	for _, gen := range g.generators {
		gen.reset()
	}
}

// SetupOrder returns the order in which setup ran.
func (g *Graph) SetupOrder() []Kind {
	return append([]Kind(nil), g.order...)
}

// State returns the program state generators currently write to.
func (g *Graph) State() *ProgramState {
	return g.state
}

// beginProgram resets the graph and installs a fresh program state.
func (g *Graph) beginProgram() {
	g.Reset()
	g.state = NewProgramState()
}

// typed accessors

func (b *base) integerType() *integerTypeGenerator {
	return b.dependency(KindIntegerType).(*integerTypeGenerator)
}

func (b *base) bytesType() *bytesTypeGenerator {
	return b.dependency(KindBytesType).(*bytesTypeGenerator)
}

func (b *base) boolType() *boolTypeGenerator {
	return b.dependency(KindBoolType).(*boolTypeGenerator)
}

func (b *base) addressType() *addressTypeGenerator {
	return b.dependency(KindAddressType).(*addressTypeGenerator)
}

func (b *base) userDefinedType() *userDefinedTypeGenerator {
	return b.dependency(KindUserDefinedType).(*userDefinedTypeGenerator)
}

func (b *base) typeGenerator() *typeGenerator {
	return b.dependency(KindType).(*typeGenerator)
}

func (b *base) location() *locationGenerator {
	return b.dependency(KindLocation).(*locationGenerator)
}

func (b *base) expression() *expressionGenerator {
	return b.dependency(KindExpression).(*expressionGenerator)
}

func (b *base) constantExpression() *expressionGenerator {
	return b.dependency(KindConstantExpression).(*expressionGenerator)
}

func (b *base) variableDeclaration() *variableDeclarationGenerator {
	return b.dependency(KindVariableDeclaration).(*variableDeclarationGenerator)
}

func (b *base) parameterList() *parameterListGenerator {
	return b.dependency(KindParameterList).(*parameterListGenerator)
}

func (b *base) simpleStatement() *simpleStatementGenerator {
	return b.dependency(KindSimpleStatement).(*simpleStatementGenerator)
}

func (b *base) block() *blockGenerator {
	return b.dependency(KindBlock).(*blockGenerator)
}

func (b *base) natSpec() *natSpecGenerator {
	return b.dependency(KindNatSpec).(*natSpecGenerator)
}

func (b *base) functionDefinition() *functionDefinitionGenerator {
	return b.dependency(KindFunctionDefinition).(*functionDefinitionGenerator)
}

func (b *base) sourceUnit() *sourceUnitGenerator {
	return b.dependency(KindSourceUnit).(*sourceUnitGenerator)
}

// newGenerator is the single place generator instances are created.
func newGenerator(k Kind) generator {
	switch k {
	case KindIntegerType:
		return &integerTypeGenerator{}
	case KindBytesType:
		return &bytesTypeGenerator{}
	case KindBoolType:
		return &boolTypeGenerator{}
	case KindAddressType:
		return &addressTypeGenerator{}
	case KindUserDefinedType:
		return &userDefinedTypeGenerator{}
	case KindFunctionType:
		return &functionTypeGenerator{}
	case KindArrayType:
		return &arrayTypeGenerator{}
	case KindType:
		return &typeGenerator{}
	case KindLocation:
		return &locationGenerator{}
	case KindExpression:
		return &expressionGenerator{}
	case KindConstantExpression:
		return &expressionGenerator{constantOnly: true}
	case KindVariableDeclaration:
		return &variableDeclarationGenerator{}
	case KindParameterList:
		return &parameterListGenerator{}
	case KindSimpleStatement:
		return &simpleStatementGenerator{}
	case KindBlock:
		return &blockGenerator{}
	case KindNatSpec:
		return &natSpecGenerator{}
	case KindStateVariable:
		return &stateVariableGenerator{}
	case KindConstantVariable:
		return &constantVariableGenerator{}
	case KindEvent:
		return &eventGenerator{}
	case KindEnum:
		return &enumGenerator{}
	case KindFunctionDefinition:
		return &functionDefinitionGenerator{}
	case KindContractDefinition:
		return &contractDefinitionGenerator{}
	case KindPragma:
		return &pragmaGenerator{}
	case KindImport:
		return &importGenerator{}
	case KindSourceUnit:
		return &sourceUnitGenerator{}
	case KindTestCase:
		return &testCaseGenerator{}
	}
	panic(NewUnreachableError())
}

var kindNames = [kindCount]string{
	KindIntegerType:         "integer-type",
	KindBytesType:           "bytes-type",
	KindBoolType:            "bool-type",
	KindAddressType:         "address-type",
	KindUserDefinedType:     "user-defined-type",
	KindFunctionType:        "function-type",
	KindArrayType:           "array-type",
	KindType:                "type",
	KindLocation:            "location",
	KindExpression:          "expression",
	KindConstantExpression:  "constant-expression",
	KindVariableDeclaration: "variable-declaration",
	KindParameterList:       "parameter-list",
	KindSimpleStatement:     "simple-statement",
	KindBlock:               "block",
	KindNatSpec:             "natspec",
	KindStateVariable:       "state-variable",
	KindConstantVariable:    "constant-variable",
	KindEvent:               "event",
	KindEnum:                "enum",
	KindFunctionDefinition:  "function-definition",
	KindContractDefinition:  "contract-definition",
	KindPragma:              "pragma",
	KindImport:              "import",
	KindSourceUnit:          "source-unit",
	KindTestCase:            "test-case",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "kind(" + strconv.FormatUint(uint64(k), 10) + ")"
}
