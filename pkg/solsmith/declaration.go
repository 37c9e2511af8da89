package solsmith

import (
	"strconv"
	"strings"

	"github.com/OpenDotSo/solidity/pkg/render"
)

var stateVariableNames = []string{"sv1", "sv2", "sv3"}

type stateVariableGenerator struct {
	base
}

func (g *stateVariableGenerator) kind() Kind   { return KindStateVariable }
func (g *stateVariableGenerator) name() string { return "State variable generator" }
func (g *stateVariableGenerator) setup()       {}
func (g *stateVariableGenerator) reset()       {}

func (g *stateVariableGenerator) requires() []Kind {
	return []Kind{KindType, KindExpression, KindConstantExpression, KindNatSpec}
}

func (g *stateVariableGenerator) visit() string {
	r := g.rand()
	visibility := pickOneOf(r, []Visibility{VisibilityPublic, VisibilityInternal, VisibilityPrivate})

	var t solType
	constant, immutable := false, false
	switch r.pickIndex(3) {
	case 0:
		constant = true
		t = g.typeGenerator().elementary()
	case 1:
		immutable = true
		t = g.typeGenerator().elementary()
	default:
		t = g.typeGenerator().produce()
	}
	// constant and immutable apply to value types only.
	if t.reference {
		constant, immutable = false, false
	}

	ctx := render.Context{
		"natSpec":    "",
		"type":       t.text,
		"visibility": visibility.Keyword(),
		"constant":   constant,
		"immutable":  immutable,
		"name":       pickOneOf(r, stateVariableNames),
		"init":       constant || r.coinFlip(),
		"value":      "",
	}
	if visibility == VisibilityPublic {
		ctx["natSpec"] = g.natSpec().document(NatSpecPublicStateVariable, natSpecTarget{})
	}
	if constant {
		ctx["value"] = g.constantExpression().visit()
	} else if ctx["init"] == true {
		ctx["value"] = g.expression().visit()
	}
	return g.render(
		"<natSpec><type> <visibility><?constant> constant</constant><?immutable> immutable</immutable> <name><?init> = <value></init>;",
		ctx,
	)
}

// constantVariableGenerator declares file level constants.
type constantVariableGenerator struct {
	base
}

func (g *constantVariableGenerator) kind() Kind   { return KindConstantVariable }
func (g *constantVariableGenerator) name() string { return "Constant variable generator" }
func (g *constantVariableGenerator) setup()       {}
func (g *constantVariableGenerator) reset()       {}

func (g *constantVariableGenerator) requires() []Kind {
	return []Kind{
		KindIntegerType,
		KindBoolType,
		KindAddressType,
		KindBytesType,
		KindConstantExpression,
	}
}

func (g *constantVariableGenerator) valueType() string {
	switch g.rand().pickIndex(4) {
	case 0:
		return g.integerType().produce().text
	case 1:
		return g.boolType().produce().text
	case 2:
		return g.addressType().produce().text
	default:
		return g.bytesType().fixed().text
	}
}

func (g *constantVariableGenerator) visit() string {
	typ := g.valueType()
	// The initializer must not see the constant it initializes.
	value := g.constantExpression().visit()
	name := g.state().newConstantName()
	g.state().AddConstant(name)
	return g.render("<type> constant <name> = <value>;", render.Context{
		"type":  typ,
		"name":  name,
		"value": value,
	})
}

type eventGenerator struct {
	base
}

func (g *eventGenerator) kind() Kind   { return KindEvent }
func (g *eventGenerator) name() string { return "Event generator" }
func (g *eventGenerator) setup()       {}
func (g *eventGenerator) reset()       {}

func (g *eventGenerator) requires() []Kind {
	return []Kind{KindType, KindNatSpec}
}

func (g *eventGenerator) visit() string {
	r := g.rand()
	n := r.pickInRange(g.opts().MaxParameters+1) - 1
	params := make([]string, 0, n)
	names := make([]string, 0, n)
	indexed := 0
	for i := 0; i < n; i++ {
		name := "e" + strconv.Itoa(i)
		t := g.typeGenerator().elementary().text
		if indexed < 3 && r.coinFlip() {
			indexed++
			t += " indexed"
		}
		params = append(params, t+" "+name)
		names = append(names, name)
	}
	return g.render("<natSpec>event <name>(<params>)<?anonymous> anonymous</anonymous>;", render.Context{
		"natSpec":   g.natSpec().document(NatSpecEvent, natSpecTarget{Params: names}),
		"name":      g.state().newEventName(),
		"params":    strings.Join(params, ", "),
		"anonymous": r.oneIn(4),
	})
}

var functionNames = []string{"f0", "f1", "f2", "f3"}

// functionScope is where a function definition is placed.
type functionScope struct {
	free     bool
	abstract bool
	bases    []string
}

type functionDefinitionGenerator struct {
	base
	// fresh numbers names once the pool is exhausted for a signature.
	fresh int
}

func (g *functionDefinitionGenerator) kind() Kind   { return KindFunctionDefinition }
func (g *functionDefinitionGenerator) name() string { return "Function definition generator" }
func (g *functionDefinitionGenerator) setup()       {}

func (g *functionDefinitionGenerator) requires() []Kind {
	return []Kind{KindParameterList, KindBlock, KindNatSpec}
}

func (g *functionDefinitionGenerator) reset() {
	g.fresh = len(functionNames)
}

// visit emits a member function of a concrete contract without bases.
func (g *functionDefinitionGenerator) visit() string {
	return g.define(functionScope{})
}

func (g *functionDefinitionGenerator) freeFunction() string {
	return g.define(functionScope{free: true})
}

func (g *functionDefinitionGenerator) signature(scope functionScope) *FunctionSignature {
	r := g.rand()
	sig := &FunctionSignature{
		Name:        pickOneOf(r, functionNames),
		Inputs:      g.parameterList().params("p"),
		Outputs:     g.parameterList().params("r"),
		Inheritance: InheritanceNone,
		Visibility:  VisibilityInternal,
	}
	if scope.free {
		sig.Mutability = randomFreeFunctionMutability(r)
		return sig
	}
	sig.Mutability = randomMutability(r)
	sig.Visibility = Visibility(r.pickIndex(4))
	if sig.Mutability == MutabilityPayable &&
		(sig.Visibility == VisibilityInternal || sig.Visibility == VisibilityPrivate) {
		sig.Mutability = MutabilityNonPayable
	}
	sig.Inheritance = Inheritance(r.pickIndex(4))
	if len(scope.bases) == 0 && sig.Inheritance.override() {
		sig.Inheritance = InheritanceVirtual
	}
	return sig
}

// register claims a novel signature in the current unit, renaming the
// function until no structurally equal signature exists.
func (g *functionDefinitionGenerator) register(sig *FunctionSignature) {
	for attempt := 0; attempt < len(functionNames); attempt++ {
		if g.state().RegisterFunction(sig) {
			return
		}
		sig.Name = pickOneOf(g.rand(), functionNames)
	}
	for !g.state().RegisterFunction(sig) {
		sig.Name = "f" + strconv.Itoa(g.fresh)
		g.fresh++
	}
}

func (g *functionDefinitionGenerator) define(scope functionScope) string {
	r := g.rand()
	sig := g.signature(scope)
	g.register(sig)

	target := natSpecTarget{Returns: len(sig.Outputs)}
	for _, p := range sig.Inputs {
		target.Params = append(target.Params, p.Name)
	}
	if sig.Inheritance.override() && len(scope.bases) > 0 {
		target.InheritFrom = pickOneOf(r, scope.bases)
	}

	// Only virtual functions of abstract contracts may omit the body.
	definition := !(scope.abstract && sig.Inheritance.virtual() && r.coinFlip())

	ctx := render.Context{
		"natSpec":       g.natSpec().document(NatSpecFunction, target),
		"id":            sig.Name,
		"params":        joinParams(sig.Inputs),
		"hasVisibility": !scope.free,
		"visibility":    sig.Visibility.Keyword(),
		"hasMutability": sig.Mutability != MutabilityNonPayable,
		"mutability":    sig.Mutability.Keyword(),
		"virtual":       sig.Inheritance.virtual(),
		"override":      sig.Inheritance.override(),
		"return":        len(sig.Outputs) > 0,
		"returns":       joinParams(sig.Outputs),
		"definition":    definition,
		"body":          "",
	}
	if definition {
		ctx["body"] = g.block().visit()
	}
	return g.render(
		"<natSpec>function <id>(<params>)"+
			"<?hasVisibility> <visibility></hasVisibility>"+
			"<?hasMutability> <mutability></hasMutability>"+
			"<?virtual> virtual</virtual>"+
			"<?override> override</override>"+
			"<?return> returns (<returns>)</return>"+
			"<?definition> <body><!definition>;</definition>",
		ctx,
	)
}

type contractDefinitionGenerator struct {
	base
}

func (g *contractDefinitionGenerator) kind() Kind   { return KindContractDefinition }
func (g *contractDefinitionGenerator) name() string { return "Contract definition generator" }
func (g *contractDefinitionGenerator) setup()       {}
func (g *contractDefinitionGenerator) reset()       {}

func (g *contractDefinitionGenerator) requires() []Kind {
	return []Kind{
		KindStateVariable,
		KindFunctionDefinition,
		KindEvent,
		KindNatSpec,
	}
}

// bases draws an inheritance list from contracts declared earlier in the
// current unit.
func (g *contractDefinitionGenerator) bases() []string {
	r := g.rand()
	earlier := g.state().CurrentUnit().Contracts
	if len(earlier) == 0 || !r.oneIn(g.opts().InheritanceInvProb) {
		return nil
	}
	n := r.pickInRange(len(earlier))
	picked := make([]string, 0, n)
	seen := map[string]bool{}
	for len(picked) < n {
		name := pickOneOf(r, earlier)
		if seen[name] {
			continue
		}
		seen[name] = true
		picked = append(picked, name)
	}
	return picked
}

func (g *contractDefinitionGenerator) visit() string {
	r := g.rand()
	opts := g.opts()

	abstract := r.oneIn(opts.AbstractInvProb)
	bases := g.bases()
	name := g.state().newContractName()
	g.state().AddContract(name)

	var members []string
	for i := r.pickInRange(opts.MaxStateVariables+1) - 1; i > 0; i-- {
		members = append(members, g.dependency(KindStateVariable).visit())
	}
	if opts.Events {
		for i := r.pickInRange(opts.MaxEvents+1) - 1; i > 0; i-- {
			members = append(members, g.dependency(KindEvent).visit())
		}
	}
	scope := functionScope{abstract: abstract, bases: bases}
	for i := r.pickInRange(opts.MaxFunctions+1) - 1; i > 0; i-- {
		members = append(members, g.functionDefinition().define(scope))
	}

	body := ""
	if len(members) > 0 {
		body = "\n" + indent(strings.Join(members, "\n")) + "\n"
	}
	return g.render("<natSpec><?abstract>abstract </abstract>contract <name><?inherits> is <bases></inherits> {<body>}", render.Context{
		"natSpec":  g.natSpec().document(NatSpecContract, natSpecTarget{}),
		"abstract": abstract,
		"name":     name,
		"inherits": len(bases) > 0,
		"bases":    strings.Join(bases, ", "),
		"body":     body,
	})
}
