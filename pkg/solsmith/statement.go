package solsmith

import (
	"strconv"
	"strings"

	"github.com/OpenDotSo/solidity/pkg/render"
)

type Location int

const (
	LocationStack Location = iota
	LocationMemory
	LocationStorage
	LocationCalldata
)

// Keyword is empty for the stack, which has no qualifier.
func (l Location) Keyword() string {
	switch l {
	case LocationStack:
		return ""
	case LocationMemory:
		return "memory"
	case LocationStorage:
		return "storage"
	case LocationCalldata:
		return "calldata"
	}
	panic(NewUnreachableError())
}

// locationGenerator picks a data location applicable to a type: value types
// live on the stack, parameters in memory or calldata, locals in memory or
// storage.
type locationGenerator struct {
	base
}

func (g *locationGenerator) kind() Kind       { return KindLocation }
func (g *locationGenerator) name() string     { return "Location generator" }
func (g *locationGenerator) requires() []Kind { return nil }
func (g *locationGenerator) setup()           {}
func (g *locationGenerator) reset()           {}

func (g *locationGenerator) forType(t solType, parameter bool) Location {
	if !t.reference {
		return LocationStack
	}
	if parameter {
		return pickOneOf(g.rand(), []Location{LocationMemory, LocationCalldata})
	}
	return pickOneOf(g.rand(), []Location{LocationMemory, LocationStorage})
}

func (g *locationGenerator) visit() string {
	return pickOneOf(g.rand(), []Location{LocationMemory, LocationStorage, LocationCalldata}).Keyword()
}

// variableDeclarationGenerator renders "<type> [location] <name>".
type variableDeclarationGenerator struct {
	base
}

func (g *variableDeclarationGenerator) kind() Kind   { return KindVariableDeclaration }
func (g *variableDeclarationGenerator) name() string { return "Variable declaration generator" }
func (g *variableDeclarationGenerator) setup()       {}
func (g *variableDeclarationGenerator) reset()       {}

func (g *variableDeclarationGenerator) requires() []Kind {
	return []Kind{KindType, KindLocation}
}

// typed returns the type of a declaration including its location keyword.
func (g *variableDeclarationGenerator) typed(parameter bool) string {
	t := g.typeGenerator().produce()
	loc := g.location().forType(t, parameter)
	if loc == LocationStack {
		return t.text
	}
	return t.text + " " + loc.Keyword()
}

func (g *variableDeclarationGenerator) declare(name string, parameter bool) string {
	return g.render("<type> <name>", render.Context{
		"type": g.typed(parameter),
		"name": name,
	})
}

func (g *variableDeclarationGenerator) visit() string {
	return g.declare(pickOneOf(g.rand(), localIdentifiers[:4]), false)
}

type parameterListGenerator struct {
	base
}

func (g *parameterListGenerator) kind() Kind   { return KindParameterList }
func (g *parameterListGenerator) name() string { return "Parameter list generator" }
func (g *parameterListGenerator) setup()       {}
func (g *parameterListGenerator) reset()       {}

func (g *parameterListGenerator) requires() []Kind {
	return []Kind{KindVariableDeclaration}
}

// params draws between 0 and MaxParameters parameters named prefix0,
// prefix1, ...
func (g *parameterListGenerator) params(prefix string) []Param {
	n := g.rand().pickInRange(g.opts().MaxParameters+1) - 1
	params := make([]Param, 0, n)
	for i := 0; i < n; i++ {
		params = append(params, Param{
			Type: g.variableDeclaration().typed(true),
			Name: prefix + strconv.Itoa(i),
		})
	}
	return params
}

func joinParams(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Type+" "+p.Name)
	}
	return strings.Join(parts, ", ")
}

func (g *parameterListGenerator) visit() string {
	return joinParams(g.params("p"))
}

// simpleStatementGenerator emits an expression statement, a variable
// declaration, or a tuple destructuring declaration.
type simpleStatementGenerator struct {
	base
}

func (g *simpleStatementGenerator) kind() Kind   { return KindSimpleStatement }
func (g *simpleStatementGenerator) name() string { return "Simple statement generator" }
func (g *simpleStatementGenerator) setup()       {}
func (g *simpleStatementGenerator) reset()       {}

func (g *simpleStatementGenerator) requires() []Kind {
	return []Kind{KindVariableDeclaration, KindExpression}
}

func (g *simpleStatementGenerator) visit() string {
	r := g.rand()
	switch r.pickIndex(3) {
	case 0:
		return g.render("<expr>;", render.Context{
			"expr": g.expression().visit(),
		})
	case 1:
		decl := g.variableDeclaration().visit()
		init := r.coinFlip()
		ctx := render.Context{
			"decl":  decl,
			"init":  init,
			"value": "",
		}
		if init {
			ctx["value"] = g.expression().visit()
		}
		return g.render("<decl><?init> = <value></init>;", ctx)
	default:
		n := 2
		if limit := g.opts().MaxTupleElements; limit > 2 {
			n = r.pickInRange(limit-1) + 1
		}
		decls := make([]string, 0, n)
		for i := 0; i < n; i++ {
			if i > 0 && r.oneIn(4) {
				// Tuple declarations may leave components empty.
				decls = append(decls, "")
				continue
			}
			decls = append(decls, g.variableDeclaration().visit())
		}
		return g.render("(<decls>) = <value>;", render.Context{
			"decls": strings.Join(decls, ", "),
			"value": g.expression().visit(),
		})
	}
}

// blockGenerator nests blocks up to MaxBlockDepth.
type blockGenerator struct {
	base
	depth int
}

func (g *blockGenerator) kind() Kind   { return KindBlock }
func (g *blockGenerator) name() string { return "Block generator" }
func (g *blockGenerator) setup()       {}

func (g *blockGenerator) requires() []Kind {
	return []Kind{KindSimpleStatement}
}

func (g *blockGenerator) reset() {
	g.depth = 0
}

func (g *blockGenerator) visit() string {
	g.reset()
	return g.block()
}

func (g *blockGenerator) block() string {
	g.depth++
	defer func() { g.depth-- }()

	r := g.rand()
	n := r.pickInRange(g.opts().MaxBlockStatements+1) - 1
	if n == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < n; i++ {
		var stmt string
		if g.depth < g.opts().MaxBlockDepth && r.oneIn(4) {
			stmt = g.block()
		} else {
			stmt = g.simpleStatement().visit()
		}
		b.WriteString(indent(stmt))
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

// indent prefixes every non-empty line with a tab.
func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "\t" + line
		}
	}
	return strings.Join(lines, "\n")
}
