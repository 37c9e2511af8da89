package solsmith

import (
	"strconv"
	"strings"

	"github.com/OpenDotSo/solidity/pkg/render"
)

const (
	versionPragma = "pragma solidity >= 0.0.0;"
	sourceHeader  = "==== Source: "
)

var experimentalPragmas = []string{
	"pragma experimental SMTChecker;",
	"pragma experimental ABIEncoderV2;",
}

type pragmaGenerator struct {
	base
}

func (g *pragmaGenerator) kind() Kind       { return KindPragma }
func (g *pragmaGenerator) name() string     { return "Pragma generator" }
func (g *pragmaGenerator) requires() []Kind { return nil }
func (g *pragmaGenerator) setup()           {}
func (g *pragmaGenerator) reset()           {}

func (g *pragmaGenerator) visit() string {
	experimental := g.rand().coinFlip()
	ctx := render.Context{
		"version":      versionPragma,
		"experimental": experimental,
		"feature":      "",
	}
	if experimental {
		ctx["feature"] = pickOneOf(g.rand(), experimentalPragmas)
	}
	return g.render("<version><?experimental>\n<feature></experimental>", ctx)
}

type importForm int

const (
	importPlain importForm = iota
	importStar
	importSelective
)

// importGenerator emits one import statement of the current unit and
// updates the unit's exports with whatever the import binds.
type importGenerator struct {
	base
	aliases int
}

func (g *importGenerator) kind() Kind       { return KindImport }
func (g *importGenerator) name() string     { return "Import generator" }
func (g *importGenerator) requires() []Kind { return nil }
func (g *importGenerator) setup()           {}

func (g *importGenerator) reset() {
	g.aliases = 0
}

// target picks the imported unit. Self imports are rare but legal.
func (g *importGenerator) target() *SourceUnitState {
	st := g.state()
	if !g.rand().oneIn(g.opts().SelfImportInvProb) {
		if path, ok := st.RandomOtherPath(g.rand()); ok {
			unit, _ := st.Unit(path)
			return unit
		}
	}
	return st.CurrentUnit()
}

// freshAlias returns a name bound by neither the target nor the current
// unit.
func (g *importGenerator) freshAlias(target *SourceUnitState) string {
	current := g.state().CurrentUnit()
	for {
		alias := "I" + strconv.Itoa(g.aliases)
		g.aliases++
		if !target.Exports.HasSymbol(alias) && !current.Exports.HasSymbol(alias) {
			return alias
		}
	}
}

func (g *importGenerator) visit() string {
	r := g.rand()
	target := g.target()
	// Snapshot, a self import must not observe its own bindings.
	exports := ExportedSymbols{
		Symbols: append([]string(nil), target.Exports.Symbols...),
		Types:   append([]string(nil), target.Exports.Types...),
	}
	rel := ImportRelation{Path: target.Path}

	form := importForm(r.pickIndex(3))
	if form == importSelective && len(exports.Symbols) == 0 {
		form = importPlain
	}

	var text string
	switch form {
	case importPlain:
		if r.coinFlip() {
			rel.UnitAlias = g.freshAlias(target)
			g.state().ExportSymbol(rel.UnitAlias)
		} else {
			g.state().ExportSymbols(exports)
		}
		text = g.render(`import "<path>"<?alias> as <name></alias>;`, render.Context{
			"path":  rel.Path,
			"alias": rel.HasUnitAlias(),
			"name":  rel.UnitAlias,
		})

	case importStar:
		rel.UnitAlias = g.freshAlias(target)
		g.state().ExportSymbol(rel.UnitAlias)
		text = g.render(`import * as <name> from "<path>";`, render.Context{
			"name": rel.UnitAlias,
			"path": rel.Path,
		})

	case importSelective:
		n := r.pickInRange(min(len(exports.Symbols), 3))
		seen := map[string]bool{}
		var items []string
		for len(rel.Symbols) < n {
			symbol := pickOneOf(r, exports.Symbols)
			if seen[symbol] {
				continue
			}
			seen[symbol] = true
			rel.Symbols = append(rel.Symbols, symbol)

			bound := symbol
			if r.coinFlip() {
				bound = g.freshAlias(target)
				rel.SymbolAliases = append(rel.SymbolAliases, SymbolAlias{Symbol: symbol, Alias: bound})
				items = append(items, symbol+" as "+bound)
			} else {
				items = append(items, symbol)
			}
			if exports.HasType(symbol) {
				g.state().ExportType(bound)
			} else {
				g.state().ExportSymbol(bound)
			}
		}
		text = g.render(`import {<items>} from "<path>";`, render.Context{
			"items": strings.Join(items, ", "),
			"path":  rel.Path,
		})

	default:
		panic(NewUnreachableError())
	}

	assertf(!(rel.HasUnitAlias() && rel.HasSymbolAliases()), "import of %q has both alias forms", rel.Path)
	g.state().AddImport(rel)
	return text
}

// enumGenerator reuses the names E0 ... E3, collisions included.
type enumGenerator struct {
	base
}

func (g *enumGenerator) kind() Kind       { return KindEnum }
func (g *enumGenerator) name() string     { return "Enum generator" }
func (g *enumGenerator) requires() []Kind { return nil }
func (g *enumGenerator) setup()           {}
func (g *enumGenerator) reset()           {}

func (g *enumGenerator) visit() string {
	r := g.rand()
	name := "E" + strconv.Itoa(r.pickIndex(4))
	n := r.pickInRange(g.opts().MaxEnumMembers)
	members := make([]string, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, "M"+strconv.Itoa(i))
	}
	g.state().ExportType(name)
	return g.render("enum <name> { <members> }", render.Context{
		"name":    name,
		"members": strings.Join(members, ", "),
	})
}

// sourceUnitGenerator emits one file. The unit is registered before its
// body so its own path is a valid import target.
type sourceUnitGenerator struct {
	base
}

func (g *sourceUnitGenerator) kind() Kind   { return KindSourceUnit }
func (g *sourceUnitGenerator) name() string { return "Source unit generator" }
func (g *sourceUnitGenerator) setup()       {}
func (g *sourceUnitGenerator) reset()       {}

func (g *sourceUnitGenerator) requires() []Kind {
	return []Kind{
		KindPragma,
		KindImport,
		KindEnum,
		KindConstantVariable,
		KindFunctionDefinition,
		KindContractDefinition,
	}
}

func (g *sourceUnitGenerator) visit() string {
	r := g.rand()
	opts := g.opts()
	st := g.state()

	path := "su" + strconv.Itoa(st.Len()) + ".sol"
	st.BeginSourceUnit(path)
	g.graph.log.Debug().Str("path", path).Msg("begin source unit")

	parts := []string{g.dependency(KindPragma).visit()}
	for i := r.pickInRange(opts.MaxImportsPerUnit+1) - 1; i > 0; i-- {
		parts = append(parts, g.dependency(KindImport).visit())
	}
	for i := r.pickInRange(opts.MaxElementsPerUnit) - 1; i > 0; i-- {
		switch el := g.randomDependency(KindPragma, KindImport, KindContractDefinition); el.kind() {
		case KindFunctionDefinition:
			parts = append(parts, g.functionDefinition().freeFunction())
		default:
			parts = append(parts, el.visit())
		}
	}
	for i := r.pickInRange(opts.MaxContractsPerUnit); i > 0; i-- {
		parts = append(parts, g.dependency(KindContractDefinition).visit())
	}

	unit := st.CurrentUnit()
	g.graph.log.Debug().
		Str("path", path).
		Int("functions", len(unit.Functions)).
		Int("imports", len(unit.Imports)).
		Int("contracts", len(unit.Contracts)).
		Msg("end source unit")
	return strings.Join(parts, "\n") + "\n"
}

// testCaseGenerator assembles the whole multi-file program.
type testCaseGenerator struct {
	base
}

func (g *testCaseGenerator) kind() Kind       { return KindTestCase }
func (g *testCaseGenerator) name() string     { return "Test case generator" }
func (g *testCaseGenerator) requires() []Kind { return []Kind{KindSourceUnit} }
func (g *testCaseGenerator) setup()           {}
func (g *testCaseGenerator) reset()           {}

func (g *testCaseGenerator) visit() string {
	var b strings.Builder
	for i := g.rand().pickInRange(g.opts().MaxSourceUnits); i > 0; i-- {
		code := g.sourceUnit().visit()
		b.WriteString(g.render("\n<header><path> ====\n<code>", render.Context{
			"header": sourceHeader,
			"path":   g.state().CurrentPath(),
			"code":   code,
		}))
	}
	return b.String()
}
