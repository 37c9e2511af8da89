package solsmith

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeFunctions(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 41)
	fn := g.Lookup(KindFunctionDefinition).(*functionDefinitionGenerator)
	for i := 0; i < 100; i++ {
		text := fn.freeFunction()
		assert.False(t, strings.HasSuffix(text, ";"), "free function without body:\n%s", text)
	}
	for _, sig := range g.State().CurrentUnit().Functions {
		assert.NotEqual(t, MutabilityPayable, sig.Mutability)
		assert.Equal(t, InheritanceNone, sig.Inheritance)
	}
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	return lines[len(lines)-1]
}

func TestFunctionRenamedOnDuplicate(t *testing.T) {

	t.Parallel()

	opts := testOptions()
	opts.MaxParameters = 1
	g := newTestGraphWithUnit(t, opts, 43)
	fn := g.Lookup(KindFunctionDefinition).(*functionDefinitionGenerator)
	for i := 0; i < 200; i++ {
		fn.freeFunction()
	}

	functions := g.State().CurrentUnit().Functions
	require.Len(t, functions, 200)
	fresh := 0
	for i, a := range functions {
		for _, b := range functions[i+1:] {
			require.False(t, a.Equal(b), "duplicate signature %+v", a)
		}
		if !containsString(functionNames, a.Name) {
			fresh++
		}
	}
	assert.Positive(t, fresh)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func TestContractDefinition(t *testing.T) {

	t.Parallel()

	opts := testOptions()
	opts.InheritanceInvProb = 1
	g := newTestGraphWithUnit(t, opts, 47)
	contract := g.Lookup(KindContractDefinition)

	first := contract.visit()
	assert.Regexp(t, regexp.MustCompile(`(?m)^(abstract )?contract C0 \{`), first)

	second := contract.visit()
	assert.Regexp(t, regexp.MustCompile(`(?m)^(abstract )?contract C1 is C0 \{`), second)

	unit := g.State().CurrentUnit()
	assert.Equal(t, []string{"C0", "C1"}, unit.Contracts)
	assert.True(t, unit.Exports.HasType("C1"))
}

func TestBodilessFunctionsOnlyInAbstractContracts(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 53)
	fn := g.Lookup(KindFunctionDefinition).(*functionDefinitionGenerator)
	for i := 0; i < 100; i++ {
		text := fn.define(functionScope{})
		assert.False(t, strings.HasSuffix(text, ";"), text)
	}

	bodiless := 0
	for i := 0; i < 200; i++ {
		text := fn.define(functionScope{abstract: true})
		if strings.HasSuffix(text, ";") {
			bodiless++
			assert.Contains(t, lastLine(text), " virtual", text)
		}
	}
	assert.Positive(t, bodiless)
}

func TestOverrideNeedsBases(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 59)
	fn := g.Lookup(KindFunctionDefinition).(*functionDefinitionGenerator)
	for i := 0; i < 100; i++ {
		fn.define(functionScope{})
	}
	for _, sig := range g.State().CurrentUnit().Functions {
		assert.False(t, sig.Inheritance.override(), "%+v", sig)
	}
}

func TestConstantVariable(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 61)
	pattern := regexp.MustCompile(`^(\w+( payable)?) constant (c\d+) = .+;$`)
	for i := 0; i < 50; i++ {
		text := g.Visit(KindConstantVariable)
		m := pattern.FindStringSubmatch(text)
		require.NotNil(t, m, text)
		value := strings.SplitN(text, " = ", 2)[1]
		self := regexp.MustCompile(`\b` + m[3] + `\b`)
		assert.False(t, self.MatchString(value), "initializer refers to itself: %s", text)
	}
	unit := g.State().CurrentUnit()
	assert.Len(t, unit.Constants, 50)
	assert.True(t, unit.Exports.HasSymbol("c0"))
}

func TestStateVariable(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 67)
	for i := 0; i < 100; i++ {
		text := g.Visit(KindStateVariable)
		decl := lastLine(text)
		require.True(t, strings.HasSuffix(decl, ";"), decl)
		assert.Regexp(t, `\s(sv1|sv2|sv3)( = |;)`, decl)
		if strings.Contains(decl, " constant ") {
			assert.Contains(t, decl, " = ")
		}
		if strings.HasPrefix(text, "///") {
			assert.Contains(t, decl, " public")
		}
	}
}

func TestEvent(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 71)
	for i := 0; i < 50; i++ {
		decl := lastLine(g.Visit(KindEvent))
		require.True(t, strings.HasPrefix(decl, "event Ev"), decl)
		assert.LessOrEqual(t, strings.Count(decl, " indexed"), 3)
	}
}
