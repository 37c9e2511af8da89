package solsmith

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expressionTrace struct {
	kinds      []ExpressionKind
	nonLeaves  int
	maxNesting int
}

func traceExpressions(g *expressionGenerator) *expressionTrace {
	trace := &expressionTrace{}
	g.observe = func(kind ExpressionKind, nesting int) {
		trace.kinds = append(trace.kinds, kind)
		if !kind.isLeaf() {
			trace.nonLeaves++
			if nesting > trace.maxNesting {
				trace.maxNesting = nesting
			}
		}
	}
	return trace
}

func TestExpressionTerminates(t *testing.T) {

	t.Parallel()

	properties := gopter.NewProperties(nil)

	properties.Property("recursive productions stay within the depth bound", prop.ForAll(
		func(seed uint64, bound int) bool {
			opts := testOptions()
			opts.MaxExpressionDepth = bound
			g := newTestGraphWithUnit(t, opts, seed)
			expr := g.Lookup(KindExpression).(*expressionGenerator)
			for i := 0; i < 20; i++ {
				trace := traceExpressions(expr)
				text := expr.visit()
				if text == "" || trace.maxNesting > bound || trace.nonLeaves > bound {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

func TestConstantExpressionKinds(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 77)
	g.State().AddConstant("c0")

	expr := g.Lookup(KindConstantExpression).(*expressionGenerator)
	trace := traceExpressions(expr)
	for i := 0; i < 500; i++ {
		expr.visit()
	}

	require.NotEmpty(t, trace.kinds)
	for _, kind := range trace.kinds {
		assert.NotContains(t, notConstant, kind)
		assert.NotEqual(t, ExpressionCall, kind)
		assert.NotEqual(t, ExpressionAssignment, kind)
		assert.NotEqual(t, ExpressionNew, kind)
	}
}

func TestConstantExpressionText(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 78)
	expr := g.Lookup(KindConstantExpression).(*expressionGenerator)
	for i := 0; i < 300; i++ {
		text := expr.visit()
		assert.NotContains(t, text, "++", text)
		assert.NotContains(t, text, "new ", text)
		assert.NotContains(t, text, "delete ", text)
		assert.NotContains(t, text, "payable(", text)
	}
}

func TestDisabledExpressionKinds(t *testing.T) {

	t.Parallel()

	opts := testOptions()
	opts.DisabledExpressions = []string{"new", "call", "call-options"}
	g := newTestGraphWithUnit(t, opts, 5)

	expr := g.Lookup(KindExpression).(*expressionGenerator)
	trace := traceExpressions(expr)
	for i := 0; i < 500; i++ {
		expr.visit()
	}
	for _, kind := range trace.kinds {
		assert.NotContains(t, []ExpressionKind{ExpressionNew, ExpressionCall, ExpressionCallOptions}, kind)
	}
}

func TestExpressionCoversAllKinds(t *testing.T) {

	t.Parallel()

	g := newTestGraphWithUnit(t, testOptions(), 2)
	expr := g.Lookup(KindExpression).(*expressionGenerator)
	trace := traceExpressions(expr)
	for i := 0; i < 3000; i++ {
		expr.visit()
	}

	seen := map[ExpressionKind]bool{}
	for _, kind := range trace.kinds {
		seen[kind] = true
	}
	assert.Len(t, seen, int(expressionKindCount))
}

func TestExpressionLiterals(t *testing.T) {

	t.Parallel()

	g := newTestGraph(t, testOptions(), 4)
	expr := g.Lookup(KindExpression).(*expressionGenerator)
	denominated := 0
	for i := 0; i < 600; i++ {
		lit := expr.literal()
		switch {
		case lit == "true" || lit == "false":
		case strings.HasPrefix(lit, `hex"`):
			inner := strings.TrimSuffix(strings.TrimPrefix(lit, `hex"`), `"`)
			assert.Zero(t, len(inner)%2, lit)
			assert.LessOrEqual(t, len(inner), 64)
		case strings.HasPrefix(lit, `"`):
			assert.LessOrEqual(t, len(lit), 12, lit)
			assert.NotContains(t, strings.Trim(lit, `"`), `"`)
		case strings.HasPrefix(lit, "0x"):
			assert.NotContains(t, lit, " ", "hex literal with a denomination: %s", lit)
		default:
			assert.NotEqual(t, byte('0'), lit[0], lit)
			if number, unit, found := strings.Cut(lit, " "); found {
				assert.Regexp(t, `^[1-9][0-9]*$`, number)
				assert.Contains(t, denominations, unit)
				denominated++
			}
		}
	}
	assert.Positive(t, denominated)
}

func TestParseExpressionKind(t *testing.T) {

	t.Parallel()

	for k := ExpressionKind(0); k < expressionKindCount; k++ {
		parsed, err := ParseExpressionKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseExpressionKind("asignment")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "assignment"?`)

	_, err = ParseExpressionKind("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}
