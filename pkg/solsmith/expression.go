package solsmith

import (
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/OpenDotSo/solidity/pkg/render"
)

// ExpressionKind is one production of the expression grammar.
type ExpressionKind uint

const (
	ExpressionIndexAccess ExpressionKind = iota
	ExpressionSliceAccess
	ExpressionMemberAccess
	ExpressionCallOptions
	ExpressionCall
	ExpressionPayableConversion
	ExpressionMetaType
	ExpressionUnaryPrefix
	ExpressionUnarySuffix
	ExpressionExponent
	ExpressionMulDivMod
	ExpressionAddSub
	ExpressionShift
	ExpressionBitAnd
	ExpressionBitXor
	ExpressionBitOr
	ExpressionOrderComparison
	ExpressionEqualityComparison
	ExpressionLogicalAnd
	ExpressionLogicalOr
	ExpressionConditional
	ExpressionAssignment
	ExpressionNew
	ExpressionTuple
	ExpressionInlineArray
	ExpressionIdentifier
	ExpressionLiteral
	ExpressionElementaryTypeName
	ExpressionUserDefinedTypeName
	expressionKindCount
)

var expressionKindNames = [expressionKindCount]string{
	ExpressionIndexAccess:         "index-access",
	ExpressionSliceAccess:         "slice-access",
	ExpressionMemberAccess:        "member-access",
	ExpressionCallOptions:         "call-options",
	ExpressionCall:                "call",
	ExpressionPayableConversion:   "payable-conversion",
	ExpressionMetaType:            "meta-type",
	ExpressionUnaryPrefix:         "unary-prefix",
	ExpressionUnarySuffix:         "unary-suffix",
	ExpressionExponent:            "exponent",
	ExpressionMulDivMod:           "mul-div-mod",
	ExpressionAddSub:              "add-sub",
	ExpressionShift:               "shift",
	ExpressionBitAnd:              "bit-and",
	ExpressionBitXor:              "bit-xor",
	ExpressionBitOr:               "bit-or",
	ExpressionOrderComparison:     "order-comparison",
	ExpressionEqualityComparison:  "equality-comparison",
	ExpressionLogicalAnd:          "logical-and",
	ExpressionLogicalOr:           "logical-or",
	ExpressionConditional:         "conditional",
	ExpressionAssignment:          "assignment",
	ExpressionNew:                 "new",
	ExpressionTuple:               "tuple",
	ExpressionInlineArray:         "inline-array",
	ExpressionIdentifier:          "identifier",
	ExpressionLiteral:             "literal",
	ExpressionElementaryTypeName:  "elementary-type-name",
	ExpressionUserDefinedTypeName: "user-defined-type-name",
}

func (k ExpressionKind) String() string {
	if k < expressionKindCount {
		return expressionKindNames[k]
	}
	return "expression(" + strconv.FormatUint(uint64(k), 10) + ")"
}

func (k ExpressionKind) isLeaf() bool {
	switch k {
	case ExpressionIdentifier,
		ExpressionLiteral,
		ExpressionElementaryTypeName,
		ExpressionUserDefinedTypeName:
		return true
	}
	return false
}

// notConstant lists the kinds that can never appear in a compile time
// constant initializer.
var notConstant = []ExpressionKind{
	ExpressionIndexAccess,
	ExpressionSliceAccess,
	ExpressionMemberAccess,
	ExpressionCallOptions,
	ExpressionCall,
	ExpressionPayableConversion,
	ExpressionMetaType,
	ExpressionUnarySuffix,
	ExpressionAssignment,
	ExpressionNew,
	ExpressionUserDefinedTypeName,
}

var (
	binaryOperators = map[ExpressionKind][]string{
		ExpressionExponent:           {"**"},
		ExpressionMulDivMod:          {"*", "/", "%"},
		ExpressionAddSub:             {"+", "-"},
		ExpressionShift:              {"<<", ">>", ">>>"},
		ExpressionBitAnd:             {"&"},
		ExpressionBitXor:             {"^"},
		ExpressionBitOr:              {"|"},
		ExpressionOrderComparison:    {"<", ">", "<=", ">="},
		ExpressionEqualityComparison: {"==", "!="},
		ExpressionLogicalAnd:         {"&&"},
		ExpressionLogicalOr:          {"||"},
	}
	assignmentOperators = []string{"=", "|=", "^=", "&=", "<<=", ">>=", ">>>=", "+=", "-=", "*=", "/=", "%="}
	prefixOperators     = []string{"!", "~", "-", "++", "--", "delete "}
	constPrefixOps      = []string{"!", "~", "-"}
	suffixOperators     = []string{"++", "--"}
	memberNames         = []string{"length", "balance", "selector", "code", "codehash", "push", "pop", "value"}
	localIdentifiers    = []string{"v1", "v2", "v3", "v4", "sv1", "sv2", "sv3"}
)

// expressionGenerator serves both KindExpression and, with constantOnly
// set, KindConstantExpression.
//
// count is incremented on every recursive call and reset by visit. Once it
// exceeds MaxExpressionDepth only leaf kinds remain eligible, so every
// expression terminates.
type expressionGenerator struct {
	base
	constantOnly bool

	eligible *bitset.BitSet
	leaves   *bitset.BitSet

	count   int
	nesting int

	// observe, when set, sees every produced kind with its nesting level.
	observe func(kind ExpressionKind, nesting int)
}

func (g *expressionGenerator) kind() Kind {
	if g.constantOnly {
		return KindConstantExpression
	}
	return KindExpression
}

func (g *expressionGenerator) name() string {
	if g.constantOnly {
		return "Constant expression generator"
	}
	return "Expression generator"
}

func (g *expressionGenerator) requires() []Kind {
	return []Kind{
		KindType,
		KindIntegerType,
		KindBytesType,
		KindBoolType,
		KindAddressType,
		KindUserDefinedType,
	}
}

func (g *expressionGenerator) setup() {
	n := uint(expressionKindCount)
	g.eligible = bitset.New(n)
	g.leaves = bitset.New(n)
	for k := ExpressionKind(0); k < expressionKindCount; k++ {
		g.eligible.Set(uint(k))
		if k.isLeaf() {
			g.leaves.Set(uint(k))
		}
	}
	if g.constantOnly {
		for _, k := range notConstant {
			g.eligible.Clear(uint(k))
			g.leaves.Clear(uint(k))
		}
	}
	for _, name := range g.opts().DisabledExpressions {
		k, err := ParseExpressionKind(name)
		assertf(err == nil, "unvalidated expression kind %q", name)
		if !k.isLeaf() {
			g.eligible.Clear(uint(k))
		}
	}
	assertf(g.leaves.Count() > 0, "%s has no leaf kinds", g.name())
}

func (g *expressionGenerator) reset() {
	g.count = 0
	g.nesting = 0
}

func (g *expressionGenerator) visit() string {
	g.reset()
	return g.expression()
}

func (g *expressionGenerator) pickKind() ExpressionKind {
	candidates := g.eligible
	if g.count > g.opts().MaxExpressionDepth {
		candidates = g.leaves
	}
	i, ok := nthSet(candidates, g.rand().pickIndex(nonEmptyCount(candidates)))
	assertf(ok, "no expression kind eligible")
	return ExpressionKind(i)
}

func (g *expressionGenerator) expression() string {
	g.count++
	g.nesting++
	defer func() { g.nesting-- }()

	k := g.pickKind()
	if g.observe != nil {
		g.observe(k, g.nesting)
	}
	return g.produce(k)
}

func (g *expressionGenerator) list(max int) string {
	n := g.rand().pickInRange(max)
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, g.expression())
	}
	return strings.Join(items, ", ")
}

func (g *expressionGenerator) optionalList(max int) string {
	if g.rand().coinFlip() {
		return ""
	}
	return g.list(max)
}

func (g *expressionGenerator) binary(op string) string {
	return g.render("(<lhs>) <op> (<rhs>)", render.Context{
		"lhs": g.expression(),
		"op":  op,
		"rhs": g.expression(),
	})
}

func (g *expressionGenerator) produce(k ExpressionKind) string {
	r := g.rand()
	switch k {
	case ExpressionIndexAccess:
		return g.render("(<base>)[<index>]", render.Context{
			"base":  g.expression(),
			"index": g.expression(),
		})

	case ExpressionSliceAccess:
		start, end := r.coinFlip(), r.coinFlip()
		ctx := render.Context{
			"base":     g.expression(),
			"hasStart": start,
			"hasEnd":   end,
			"start":    "",
			"end":      "",
		}
		if start {
			ctx["start"] = g.expression()
		}
		if end {
			ctx["end"] = g.expression()
		}
		return g.render("(<base>)[<?hasStart><start></hasStart>:<?hasEnd><end></hasEnd>]", ctx)

	case ExpressionMemberAccess:
		return g.render("(<base>).<member>", render.Context{
			"base":   g.expression(),
			"member": pickOneOf(r, memberNames),
		})

	case ExpressionCallOptions:
		value, gas := r.coinFlip(), r.coinFlip()
		if !value && !gas {
			value = true
		}
		ctx := render.Context{
			"callee":   g.expression(),
			"hasValue": value,
			"hasGas":   gas,
			"both":     value && gas,
			"value":    "",
			"gas":      "",
		}
		if value {
			ctx["value"] = g.expression()
		}
		if gas {
			ctx["gas"] = g.expression()
		}
		ctx["args"] = g.optionalList(g.opts().MaxParameters)
		return g.render(
			"(<callee>){<?hasValue>value: <value></hasValue><?both>, </both><?hasGas>gas: <gas></hasGas>}(<args>)",
			ctx,
		)

	case ExpressionCall:
		return g.render("(<callee>)(<args>)", render.Context{
			"callee": g.expression(),
			"args":   g.optionalList(g.opts().MaxParameters),
		})

	case ExpressionPayableConversion:
		return g.render("payable(<expr>)", render.Context{
			"expr": g.expression(),
		})

	case ExpressionMetaType:
		return g.render("type(<type>)", render.Context{
			"type": g.typeGenerator().elementary().text,
		})

	case ExpressionUnaryPrefix:
		ops := prefixOperators
		if g.constantOnly {
			ops = constPrefixOps
		}
		return g.render("<op>(<expr>)", render.Context{
			"op":   pickOneOf(r, ops),
			"expr": g.expression(),
		})

	case ExpressionUnarySuffix:
		return g.render("(<expr>)<op>", render.Context{
			"expr": g.expression(),
			"op":   pickOneOf(r, suffixOperators),
		})

	case ExpressionExponent,
		ExpressionMulDivMod,
		ExpressionAddSub,
		ExpressionShift,
		ExpressionBitAnd,
		ExpressionBitXor,
		ExpressionBitOr,
		ExpressionOrderComparison,
		ExpressionEqualityComparison,
		ExpressionLogicalAnd,
		ExpressionLogicalOr:
		return g.binary(pickOneOf(r, binaryOperators[k]))

	case ExpressionConditional:
		return g.render("(<cond>) ? (<then>) : (<else>)", render.Context{
			"cond": g.expression(),
			"then": g.expression(),
			"else": g.expression(),
		})

	case ExpressionAssignment:
		return g.binary(pickOneOf(r, assignmentOperators))

	case ExpressionNew:
		return g.render("new <type>(<args>)", render.Context{
			"type": g.newableType(),
			"args": g.optionalList(g.opts().MaxParameters),
		})

	case ExpressionTuple:
		return g.render("(<items>)", render.Context{
			"items": g.list(g.opts().MaxTupleElements),
		})

	case ExpressionInlineArray:
		return g.render("[<items>]", render.Context{
			"items": g.list(g.opts().MaxInlineArrayElements),
		})

	case ExpressionIdentifier:
		return g.identifier()

	case ExpressionLiteral:
		return g.literal()

	case ExpressionElementaryTypeName:
		return g.typeGenerator().elementary().text

	case ExpressionUserDefinedTypeName:
		return g.userDefinedType().produce().text
	}
	panic(NewUnreachableError())
}

// newableType is a dynamic array or, when one is visible, a contract.
func (g *expressionGenerator) newableType() string {
	if g.rand().coinFlip() {
		return g.userDefinedType().produce().text
	}
	return g.typeGenerator().elementary().text + "[]"
}

// identifier draws from the local pool and the names visible in the current
// unit. In constant mode only declared constants qualify; without any, a
// literal is used instead.
func (g *expressionGenerator) identifier() string {
	r := g.rand()
	hasUnit := !g.state().Empty()
	if g.constantOnly {
		if hasUnit {
			if constants := g.state().CurrentUnit().Constants; len(constants) > 0 {
				return pickOneOf(r, constants)
			}
		}
		return g.literal()
	}
	if hasUnit && r.coinFlip() {
		if name, ok := g.state().CurrentUnit().Exports.RandomSymbol(r); ok {
			return name
		}
	}
	return pickOneOf(r, localIdentifiers)
}

var denominations = []string{
	"wei", "gwei", "ether",
	"seconds", "minutes", "hours", "days", "weeks",
}

func (g *expressionGenerator) literal() string {
	r := g.rand()
	opts := g.opts()
	switch r.pickIndex(5) {
	case 0:
		if r.coinFlip() {
			return "true"
		}
		return "false"
	case 1:
		kind, text := r.randomNumberLiteral(r.pickInRange(opts.MaxNumberLength))
		// hex literals take no denomination
		if kind == DecimalLiteral && r.oneIn(4) {
			text += " " + pickOneOf(r, denominations)
		}
		return text
	case 2:
		return g.render(`"<text>"`, render.Context{
			"text": r.randomASCIIString(r.pickInRange(opts.MaxStringLength+1) - 1),
		})
	case 3:
		return g.render(`hex"<text>"`, render.Context{
			"text": r.randomHexString(2 * (r.pickInRange(opts.MaxHexLiteralLength/2+1) - 1)),
		})
	default:
		return "0x" + r.randomHexString(40)
	}
}
