package solsmith

import (
	"strconv"
	"strings"

	"github.com/OpenDotSo/solidity/pkg/render"
)

// solType is a rendered type name plus whether values of it need a data
// location.
type solType struct {
	text      string
	reference bool
}

// typeProducer is implemented by every generator of the type layer.
type typeProducer interface {
	produce() solType
}

// IntegerWidth maps a raw width draw onto the legal integer widths
// 8, 16, ..., 256. A raw value whose product wraps to 0 becomes 256.
func IntegerWidth(raw uint) uint {
	w := (8 * raw) % 256
	if w == 0 {
		return 256
	}
	return w
}

type integerTypeGenerator struct {
	base
}

func (g *integerTypeGenerator) kind() Kind       { return KindIntegerType }
func (g *integerTypeGenerator) name() string     { return "Integer type generator" }
func (g *integerTypeGenerator) requires() []Kind { return nil }
func (g *integerTypeGenerator) setup()           {}
func (g *integerTypeGenerator) reset()           {}

func (g *integerTypeGenerator) produce() solType {
	signed := g.rand().coinFlip()
	width := IntegerWidth(uint(g.rand().pickInRange(32)))
	return solType{
		text: g.render("<?signed>int<!signed>uint</signed><width>", render.Context{
			"signed": signed,
			"width":  strconv.FormatUint(uint64(width), 10),
		}),
	}
}

func (g *integerTypeGenerator) visit() string {
	return g.produce().text
}

type bytesTypeGenerator struct {
	base
}

func (g *bytesTypeGenerator) kind() Kind       { return KindBytesType }
func (g *bytesTypeGenerator) name() string     { return "Bytes type generator" }
func (g *bytesTypeGenerator) requires() []Kind { return nil }
func (g *bytesTypeGenerator) setup()           {}
func (g *bytesTypeGenerator) reset()           {}

// fixed returns one of bytes1 ... bytes32.
func (g *bytesTypeGenerator) fixed() solType {
	return solType{text: "bytes" + strconv.Itoa(g.rand().pickInRange(32))}
}

func (g *bytesTypeGenerator) produce() solType {
	if g.rand().coinFlip() {
		return solType{text: "bytes", reference: true}
	}
	return g.fixed()
}

func (g *bytesTypeGenerator) visit() string {
	return g.produce().text
}

type boolTypeGenerator struct {
	base
}

func (g *boolTypeGenerator) kind() Kind       { return KindBoolType }
func (g *boolTypeGenerator) name() string     { return "Bool type generator" }
func (g *boolTypeGenerator) requires() []Kind { return nil }
func (g *boolTypeGenerator) setup()           {}
func (g *boolTypeGenerator) reset()           {}

func (g *boolTypeGenerator) produce() solType {
	return solType{text: "bool"}
}

func (g *boolTypeGenerator) visit() string {
	return g.produce().text
}

type addressTypeGenerator struct {
	base
}

func (g *addressTypeGenerator) kind() Kind       { return KindAddressType }
func (g *addressTypeGenerator) name() string     { return "Address type generator" }
func (g *addressTypeGenerator) requires() []Kind { return nil }
func (g *addressTypeGenerator) setup()           {}
func (g *addressTypeGenerator) reset()           {}

func (g *addressTypeGenerator) produce() solType {
	return solType{
		text: g.render("address<?payable> payable</payable>", render.Context{
			"payable": g.rand().coinFlip(),
		}),
	}
}

func (g *addressTypeGenerator) visit() string {
	return g.produce().text
}

// userDefinedTypeGenerator names a contract or enum visible in the current
// unit, falling back to an elementary type while none exists.
type userDefinedTypeGenerator struct {
	base
}

func (g *userDefinedTypeGenerator) kind() Kind   { return KindUserDefinedType }
func (g *userDefinedTypeGenerator) name() string { return "User defined type generator" }
func (g *userDefinedTypeGenerator) setup()       {}
func (g *userDefinedTypeGenerator) reset()       {}

func (g *userDefinedTypeGenerator) requires() []Kind {
	return []Kind{KindIntegerType, KindBoolType, KindAddressType}
}

func (g *userDefinedTypeGenerator) produce() solType {
	if !g.state().Empty() {
		if name, ok := g.state().CurrentUnit().Exports.RandomType(g.rand()); ok {
			return solType{text: name}
		}
	}
	return g.randomDependency().(typeProducer).produce()
}

func (g *userDefinedTypeGenerator) visit() string {
	return g.produce().text
}

// functionTypeGenerator emits function types over value-type parameters.
type functionTypeGenerator struct {
	base
}

func (g *functionTypeGenerator) kind() Kind   { return KindFunctionType }
func (g *functionTypeGenerator) name() string { return "Function type generator" }
func (g *functionTypeGenerator) setup()       {}
func (g *functionTypeGenerator) reset()       {}

func (g *functionTypeGenerator) requires() []Kind {
	return []Kind{KindIntegerType, KindBoolType, KindAddressType, KindBytesType}
}

func (g *functionTypeGenerator) valueType() string {
	if g.rand().coinFlip() {
		return g.integerType().produce().text
	}
	switch g.rand().pickIndex(3) {
	case 0:
		return g.boolType().produce().text
	case 1:
		return g.addressType().produce().text
	default:
		return g.bytesType().fixed().text
	}
}

func (g *functionTypeGenerator) typeList() []string {
	n := g.rand().pickInRange(g.opts().MaxParameters+1) - 1
	types := make([]string, 0, n)
	for i := 0; i < n; i++ {
		types = append(types, g.valueType())
	}
	return types
}

// returnList is never empty. Each entry is optionally named r<i>.
func (g *functionTypeGenerator) returnList() string {
	entries := g.typeList()
	if len(entries) == 0 {
		entries = append(entries, g.valueType())
	}
	for i := range entries {
		if g.rand().coinFlip() {
			entries[i] += " r" + strconv.Itoa(i)
		}
	}
	return strings.Join(entries, ", ")
}

func (g *functionTypeGenerator) produce() solType {
	visibility := VisibilityInternal
	if g.rand().coinFlip() {
		visibility = VisibilityExternal
	}
	mutability := randomMutability(g.rand())
	returns := g.rand().coinFlip()
	ctx := render.Context{
		"params":     strings.Join(g.typeList(), ", "),
		"visibility": visibility.Keyword(),
		"mutability": mutability.Keyword(),
		"return":     returns,
		"returns":    "",
	}
	if returns {
		ctx["returns"] = g.returnList()
	}
	ctx["hasMutability"] = ctx["mutability"] != ""
	return solType{
		text: g.render(
			"function (<params>) <visibility><?hasMutability> <mutability></hasMutability><?return> returns (<returns>)</return>",
			ctx,
		),
	}
}

func (g *functionTypeGenerator) visit() string {
	return g.produce().text
}

// arrayTypeGenerator nests an elementary or user defined element type in up
// to MaxArrayDimensions dimensions.
type arrayTypeGenerator struct {
	base
}

func (g *arrayTypeGenerator) kind() Kind   { return KindArrayType }
func (g *arrayTypeGenerator) name() string { return "Array type generator" }
func (g *arrayTypeGenerator) setup()       {}
func (g *arrayTypeGenerator) reset()       {}

func (g *arrayTypeGenerator) requires() []Kind {
	return []Kind{
		KindIntegerType,
		KindBytesType,
		KindBoolType,
		KindAddressType,
		KindUserDefinedType,
	}
}

func (g *arrayTypeGenerator) produce() solType {
	var b strings.Builder
	b.WriteString(g.randomDependency().(typeProducer).produce().text)
	dims := g.rand().pickInRange(g.opts().MaxArrayDimensions)
	for i := 0; i < dims; i++ {
		b.WriteByte('[')
		if g.rand().coinFlip() {
			b.WriteString(strconv.Itoa(g.rand().pickInRange(g.opts().MaxStaticArraySize)))
		}
		b.WriteByte(']')
	}
	return solType{text: b.String(), reference: true}
}

func (g *arrayTypeGenerator) visit() string {
	return g.produce().text
}

// typeGenerator picks uniformly among the whole type layer.
type typeGenerator struct {
	base
}

func (g *typeGenerator) kind() Kind   { return KindType }
func (g *typeGenerator) name() string { return "Type generator" }
func (g *typeGenerator) setup()       {}
func (g *typeGenerator) reset()       {}

func (g *typeGenerator) requires() []Kind {
	return []Kind{
		KindIntegerType,
		KindBytesType,
		KindBoolType,
		KindAddressType,
		KindUserDefinedType,
		KindFunctionType,
		KindArrayType,
	}
}

func (g *typeGenerator) produce() solType {
	return g.randomDependency().(typeProducer).produce()
}

// elementary draws from the non-recursive value types only.
func (g *typeGenerator) elementary() solType {
	return g.randomDependency(KindUserDefinedType, KindFunctionType, KindArrayType).(typeProducer).produce()
}

func (g *typeGenerator) visit() string {
	return g.produce().text
}
