package solsmith

import (
	"strings"

	"github.com/OpenDotSo/solidity/pkg/render"
)

type NatSpecCategory int

const (
	NatSpecContract NatSpecCategory = iota
	NatSpecFunction
	NatSpecPublicStateVariable
	NatSpecEvent
)

type NatSpecTag int

const (
	TagTitle NatSpecTag = iota
	TagAuthor
	TagNotice
	TagDev
	TagParam
	TagReturn
	TagInheritdoc
)

func (t NatSpecTag) String() string {
	switch t {
	case TagTitle:
		return "@title"
	case TagAuthor:
		return "@author"
	case TagNotice:
		return "@notice"
	case TagDev:
		return "@dev"
	case TagParam:
		return "@param"
	case TagReturn:
		return "@return"
	case TagInheritdoc:
		return "@inheritdoc"
	}
	panic(NewUnreachableError())
}

// natSpecTarget describes the declaration a comment block documents.
type natSpecTarget struct {
	Params  []string
	Returns int
	// InheritFrom is the base contract of an overriding declaration.
	InheritFrom string
}

// natSpecGenerator emits "///" documentation blocks. Each tag line may
// recurse into another one until depth reaches MaxNatSpecDepth.
type natSpecGenerator struct {
	base
	depth int
}

func (g *natSpecGenerator) kind() Kind       { return KindNatSpec }
func (g *natSpecGenerator) name() string     { return "NatSpec generator" }
func (g *natSpecGenerator) requires() []Kind { return nil }
func (g *natSpecGenerator) setup()           {}

func (g *natSpecGenerator) reset() {
	g.depth = 0
}

func (g *natSpecGenerator) visit() string {
	return g.document(NatSpecContract, natSpecTarget{})
}

func (g *natSpecGenerator) tags(category NatSpecCategory, target natSpecTarget) []NatSpecTag {
	var tags []NatSpecTag
	switch category {
	case NatSpecContract:
		tags = []NatSpecTag{TagTitle, TagAuthor, TagNotice, TagDev}
	case NatSpecFunction:
		tags = []NatSpecTag{TagNotice, TagDev}
		if len(target.Params) > 0 {
			tags = append(tags, TagParam)
		}
		if target.Returns > 0 {
			tags = append(tags, TagReturn)
		}
	case NatSpecPublicStateVariable:
		tags = []NatSpecTag{TagNotice, TagDev}
	case NatSpecEvent:
		tags = []NatSpecTag{TagNotice, TagDev}
		if len(target.Params) > 0 {
			tags = append(tags, TagParam)
		}
	default:
		panic(NewUnreachableError())
	}
	if target.InheritFrom != "" && category != NatSpecContract && category != NatSpecEvent {
		tags = append(tags, TagInheritdoc)
	}
	return tags
}

// document returns a comment block ending in a newline, or nothing.
func (g *natSpecGenerator) document(category NatSpecCategory, target natSpecTarget) string {
	if g.rand().coinFlip() {
		return ""
	}
	g.reset()
	return g.line(g.tags(category, target), target)
}

func (g *natSpecGenerator) line(tags []NatSpecTag, target natSpecTarget) string {
	g.depth++
	r := g.rand()
	tag := pickOneOf(r, tags)

	var text string
	switch tag {
	case TagParam:
		text = pickOneOf(r, target.Params) + " " + g.text()
	case TagInheritdoc:
		text = target.InheritFrom
	default:
		text = g.text()
	}

	recurse := g.depth < g.opts().MaxNatSpecDepth && r.coinFlip()
	ctx := render.Context{
		"tag":     tag.String(),
		"text":    text,
		"recurse": recurse,
		"next":    "",
	}
	if recurse {
		ctx["next"] = g.line(tags, target)
	}
	return g.render("/// <tag> <text>\n<?recurse><next></recurse>", ctx)
}

func (g *natSpecGenerator) text() string {
	return strings.TrimSpace(g.rand().randomASCIIString(g.rand().pickInRange(g.opts().MaxNatSpecTextLength)))
}
