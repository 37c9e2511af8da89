// Package render expands the placeholder templates used by the program
// generators into literal source text.
//
// The template syntax is deliberately small:
//
//	<name>                 substitute the string value of name
//	<?flag>...</flag>      include the section when flag is true
//	<?flag>A<!flag>B</flag> include A when flag is true, B otherwise
//
// A placeholder whose value is a bool also opens a section, so
// <flag>A<!flag>B</flag> is accepted as an alias of the if/else form.
// Substituted values are written verbatim and never rescanned.
package render

import (
	"fmt"
	"strings"
)

// Context maps placeholder names to either string values or bool flags.
type Context map[string]any

// Renderer turns a template and its context into text.
type Renderer interface {
	Render(template string, ctx Context) string
}

// Whiskers is the default Renderer.
type Whiskers struct{}

var _ Renderer = Whiskers{}

// Render expands tmpl with the default renderer.
func Render(tmpl string, ctx Context) string {
	return Whiskers{}.Render(tmpl, ctx)
}

func (Whiskers) Render(tmpl string, ctx Context) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	expand(&b, tmpl, ctx)
	return b.String()
}

type tagKind int

const (
	tagValue tagKind = iota
	tagCondition
	tagElse
	tagClose
)

type tag struct {
	kind  tagKind
	name  string
	width int
}

// parseTag recognizes a tag at the start of s. Anything that does not look
// like a tag (for example "< " or "<=") is reported as not a tag.
func parseTag(s string) (tag, bool) {
	if len(s) < 3 || s[0] != '<' {
		return tag{}, false
	}
	t := tag{kind: tagValue}
	i := 1
	switch s[1] {
	case '?':
		t.kind = tagCondition
		i++
	case '!':
		t.kind = tagElse
		i++
	case '/':
		t.kind = tagClose
		i++
	}
	start := i
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == start || i >= len(s) || s[i] != '>' {
		return tag{}, false
	}
	t.name = s[start:i]
	t.width = i + 1
	return t, true
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func expand(b *strings.Builder, s string, ctx Context) {
	for len(s) > 0 {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			b.WriteString(s)
			return
		}
		b.WriteString(s[:i])
		s = s[i:]

		t, ok := parseTag(s)
		if !ok {
			b.WriteByte('<')
			s = s[1:]
			continue
		}

		switch t.kind {
		case tagValue:
			v, found := ctx[t.name]
			if !found {
				panic(fmt.Errorf("render: no value for placeholder <%s>", t.name))
			}
			switch v := v.(type) {
			case string:
				b.WriteString(v)
				s = s[t.width:]
			case bool:
				s = section(b, s, t, v, ctx)
			default:
				panic(fmt.Errorf("render: placeholder <%s> has unsupported value type %T", t.name, v))
			}

		case tagCondition:
			v, found := ctx[t.name]
			if !found {
				panic(fmt.Errorf("render: no value for flag <?%s>", t.name))
			}
			flag, isBool := v.(bool)
			if !isBool {
				panic(fmt.Errorf("render: flag <?%s> is %T, not bool", t.name, v))
			}
			s = section(b, s, t, flag, ctx)

		default:
			panic(fmt.Errorf("render: unexpected tag %q", s[:t.width]))
		}
	}
}

// section expands the conditional section opened at the start of s and
// returns the remainder of s after its closing tag.
func section(b *strings.Builder, s string, open tag, flag bool, ctx Context) string {
	body := s[open.width:]
	elseAt, closeAt, closeEnd := findSectionEnd(body, open.name)
	if closeAt < 0 {
		panic(fmt.Errorf("render: unterminated section <%s>", open.name))
	}

	then := body[:closeAt]
	otherwise := ""
	if elseAt >= 0 {
		then = body[:elseAt]
		otherwise = body[elseAt+len(open.name)+3 : closeAt]
	}
	if flag {
		expand(b, then, ctx)
	} else {
		expand(b, otherwise, ctx)
	}
	return body[closeEnd:]
}

// findSectionEnd locates the else marker and the closing tag of the section
// named name, skipping nested sections with the same name.
func findSectionEnd(s string, name string) (elseAt, closeAt, closeEnd int) {
	elseAt, closeAt = -1, -1
	depth := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		t, ok := parseTag(s[i:])
		if !ok || t.name != name {
			continue
		}
		switch t.kind {
		case tagCondition:
			depth++
		case tagElse:
			if depth == 0 && elseAt < 0 {
				elseAt = i
			}
		case tagClose:
			if depth == 0 {
				return elseAt, i, i + t.width
			}
			depth--
		}
		i += t.width - 1
	}
	return elseAt, -1, -1
}
