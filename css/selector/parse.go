package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// ErrEmptySelector is returned for an empty selector
// or an empty member of a selector group.
var ErrEmptySelector = errors.New("empty selector")

// ParseGroup parses a comma-separated selector list.
func ParseGroup(s string) ([]Selector, error) {
	p := &parser{s: s}
	out, err := p.parseSelectorGroup()
	if err != nil {
		return nil, err
	}
	if p.i < len(p.s) {
		return nil, fmt.Errorf("parsing selector %q: %d bytes left over", s, len(p.s)-p.i)
	}
	return out, nil
}

// Parse parses a single complex selector.
func Parse(s string) (*Selector, error) {
	p := &parser{s: s}
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	if p.i < len(p.s) {
		return nil, fmt.Errorf("parsing selector %q: %d bytes left over", s, len(p.s)-p.i)
	}
	return sel, nil
}

// the parser for selector strings
type parser struct {
	s string // the source text
	i int    // the current position
}

func (p *parser) error(format string, args ...interface{}) error {
	return fmt.Errorf("invalid selector %q: %s", p.s, fmt.Sprintf(format, args...))
}

func (p *parser) skipWhitespace() bool {
	start := p.i
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r', '\f':
			p.i++
		default:
			return p.i != start
		}
	}
	return p.i != start
}

func nameStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || c == '-' || c >= 0x80
}

func nameChar(c byte) bool {
	return nameStart(c) || '0' <= c && c <= '9'
}

func (p *parser) parseIdentifier() (string, error) {
	if p.i >= len(p.s) || !(nameStart(p.s[p.i]) || p.s[p.i] == '\\') {
		return "", p.error("expected identifier at position %d", p.i)
	}
	start := p.i
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch {
		case nameChar(c):
			p.i++
		case c == '\\' && p.i+1 < len(p.s):
			b.WriteString(p.s[start:p.i])
			p.i++
			b.WriteByte(p.s[p.i])
			p.i++
			start = p.i
		default:
			b.WriteString(p.s[start:p.i])
			return b.String(), nil
		}
	}
	b.WriteString(p.s[start:p.i])
	return b.String(), nil
}

// parseAttrValue parses a quoted or unquoted attribute value.
func (p *parser) parseAttrValue() (string, error) {
	if p.i >= len(p.s) {
		return "", p.error("expected attribute value at position %d", p.i)
	}
	quote := p.s[p.i]
	if quote == '"' || quote == '\'' {
		p.i++
		start := p.i
		for p.i < len(p.s) && p.s[p.i] != quote {
			p.i++
		}
		if p.i >= len(p.s) {
			return "", p.error("unterminated string in attribute selector")
		}
		out := p.s[start:p.i]
		p.i++ // closing quote
		return out, nil
	}
	return p.parseIdentifier()
}

// parseCompound parses a compound selector : a sequence
// of simple selector parts with no combinator.
// A trailing pseudo-element, if any, is returned separately.
func (p *parser) parseCompound(allowPseudoElement bool) (Compound, string, error) {
	var (
		out           Compound
		pseudoElement string
	)
loop:
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case '*':
			p.i++
			out.Parts = append(out.Parts, Universal{})
		case '#':
			p.i++
			name, err := p.parseIdentifier()
			if err != nil {
				return out, "", err
			}
			out.Parts = append(out.Parts, ID{Name: name})
		case '.':
			p.i++
			name, err := p.parseIdentifier()
			if err != nil {
				return out, "", err
			}
			out.Parts = append(out.Parts, Class{Name: name})
		case '[':
			part, err := p.parseAttrib()
			if err != nil {
				return out, "", err
			}
			out.Parts = append(out.Parts, part)
		case ':':
			if pseudoElement != "" {
				return out, "", p.error("pseudo-element must be the last component")
			}
			part, pe, err := p.parsePseudo(allowPseudoElement)
			if err != nil {
				return out, "", err
			}
			if pe != "" {
				pseudoElement = pe
			} else {
				out.Parts = append(out.Parts, part)
			}
		default:
			if !(nameStart(p.s[p.i]) || p.s[p.i] == '\\') {
				break loop
			}
			name, err := p.parseIdentifier()
			if err != nil {
				return out, "", err
			}
			out.Parts = append(out.Parts, Type{Name: utils.AsciiLower(name)})
		}
	}
	if len(out.Parts) == 0 && pseudoElement == "" {
		return out, "", ErrEmptySelector
	}
	return out, pseudoElement, nil
}

// parseAttrib parses an attribute selector, p.s[p.i] == '['
func (p *parser) parseAttrib() (Attrib, error) {
	var out Attrib
	p.i++
	p.skipWhitespace()
	name, err := p.parseIdentifier()
	if err != nil {
		return out, err
	}
	out.Name = utils.AsciiLower(name)
	p.skipWhitespace()
	if p.i >= len(p.s) {
		return out, p.error("unexpected EOF in attribute selector")
	}
	if p.s[p.i] == ']' {
		p.i++
		return out, nil
	}
	if p.i+1 >= len(p.s) {
		return out, p.error("unexpected EOF in attribute selector")
	}
	switch p.s[p.i] {
	case '=':
		out.Operator = "="
		p.i++
	case '~', '|', '^', '$', '*':
		if p.s[p.i+1] != '=' {
			return out, p.error("expected '=' in attribute operator")
		}
		out.Operator = p.s[p.i:p.i+1] + "="
		p.i += 2
	default:
		return out, p.error("unexpected character %q in attribute selector", p.s[p.i])
	}
	p.skipWhitespace()
	out.Value, err = p.parseAttrValue()
	if err != nil {
		return out, err
	}
	p.skipWhitespace()
	if p.i >= len(p.s) || p.s[p.i] != ']' {
		return out, p.error("expected ']' to close attribute selector")
	}
	p.i++
	return out, nil
}

// pseudo-elements accepted, in both the legacy one-colon
// and the two-colon form
var knownPseudoElements = utils.NewSet("before", "after", "marker", "first-line", "first-letter")

// parsePseudo parses a pseudo-class or pseudo-element, p.s[p.i] == ':'
func (p *parser) parsePseudo(allowPseudoElement bool) (Part, string, error) {
	p.i++
	doubleColon := false
	if p.i < len(p.s) && p.s[p.i] == ':' {
		doubleColon = true
		p.i++
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, "", err
	}
	name = utils.AsciiLower(name)

	if doubleColon || knownPseudoElements.Has(name) {
		if !allowPseudoElement {
			return nil, "", p.error("pseudo-element ::%s not allowed here", name)
		}
		if !knownPseudoElements.Has(name) {
			return nil, "", p.error("unknown pseudo-element ::%s", name)
		}
		return nil, name, nil
	}

	switch name {
	case "hover":
		return PseudoState{State: StateHover}, "", nil
	case "focus":
		return PseudoState{State: StateFocus}, "", nil
	case "active":
		return PseudoState{State: StateActive}, "", nil
	case "visited":
		return PseudoState{State: StateVisited}, "", nil
	case "first-child":
		return FirstChild{}, "", nil
	case "last-child":
		return LastChild{}, "", nil
	case "nth-child":
		arg, err := p.parseParenContent()
		if err != nil {
			return nil, "", err
		}
		a, b, ok := ParseNth(arg)
		if !ok {
			return nil, "", p.error("invalid :nth-child argument %q", arg)
		}
		return NthChild{A: a, B: b}, "", nil
	case "not":
		arg, err := p.parseParenContent()
		if err != nil {
			return nil, "", err
		}
		inner := &parser{s: strings.TrimSpace(arg)}
		compound, pe, err := inner.parseCompound(false)
		if err != nil {
			return nil, "", err
		}
		if pe != "" || inner.i < len(inner.s) {
			return nil, "", p.error(":not() accepts a single compound selector")
		}
		return Not{Inner: compound}, "", nil
	default:
		return nil, "", p.error("unknown pseudo-class :%s", name)
	}
}

// stripComments removes CSS comments : serialized token lists
// carry empty /**/ separators between ambiguous pairs.
func stripComments(s string) string {
	for {
		start := strings.Index(s, "/*")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start+2:], "*/")
		if end == -1 {
			return s[:start]
		}
		s = s[:start] + s[start+2+end+2:]
	}
}

// parseParenContent consumes "( ... )" and returns the raw content.
func (p *parser) parseParenContent() (string, error) {
	if p.i >= len(p.s) || p.s[p.i] != '(' {
		return "", p.error("expected '(' at position %d", p.i)
	}
	p.i++
	depth := 1
	start := p.i
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				out := p.s[start:p.i]
				p.i++
				return out, nil
			}
		}
		p.i++
	}
	return "", p.error("unbalanced parenthesis")
}

// parseSelector parses one complex selector :
// compounds separated by combinators.
func (p *parser) parseSelector() (*Selector, error) {
	p.skipWhitespace()
	out := &Selector{}
	compound, pe, err := p.parseCompound(true)
	if err != nil {
		return nil, err
	}
	out.Compounds = append(out.Compounds, compound)
	out.PseudoElement = pe

	for {
		sawSpace := p.skipWhitespace()
		if p.i >= len(p.s) || p.s[p.i] == ',' {
			break
		}
		if out.PseudoElement != "" {
			return nil, p.error("pseudo-element must be on the last compound")
		}
		combinator := Descendant
		switch p.s[p.i] {
		case '>':
			combinator = Child
			p.i++
			p.skipWhitespace()
		case '+':
			combinator = AdjacentSibling
			p.i++
			p.skipWhitespace()
		case '~':
			combinator = GeneralSibling
			p.i++
			p.skipWhitespace()
		default:
			if !sawSpace {
				return nil, p.error("unexpected character %q", p.s[p.i])
			}
		}
		compound, pe, err := p.parseCompound(true)
		if err != nil {
			return nil, err
		}
		out.Compounds = append(out.Compounds, compound)
		out.Combinators = append(out.Combinators, combinator)
		out.PseudoElement = pe
	}
	out.computeSpecificity()
	return out, nil
}

func (p *parser) parseSelectorGroup() ([]Selector, error) {
	var out []Selector
	for {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		out = append(out, *sel)
		p.skipWhitespace()
		if p.i >= len(p.s) {
			return out, nil
		}
		if p.s[p.i] != ',' {
			return nil, p.error("unexpected character %q", p.s[p.i])
		}
		p.i++
	}
}

// ParseNth parses the <An+B> forms accepted by :nth-child() :
// the keywords odd and even, a lone integer, or a signed
// linear expression like 2n+1 or -n+3.
// See http://drafts.csswg.org/csswg/css-syntax-3/#anb
func ParseNth(s string) (a, b int, ok bool) {
	s = stripComments(s)
	s = strings.ReplaceAll(strings.TrimSpace(utils.AsciiLower(s)), " ", "")
	s = strings.ReplaceAll(s, "\t", "")
	switch s {
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	case "":
		return 0, 0, false
	}
	nIdx := strings.IndexByte(s, 'n')
	if nIdx == -1 {
		b, err := strconv.Atoi(s)
		return 0, b, err == nil
	}
	if strings.IndexByte(s[nIdx+1:], 'n') != -1 {
		return 0, 0, false
	}
	aStr := s[:nIdx]
	switch aStr {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		var err error
		a, err = strconv.Atoi(aStr)
		if err != nil {
			return 0, 0, false
		}
	}
	rest := s[nIdx+1:]
	if rest == "" {
		return a, 0, true
	}
	if rest[0] != '+' && rest[0] != '-' {
		return 0, 0, false
	}
	b, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
