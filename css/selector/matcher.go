package selector

import (
	"strings"

	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// Element is the view of one element required by the matcher.
// Implementations must be stable for the duration of a match :
// the matcher walks ancestors and previous siblings through it.
//
// A nil Element denotes the absence of a parent or sibling.
type Element interface {
	// TagName is the lower case element name.
	TagName() string
	// ID is the id attribute, or "".
	ID() string
	HasClass(name string) bool
	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)
	HasState(s State) bool
	Parent() Element
	PrevSibling() Element
	// ChildIndex is the 1-based index among element siblings.
	ChildIndex() int
	// SiblingCount is the number of element siblings, self included.
	SiblingCount() int
}

// Matches tests the whole selector against the element.
// Pseudo-elements do not influence the result : a selector
// "p::before" matches any p element, and the caller uses
// Selector.PseudoElement to attach the declarations.
//
// The match is deterministic and side effect free.
func Matches(sel *Selector, el Element) bool {
	return matchFrom(sel, len(sel.Compounds)-1, el)
}

// matchFrom tests the compound at index against el, then walks
// left through the combinators.
func matchFrom(sel *Selector, index int, el Element) bool {
	if el == nil || !matchCompound(sel.Compounds[index], el) {
		return false
	}
	if index == 0 {
		return true
	}
	switch sel.Combinators[index-1] {
	case Descendant:
		for p := el.Parent(); p != nil; p = p.Parent() {
			if matchFrom(sel, index-1, p) {
				return true
			}
		}
		return false
	case Child:
		return matchFrom(sel, index-1, el.Parent())
	case AdjacentSibling:
		return matchFrom(sel, index-1, el.PrevSibling())
	case GeneralSibling:
		for s := el.PrevSibling(); s != nil; s = s.PrevSibling() {
			if matchFrom(sel, index-1, s) {
				return true
			}
		}
		return false
	default:
		panic("unknown combinator")
	}
}

func matchCompound(c Compound, el Element) bool {
	for _, part := range c.Parts {
		if !matchPart(part, el) {
			return false
		}
	}
	return true
}

func matchPart(part Part, el Element) bool {
	switch part := part.(type) {
	case Universal:
		return true
	case Type:
		return utils.AsciiLower(el.TagName()) == part.Name
	case Class:
		return el.HasClass(part.Name)
	case ID:
		return el.ID() == part.Name
	case Attrib:
		return matchAttrib(part, el)
	case PseudoState:
		return el.HasState(part.State)
	case FirstChild:
		return el.ChildIndex() == 1
	case LastChild:
		return el.ChildIndex() == el.SiblingCount()
	case NthChild:
		return matchNth(part.A, part.B, el.ChildIndex())
	case Not:
		return !matchCompound(part.Inner, el)
	default:
		panic("unknown simple selector")
	}
}

func matchAttrib(a Attrib, el Element) bool {
	value, ok := el.Attr(a.Name)
	if !ok {
		return false
	}
	switch a.Operator {
	case "":
		return true
	case "=":
		return value == a.Value
	case "~=":
		for _, word := range strings.Fields(value) {
			if word == a.Value {
				return true
			}
		}
		return false
	case "|=":
		return value == a.Value || strings.HasPrefix(value, a.Value+"-")
	case "^=":
		return a.Value != "" && strings.HasPrefix(value, a.Value)
	case "$=":
		return a.Value != "" && strings.HasSuffix(value, a.Value)
	case "*=":
		return a.Value != "" && strings.Contains(value, a.Value)
	default:
		panic("unknown attribute operator " + a.Operator)
	}
}

// matchNth tests whether index = A*n + B for some n >= 0.
func matchNth(a, b, index int) bool {
	if a == 0 {
		return index == b
	}
	diff := index - b
	if a > 0 {
		return diff >= 0 && diff%a == 0
	}
	return diff <= 0 && diff%a == 0
}
