// Package selector implements CSS selectors : parsing,
// specificity and matching against an element tree.
//
// Selectors are parsed from their textual form, carry their
// specificity, and are matched right to left, the rightmost
// compound being tested against the candidate element.
package selector

import "strings"

// Specificity is the CSS selector strength : the count of
// id, class-level and type-level simple selectors.
// Comparison is lexicographic.
type Specificity [3]int

// Less returns true if s is strictly weaker than other.
func (s Specificity) Less(other Specificity) bool {
	for i := range s {
		if s[i] < other[i] {
			return true
		}
		if s[i] > other[i] {
			return false
		}
	}
	return false
}

// Add returns the component-wise sum.
func (s Specificity) Add(other Specificity) Specificity {
	return Specificity{s[0] + other[0], s[1] + other[1], s[2] + other[2]}
}

// State is the set of dynamic element states consulted
// by the :hover, :focus, :active and :visited pseudo-classes.
type State uint8

const (
	StateHover State = 1 << iota
	StateFocus
	StateActive
	StateVisited
)

// Combinator separates two compound selectors.
type Combinator uint8

const (
	Descendant Combinator = iota // whitespace
	Child                        // >
	AdjacentSibling              // +
	GeneralSibling               // ~
)

func (c Combinator) String() string {
	switch c {
	case Child:
		return ">"
	case AdjacentSibling:
		return "+"
	case GeneralSibling:
		return "~"
	default:
		return " "
	}
}

// Part is a simple selector inside a compound.
type Part interface {
	specificity() Specificity
	isPart()
}

type (
	// Universal is the * selector.
	Universal struct{}

	// Type matches the element name, ASCII case-insensitively.
	Type struct{ Name string } // lower case

	// Class matches one class of the element class set.
	Class struct{ Name string }

	// ID matches the element id attribute.
	ID struct{ Name string }

	// Attrib matches an attribute, with an optional operator.
	// An empty Operator tests for presence only.
	Attrib struct {
		Name     string // lower case
		Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
		Value    string
	}

	// PseudoState is one of :hover, :focus, :active, :visited.
	PseudoState struct{ State State }

	// FirstChild is :first-child.
	FirstChild struct{}

	// LastChild is :last-child.
	LastChild struct{}

	// NthChild is :nth-child(An+B), on the 1-based index
	// among element siblings.
	NthChild struct{ A, B int }

	// Not is :not(x), with a single compound and no combinator.
	Not struct{ Inner Compound }
)

func (Universal) isPart()   {}
func (Type) isPart()        {}
func (Class) isPart()       {}
func (ID) isPart()          {}
func (Attrib) isPart()      {}
func (PseudoState) isPart() {}
func (FirstChild) isPart()  {}
func (LastChild) isPart()   {}
func (NthChild) isPart()    {}
func (Not) isPart()         {}

func (Universal) specificity() Specificity   { return Specificity{} }
func (Type) specificity() Specificity        { return Specificity{0, 0, 1} }
func (Class) specificity() Specificity       { return Specificity{0, 1, 0} }
func (ID) specificity() Specificity          { return Specificity{1, 0, 0} }
func (Attrib) specificity() Specificity      { return Specificity{0, 1, 0} }
func (PseudoState) specificity() Specificity { return Specificity{0, 1, 0} }
func (FirstChild) specificity() Specificity  { return Specificity{0, 1, 0} }
func (LastChild) specificity() Specificity   { return Specificity{0, 1, 0} }
func (NthChild) specificity() Specificity    { return Specificity{0, 1, 0} }

// :not() contributes the specificity of its argument.
func (n Not) specificity() Specificity { return n.Inner.specificity() }

// Compound is a conjunction of simple selector parts
// applying to one element.
type Compound struct {
	Parts []Part
}

func (c Compound) specificity() Specificity {
	var out Specificity
	for _, p := range c.Parts {
		out = out.Add(p.specificity())
	}
	return out
}

// Selector is a complex selector : compound selectors
// separated by combinators, plus an optional pseudo-element.
type Selector struct {
	PseudoElement string     // "", "before", "after", ...
	Compounds     []Compound // left to right; the last is the subject
	Combinators   []Combinator
	spec          Specificity
}

// Specificity returns the selector strength,
// computed once at parse time.
func (s *Selector) Specificity() Specificity { return s.spec }

// Depth is the number of compound selectors.
func (s *Selector) Depth() int { return len(s.Compounds) }

// Subject returns the rightmost compound, the one tested
// against the candidate element.
func (s *Selector) Subject() Compound { return s.Compounds[len(s.Compounds)-1] }

func (s *Selector) computeSpecificity() {
	var out Specificity
	for _, c := range s.Compounds {
		out = out.Add(c.specificity())
	}
	if s.PseudoElement != "" {
		out = out.Add(Specificity{0, 0, 1})
	}
	s.spec = out
}

func (s *Selector) String() string {
	var b strings.Builder
	for i, c := range s.Compounds {
		if i > 0 {
			comb := s.Combinators[i-1]
			if comb == Descendant {
				b.WriteString(" ")
			} else {
				b.WriteString(" " + comb.String() + " ")
			}
		}
		for _, p := range c.Parts {
			switch p := p.(type) {
			case Universal:
				b.WriteString("*")
			case Type:
				b.WriteString(p.Name)
			case Class:
				b.WriteString("." + p.Name)
			case ID:
				b.WriteString("#" + p.Name)
			case Attrib:
				if p.Operator == "" {
					b.WriteString("[" + p.Name + "]")
				} else {
					b.WriteString("[" + p.Name + p.Operator + `"` + p.Value + `"]`)
				}
			case PseudoState:
				switch p.State {
				case StateHover:
					b.WriteString(":hover")
				case StateFocus:
					b.WriteString(":focus")
				case StateActive:
					b.WriteString(":active")
				case StateVisited:
					b.WriteString(":visited")
				}
			case FirstChild:
				b.WriteString(":first-child")
			case LastChild:
				b.WriteString(":last-child")
			case NthChild:
				b.WriteString(":nth-child(...)")
			case Not:
				b.WriteString(":not(...)")
			}
		}
	}
	if s.PseudoElement != "" {
		b.WriteString("::" + s.PseudoElement)
	}
	return b.String()
}
