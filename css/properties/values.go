package properties

import (
	"fmt"
	"strings"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

type Fl = utils.Fl

// Unit is the unit of a Dimension.
type Unit uint8

const (
	Scalar Unit = iota // no unit : a plain number
	Px
	Em
	Rem
	Perc // percentage (%)
	Vw
	Vh
)

func (u Unit) String() string {
	switch u {
	case Scalar:
		return ""
	case Px:
		return "px"
	case Em:
		return "em"
	case Rem:
		return "rem"
	case Perc:
		return "%"
	case Vw:
		return "vw"
	case Vh:
		return "vh"
	default:
		return "<invalid unit>"
	}
}

// UnitFromString resolves a lower case unit suffix.
func UnitFromString(s string) (Unit, bool) {
	switch s {
	case "px":
		return Px, true
	case "em":
		return Em, true
	case "rem":
		return Rem, true
	case "%":
		return Perc, true
	case "vw":
		return Vw, true
	case "vh":
		return Vh, true
	default:
		return 0, false
	}
}

// CssValue is a property value, as stored in declarations
// and computed styles.
type CssValue interface {
	isCssValue()
}

type (
	// Keyword is an identifier value like "auto" or "none",
	// stored lower case.
	Keyword string

	// SString is a quoted string value.
	SString string

	// Number is a unitless number.
	Number Fl

	// Dimension is a length or a percentage.
	Dimension struct {
		Value Fl
		Unit  Unit
	}

	// Strings is a list of font family names.
	Strings []string

	// List is a whitespace separated list of values.
	List []CssValue

	// FuncCall is a functional value retained unevaluated,
	// used for calc() kept for the layout stage.
	FuncCall struct {
		Name string
		Args []pa.Token
	}

	// RawTokens is a value kept as component values : unknown
	// syntactic forms accepted by the permissive fallback, the
	// value of custom properties, and any value containing a
	// var() reference pending substitution.
	RawTokens []pa.Token
)

func (Keyword) isCssValue()   {}
func (SString) isCssValue()   {}
func (Number) isCssValue()    {}
func (Dimension) isCssValue() {}
func (Color) isCssValue()     {}
func (Strings) isCssValue()   {}
func (List) isCssValue()      {}
func (FuncCall) isCssValue()  {}
func (RawTokens) isCssValue() {}

// NewDim returns a Dimension value.
func NewDim(v Fl, u Unit) Dimension { return Dimension{Value: v, Unit: u} }

// PxToDim returns an absolute pixel Dimension.
func PxToDim(v Fl) Dimension { return Dimension{Value: v, Unit: Px} }

func (d Dimension) String() string { return fmt.Sprintf("%g%s", d.Value, d.Unit) }

// IsAbsolute returns true for pixel dimensions, which need
// no resolution context.
func (d Dimension) IsAbsolute() bool { return d.Unit == Px }

// DefaultKind tags the CSS-wide keywords.
type DefaultKind uint8

const (
	// NoDefault marks a regular value.
	NoDefault DefaultKind = iota
	// Inherit takes the parent computed value.
	Inherit
	// Initial takes the property initial value.
	Initial
	// Unset behaves as Inherit for inherited properties,
	// as Initial otherwise.
	Unset
)

func (d DefaultKind) String() string {
	switch d {
	case Inherit:
		return "inherit"
	case Initial:
		return "initial"
	case Unset:
		return "unset"
	default:
		return ""
	}
}

// DeclaredValue is the outcome of validating one declaration
// value : either a concrete value, or a CSS-wide keyword.
type DeclaredValue struct {
	Value   CssValue
	Default DefaultKind
}

// AsDeclared wraps a concrete value.
func AsDeclared(v CssValue) DeclaredValue { return DeclaredValue{Value: v} }

// HasVar reports whether the token list contains a var()
// reference, at any nesting depth.
func HasVar(tokens []pa.Token) bool {
	for _, t := range tokens {
		switch t := t.(type) {
		case pa.FunctionBlock:
			if t.Name.Lower() == "var" || HasVar(*t.Arguments) {
				return true
			}
		case pa.ParenthesesBlock:
			if HasVar(*t.Content) {
				return true
			}
		case pa.SquareBracketsBlock:
			if HasVar(*t.Content) {
				return true
			}
		case pa.CurlyBracketsBlock:
			if HasVar(*t.Content) {
				return true
			}
		}
	}
	return false
}

// String implementations, used by diagnostics and debug dumps.

func (k Keyword) String() string { return string(k) }

func (s SString) String() string { return fmt.Sprintf("%q", string(s)) }

func (n Number) String() string { return fmt.Sprintf("%g", Fl(n)) }

func (s Strings) String() string { return strings.Join(s, ", ") }

func (l List) String() string {
	chunks := make([]string, len(l))
	for i, v := range l {
		chunks[i] = fmt.Sprint(v)
	}
	return strings.Join(chunks, " ")
}

func (f FuncCall) String() string {
	return f.Name + "(" + pa.Serialize(f.Args) + ")"
}

func (r RawTokens) String() string { return pa.Serialize(r) }
