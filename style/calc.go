package style

import (
	"errors"
	"fmt"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// lengthContext carries the reference values needed to resolve
// relative units to absolute pixels.
type lengthContext struct {
	fontSize     utils.Fl // the em basis
	rootFontSize utils.Fl // the rem basis
	viewport     Viewport

	// percentBasis is the reference for percentages; absent
	// for the properties whose basis is only known at layout.
	percentBasis    utils.Fl
	hasPercentBasis bool

	// usedViewport is set when a viewport relative unit was
	// resolved, feeding the viewport invalidation bitset.
	usedViewport *bool
}

// resolveDim converts a single dimension to pixels.
// Percentages are reported apart : the caller decides between
// resolving and retaining them.
func (ctx *lengthContext) resolveDim(d pr.Dimension) (pr.Dimension, bool) {
	switch d.Unit {
	case pr.Px, pr.Scalar:
		return pr.PxToDim(d.Value), true
	case pr.Em:
		return pr.PxToDim(d.Value * ctx.fontSize), true
	case pr.Rem:
		return pr.PxToDim(d.Value * ctx.rootFontSize), true
	case pr.Vw:
		if ctx.usedViewport != nil {
			*ctx.usedViewport = true
		}
		return pr.PxToDim(d.Value * ctx.viewport.Width / 100), true
	case pr.Vh:
		if ctx.usedViewport != nil {
			*ctx.usedViewport = true
		}
		return pr.PxToDim(d.Value * ctx.viewport.Height / 100), true
	case pr.Perc:
		if ctx.hasPercentBasis {
			return pr.PxToDim(d.Value / 100 * ctx.percentBasis), true
		}
		return d, false
	default:
		return d, false
	}
}

// calcTerm is an intermediate calc() value : an accumulated
// pixel part, percent part, or a pure number.
type calcTerm struct {
	px       utils.Fl
	percent  utils.Fl
	number   utils.Fl
	isNumber bool
	// hasPercent remains true even for a zero percent part
	hasPercent bool
}

func (t calcTerm) String() string {
	if t.isNumber {
		return fmt.Sprintf("%g", t.number)
	}
	return fmt.Sprintf("calc(%gpx + %g%%)", t.px, t.percent)
}

// evaluateCalc resolves a calc() expression with the usual
// operator precedence, mixing absolute lengths, numbers and
// percentages.
//
// When a percentage appears and the context has no percent
// basis, ok is false : the caller retains the expression for
// the layout stage.
func evaluateCalc(args []pa.Token, ctx *lengthContext) (result pr.CssValue, ok bool, err error) {
	p := &calcParser{tokens: pa.RemoveWhitespace(args), ctx: ctx}
	term, err := p.parseSum()
	if err != nil {
		return nil, false, err
	}
	if p.pos != len(p.tokens) {
		return nil, false, errors.New("trailing tokens in calc()")
	}
	if term.isNumber {
		return pr.Number(term.number), true, nil
	}
	if term.hasPercent && !ctx.hasPercentBasis {
		return nil, false, nil
	}
	px := term.px
	if term.hasPercent {
		px += term.percent / 100 * ctx.percentBasis
	}
	return pr.PxToDim(px), true, nil
}

type calcParser struct {
	tokens []pa.Token
	pos    int
	ctx    *lengthContext
}

func (p *calcParser) peek() pa.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return p.tokens[p.pos]
}

func (p *calcParser) next() pa.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

// parseSum handles `+` and `-`, the lowest precedence.
func (p *calcParser) parseSum() (calcTerm, error) {
	left, err := p.parseProduct()
	if err != nil {
		return left, err
	}
	for {
		lit, ok := p.peek().(pa.Literal)
		if !ok || (lit.Value != "+" && lit.Value != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return left, err
		}
		if left.isNumber != right.isNumber {
			return left, errors.New("calc() mixes numbers and lengths in a sum")
		}
		if lit.Value == "+" {
			left.px += right.px
			left.percent += right.percent
			left.number += right.number
		} else {
			left.px -= right.px
			left.percent -= right.percent
			left.number -= right.number
		}
		left.hasPercent = left.hasPercent || right.hasPercent
	}
}

// parseProduct handles `*` and `/` : one side of a
// multiplication, and the divisor, must be a pure number.
func (p *calcParser) parseProduct() (calcTerm, error) {
	left, err := p.parseUnit()
	if err != nil {
		return left, err
	}
	for {
		lit, ok := p.peek().(pa.Literal)
		if !ok || (lit.Value != "*" && lit.Value != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnit()
		if err != nil {
			return left, err
		}
		if lit.Value == "*" {
			switch {
			case right.isNumber:
				left.px *= right.number
				left.percent *= right.number
				left.number *= right.number
			case left.isNumber:
				factor := left.number
				left = right
				left.px *= factor
				left.percent *= factor
				left.number *= factor
			default:
				return left, errors.New("calc() multiplies two lengths")
			}
		} else {
			if !right.isNumber {
				return left, errors.New("calc() divides by a non-number")
			}
			if right.number == 0 {
				return left, errors.New("division by zero in calc()")
			}
			left.px /= right.number
			left.percent /= right.number
			left.number /= right.number
		}
	}
}

func (p *calcParser) parseUnit() (calcTerm, error) {
	token := p.next()
	if token == nil {
		return calcTerm{}, errors.New("unexpected end of calc()")
	}
	switch token := token.(type) {
	case pa.Number:
		return calcTerm{isNumber: true, number: token.Value}, nil
	case pa.Percentage:
		return calcTerm{percent: token.Value, hasPercent: true}, nil
	case pa.Dimension:
		unit, ok := pr.UnitFromString(token.Unit.Lower())
		if !ok {
			return calcTerm{}, fmt.Errorf("unknown unit %q in calc()", token.Unit)
		}
		resolved, ok := p.ctx.resolveDim(pr.NewDim(token.Value, unit))
		if !ok {
			// a percentage dimension with no basis
			return calcTerm{percent: token.Value, hasPercent: true}, nil
		}
		return calcTerm{px: resolved.Value}, nil
	case pa.ParenthesesBlock:
		inner := &calcParser{tokens: pa.RemoveWhitespace(*token.Content), ctx: p.ctx}
		out, err := inner.parseSum()
		if err == nil && inner.pos != len(inner.tokens) {
			err = errors.New("trailing tokens in calc() group")
		}
		return out, err
	case pa.FunctionBlock:
		if token.Name.Lower() != "calc" {
			return calcTerm{}, fmt.Errorf("unexpected %s() in calc()", token.Name)
		}
		inner := &calcParser{tokens: pa.RemoveWhitespace(*token.Arguments), ctx: p.ctx}
		out, err := inner.parseSum()
		if err == nil && inner.pos != len(inner.tokens) {
			err = errors.New("trailing tokens in nested calc()")
		}
		return out, err
	default:
		return calcTerm{}, fmt.Errorf("unexpected %s in calc()", token.Kind())
	}
}
