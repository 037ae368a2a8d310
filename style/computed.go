package style

import (
	"fmt"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/css/validation"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// ComputedValues is the dense per-element style record : one
// resolved value per supported property, plus the resolved
// custom property chain.
//
// All lengths are absolute pixels, except the percentages of
// the properties listed in properties.RetainsPercent and the
// calc() expressions awaiting a layout-provided basis.
type ComputedValues struct {
	vars  map[string][]pa.Token
	id    uint64
	props [pr.NbProperties]pr.CssValue
	// viewportDependent is true when any value was resolved
	// from vw or vh units.
	viewportDependent bool
}

// Get returns the computed value of a property. Every supported
// property has exactly one entry.
func (c *ComputedValues) Get(p pr.KnownProp) pr.CssValue {
	if p == 0 || p >= pr.NbProperties {
		panic(fmt.Sprintf("invalid property id %d", p))
	}
	return c.props[p]
}

// Var returns the resolved raw tokens of a custom property,
// or nil.
func (c *ComputedValues) Var(name string) []pa.Token { return c.vars[name] }

// FontSize returns the computed font size in pixels.
func (c *ComputedValues) FontSize() utils.Fl {
	return c.props[pr.PFontSize].(pr.Dimension).Value
}

// DependsOnViewport is true when the record holds values
// resolved from viewport-relative units.
func (c *ComputedValues) DependsOnViewport() bool { return c.viewportDependent }

// computeError is a local computation problem : the offending
// property falls back to its initial value, the element
// otherwise computes.
type computeError struct {
	key  pr.PropKey
	kind pa.DiagKind
	err  error
}

// computer resolves one element (or pseudo-element) : cascade
// output to computed values.
type computer struct {
	cascaded cascadedStyle
	parent   *ComputedValues // nil on the root
	viewport Viewport
	// rootFontSize is the rem basis; on the root element it is
	// the initial font size.
	rootFontSize utils.Fl

	// varChain is the resolved custom property chain, set by
	// compute before any property resolution.
	varChain map[string][]pa.Token

	errors []computeError
}

func (cp *computer) parentValue(p pr.KnownProp) pr.CssValue {
	if cp.parent != nil {
		return cp.parent.Get(p)
	}
	// the root inherits from the initial values
	return pr.InitialValues[p]
}

func (cp *computer) parentFontSize() utils.Fl {
	if cp.parent != nil {
		return cp.parent.FontSize()
	}
	return cp.rootFontSize
}

func (cp *computer) fail(key pr.PropKey, kind pa.DiagKind, err error) {
	cp.errors = append(cp.errors, computeError{key: key, kind: kind, err: err})
}

// compute runs the whole resolution : variables, then font-size
// (the em basis of everything else), then every other property.
func (cp *computer) compute(parentVars map[string][]pa.Token) *ComputedValues {
	out := &ComputedValues{}

	var cyclic []string
	out.vars, cyclic = resolveVariables(parentVars, cp.cascaded)
	cp.varChain = out.vars
	for _, name := range cyclic {
		cp.fail(pr.PropKey{Var: name}, pa.DiagCircularVariable, errCircularVar)
	}

	out.props[pr.PFontSize] = cp.computeFontSize(out)
	fontSize := out.props[pr.PFontSize].(pr.Dimension).Value

	for p := pr.KnownProp(1); p < pr.NbProperties; p++ {
		if p == pr.PFontSize {
			continue
		}
		out.props[p] = cp.computeProp(p, fontSize, out)
	}
	return out
}

// declaredFor applies the cascade keywords : a property absent
// from the cascade inherits or takes its initial value; unset
// resolves per the inheritance flag; inherit on the root falls
// back to initial.
// Returns the concrete declared value, or (nil, true) when the
// parent computed value must be used, or (nil, false) for the
// initial value.
func (cp *computer) declaredFor(p pr.KnownProp) (pr.CssValue, bool) {
	wv, isCascaded := cp.cascaded[p.Key()]
	def := wv.value.Default
	if !isCascaded {
		if pr.Inherited.Has(p) {
			def = pr.Inherit
		} else {
			def = pr.Initial
		}
	} else if def == pr.Unset {
		if pr.Inherited.Has(p) {
			def = pr.Inherit
		} else {
			def = pr.Initial
		}
	}
	switch def {
	case pr.Inherit:
		return nil, true
	case pr.Initial:
		return nil, false
	default:
		return wv.value.Value, false
	}
}

// computeFontSize resolves font-size first : it is the em basis
// for the other properties. Relative values resolve against the
// parent font size.
func (cp *computer) computeFontSize(out *ComputedValues) pr.CssValue {
	parentSize := cp.parentFontSize()
	declared, inherit := cp.declaredFor(pr.PFontSize)
	if inherit {
		return pr.PxToDim(cp.parentFontSize())
	}
	if declared == nil {
		return pr.PxToDim(cp.viewport.RootFontSizePx)
	}

	ctx := &lengthContext{
		fontSize:        parentSize, // em in font-size uses the parent size
		rootFontSize:    cp.rootFontSize,
		viewport:        cp.viewport,
		percentBasis:    parentSize,
		hasPercentBasis: true,
		usedViewport:    &out.viewportDependent,
	}

	declared = cp.substituted(pr.PFontSize, declared)
	switch v := declared.(type) {
	case pr.Dimension:
		resolved, ok := ctx.resolveDim(v)
		if !ok {
			cp.fail(pr.PFontSize.Key(), pa.DiagComputation, fmt.Errorf("can not resolve font-size %s", v))
			return pr.PxToDim(cp.viewport.RootFontSizePx)
		}
		return resolved
	case pr.Keyword:
		// the relative size keywords scale the parent size
		switch v {
		case "smaller":
			return pr.PxToDim(parentSize * 0.8)
		case "larger":
			return pr.PxToDim(parentSize * 1.25)
		}
	case pr.FuncCall:
		result, ok, err := evaluateCalc(v.Args, ctx)
		if err != nil {
			cp.fail(pr.PFontSize.Key(), pa.DiagComputation, err)
			return pr.PxToDim(cp.viewport.RootFontSizePx)
		}
		if ok {
			if dim, isDim := result.(pr.Dimension); isDim {
				return dim
			}
		}
	}
	cp.fail(pr.PFontSize.Key(), pa.DiagComputation, fmt.Errorf("invalid font-size value %v", declared))
	return pr.PxToDim(cp.viewport.RootFontSizePx)
}

// substituted resolves pending var() references, re-validating
// the substituted value. On failure the property falls back to
// its initial value.
func (cp *computer) substituted(p pr.KnownProp, declared pr.CssValue) pr.CssValue {
	raw, pending := declared.(pr.RawTokens)
	if !pending {
		return declared
	}
	tokens, err := substituteVars(raw, cp.varChain, utils.Set{})
	if err != nil {
		if err == errCircularVar {
			cp.fail(p.Key(), pa.DiagCircularVariable, err)
		}
		// an undefined variable without fallback is not an
		// error : the property takes its initial value
		return pr.InitialValues[p]
	}
	validated, err := validation.ValidateValue(p, tokens)
	if err != nil {
		cp.fail(p.Key(), pa.DiagComputation, err)
		return pr.InitialValues[p]
	}
	return validated
}

// computeProp resolves one property other than font-size.
func (cp *computer) computeProp(p pr.KnownProp, fontSize utils.Fl, out *ComputedValues) pr.CssValue {
	declared, inherit := cp.declaredFor(p)
	if inherit {
		return cp.parentValue(p)
	}
	if declared == nil {
		return pr.InitialValues[p]
	}
	declared = cp.substituted(p, declared)

	ctx := &lengthContext{
		fontSize:     fontSize,
		rootFontSize: cp.rootFontSize,
		viewport:     cp.viewport,
		usedViewport: &out.viewportDependent,
	}
	if p == pr.PLineHeight {
		// line-height percentages resolve against the element
		// font size at computed-value time
		ctx.percentBasis = fontSize
		ctx.hasPercentBasis = true
	}

	switch v := declared.(type) {
	case pr.Dimension:
		if v.Unit == pr.Perc && pr.RetainsPercent.Has(p) {
			// the percentage basis is a layout concern
			return v
		}
		resolved, ok := ctx.resolveDim(v)
		if !ok {
			cp.fail(p.Key(), pa.DiagComputation, fmt.Errorf("can not resolve %s value %s", p, v))
			return pr.InitialValues[p]
		}
		return resolved
	case pr.FuncCall:
		if v.Name != "calc" {
			return v
		}
		result, ok, err := evaluateCalc(v.Args, ctx)
		if err != nil {
			cp.fail(p.Key(), pa.DiagComputation, err)
			return pr.InitialValues[p]
		}
		if !ok {
			// retained for layout : the percent basis is unknown
			return v
		}
		return result
	case pr.Keyword:
		if p == pr.PFontWeight && (v == "bolder" || v == "lighter") {
			return cp.relativeFontWeight(v)
		}
		return v
	default:
		return declared
	}
}

// relativeFontWeight maps bolder and lighter from the parent
// computed weight, per the CSS 2.1 table.
func (cp *computer) relativeFontWeight(kw pr.Keyword) pr.CssValue {
	parent, ok := cp.parentValue(pr.PFontWeight).(pr.Number)
	if !ok {
		parent = 400
	}
	if kw == "bolder" {
		switch {
		case parent < 400:
			return pr.Number(400)
		case parent < 600:
			return pr.Number(700)
		default:
			return pr.Number(900)
		}
	}
	switch {
	case parent < 600:
		return pr.Number(100)
	case parent < 800:
		return pr.Number(400)
	default:
		return pr.Number(700)
	}
}
