package validation

import (
	"errors"
	"fmt"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
)

// expander expands one shorthand into longhand declarations.
// Setting a shorthand resets the longhands it covers : sides or
// sub-properties absent from the value get their initial value.
type expander func(tokens []pa.Token, important bool) ([]Declaration, error)

var expanders = map[string]expander{
	"margin":        sides4(pr.PMarginTop, pr.PMarginRight, pr.PMarginBottom, pr.PMarginLeft),
	"padding":       sides4(pr.PPaddingTop, pr.PPaddingRight, pr.PPaddingBottom, pr.PPaddingLeft),
	"border-width":  sides4(pr.PBorderTopWidth, pr.PBorderRightWidth, pr.PBorderBottomWidth, pr.PBorderLeftWidth),
	"border-style":  sides4(pr.PBorderTopStyle, pr.PBorderRightStyle, pr.PBorderBottomStyle, pr.PBorderLeftStyle),
	"border-color":  sides4(pr.PBorderTopColor, pr.PBorderRightColor, pr.PBorderBottomColor, pr.PBorderLeftColor),
	"border":        borderShorthand,
	"border-top":    borderSide(pr.PBorderTopWidth, pr.PBorderTopStyle, pr.PBorderTopColor),
	"border-right":  borderSide(pr.PBorderRightWidth, pr.PBorderRightStyle, pr.PBorderRightColor),
	"border-bottom": borderSide(pr.PBorderBottomWidth, pr.PBorderBottomStyle, pr.PBorderBottomColor),
	"border-left":   borderSide(pr.PBorderLeftWidth, pr.PBorderLeftStyle, pr.PBorderLeftColor),
	"background":    backgroundShorthand,
}

// IsShorthand returns true for the property names handled by
// shorthand expansion.
func IsShorthand(name string) bool {
	_, in := expanders[name]
	return in
}

// expandDefault applies a CSS-wide keyword to every longhand
// of the shorthand.
func expandDefault(name string, kw pr.DefaultKind, important bool) []Declaration {
	var out []Declaration
	for _, prop := range shorthandLonghands[name] {
		out = append(out, Declaration{
			Key:       prop.Key(),
			Value:     pr.DeclaredValue{Default: kw},
			Important: important,
		})
	}
	return out
}

var shorthandLonghands = map[string][]pr.KnownProp{
	"margin":       {pr.PMarginTop, pr.PMarginRight, pr.PMarginBottom, pr.PMarginLeft},
	"padding":      {pr.PPaddingTop, pr.PPaddingRight, pr.PPaddingBottom, pr.PPaddingLeft},
	"border-width": {pr.PBorderTopWidth, pr.PBorderRightWidth, pr.PBorderBottomWidth, pr.PBorderLeftWidth},
	"border-style": {pr.PBorderTopStyle, pr.PBorderRightStyle, pr.PBorderBottomStyle, pr.PBorderLeftStyle},
	"border-color": {pr.PBorderTopColor, pr.PBorderRightColor, pr.PBorderBottomColor, pr.PBorderLeftColor},
	"border": {
		pr.PBorderTopWidth, pr.PBorderRightWidth, pr.PBorderBottomWidth, pr.PBorderLeftWidth,
		pr.PBorderTopStyle, pr.PBorderRightStyle, pr.PBorderBottomStyle, pr.PBorderLeftStyle,
		pr.PBorderTopColor, pr.PBorderRightColor, pr.PBorderBottomColor, pr.PBorderLeftColor,
	},
	"border-top":    {pr.PBorderTopWidth, pr.PBorderTopStyle, pr.PBorderTopColor},
	"border-right":  {pr.PBorderRightWidth, pr.PBorderRightStyle, pr.PBorderRightColor},
	"border-bottom": {pr.PBorderBottomWidth, pr.PBorderBottomStyle, pr.PBorderBottomColor},
	"border-left":   {pr.PBorderLeftWidth, pr.PBorderLeftStyle, pr.PBorderLeftColor},
	"background":    {pr.PBackgroundColor},
}

// sides4 implements the 1-to-4 value expansion of margin-like
// shorthands : top, right, bottom, left.
func sides4(top, right, bottom, left pr.KnownProp) expander {
	props := [4]pr.KnownProp{top, right, bottom, left}
	return func(tokens []pa.Token, important bool) ([]Declaration, error) {
		var indexes [4]int
		switch len(tokens) {
		case 1:
			indexes = [4]int{0, 0, 0, 0}
		case 2:
			indexes = [4]int{0, 1, 0, 1}
		case 3:
			indexes = [4]int{0, 1, 2, 1}
		case 4:
			indexes = [4]int{0, 1, 2, 3}
		default:
			return nil, fmt.Errorf("expected 1 to 4 values, got %d", len(tokens))
		}
		out := make([]Declaration, 4)
		for i, prop := range props {
			value, err := ValidateValue(prop, tokens[indexes[i]:indexes[i]+1])
			if err != nil {
				return nil, err
			}
			out[i] = Declaration{Key: prop.Key(), Value: pr.AsDeclared(value), Important: important}
		}
		return out, nil
	}
}

// borderComponent classifies one token of a border shorthand.
func borderComponent(token pa.Token) (width, style, color bool) {
	switch t := token.(type) {
	case pa.Ident:
		kw := t.Value.Lower()
		if borderWidthKeywords.Has(kw) {
			return true, false, false
		}
		if _, err := borderStyle([]pa.Token{token}); err == nil {
			return false, true, false
		}
		return false, false, true
	case pa.Dimension, pa.Number:
		return true, false, false
	default:
		return false, false, true
	}
}

// borderSide expands `border-top: 1px solid black` like forms.
// Sub-properties absent from the value are reset to initial.
func borderSide(widthProp, styleProp, colorProp pr.KnownProp) expander {
	return func(tokens []pa.Token, important bool) ([]Declaration, error) {
		if len(tokens) > 3 {
			return nil, fmt.Errorf("expected at most 3 values, got %d", len(tokens))
		}
		decls := map[pr.KnownProp]pr.DeclaredValue{
			widthProp: {Default: pr.Initial},
			styleProp: {Default: pr.Initial},
			colorProp: {Default: pr.Initial},
		}
		for _, token := range tokens {
			isWidth, isStyle, _ := borderComponent(token)
			var (
				prop  pr.KnownProp
				value pr.CssValue
				err   error
			)
			switch {
			case isWidth:
				prop = widthProp
				value, err = borderWidth([]pa.Token{token})
			case isStyle:
				prop = styleProp
				value, err = borderStyle([]pa.Token{token})
			default:
				prop = colorProp
				value, err = parseColor(token)
			}
			if err != nil {
				return nil, err
			}
			if decls[prop].Default != pr.Initial {
				return nil, errors.New("duplicated component in border shorthand")
			}
			decls[prop] = pr.AsDeclared(value)
		}
		out := make([]Declaration, 0, 3)
		for _, prop := range []pr.KnownProp{widthProp, styleProp, colorProp} {
			out = append(out, Declaration{Key: prop.Key(), Value: decls[prop], Important: important})
		}
		return out, nil
	}
}

// borderShorthand applies the border-side expansion to the
// four sides at once.
func borderShorthand(tokens []pa.Token, important bool) ([]Declaration, error) {
	var out []Declaration
	for _, side := range []expander{
		borderSide(pr.PBorderTopWidth, pr.PBorderTopStyle, pr.PBorderTopColor),
		borderSide(pr.PBorderRightWidth, pr.PBorderRightStyle, pr.PBorderRightColor),
		borderSide(pr.PBorderBottomWidth, pr.PBorderBottomStyle, pr.PBorderBottomColor),
		borderSide(pr.PBorderLeftWidth, pr.PBorderLeftStyle, pr.PBorderLeftColor),
	} {
		decls, err := side(tokens, important)
		if err != nil {
			return nil, err
		}
		out = append(out, decls...)
	}
	return out, nil
}

// backgroundShorthand supports the color component only; the
// other background features are out of the property subset.
func backgroundShorthand(tokens []pa.Token, important bool) ([]Declaration, error) {
	value, err := color(tokens)
	if err != nil {
		return nil, err
	}
	return []Declaration{{Key: pr.PBackgroundColor.Key(), Value: pr.AsDeclared(value), Important: important}}, nil
}
