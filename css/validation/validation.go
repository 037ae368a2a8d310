// Package validation turns raw parsed declarations into typed
// property values : per-property syntax checks, shorthand
// expansion, and the permissive fallbacks mandated for calc(),
// var() and custom properties.
//
// Invalid declarations never fail a stylesheet : they are
// dropped and reported as diagnostics.
package validation

import (
	"errors"
	"fmt"
	"strings"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// Declaration is a validated declaration, ready for the cascade.
type Declaration struct {
	Key       pr.PropKey
	Value     pr.DeclaredValue
	Important bool
}

// validator parses the value tokens of one property.
// tokens is free of whitespace and comments, and non empty.
type validator func(tokens []pa.Token) (pr.CssValue, error)

var validators map[pr.KnownProp]validator

func init() {
	// in init to break the initialization cycle with the
	// expanders referring to the longhand validators
	validators = map[pr.KnownProp]validator{
		pr.PColor:            color,
		pr.PBackgroundColor:  color,
		pr.PDisplay:          keywords("inline", "block", "inline-block", "list-item", "flex", "inline-flex", "grid", "inline-grid", "table", "table-row", "table-cell", "none"),
		pr.PPosition:         keywords("static", "relative", "absolute", "fixed", "sticky"),
		pr.PFloat:            keywords("left", "right", "none"),
		pr.PVisibility:       keywords("visible", "hidden", "collapse"),
		pr.POpacity:          opacity,
		pr.PFontFamily:       fontFamily,
		pr.PFontSize:         fontSize,
		pr.PFontStyle:        keywords("normal", "italic", "oblique"),
		pr.PFontWeight:       fontWeight,
		pr.PLineHeight:       lineHeight,
		pr.PTextAlign:        keywords("left", "right", "center", "justify"),
		pr.PWidth:            autoOrLength,
		pr.PHeight:           autoOrLength,
		pr.PMinWidth:         nonNegativeLength,
		pr.PMaxWidth:         noneOrLength,
		pr.PMarginTop:        margin,
		pr.PMarginRight:      margin,
		pr.PMarginBottom:     margin,
		pr.PMarginLeft:       margin,
		pr.PPaddingTop:       nonNegativeLength,
		pr.PPaddingRight:     nonNegativeLength,
		pr.PPaddingBottom:    nonNegativeLength,
		pr.PPaddingLeft:      nonNegativeLength,
		pr.PBorderTopWidth:   borderWidth,
		pr.PBorderRightWidth: borderWidth,
		pr.PBorderBottomWidth: borderWidth,
		pr.PBorderLeftWidth:   borderWidth,
		pr.PBorderTopStyle:    borderStyle,
		pr.PBorderRightStyle:  borderStyle,
		pr.PBorderBottomStyle: borderStyle,
		pr.PBorderLeftStyle:   borderStyle,
		pr.PBorderTopColor:    color,
		pr.PBorderRightColor:  color,
		pr.PBorderBottomColor: color,
		pr.PBorderLeftColor:   color,
		pr.PZIndex:            zIndex,
	}
}

// PreprocessDeclarations validates raw declarations, expanding
// shorthands. Problems are returned as diagnostics; the
// offending declaration is dropped and the others survive.
func PreprocessDeclarations(decls []pa.Declaration) ([]Declaration, []pa.Diagnostic) {
	var (
		out   []Declaration
		diags []pa.Diagnostic
	)
	for _, decl := range decls {
		validated, err := preprocessOne(decl)
		if err != nil {
			kind := pa.DiagInvalidValue
			var unsupported unsupportedError
			if errors.As(err, &unsupported) {
				kind = pa.DiagUnsupportedProperty
			}
			diags = append(diags, pa.Diagnostic{Kind: kind, Pos: decl.Pos(),
				Message: fmt.Sprintf("%s: %s", decl.Name, err)})
			continue
		}
		out = append(out, validated...)
	}
	return out, diags
}

type unsupportedError string

func (e unsupportedError) Error() string { return string(e) }

func preprocessOne(decl pa.Declaration) ([]Declaration, error) {
	// custom properties keep their raw component values and
	// their case-sensitive name
	if strings.HasPrefix(decl.Name, "--") {
		if len(decl.Value) == 0 {
			return nil, errors.New("empty custom property value")
		}
		return []Declaration{{
			Key:       pr.PropKey{Var: decl.Name},
			Value:     pr.AsDeclared(pr.RawTokens(decl.Value)),
			Important: decl.Important,
		}}, nil
	}

	name := utils.AsciiLower(decl.Name)
	tokens := pa.RemoveWhitespace(decl.Value)
	if len(tokens) == 0 {
		return nil, errors.New("empty value")
	}

	if expander, in := expanders[name]; in {
		if pr.HasVar(decl.Value) {
			// a shorthand cannot be split before substitution
			return nil, errors.New("var() in shorthand values is not supported")
		}
		if kw, ok := cssWideKeyword(tokens); ok {
			return expandDefault(name, kw, decl.Important), nil
		}
		return expander(tokens, decl.Important)
	}

	prop, known := pr.PropFromName(name)
	if !known {
		return nil, unsupportedError("unknown property")
	}
	value, err := declaredValue(prop, decl.Value, tokens)
	if err != nil {
		return nil, err
	}
	return []Declaration{{Key: prop.Key(), Value: value, Important: decl.Important}}, nil
}

// declaredValue types the value of one longhand.
func declaredValue(prop pr.KnownProp, raw, tokens []pa.Token) (pr.DeclaredValue, error) {
	if kw, ok := cssWideKeyword(tokens); ok {
		return pr.DeclaredValue{Default: kw}, nil
	}
	// values with var() wait for substitution at compute time
	if pr.HasVar(raw) {
		return pr.AsDeclared(pr.RawTokens(raw)), nil
	}
	value, err := ValidateValue(prop, tokens)
	if err != nil {
		return pr.DeclaredValue{}, err
	}
	return pr.AsDeclared(value), nil
}

// ValidateValue types a var-free value for the given property.
// It is also used at compute time, after var() substitution.
func ValidateValue(prop pr.KnownProp, tokens []pa.Token) (pr.CssValue, error) {
	tokens = pa.RemoveWhitespace(tokens)
	if len(tokens) == 0 {
		return nil, errors.New("empty value")
	}
	fn := validators[prop]
	if fn == nil {
		panic("missing validator for property " + prop.String())
	}
	return fn(tokens)
}

// cssWideKeyword recognises inherit, initial and unset.
func cssWideKeyword(tokens []pa.Token) (pr.DefaultKind, bool) {
	if len(tokens) != 1 {
		return 0, false
	}
	ident, ok := tokens[0].(pa.Ident)
	if !ok {
		return 0, false
	}
	switch ident.Value.Lower() {
	case "inherit":
		return pr.Inherit, true
	case "initial":
		return pr.Initial, true
	case "unset":
		return pr.Unset, true
	default:
		return 0, false
	}
}

// ---------------------------- validators ----------------------------

func single(tokens []pa.Token) (pa.Token, error) {
	if len(tokens) != 1 {
		return nil, fmt.Errorf("expected a single value, got %d", len(tokens))
	}
	return tokens[0], nil
}

// keywords accepts exactly one identifier from the allowed set.
func keywords(allowed ...string) validator {
	set := utils.NewSet(allowed...)
	return func(tokens []pa.Token) (pr.CssValue, error) {
		token, err := single(tokens)
		if err != nil {
			return nil, err
		}
		ident, ok := token.(pa.Ident)
		if !ok {
			return nil, fmt.Errorf("expected a keyword, got %s", token.Kind())
		}
		kw := ident.Value.Lower()
		if !set.Has(kw) {
			return nil, fmt.Errorf("unexpected keyword %q", kw)
		}
		return pr.Keyword(kw), nil
	}
}

// calcValue retains calc() unevaluated; the stylist resolves it.
func calcValue(token pa.Token) (pr.CssValue, bool) {
	fn, ok := token.(pa.FunctionBlock)
	if !ok || fn.Name.Lower() != "calc" {
		return nil, false
	}
	return pr.FuncCall{Name: "calc", Args: *fn.Arguments}, true
}

// getLength accepts a dimension with a supported unit, a
// percentage, or the number zero.
func getLength(token pa.Token, negative, percentage bool) (pr.Dimension, error) {
	switch token := token.(type) {
	case pa.Number:
		if token.Value == 0 {
			return pr.PxToDim(0), nil
		}
		return pr.Dimension{}, errors.New("non-zero number used as a length")
	case pa.Percentage:
		if !percentage {
			return pr.Dimension{}, errors.New("percentage not allowed here")
		}
		if !negative && token.Value < 0 {
			return pr.Dimension{}, errors.New("negative value not allowed")
		}
		return pr.NewDim(token.Value, pr.Perc), nil
	case pa.Dimension:
		unit, ok := pr.UnitFromString(token.Unit.Lower())
		if !ok {
			return pr.Dimension{}, fmt.Errorf("unknown unit %q", token.Unit)
		}
		if !negative && token.Value < 0 {
			return pr.Dimension{}, errors.New("negative value not allowed")
		}
		return pr.NewDim(token.Value, unit), nil
	default:
		return pr.Dimension{}, fmt.Errorf("expected a length, got %s", token.Kind())
	}
}

func lengthValidator(negative bool, extraKeywords ...string) validator {
	set := utils.NewSet(extraKeywords...)
	return func(tokens []pa.Token) (pr.CssValue, error) {
		token, err := single(tokens)
		if err != nil {
			return nil, err
		}
		if ident, ok := token.(pa.Ident); ok {
			kw := ident.Value.Lower()
			if set.Has(kw) {
				return pr.Keyword(kw), nil
			}
			return nil, fmt.Errorf("unexpected keyword %q", kw)
		}
		if v, ok := calcValue(token); ok {
			return v, nil
		}
		return getLength(token, negative, true)
	}
}

var (
	autoOrLength      = lengthValidator(false, "auto")
	noneOrLength      = lengthValidator(false, "none")
	nonNegativeLength = lengthValidator(false)
	margin            = lengthValidator(true, "auto")
)

func color(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	return parseColor(token)
}

// parseColor accepts hex colors, color keywords, currentcolor,
// and the rgb()/rgba() functions.
func parseColor(token pa.Token) (pr.CssValue, error) {
	switch token := token.(type) {
	case pa.Hash:
		return hexColor(token.Value)
	case pa.Ident:
		kw := token.Value.Lower()
		if kw == "currentcolor" {
			return pr.Keyword("currentcolor"), nil
		}
		if c, ok := pr.ColorFromKeyword(kw); ok {
			return c, nil
		}
		return nil, fmt.Errorf("unknown color %q", kw)
	case pa.FunctionBlock:
		return functionColor(token)
	default:
		return nil, fmt.Errorf("expected a color, got %s", token.Kind())
	}
}

func hexColor(hex string) (pr.CssValue, error) {
	var digits []uint8
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		switch {
		case '0' <= c && c <= '9':
			digits = append(digits, c-'0')
		case 'a' <= c && c <= 'f':
			digits = append(digits, c-'a'+10)
		case 'A' <= c && c <= 'F':
			digits = append(digits, c-'A'+10)
		default:
			return nil, fmt.Errorf("invalid hex color #%s", hex)
		}
	}
	switch len(digits) {
	case 3:
		return pr.RGB(digits[0]*17, digits[1]*17, digits[2]*17), nil
	case 6:
		return pr.RGB(digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]), nil
	case 8:
		return pr.Color{
			R: digits[0]<<4 | digits[1], G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5], A: digits[6]<<4 | digits[7],
		}, nil
	default:
		return nil, fmt.Errorf("invalid hex color #%s", hex)
	}
}

func functionColor(fn pa.FunctionBlock) (pr.CssValue, error) {
	name := fn.Name.Lower()
	if name != "rgb" && name != "rgba" {
		return nil, fmt.Errorf("unknown color function %s()", name)
	}
	var channels []pa.Token
	for _, chunk := range pa.SplitOnComma(*fn.Arguments) {
		args := pa.RemoveWhitespace(chunk)
		if len(args) != 1 {
			return nil, fmt.Errorf("invalid %s() value", name)
		}
		channels = append(channels, args[0])
	}
	if len(channels) != 3 && len(channels) != 4 {
		return nil, fmt.Errorf("%s() requires 3 or 4 values", name)
	}
	out := pr.Color{A: 255}
	for i, channel := range channels[:3] {
		var v utils.Fl
		switch channel := channel.(type) {
		case pa.Number:
			v = channel.Value
		case pa.Percentage:
			v = channel.Value / 100 * 255
		default:
			return nil, fmt.Errorf("invalid color channel %s", channel.Kind())
		}
		b := uint8(utils.MinF(utils.MaxF(v, 0), 255))
		switch i {
		case 0:
			out.R = b
		case 1:
			out.G = b
		case 2:
			out.B = b
		}
	}
	if len(channels) == 4 {
		alpha, ok := channels[3].(pa.Number)
		if !ok {
			return nil, errors.New("invalid alpha channel")
		}
		out.A = uint8(utils.MinF(utils.MaxF(alpha.Value, 0), 1) * 255)
	}
	return out, nil
}

func opacity(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	if v, ok := calcValue(token); ok {
		return v, nil
	}
	var v utils.Fl
	switch token := token.(type) {
	case pa.Number:
		v = token.Value
	case pa.Percentage:
		v = token.Value / 100
	default:
		return nil, fmt.Errorf("expected a number, got %s", token.Kind())
	}
	return pr.Number(utils.MinF(utils.MaxF(v, 0), 1)), nil
}

func fontFamily(tokens []pa.Token) (pr.CssValue, error) {
	var out pr.Strings
	for _, chunk := range pa.SplitOnComma(tokens) {
		chunk = pa.RemoveWhitespace(chunk)
		if len(chunk) == 0 {
			return nil, errors.New("empty font family name")
		}
		if s, ok := chunk[0].(pa.String); ok && len(chunk) == 1 {
			out = append(out, s.Value)
			continue
		}
		// an unquoted name is a sequence of identifiers
		var words []string
		for _, t := range chunk {
			ident, ok := t.(pa.Ident)
			if !ok {
				return nil, fmt.Errorf("invalid font family component %s", t.Kind())
			}
			words = append(words, string(ident.Value))
		}
		out = append(out, strings.Join(words, " "))
	}
	return out, nil
}

// fontSizeKeywords maps the absolute size keywords to pixels,
// on the 16px medium scale.
var fontSizeKeywords = map[string]utils.Fl{
	"xx-small": 16.0 * 3 / 5,
	"x-small":  16.0 * 3 / 4,
	"small":    16.0 * 8 / 9,
	"medium":   16,
	"large":    16.0 * 6 / 5,
	"x-large":  16.0 * 3 / 2,
	"xx-large": 16.0 * 2,
}

func fontSize(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	if ident, ok := token.(pa.Ident); ok {
		kw := ident.Value.Lower()
		if px, in := fontSizeKeywords[kw]; in {
			return pr.PxToDim(px), nil
		}
		if kw == "smaller" || kw == "larger" {
			// relative keywords are resolved against the parent
			// at compute time
			return pr.Keyword(kw), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q", kw)
	}
	if v, ok := calcValue(token); ok {
		return v, nil
	}
	return getLength(token, false, true)
}

func fontWeight(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	switch token := token.(type) {
	case pa.Ident:
		switch kw := token.Value.Lower(); kw {
		case "normal":
			return pr.Number(400), nil
		case "bold":
			return pr.Number(700), nil
		case "bolder", "lighter":
			// resolved against the parent at compute time
			return pr.Keyword(kw), nil
		default:
			return nil, fmt.Errorf("unexpected keyword %q", kw)
		}
	case pa.Number:
		if token.IsInt() && 1 <= token.Value && token.Value <= 1000 {
			return pr.Number(token.Value), nil
		}
		return nil, errors.New("font-weight must be an integer in [1, 1000]")
	default:
		return nil, fmt.Errorf("expected a keyword or number, got %s", token.Kind())
	}
}

func lineHeight(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	switch token := token.(type) {
	case pa.Ident:
		if token.Value.Lower() == "normal" {
			return pr.Keyword("normal"), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q", token.Value)
	case pa.Number:
		if token.Value < 0 {
			return nil, errors.New("negative line-height")
		}
		return pr.Number(token.Value), nil
	default:
		if v, ok := calcValue(token); ok {
			return v, nil
		}
		return getLength(token, false, true)
	}
}

// borderWidthKeywords per CSS 2.1 : thin, medium, thick.
var borderWidthKeywords = utils.NewSet("thin", "medium", "thick")

func borderWidth(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	if ident, ok := token.(pa.Ident); ok {
		kw := ident.Value.Lower()
		if borderWidthKeywords.Has(kw) {
			return pr.Keyword(kw), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q", kw)
	}
	if v, ok := calcValue(token); ok {
		return v, nil
	}
	return getLength(token, false, false)
}

var borderStyle = keywords("none", "hidden", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset")

func zIndex(tokens []pa.Token) (pr.CssValue, error) {
	token, err := single(tokens)
	if err != nil {
		return nil, err
	}
	switch token := token.(type) {
	case pa.Ident:
		if token.Value.Lower() == "auto" {
			return pr.Keyword("auto"), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q", token.Value)
	case pa.Number:
		if !token.IsInt() {
			return nil, errors.New("z-index must be an integer")
		}
		return pr.Number(token.Value), nil
	default:
		return nil, fmt.Errorf("expected auto or an integer, got %s", token.Kind())
	}
}
