// Package properties defines the closed set of supported CSS
// properties and their value types, with the inheritance and
// initial value tables used by the cascade.
package properties

// KnownProp identifies one supported property. The set is
// closed : the validation layer rejects (with a diagnostic)
// any declaration whose name is not listed here, except
// custom properties which live in their own namespace.
type KnownProp uint8

const (
	_ KnownProp = iota // zero is "no property"

	PColor
	PBackgroundColor
	PDisplay
	PPosition
	PFloat
	PVisibility
	POpacity
	PFontFamily
	PFontSize
	PFontStyle
	PFontWeight
	PLineHeight
	PTextAlign
	PWidth
	PHeight
	PMinWidth
	PMaxWidth
	PMarginTop
	PMarginRight
	PMarginBottom
	PMarginLeft
	PPaddingTop
	PPaddingRight
	PPaddingBottom
	PPaddingLeft
	PBorderTopWidth
	PBorderRightWidth
	PBorderBottomWidth
	PBorderLeftWidth
	PBorderTopStyle
	PBorderRightStyle
	PBorderBottomStyle
	PBorderLeftStyle
	PBorderTopColor
	PBorderRightColor
	PBorderBottomColor
	PBorderLeftColor
	PZIndex

	NbProperties
)

var propNames = [NbProperties]string{
	PColor:             "color",
	PBackgroundColor:   "background-color",
	PDisplay:           "display",
	PPosition:          "position",
	PFloat:             "float",
	PVisibility:        "visibility",
	POpacity:           "opacity",
	PFontFamily:        "font-family",
	PFontSize:          "font-size",
	PFontStyle:         "font-style",
	PFontWeight:        "font-weight",
	PLineHeight:        "line-height",
	PTextAlign:         "text-align",
	PWidth:             "width",
	PHeight:            "height",
	PMinWidth:          "min-width",
	PMaxWidth:          "max-width",
	PMarginTop:         "margin-top",
	PMarginRight:       "margin-right",
	PMarginBottom:      "margin-bottom",
	PMarginLeft:        "margin-left",
	PPaddingTop:        "padding-top",
	PPaddingRight:      "padding-right",
	PPaddingBottom:     "padding-bottom",
	PPaddingLeft:       "padding-left",
	PBorderTopWidth:    "border-top-width",
	PBorderRightWidth:  "border-right-width",
	PBorderBottomWidth: "border-bottom-width",
	PBorderLeftWidth:   "border-left-width",
	PBorderTopStyle:    "border-top-style",
	PBorderRightStyle:  "border-right-style",
	PBorderBottomStyle: "border-bottom-style",
	PBorderLeftStyle:   "border-left-style",
	PBorderTopColor:    "border-top-color",
	PBorderRightColor:  "border-right-color",
	PBorderBottomColor: "border-bottom-color",
	PBorderLeftColor:   "border-left-color",
	PZIndex:            "z-index",
}

var propsFromNames = map[string]KnownProp{}

func init() {
	for prop, name := range propNames {
		if name != "" {
			propsFromNames[name] = KnownProp(prop)
		}
	}
}

func (p KnownProp) String() string { return propNames[p] }

// PropFromName resolves a lower case property name.
// The second return value is false for unsupported names.
func PropFromName(name string) (KnownProp, bool) {
	p, ok := propsFromNames[name]
	return p, ok
}

// Inherited lists the properties whose computed value
// propagates to children when the cascade is silent.
// Custom properties always inherit and are handled apart.
var Inherited = newPropSet(
	PColor,
	PFontFamily,
	PFontSize,
	PFontStyle,
	PFontWeight,
	PLineHeight,
	PTextAlign,
	PVisibility,
)

// RetainsPercent lists the properties whose percentage values
// are kept for the layout stage : their basis (the containing
// block) is not known at style time.
var RetainsPercent = newPropSet(
	PWidth,
	PHeight,
	PMinWidth,
	PMaxWidth,
	PMarginTop,
	PMarginRight,
	PMarginBottom,
	PMarginLeft,
	PPaddingTop,
	PPaddingRight,
	PPaddingBottom,
	PPaddingLeft,
)

// PropSet is a bit set of KnownProp.
type PropSet uint64

func newPropSet(props ...KnownProp) PropSet {
	var out PropSet
	for _, p := range props {
		out |= 1 << p
	}
	return out
}

func (s PropSet) Has(p KnownProp) bool { return s&(1<<p) != 0 }

// PropKey addresses either a supported property or a custom
// property by name.
type PropKey struct {
	Var   string // "--name", empty for known properties
	Known KnownProp
}

func (k PropKey) String() string {
	if k.Var != "" {
		return k.Var
	}
	return k.Known.String()
}

// Key returns the PropKey of a known property.
func (p KnownProp) Key() PropKey { return PropKey{Known: p} }
