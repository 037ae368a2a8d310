package properties

// InitialValues gives the initial computed value for each
// supported property, used for `initial`, for properties
// absent from the cascade, and as the fallback of local
// computation errors.
// https://www.w3.org/TR/CSS21/propidx.html
var InitialValues = [NbProperties]CssValue{
	PColor:           Black,
	PBackgroundColor: Transparent,
	PDisplay:         Keyword("inline"),
	PPosition:        Keyword("static"),
	PFloat:           Keyword("none"),
	PVisibility:      Keyword("visible"),
	POpacity:         Number(1),

	PFontFamily: Strings{"serif"},
	PFontSize:   PxToDim(16), // medium
	PFontStyle:  Keyword("normal"),
	PFontWeight: Number(400),
	PLineHeight: Keyword("normal"),
	PTextAlign:  Keyword("left"),

	PWidth:    Keyword("auto"),
	PHeight:   Keyword("auto"),
	PMinWidth: PxToDim(0),
	PMaxWidth: Keyword("none"),

	PMarginTop:    PxToDim(0),
	PMarginRight:  PxToDim(0),
	PMarginBottom: PxToDim(0),
	PMarginLeft:   PxToDim(0),

	PPaddingTop:    PxToDim(0),
	PPaddingRight:  PxToDim(0),
	PPaddingBottom: PxToDim(0),
	PPaddingLeft:   PxToDim(0),

	PBorderTopWidth:    Keyword("medium"),
	PBorderRightWidth:  Keyword("medium"),
	PBorderBottomWidth: Keyword("medium"),
	PBorderLeftWidth:   Keyword("medium"),

	PBorderTopStyle:    Keyword("none"),
	PBorderRightStyle:  Keyword("none"),
	PBorderBottomStyle: Keyword("none"),
	PBorderLeftStyle:   Keyword("none"),

	PBorderTopColor:    Keyword("currentcolor"),
	PBorderRightColor:  Keyword("currentcolor"),
	PBorderBottomColor: Keyword("currentcolor"),
	PBorderLeftColor:   Keyword("currentcolor"),

	PZIndex: Keyword("auto"),
}
