package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	"github.com/Corten-Browser/Corten-CSSEngine/dom"
	"github.com/Corten-Browser/Corten-CSSEngine/style"
)

// fixture builds <html><body>...</body></html> and an engine
// without the built-in user-agent sheet, so that the tests
// control every declaration.
type fixture struct {
	tree   *dom.Tree
	engine *style.Engine
	html   dom.ElementId
	body   dom.ElementId
}

func newFixture(config style.EngineConfig) *fixture {
	config.DisableUASheet = true
	tree := dom.NewTree()
	html := tree.NewElement("html")
	tree.SetRoot(html)
	body := tree.NewElement("body")
	tree.AppendChild(html, body)
	return &fixture{
		tree:   tree,
		engine: style.NewEngine(tree, config),
		html:   html,
		body:   body,
	}
}

func (f *fixture) addSheets(t *testing.T, origin pa.Origin, sheets ...string) []style.StyleSheetId {
	t.Helper()
	var out []style.StyleSheetId
	for _, css := range sheets {
		id, err := f.engine.AddStylesheet(css, origin)
		require.NoError(t, err)
		out = append(out, id)
	}
	return out
}

func (f *fixture) color(t *testing.T, el dom.ElementId) pr.CssValue {
	t.Helper()
	cv := f.engine.GetComputedStyle(el)
	require.NotNil(t, cv)
	return cv.Get(pr.PColor)
}

// Scenario 1 : !important beats higher specificity.
func TestCascadeBasic(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.SetId(p, "x")
	f.tree.AddClass(p, "warn")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor,
		`* { color: black }`,
		`p { color: red }`,
		`p.warn { color: orange !important }`,
		`p#x.warn { color: blue }`,
	)

	assert.Equal(t, pr.RGB(255, 165, 0), f.color(t, p)) // orange
}

// Scenario 2 : color inherits, border does not.
func TestInheritance(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	parent := f.tree.NewElement("div")
	f.tree.AddClass(parent, "parent")
	f.tree.AppendChild(f.body, parent)
	child := f.tree.NewElement("p")
	f.tree.AppendChild(parent, child)

	f.addSheets(t, pa.OriginAuthor, `.parent { color: red; border: 1px solid black }`)

	parentStyle := f.engine.GetComputedStyle(parent)
	childStyle := f.engine.GetComputedStyle(child)

	assert.Equal(t, pr.RGB(255, 0, 0), parentStyle.Get(pr.PColor))
	assert.Equal(t, pr.PxToDim(1), parentStyle.Get(pr.PBorderTopWidth))

	// inherited
	assert.Equal(t, pr.RGB(255, 0, 0), childStyle.Get(pr.PColor))
	// not inherited : back to the initial keyword
	assert.Equal(t, pr.Keyword("medium"), childStyle.Get(pr.PBorderTopWidth))
	assert.Equal(t, pr.Keyword("none"), childStyle.Get(pr.PBorderTopStyle))
}

// Scenario 3 : equal specificity, later source order wins.
func TestSourceOrderTieBreak(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AddClass(p, "a")
	f.tree.AddClass(p, "b")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `.a { color: green } .b { color: blue }`)

	assert.Equal(t, pr.RGB(0, 0, 255), f.color(t, p)) // blue
}

// Scenario 4 : em against the parent, rem against the root.
func TestLengthResolution(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	parent := f.tree.NewElement("div")
	f.tree.AddClass(parent, "parent")
	f.tree.AppendChild(f.body, parent)
	el := f.tree.NewElement("p")
	f.tree.AppendChild(parent, el)
	child := f.tree.NewElement("span")
	f.tree.AddClass(child, "rem-child")
	f.tree.AppendChild(el, child)
	sibling := f.tree.NewElement("span")
	f.tree.AddClass(sibling, "em-child")
	f.tree.AppendChild(el, sibling)

	f.addSheets(t, pa.OriginAuthor, `
		.parent { font-size: 10px }
		p { font-size: 2em }
		.rem-child { font-size: 1rem }
		.em-child { font-size: 1em }
	`)

	assert.Equal(t, pr.PxToDim(20), f.engine.GetComputedStyle(el).Get(pr.PFontSize))
	assert.Equal(t, pr.PxToDim(16), f.engine.GetComputedStyle(child).Get(pr.PFontSize))
	assert.Equal(t, pr.PxToDim(20), f.engine.GetComputedStyle(sibling).Get(pr.PFontSize))
}

// Scenario 5 : var() with fallback.
func TestCustomPropertyFallback(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	ids := f.addSheets(t, pa.OriginAuthor, `p { --c: red; color: var(--c, blue) }`)
	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, p))

	require.NoError(t, f.engine.UpdateStylesheet(ids[0], `p { color: var(--c, blue) }`))
	assert.Equal(t, pr.RGB(0, 0, 255), f.color(t, p))
}

// Scenario 6 : class change invalidation.
func TestClassChangeInvalidation(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `p.warn { color: orange }`)
	assert.Equal(t, pr.Black, f.color(t, p)) // initial

	f.tree.AddClass(p, "warn")
	f.engine.Invalidate(style.ClassChange{Element: p})
	assert.Equal(t, pr.RGB(255, 165, 0), f.color(t, p))

	f.tree.RemoveClass(p, "warn")
	f.engine.Invalidate(style.ClassChange{Element: p})
	assert.Equal(t, pr.Black, f.color(t, p))
}

func TestInlineStyle(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `p { color: red; width: 10px }`)
	require.NoError(t, f.engine.SetInlineStyle(p, "color: blue"))

	// inline beats author normal rules
	assert.Equal(t, pr.RGB(0, 0, 255), f.color(t, p))
	assert.Equal(t, pr.PxToDim(10), f.engine.GetComputedStyle(p).Get(pr.PWidth))

	// but author !important beats inline
	f.addSheets(t, pa.OriginAuthor, `p { color: green !important }`)
	assert.Equal(t, pr.RGB(0, 128, 0), f.color(t, p))
}

func TestStyleAttributeFromTree(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.SetAttr(p, "style", "color: teal")
	f.tree.AppendChild(f.body, p)

	assert.Equal(t, pr.RGB(0, 128, 128), f.color(t, p))
}

func TestOriginOrdering(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginUserAgent, `p { color: black; width: 1px }`)
	f.addSheets(t, pa.OriginUser, `p { color: green; width: 2px !important }`)
	f.addSheets(t, pa.OriginAuthor, `p { color: red; width: 3px !important }`)

	// author normal beats user normal
	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, p))
	// user important beats author important
	assert.Equal(t, pr.PxToDim(2), f.engine.GetComputedStyle(p).Get(pr.PWidth))
}

func TestUnsetKeyword(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	parent := f.tree.NewElement("div")
	f.tree.AppendChild(f.body, parent)
	child := f.tree.NewElement("p")
	f.tree.AppendChild(parent, child)

	f.addSheets(t, pa.OriginAuthor, `
		div { color: red; width: 10px }
		p { color: unset; width: unset }
	`)

	childStyle := f.engine.GetComputedStyle(child)
	// unset = inherit for color
	assert.Equal(t, pr.RGB(255, 0, 0), childStyle.Get(pr.PColor))
	// unset = initial for width
	assert.Equal(t, pr.Keyword("auto"), childStyle.Get(pr.PWidth))
}

func TestExplicitInheritAndInitial(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	parent := f.tree.NewElement("div")
	f.tree.AppendChild(f.body, parent)
	child := f.tree.NewElement("p")
	f.tree.AppendChild(parent, child)

	f.addSheets(t, pa.OriginAuthor, `
		div { width: 10px; color: red }
		p { width: inherit; color: initial }
	`)

	childStyle := f.engine.GetComputedStyle(child)
	assert.Equal(t, pr.PxToDim(10), childStyle.Get(pr.PWidth))
	assert.Equal(t, pr.Black, childStyle.Get(pr.PColor))
}

// A length in px and the same length through calc() reduce to
// identical float32 values.
func TestCalcRoundTrip(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	a := f.tree.NewElement("p")
	f.tree.AddClass(a, "plain")
	f.tree.AppendChild(f.body, a)
	b := f.tree.NewElement("p")
	f.tree.AddClass(b, "calced")
	f.tree.AppendChild(f.body, b)

	f.addSheets(t, pa.OriginAuthor, `
		p { font-size: 10px }
		.plain { width: 35px; margin-top: 12px }
		.calced { width: calc(5px + 3 * 10px); margin-top: calc((2px + 1em) / 1) }
	`)

	plain := f.engine.GetComputedStyle(a)
	calced := f.engine.GetComputedStyle(b)
	assert.Equal(t, plain.Get(pr.PWidth), calced.Get(pr.PWidth))
	assert.Equal(t, plain.Get(pr.PMarginTop), calced.Get(pr.PMarginTop))
}

func TestCalcWithPercentIsRetained(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `p { width: calc(100% - 10px) }`)

	value := f.engine.GetComputedStyle(p).Get(pr.PWidth)
	fn, ok := value.(pr.FuncCall)
	require.True(t, ok, "expected the calc() to be retained, got %v", value)
	assert.Equal(t, "calc", fn.Name)
}

func TestPercentRetainedForLayout(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `p { width: 50%; margin-left: 10%; font-size: 50% }`)

	cv := f.engine.GetComputedStyle(p)
	assert.Equal(t, pr.NewDim(50, pr.Perc), cv.Get(pr.PWidth))
	assert.Equal(t, pr.NewDim(10, pr.Perc), cv.Get(pr.PMarginLeft))
	// font-size percentages resolve against the parent
	assert.Equal(t, pr.PxToDim(8), cv.Get(pr.PFontSize))
}

// No cyclic var() chain may loop; the value is the initial one.
func TestCircularCustomProperties(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `
		p { --a: var(--b); --b: var(--a); color: var(--a) }
	`)

	// the initial color, not a hang
	assert.Equal(t, pr.Black, f.color(t, p))

	// self reference
	f2 := newFixture(style.EngineConfig{})
	q := f2.tree.NewElement("p")
	f2.tree.AppendChild(f2.body, q)
	f2.addSheets(t, pa.OriginAuthor, `p { --a: var(--a); color: var(--a) }`)
	assert.Equal(t, pr.Black, f2.color(t, q))
}

func TestCustomPropertyInheritance(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	parent := f.tree.NewElement("div")
	f.tree.AppendChild(f.body, parent)
	child := f.tree.NewElement("p")
	f.tree.AppendChild(parent, child)

	f.addSheets(t, pa.OriginAuthor, `
		div { --c: purple }
		p { color: var(--c) }
	`)

	// custom properties inherit through the chain
	assert.Equal(t, pr.RGB(128, 0, 128), f.color(t, child))
}

func TestVarInCalc(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `p { --w: 10px; width: calc(var(--w) * 3) }`)
	assert.Equal(t, pr.PxToDim(30), f.engine.GetComputedStyle(p).Get(pr.PWidth))
}

func TestViewportUnits(t *testing.T) {
	config := style.EngineConfig{Viewport: style.Viewport{Width: 1000, Height: 500, DevicePixelRatio: 1, RootFontSizePx: 16}}
	f := newFixture(config)
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `p { width: 10vw; height: 20vh }`)

	cv := f.engine.GetComputedStyle(p)
	assert.Equal(t, pr.PxToDim(100), cv.Get(pr.PWidth))
	assert.Equal(t, pr.PxToDim(100), cv.Get(pr.PHeight))
	assert.True(t, cv.DependsOnViewport())

	// a viewport change refreshes viewport-dependent styles
	f.engine.SetViewport(style.Viewport{Width: 500, Height: 500, DevicePixelRatio: 1, RootFontSizePx: 16})
	cv = f.engine.GetComputedStyle(p)
	assert.Equal(t, pr.PxToDim(50), cv.Get(pr.PWidth))
}

func TestMediaQueries(t *testing.T) {
	config := style.EngineConfig{Viewport: style.Viewport{Width: 800, Height: 600, DevicePixelRatio: 1, RootFontSizePx: 16}}
	f := newFixture(config)
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `
		p { color: black }
		@media (min-width: 600px) { p { color: red } }
		@media (min-width: 1200px) { p { color: blue } }
	`)

	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, p))

	// growing the viewport flips the second media rule on
	f.engine.SetViewport(style.Viewport{Width: 1300, Height: 600, DevicePixelRatio: 1, RootFontSizePx: 16})
	assert.Equal(t, pr.RGB(0, 0, 255), f.color(t, p))
}

func TestPseudoElementStyles(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	f.addSheets(t, pa.OriginAuthor, `
		p { color: red; font-size: 10px }
		p::before { color: blue; font-size: 2em }
	`)

	f.engine.ComputeStyles()
	before := f.engine.GetPseudoStyle(p, "before")
	require.NotNil(t, before)
	assert.Equal(t, pr.RGB(0, 0, 255), before.Get(pr.PColor))
	// the pseudo-element inherits and resolves against the element
	assert.Equal(t, pr.PxToDim(20), before.Get(pr.PFontSize))

	assert.Nil(t, f.engine.GetPseudoStyle(p, "after"))
}

func TestStateChangeInvalidation(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	a := f.tree.NewElement("a")
	f.tree.AppendChild(f.body, a)

	f.addSheets(t, pa.OriginAuthor, `a:hover { color: fuchsia }`)
	assert.Equal(t, pr.Black, f.color(t, a))

	f.tree.SetState(a, selector.StateHover, true)
	f.engine.Invalidate(style.StateChange{Element: a})
	assert.Equal(t, pr.RGB(255, 0, 255), f.color(t, a))
}

func TestStylesheetRemoval(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)

	ids := f.addSheets(t, pa.OriginAuthor, `p { color: red }`, `p { color: blue }`)
	assert.Equal(t, pr.RGB(0, 0, 255), f.color(t, p))

	require.NoError(t, f.engine.RemoveStylesheet(ids[1]))
	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, p))

	assert.Error(t, f.engine.RemoveStylesheet(style.StyleSheetId(99)))
}

// After any invalidation, the incremental result equals a
// from-scratch compute on the same state.
func TestInvalidationCompleteness(t *testing.T) {
	build := func() (*fixture, dom.ElementId, dom.ElementId) {
		f := newFixture(style.EngineConfig{})
		div := f.tree.NewElement("div")
		f.tree.AppendChild(f.body, div)
		p := f.tree.NewElement("p")
		f.tree.AppendChild(div, p)
		f.addSheets(t, pa.OriginAuthor, `
			div.hot p { color: red }
			p:first-child { width: 1px }
			p { color: green }
		`)
		return f, div, p
	}

	// incremental path
	f, div, p := build()
	f.engine.ComputeStyles()
	f.tree.AddClass(div, "hot")
	f.engine.Invalidate(style.ClassChange{Element: div})
	incremental := f.engine.ComputeStyles()

	// from-scratch path on the same final state
	g, gdiv, gp := build()
	g.tree.AddClass(gdiv, "hot")
	scratch := g.engine.ComputeStyles()

	for _, prop := range []pr.KnownProp{pr.PColor, pr.PWidth, pr.PFontSize} {
		assert.Equal(t,
			scratch.Find(gp).Style.Get(prop),
			incremental.Find(p).Style.Get(prop),
			"property %s differs from a from-scratch compute", prop)
	}
	assert.Equal(t, pr.RGB(255, 0, 0), incremental.Find(p).Style.Get(pr.PColor))
}

func TestElementInsertionInvalidation(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	first := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, first)

	f.addSheets(t, pa.OriginAuthor, `p:first-child { color: red } p { width: 1px }`)
	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, first))

	// prepending is not supported by the arena; append a sibling
	// and check :first-child still holds, then remove the first
	// and re-check the second
	second := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, second)
	f.engine.Invalidate(style.ElementInserted{Element: second})
	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, first))
	assert.Equal(t, pr.Black, f.color(t, second))

	f.tree.RemoveChild(first)
	f.engine.Invalidate(style.ElementRemoved{Element: first, Parent: f.body})
	assert.Equal(t, pr.RGB(255, 0, 0), f.color(t, second))
}

func TestStyleSharing(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	for i := 0; i < 10; i++ {
		li := f.tree.NewElement("li")
		f.tree.AppendChild(f.body, li)
	}
	f.addSheets(t, pa.OriginAuthor, `li { color: red; width: 4px }`)

	tree := f.engine.ComputeStyles()
	items := tree.Find(f.body).Children
	require.Len(t, items, 10)
	for _, item := range items[1:] {
		// identical inputs share one record
		assert.Same(t, items[0].Style, item.Style)
	}
	stats := f.engine.Stats()
	assert.NotZero(t, stats.CacheHits)
}

func TestComputeDiagnostics(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)
	f.addSheets(t, pa.OriginAuthor, `p { --a: var(--a); color: var(--a) }`)

	f.engine.ComputeStyles()
	diags := f.engine.ComputeDiagnostics()
	require.NotEmpty(t, diags)
	assert.Equal(t, pa.DiagCircularVariable, diags[0].Kind)
}

func TestKeyframesExposure(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	f.addSheets(t, pa.OriginAuthor, `
		@keyframes slide { from { margin-left: 0 } to { margin-left: 10px } }
	`)

	rule, ok := f.engine.Keyframes("slide")
	require.True(t, ok)
	assert.Len(t, rule.Frames, 2)

	_, ok = f.engine.Keyframes("missing")
	assert.False(t, ok)
}

func TestStyleTreePrint(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AddClass(p, "warn")
	f.tree.AppendChild(f.body, p)
	f.addSheets(t, pa.OriginAuthor, `p { color: red }`)

	tree := f.engine.ComputeStyles()
	out := tree.Print(f.tree)
	assert.Contains(t, out, "html")
	assert.Contains(t, out, "p.warn")
}

func TestUADefaults(t *testing.T) {
	tree := dom.NewTree()
	html := tree.NewElement("html")
	tree.SetRoot(html)
	body := tree.NewElement("body")
	tree.AppendChild(html, body)
	div := tree.NewElement("div")
	tree.AppendChild(body, div)
	span := tree.NewElement("span")
	tree.AppendChild(body, span)

	engine := style.NewEngine(tree, style.EngineConfig{})
	assert.Equal(t, pr.Keyword("block"), engine.GetComputedStyle(div).Get(pr.PDisplay))
	assert.Equal(t, pr.Keyword("inline"), engine.GetComputedStyle(span).Get(pr.PDisplay))
	assert.Equal(t, pr.PxToDim(8), engine.GetComputedStyle(body).Get(pr.PMarginTop))
}

func TestEmptyValueForGetOnRemovedElement(t *testing.T) {
	f := newFixture(style.EngineConfig{})
	p := f.tree.NewElement("p")
	f.tree.AppendChild(f.body, p)
	f.engine.ComputeStyles()

	f.tree.RemoveChild(p)
	f.engine.Invalidate(style.ElementRemoved{Element: p, Parent: f.body})
	assert.Nil(t, f.engine.GetComputedStyle(p))
}
