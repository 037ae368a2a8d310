package properties

import (
	"testing"

	tu "github.com/Corten-Browser/Corten-CSSEngine/utils/testutils"
)

func TestPropFromName(t *testing.T) {
	for p := KnownProp(1); p < NbProperties; p++ {
		got, ok := PropFromName(p.String())
		tu.AssertEqual(t, ok, true)
		tu.AssertEqual(t, got, p)
	}
	_, ok := PropFromName("transition")
	tu.AssertEqual(t, ok, false)
}

func TestEveryPropertyHasAnInitialValue(t *testing.T) {
	for p := KnownProp(1); p < NbProperties; p++ {
		if InitialValues[p] == nil {
			t.Fatalf("missing initial value for %s", p)
		}
	}
}

func TestInheritedSet(t *testing.T) {
	tu.AssertEqual(t, Inherited.Has(PColor), true)
	tu.AssertEqual(t, Inherited.Has(PFontSize), true)
	tu.AssertEqual(t, Inherited.Has(PBorderTopWidth), false)
	tu.AssertEqual(t, Inherited.Has(PMarginTop), false)
	tu.AssertEqual(t, Inherited.Has(PDisplay), false)
}

func TestColorKeywords(t *testing.T) {
	red, ok := ColorFromKeyword("red")
	tu.AssertEqual(t, ok, true)
	tu.AssertEqual(t, red, RGB(255, 0, 0))

	transparent, ok := ColorFromKeyword("transparent")
	tu.AssertEqual(t, ok, true)
	tu.AssertEqual(t, transparent.A, uint8(0))

	_, ok = ColorFromKeyword("blurple")
	tu.AssertEqual(t, ok, false)
}

func TestUnits(t *testing.T) {
	for _, s := range []string{"px", "em", "rem", "%", "vw", "vh"} {
		unit, ok := UnitFromString(s)
		tu.AssertEqual(t, ok, true)
		tu.AssertEqual(t, unit.String(), s)
	}
	_, ok := UnitFromString("pt")
	tu.AssertEqual(t, ok, false)
}
