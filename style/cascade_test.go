package style

import (
	"testing"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	tu "github.com/Corten-Browser/Corten-CSSEngine/utils/testutils"
)

func TestDeclarationRank(t *testing.T) {
	// normal : inline > author > user > user-agent
	normal := []pa.Origin{pa.OriginUserAgent, pa.OriginUser, pa.OriginAuthor, pa.OriginInline}
	for i := 0; i+1 < len(normal); i++ {
		if declarationRank(normal[i], false) >= declarationRank(normal[i+1], false) {
			t.Fatalf("%s should rank below %s", normal[i], normal[i+1])
		}
	}
	// important : user-agent > user > author
	important := []pa.Origin{pa.OriginAuthor, pa.OriginUser, pa.OriginUserAgent}
	for i := 0; i+1 < len(important); i++ {
		if declarationRank(important[i], true) >= declarationRank(important[i+1], true) {
			t.Fatalf("important %s should rank below important %s", important[i], important[i+1])
		}
	}
	// every important beats every normal of author level
	tu.AssertEqual(t, declarationRank(pa.OriginAuthor, true) > declarationRank(pa.OriginInline, false), true)
}

func TestPriorityOrdering(t *testing.T) {
	base := priority{rank: 3, spec: selector.Specificity{0, 1, 0}, sheetOrder: 1, ruleOrder: 1}

	higherRank := base
	higherRank.rank = 5
	tu.AssertEqual(t, base.Less(higherRank), true)

	higherSpec := base
	higherSpec.spec = selector.Specificity{1, 0, 0}
	tu.AssertEqual(t, base.Less(higherSpec), true)

	laterSheet := base
	laterSheet.sheetOrder = 2
	tu.AssertEqual(t, base.Less(laterSheet), true)

	laterRule := base
	laterRule.ruleOrder = 2
	tu.AssertEqual(t, base.Less(laterRule), true)

	// rank dominates specificity, specificity dominates position
	tu.AssertEqual(t, higherSpec.Less(higherRank), true)
	tu.AssertEqual(t, laterSheet.Less(higherSpec), true)
}

func red() pr.DeclaredValue   { return pr.AsDeclared(pr.RGB(255, 0, 0)) }
func greenV() pr.DeclaredValue { return pr.AsDeclared(pr.RGB(0, 128, 0)) }

func TestResolveCascadeKeepsBest(t *testing.T) {
	colorKey := pr.PColor.Key()
	rules := []applicable{
		{
			decls:      []declEntry{{key: colorKey, value: red()}},
			spec:       selector.Specificity{1, 0, 0},
			origin:     pa.OriginAuthor,
			sheetOrder: 0, ruleOrder: 0,
		},
		{
			decls:      []declEntry{{key: colorKey, value: greenV(), important: true}},
			spec:       selector.Specificity{0, 0, 1},
			origin:     pa.OriginAuthor,
			sheetOrder: 0, ruleOrder: 1,
		},
	}
	out := resolveCascade(rules)
	// important beats the higher specificity
	tu.AssertEqual(t, out[colorKey].value, greenV())
}

// adding a strictly higher priority declaration never demotes it
func TestCascadeMonotonicity(t *testing.T) {
	colorKey := pr.PColor.Key()
	base := []applicable{
		{
			decls:      []declEntry{{key: colorKey, value: red()}},
			spec:       selector.Specificity{0, 1, 0},
			origin:     pa.OriginAuthor,
			sheetOrder: 1, ruleOrder: 4,
		},
	}
	stronger := []applicable{
		{decls: []declEntry{{key: colorKey, value: greenV()}}, spec: selector.Specificity{0, 2, 0},
			origin: pa.OriginAuthor, sheetOrder: 0, ruleOrder: 0},
		{decls: []declEntry{{key: colorKey, value: greenV()}}, spec: selector.Specificity{0, 1, 0},
			origin: pa.OriginAuthor, sheetOrder: 1, ruleOrder: 5},
		{decls: []declEntry{{key: colorKey, value: greenV(), important: true}}, spec: selector.Specificity{},
			origin: pa.OriginAuthor, sheetOrder: 0, ruleOrder: 0},
		{decls: []declEntry{{key: colorKey, value: greenV()}}, spec: selector.Specificity{},
			origin: pa.OriginInline, sheetOrder: inlineSheetOrder, ruleOrder: 0},
	}
	for _, extra := range stronger {
		out := resolveCascade(append([]applicable{extra}, base...))
		tu.AssertEqual(t, out[colorKey].value, greenV())
		// order independence
		out = resolveCascade(append(append([]applicable{}, base...), extra))
		tu.AssertEqual(t, out[colorKey].value, greenV())
	}
}
