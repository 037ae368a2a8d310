package selector_test

import (
	"testing"

	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	"github.com/Corten-Browser/Corten-CSSEngine/dom"
	tu "github.com/Corten-Browser/Corten-CSSEngine/utils/testutils"
)

func mustParse(t *testing.T, s string) *selector.Selector {
	t.Helper()
	sel, err := selector.Parse(s)
	if err != nil {
		t.Fatalf("parsing %q: %s", s, err)
	}
	return sel
}

// The standard rule : count ids, count classes, attributes and
// pseudo-classes, count types and pseudo-elements. :not()
// contributes the specificity of its argument.
func TestSpecificity(t *testing.T) {
	for _, test := range []struct {
		selector string
		expected selector.Specificity
	}{
		{"*", selector.Specificity{0, 0, 0}},
		{"p", selector.Specificity{0, 0, 1}},
		{".warn", selector.Specificity{0, 1, 0}},
		{"#x", selector.Specificity{1, 0, 0}},
		{"p.warn", selector.Specificity{0, 1, 1}},
		{"p#x.warn", selector.Specificity{1, 1, 1}},
		{"div p", selector.Specificity{0, 0, 2}},
		{"ul > li.item a", selector.Specificity{0, 1, 3}},
		{"[href]", selector.Specificity{0, 1, 0}},
		{`a[href^="https"]`, selector.Specificity{0, 1, 1}},
		{"a:hover", selector.Specificity{0, 1, 1}},
		{"li:first-child", selector.Specificity{0, 1, 1}},
		{"li:nth-child(2n+1)", selector.Specificity{0, 1, 1}},
		{"p:not(.warn)", selector.Specificity{0, 1, 1}},
		{"p:not(#x)", selector.Specificity{1, 0, 1}},
		{"p::before", selector.Specificity{0, 0, 2}},
		{"*:hover", selector.Specificity{0, 1, 0}},
	} {
		sel := mustParse(t, test.selector)
		tu.AssertEqual(t, sel.Specificity(), test.expected)
	}
}

func TestSpecificityComparison(t *testing.T) {
	weaker := []selector.Specificity{{0, 0, 0}, {0, 0, 5}, {0, 1, 0}, {0, 2, 3}, {1, 0, 0}}
	for i := 0; i+1 < len(weaker); i++ {
		tu.AssertEqual(t, weaker[i].Less(weaker[i+1]), true)
		tu.AssertEqual(t, weaker[i+1].Less(weaker[i]), false)
		tu.AssertEqual(t, weaker[i].Less(weaker[i]), false)
	}
}

func TestParseGroup(t *testing.T) {
	group, err := selector.ParseGroup("p, .warn , #x")
	tu.AssertEqual(t, err, nil)
	tu.AssertEqual(t, len(group), 3)

	_, err = selector.ParseGroup("p, ")
	tu.AssertEqual(t, err, selector.ErrEmptySelector)

	_, err = selector.ParseGroup("p:what")
	if err == nil {
		t.Fatal("expected an error for an unknown pseudo-class")
	}
}

func TestParseNth(t *testing.T) {
	for _, test := range []struct {
		input string
		a, b  int
		ok    bool
	}{
		{"odd", 2, 1, true},
		{"even", 2, 0, true},
		{"3", 0, 3, true},
		{"2n+1", 2, 1, true},
		{"2n", 2, 0, true},
		{"n", 1, 0, true},
		{"-n+3", -1, 3, true},
		{"+3n-2", 3, -2, true},
		{"10n+-1", 0, 0, false},
		{"foo", 0, 0, false},
	} {
		a, b, ok := selector.ParseNth(test.input)
		tu.AssertEqual(t, ok, test.ok)
		if ok {
			tu.AssertEqual(t, [2]int{a, b}, [2]int{test.a, test.b})
		}
	}
}

// buildDoc builds :
//
//	<div id="root" class="container">
//	  <p class="intro first">
//	  <p class="body" data-x="a b">
//	  <span>
//	    <a href="https://example.com">
//	  <p id="last">
func buildDoc() (*dom.Tree, map[string]dom.ElementId) {
	tree := dom.NewTree()
	ids := map[string]dom.ElementId{}

	root := tree.NewElement("div")
	tree.SetId(root, "root")
	tree.AddClass(root, "container")
	tree.SetRoot(root)
	ids["root"] = root

	intro := tree.NewElement("p")
	tree.AddClass(intro, "intro")
	tree.AddClass(intro, "first")
	tree.AppendChild(root, intro)
	ids["intro"] = intro

	body := tree.NewElement("p")
	tree.AddClass(body, "body")
	tree.SetAttr(body, "data-x", "a b")
	tree.AppendChild(root, body)
	ids["body"] = body

	span := tree.NewElement("span")
	tree.AppendChild(root, span)
	ids["span"] = span

	link := tree.NewElement("a")
	tree.SetAttr(link, "href", "https://example.com")
	tree.AppendChild(span, link)
	ids["link"] = link

	last := tree.NewElement("p")
	tree.SetId(last, "last")
	tree.AppendChild(root, last)
	ids["last"] = last

	return tree, ids
}

func TestMatchSimple(t *testing.T) {
	tree, ids := buildDoc()
	for _, test := range []struct {
		selector string
		element  string
		matches  bool
	}{
		{"*", "intro", true},
		{"p", "intro", true},
		{"P", "intro", true}, // case-insensitive
		{"div", "intro", false},
		{".intro", "intro", true},
		{".intro.first", "intro", true},
		{".intro.missing", "intro", false},
		{"#root", "root", true},
		{"#root", "intro", false},
		{"p.intro", "intro", true},
		{"span", "span", true},
	} {
		sel := mustParse(t, test.selector)
		got := selector.Matches(sel, tree.Element(ids[test.element]))
		if got != test.matches {
			t.Fatalf("%q on %s: expected %v, got %v", test.selector, test.element, test.matches, got)
		}
	}
}

func TestMatchAttributes(t *testing.T) {
	tree, ids := buildDoc()
	for _, test := range []struct {
		selector string
		element  string
		matches  bool
	}{
		{"[data-x]", "body", true},
		{"[data-x]", "intro", false},
		{`[data-x="a b"]`, "body", true},
		{`[data-x="a"]`, "body", false},
		{`[data-x~="a"]`, "body", true},
		{`[data-x~="b"]`, "body", true},
		{`[data-x~="c"]`, "body", false},
		{`[href^="https"]`, "link", true},
		{`[href$=".com"]`, "link", true},
		{`[href*="example"]`, "link", true},
		{`[href|="https"]`, "link", false},
		{`[href^="http:"]`, "link", false},
	} {
		sel := mustParse(t, test.selector)
		got := selector.Matches(sel, tree.Element(ids[test.element]))
		if got != test.matches {
			t.Fatalf("%q on %s: expected %v, got %v", test.selector, test.element, test.matches, got)
		}
	}
}

func TestMatchCombinators(t *testing.T) {
	tree, ids := buildDoc()
	for _, test := range []struct {
		selector string
		element  string
		matches  bool
	}{
		{"div p", "intro", true},
		{"div a", "link", true},      // descendant crosses levels
		{"div > a", "link", false},   // child does not
		{"span > a", "link", true},
		{"#root > p", "intro", true},
		{".intro + p", "body", true},  // adjacent sibling
		{".intro + span", "body", false},
		{"p + span", "span", true},
		{".intro ~ span", "span", true}, // general sibling
		{".intro ~ p", "last", true},
		{"span ~ p", "last", true},
		{"#last ~ p", "intro", false}, // siblings look backwards only
	} {
		sel := mustParse(t, test.selector)
		got := selector.Matches(sel, tree.Element(ids[test.element]))
		if got != test.matches {
			t.Fatalf("%q on %s: expected %v, got %v", test.selector, test.element, test.matches, got)
		}
	}
}

func TestMatchPseudoClasses(t *testing.T) {
	tree, ids := buildDoc()
	tree.SetState(ids["link"], selector.StateHover, true)
	tree.SetState(ids["link"], selector.StateVisited, true)

	for _, test := range []struct {
		selector string
		element  string
		matches  bool
	}{
		{"a:hover", "link", true},
		{"a:visited", "link", true},
		{"a:focus", "link", false},
		{"a:active", "link", false},
		{"p:first-child", "intro", true},
		{"p:first-child", "body", false},
		{"p:last-child", "last", true},
		{"p:last-child", "body", false},
		{"p:nth-child(1)", "intro", true},
		{"p:nth-child(2)", "body", true},
		{"p:nth-child(odd)", "intro", true},
		{"p:nth-child(even)", "body", true},
		{"p:nth-child(2n+1)", "body", false},
		{"p:not(.intro)", "body", true},
		{"p:not(.intro)", "intro", false},
		{"p:not(#last)", "intro", true},
	} {
		sel := mustParse(t, test.selector)
		got := selector.Matches(sel, tree.Element(ids[test.element]))
		if got != test.matches {
			t.Fatalf("%q on %s: expected %v, got %v", test.selector, test.element, test.matches, got)
		}
	}

	// clearing the state clears the match
	tree.SetState(ids["link"], selector.StateHover, false)
	tu.AssertEqual(t, selector.Matches(mustParse(t, "a:hover"), tree.Element(ids["link"])), false)
}

func TestMatchPseudoElement(t *testing.T) {
	tree, ids := buildDoc()
	sel := mustParse(t, "p.intro::before")
	tu.AssertEqual(t, sel.PseudoElement, "before")
	// the pseudo-element does not prevent the match itself
	tu.AssertEqual(t, selector.Matches(sel, tree.Element(ids["intro"])), true)
}
