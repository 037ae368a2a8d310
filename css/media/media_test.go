package media

import (
	"testing"

	tu "github.com/Corten-Browser/Corten-CSSEngine/utils/testutils"
)

func TestParseQueryList(t *testing.T) {
	queries, err := ParseQueryList("screen and (min-width: 600px), print")
	tu.AssertEqual(t, err, nil)
	tu.AssertEqual(t, len(queries), 2)
	tu.AssertEqual(t, queries[0].Type, "screen")
	tu.AssertEqual(t, len(queries[0].Features), 1)
	tu.AssertEqual(t, queries[0].Features[0].Name, "min-width")
	tu.AssertEqual(t, queries[0].Features[0].Value, float32(600))
	tu.AssertEqual(t, queries[1].Type, "print")

	queries, err = ParseQueryList("(min-width: 20em) and (max-width: 50em)")
	tu.AssertEqual(t, err, nil)
	tu.AssertEqual(t, len(queries[0].Features), 2)
	tu.AssertEqual(t, queries[0].Features[0].Value, float32(320))

	_, err = ParseQueryList("screen and (min-width: 600px")
	if err == nil {
		t.Fatal("expected an error for an unclosed feature")
	}
}

func TestQueryMatches(t *testing.T) {
	for _, test := range []struct {
		query         string
		width, height float32
		matches       bool
	}{
		{"", 800, 600, true},
		{"all", 800, 600, true},
		{"screen", 800, 600, true},
		{"print", 800, 600, false},
		{"not print", 800, 600, true},
		{"only screen", 800, 600, true},
		{"(min-width: 600px)", 800, 600, true},
		{"(min-width: 600px)", 599, 600, false},
		{"(max-width: 600px)", 600, 600, true},
		{"(max-width: 600px)", 601, 600, false},
		{"(min-height: 500px) and (max-height: 700px)", 800, 600, true},
		{"(min-height: 700px)", 800, 600, false},
		{"screen and (min-width: 600px), print", 800, 600, true},
		{"print, (max-width: 100px)", 800, 600, false},
		{"not screen and (min-width: 600px)", 800, 600, false},
		// unknown features are permissive
		{"(orientation: landscape)", 800, 600, true},
	} {
		queries, err := ParseQueryList(test.query)
		tu.AssertEqual(t, err, nil)
		if got := queries.Matches(test.width, test.height); got != test.matches {
			t.Fatalf("%q at %gx%g: expected %v, got %v", test.query, test.width, test.height, test.matches, got)
		}
	}
}

func TestDependsOnViewport(t *testing.T) {
	queries, _ := ParseQueryList("screen and (min-width: 600px)")
	tu.AssertEqual(t, queries.DependsOnViewport(), true)

	queries, _ = ParseQueryList("print")
	tu.AssertEqual(t, queries.DependsOnViewport(), false)

	queries, _ = ParseQueryList("")
	tu.AssertEqual(t, queries.DependsOnViewport(), false)
}
