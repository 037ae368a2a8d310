package parser

import (
	"testing"

	"github.com/Corten-Browser/Corten-CSSEngine/utils"
	tu "github.com/Corten-Browser/Corten-CSSEngine/utils/testutils"
)

func tokenKinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind()
	}
	return out
}

func TestTokenizeBasic(t *testing.T) {
	tokens := Tokenize([]byte(`p { color : red ; }`), true)
	tu.AssertEqual(t, tokenKinds(tokens), []TokenKind{
		KIdent, KWhitespace, KCurlyBracketsBlock,
	})
	block := tokens[2].(CurlyBracketsBlock)
	inner := RemoveWhitespace(*block.Content)
	tu.AssertEqual(t, tokenKinds(inner), []TokenKind{KIdent, KLiteral, KIdent, KLiteral})
	tu.AssertEqual(t, string(inner[0].(Ident).Value), "color")
	tu.AssertEqual(t, inner[1].(Literal).Value, ":")
	tu.AssertEqual(t, string(inner[2].(Ident).Value), "red")
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := RemoveWhitespace(Tokenize([]byte(`12 -4.5 2e2 10px 50% 2.5em`), true))
	tu.AssertEqual(t, tokenKinds(tokens), []TokenKind{
		KNumber, KNumber, KNumber, KDimension, KPercentage, KDimension,
	})

	twelve := tokens[0].(Number)
	tu.AssertEqual(t, twelve.IsInt(), true)
	tu.AssertEqual(t, twelve.Int(), 12)

	neg := tokens[1].(Number)
	tu.AssertEqual(t, neg.IsInt(), false)
	tu.AssertEqual(t, neg.Value, utils.Fl(-4.5))

	px := tokens[3].(Dimension)
	tu.AssertEqual(t, px.Unit.Lower(), "px")
	tu.AssertEqual(t, px.Value, utils.Fl(10))

	perc := tokens[4].(Percentage)
	tu.AssertEqual(t, perc.Value, utils.Fl(50))

	em := tokens[5].(Dimension)
	tu.AssertEqual(t, em.Unit.Lower(), "em")
	tu.AssertEqual(t, em.Value, utils.Fl(2.5))
}

func TestTokenizeHashAndAt(t *testing.T) {
	tokens := RemoveWhitespace(Tokenize([]byte(`#main @media .cls`), true))
	tu.AssertEqual(t, tokenKinds(tokens), []TokenKind{KHash, KAtKeyword, KLiteral, KIdent})

	hash := tokens[0].(Hash)
	tu.AssertEqual(t, hash.Value, "main")
	tu.AssertEqual(t, hash.IsIdentifier, true)

	at := tokens[1].(AtKeyword)
	tu.AssertEqual(t, at.Value.Lower(), "media")
}

func TestTokenizeStrings(t *testing.T) {
	tokens := Tokenize([]byte(`"quo\"ted" 'single'`), true)
	tokens = RemoveWhitespace(tokens)
	tu.AssertEqual(t, tokens[0].(String).Value, `quo"ted`)
	tu.AssertEqual(t, tokens[1].(String).Value, "single")

	// unterminated : a String token plus an error token
	tokens = Tokenize([]byte(`"oops`), true)
	tu.AssertEqual(t, tokenKinds(tokens), []TokenKind{KString, KParseError})
}

func TestTokenizeFunctionsAndBlocks(t *testing.T) {
	tokens := RemoveWhitespace(Tokenize([]byte(`calc(1px + 2em) [x="1"] url(foo.png)`), true))
	tu.AssertEqual(t, tokenKinds(tokens), []TokenKind{KFunctionBlock, KSquareBracketsBlock, KURL})

	fn := tokens[0].(FunctionBlock)
	tu.AssertEqual(t, fn.Name.Lower(), "calc")
	args := RemoveWhitespace(*fn.Arguments)
	tu.AssertEqual(t, tokenKinds(args), []TokenKind{KDimension, KLiteral, KDimension})

	tu.AssertEqual(t, tokens[2].(URL).Value, "foo.png")
}

func TestTokenizeComments(t *testing.T) {
	withComments := Tokenize([]byte(`/* hi */ p`), false)
	tu.AssertEqual(t, tokenKinds(withComments), []TokenKind{KComment, KWhitespace, KIdent})

	skipped := Tokenize([]byte(`/* hi */ p`), true)
	tu.AssertEqual(t, tokenKinds(skipped), []TokenKind{KWhitespace, KIdent})
}

func TestTokenPositions(t *testing.T) {
	tokens := Tokenize([]byte("p {\n  color: red\n}"), true)
	block := tokens[2].(CurlyBracketsBlock)
	inner := RemoveWhitespace(*block.Content)
	colorPos := inner[0].Pos()
	tu.AssertEqual(t, colorPos, Pos{Line: 2, Column: 3})
}

func TestTokenizeUnclosedBlock(t *testing.T) {
	_, unclosed := tokenize([]byte(`p { color: red`), true)
	tu.AssertEqual(t, unclosed, true)
	_, unclosed = tokenize([]byte(`p { color: red }`), true)
	tu.AssertEqual(t, unclosed, false)
}

func TestSerializeRoundTrip(t *testing.T) {
	for _, css := range []string{
		`p.cls >#id[attr="v"] { color: #00ff00 }`,
		`a { width: calc(100% - 10px) }`,
		`@media screen and (min-width: 600px) { p { color: red } }`,
	} {
		first := Tokenize([]byte(css), true)
		second := Tokenize([]byte(Serialize(first)), true)
		tu.AssertEqual(t, Serialize(second), Serialize(first))
	}
}
