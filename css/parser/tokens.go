package parser

import (
	"fmt"

	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// Pos is a position in the CSS source, used
// in error messages and diagnostics.
type Pos struct {
	Line, Column int
}

func newPosition(line, column int) Pos { return Pos{Line: line, Column: column} }

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// TokenKind identifies the concrete type of a Token.
type TokenKind uint8

const (
	KWhitespace TokenKind = iota
	KComment
	KIdent
	KAtKeyword
	KHash
	KString
	KURL
	KNumber
	KPercentage
	KDimension
	KLiteral
	KParseError
	KFunctionBlock
	KCurlyBracketsBlock
	KSquareBracketsBlock
	KParenthesesBlock
)

func (k TokenKind) String() string {
	switch k {
	case KWhitespace:
		return "whitespace"
	case KComment:
		return "comment"
	case KIdent:
		return "ident"
	case KAtKeyword:
		return "at-keyword"
	case KHash:
		return "hash"
	case KString:
		return "string"
	case KURL:
		return "url"
	case KNumber:
		return "number"
	case KPercentage:
		return "percentage"
	case KDimension:
		return "dimension"
	case KLiteral:
		return "literal"
	case KParseError:
		return "error"
	case KFunctionBlock:
		return "function"
	case KCurlyBracketsBlock:
		return "{} block"
	case KSquareBracketsBlock:
		return "[] block"
	case KParenthesesBlock:
		return "() block"
	default:
		return "<invalid token>"
	}
}

// Token is a component value, as defined by the CSS syntax level 3.
// Blocks and functions contain their own nested tokens.
type Token interface {
	Pos() Pos
	Kind() TokenKind
}

// LowerableString is an identifier which is
// compared ASCII case-insensitively.
type LowerableString string

// Lower returns the ASCII lower case version of the string.
func (s LowerableString) Lower() string { return utils.AsciiLower(string(s)) }

type Whitespace struct {
	Value string
	pos   Pos
}

type Comment struct {
	Value string
	pos   Pos
}

type Ident struct {
	Value LowerableString
	pos   Pos
}

type AtKeyword struct {
	Value LowerableString
	pos   Pos
}

type Hash struct {
	Value        string
	pos          Pos
	IsIdentifier bool
}

type String struct {
	Value   string
	pos     Pos
	isError bool
}

type URL struct {
	Value   string
	pos     Pos
	isError bool
}

type numeric struct {
	Representation string
	pos            Pos
	Value          utils.Fl
	IsInteger      bool
}

type Number numeric

type Percentage numeric

type Dimension struct {
	numeric
	Unit LowerableString
}

type Literal struct {
	Value string
	pos   Pos
}

// ParseError is a recoverable syntax error, kept in the token
// stream so that callers decide how much context to drop.
type ParseError struct {
	kind    errorKind
	Message string
	pos     Pos
}

type FunctionBlock struct {
	Name      LowerableString
	Arguments *[]Token
	pos       Pos
}

type CurlyBracketsBlock struct {
	Content *[]Token
	pos     Pos
}

type SquareBracketsBlock struct {
	Content *[]Token
	pos     Pos
}

type ParenthesesBlock struct {
	Content *[]Token
	pos     Pos
}

type errorKind uint8

const (
	errBadString errorKind = iota
	errBadURL
	errEOFInString
	errEOFInURL
	errUnmatched
	errEmpty
	errInvalid
)

func (e errorKind) String() string {
	switch e {
	case errBadString:
		return "bad-string"
	case errBadURL:
		return "bad-url"
	case errEOFInString:
		return "eof-in-string"
	case errEOFInURL:
		return "eof-in-url"
	case errUnmatched:
		return "unmatched"
	case errEmpty:
		return "empty"
	default:
		return "invalid"
	}
}

func (t Whitespace) Pos() Pos          { return t.pos }
func (t Comment) Pos() Pos             { return t.pos }
func (t Ident) Pos() Pos               { return t.pos }
func (t AtKeyword) Pos() Pos           { return t.pos }
func (t Hash) Pos() Pos                { return t.pos }
func (t String) Pos() Pos              { return t.pos }
func (t URL) Pos() Pos                 { return t.pos }
func (t Number) Pos() Pos              { return t.pos }
func (t Percentage) Pos() Pos          { return t.pos }
func (t Dimension) Pos() Pos           { return t.pos }
func (t Literal) Pos() Pos             { return t.pos }
func (t ParseError) Pos() Pos          { return t.pos }
func (t FunctionBlock) Pos() Pos       { return t.pos }
func (t CurlyBracketsBlock) Pos() Pos  { return t.pos }
func (t SquareBracketsBlock) Pos() Pos { return t.pos }
func (t ParenthesesBlock) Pos() Pos    { return t.pos }

func (Whitespace) Kind() TokenKind          { return KWhitespace }
func (Comment) Kind() TokenKind             { return KComment }
func (Ident) Kind() TokenKind               { return KIdent }
func (AtKeyword) Kind() TokenKind           { return KAtKeyword }
func (Hash) Kind() TokenKind                { return KHash }
func (String) Kind() TokenKind              { return KString }
func (URL) Kind() TokenKind                 { return KURL }
func (Number) Kind() TokenKind              { return KNumber }
func (Percentage) Kind() TokenKind          { return KPercentage }
func (Dimension) Kind() TokenKind           { return KDimension }
func (Literal) Kind() TokenKind             { return KLiteral }
func (ParseError) Kind() TokenKind          { return KParseError }
func (FunctionBlock) Kind() TokenKind       { return KFunctionBlock }
func (CurlyBracketsBlock) Kind() TokenKind  { return KCurlyBracketsBlock }
func (SquareBracketsBlock) Kind() TokenKind { return KSquareBracketsBlock }
func (ParenthesesBlock) Kind() TokenKind    { return KParenthesesBlock }

// IsInt returns true for numbers written without
// a fractional part nor an exponent.
func (n Number) IsInt() bool { return n.IsInteger }

// Int truncates the value. Callers should check IsInt first.
func (n Number) Int() int { return int(n.Value) }

func (n Dimension) IsInt() bool { return n.IsInteger }
func (n Dimension) Int() int    { return int(n.Value) }

// NewLiteral builds a literal token, used when rebuilding
// token lists after var() substitution.
func NewLiteral(pos Pos, value string) Literal {
	return Literal{pos: pos, Value: value}
}

// NewFunctionBlock builds a function token.
func NewFunctionBlock(pos Pos, name LowerableString, arguments []Token) FunctionBlock {
	return FunctionBlock{pos: pos, Name: name, Arguments: &arguments}
}

// NewParenthesesBlock builds a parentheses block token.
func NewParenthesesBlock(pos Pos, content []Token) ParenthesesBlock {
	return ParenthesesBlock{pos: pos, Content: &content}
}

// TokensIter is a convenience iterator over a token list.
type TokensIter struct {
	tokens []Token
	index  int
}

func NewIter(tokens []Token) *TokensIter { return &TokensIter{tokens: tokens} }

func (it *TokensIter) HasNext() bool { return it.index < len(it.tokens) }

// Next returns the next token, or nil at the end of the list.
func (it *TokensIter) Next() Token {
	if !it.HasNext() {
		return nil
	}
	t := it.tokens[it.index]
	it.index++
	return t
}

// NextSignificant returns the next token, skipping
// whitespace and comments, or nil.
func (it *TokensIter) NextSignificant() Token {
	for it.HasNext() {
		token := it.Next()
		if token.Kind() != KWhitespace && token.Kind() != KComment {
			return token
		}
	}
	return nil
}

// PeekSignificant returns the next significant token
// without consuming it.
func (it *TokensIter) PeekSignificant() Token {
	save := it.index
	t := it.NextSignificant()
	it.index = save
	return t
}

// SplitOnComma splits the tokens on top-level commas,
// trimming whitespace and comments on both ends of each chunk.
func SplitOnComma(tokens []Token) [][]Token {
	var (
		out     [][]Token
		current []Token
	)
	for _, t := range tokens {
		if lit, ok := t.(Literal); ok && lit.Value == "," {
			out = append(out, TrimWhitespace(current))
			current = nil
			continue
		}
		current = append(current, t)
	}
	out = append(out, TrimWhitespace(current))
	return out
}

// TrimWhitespace removes leading and trailing whitespace and comments.
func TrimWhitespace(tokens []Token) []Token {
	start, end := 0, len(tokens)
	for start < end && (tokens[start].Kind() == KWhitespace || tokens[start].Kind() == KComment) {
		start++
	}
	for start < end && (tokens[end-1].Kind() == KWhitespace || tokens[end-1].Kind() == KComment) {
		end--
	}
	return tokens[start:end]
}

// RemoveWhitespace returns the significant tokens of the list.
func RemoveWhitespace(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind() != KWhitespace && t.Kind() != KComment {
			out = append(out, t)
		}
	}
	return out
}
