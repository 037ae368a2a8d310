package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// pairs of token kinds whose serializations must be
// separated to re-tokenize identically
// http://drafts.csswg.org/csswg/css-syntax/#serialization-tables
var badPairs = map[[2]string]bool{}

func init() {
	for _, a := range []string{"ident", "at-keyword", "hash", "dimension", "#", "-", "number"} {
		for _, b := range []string{"ident", "function", "url", "number", "percentage", "dimension"} {
			badPairs[[2]string{a, b}] = true
		}
	}
	for _, a := range []string{"#", "-", "number", "@"} {
		for _, b := range []string{"ident", "function", "url"} {
			badPairs[[2]string{a, b}] = true
		}
	}
	for _, a := range []string{"$", "*", "^", "~", "|"} {
		badPairs[[2]string{a, "="}] = true
	}
	badPairs[[2]string{"ident", "() block"}] = true
	badPairs[[2]string{"|", "|"}] = true
	badPairs[[2]string{"/", "*"}] = true
}

// Serialize writes back the nodes to CSS syntax, so that
// re-tokenizing the output yields the same token list.
func Serialize(l []Token) string {
	var w strings.Builder
	serializeTo(l, &w)
	return w.String()
}

func serializeTo(nodes []Token, w *strings.Builder) {
	var previousType string
	for _, node := range nodes {
		serializationType := node.Kind().String()
		if literal, ok := node.(Literal); ok {
			serializationType = literal.Value
		}
		if badPairs[[2]string{previousType, serializationType}] {
			w.WriteString("/**/")
		}
		serializeToken(node, w)
		previousType = serializationType
	}
}

func serializeToken(node Token, w *strings.Builder) {
	switch t := node.(type) {
	case Whitespace:
		w.WriteString(t.Value)
	case Comment:
		w.WriteString("/*")
		w.WriteString(t.Value)
		w.WriteString("*/")
	case Ident:
		w.WriteString(serializeIdentifier(string(t.Value)))
	case AtKeyword:
		w.WriteString("@")
		w.WriteString(serializeIdentifier(string(t.Value)))
	case Hash:
		w.WriteString("#")
		if t.IsIdentifier {
			w.WriteString(serializeIdentifier(t.Value))
		} else {
			w.WriteString(serializeName(t.Value))
		}
	case String:
		w.WriteString(`"`)
		w.WriteString(serializeStringValue(t.Value))
		if !t.isError {
			w.WriteString(`"`)
		}
	case URL:
		w.WriteString("url(")
		w.WriteString(serializeURLValue(t.Value))
		if !t.isError {
			w.WriteString(")")
		}
	case Number:
		w.WriteString(t.Representation)
	case Percentage:
		w.WriteString(t.Representation)
		w.WriteString("%")
	case Dimension:
		w.WriteString(t.Representation)
		// Disambiguate with scientific notation
		unit := string(t.Unit)
		if unit == "e" || unit == "E" || strings.HasPrefix(unit, "e-") || strings.HasPrefix(unit, "E-") {
			w.WriteString("\\65 ")
			w.WriteString(serializeName(unit[1:]))
		} else {
			w.WriteString(serializeIdentifier(unit))
		}
	case Literal:
		w.WriteString(t.Value)
	case ParseError:
		switch t.kind {
		case errBadString:
			w.WriteString("\"[bad string]\n")
		case errBadURL:
			w.WriteString("url([bad url])")
		case errEOFInString, errEOFInURL:
			// pass
		default:
			w.WriteString("")
		}
	case ParenthesesBlock:
		w.WriteString("(")
		serializeTo(*t.Content, w)
		w.WriteString(")")
	case SquareBracketsBlock:
		w.WriteString("[")
		serializeTo(*t.Content, w)
		w.WriteString("]")
	case CurlyBracketsBlock:
		w.WriteString("{")
		serializeTo(*t.Content, w)
		w.WriteString("}")
	case FunctionBlock:
		w.WriteString(serializeIdentifier(string(t.Name)))
		w.WriteString("(")
		serializeTo(*t.Arguments, w)
		w.WriteString(")")
	default:
		panic(fmt.Sprintf("can not serialize token %v", node))
	}
}

// serializeIdentifier escapes any string so that it
// would parse as an Ident with the same value.
func serializeIdentifier(value string) string {
	if value == "-" {
		return `\-`
	}
	if len(value) >= 2 && value[:2] == "--" {
		return "--" + serializeName(value[2:])
	}
	var result string
	if value == "" {
		return ""
	}
	if value[0] == '-' {
		result = "-"
		value = value[1:]
	}
	if value == "" {
		return result
	}
	c, w := utf8.DecodeRuneInString(value)
	var suffix string
	switch {
	case c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		suffix = string(c)
	case c == '\n':
		suffix = `\A `
	case '0' <= c && c <= '9':
		suffix = fmt.Sprintf("\\%X ", c)
	case c > 0x7F:
		suffix = string(c)
	default:
		suffix = "\\" + string(c)
	}
	return result + suffix + serializeName(value[w:])
}

func serializeName(value string) string {
	var chunks strings.Builder
	for _, c := range value {
		var mapped string
		switch {
		case c == '-' || c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9'):
			mapped = string(c)
		case c == '\n':
			mapped = `\A `
		case c > 0x7F:
			mapped = string(c)
		default:
			mapped = "\\" + string(c)
		}
		chunks.WriteString(mapped)
	}
	return chunks.String()
}

func serializeStringValue(value string) string {
	var chunks strings.Builder
	for _, c := range value {
		var mapped string
		switch c {
		case '"':
			mapped = `\"`
		case '\\':
			mapped = `\\`
		case '\n':
			mapped = `\A `
		default:
			mapped = string(c)
		}
		chunks.WriteString(mapped)
	}
	return chunks.String()
}

func serializeURLValue(value string) string {
	var chunks strings.Builder
	for _, c := range value {
		var mapped string
		switch c {
		case '\'', '"', '\\', '(', ')':
			mapped = "\\" + string(c)
		case ' ':
			mapped = `\ `
		case '\t':
			mapped = `\9 `
		case '\n':
			mapped = `\A `
		default:
			mapped = string(c)
		}
		chunks.WriteString(mapped)
	}
	return chunks.String()
}
