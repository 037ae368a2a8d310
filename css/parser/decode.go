package parser

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeStylesheetBytes converts raw stylesheet bytes to UTF-8,
// following the CSS syntax rules for determining the fallback
// encoding : a BOM wins, then the protocol charset from the
// transport (pass "" if unknown), then a leading @charset
// declaration, then UTF-8.
// https://www.w3.org/TR/css-syntax-3/#input-byte-stream
func DecodeStylesheetBytes(css []byte, protocolCharset string) (string, error) {
	if bytes.HasPrefix(css, []byte{0xEF, 0xBB, 0xBF}) {
		return string(css[3:]), nil
	}
	if bytes.HasPrefix(css, []byte{0xFE, 0xFF}) {
		return decodeWith(css[2:], unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	}
	if bytes.HasPrefix(css, []byte{0xFF, 0xFE}) {
		return decodeWith(css[2:], unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	}

	label := protocolCharset
	if label == "" {
		label = charsetRule(css)
	}
	if label == "" || label == "utf-8" || label == "utf8" {
		if !utf8.Valid(css) {
			return "", fmt.Errorf("stylesheet is not valid UTF-8")
		}
		return string(css), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("unknown stylesheet charset %q", label)
	}
	return decodeWith(css, enc)
}

func decodeWith(css []byte, enc encoding.Encoding) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), css)
	if err != nil {
		return "", fmt.Errorf("decoding stylesheet: %w", err)
	}
	return string(out), nil
}

// charsetRule extracts the label of a leading
// `@charset "...";` declaration, reading it as ASCII,
// or returns the empty string.
func charsetRule(css []byte) string {
	const prefix = `@charset "`
	if !bytes.HasPrefix(css, []byte(prefix)) {
		return ""
	}
	rest := css[len(prefix):]
	end := bytes.IndexByte(rest, '"')
	if end == -1 || !bytes.HasPrefix(rest[end:], []byte(`";`)) {
		return ""
	}
	return string(bytes.ToLower(rest[:end]))
}
