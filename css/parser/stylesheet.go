package parser

import (
	"fmt"
	"strings"

	"github.com/Corten-Browser/Corten-CSSEngine/css/media"
	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// Origin is the provenance of a stylesheet, driving
// the cascade ordering.
type Origin uint8

const (
	OriginUserAgent Origin = iota
	OriginUser
	OriginAuthor
	// OriginInline is reserved for the style attribute;
	// no stylesheet carries it.
	OriginInline
)

func (o Origin) String() string {
	switch o {
	case OriginUserAgent:
		return "user-agent"
	case OriginUser:
		return "user"
	case OriginAuthor:
		return "author"
	case OriginInline:
		return "inline"
	default:
		return "<invalid origin>"
	}
}

// ErrorKind classifies fatal stylesheet errors.
type ErrorKind string

const (
	ErrUnterminatedString ErrorKind = "unterminated-string"
	ErrUnterminatedBlock  ErrorKind = "unterminated-block"
	ErrUnbalancedParens   ErrorKind = "unbalanced-parentheses"
	ErrEmptySelector      ErrorKind = "empty-selector"
	ErrTopLevelGarbage    ErrorKind = "top-level-garbage"
	ErrResourceLimit      ErrorKind = "resource-limit-exceeded"
)

// Error is a fatal parse error : the whole stylesheet is rejected.
type Error struct {
	Message string
	Kind    ErrorKind
	Line    int
	Column  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("css parse error at %d:%d (%s): %s", e.Line, e.Column, e.Kind, e.Message)
}

func errorAt(pos Pos, kind ErrorKind, message string) *Error {
	return &Error{Line: pos.Line, Column: pos.Column, Kind: kind, Message: message}
}

// DiagKind classifies recoverable problems, attached to the
// stylesheet instead of failing it.
type DiagKind uint8

const (
	DiagInvalidSelector DiagKind = iota
	DiagUnsupportedProperty
	DiagInvalidValue
	DiagUnknownAtRule
	DiagInvalidMediaQuery
	DiagCircularVariable
	DiagComputation
)

func (k DiagKind) String() string {
	switch k {
	case DiagInvalidSelector:
		return "invalid selector"
	case DiagUnsupportedProperty:
		return "unsupported property"
	case DiagInvalidValue:
		return "invalid value"
	case DiagUnknownAtRule:
		return "unknown at-rule"
	case DiagInvalidMediaQuery:
		return "invalid media query"
	case DiagCircularVariable:
		return "circular custom property"
	case DiagComputation:
		return "computation error"
	default:
		return "<invalid diagnostic>"
	}
}

// Diagnostic is a recoverable problem found while parsing
// or computing, with the position of the offending construct.
type Diagnostic struct {
	Message string
	Kind    DiagKind
	Pos     Pos
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Pos, d.Message)
}

// Limits bounds the accepted stylesheet size. The zero value
// is replaced by DefaultLimits.
type Limits struct {
	MaxSheetBytes       int
	MaxRules            int
	MaxSelectorsPerRule int
	MaxSelectorDepth    int
}

// DefaultLimits is the standard resource bound :
// 10 MiB of source, 100 000 rules per sheet, 1 000 selectors
// per rule and 64 compounds per selector.
var DefaultLimits = Limits{
	MaxSheetBytes:       10 << 20,
	MaxRules:            100_000,
	MaxSelectorsPerRule: 1_000,
	MaxSelectorDepth:    64,
}

// RuleNode is a parsed top-level or nested rule.
type RuleNode interface {
	isRuleNode()
}

// StyleRule pairs a selector list with a declaration block.
type StyleRule struct {
	Selectors    []selector.Selector
	Declarations []Declaration
	// Index is the position of the rule in its stylesheet,
	// counting style rules only, in source order, across
	// nested conditional rules.
	Index int
	pos   Pos
}

// MediaRule retains its condition and the nested rules.
type MediaRule struct {
	Queries media.QueryList
	Rules   []RuleNode
	pos     Pos
}

// ImportRule retains the imported URL; fetching is the
// caller's concern.
type ImportRule struct {
	URL string
	pos Pos
}

// Keyframe is one step of a @keyframes rule.
type Keyframe struct {
	// Percents are the selector offsets, in [0, 100].
	Percents     []utils.Fl
	Declarations []Declaration
}

// KeyframesRule is a parsed @keyframes block. The engine
// stores it for an animation collaborator; it is not ticked.
type KeyframesRule struct {
	Name   string
	Frames []Keyframe
	pos    Pos
}

func (*StyleRule) isRuleNode()     {}
func (*MediaRule) isRuleNode()     {}
func (*ImportRule) isRuleNode()    {}
func (*KeyframesRule) isRuleNode() {}

func (r *StyleRule) Position() Pos     { return r.pos }
func (r *MediaRule) Position() Pos     { return r.pos }
func (r *ImportRule) Position() Pos    { return r.pos }
func (r *KeyframesRule) Position() Pos { return r.pos }

// Stylesheet owns an ordered list of parsed rules.
type Stylesheet struct {
	Rules       []RuleNode
	Diagnostics []Diagnostic
	Origin      Origin
	// RuleCount is the number of style rules, including the
	// ones nested in conditional rules.
	RuleCount int
	// Hash identifies the source text.
	Hash int
}

// ParseStylesheet parses a complete stylesheet from UTF-8 source.
//
// Rule-level problems (invalid selectors, unknown at-rules) are
// recovered : the rule is dropped and a Diagnostic is recorded.
// Structural problems (unterminated string or block, unbalanced
// parentheses, empty selector, top-level garbage) and exceeded
// limits fail the whole stylesheet with an *Error.
func ParseStylesheet(css string, origin Origin) (*Stylesheet, error) {
	return ParseStylesheetWithLimits(css, origin, DefaultLimits)
}

// ParseStylesheetWithLimits is ParseStylesheet with explicit
// resource bounds.
func ParseStylesheetWithLimits(css string, origin Origin, limits Limits) (*Stylesheet, error) {
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	if limits.MaxSheetBytes != 0 && len(css) > limits.MaxSheetBytes {
		return nil, &Error{Kind: ErrResourceLimit,
			Message: fmt.Sprintf("stylesheet is %d bytes, limit is %d", len(css), limits.MaxSheetBytes), Line: 1, Column: 1}
	}

	tokens, unclosed := tokenize([]byte(css), true)
	if err := checkTokenTree(tokens); err != nil {
		return nil, err
	}
	if unclosed {
		pos := Pos{1, 1}
		if len(tokens) != 0 {
			pos = tokens[len(tokens)-1].Pos()
		}
		return nil, errorAt(pos, ErrUnterminatedBlock, "unclosed block at end of stylesheet")
	}

	sheet := &Stylesheet{Origin: origin, Hash: utils.Hash(css)}
	compounds := ParseRuleList(tokens, true, true)
	rules, err := sheet.buildRules(compounds, limits, true)
	if err != nil {
		return nil, err
	}
	sheet.Rules = rules
	return sheet, nil
}

// checkTokenTree looks for tokenizer-level errors that are
// fatal for a whole stylesheet.
func checkTokenTree(tokens []Token) *Error {
	for _, t := range tokens {
		switch t := t.(type) {
		case ParseError:
			switch t.kind {
			case errEOFInString, errBadString:
				return errorAt(t.pos, ErrUnterminatedString, t.Message)
			case errUnmatched:
				return errorAt(t.pos, ErrUnbalancedParens, t.Message)
			}
		case FunctionBlock:
			if err := checkTokenTree(*t.Arguments); err != nil {
				return err
			}
		case CurlyBracketsBlock:
			if err := checkTokenTree(*t.Content); err != nil {
				return err
			}
		case SquareBracketsBlock:
			if err := checkTokenTree(*t.Content); err != nil {
				return err
			}
		case ParenthesesBlock:
			if err := checkTokenTree(*t.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sheet *Stylesheet) buildRules(compounds []Compound, limits Limits, topLevel bool) ([]RuleNode, error) {
	var out []RuleNode
	for _, compound := range compounds {
		switch compound := compound.(type) {
		case ParseError:
			if topLevel {
				return nil, errorAt(compound.pos, ErrTopLevelGarbage, compound.Message)
			}
			sheet.diag(DiagInvalidSelector, compound.pos, compound.Message)
		case QualifiedRule:
			rule, err := sheet.buildStyleRule(compound, limits)
			if err != nil {
				return nil, err
			}
			if rule != nil {
				out = append(out, rule)
			}
		case AtRule:
			rule, err := sheet.buildAtRule(compound, limits)
			if err != nil {
				return nil, err
			}
			if rule != nil {
				out = append(out, rule)
			}
		}
		if limits.MaxRules != 0 && sheet.RuleCount > limits.MaxRules {
			return nil, &Error{Kind: ErrResourceLimit,
				Message: fmt.Sprintf("more than %d rules", limits.MaxRules), Line: 1, Column: 1}
		}
	}
	return out, nil
}

func (sheet *Stylesheet) buildStyleRule(rule QualifiedRule, limits Limits) (*StyleRule, error) {
	prelude := strings.TrimSpace(Serialize(rule.Prelude))
	if prelude == "" {
		return nil, errorAt(rule.pos, ErrEmptySelector, "rule with no selector")
	}
	selectors, err := selector.ParseGroup(prelude)
	if err != nil {
		if err == selector.ErrEmptySelector {
			return nil, errorAt(rule.pos, ErrEmptySelector, "empty selector in selector list")
		}
		sheet.diag(DiagInvalidSelector, rule.pos, err.Error())
		return nil, nil
	}
	if limits.MaxSelectorsPerRule != 0 && len(selectors) > limits.MaxSelectorsPerRule {
		return nil, errorAt(rule.pos, ErrResourceLimit,
			fmt.Sprintf("more than %d selectors in one rule", limits.MaxSelectorsPerRule))
	}
	for i := range selectors {
		if limits.MaxSelectorDepth != 0 && selectors[i].Depth() > limits.MaxSelectorDepth {
			return nil, errorAt(rule.pos, ErrResourceLimit,
				fmt.Sprintf("selector deeper than %d compounds", limits.MaxSelectorDepth))
		}
	}

	out := &StyleRule{Selectors: selectors, Index: sheet.RuleCount, pos: rule.pos}
	sheet.RuleCount++
	for _, d := range ParseDeclarationList(rule.Content, true, true) {
		switch d := d.(type) {
		case Declaration:
			out.Declarations = append(out.Declarations, d)
		case ParseError:
			sheet.diag(DiagInvalidValue, d.pos, d.Message)
		case AtRule:
			sheet.diag(DiagUnknownAtRule, d.pos, "at-rule inside a declaration block")
		}
	}
	return out, nil
}

func (sheet *Stylesheet) buildAtRule(rule AtRule, limits Limits) (RuleNode, error) {
	switch utils.AsciiLower(rule.AtKeyword) {
	case "media":
		queries, err := media.ParseQueryList(Serialize(rule.Prelude))
		if err != nil {
			sheet.diag(DiagInvalidMediaQuery, rule.pos, err.Error())
			return nil, nil
		}
		if rule.Content == nil {
			sheet.diag(DiagInvalidMediaQuery, rule.pos, "@media requires a block")
			return nil, nil
		}
		nested, err2 := sheet.buildRules(ParseRuleList(rule.Content, true, true), limits, false)
		if err2 != nil {
			return nil, err2
		}
		return &MediaRule{Queries: queries, Rules: nested, pos: rule.pos}, nil

	case "import":
		url, ok := importURL(rule.Prelude)
		if !ok {
			sheet.diag(DiagUnknownAtRule, rule.pos, "@import requires a string or url()")
			return nil, nil
		}
		return &ImportRule{URL: url, pos: rule.pos}, nil

	case "keyframes":
		return sheet.buildKeyframes(rule)

	case "charset":
		// handled by DecodeStylesheetBytes, nothing to retain
		return nil, nil

	default:
		// Unknown at-rules are skipped entirely : the tokenizer
		// already consumed up to the matching brace or semicolon.
		sheet.diag(DiagUnknownAtRule, rule.pos, "@"+rule.AtKeyword)
		return nil, nil
	}
}

func importURL(prelude []Token) (string, bool) {
	iter := NewIter(prelude)
	switch t := iter.NextSignificant().(type) {
	case String:
		return t.Value, true
	case URL:
		return t.Value, true
	default:
		return "", false
	}
}

func (sheet *Stylesheet) buildKeyframes(rule AtRule) (RuleNode, error) {
	iter := NewIter(rule.Prelude)
	name, ok := iter.NextSignificant().(Ident)
	if !ok || rule.Content == nil {
		sheet.diag(DiagUnknownAtRule, rule.pos, "@keyframes requires a name and a block")
		return nil, nil
	}
	out := &KeyframesRule{Name: string(name.Value), pos: rule.pos}
	for _, frame := range ParseRuleList(rule.Content, true, true) {
		qualified, ok := frame.(QualifiedRule)
		if !ok {
			sheet.diag(DiagUnknownAtRule, rule.pos, "invalid content in @keyframes")
			continue
		}
		percents, ok := keyframeSelector(qualified.Prelude)
		if !ok {
			sheet.diag(DiagInvalidSelector, qualified.pos, "invalid keyframe selector")
			continue
		}
		kf := Keyframe{Percents: percents}
		for _, d := range ParseDeclarationList(qualified.Content, true, true) {
			if decl, ok := d.(Declaration); ok {
				kf.Declarations = append(kf.Declarations, decl)
			}
		}
		out.Frames = append(out.Frames, kf)
	}
	return out, nil
}

// keyframeSelector parses "from", "to" or a comma separated
// percentage list.
func keyframeSelector(prelude []Token) ([]utils.Fl, bool) {
	var out []utils.Fl
	for _, chunk := range SplitOnComma(prelude) {
		iter := NewIter(chunk)
		switch t := iter.NextSignificant().(type) {
		case Ident:
			switch t.Value.Lower() {
			case "from":
				out = append(out, 0)
			case "to":
				out = append(out, 100)
			default:
				return nil, false
			}
		case Percentage:
			if t.Value < 0 || t.Value > 100 {
				return nil, false
			}
			out = append(out, t.Value)
		default:
			return nil, false
		}
		if iter.NextSignificant() != nil {
			return nil, false
		}
	}
	return out, len(out) != 0
}

func (sheet *Stylesheet) diag(kind DiagKind, pos Pos, message string) {
	sheet.Diagnostics = append(sheet.Diagnostics, Diagnostic{Kind: kind, Pos: pos, Message: message})
}
