// Package media implements the small subset of media queries
// needed to condition style rules on the viewport : media types,
// and the min/max width and height features. Unknown features
// are retained and evaluate to true, matching the permissive
// policy of the engine.
package media

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// Feature is a single parenthesised media feature.
type Feature struct {
	Name  string // lower case, e.g. "min-width"
	Raw   string // the raw value text
	Value utils.Fl
	// Known is false for features the engine does not evaluate.
	Known bool
}

// Query is one member of a comma separated media query list.
type Query struct {
	// Type is the media type : "all", "screen", "print", ...
	// An empty type means "all".
	Type     string
	Negated  bool // "not" prefix
	Features []Feature
}

// QueryList is a full media query list. An empty list matches
// everything.
type QueryList []Query

// ParseQueryList parses a comma separated media query list like
// "screen and (min-width: 600px), print".
func ParseQueryList(s string) (QueryList, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out QueryList
	for _, chunk := range strings.Split(s, ",") {
		q, err := parseQuery(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func parseQuery(s string) (Query, error) {
	var out Query
	rest := strings.TrimSpace(utils.AsciiLower(s))
	if rest == "" {
		return out, fmt.Errorf("empty media query")
	}
	if v, ok := strings.CutPrefix(rest, "not "); ok {
		out.Negated = true
		rest = strings.TrimSpace(v)
	} else if v, ok := strings.CutPrefix(rest, "only "); ok {
		// "only" exists to hide queries from legacy agents,
		// it does not change the result.
		rest = strings.TrimSpace(v)
	}

	// leading media type
	if !strings.HasPrefix(rest, "(") {
		end := strings.IndexAny(rest, " (")
		if end == -1 {
			out.Type = rest
			return out, nil
		}
		out.Type = rest[:end]
		rest = strings.TrimSpace(rest[end:])
		var ok bool
		if rest, ok = strings.CutPrefix(rest, "and "); !ok && rest != "" {
			return out, fmt.Errorf("expected 'and' after media type in %q", s)
		}
		rest = strings.TrimSpace(rest)
	}

	for rest != "" {
		if !strings.HasPrefix(rest, "(") {
			return out, fmt.Errorf("expected '(' in media query %q", s)
		}
		end := strings.IndexByte(rest, ')')
		if end == -1 {
			return out, fmt.Errorf("unclosed media feature in %q", s)
		}
		feature, err := parseFeature(rest[1:end])
		if err != nil {
			return out, err
		}
		out.Features = append(out.Features, feature)
		rest = strings.TrimSpace(rest[end+1:])
		if rest == "" {
			break
		}
		var ok bool
		if rest, ok = strings.CutPrefix(rest, "and "); !ok {
			return out, fmt.Errorf("expected 'and' between media features in %q", s)
		}
		rest = strings.TrimSpace(rest)
	}
	return out, nil
}

func parseFeature(s string) (Feature, error) {
	name, raw, hasValue := strings.Cut(s, ":")
	out := Feature{
		Name: strings.TrimSpace(utils.AsciiLower(name)),
		Raw:  strings.TrimSpace(raw),
	}
	switch out.Name {
	case "min-width", "max-width", "min-height", "max-height":
		if !hasValue {
			return out, fmt.Errorf("media feature %q requires a value", out.Name)
		}
		px, err := parsePixels(out.Raw)
		if err != nil {
			return out, err
		}
		out.Value = px
		out.Known = true
	}
	return out, nil
}

// parsePixels accepts px and em lengths, em being resolved
// against the 16px initial font size as media queries do not
// depend on element styles.
func parsePixels(s string) (utils.Fl, error) {
	s = strings.TrimSpace(s)
	if v, ok := strings.CutSuffix(s, "px"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		return utils.Fl(f), err
	}
	if v, ok := strings.CutSuffix(s, "em"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		return utils.Fl(f) * 16, err
	}
	f, err := strconv.ParseFloat(s, 32)
	return utils.Fl(f), err
}

// Matches evaluates the query list against the viewport.
// An empty list matches; a non empty list matches if at least
// one query does.
func (l QueryList) Matches(width, height utils.Fl) bool {
	if len(l) == 0 {
		return true
	}
	for _, q := range l {
		if q.Matches(width, height) {
			return true
		}
	}
	return false
}

// Matches evaluates one query.
func (q Query) Matches(width, height utils.Fl) bool {
	out := q.matchesInner(width, height)
	if q.Negated {
		return !out
	}
	return out
}

func (q Query) matchesInner(width, height utils.Fl) bool {
	switch q.Type {
	case "", "all", "screen":
	default:
		// this engine styles for a screen-like device
		return false
	}
	for _, f := range q.Features {
		if !f.matches(width, height) {
			return false
		}
	}
	return true
}

func (f Feature) matches(width, height utils.Fl) bool {
	if !f.Known {
		return true
	}
	switch f.Name {
	case "min-width":
		return width >= f.Value
	case "max-width":
		return width <= f.Value
	case "min-height":
		return height >= f.Value
	case "max-height":
		return height <= f.Value
	}
	return true
}

// DependsOnViewport returns true if evaluating the list reads
// the viewport dimensions, used to scope viewport invalidations.
func (l QueryList) DependsOnViewport() bool {
	for _, q := range l {
		for _, f := range q.Features {
			if f.Known {
				return true
			}
		}
	}
	return false
}
