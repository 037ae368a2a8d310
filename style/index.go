package style

import (
	"github.com/Corten-Browser/Corten-CSSEngine/css/media"
	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	"github.com/Corten-Browser/Corten-CSSEngine/css/validation"
	"github.com/Corten-Browser/Corten-CSSEngine/dom"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// indexedRule is one (selector, declaration block) pair of a
// registered stylesheet, flattened out of its nesting.
type indexedRule struct {
	sel    *selector.Selector
	pseudo string // the selector pseudo-element, or ""
	decls  []declEntry
	// conditions guarding the rule, one query list per
	// enclosing @media block; nil when unconditional
	conditions []media.QueryList
	origin     pa.Origin
	sheetOrder int32
	ruleOrder  int32
}

// matchesViewport evaluates every enclosing media condition.
func (r *indexedRule) matchesViewport(viewport Viewport) bool {
	for _, queries := range r.conditions {
		if !queries.Matches(viewport.Width, viewport.Height) {
			return false
		}
	}
	return true
}

func (r *indexedRule) applicable() applicable {
	return applicable{
		decls:      r.decls,
		spec:       r.sel.Specificity(),
		origin:     r.origin,
		sheetOrder: r.sheetOrder,
		ruleOrder:  r.ruleOrder,
	}
}

// ruleIndex buckets rules by the key component of their subject
// compound : id, class, tag, or the universal bucket. Only the
// buckets for an element's own id, classes and tag are consulted,
// plus the universal one.
type ruleIndex struct {
	byID      map[string][]*indexedRule
	byClass   map[string][]*indexedRule
	byTag     map[string][]*indexedRule
	universal []*indexedRule

	deps dependencySet
}

// dependencySet records which selector components exist in any
// registered rule, scoping invalidations.
type dependencySet struct {
	classes    utils.Set
	ids        utils.Set
	attributes utils.Set
	usesState  bool
	// usesStructure is true for sibling and child-position
	// sensitive selectors (combinators, :nth-child, ...)
	usesStructure bool
}

func newRuleIndex() *ruleIndex {
	return &ruleIndex{
		byID:    map[string][]*indexedRule{},
		byClass: map[string][]*indexedRule{},
		byTag:   map[string][]*indexedRule{},
		deps: dependencySet{
			classes:    utils.Set{},
			ids:        utils.Set{},
			attributes: utils.Set{},
		},
	}
}

// add indexes one rule under its key selector component. The
// most selective component available is used : id, then class,
// then tag, then the universal bucket.
func (idx *ruleIndex) add(rule *indexedRule) {
	idx.recordDeps(rule.sel)
	subject := rule.sel.Subject()
	var (
		id, class, tag string
	)
	for _, part := range subject.Parts {
		switch part := part.(type) {
		case selector.ID:
			id = part.Name
		case selector.Class:
			if class == "" {
				class = part.Name
			}
		case selector.Type:
			tag = part.Name
		}
	}
	switch {
	case id != "":
		idx.byID[id] = append(idx.byID[id], rule)
	case class != "":
		idx.byClass[class] = append(idx.byClass[class], rule)
	case tag != "":
		idx.byTag[tag] = append(idx.byTag[tag], rule)
	default:
		idx.universal = append(idx.universal, rule)
	}
}

func (idx *ruleIndex) recordDeps(sel *selector.Selector) {
	if len(sel.Compounds) > 1 {
		idx.deps.usesStructure = true
	}
	for _, compound := range sel.Compounds {
		idx.recordCompoundDeps(compound)
	}
}

func (idx *ruleIndex) recordCompoundDeps(compound selector.Compound) {
	for _, part := range compound.Parts {
		switch part := part.(type) {
		case selector.Class:
			idx.deps.classes.Add(part.Name)
		case selector.ID:
			idx.deps.ids.Add(part.Name)
		case selector.Attrib:
			idx.deps.attributes.Add(part.Name)
		case selector.PseudoState:
			idx.deps.usesState = true
		case selector.FirstChild, selector.LastChild, selector.NthChild:
			idx.deps.usesStructure = true
		case selector.Not:
			idx.recordCompoundDeps(part.Inner)
		}
	}
}

// candidatesFor yields the rules whose key component can match
// the element : the standard right-to-left bucketing.
func (idx *ruleIndex) candidatesFor(el dom.Element) []*indexedRule {
	var out []*indexedRule
	if id := el.ID(); id != "" {
		out = append(out, idx.byID[id]...)
	}
	for class := range el.Classes() {
		out = append(out, idx.byClass[class]...)
	}
	out = append(out, idx.byTag[el.TagName()]...)
	out = append(out, idx.universal...)
	return out
}

// buildIndex flattens and indexes the given sheets, keeping
// only the rules whose media conditions match the viewport.
func buildIndex(sheets []*registeredSheet, viewport Viewport) *ruleIndex {
	idx := newRuleIndex()
	for _, sheet := range sheets {
		for _, rule := range sheet.rules {
			if rule.matchesViewport(viewport) {
				idx.add(rule)
			}
		}
	}
	return idx
}

// flattenSheet validates and flattens the rules of a parsed
// stylesheet, one indexedRule per selector. Validation
// diagnostics are appended to the stylesheet.
func flattenSheet(sheet *pa.Stylesheet, order int32) []*indexedRule {
	var out []*indexedRule
	var walk func(rules []pa.RuleNode, conditions []media.QueryList)
	walk = func(rules []pa.RuleNode, conditions []media.QueryList) {
		for _, rule := range rules {
			switch rule := rule.(type) {
			case *pa.StyleRule:
				decls, diags := validation.PreprocessDeclarations(rule.Declarations)
				sheet.Diagnostics = append(sheet.Diagnostics, diags...)
				if len(decls) == 0 {
					continue
				}
				entries := make([]declEntry, len(decls))
				for i, d := range decls {
					entries[i] = declEntry{key: d.Key, value: d.Value, important: d.Important}
				}
				for i := range rule.Selectors {
					sel := &rule.Selectors[i]
					out = append(out, &indexedRule{
						sel:        sel,
						pseudo:     sel.PseudoElement,
						decls:      entries,
						conditions: conditions,
						origin:     sheet.Origin,
						sheetOrder: order,
						ruleOrder:  int32(rule.Index),
					})
				}
			case *pa.MediaRule:
				nested := make([]media.QueryList, len(conditions), len(conditions)+1)
				copy(nested, conditions)
				walk(rule.Rules, append(nested, rule.Queries))
			}
		}
	}
	walk(sheet.Rules, nil)
	return out
}

// mediaDependsOnViewport reports whether any registered rule is
// conditioned on the viewport dimensions.
func mediaDependsOnViewport(sheets []*registeredSheet) bool {
	for _, sheet := range sheets {
		for _, rule := range sheet.rules {
			for _, queries := range rule.conditions {
				if queries.DependsOnViewport() {
					return true
				}
			}
		}
	}
	return false
}
