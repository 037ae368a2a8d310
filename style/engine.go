package style

import (
	"fmt"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
	"github.com/Corten-Browser/Corten-CSSEngine/css/validation"
	"github.com/Corten-Browser/Corten-CSSEngine/dom"
	"github.com/Corten-Browser/Corten-CSSEngine/logger"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// StyleSheetId identifies a registered stylesheet.
type StyleSheetId uint32

type registeredSheet struct {
	parsed *pa.Stylesheet
	rules  []*indexedRule
	id     StyleSheetId
	// order sorts sheets for the cascade source position;
	// an updated sheet keeps its order.
	order int32
}

// Engine is the facade composing the parser, matcher, cascade
// and stylist into a pipeline with a rule index and a computed
// style cache supporting incremental invalidation.
//
// The engine is single-threaded by contract : mutating calls
// must not run concurrently with any other call. Reads on a
// clean engine (GetComputedStyle after a compute pass) are safe
// to share between goroutines.
type Engine struct {
	tree   *dom.Tree
	config EngineConfig

	sheets    []*registeredSheet
	nextID    StyleSheetId
	nextOrder int32

	// inline holds the parsed declarations of style attributes
	// and SetInlineStyle overrides, keyed by element.
	inline map[dom.ElementId]inlineEntry

	index *ruleIndex

	styles    map[dom.ElementId]*ComputedValues
	pseudos   map[dom.ElementId]map[string]*ComputedValues
	styleTree *StyleTree

	dirty    map[dom.ElementId]struct{}
	allDirty bool

	cache    *shareCache
	nextCVid uint64

	keyframes map[string]*pa.KeyframesRule

	// diagnostics produced while computing (circular variables,
	// local computation errors)
	computeDiags []pa.Diagnostic

	stats Stats
}

// NewEngine creates an engine styling the given element tree.
// Unless disabled, a small built-in user-agent stylesheet is
// registered first.
func NewEngine(tree *dom.Tree, config EngineConfig) *Engine {
	e := &Engine{
		tree:      tree,
		config:    config.withDefaults(),
		inline:    map[dom.ElementId]inlineEntry{},
		styles:    map[dom.ElementId]*ComputedValues{},
		pseudos:   map[dom.ElementId]map[string]*ComputedValues{},
		dirty:     map[dom.ElementId]struct{}{},
		allDirty:  true,
		cache:     newShareCache(),
		keyframes: map[string]*pa.KeyframesRule{},
	}
	if !e.config.DisableUASheet {
		if _, err := e.AddStylesheet(uaStylesheet, pa.OriginUserAgent); err != nil {
			panic(fmt.Sprintf("invalid builtin user-agent stylesheet: %s", err))
		}
	}
	return e
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport { return e.config.Viewport }

// AddStylesheet parses and registers a stylesheet.
// Parse errors reject the whole sheet; recoverable problems are
// kept as diagnostics on the returned sheet and logged.
func (e *Engine) AddStylesheet(css string, origin pa.Origin) (StyleSheetId, error) {
	parsed, err := pa.ParseStylesheetWithLimits(css, origin, e.config.Limits)
	if err != nil {
		return 0, err
	}
	sheet := &registeredSheet{
		parsed: parsed,
		id:     e.nextID,
		order:  e.nextOrder,
	}
	e.nextID++
	e.nextOrder++
	sheet.rules = flattenSheet(parsed, sheet.order)
	e.registerKeyframes(parsed.Rules)
	e.logDiagnostics(parsed)

	e.sheets = append(e.sheets, sheet)
	e.invalidateSheets(false)
	return sheet.id, nil
}

// RemoveStylesheet unregisters a sheet. Every computed value
// derived from it is discarded.
func (e *Engine) RemoveStylesheet(id StyleSheetId) error {
	for i, sheet := range e.sheets {
		if sheet.id == id {
			e.sheets = append(e.sheets[:i], e.sheets[i+1:]...)
			e.rebuildKeyframes()
			e.invalidateSheets(true)
			return nil
		}
	}
	return fmt.Errorf("unknown stylesheet %d", id)
}

// UpdateStylesheet re-parses a sheet in place : it keeps its
// position in the cascade order, and every dependent computed
// value is discarded.
func (e *Engine) UpdateStylesheet(id StyleSheetId, css string) error {
	for _, sheet := range e.sheets {
		if sheet.id != id {
			continue
		}
		parsed, err := pa.ParseStylesheetWithLimits(css, sheet.parsed.Origin, e.config.Limits)
		if err != nil {
			return err
		}
		sheet.parsed = parsed
		sheet.rules = flattenSheet(parsed, sheet.order)
		e.rebuildKeyframes()
		e.logDiagnostics(parsed)
		e.invalidateSheets(true)
		return nil
	}
	return fmt.Errorf("unknown stylesheet %d", id)
}

// StylesheetCount returns the number of registered sheets,
// including the built-in user-agent one.
func (e *Engine) StylesheetCount() int { return len(e.sheets) }

// SheetDiagnostics returns the diagnostics attached to a sheet.
func (e *Engine) SheetDiagnostics(id StyleSheetId) []pa.Diagnostic {
	for _, sheet := range e.sheets {
		if sheet.id == id {
			return sheet.parsed.Diagnostics
		}
	}
	return nil
}

// ComputeDiagnostics returns the diagnostics of the last
// compute pass : circular custom properties and local
// computation errors.
func (e *Engine) ComputeDiagnostics() []pa.Diagnostic { return e.computeDiags }

// Keyframes returns a parsed @keyframes rule by name.
func (e *Engine) Keyframes(name string) (*pa.KeyframesRule, bool) {
	rule, ok := e.keyframes[name]
	return rule, ok
}

// SetInlineStyle parses and attaches an inline declaration
// block to the element, replacing any previous one. An empty
// text clears it. Invalid declarations are dropped; the valid
// ones apply.
func (e *Engine) SetInlineStyle(id dom.ElementId, css string) error {
	if css == "" {
		e.inline[id] = inlineEntry{}
	} else {
		decls, diags := parseInline(css)
		for _, d := range diags {
			logger.WarningLogger.Printf("inline style: %s", d)
		}
		e.inline[id] = inlineEntry{text: css, decls: decls}
	}
	e.markDirty(id)
	return nil
}

// inlineEntry caches the parsed declarations of one style
// attribute, with its source text for the sharing cache key.
type inlineEntry struct {
	text  string
	decls []validation.Declaration
}

// SetViewport changes the viewport and applies the matching
// invalidation : only viewport-dependent styles (and media
// conditioned rules) are recomputed.
func (e *Engine) SetViewport(viewport Viewport) {
	if viewport == e.config.Viewport {
		return
	}
	e.config.Viewport = viewport.withDefaults()
	e.Invalidate(ViewportChange{})
}

func (v Viewport) withDefaults() Viewport {
	if v.RootFontSizePx == 0 {
		v.RootFontSizePx = 16
	}
	if v.DevicePixelRatio == 0 {
		v.DevicePixelRatio = 1
	}
	return v
}

// CacheSize returns the number of shared computed style
// records.
func (e *Engine) CacheSize() int { return e.cache.len() }

// ClearCache drops every cached computed style and resets the
// counters. The next compute pass restyles from scratch.
func (e *Engine) ClearCache() {
	e.cache.clear()
	e.styles = map[dom.ElementId]*ComputedValues{}
	e.pseudos = map[dom.ElementId]map[string]*ComputedValues{}
	e.styleTree = nil
	e.allDirty = true
	e.stats = Stats{}
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats { return e.stats }

// ComputeStyles runs a compute pass over the whole element
// tree, reusing every clean cached style, and returns the
// style tree.
func (e *Engine) ComputeStyles() *StyleTree {
	root := e.tree.Root()
	if root == dom.NoElement {
		e.styleTree = &StyleTree{}
		return e.styleTree
	}
	e.ensureIndex()
	e.computeDiags = nil

	rootNode := e.computeSubtree(root, nil, 0, false)
	e.styleTree = &StyleTree{Root: rootNode}
	e.dirty = map[dom.ElementId]struct{}{}
	e.allDirty = false
	return e.styleTree
}

// GetComputedStyle returns the computed values of one element,
// running a compute pass first if the element is dirty.
func (e *Engine) GetComputedStyle(id dom.ElementId) *ComputedValues {
	if e.needsCompute() {
		e.ComputeStyles()
	}
	return e.styles[id]
}

// GetPseudoStyle returns the computed values of a
// pseudo-element, or nil when no rule targets it.
func (e *Engine) GetPseudoStyle(id dom.ElementId, pseudo string) *ComputedValues {
	if e.needsCompute() {
		e.ComputeStyles()
	}
	return e.pseudos[id][pseudo]
}

func (e *Engine) needsCompute() bool {
	return e.styleTree == nil || e.allDirty || len(e.dirty) != 0
}

// ---------------------------- invalidation ----------------------------

// Invalidation describes one change to the inputs of the style
// pipeline. Applying it marks the affected elements dirty; the
// next compute pass refreshes them.
type Invalidation interface {
	isInvalidation()
}

type (
	// AttributeChange signals a changed, added or removed
	// attribute.
	AttributeChange struct {
		Attribute string
		Element   dom.ElementId
	}
	// ClassChange signals a change of the element class set.
	ClassChange struct{ Element dom.ElementId }
	// StateChange signals flipped dynamic state bits
	// (hover, focus, active, visited).
	StateChange struct{ Element dom.ElementId }
	// ElementInserted signals a newly attached element.
	ElementInserted struct{ Element dom.ElementId }
	// ElementRemoved signals a detached element; Parent is its
	// former parent, NoElement for a removed root.
	ElementRemoved struct {
		Element dom.ElementId
		Parent  dom.ElementId
	}
	// ViewportChange signals new viewport dimensions.
	ViewportChange struct{}
	// StylesheetAdded, StylesheetRemoved and StylesheetUpdated
	// signal stylesheet set changes. They are applied
	// automatically by the engine stylesheet operations.
	StylesheetAdded   struct{ Sheet StyleSheetId }
	StylesheetRemoved struct{ Sheet StyleSheetId }
	StylesheetUpdated struct{ Sheet StyleSheetId }
)

func (AttributeChange) isInvalidation()   {}
func (ClassChange) isInvalidation()       {}
func (StateChange) isInvalidation()       {}
func (ElementInserted) isInvalidation()   {}
func (ElementRemoved) isInvalidation()    {}
func (ViewportChange) isInvalidation()    {}
func (StylesheetAdded) isInvalidation()   {}
func (StylesheetRemoved) isInvalidation() {}
func (StylesheetUpdated) isInvalidation() {}

// Invalidate applies one invalidation, scoping the dirty set
// from the selector dependencies of the registered rules.
func (e *Engine) Invalidate(inv Invalidation) {
	e.ensureIndex()
	switch inv := inv.(type) {
	case AttributeChange:
		name := utils.AsciiLower(inv.Attribute)
		switch name {
		case "class":
			e.Invalidate(ClassChange{Element: inv.Element})
			return
		case "style":
			// the style attribute feeds the inline declarations
			delete(e.inline, inv.Element)
			e.markDirty(inv.Element)
			return
		case "id":
			e.markStructural(inv.Element)
			return
		}
		if e.index.deps.attributes.Has(name) {
			e.markStructural(inv.Element)
		}
	case ClassChange:
		// class changes can affect descendants through
		// descendant combinators, and siblings through the
		// sibling combinators
		e.markStructural(inv.Element)
	case StateChange:
		if e.index.deps.usesState {
			e.markStructural(inv.Element)
		}
	case ElementInserted:
		e.markStructural(inv.Element)
	case ElementRemoved:
		delete(e.styles, inv.Element)
		delete(e.pseudos, inv.Element)
		delete(e.inline, inv.Element)
		if inv.Parent != dom.NoElement {
			e.markSubtree(inv.Parent)
		} else {
			e.allDirty = true
		}
	case ViewportChange:
		e.invalidateViewport()
	case StylesheetAdded:
		e.invalidateSheets(false)
	case StylesheetRemoved, StylesheetUpdated:
		e.invalidateSheets(true)
	}
}

// markStructural dirties the scope possibly affected by a
// matching change on the element : its subtree, widened to the
// parent subtree when sibling-sensitive selectors exist.
func (e *Engine) markStructural(id dom.ElementId) {
	if e.index.deps.usesStructure {
		if parent := e.tree.Parent(id); parent != dom.NoElement {
			e.markSubtree(parent)
			return
		}
	}
	e.markSubtree(id)
}

func (e *Engine) markDirty(id dom.ElementId) {
	e.dirty[id] = struct{}{}
}

func (e *Engine) markSubtree(id dom.ElementId) {
	e.markDirty(id)
	for _, child := range e.tree.Children(id) {
		e.markSubtree(child)
	}
}

// invalidateViewport recomputes what the viewport can reach :
// every style holding viewport-relative values, and everything
// if some rules are conditioned on viewport media queries.
func (e *Engine) invalidateViewport() {
	if mediaDependsOnViewport(e.sheets) {
		e.index = nil
		e.allDirty = true
		return
	}
	for id, cv := range e.styles {
		if cv.DependsOnViewport() {
			e.markDirty(id)
		}
	}
	for id, pseudoSet := range e.pseudos {
		for _, cv := range pseudoSet {
			if cv.DependsOnViewport() {
				e.markDirty(id)
			}
		}
	}
}

// invalidateSheets rebuilds the rule index. purge also drops
// the sharing cache : cached records may derive from removed
// rules.
func (e *Engine) invalidateSheets(purge bool) {
	e.index = nil
	e.allDirty = true
	if purge {
		e.cache.clear()
	}
}

func (e *Engine) ensureIndex() {
	if e.index == nil {
		e.index = buildIndex(e.sheets, e.config.Viewport)
	}
}

// ---------------------------- compute pass ----------------------------

// computeSubtree restyles an element if it is dirty (or its
// parent result changed), then recurses. rootFontSize is 0 on
// the root call and replaced by the root computed font size.
func (e *Engine) computeSubtree(id dom.ElementId, parent *ComputedValues, rootFontSize utils.Fl, parentChanged bool) *StyleNode {
	old := e.styles[id]
	_, isDirty := e.dirty[id]
	need := e.allDirty || parentChanged || isDirty || old == nil

	cv := old
	pseudos := e.pseudos[id]
	if need {
		cv, pseudos = e.computeElement(id, parent, rootFontSize)
		e.styles[id] = cv
		e.pseudos[id] = pseudos
		e.stats.Restyled++
	}
	changed := cv != old

	node := &StyleNode{Element: id, Style: cv, Pseudos: pseudos}
	childRootFS := rootFontSize
	if parent == nil {
		childRootFS = cv.FontSize()
	}
	for _, child := range e.tree.Children(id) {
		node.Children = append(node.Children, e.computeSubtree(child, cv, childRootFS, changed))
	}
	return node
}

// computeElement runs the per-element pipeline : candidate
// collection, matching, cascade, inheritance and value
// resolution, with sharing through the cache.
func (e *Engine) computeElement(id dom.ElementId, parent *ComputedValues, rootFontSize utils.Fl) (*ComputedValues, map[string]*ComputedValues) {
	el := e.tree.Element(id)
	if parent == nil {
		rootFontSize = e.config.Viewport.RootFontSizePx
	}

	// 1-2. candidate rules, matched right to left
	var (
		rules       []applicable
		pseudoRules map[string][]applicable
		matchHash   = uint64(fnvOffset)
	)
	for _, rule := range e.index.candidatesFor(el) {
		if !selector.Matches(rule.sel, el) {
			continue
		}
		// combined commutatively : the candidate order depends
		// on class set iteration, the cascade result does not
		ruleHash := hashMix(fnvOffset, uint64(rule.sheetOrder)<<20|uint64(uint32(rule.ruleOrder)))
		matchHash += hashString(ruleHash, rule.pseudo)
		if rule.pseudo == "" {
			rules = append(rules, rule.applicable())
			continue
		}
		if pseudoRules == nil {
			pseudoRules = map[string][]applicable{}
		}
		pseudoRules[rule.pseudo] = append(pseudoRules[rule.pseudo], rule.applicable())
	}

	// 3. the style attribute, ordered after all author sheets
	if inline := e.inlineDeclarations(id); len(inline.decls) != 0 {
		entries := make([]declEntry, len(inline.decls))
		for i, d := range inline.decls {
			entries[i] = declEntry{key: d.Key, value: d.Value, important: d.Important}
		}
		rules = append(rules, applicable{
			decls:      entries,
			origin:     pa.OriginInline,
			sheetOrder: inlineSheetOrder,
		})
		matchHash = hashString(matchHash, inline.text)
		matchHash = hashMix(matchHash, uint64(len(inline.decls)))
	}

	parentID := uint64(0)
	if parent != nil {
		parentID = parent.id
	}
	key := cacheKey{
		matchHash:  matchHash,
		parentID:   parentID,
		viewportFP: e.config.Viewport.fingerprint(),
	}
	if !e.config.DisableSharing {
		if entry, ok := e.cache.get(key); ok {
			e.stats.CacheHits++
			return entry.cv, entry.pseudos
		}
	}
	e.stats.CacheMisses++

	// 4-9. cascade then compute
	cv := e.resolve(resolveCascade(rules), parent, rootFontSize)

	var pseudoCVs map[string]*ComputedValues
	pseudoRootFS := rootFontSize
	if parent == nil {
		pseudoRootFS = cv.FontSize()
	}
	for pseudo, prules := range pseudoRules {
		if pseudoCVs == nil {
			pseudoCVs = map[string]*ComputedValues{}
		}
		// pseudo-elements inherit from their originating element
		pseudoCVs[pseudo] = e.resolve(resolveCascade(prules), cv, pseudoRootFS)
	}

	if !e.config.DisableSharing {
		e.cache.put(key, cacheEntry{cv: cv, pseudos: pseudoCVs})
	}
	return cv, pseudoCVs
}

// resolve runs the computer over a cascade output.
func (e *Engine) resolve(cascaded cascadedStyle, parent *ComputedValues, rootFontSize utils.Fl) *ComputedValues {
	if parent == nil {
		rootFontSize = e.config.Viewport.RootFontSizePx
	}
	cp := &computer{
		cascaded:     cascaded,
		parent:       parent,
		viewport:     e.config.Viewport,
		rootFontSize: rootFontSize,
	}
	var parentVars map[string][]pa.Token
	if parent != nil {
		parentVars = parent.vars
	}
	cv := cp.compute(parentVars)
	e.nextCVid++
	cv.id = e.nextCVid
	for _, fail := range cp.errors {
		diag := pa.Diagnostic{Kind: fail.kind, Message: fmt.Sprintf("%s: %s", fail.key, fail.err)}
		e.computeDiags = append(e.computeDiags, diag)
		logger.WarningLogger.Printf("compute: %s", diag)
	}
	return cv
}

// inlineDeclarations returns the parsed style attribute of the
// element, parsing and caching it on first use, unless
// SetInlineStyle installed an override.
func (e *Engine) inlineDeclarations(id dom.ElementId) inlineEntry {
	if entry, in := e.inline[id]; in {
		return entry
	}
	text := e.tree.InlineStyle(id)
	if text == "" {
		return inlineEntry{}
	}
	decls, diags := parseInline(text)
	for _, d := range diags {
		logger.WarningLogger.Printf("style attribute: %s", d)
	}
	entry := inlineEntry{text: text, decls: decls}
	e.inline[id] = entry
	return entry
}

// parseInline parses the declaration block of a style
// attribute.
func parseInline(css string) ([]validation.Declaration, []pa.Diagnostic) {
	var (
		raw   []pa.Declaration
		diags []pa.Diagnostic
	)
	for _, compound := range pa.ParseDeclarationListString(css, true, true) {
		switch compound := compound.(type) {
		case pa.Declaration:
			raw = append(raw, compound)
		case pa.ParseError:
			diags = append(diags, pa.Diagnostic{Kind: pa.DiagInvalidValue,
				Pos: compound.Pos(), Message: compound.Message})
		}
	}
	decls, valDiags := validation.PreprocessDeclarations(raw)
	return decls, append(diags, valDiags...)
}

func (e *Engine) registerKeyframes(rules []pa.RuleNode) {
	for _, rule := range rules {
		switch rule := rule.(type) {
		case *pa.KeyframesRule:
			e.keyframes[rule.Name] = rule
		case *pa.MediaRule:
			e.registerKeyframes(rule.Rules)
		}
	}
}

func (e *Engine) rebuildKeyframes() {
	e.keyframes = map[string]*pa.KeyframesRule{}
	for _, sheet := range e.sheets {
		e.registerKeyframes(sheet.parsed.Rules)
	}
}

func (e *Engine) logDiagnostics(sheet *pa.Stylesheet) {
	for _, d := range sheet.Diagnostics {
		logger.WarningLogger.Printf("stylesheet (%s): %s", sheet.Origin, d)
	}
}
