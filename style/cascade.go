package style

import (
	"math"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/css/selector"
)

// declarationRank orders origin and importance per the cascade :
// important user-agent rules beat everything, then important
// user, then important author (the style attribute included),
// then the style attribute, then author, user and user-agent
// normal rules.
// https://www.w3.org/TR/CSS21/cascade.html#cascading-order
func declarationRank(origin pa.Origin, important bool) uint8 {
	if important {
		switch origin {
		case pa.OriginUserAgent:
			return 7
		case pa.OriginUser:
			return 6
		default: // author and inline
			return 5
		}
	}
	switch origin {
	case pa.OriginInline:
		return 4
	case pa.OriginAuthor:
		return 3
	case pa.OriginUser:
		return 2
	default:
		return 1
	}
}

// inlineSheetOrder sorts the style attribute after every
// author stylesheet.
const inlineSheetOrder = math.MaxInt32

// priority is the comparable form of the cascade ordering :
// origin-importance rank, specificity, then source position.
type priority struct {
	spec       selector.Specificity
	rank       uint8
	sheetOrder int32
	ruleOrder  int32
	declIndex  int32
}

func (p priority) isNone() bool { return p == priority{} }

// Less returns true if p loses against other.
func (p priority) Less(other priority) bool {
	if p.rank != other.rank {
		return p.rank < other.rank
	}
	if p.spec != other.spec {
		return p.spec.Less(other.spec)
	}
	if p.sheetOrder != other.sheetOrder {
		return p.sheetOrder < other.sheetOrder
	}
	if p.ruleOrder != other.ruleOrder {
		return p.ruleOrder < other.ruleOrder
	}
	return p.declIndex < other.declIndex
}

// weightedValue is a declared value with the priority
// of its declaration.
type weightedValue struct {
	value pr.DeclaredValue
	prio  priority
}

// cascadedStyle maps each property to the winning declaration.
type cascadedStyle map[pr.PropKey]weightedValue

// add keeps the declaration if it beats the current winner.
// Ties are impossible : the source position is total.
func (c cascadedStyle) add(key pr.PropKey, value pr.DeclaredValue, prio priority) {
	old := c[key]
	if old.prio.isNone() || old.prio.Less(prio) {
		c[key] = weightedValue{value: value, prio: prio}
	}
}

// applicable is one matched rule block, ready to be folded
// into a cascadedStyle.
type applicable struct {
	decls      []declEntry
	spec       selector.Specificity
	origin     pa.Origin
	sheetOrder int32
	ruleOrder  int32
}

type declEntry struct {
	key       pr.PropKey
	value     pr.DeclaredValue
	important bool
}

// resolveCascade folds every applicable declaration, keeping
// per property the best priority. A single pass suffices :
// the order is total.
func resolveCascade(rules []applicable) cascadedStyle {
	out := cascadedStyle{}
	for _, rule := range rules {
		for i, d := range rule.decls {
			out.add(d.key, d.value, priority{
				rank:       declarationRank(rule.origin, d.important),
				spec:       rule.spec,
				sheetOrder: rule.sheetOrder,
				ruleOrder:  rule.ruleOrder,
				declIndex:  int32(i),
			})
		}
	}
	return out
}
