package style

import (
	"errors"
	"fmt"

	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	pr "github.com/Corten-Browser/Corten-CSSEngine/css/properties"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// errCircularVar reports a reference cycle among custom
// properties : the affected property falls back to initial.
var errCircularVar = errors.New("circular custom property reference")

// substituteVars replaces every var() reference in the token
// list, walking into nested functions and blocks. Custom
// properties inherit : vars is the chain-resolved map for the
// element. A reference to an undefined variable uses its
// fallback, or fails so that the property takes its initial
// value. Cycles are detected with the seen set.
func substituteVars(tokens []pa.Token, vars map[string][]pa.Token, seen utils.Set) ([]pa.Token, error) {
	var out []pa.Token
	for _, token := range tokens {
		switch token := token.(type) {
		case pa.FunctionBlock:
			if token.Name.Lower() == "var" {
				substituted, err := resolveVarCall(*token.Arguments, vars, seen)
				if err != nil {
					return nil, err
				}
				out = append(out, substituted...)
				continue
			}
			args, err := substituteVars(*token.Arguments, vars, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, pa.NewFunctionBlock(token.Pos(), token.Name, args))
		case pa.ParenthesesBlock:
			content, err := substituteVars(*token.Content, vars, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, pa.NewParenthesesBlock(token.Pos(), content))
		default:
			out = append(out, token)
		}
	}
	return out, nil
}

// resolveVarCall handles the arguments of one var() :
// `--name [, fallback]`.
func resolveVarCall(args []pa.Token, vars map[string][]pa.Token, seen utils.Set) ([]pa.Token, error) {
	chunks := pa.SplitOnComma(args)
	nameTokens := pa.RemoveWhitespace(chunks[0])
	if len(nameTokens) != 1 {
		return nil, errors.New("invalid var() name")
	}
	ident, ok := nameTokens[0].(pa.Ident)
	if !ok {
		return nil, fmt.Errorf("var() name must be an identifier, got %s", nameTokens[0].Kind())
	}
	name := string(ident.Value)

	if value, in := vars[name]; in {
		if seen.Has(name) {
			return nil, errCircularVar
		}
		seen.Add(name)
		out, err := substituteVars(value, vars, seen)
		delete(seen, name)
		return out, err
	}

	if len(chunks) > 1 {
		// the fallback is everything after the first comma
		var fallback []pa.Token
		for i, chunk := range chunks[1:] {
			if i > 0 {
				fallback = append(fallback, pa.NewLiteral(ident.Pos(), ","))
			}
			fallback = append(fallback, chunk...)
		}
		return substituteVars(fallback, vars, seen)
	}
	return nil, fmt.Errorf("undefined custom property %s", name)
}

// resolveVariables merges the parent variable chain with the
// element's own custom property declarations, then checks each
// own declaration for self-referencing cycles, dropping the
// cyclic ones so that var() users see them as undefined.
func resolveVariables(parent map[string][]pa.Token, own cascadedStyle) (map[string][]pa.Token, []string) {
	hasOwn := false
	for key := range own {
		if key.Var != "" {
			hasOwn = true
			break
		}
	}
	if !hasOwn {
		return parent, nil
	}
	out := make(map[string][]pa.Token, len(parent)+4)
	for k, v := range parent {
		out[k] = v
	}
	for key, value := range own {
		if key.Var == "" {
			continue
		}
		if raw, ok := value.value.Value.(pr.RawTokens); ok {
			out[key.Var] = raw
		}
	}
	// a variable whose substitution cycles is invalid at
	// computed-value time
	var cyclic []string
	for key := range own {
		if key.Var == "" {
			continue
		}
		seen := utils.NewSet(key.Var)
		if _, err := substituteVars(out[key.Var], out, seen); err == errCircularVar {
			cyclic = append(cyclic, key.Var)
		}
	}
	for _, name := range cyclic {
		delete(out, name)
	}
	return out, cyclic
}
