package scope

import (
	"context"
	"strconv"
	"strings"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// ResolveVariable returns the nearest in-scope definition a variable
// reference refers to. ref may be a VarRef or its name node.
func (e *Engine) ResolveVariable(ctx context.Context, ref *syntax.Node) (VariableDefinition, bool) {
	name := ref
	if ref.Kind() == syntax.KindVarRef {
		name = ref.NameChild()
	}
	wants := e.expandAll(ctx, name)
	if len(wants) == 0 {
		return VariableDefinition{}, false
	}
	for def := range e.InScopeVariables(ctx, ref) {
		if def.LocalName() != name.LocalName() {
			continue
		}
		for candidate := range e.expander.Expand(ctx, def.Name) {
			for _, want := range wants {
				if candidate.Matches(want) {
					return def, true
				}
			}
		}
	}
	return VariableDefinition{}, false
}

// ResolveFunction returns the declarations a function call, arrow call or
// named function reference may invoke: the statically-known functions of
// its name whose arity range admits the number of arguments supplied.
// call may also be the name node of one of those constructs.
func (e *Engine) ResolveFunction(ctx context.Context, call *syntax.Node) []FunctionDeclaration {
	if call.Kind().IsName() {
		call = call.Parent()
	}
	name := call.NameChild()
	arity, ok := callArity(call)
	if name == nil || !ok {
		return nil
	}
	var out []FunctionDeclaration
	for fn := range e.StaticallyKnownFunctions(ctx, name) {
		if fn.Arity.Accepts(arity) {
			out = append(out, fn)
		}
	}
	return out
}

// callArity returns the number of arguments call passes to its target.
func callArity(call *syntax.Node) (int, bool) {
	switch call.Kind() {
	case syntax.KindFunctionCall:
		return call.FirstChild(syntax.KindArgumentList).ChildCount(), true
	case syntax.KindArrowFunction:
		// the arrow's left operand is the first argument
		return call.FirstChild(syntax.KindArgumentList).ChildCount() + 1, true
	case syntax.KindNamedFunctionRef:
		n, err := strconv.Atoi(strings.TrimSpace(call.AttrOr(syntax.AttrArity, "")))
		return n, err == nil
	default:
		return 0, false
	}
}
