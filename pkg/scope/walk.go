package scope

import (
	"github.com/odvcencio/xqscope/internal/xiter"
	"github.com/odvcencio/xqscope/pkg/namespace"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// marker is the one-shot note the walk carries from a child to its parent:
// the parent is the declaring construct of the subtree just left.
type marker uint8

const (
	markNone marker = iota
	// markBindingValue: left the value expression of a binding, so the
	// binding is not visible to it.
	markBindingValue
	// markFunctionBody: left the body of a function, so its parameters are.
	markFunctionBody
	// markCaseReturn: left the return expression of a typeswitch case.
	markCaseReturn
	// markCatchBody: left the body of a catch clause.
	markCatchBody
)

// walkState is the walk's state between two ancestor visits. It is passed
// and returned by value.
type walkState struct {
	pending marker
	// inTypeswitch is set once a case clause has contributed its variable
	// and cleared when the walk leaves the owning typeswitch.
	inTypeswitch bool
}

// leave returns the marker for stepping from child up into parent. A
// binding's value, a case's return and a catch body may each span several
// expression children when the tree was converted from a grammar that keeps
// operators implicit; every non-structural child counts.
func leave(child, parent *syntax.Node) marker {
	if child.Kind().IsStructural() {
		return markNone
	}
	switch parent.Kind() {
	case syntax.KindForBinding, syntax.KindForMemberBinding, syntax.KindLetBinding,
		syntax.KindQuantifiedBinding, syntax.KindGroupingSpec, syntax.KindBlockVarDeclEntry,
		syntax.KindParam, syntax.KindWindowClause:
		return markBindingValue
	case syntax.KindFunctionDecl, syntax.KindInlineFunctionExpr:
		if child.Kind() == syntax.KindFunctionBody {
			return markFunctionBody
		}
	case syntax.KindCaseClause, syntax.KindDefaultCaseClause:
		return markCaseReturn
	case syntax.KindCatchClause:
		// Error name tests precede the body.
		if child.Kind() != syntax.KindNameTest {
			return markCatchBody
		}
	}
	return markNone
}

// visitAncestor returns the variables parent contributes to a position
// inside it, and the state to carry further up. st.pending must already
// hold leave(child, parent).
func visitAncestor(parent *syntax.Node, st walkState) ([]VariableDefinition, walkState) {
	pending := st.pending
	st.pending = markNone
	switch parent.Kind() {
	case syntax.KindForBinding, syntax.KindForMemberBinding, syntax.KindLetBinding,
		syntax.KindQuantifiedBinding, syntax.KindBlockVarDeclEntry:
		if pending == markBindingValue {
			return nil, st
		}
		return bindingVariables(parent), st
	case syntax.KindGroupingSpec:
		if pending == markBindingValue || valueExpr(parent) == nil {
			return nil, st
		}
		return bindingVariables(parent), st
	case syntax.KindCountClause:
		return bindingVariables(parent), st
	case syntax.KindCaseClause, syntax.KindDefaultCaseClause:
		if pending != markCaseReturn || st.inTypeswitch {
			return nil, st
		}
		st.inTypeswitch = true
		return bindingVariables(parent), st
	case syntax.KindTypeswitchExpr:
		st.inTypeswitch = false
		return nil, st
	case syntax.KindFunctionDecl, syntax.KindInlineFunctionExpr:
		if pending != markFunctionBody {
			return nil, st
		}
		return parameters(parent), st
	case syntax.KindCatchClause:
		if pending != markCatchBody {
			return nil, st
		}
		return catchVariables(parent), st
	default:
		return nil, st
	}
}

// visitSibling returns the variables a preceding sibling contributes to
// everything after it.
func visitSibling(n *syntax.Node) []VariableDefinition {
	switch n.Kind() {
	case syntax.KindForBinding, syntax.KindForMemberBinding, syntax.KindLetBinding,
		syntax.KindQuantifiedBinding, syntax.KindCountClause, syntax.KindBlockVarDeclEntry:
		return bindingVariables(n)
	case syntax.KindGroupingSpec:
		if valueExpr(n) == nil {
			return nil
		}
		return bindingVariables(n)
	case syntax.KindWindowVar:
		return bindingVariables(n)
	case syntax.KindForClause, syntax.KindForMemberClause, syntax.KindLetClause,
		syntax.KindGroupByClause, syntax.KindBlockVarDecl, syntax.KindBlockDecls,
		syntax.KindWindowStartCondition, syntax.KindWindowEndCondition:
		var out []VariableDefinition
		for child := range xiter.Backward(n.Children()) {
			out = append(out, visitSibling(child)...)
		}
		return out
	case syntax.KindWindowClause:
		var out []VariableDefinition
		if end := n.FirstChild(syntax.KindWindowEndCondition); end != nil {
			out = append(out, visitSibling(end)...)
		}
		if start := n.FirstChild(syntax.KindWindowStartCondition); start != nil {
			out = append(out, visitSibling(start)...)
		}
		return append(out, bindingVariables(n)...)
	default:
		return nil
	}
}

// bindingVariables returns the variables a single binding construct
// declares, last declared first. Nameless bindings are dropped.
func bindingVariables(n *syntax.Node) []VariableDefinition {
	var out []VariableDefinition
	add := func(name *syntax.Node, kind BindingKind) {
		if name != nil {
			out = append(out, VariableDefinition{Name: name, Kind: kind, Decl: n})
		}
	}
	switch n.Kind() {
	case syntax.KindForBinding, syntax.KindForMemberBinding:
		kind := ForBinding
		if n.Kind() == syntax.KindForMemberBinding {
			kind = ForMemberBinding
		}
		add(bindingName(n.FirstChild(syntax.KindPositionalVar)), kind)
		add(bindingName(n), kind)
	case syntax.KindLetBinding:
		add(bindingName(n), LetBinding)
	case syntax.KindQuantifiedBinding:
		add(bindingName(n), QuantifierBinding)
	case syntax.KindGroupingSpec:
		add(bindingName(n), GroupingKey)
	case syntax.KindCountClause:
		add(bindingName(n), CountBinding)
	case syntax.KindWindowClause:
		add(bindingName(n), WindowBinding)
	case syntax.KindWindowVar:
		add(bindingName(n), WindowConditionBinding)
	case syntax.KindCaseClause, syntax.KindDefaultCaseClause:
		add(bindingName(n), TypeswitchCase)
	case syntax.KindBlockVarDeclEntry:
		add(bindingName(n), BlockLocal)
	}
	return out
}

// parameters returns the parameters of a function declaration or inline
// function, last first.
func parameters(fn *syntax.Node) []VariableDefinition {
	params := fn.FirstChild(syntax.KindParamList).ChildrenOf(syntax.KindParam)
	var out []VariableDefinition
	for param := range xiter.Backward(params) {
		if name := bindingName(param); name != nil {
			out = append(out, VariableDefinition{Name: name, Kind: FunctionParameter, Decl: param})
		}
	}
	return out
}

// catchErrorNames are the variables every catch clause binds implicitly.
var catchErrorNames = func() []*syntax.Node {
	locals := []string{"code", "description", "value", "module", "line-number", "column-number", "additional"}
	out := make([]*syntax.Node, 0, len(locals))
	for _, local := range locals {
		out = append(out, syntax.NewNode(syntax.KindURIQualifiedName, syntax.Span{}, []syntax.Attr{
			{Key: syntax.AttrURI, Value: namespace.ErrorsNamespace},
			{Key: syntax.AttrLocal, Value: local},
		}))
	}
	return out
}()

// catchVariables returns the variables visible in a catch clause body: an
// explicit variable when the clause names one, then the err:* variables.
func catchVariables(clause *syntax.Node) []VariableDefinition {
	var out []VariableDefinition
	if name := bindingName(clause); name != nil {
		out = append(out, VariableDefinition{Name: name, Kind: CatchErrorVariable, Decl: clause})
	}
	for name := range xiter.Backward(catchErrorNames) {
		out = append(out, VariableDefinition{Name: name, Kind: CatchErrorVariable, Decl: clause})
	}
	return out
}
