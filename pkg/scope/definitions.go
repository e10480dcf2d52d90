// Package scope answers static-context questions about a position in an
// XQuery syntax tree: which variables are in scope there, and which
// function and variable declarations are statically reachable through the
// module import graph.
package scope

import (
	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// BindingKind classifies the construct that introduced a variable.
type BindingKind int

const (
	ModuleGlobal BindingKind = iota
	ForBinding
	ForMemberBinding
	LetBinding
	GroupingKey
	WindowBinding
	WindowConditionBinding
	QuantifierBinding
	CountBinding
	TypeswitchCase
	FunctionParameter
	BlockLocal
	CatchErrorVariable
)

var bindingKindNames = [...]string{
	ModuleGlobal:           "module-global",
	ForBinding:             "for",
	ForMemberBinding:       "for-member",
	LetBinding:             "let",
	GroupingKey:            "grouping-key",
	WindowBinding:          "window",
	WindowConditionBinding: "window-condition",
	QuantifierBinding:      "quantifier",
	CountBinding:           "count",
	TypeswitchCase:         "typeswitch-case",
	FunctionParameter:      "parameter",
	BlockLocal:             "block-local",
	CatchErrorVariable:     "catch-error",
}

func (k BindingKind) String() string {
	if k >= 0 && int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return "unknown"
}

// VariableDefinition is a variable binding visible at a query position.
// Name is the binding's name node; Decl is the construct that declares it.
type VariableDefinition struct {
	Name *syntax.Node
	Kind BindingKind
	Decl *syntax.Node
}

// LocalName returns the local part of the variable name.
func (d VariableDefinition) LocalName() string {
	return d.Name.LocalName()
}

// Arity is the inclusive range of argument counts a function accepts.
type Arity struct {
	Min int
	Max int
}

// Accepts reports whether a call with n arguments fits the range.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && n <= a.Max
}

// FunctionDeclaration is a function declared in a module prolog.
type FunctionDeclaration struct {
	Name   *syntax.Node
	Decl   *syntax.Node
	Arity  Arity
	Prolog module.Prolog
}

// LocalName returns the local part of the function name.
func (d FunctionDeclaration) LocalName() string {
	return d.Name.LocalName()
}

// newFunctionDeclaration describes decl, or reports false when the
// declaration has no usable name.
func newFunctionDeclaration(p module.Prolog, decl *syntax.Node) (FunctionDeclaration, bool) {
	name := decl.NameChild()
	if name.LocalName() == "" {
		return FunctionDeclaration{}, false
	}
	return FunctionDeclaration{
		Name:   name,
		Decl:   decl,
		Arity:  arityOf(decl.FirstChild(syntax.KindParamList)),
		Prolog: p,
	}, true
}

// arityOf counts the parameters of a parameter list. Parameters carrying a
// default value are optional.
func arityOf(params *syntax.Node) Arity {
	var a Arity
	for _, param := range params.ChildrenOf(syntax.KindParam) {
		a.Max++
		if valueExpr(param) == nil {
			a.Min++
		}
	}
	return a
}

// bindingName returns the name node a binding construct declares through its
// VarName child, or nil.
func bindingName(n *syntax.Node) *syntax.Node {
	name := n.FirstChild(syntax.KindVarName).NameChild()
	if name.LocalName() == "" {
		return nil
	}
	return name
}

// valueExpr returns the first child of n that is an expression rather than
// part of the construct's own structure (names, type declarations, window
// conditions).
func valueExpr(n *syntax.Node) *syntax.Node {
	for _, child := range n.Children() {
		if !child.Kind().IsStructural() {
			return child
		}
	}
	return nil
}
