package scope

import (
	"context"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// Ref is a variable or function reference in a tree, together with what it
// resolves to.
type Ref struct {
	Node      *syntax.Node
	Name      *syntax.Node
	Variable  *VariableDefinition   // set for resolved variable references
	Functions []FunctionDeclaration // candidates for function references
}

// IsVariable reports whether r is a variable reference.
func (r Ref) IsVariable() bool {
	return r.Node.Kind() == syntax.KindVarRef
}

// Resolved reports whether r resolved to at least one declaration.
func (r Ref) Resolved() bool {
	return r.Variable != nil || len(r.Functions) > 0
}

// Graph holds every reference of one tree with its resolution.
type Graph struct {
	Source string
	Refs   []Ref
}

// Unresolved returns the references that resolved to nothing.
func (g *Graph) Unresolved() []Ref {
	var out []Ref
	for _, ref := range g.Refs {
		if !ref.Resolved() {
			out = append(out, ref)
		}
	}
	return out
}

// ResolveAll resolves every variable reference, function call, arrow call
// and named function reference under root, in document order. It returns
// what it resolved before ctx was cancelled.
func (e *Engine) ResolveAll(ctx context.Context, root *syntax.Node) *Graph {
	g := &Graph{Source: root.Source()}
	syntax.Walk(root, func(n *syntax.Node) bool {
		if ctx.Err() != nil {
			return false
		}
		switch n.Kind() {
		case syntax.KindVarRef:
			ref := Ref{Node: n, Name: n.NameChild()}
			if def, ok := e.ResolveVariable(ctx, n); ok {
				ref.Variable = &def
			}
			g.Refs = append(g.Refs, ref)
		case syntax.KindFunctionCall, syntax.KindArrowFunction, syntax.KindNamedFunctionRef:
			g.Refs = append(g.Refs, Ref{
				Node:      n,
				Name:      n.NameChild(),
				Functions: e.ResolveFunction(ctx, n),
			})
		}
		return true
	})
	return g
}
