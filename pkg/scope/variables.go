package scope

import (
	"context"
	"iter"
	"slices"

	"github.com/odvcencio/xqscope/internal/xiter"
	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// InScopeVariables yields the variables visible at pos, nearest declaration
// first: local bindings from the enclosing constructs, then the module-level
// variables of the enclosing module and every module it imports. The
// sequence stops early, without error, once ctx is cancelled.
func (e *Engine) InScopeVariables(ctx context.Context, pos *syntax.Node) iter.Seq[VariableDefinition] {
	return func(yield func(VariableDefinition) bool) {
		for def := range xiter.Cancellable(ctx, localVariables(pos)) {
			if !yield(def) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		for def := range e.moduleGlobals(ctx, pos) {
			if !yield(def) {
				return
			}
		}
	}
}

// localVariables walks from pos to the root, visiting the preceding siblings
// of each node on the way and then its parent.
func localVariables(pos *syntax.Node) iter.Seq[VariableDefinition] {
	return func(yield func(VariableDefinition) bool) {
		var st walkState
		for child, parent := pos, pos.Parent(); parent != nil; child, parent = parent, parent.Parent() {
			for sibling := child.PrevSibling(); sibling != nil; sibling = sibling.PrevSibling() {
				for _, def := range visitSibling(sibling) {
					if !yield(def) {
						return
					}
				}
			}
			st.pending = leave(child, parent)
			var defs []VariableDefinition
			defs, st = visitAncestor(parent, st)
			for _, def := range defs {
				if !yield(def) {
					return
				}
			}
		}
	}
}

// moduleGlobals yields the prolog variables of the module enclosing pos and
// of every module reachable through its imports, each prolog in reverse
// declaration order. Private variables of imported modules are skipped.
func (e *Engine) moduleGlobals(ctx context.Context, pos *syntax.Node) iter.Seq[VariableDefinition] {
	return func(yield func(VariableDefinition) bool) {
		start := module.FileProlog(pos)
		for p := range module.ImportedProlog(ctx, e.resolver, start) {
			for _, decl := range slices.Backward(p.VarDecls()) {
				name := declName(decl)
				if name == nil {
					continue
				}
				if p.Resource != start.Resource && e.isPrivate(ctx, decl) {
					continue
				}
				if ctx.Err() != nil || !yield(VariableDefinition{Name: name, Kind: ModuleGlobal, Decl: decl}) {
					return
				}
			}
		}
	}
}

// StaticallyKnownVariables yields the module-level variable declarations
// the variable name can refer to.
func (e *Engine) StaticallyKnownVariables(ctx context.Context, name *syntax.Node) iter.Seq[VariableDefinition] {
	return func(yield func(VariableDefinition) bool) {
		for _, decl := range e.matchingDecls(ctx, name, syntax.KindVarDecl) {
			if !yield(VariableDefinition{Name: declName(decl), Kind: ModuleGlobal, Decl: decl}) {
				return
			}
		}
	}
}

// ReachableVariables yields every module-level variable reachable from the
// module enclosing pos.
func (e *Engine) ReachableVariables(ctx context.Context, pos *syntax.Node) iter.Seq[VariableDefinition] {
	return e.moduleGlobals(ctx, pos)
}
