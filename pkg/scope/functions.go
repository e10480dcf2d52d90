package scope

import (
	"context"
	"iter"
	"slices"

	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// StaticallyKnownFunctions yields the function declarations the function
// name can refer to. For every expansion of name it searches the modules
// imported under the expanded namespace, then the current module, then the
// built-in module for that namespace. Later declarations come before
// earlier ones within a prolog. In arrow position only declarations with
// no parameters at all (Max == 0) are dropped; a function whose parameters
// are all optional still matches.
func (e *Engine) StaticallyKnownFunctions(ctx context.Context, name *syntax.Node) iter.Seq[FunctionDeclaration] {
	arrow := name.Parent().Kind() == syntax.KindArrowFunction
	return func(yield func(FunctionDeclaration) bool) {
		for p, decl := range e.matchingDecls(ctx, name, syntax.KindFunctionDecl) {
			fn, ok := newFunctionDeclaration(p, decl)
			if !ok {
				continue
			}
			if arrow && fn.Arity.Max == 0 {
				continue
			}
			if !yield(fn) {
				return
			}
		}
	}
}

// ReachableFunctions yields every function declared in the module enclosing
// pos, the modules it imports and the built-in modules. Private functions of
// other modules are skipped.
func (e *Engine) ReachableFunctions(ctx context.Context, pos *syntax.Node) iter.Seq[FunctionDeclaration] {
	return func(yield func(FunctionDeclaration) bool) {
		start := module.FileProlog(pos)
		w := module.NewWalker(e.resolver)
		emit := func(p module.Prolog) bool {
			for _, decl := range slices.Backward(p.FunctionDecls()) {
				if p.Resource != start.Resource && e.isPrivate(ctx, decl) {
					continue
				}
				fn, ok := newFunctionDeclaration(p, decl)
				if !ok {
					continue
				}
				if ctx.Err() != nil || !yield(fn) {
					return false
				}
			}
			return true
		}
		for p := range w.Imported(ctx, start) {
			if !emit(p) {
				return
			}
		}
		for _, ns := range e.builtins.Namespaces() {
			for _, p := range e.builtins.Lookup(ns) {
				if !w.Visit(ns, p) {
					continue
				}
				if !emit(p) {
					return
				}
			}
		}
	}
}

// searchScopes yields, in search order, the prologs that may declare names
// in namespace ns: modules imported under ns (with their own imports), the
// current module, and built-in modules registered for ns. w filters modules
// already searched.
func (e *Engine) searchScopes(ctx context.Context, w *module.Walker, start module.Prolog, ns string) iter.Seq[module.Prolog] {
	return func(yield func(module.Prolog) bool) {
		for p := range w.ImportedUnder(ctx, start, ns) {
			if !yield(p) {
				return
			}
		}
		if !start.IsZero() && w.Visit(start.Namespace, start) {
			if ctx.Err() != nil || !yield(start) {
				return
			}
		}
		for _, p := range e.builtins.Lookup(ns) {
			if !w.Visit(ns, p) {
				continue
			}
			if ctx.Err() != nil || !yield(p) {
				return
			}
		}
	}
}

// matchingDecls yields the prolog declarations of kind whose expanded name
// matches an expansion of name. Each declaration is yielded once even when
// several expansions or import paths reach it.
func (e *Engine) matchingDecls(ctx context.Context, name *syntax.Node, kind syntax.Kind) iter.Seq2[module.Prolog, *syntax.Node] {
	return func(yield func(module.Prolog, *syntax.Node) bool) {
		start := module.FileProlog(name)
		seen := make(map[*syntax.Node]struct{})
		for _, candidate := range e.expandAll(ctx, name) {
			w := module.NewWalker(e.resolver)
			for p := range e.searchScopes(ctx, w, start, candidate.Namespace) {
				for _, decl := range slices.Backward(p.Node.ChildrenOf(kind)) {
					declared := declName(decl)
					if declared == nil || declared.LocalName() != candidate.Local {
						continue
					}
					if _, dup := seen[decl]; dup {
						continue
					}
					if !e.inNamespace(ctx, declared, candidate.Namespace) {
						continue
					}
					if p.Resource != start.Resource && e.isPrivate(ctx, decl) {
						continue
					}
					seen[decl] = struct{}{}
					if ctx.Err() != nil || !yield(p, decl) {
						return
					}
				}
			}
		}
	}
}

// declName returns the name node of a prolog function or variable
// declaration, or nil when it has none.
func declName(decl *syntax.Node) *syntax.Node {
	if decl.Kind() == syntax.KindVarDecl {
		return bindingName(decl)
	}
	name := decl.NameChild()
	if name.LocalName() == "" {
		return nil
	}
	return name
}
