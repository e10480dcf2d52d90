package namespace

import (
	"context"
	"iter"

	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// Index answers which namespace bindings are in scope at a tree position.
// It holds no per-query state and may be shared between goroutines if its
// resolver may.
type Index struct {
	resolver module.Resolver
}

// NewIndex returns an index that consults modules reachable through r for
// the default element/type fallback. A nil r disables the fallback.
func NewIndex(r module.Resolver) *Index {
	return &Index{resolver: r}
}

// level is the set of bindings one enclosing construct declares, nearest
// first. module is set when the construct is a module boundary.
type level struct {
	bindings []Binding
	module   *syntax.Node
}

// levels yields the binding levels enclosing n, innermost first, ending at
// the first module boundary.
func levels(n *syntax.Node) iter.Seq[level] {
	return func(yield func(level) bool) {
		var from *syntax.Node
		for cur := n; cur != nil; from, cur = cur, cur.Parent() {
			switch cur.Kind() {
			case syntax.KindDirElemConstructor, syntax.KindProlog:
				if !yield(level{bindings: declaredReverse(cur)}) {
					return
				}
			case syntax.KindMainModule, syntax.KindLibraryModule:
				var bindings []Binding
				if prolog := cur.FirstChild(syntax.KindProlog); prolog != nil && prolog != from {
					bindings = declaredReverse(prolog)
				}
				if decl := cur.FirstChild(syntax.KindModuleDecl); decl != nil {
					bindings = append(bindings, Declared(decl)...)
				}
				yield(level{bindings: bindings, module: cur})
				return
			}
		}
	}
}

// DefaultNamespaces yields the default bindings that apply to names of kind
// at n, nearest first. The walk stops after the nearest scope that declares
// a default of the requested kind, even if that declaration binds the empty
// namespace; outer defaults are never consulted as a fallback. Bindings with
// an empty URI are not yielded.
func (ix *Index) DefaultNamespaces(ctx context.Context, n *syntax.Node, kind Kind) iter.Seq[Binding] {
	return func(yield func(Binding) bool) {
		seen := false
		emit := func(b Binding) bool {
			if !b.Accepts(kind) {
				return true
			}
			seen = true
			if b.URI == "" {
				return true
			}
			return ctx.Err() == nil && yield(b)
		}
		var boundary *syntax.Node
		for lvl := range levels(n) {
			for _, b := range lvl.bindings {
				if !emit(b) {
					return
				}
			}
			if seen {
				return
			}
			boundary = lvl.module
		}
		for _, b := range predefined {
			if !emit(b) {
				return
			}
		}
		if seen || boundary == nil || !fallsBack(kind) {
			return
		}
		ix.importedDefaults(ctx, boundary, kind, yield)
	}
}

func fallsBack(kind Kind) bool {
	return kind == Element || kind == Type || kind == DefaultElementOrType
}

// importedDefaults yields the default element/type namespaces declared by
// library modules reachable from mod through imports.
func (ix *Index) importedDefaults(ctx context.Context, mod *syntax.Node, kind Kind, yield func(Binding) bool) {
	if ix == nil || ix.resolver == nil {
		return
	}
	start := module.FromModule(module.ResourceID(mod.Source()), mod)
	for p := range module.ImportedProlog(ctx, ix.resolver, start) {
		if p.Module == mod || !p.IsLibrary() {
			continue
		}
		for _, b := range declaredReverse(p.Node) {
			if b.Kind != DefaultElementOrType || !b.Accepts(kind) || b.URI == "" {
				continue
			}
			if ctx.Err() != nil || !yield(b) {
				return
			}
		}
	}
}

type prefixKey struct {
	prefix string
	uri    string
}

// StaticallyKnownNamespaces yields every prefixed binding in scope at n,
// nearest first, once per (prefix, URI) pair. The predefined prefixes come
// last.
func (ix *Index) StaticallyKnownNamespaces(ctx context.Context, n *syntax.Node) iter.Seq[Binding] {
	return func(yield func(Binding) bool) {
		seen := make(map[prefixKey]struct{})
		emit := func(b Binding) bool {
			if b.Prefix == "" {
				return true
			}
			key := prefixKey{prefix: b.Prefix, uri: b.URI}
			if _, dup := seen[key]; dup {
				return true
			}
			seen[key] = struct{}{}
			return ctx.Err() == nil && yield(b)
		}
		for lvl := range levels(n) {
			for _, b := range lvl.bindings {
				if !emit(b) {
					return
				}
			}
		}
		for _, b := range predefined {
			if !emit(b) {
				return
			}
		}
	}
}
