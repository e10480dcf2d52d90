package module

import (
	"context"
	"iter"
)

// visitKey identifies a module reached through a namespace binding. A module
// imported under two different namespaces is visited once per namespace.
type visitKey struct {
	namespace string
	resource  ResourceID
}

// Walker enumerates modules reachable through import declarations. The
// visited set lives for one top-level query so diamond and cyclic imports
// are walked once; create a new Walker per query.
type Walker struct {
	resolver Resolver
	visited  map[visitKey]struct{}
}

// NewWalker returns a walker that resolves imports through r. A nil r walks
// only the starting module.
func NewWalker(r Resolver) *Walker {
	return &Walker{
		resolver: r,
		visited:  make(map[visitKey]struct{}),
	}
}

// ImportedProlog yields start followed by every module reachable from it
// through imports, depth first.
func ImportedProlog(ctx context.Context, r Resolver, start Prolog) iter.Seq[Prolog] {
	return NewWalker(r).Imported(ctx, start)
}

// Visit records that p was reached under namespace and reports whether this
// is the first time.
func (w *Walker) Visit(namespace string, p Prolog) bool {
	key := visitKey{namespace: namespace, resource: p.Resource}
	if _, seen := w.visited[key]; seen {
		return false
	}
	w.visited[key] = struct{}{}
	return true
}

// Imported yields start (unless already visited) and the modules it imports,
// transitively.
func (w *Walker) Imported(ctx context.Context, start Prolog) iter.Seq[Prolog] {
	return func(yield func(Prolog) bool) {
		if start.IsZero() || !w.Visit(start.Namespace, start) {
			return
		}
		w.descend(ctx, start, yield)
	}
}

// ImportedUnder yields the modules start imports under namespace, each
// followed by the modules reachable from it.
func (w *Walker) ImportedUnder(ctx context.Context, start Prolog, namespace string) iter.Seq[Prolog] {
	return func(yield func(Prolog) bool) {
		for _, imp := range start.Imports() {
			if imp.Namespace != namespace {
				continue
			}
			for _, target := range w.resolve(ctx, start, imp) {
				if !w.Visit(imp.Namespace, target) {
					continue
				}
				if !w.descend(ctx, target, yield) {
					return
				}
			}
		}
	}
}

func (w *Walker) descend(ctx context.Context, p Prolog, yield func(Prolog) bool) bool {
	if ctx.Err() != nil || !yield(p) {
		return false
	}
	for _, imp := range p.Imports() {
		for _, target := range w.resolve(ctx, p, imp) {
			if !w.Visit(imp.Namespace, target) {
				continue
			}
			if !w.descend(ctx, target, yield) {
				return false
			}
		}
	}
	return true
}

func (w *Walker) resolve(ctx context.Context, from Prolog, imp Import) []Prolog {
	if w.resolver == nil || imp.Namespace == "" || ctx.Err() != nil {
		return nil
	}
	targets := w.resolver.ResolveImport(ctx, ImportRequest{
		Namespace: imp.Namespace,
		Locations: imp.Locations,
		From:      from.Resource,
	})
	out := targets[:0:0]
	for _, target := range targets {
		if !target.IsZero() {
			out = append(out, target)
		}
	}
	return out
}
