package scope

import (
	"context"

	"github.com/odvcencio/xqscope/internal/xiter"
	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/namespace"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// Engine resolves names against the static context of a syntax tree. An
// Engine holds no per-query state; every query builds its own import walk,
// so one Engine can serve concurrent queries over immutable trees.
type Engine struct {
	resolver   module.Resolver
	builtins   *module.Registry
	classifier namespace.Classifier
	expander   *namespace.Expander
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier replaces the namespace-kind classifier used for unprefixed
// names.
func WithClassifier(c namespace.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithBuiltins replaces the registry of built-in modules. A nil registry
// disables built-in lookups.
func WithBuiltins(r *module.Registry) Option {
	return func(e *Engine) {
		e.builtins = r
	}
}

// NewEngine returns an engine resolving imports through r.
func NewEngine(r module.Resolver, opts ...Option) *Engine {
	e := &Engine{
		resolver: r,
		builtins: module.MustBuiltins(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.expander = namespace.NewExpander(namespace.NewIndex(r), e.classifier)
	return e
}

// Expander returns the QName expander the engine resolves names with.
func (e *Engine) Expander() *namespace.Expander {
	return e.expander
}

// Builtins returns the built-in module registry, or nil.
func (e *Engine) Builtins() *module.Registry {
	return e.builtins
}

// expandAll collects the expanded-name candidates of name.
func (e *Engine) expandAll(ctx context.Context, name *syntax.Node) []namespace.ExpandedName {
	return xiter.Collect(e.expander.Expand(ctx, name))
}

// inNamespace reports whether name, expanded in its own context, has an
// expansion in namespace ns.
func (e *Engine) inNamespace(ctx context.Context, name *syntax.Node, ns string) bool {
	for candidate := range e.expander.Expand(ctx, name) {
		if candidate.Namespace == ns {
			return true
		}
	}
	return false
}

// isPrivate reports whether decl carries the %private annotation.
func (e *Engine) isPrivate(ctx context.Context, decl *syntax.Node) bool {
	for _, annotation := range decl.ChildrenOf(syntax.KindAnnotation) {
		name := annotation.NameChild()
		if name.LocalName() != "private" {
			continue
		}
		if e.inNamespace(ctx, name, namespace.AnnotationsNamespace) {
			return true
		}
	}
	return false
}
