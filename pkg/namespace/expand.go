package namespace

import (
	"context"
	"iter"

	"github.com/odvcencio/xqscope/internal/xiter"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

// ExpandedName is one resolution candidate of a qualified name.
type ExpandedName struct {
	Namespace string `json:"namespace"`
	Prefix    string `json:"prefix,omitempty"`
	Local     string `json:"local"`
}

// Matches reports whether e and other denote the same expanded QName.
// Prefixes are presentation only.
func (e ExpandedName) Matches(other ExpandedName) bool {
	return e.Namespace == other.Namespace && e.Local == other.Local
}

// String renders e in URIQualifiedName form.
func (e ExpandedName) String() string {
	return "Q{" + e.Namespace + "}" + e.Local
}

// Expander turns name nodes into expanded-name candidates.
type Expander struct {
	index      *Index
	classifier Classifier
}

// NewExpander returns an expander over index. A nil classifier selects
// DefaultClassifier.
func NewExpander(index *Index, classifier Classifier) *Expander {
	if index == nil {
		index = NewIndex(nil)
	}
	if classifier == nil {
		classifier = DefaultClassifier
	}
	return &Expander{index: index, classifier: classifier}
}

func (e *Expander) Index() *Index {
	return e.index
}

// Classify returns the namespace kind of name.
func (e *Expander) Classify(name *syntax.Node) Kind {
	return e.classifier.Classify(name)
}

// Expand yields the expanded-name candidates of name. An unresolvable name
// yields nothing.
func (e *Expander) Expand(ctx context.Context, name *syntax.Node) iter.Seq[ExpandedName] {
	return func(yield func(ExpandedName) bool) {
		local := name.LocalName()
		if local == "" || ctx.Err() != nil {
			return
		}
		switch {
		case name.Kind() == syntax.KindURIQualifiedName:
			e.expandURI(ctx, name, local, yield)
		case name.Prefix() != "":
			e.expandPrefixed(ctx, name, local, yield)
		default:
			e.expandUnprefixed(ctx, name, local, yield)
		}
	}
}

func (e *Expander) expandUnprefixed(ctx context.Context, name *syntax.Node, local string, yield func(ExpandedName) bool) {
	kind := e.classifier.Classify(name)
	switch kind {
	case None:
		yield(ExpandedName{Local: local})
		return
	case BuiltinFixed:
		yield(ExpandedName{Namespace: FixedNamespace(name), Local: local})
		return
	}
	def, found := xiter.First(e.index.DefaultNamespaces(ctx, name, kind))
	if !found {
		return
	}
	for b := range e.index.StaticallyKnownNamespaces(ctx, name) {
		if b.URI == def.URI {
			yield(ExpandedName{Namespace: def.URI, Prefix: b.Prefix, Local: local})
			return
		}
	}
	if ctx.Err() != nil {
		return
	}
	yield(ExpandedName{Namespace: def.URI, Local: local})
}

func (e *Expander) expandPrefixed(ctx context.Context, name *syntax.Node, local string, yield func(ExpandedName) bool) {
	prefix := name.Prefix()
	for b := range e.index.StaticallyKnownNamespaces(ctx, name) {
		if b.Prefix != prefix {
			continue
		}
		if !yield(ExpandedName{Namespace: b.URI, Prefix: prefix, Local: local}) {
			return
		}
	}
}

func (e *Expander) expandURI(ctx context.Context, name *syntax.Node, local string, yield func(ExpandedName) bool) {
	uri := name.NamespaceURI()
	matched := false
	for b := range e.index.StaticallyKnownNamespaces(ctx, name) {
		if b.URI != uri {
			continue
		}
		matched = true
		if !yield(ExpandedName{Namespace: uri, Prefix: b.Prefix, Local: local}) {
			return
		}
	}
	if !matched && ctx.Err() == nil {
		yield(ExpandedName{Namespace: uri, Local: local})
	}
}
