package module

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

//go:embed builtin/*.xqt
var builtinFS embed.FS

// Registry holds fixed modules addressed by well-known namespace URI.
// A Registry is immutable once built.
type Registry struct {
	byNamespace map[string][]Prolog
	namespaces  []string
}

// NewRegistry indexes the library modules held by trees by their module
// namespace. Trees that are not library modules are ignored.
func NewRegistry(trees ...*syntax.Node) *Registry {
	r := &Registry{byNamespace: make(map[string][]Prolog)}
	for _, tree := range trees {
		p, ok := FromTree(tree)
		if !ok || !p.IsLibrary() || p.Namespace == "" {
			continue
		}
		if _, exists := r.byNamespace[p.Namespace]; !exists {
			r.namespaces = append(r.namespaces, p.Namespace)
		}
		r.byNamespace[p.Namespace] = append(r.byNamespace[p.Namespace], p)
	}
	sort.Strings(r.namespaces)
	return r
}

var (
	builtinOnce     sync.Once
	builtinRegistry *Registry
	builtinErr      error
)

// Builtins returns the registry of built-in function modules (fn, math, map,
// array) shipped with the package.
func Builtins() (*Registry, error) {
	builtinOnce.Do(func() {
		builtinRegistry, builtinErr = loadBuiltins()
	})
	return builtinRegistry, builtinErr
}

// MustBuiltins is Builtins for callers that treat a broken embedded module as
// a programming error.
func MustBuiltins() *Registry {
	r, err := Builtins()
	if err != nil {
		panic(err)
	}
	return r
}

func loadBuiltins() (*Registry, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin modules: %w", err)
	}
	trees := make([]*syntax.Node, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xqt") {
			continue
		}
		data, err := builtinFS.ReadFile(path.Join("builtin", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read builtin module %s: %w", entry.Name(), err)
		}
		source := "builtin:" + strings.TrimSuffix(entry.Name(), ".xqt")
		tree, err := syntax.Read(source, data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin module %s: %w", entry.Name(), err)
		}
		trees = append(trees, tree)
	}
	return NewRegistry(trees...), nil
}

// Lookup returns the modules registered for namespace.
func (r *Registry) Lookup(namespace string) []Prolog {
	if r == nil {
		return nil
	}
	return r.byNamespace[namespace]
}

// Namespaces lists the registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.namespaces...)
}

// ResolveImport lets a Registry serve as a Resolver on its own; location
// hints are ignored.
func (r *Registry) ResolveImport(_ context.Context, req ImportRequest) []Prolog {
	return r.Lookup(req.Namespace)
}
