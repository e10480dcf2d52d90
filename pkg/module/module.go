// Package module models XQuery modules as seen by static analysis: the prolog
// of each module, its import declarations, the pluggable resolver that maps an
// import to target modules, and the import graph walker.
package module

import (
	"context"
	"strings"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// ResourceID is the stable identity of a module resource (a file path, or a
// "builtin:" name for registry modules). Two trees read from the same
// resource share a ResourceID even though their nodes differ.
type ResourceID string

// Prolog is the declarations section of one module.
type Prolog struct {
	Resource  ResourceID
	Namespace string
	Module    *syntax.Node
	Node      *syntax.Node
}

// Import is a module import declaration in a prolog.
type Import struct {
	Namespace string
	Prefix    string
	Locations []string
	Decl      *syntax.Node
}

// ImportRequest asks a Resolver for the modules an import declaration names.
type ImportRequest struct {
	Namespace string
	Locations []string
	From      ResourceID
}

// Resolver maps an import to zero or more target modules. Implementations
// must be deterministic for a given tree snapshot.
type Resolver interface {
	ResolveImport(ctx context.Context, req ImportRequest) []Prolog
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, req ImportRequest) []Prolog

func (f ResolverFunc) ResolveImport(ctx context.Context, req ImportRequest) []Prolog {
	return f(ctx, req)
}

// FromModule builds the Prolog of a MainModule or LibraryModule node.
func FromModule(resource ResourceID, mod *syntax.Node) Prolog {
	if mod == nil || !mod.Kind().IsModule() {
		return Prolog{}
	}
	p := Prolog{
		Resource: resource,
		Module:   mod,
		Node:     mod.FirstChild(syntax.KindProlog),
	}
	if decl := mod.FirstChild(syntax.KindModuleDecl); decl != nil {
		p.Namespace = strings.TrimSpace(decl.AttrOr(syntax.AttrURI, ""))
	}
	return p
}

// FromTree returns the Prolog of the module a file tree holds.
func FromTree(root *syntax.Node) (Prolog, bool) {
	if root == nil {
		return Prolog{}, false
	}
	if root.Kind().IsModule() {
		return FromModule(ResourceID(root.Source()), root), true
	}
	for _, child := range root.Children() {
		if child.Kind().IsModule() {
			return FromModule(ResourceID(root.Source()), child), true
		}
	}
	return Prolog{}, false
}

// FileProlog returns the Prolog of the module enclosing n.
func FileProlog(n *syntax.Node) Prolog {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Kind().IsModule() {
			return FromModule(ResourceID(cur.Source()), cur)
		}
	}
	p, _ := FromTree(n.Root())
	return p
}

// IsZero reports whether p refers to no module.
func (p Prolog) IsZero() bool {
	return p.Module == nil
}

// IsLibrary reports whether p belongs to a library module.
func (p Prolog) IsLibrary() bool {
	return p.Module.Kind() == syntax.KindLibraryModule
}

// Declarations returns the prolog's declarations in textual order.
func (p Prolog) Declarations() []*syntax.Node {
	return p.Node.Children()
}

// Imports returns the prolog's module imports in textual order.
func (p Prolog) Imports() []Import {
	var out []Import
	for _, decl := range p.Declarations() {
		if decl.Kind() != syntax.KindModuleImport {
			continue
		}
		out = append(out, Import{
			Namespace: strings.TrimSpace(decl.AttrOr(syntax.AttrURI, "")),
			Prefix:    strings.TrimSpace(decl.AttrOr(syntax.AttrPrefix, "")),
			Locations: strings.Fields(decl.AttrOr(syntax.AttrLocations, "")),
			Decl:      decl,
		})
	}
	return out
}

// FunctionDecls returns the prolog's function declarations in textual order.
func (p Prolog) FunctionDecls() []*syntax.Node {
	return p.Node.ChildrenOf(syntax.KindFunctionDecl)
}

// VarDecls returns the prolog's variable declarations in textual order.
func (p Prolog) VarDecls() []*syntax.Node {
	return p.Node.ChildrenOf(syntax.KindVarDecl)
}
