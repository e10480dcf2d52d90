package module

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// library builds a library module tree declaring namespace ns and importing
// each of imports (namespace URIs).
func library(t *testing.T, source, ns string, imports ...string) Prolog {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "(Module (LibraryModule (ModuleDecl prefix=m uri=%q) (Prolog", ns)
	for _, imp := range imports {
		fmt.Fprintf(&b, " (ModuleImport uri=%q)", imp)
	}
	b.WriteString(")))")
	root, err := syntax.Read(source, []byte(b.String()))
	if err != nil {
		t.Fatalf("read %s: %v", source, err)
	}
	p, ok := FromTree(root)
	if !ok {
		t.Fatalf("%s holds no module", source)
	}
	return p
}

type mapResolver map[string][]Prolog

func (m mapResolver) ResolveImport(_ context.Context, req ImportRequest) []Prolog {
	return m[req.Namespace]
}

func resources(seq func(func(Prolog) bool)) []ResourceID {
	var out []ResourceID
	for p := range seq {
		out = append(out, p.Resource)
	}
	return out
}

func TestImportedPrologTerminatesOnCycle(t *testing.T) {
	a := library(t, "a.xqt", "urn:a", "urn:b")
	b := library(t, "b.xqt", "urn:b", "urn:a")
	r := mapResolver{"urn:a": {a}, "urn:b": {b}}

	got := resources(ImportedProlog(context.Background(), r, a))
	want := []ResourceID{"a.xqt", "b.xqt"}
	if !slices.Equal(got, want) {
		t.Fatalf("ImportedProlog() = %v, want %v", got, want)
	}
}

func TestImportedPrologDiamondVisitsSharedModuleOnce(t *testing.T) {
	top := library(t, "top.xqt", "urn:top", "urn:left", "urn:right")
	left := library(t, "left.xqt", "urn:left", "urn:base")
	right := library(t, "right.xqt", "urn:right", "urn:base")
	base := library(t, "base.xqt", "urn:base")
	r := mapResolver{"urn:left": {left}, "urn:right": {right}, "urn:base": {base}}

	got := resources(ImportedProlog(context.Background(), r, top))
	want := []ResourceID{"top.xqt", "left.xqt", "base.xqt", "right.xqt"}
	if !slices.Equal(got, want) {
		t.Fatalf("ImportedProlog() = %v, want %v", got, want)
	}
}

func TestImportedPrologKeysOnNamespaceAndResource(t *testing.T) {
	// The same resource reached under two import namespaces is walked twice.
	shared := library(t, "shared.xqt", "urn:one")
	top := library(t, "top.xqt", "urn:top", "urn:one", "urn:two")
	r := mapResolver{"urn:one": {shared}, "urn:two": {shared}}

	got := resources(ImportedProlog(context.Background(), r, top))
	want := []ResourceID{"top.xqt", "shared.xqt", "shared.xqt"}
	if !slices.Equal(got, want) {
		t.Fatalf("ImportedProlog() = %v, want %v", got, want)
	}
}

func TestImportedPrologSeparateTreesSameResource(t *testing.T) {
	// Two distinct trees of one resource are a single module for dedup.
	first := library(t, "dup.xqt", "urn:dup", "urn:dup")
	second := library(t, "dup.xqt", "urn:dup", "urn:dup")
	r := mapResolver{"urn:dup": {second}}

	got := resources(ImportedProlog(context.Background(), r, first))
	if len(got) != 1 {
		t.Fatalf("expected a single visit, got %v", got)
	}
}

func TestImportedUnderFiltersByNamespace(t *testing.T) {
	a := library(t, "a.xqt", "urn:a", "urn:b", "urn:c")
	b := library(t, "b.xqt", "urn:b")
	c := library(t, "c.xqt", "urn:c")
	r := mapResolver{"urn:b": {b}, "urn:c": {c}}

	w := NewWalker(r)
	got := resources(w.ImportedUnder(context.Background(), a, "urn:c"))
	if !slices.Equal(got, []ResourceID{"c.xqt"}) {
		t.Fatalf("ImportedUnder() = %v, want [c.xqt]", got)
	}
	// The shared visited set keeps c from being walked again.
	got = resources(w.Imported(context.Background(), a))
	if !slices.Equal(got, []ResourceID{"a.xqt", "b.xqt"}) {
		t.Fatalf("Imported() after ImportedUnder = %v, want [a.xqt b.xqt]", got)
	}
}

func TestImportedPrologStopsWhenCancelled(t *testing.T) {
	a := library(t, "a.xqt", "urn:a", "urn:b")
	b := library(t, "b.xqt", "urn:b")
	r := mapResolver{"urn:b": {b}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []ResourceID
	for p := range ImportedProlog(ctx, r, a) {
		got = append(got, p.Resource)
		cancel()
	}
	if !slices.Equal(got, []ResourceID{"a.xqt"}) {
		t.Fatalf("expected walk to stop after first module, got %v", got)
	}
}

func TestFileProlog(t *testing.T) {
	root := syntax.MustRead("main.xqt", `(Module
  (MainModule
    (Prolog (ModuleImport prefix=x uri="urn:x" at="x.xqm y.xqm"))
    (QueryBody (VarRef @ref (NCName local=v)))))`)

	p := FileProlog(syntax.FindLabel(root, "ref"))
	if p.Resource != "main.xqt" || p.IsLibrary() {
		t.Fatalf("unexpected prolog %+v", p)
	}
	imports := p.Imports()
	if len(imports) != 1 {
		t.Fatalf("expected one import, got %d", len(imports))
	}
	if imports[0].Prefix != "x" || !slices.Equal(imports[0].Locations, []string{"x.xqm", "y.xqm"}) {
		t.Fatalf("unexpected import %+v", imports[0])
	}
}

func TestBuiltinsRegistry(t *testing.T) {
	r, err := Builtins()
	if err != nil {
		t.Fatalf("Builtins returned error: %v", err)
	}
	for _, ns := range []string{
		"http://www.w3.org/2005/xpath-functions",
		"http://www.w3.org/2005/xpath-functions/math",
		"http://www.w3.org/2005/xpath-functions/map",
		"http://www.w3.org/2005/xpath-functions/array",
	} {
		prologs := r.Lookup(ns)
		if len(prologs) != 1 {
			t.Fatalf("expected one builtin module for %s, got %d", ns, len(prologs))
		}
		if len(prologs[0].FunctionDecls()) == 0 {
			t.Fatalf("builtin module %s declares no functions", ns)
		}
	}
	if len(r.Namespaces()) != 4 {
		t.Fatalf("expected 4 builtin namespaces, got %v", r.Namespaces())
	}
}
