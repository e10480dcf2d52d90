package namespace

import (
	"context"
	"slices"
	"testing"

	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

func expand(t *testing.T, e *Expander, root *syntax.Node, label string) []ExpandedName {
	t.Helper()
	name := syntax.FindLabel(root, label)
	if name == nil {
		t.Fatalf("no node labelled %q", label)
	}
	var out []ExpandedName
	for candidate := range e.Expand(context.Background(), name) {
		out = append(out, candidate)
	}
	return out
}

func TestNearestDefaultNamespaceWins(t *testing.T) {
	root := syntax.MustRead("nested.xqt", `(Module
  (MainModule
    (Prolog (DefaultNamespaceDecl target=element uri="urn:prolog"))
    (QueryBody
      (DirElemConstructor (QName local=outer) (DirNamespaceAttribute uri="urn:outer")
        (DirElemConstructor (QName local=inner) (DirNamespaceAttribute uri="urn:inner")
          (PathExpr (NameTest (NCName @inner local=item))))
        (PathExpr (NameTest (NCName @outer local=item)))))))`)
	e := NewExpander(nil, nil)

	got := expand(t, e, root, "inner")
	if len(got) != 1 || got[0].Namespace != "urn:inner" {
		t.Fatalf("expected only urn:inner, got %v", got)
	}
	got = expand(t, e, root, "outer")
	if len(got) != 1 || got[0].Namespace != "urn:outer" {
		t.Fatalf("expected only urn:outer, got %v", got)
	}
}

func TestEmptyDefaultNamespaceStopsWalk(t *testing.T) {
	// xmlns="" undeclares the default; the prolog default is not a fallback.
	root := syntax.MustRead("undeclare.xqt", `(Module
  (MainModule
    (Prolog (DefaultNamespaceDecl target=element uri="urn:prolog"))
    (QueryBody
      (DirElemConstructor (QName local=e) (DirNamespaceAttribute uri="")
        (PathExpr (NameTest (NCName @name local=item)))))))`)

	got := expand(t, NewExpander(nil, nil), root, "name")
	if len(got) != 0 {
		t.Fatalf("expected empty expansion, got %v", got)
	}
}

func TestPrefixRecoveryForDefaultNamespace(t *testing.T) {
	root := syntax.MustRead("recover.xqt", `(Module
  (MainModule
    (Prolog
      (NamespaceDecl prefix=h uri="urn:html")
      (DefaultNamespaceDecl target=element uri="urn:html"))
    (QueryBody (PathExpr (NameTest (NCName @name local=div))))))`)

	got := expand(t, NewExpander(nil, nil), root, "name")
	want := []ExpandedName{{Namespace: "urn:html", Prefix: "h", Local: "div"}}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPrefixedNameExpansion(t *testing.T) {
	root := syntax.MustRead("prefixed.xqt", `(Module
  (MainModule
    (Prolog
      (NamespaceDecl prefix=a uri="urn:a")
      (ModuleImport prefix=b uri="urn:b"))
    (QueryBody
      (FunctionCall @call (QName prefix=b local=f) (ArgumentList))
      (FunctionCall @missing (QName prefix=zz local=f) (ArgumentList))
      (FunctionCall @builtin (QName prefix=math local=pi) (ArgumentList)))))`)
	e := NewExpander(nil, nil)

	name := syntax.FindLabel(root, "call").NameChild()
	var got []ExpandedName
	for c := range e.Expand(context.Background(), name) {
		got = append(got, c)
	}
	if !slices.Equal(got, []ExpandedName{{Namespace: "urn:b", Prefix: "b", Local: "f"}}) {
		t.Fatalf("unexpected expansion %v", got)
	}

	name = syntax.FindLabel(root, "missing").NameChild()
	for c := range e.Expand(context.Background(), name) {
		t.Fatalf("unbound prefix expanded to %v", c)
	}

	name = syntax.FindLabel(root, "builtin").NameChild()
	got = got[:0]
	for c := range e.Expand(context.Background(), name) {
		got = append(got, c)
	}
	if len(got) != 1 || got[0].Namespace != MathNamespace {
		t.Fatalf("expected predefined math binding, got %v", got)
	}
}

func TestURIQualifiedNameRoundTrip(t *testing.T) {
	root := syntax.MustRead("uri.xqt", `(Module
  (MainModule
    (Prolog
      (NamespaceDecl prefix=p uri="urn:p")
      (NamespaceDecl prefix=q uri="urn:p"))
    (QueryBody
      (FunctionCall (URIQualifiedName @known uri="urn:p" local=f) (ArgumentList))
      (FunctionCall (URIQualifiedName @unknown uri="urn:nobody" local=g) (ArgumentList)))))`)
	e := NewExpander(nil, nil)

	got := expand(t, e, root, "known")
	var prefixes []string
	for _, c := range got {
		if c.Namespace != "urn:p" {
			t.Fatalf("URI-qualified name changed namespace: %v", c)
		}
		prefixes = append(prefixes, c.Prefix)
	}
	if !slices.Equal(prefixes, []string{"q", "p"}) {
		t.Fatalf("expected prefixes [q p], got %v", prefixes)
	}

	got = expand(t, e, root, "unknown")
	if !slices.Equal(got, []ExpandedName{{Namespace: "urn:nobody", Local: "g"}}) {
		t.Fatalf("expected unchanged name, got %v", got)
	}
}

func TestClassifiedExpansion(t *testing.T) {
	root := syntax.MustRead("kinds.xqt", `(Module
  (MainModule
    (Prolog
      (DefaultNamespaceDecl target=function uri="urn:funcs")
      (Annotation (NCName @annotation local=private))
      (OptionDecl (NCName @option local=indent) (Literal value=yes)))
    (QueryBody
      (VarRef (NCName @var local=x))
      (FunctionCall (NCName @call local=count) (ArgumentList))
      (PathExpr (NameTest axis=attribute (NCName @attr local=id))))))`)
	e := NewExpander(nil, nil)

	cases := []struct {
		label string
		want  ExpandedName
	}{
		{"annotation", ExpandedName{Namespace: AnnotationsNamespace, Local: "private"}},
		{"option", ExpandedName{Namespace: OptionsNamespace, Local: "indent"}},
		{"var", ExpandedName{Local: "x"}},
		{"call", ExpandedName{Namespace: "urn:funcs", Local: "count"}},
		{"attr", ExpandedName{Local: "id"}},
	}
	for _, tc := range cases {
		got := expand(t, e, root, tc.label)
		if !slices.Equal(got, []ExpandedName{tc.want}) {
			t.Fatalf("%s: expected %v, got %v", tc.label, tc.want, got)
		}
	}
}

func TestFunctionCallFallsBackToPredefinedFn(t *testing.T) {
	root := syntax.MustRead("fn.xqt", `(Module
  (MainModule
    (QueryBody (FunctionCall (NCName @call local=count) (ArgumentList)))))`)

	got := expand(t, NewExpander(nil, nil), root, "call")
	want := []ExpandedName{{Namespace: FunctionsNamespace, Prefix: "fn", Local: "count"}}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDefaultElementNamespaceByVersion(t *testing.T) {
	old := syntax.MustRead("v31.xqt", `(Module (VersionDecl version="3.1")
  (MainModule
    (Prolog (DefaultNamespaceDecl target=element uri="urn:el"))
    (QueryBody (TypeName (NCName @type local=t)))))`)
	if got := expand(t, NewExpander(nil, nil), old, "type"); len(got) != 1 || got[0].Namespace != "urn:el" {
		t.Fatalf("3.1: element default should cover types, got %v", got)
	}

	v4 := syntax.MustRead("v40.xqt", `(Module (VersionDecl version="4.0")
  (MainModule
    (Prolog (DefaultNamespaceDecl target=element uri="urn:el"))
    (QueryBody (TypeName (NCName @type local=t)))))`)
	if got := expand(t, NewExpander(nil, nil), v4, "type"); len(got) != 0 {
		t.Fatalf("4.0: element default must not cover types, got %v", got)
	}
}

func TestDefaultNamespacesFallBackToImportedLibraries(t *testing.T) {
	lib := syntax.MustRead("lib.xqt", `(Module
  (LibraryModule
    (ModuleDecl prefix=lib uri="urn:lib")
    (Prolog (DefaultNamespaceDecl target=element uri="urn:lib-elements"))))`)
	main := syntax.MustRead("main.xqt", `(Module
  (MainModule
    (Prolog (ModuleImport prefix=lib uri="urn:lib"))
    (QueryBody (PathExpr (NameTest (NCName @name local=item))))))`)
	libProlog, _ := module.FromTree(lib)
	r := module.ResolverFunc(func(_ context.Context, req module.ImportRequest) []module.Prolog {
		if req.Namespace == "urn:lib" {
			return []module.Prolog{libProlog}
		}
		return nil
	})
	ix := NewIndex(r)
	name := syntax.FindLabel(main, "name")

	var got []string
	for b := range ix.DefaultNamespaces(context.Background(), name, Element) {
		got = append(got, b.URI)
	}
	if !slices.Equal(got, []string{"urn:lib-elements"}) {
		t.Fatalf("expected imported default, got %v", got)
	}

	got = got[:0]
	for b := range ix.DefaultNamespaces(context.Background(), name, DefaultFunctionRef) {
		got = append(got, b.URI)
	}
	if !slices.Equal(got, []string{FunctionsNamespace}) {
		t.Fatalf("function defaults must not use the import fallback, got %v", got)
	}
}

func TestStaticallyKnownNamespacesOrder(t *testing.T) {
	root := syntax.MustRead("known.xqt", `(Module
  (LibraryModule
    (ModuleDecl prefix=m uri="urn:m")
    (Prolog
      (NamespaceDecl prefix=a uri="urn:a")
      (NamespaceDecl prefix=b uri="urn:b")
      (FunctionDecl (QName prefix=m local=f) (ParamList)
        (FunctionBody
          (DirElemConstructor (QName local=e) (DirNamespaceAttribute prefix=c uri="urn:c")
            (Expr @here)))))))`)
	ix := NewIndex(nil)

	var prefixes []string
	for b := range ix.StaticallyKnownNamespaces(context.Background(), syntax.FindLabel(root, "here")) {
		prefixes = append(prefixes, b.Prefix)
	}
	want := []string{"c", "b", "a", "m", "xml", "xs", "xsi", "fn", "local", "math", "map", "array", "err"}
	if !slices.Equal(prefixes, want) {
		t.Fatalf("expected %v, got %v", want, prefixes)
	}
}

func TestExpandStopsWhenCancelled(t *testing.T) {
	root := syntax.MustRead("cancel.xqt", `(Module
  (MainModule
    (Prolog (NamespaceDecl prefix=p uri="urn:p"))
    (QueryBody (FunctionCall (QName @call prefix=p local=f) (ArgumentList)))))`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for c := range NewExpander(nil, nil).Expand(ctx, syntax.FindLabel(root, "call")) {
		t.Fatalf("cancelled expansion yielded %v", c)
	}
}

func TestAccepts(t *testing.T) {
	cases := []struct {
		binding Kind
		want    Kind
		ok      bool
	}{
		{DefaultElementOrType, Element, true},
		{DefaultElementOrType, Type, true},
		{Element, Type, false},
		{Function, DefaultFunctionDecl, true},
		{Function, DefaultFunctionRef, true},
		{DefaultFunctionRef, DefaultFunctionDecl, false},
		{None, None, false},
		{BuiltinFixed, BuiltinFixed, true},
	}
	for _, tc := range cases {
		if got := (Binding{Kind: tc.binding}).Accepts(tc.want); got != tc.ok {
			t.Fatalf("%s.Accepts(%s) = %v, want %v", tc.binding, tc.want, got, tc.ok)
		}
	}
	if (Binding{Kind: DefaultElementOrType, Prefix: "p"}).Accepts(Element) {
		t.Fatal("prefixed binding must not act as a default")
	}
}
