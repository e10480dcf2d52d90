package namespace

import (
	"slices"
	"strconv"
	"strings"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// DefaultVersion is the language version assumed when a module has no
// version declaration.
const DefaultVersion = "3.1"

// Version returns the language version declared by the module tree n
// belongs to.
func Version(n *syntax.Node) string {
	root := n.Root()
	decl := root.FirstChild(syntax.KindVersionDecl)
	if decl == nil {
		for _, child := range root.Children() {
			if decl = child.FirstChild(syntax.KindVersionDecl); decl != nil {
				break
			}
		}
	}
	if v := strings.TrimSpace(decl.AttrOr(syntax.AttrVersion, "")); v != "" {
		return v
	}
	return DefaultVersion
}

// separateElementDefault reports whether version declares default element
// and default type namespaces independently.
func separateElementDefault(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	return err == nil && n >= 4
}

// Declared returns the bindings n declares, in textual order. Nodes that do
// not declare namespaces return nil.
func Declared(n *syntax.Node) []Binding {
	uri := strings.TrimSpace(n.AttrOr(syntax.AttrURI, ""))
	prefix := strings.TrimSpace(n.AttrOr(syntax.AttrPrefix, ""))
	switch n.Kind() {
	case syntax.KindNamespaceDecl, syntax.KindModuleDecl, syntax.KindModuleImport:
		if prefix == "" {
			return nil
		}
		return []Binding{{URI: uri, Prefix: prefix, Decl: n}}
	case syntax.KindSchemaImport:
		var out []Binding
		if prefix != "" {
			out = append(out, Binding{URI: uri, Prefix: prefix, Decl: n})
		}
		if n.AttrOr(syntax.AttrDefault, "") == "element" {
			out = append(out, Binding{URI: uri, Kind: elementDefault(n), Decl: n})
		}
		return out
	case syntax.KindDefaultNamespaceDecl:
		switch n.AttrOr(syntax.AttrTarget, "") {
		case "element":
			return []Binding{{URI: uri, Kind: elementDefault(n), Decl: n}}
		case "type":
			return []Binding{{URI: uri, Kind: Type, Decl: n}}
		case "function":
			return []Binding{{URI: uri, Kind: Function, Decl: n}}
		}
		return nil
	case syntax.KindDirNamespaceAttribute:
		if prefix != "" {
			return []Binding{{URI: uri, Prefix: prefix, Decl: n}}
		}
		return []Binding{{URI: uri, Kind: elementDefault(n), Decl: n}}
	default:
		return nil
	}
}

func elementDefault(n *syntax.Node) Kind {
	if separateElementDefault(Version(n)) {
		return Element
	}
	return DefaultElementOrType
}

// declaredReverse returns the bindings declared by the children of n, last
// declaration first.
func declaredReverse(n *syntax.Node) []Binding {
	var out []Binding
	for _, child := range slices.Backward(n.Children()) {
		bindings := Declared(child)
		for _, b := range slices.Backward(bindings) {
			out = append(out, b)
		}
	}
	return out
}
