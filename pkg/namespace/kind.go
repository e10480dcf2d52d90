// Package namespace resolves qualified names against the namespace bindings in
// scope at a syntax tree position: explicit prefix declarations, default
// element/type/function namespaces, namespace attributes of direct element
// constructors and the predefined static context.
package namespace

import "github.com/odvcencio/xqscope/pkg/syntax"

// Kind classifies why a name needs namespace resolution, and which default
// namespaces a binding supplies.
type Kind uint8

const (
	None Kind = iota
	Element
	Function
	Type
	DefaultElementOrType
	DefaultFunctionDecl
	DefaultFunctionRef
	BuiltinFixed
)

var kindNames = [...]string{
	None:                 "none",
	Element:              "element",
	Function:             "function",
	Type:                 "type",
	DefaultElementOrType: "default-element-or-type",
	DefaultFunctionDecl:  "default-function-decl",
	DefaultFunctionRef:   "default-function-ref",
	BuiltinFixed:         "builtin-fixed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Binding is a namespace URI, optionally bound to a prefix, supplied by a
// declaring node. Predefined bindings have no Decl.
type Binding struct {
	URI    string
	Prefix string
	Kind   Kind
	Decl   *syntax.Node
}

// Accepts reports whether b supplies the default namespace for names
// classified as want. Prefixed bindings never act as defaults.
func (b Binding) Accepts(want Kind) bool {
	if b.Prefix != "" {
		return false
	}
	switch b.Kind {
	case Element:
		return want == Element
	case Type:
		return want == Type
	case DefaultElementOrType:
		return want == Element || want == Type || want == DefaultElementOrType
	case Function:
		return want == DefaultFunctionDecl || want == DefaultFunctionRef
	case DefaultFunctionDecl:
		return want == DefaultFunctionDecl
	case DefaultFunctionRef:
		return want == DefaultFunctionRef
	case BuiltinFixed:
		return want == BuiltinFixed
	default:
		return false
	}
}

// IsDefault reports whether b is an unprefixed default binding.
func (b Binding) IsDefault() bool {
	return b.Prefix == "" && b.Kind != None
}
