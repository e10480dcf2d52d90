// Package syntax provides the read-only syntax tree consumed by the static-context
// resolution packages: tagged nodes with parent/child/sibling navigation, the
// attributes name and declaration nodes carry, and source spans.
package syntax

import (
	"fmt"
	"strings"
)

// Attribute keys understood by the resolution packages.
const (
	AttrPrefix     = "prefix"
	AttrLocal      = "local"
	AttrURI        = "uri"
	AttrVersion    = "version"
	AttrTarget     = "target"
	AttrLocations  = "at"
	AttrDefault    = "default"
	AttrArity      = "arity"
	AttrWindow     = "window"
	AttrRole       = "role"
	AttrQuantifier = "quantifier"
	AttrValue      = "value"
	AttrAxis       = "axis"
)

// Point is a 1-based line/column position.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether p sorts strictly before other.
func (p Point) Before(other Point) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open source range [Start, End) a node covers.
type Span struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Contains reports whether p falls inside the span.
func (s Span) Contains(p Point) bool {
	if s.Start.Line == 0 {
		return false
	}
	return !p.Before(s.Start) && p.Before(s.End)
}

// Attr is a single key/value attribute of a node.
type Attr struct {
	Key   string
	Value string
}

// Node is an immutable syntax tree node. Trees are built bottom-up with
// NewNode and never modified afterwards, so a tree may be shared between
// goroutines.
type Node struct {
	kind     Kind
	attrs    []Attr
	children []*Node
	parent   *Node
	index    int
	label    string
	span     Span
	source   string
}

// NewNode creates a node and adopts children. A child that already belongs to
// another node violates the tree contract and panics.
func NewNode(kind Kind, span Span, attrs []Attr, children ...*Node) *Node {
	n := &Node{
		kind:  kind,
		attrs: append([]Attr(nil), attrs...),
		span:  span,
	}
	n.children = make([]*Node, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.parent != nil {
			panic(fmt.Sprintf("syntax: %s node already has a parent", child.kind))
		}
		child.parent = n
		child.index = len(n.children)
		n.children = append(n.children, child)
	}
	return n
}

// NewTree marks root as the top of a tree read from source, the stable
// module-resource identity used by import resolution.
func NewTree(source string, root *Node) *Node {
	if root == nil {
		return nil
	}
	if root.parent != nil {
		panic("syntax: tree root has a parent")
	}
	root.source = source
	return root
}

// WithLabel sets the fixture label of a node that is still being built.
func (n *Node) WithLabel(label string) *Node {
	n.label = label
	return n
}

func (n *Node) Kind() Kind {
	if n == nil {
		return KindInvalid
	}
	return n.kind
}

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// PrevSibling returns the sibling immediately before n, or nil.
func (n *Node) PrevSibling() *Node {
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index - 1)
}

// NextSibling returns the sibling immediately after n, or nil.
func (n *Node) NextSibling() *Node {
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent.Child(n.index + 1)
}

// FirstChild returns the first child of the given kind.
func (n *Node) FirstChild(kind Kind) *Node {
	for _, child := range n.Children() {
		if child.kind == kind {
			return child
		}
	}
	return nil
}

// ChildrenOf returns all children of the given kind in textual order.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, child := range n.Children() {
		if child.kind == kind {
			out = append(out, child)
		}
	}
	return out
}

// NameChild returns the first qualified-name child.
func (n *Node) NameChild() *Node {
	for _, child := range n.Children() {
		if child.kind.IsName() {
			return child
		}
	}
	return nil
}

// Attr returns the attribute value for key.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value for key, or fallback when absent.
func (n *Node) AttrOr(key, fallback string) string {
	if value, ok := n.Attr(key); ok {
		return value
	}
	return fallback
}

// Attrs returns a copy of the node's attributes.
func (n *Node) Attrs() []Attr {
	if n == nil {
		return nil
	}
	return append([]Attr(nil), n.attrs...)
}

func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	return n.label
}

func (n *Node) Span() Span {
	if n == nil {
		return Span{}
	}
	return n.span
}

// Root returns the top-most ancestor of n.
func (n *Node) Root() *Node {
	cur := n
	for cur != nil && cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Source returns the resource identity of the tree n belongs to.
func (n *Node) Source() string {
	return n.Root().source
}

// Ancestor returns the nearest ancestor (excluding n) of the given kind.
func (n *Node) Ancestor(kind Kind) *Node {
	for cur := n.Parent(); cur != nil; cur = cur.parent {
		if cur.kind == kind {
			return cur
		}
	}
	return nil
}

// Prefix returns the prefix of a QName node, or "" for other name forms.
func (n *Node) Prefix() string {
	if n.Kind() != KindQName {
		return ""
	}
	return strings.TrimSpace(n.AttrOr(AttrPrefix, ""))
}

// LocalName returns the local part of a name node.
func (n *Node) LocalName() string {
	if !n.Kind().IsName() {
		return ""
	}
	return strings.TrimSpace(n.AttrOr(AttrLocal, ""))
}

// NamespaceURI returns the explicit namespace of a URIQualifiedName node.
func (n *Node) NamespaceURI() string {
	if n.Kind() != KindURIQualifiedName {
		return ""
	}
	return strings.TrimSpace(n.AttrOr(AttrURI, ""))
}

// Lexical renders a name node the way it appears in source.
func (n *Node) Lexical() string {
	switch n.Kind() {
	case KindQName:
		if prefix := n.Prefix(); prefix != "" {
			return prefix + ":" + n.LocalName()
		}
		return n.LocalName()
	case KindNCName:
		return n.LocalName()
	case KindURIQualifiedName:
		return "Q{" + n.NamespaceURI() + "}" + n.LocalName()
	default:
		return ""
	}
}

// Walk visits n and its descendants in document order until fn returns false.
func Walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.children {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// FindLabel returns the first node in document order carrying label.
func FindLabel(root *Node, label string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.label == label {
			found = n
			return false
		}
		return true
	})
	return found
}

// NodeAt returns the innermost node whose span contains p.
func NodeAt(root *Node, p Point) *Node {
	if root == nil || !root.span.Contains(p) {
		return nil
	}
	cur := root
	for {
		next := (*Node)(nil)
		for _, child := range cur.children {
			if child.span.Contains(p) {
				next = child
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}
