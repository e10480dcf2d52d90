// Package treesitter converts gotreesitter parse trees into syntax trees
// through a table mapping grammar node types to syntax kinds.
package treesitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gotreesitter"
	"github.com/odvcencio/gotreesitter/grammars"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// ErrNoGrammar is returned when no registered grammar handles a file.
var ErrNoGrammar = errors.New("treesitter: no grammar for file")

type Parser struct {
	entry   grammars.LangEntry
	lang    *gotreesitter.Language
	parser  *gotreesitter.Parser
	mapping Mapping
}

// NewParser returns a parser for entry converting with mapping.
func NewParser(entry grammars.LangEntry, mapping Mapping) (*Parser, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return nil, fmt.Errorf("language entry name is required")
	}
	if entry.Language == nil {
		return nil, fmt.Errorf("language loader is required for %q", entry.Name)
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("node mapping is required for %q", entry.Name)
	}
	lang := entry.Language()
	if lang == nil {
		return nil, fmt.Errorf("language loader returned nil for %q", entry.Name)
	}
	return &Parser{
		entry:   entry,
		lang:    lang,
		parser:  gotreesitter.NewParser(lang),
		mapping: mapping,
	}, nil
}

// ForPath returns an XQuery parser for the grammar registered for path's
// extension.
func ForPath(path string) (*Parser, error) {
	entry := grammars.DetectLanguage(path)
	if entry == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoGrammar)
	}
	return NewParser(*entry, XQuery)
}

// ForLanguage returns a parser for the named grammar.
func ForLanguage(name string, mapping Mapping) (*Parser, error) {
	for _, entry := range grammars.AllLanguages() {
		if entry.Name == name {
			return NewParser(entry, mapping)
		}
	}
	return nil, fmt.Errorf("language %q: %w", name, ErrNoGrammar)
}

func (p *Parser) Language() string {
	return p.entry.Name
}

// Parse parses src and converts the result into a syntax tree whose
// resource identity is source.
func (p *Parser) Parse(source string, src []byte) (*syntax.Node, error) {
	tree := p.parseTree(src)
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("parse %s: %w", source, syntax.ErrNoNode)
	}
	defer tree.Release()
	return p.Convert(source, tree, src), nil
}

func (p *Parser) parseTree(src []byte) *gotreesitter.Tree {
	if p.entry.TokenSourceFactory != nil {
		ts := p.entry.TokenSourceFactory(src, p.lang)
		if ts != nil {
			return p.parser.ParseWithTokenSource(src, ts)
		}
	}
	return p.parser.Parse(src)
}

// Convert builds the syntax tree for a parsed tree. Grammar nodes without a
// mapping rule are transparent: their converted children are attached to
// the nearest mapped ancestor. When the root is not mapped to a single node,
// the converted top-level nodes are wrapped in a Module node.
func (p *Parser) Convert(source string, tree *gotreesitter.Tree, src []byte) *syntax.Node {
	nodes := p.convert(tree.RootNode(), src)
	if len(nodes) == 1 && nodes[0].Kind() == syntax.KindModule {
		return syntax.NewTree(source, nodes[0])
	}
	return syntax.NewTree(source, syntax.NewNode(syntax.KindModule, spanOf(tree.RootNode()), nil, nodes...))
}

func (p *Parser) convert(node *gotreesitter.Node, src []byte) []*syntax.Node {
	if node == nil {
		return nil
	}
	rule, mapped := p.mapping[node.Type(p.lang)]
	if mapped && rule.Name {
		kind, attrs := LexicalName(node.Text(src))
		if kind == syntax.KindInvalid {
			return nil
		}
		return []*syntax.Node{syntax.NewNode(kind, spanOf(node), attrs)}
	}

	var children []*syntax.Node
	for i := 0; i < node.ChildCount(); i++ {
		children = append(children, p.convert(node.Child(i), src)...)
	}
	if !mapped {
		return children
	}
	var attrs []syntax.Attr
	if rule.Attrs != nil {
		attrs = rule.Attrs(node, p.lang, src)
	}
	return []*syntax.Node{syntax.NewNode(rule.Kind, spanOf(node), attrs, children...)}
}

func spanOf(node *gotreesitter.Node) syntax.Span {
	start, end := node.StartPoint(), node.EndPoint()
	return syntax.Span{
		Start: syntax.Point{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:   syntax.Point{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}
