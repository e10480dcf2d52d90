package syntax

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNoNode is returned when a tree dump contains no node.
var ErrNoNode = errors.New("tree dump contains no node")

// ReadError reports a malformed tree dump.
type ReadError struct {
	Source string
	Pos    Point
	Msg    string
}

func (e *ReadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s:%s: %s", e.Source, e.Pos, e.Msg)
}

// Read parses an S-expression tree dump:
//
//	(Module
//	  (MainModule
//	    (Prolog (NamespaceDecl prefix=a uri="urn:a"))
//	    (QueryBody (VarRef @here (NCName local=x)))))
//
// Each node is a kind name followed by attributes (key=value), an optional
// @label, and child nodes. A ';' starts a comment running to end of line.
// Node spans cover the parentheses in the dump, so positions in the dump file
// can be used to locate nodes.
func Read(source string, src []byte) (*Node, error) {
	r := &reader{source: source, src: src, line: 1, col: 1}
	r.skipSpace()
	if r.eof() {
		return nil, ErrNoNode
	}
	root, err := r.node()
	if err != nil {
		return nil, err
	}
	r.skipSpace()
	if !r.eof() {
		return nil, r.errorf("unexpected content after root node")
	}
	return NewTree(source, root), nil
}

// MustRead is Read for fixtures and embedded data; it panics on error.
func MustRead(source, src string) *Node {
	root, err := Read(source, []byte(src))
	if err != nil {
		panic(err)
	}
	return root
}

type reader struct {
	source string
	src    []byte
	off    int
	line   int
	col    int
}

func (r *reader) eof() bool {
	return r.off >= len(r.src)
}

func (r *reader) pos() Point {
	return Point{Line: r.line, Column: r.col}
}

func (r *reader) peek() rune {
	if r.eof() {
		return 0
	}
	ch, _ := utf8.DecodeRune(r.src[r.off:])
	return ch
}

func (r *reader) advance() rune {
	ch, size := utf8.DecodeRune(r.src[r.off:])
	r.off += size
	if ch == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return ch
}

func (r *reader) errorf(format string, args ...any) error {
	return &ReadError{Source: r.source, Pos: r.pos(), Msg: fmt.Sprintf(format, args...)}
}

func (r *reader) skipSpace() {
	for !r.eof() {
		ch := r.peek()
		switch {
		case ch == ';':
			for !r.eof() && r.peek() != '\n' {
				r.advance()
			}
		case unicode.IsSpace(ch):
			r.advance()
		default:
			return
		}
	}
}

func (r *reader) node() (*Node, error) {
	start := r.pos()
	if r.peek() != '(' {
		return nil, r.errorf("expected '('")
	}
	r.advance()
	r.skipSpace()

	kindName := r.word()
	if kindName == "" {
		return nil, r.errorf("expected node kind")
	}
	kind, ok := ParseKind(kindName)
	if !ok {
		return nil, &ReadError{Source: r.source, Pos: start, Msg: fmt.Sprintf("unknown node kind %q", kindName)}
	}

	var attrs []Attr
	var children []*Node
	label := ""
	for {
		r.skipSpace()
		if r.eof() {
			return nil, r.errorf("unterminated %s node", kindName)
		}
		switch ch := r.peek(); {
		case ch == ')':
			r.advance()
			n := NewNode(kind, Span{Start: start, End: r.pos()}, attrs, children...)
			n.label = label
			return n, nil
		case ch == '(':
			child, err := r.node()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case ch == '@':
			r.advance()
			label = r.word()
			if label == "" {
				return nil, r.errorf("empty label")
			}
		default:
			key := r.word()
			if key == "" {
				return nil, r.errorf("unexpected %q", ch)
			}
			if r.peek() != '=' {
				return nil, r.errorf("expected '=' after attribute %q", key)
			}
			r.advance()
			value, err := r.value()
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, Attr{Key: key, Value: value})
		}
	}
}

func isWordRune(ch rune) bool {
	return !unicode.IsSpace(ch) && ch != '(' && ch != ')' && ch != '"' && ch != '=' && ch != ';'
}

func (r *reader) word() string {
	start := r.off
	for !r.eof() && isWordRune(r.peek()) {
		r.advance()
	}
	return string(r.src[start:r.off])
}

func (r *reader) value() (string, error) {
	if r.peek() != '"' {
		return r.bare(), nil
	}
	r.advance()
	var b strings.Builder
	for {
		if r.eof() {
			return "", r.errorf("unterminated string")
		}
		ch := r.advance()
		switch ch {
		case '"':
			return b.String(), nil
		case '\\':
			if r.eof() {
				return "", r.errorf("unterminated escape")
			}
			b.WriteRune(r.advance())
		default:
			b.WriteRune(ch)
		}
	}
}

// bare reads an unquoted attribute value; unlike a word it may contain '='.
func (r *reader) bare() string {
	start := r.off
	for !r.eof() {
		ch := r.peek()
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		r.advance()
	}
	return string(r.src[start:r.off])
}
