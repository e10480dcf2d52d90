package syntax

import (
	"bufio"
	"io"
	"strings"
)

// Fprint writes n as an indented tree dump that Read accepts.
func Fprint(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, n, 0, true)
	bw.WriteByte('\n')
	return bw.Flush()
}

// String renders n as a single-line tree dump.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	bw := bufio.NewWriter(&b)
	writeNode(bw, n, 0, false)
	bw.Flush()
	return b.String()
}

func writeNode(w *bufio.Writer, n *Node, depth int, indent bool) {
	w.WriteByte('(')
	w.WriteString(n.kind.String())
	for _, attr := range n.attrs {
		w.WriteByte(' ')
		w.WriteString(attr.Key)
		w.WriteByte('=')
		w.WriteString(quoteValue(attr.Value))
	}
	if n.label != "" {
		w.WriteString(" @")
		w.WriteString(n.label)
	}
	for _, child := range n.children {
		if indent {
			w.WriteByte('\n')
			w.WriteString(strings.Repeat("  ", depth+1))
		} else {
			w.WriteByte(' ')
		}
		writeNode(w, child, depth+1, indent)
	}
	w.WriteByte(')')
}

func quoteValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\r\n()\"\\;") {
		return value
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range value {
		if ch == '"' || ch == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	b.WriteByte('"')
	return b.String()
}
