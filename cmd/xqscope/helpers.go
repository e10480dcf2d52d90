package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/odvcencio/xqscope/pkg/model"
	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/namespace"
	"github.com/odvcencio/xqscope/pkg/scope"
	"github.com/odvcencio/xqscope/pkg/syntax"
	"github.com/odvcencio/xqscope/pkg/workspace"
)

var tracer = otel.Tracer("xqscope/cli")

// session is a loaded workspace and an engine resolving against it.
type session struct {
	ws     *workspace.Workspace
	engine *scope.Engine
	logger *slog.Logger
}

type commonFlags struct {
	root    string
	at      string
	json    bool
	verbose bool
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openSession(ctx context.Context, flags commonFlags) (*session, error) {
	logger := newLogger(flags.verbose)
	builtins, err := module.Builtins()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Open(ctx, workspace.Options{
		Root:     flags.root,
		Logger:   logger,
		Builtins: builtins,
	})
	if err != nil {
		return nil, err
	}
	return &session{
		ws:     ws,
		engine: scope.NewEngine(ws, scope.WithBuiltins(builtins)),
		logger: logger,
	}, nil
}

// module returns the module loaded from path, loading it when it lies
// outside the workspace root.
func (s *session) module(ctx context.Context, path string) (*workspace.Module, error) {
	m, err := s.ws.Module(path)
	if errors.Is(err, workspace.ErrModuleNotFound) {
		return s.ws.LoadFile(ctx, path)
	}
	return m, err
}

func (s *session) report(m *workspace.Module) *model.Report {
	return &model.Report{
		Version:     version,
		Root:        s.ws.Root(),
		File:        m.Path,
		GeneratedAt: time.Now().UTC(),
	}
}

// resolvePosition finds the node a --at value designates: "line:col" picks
// the innermost node covering that position, "@label" a labelled node of a
// tree dump. An empty value designates the module itself.
func resolvePosition(tree *syntax.Node, at string) (*syntax.Node, error) {
	at = strings.TrimSpace(at)
	if at == "" {
		if mod := moduleNode(tree); mod != nil {
			return mod, nil
		}
		return tree, nil
	}
	if label, ok := strings.CutPrefix(at, "@"); ok {
		n := syntax.FindLabel(tree, label)
		if n == nil {
			return nil, fmt.Errorf("no node labelled %q", label)
		}
		return n, nil
	}
	point, err := parsePoint(at)
	if err != nil {
		return nil, err
	}
	n := syntax.NodeAt(tree, point)
	if n == nil {
		return nil, fmt.Errorf("position %s is outside the module", point)
	}
	return n, nil
}

func parsePoint(value string) (syntax.Point, error) {
	lineText, colText, ok := strings.Cut(value, ":")
	if !ok {
		colText = "1"
	}
	line, err := strconv.Atoi(strings.TrimSpace(lineText))
	if err != nil || line <= 0 {
		return syntax.Point{}, fmt.Errorf("invalid line in position %q", value)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colText))
	if err != nil || col <= 0 {
		return syntax.Point{}, fmt.Errorf("invalid column in position %q", value)
	}
	return syntax.Point{Line: line, Column: col}, nil
}

func moduleNode(tree *syntax.Node) *syntax.Node {
	var found *syntax.Node
	syntax.Walk(tree, func(n *syntax.Node) bool {
		if n.Kind().IsModule() {
			found = n
			return false
		}
		return true
	})
	return found
}

// nameAt returns the name node at or directly under n.
func nameAt(n *syntax.Node) (*syntax.Node, error) {
	if n.Kind().IsName() {
		return n, nil
	}
	if name := n.NameChild(); name != nil {
		return name, nil
	}
	if varName := n.FirstChild(syntax.KindVarName); varName != nil {
		if name := varName.NameChild(); name != nil {
			return name, nil
		}
	}
	return nil, fmt.Errorf("no name at %s node", n.Kind())
}

func locationOf(n *syntax.Node) model.Location {
	start := n.Span().Start
	return model.Location{File: n.Source(), Line: start.Line, Column: start.Column}
}

func nameOf(n *syntax.Node) model.Name {
	return model.Name{
		Lexical:   n.Lexical(),
		Namespace: n.NamespaceURI(),
		Local:     n.LocalName(),
		Prefix:    n.Prefix(),
	}
}

func expandedName(e namespace.ExpandedName) model.Name {
	lexical := e.Local
	if e.Prefix != "" {
		lexical = e.Prefix + ":" + e.Local
	}
	return model.Name{Lexical: lexical, Namespace: e.Namespace, Local: e.Local, Prefix: e.Prefix}
}

func variableEntry(d scope.VariableDefinition) model.Variable {
	return model.Variable{Name: nameOf(d.Name), Kind: d.Kind.String(), Location: locationOf(d.Name)}
}

func functionEntry(d scope.FunctionDeclaration) model.Function {
	return model.Function{
		Name:     nameOf(d.Name),
		MinArity: d.Arity.Min,
		MaxArity: d.Arity.Max,
		Module:   string(d.Prolog.Resource),
		Location: locationOf(d.Decl),
	}
}

func emitJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
