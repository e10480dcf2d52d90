// Package workspace loads the XQuery modules under a directory and serves
// them to the resolution engine as its module resolver.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/xqscope/internal/ignore"
	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/syntax"
	"github.com/odvcencio/xqscope/pkg/syntax/treesitter"
)

// ErrModuleNotFound is returned when a path names no loaded module.
var ErrModuleNotFound = errors.New("workspace: module not found")

// DefaultExtensions are the file extensions loaded when Options.Extensions
// is empty. ".xqt" files hold tree dumps and are read without a grammar.
var DefaultExtensions = []string{".xq", ".xqm", ".xqy", ".xql", ".xquery", ".xqt"}

var tracer = otel.Tracer("xqscope/workspace")

// Options configures a Workspace.
type Options struct {
	Root        string
	Extensions  []string
	Logger      *slog.Logger
	Builtins    *module.Registry
	Concurrency int
}

// Module is one loaded module file.
type Module struct {
	Path   string
	Hash   uint64
	Tree   *syntax.Node
	Prolog module.Prolog
}

// Workspace is the set of modules loaded from a directory tree. It is safe
// for concurrent use; the trees it hands out are immutable.
type Workspace struct {
	root       string
	extensions []string
	logger     *slog.Logger
	builtins   *module.Registry
	workers    int
	ignore     *ignore.Matcher

	mu          sync.RWMutex
	byPath      map[string]*Module
	byNamespace map[string][]*Module
}

// New returns an empty workspace rooted at opts.Root.
func New(opts Options) (*Workspace, error) {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	matcher, err := ignore.Load(filepath.Join(absRoot, ignore.FileName))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ignore.FileName, err)
	}
	w := &Workspace{
		root:        filepath.Clean(absRoot),
		extensions:  opts.Extensions,
		logger:      opts.Logger,
		builtins:    opts.Builtins,
		workers:     opts.Concurrency,
		ignore:      matcher,
		byPath:      make(map[string]*Module),
		byNamespace: make(map[string][]*Module),
	}
	if len(w.extensions) == 0 {
		w.extensions = DefaultExtensions
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	if w.workers <= 0 {
		w.workers = runtime.GOMAXPROCS(0)
	}
	return w, nil
}

// Open creates a workspace and loads every module under opts.Root.
func Open(ctx context.Context, opts Options) (*Workspace, error) {
	w, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := w.Load(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// Load (re)loads every module file under the root concurrently. Files whose
// content hash is unchanged keep their existing tree.
func (w *Workspace) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "workspace.Load", trace.WithAttributes(attribute.String("root", w.root)))
	defer span.End()

	paths, err := w.discover()
	if err != nil {
		span.RecordError(err)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for _, path := range paths {
		g.Go(func() error {
			_, err := w.LoadFile(gctx, path)
			if errors.Is(err, treesitter.ErrNoGrammar) {
				w.logger.Debug("skipping module without grammar", slog.String("path", path))
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}

	found := make(map[string]bool, len(paths))
	for _, path := range paths {
		found[filepath.Clean(path)] = true
	}
	w.mu.Lock()
	for path := range w.byPath {
		if !found[path] {
			w.unindex(path)
		}
	}
	loaded := len(w.byPath)
	w.mu.Unlock()
	span.SetAttributes(attribute.Int("modules", loaded))
	w.logger.Info("workspace loaded", slog.String("root", w.root), slog.Int("modules", loaded))
	return nil
}

// discover lists the module files under the root in lexical order.
func (w *Workspace) discover() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if w.skip(path, entry.IsDir()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() && w.hasModuleExtension(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", w.root, err)
	}
	return paths, nil
}

func (w *Workspace) skip(path string, isDir bool) bool {
	if path == w.root {
		return false
	}
	name := filepath.Base(path)
	if isDir && (strings.HasPrefix(name, ".") || name == "node_modules") {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.ignore.Match(filepath.ToSlash(rel), isDir)
}

func (w *Workspace) hasModuleExtension(path string) bool {
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}

// LoadFile parses one module file and (re)indexes it. An unchanged file
// returns the module already loaded.
func (w *Workspace) LoadFile(ctx context.Context, path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	abs = filepath.Clean(abs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", abs, err)
	}
	hash := xxh3.Hash(src)

	w.mu.RLock()
	existing := w.byPath[abs]
	w.mu.RUnlock()
	if existing != nil && existing.Hash == hash {
		return existing, nil
	}

	tree, err := parseModule(abs, src)
	if err != nil {
		return nil, err
	}
	prolog, ok := module.FromTree(tree)
	if !ok {
		w.logger.Debug("file holds no module", slog.String("path", abs))
	}
	m := &Module{Path: abs, Hash: hash, Tree: tree, Prolog: prolog}

	w.mu.Lock()
	w.unindex(abs)
	w.byPath[abs] = m
	if ns := prolog.Namespace; ns != "" && prolog.IsLibrary() {
		w.byNamespace[ns] = append(w.byNamespace[ns], m)
		slices.SortFunc(w.byNamespace[ns], func(a, b *Module) int {
			return strings.Compare(a.Path, b.Path)
		})
	}
	w.mu.Unlock()

	w.logger.Debug("module loaded",
		slog.String("path", abs),
		slog.String("namespace", prolog.Namespace),
		slog.Bool("library", prolog.IsLibrary()),
	)
	return m, nil
}

// parseModule reads tree dumps directly and hands source files to the
// tree-sitter grammar registered for their extension.
func parseModule(path string, src []byte) (*syntax.Node, error) {
	if strings.EqualFold(filepath.Ext(path), ".xqt") {
		return syntax.Read(path, src)
	}
	parser, err := treesitter.ForPath(path)
	if err != nil {
		return nil, err
	}
	return parser.Parse(path, src)
}

// RemoveTree drops the module loaded from path and every module loaded from
// beneath it when path names a directory. It returns the dropped paths in
// sorted order.
func (w *Workspace) RemoveTree(path string) []string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	abs = filepath.Clean(abs)
	w.mu.Lock()
	defer w.mu.Unlock()
	var removed []string
	for p := range w.byPath {
		if within(abs, p) {
			removed = append(removed, p)
		}
	}
	slices.Sort(removed)
	for _, p := range removed {
		w.unindex(p)
	}
	return removed
}

// loadedWithin reports whether any module was loaded from path or beneath it.
func (w *Workspace) loadedWithin(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for p := range w.byPath {
		if within(path, p) {
			return true
		}
	}
	return false
}

func within(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// unindex removes path from both indexes. Callers hold w.mu.
func (w *Workspace) unindex(path string) {
	old := w.byPath[path]
	if old == nil {
		return
	}
	delete(w.byPath, path)
	ns := old.Prolog.Namespace
	w.byNamespace[ns] = slices.DeleteFunc(w.byNamespace[ns], func(m *Module) bool {
		return m == old
	})
	if len(w.byNamespace[ns]) == 0 {
		delete(w.byNamespace, ns)
	}
}

// Module returns the module loaded from path.
func (w *Workspace) Module(path string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w.mu.RLock()
	m := w.byPath[filepath.Clean(abs)]
	w.mu.RUnlock()
	if m == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrModuleNotFound)
	}
	return m, nil
}

// Modules returns every loaded module ordered by path.
func (w *Workspace) Modules() []*Module {
	w.mu.RLock()
	out := make([]*Module, 0, len(w.byPath))
	for _, m := range w.byPath {
		out = append(out, m)
	}
	w.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Module) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}
