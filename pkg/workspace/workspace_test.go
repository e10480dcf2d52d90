package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/xqscope/pkg/module"
	"github.com/odvcencio/xqscope/pkg/namespace"
	"github.com/odvcencio/xqscope/pkg/scope"
	"github.com/odvcencio/xqscope/pkg/syntax"
)

const (
	utilLib = `(Module
  (LibraryModule (ModuleDecl prefix=u uri="urn:util")
    (Prolog
      (FunctionDecl (QName prefix=u local=trim) (ParamList (Param (VarName (NCName local=s))))
        (FunctionBody (VarRef (NCName local=s)))))))`
	altUtilLib = `(Module
  (LibraryModule (ModuleDecl prefix=u uri="urn:util")
    (Prolog
      (FunctionDecl (QName prefix=u local=pad) (ParamList)
        (FunctionBody (Literal value=1))))))`
	mainWithHint = `(Module
  (MainModule
    (Prolog (ModuleImport prefix=u uri="urn:util" at="lib/util.xqt"))
    (QueryBody (FunctionCall @call (QName prefix=u local=trim) (ArgumentList (Literal value=1))))))`
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openWorkspace(t *testing.T, root string) *Workspace {
	t.Helper()
	ws, err := Open(context.Background(), Options{Root: root, Builtins: module.MustBuiltins()})
	require.NoError(t, err)
	return ws
}

func TestLoadIndexesModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/util.xqt", utilLib)
	writeFile(t, root, "main.xqt", mainWithHint)
	writeFile(t, root, "notes.txt", "not a module")

	ws := openWorkspace(t, root)
	mods := ws.Modules()
	require.Len(t, mods, 2)
	assert.Equal(t, filepath.Join(ws.Root(), "lib", "util.xqt"), mods[0].Path)
	assert.Equal(t, filepath.Join(ws.Root(), "main.xqt"), mods[1].Path)
	assert.True(t, mods[0].Prolog.IsLibrary())
	assert.Equal(t, "urn:util", mods[0].Prolog.Namespace)
	assert.NotZero(t, mods[0].Hash)
}

func TestLoadFileKeepsUnchangedModule(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "util.xqt", utilLib)
	ws := openWorkspace(t, root)

	before, err := ws.Module(path)
	require.NoError(t, err)
	again, err := ws.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, before, again)

	writeFile(t, root, "util.xqt", altUtilLib)
	changed, err := ws.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.NotSame(t, before, changed)
	assert.NotEqual(t, before.Hash, changed.Hash)
}

func TestModuleNotFound(t *testing.T) {
	ws := openWorkspace(t, t.TempDir())
	_, err := ws.Module("missing.xqt")
	assert.True(t, errors.Is(err, ErrModuleNotFound))
}

func TestIgnoreFileSkipsModules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.xqt", mainWithHint)
	writeFile(t, root, "generated/out.xqt", utilLib)
	writeFile(t, root, ".xqscopeignore", "generated/\n")

	ws := openWorkspace(t, root)
	require.Len(t, ws.Modules(), 1)
	assert.Equal(t, filepath.Join(ws.Root(), "main.xqt"), ws.Modules()[0].Path)
}

func TestLoadDropsDeletedFiles(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "util.xqt", utilLib)
	writeFile(t, root, "main.xqt", mainWithHint)
	ws := openWorkspace(t, root)
	require.Len(t, ws.Modules(), 2)

	require.NoError(t, os.Remove(path))
	require.NoError(t, ws.Load(context.Background()))
	require.Len(t, ws.Modules(), 1)
	assert.Empty(t, ws.ResolveImport(context.Background(), module.ImportRequest{Namespace: "urn:util"}))
}

func TestResolveImportPrefersLocationHints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/util.xqt", utilLib)
	writeFile(t, root, "other/util.xqt", altUtilLib)
	mainPath := writeFile(t, root, "main.xqt", mainWithHint)
	ws := openWorkspace(t, root)

	from := module.ResourceID(filepath.Join(ws.Root(), "main.xqt"))
	got := ws.ResolveImport(context.Background(), module.ImportRequest{
		Namespace: "urn:util",
		Locations: []string{"lib/util.xqt"},
		From:      from,
	})
	require.Len(t, got, 1)
	assert.Equal(t, module.ResourceID(filepath.Join(ws.Root(), "lib", "util.xqt")), got[0].Resource)

	// Without a usable hint every library of the namespace is returned.
	got = ws.ResolveImport(context.Background(), module.ImportRequest{
		Namespace: "urn:util",
		Locations: []string{"https://example.com/util.xqm", "../outside.xqt"},
		From:      module.ResourceID(mainPath),
	})
	assert.Len(t, got, 2)
}

func TestResolveImportLoadsHintOnDemand(t *testing.T) {
	root := t.TempDir()
	ws, err := New(Options{Root: root})
	require.NoError(t, err)
	writeFile(t, root, "lib/util.xqt", utilLib)

	got := ws.ResolveImport(context.Background(), module.ImportRequest{
		Namespace: "urn:util",
		Locations: []string{"lib/util.xqt"},
		From:      module.ResourceID(filepath.Join(ws.Root(), "main.xqt")),
	})
	require.Len(t, got, 1)
	_, err = ws.Module(filepath.Join(root, "lib", "util.xqt"))
	assert.NoError(t, err)
}

func TestResolveImportFallsBackToBuiltins(t *testing.T) {
	ws := openWorkspace(t, t.TempDir())
	got := ws.ResolveImport(context.Background(), module.ImportRequest{Namespace: namespace.MathNamespace})
	require.Len(t, got, 1)
	assert.Equal(t, namespace.MathNamespace, got[0].Namespace)
	assert.Empty(t, ws.ResolveImport(context.Background(), module.ImportRequest{Namespace: "urn:nowhere"}))
}

func TestEngineResolvesAcrossWorkspaceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/util.xqt", utilLib)
	mainPath := writeFile(t, root, "main.xqt", mainWithHint)
	ws := openWorkspace(t, root)

	m, err := ws.Module(mainPath)
	require.NoError(t, err)
	call := syntax.FindLabel(m.Tree, "call")
	require.NotNil(t, call)

	engine := scope.NewEngine(ws)
	decls := engine.ResolveFunction(context.Background(), call)
	require.Len(t, decls, 1)
	assert.Equal(t, "trim", decls[0].Name.LocalName())
	assert.Equal(t, filepath.Join(ws.Root(), "lib", "util.xqt"), decls[0].Decl.Source())
}

func TestWatchReloadsChangedModules(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "util.xqt", utilLib)
	ws := openWorkspace(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- ws.Watch(ctx, 20*time.Millisecond, func(changed []string) {
			select {
			case changes <- changed:
			default:
			}
		})
	}()

	// Give the watcher time to register the root before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, root, "util.xqt", altUtilLib)

	require.Eventually(t, func() bool {
		m, err := ws.Module(path)
		if err != nil || len(m.Prolog.FunctionDecls()) != 1 {
			return false
		}
		return m.Prolog.FunctionDecls()[0].NameChild().LocalName() == "pad"
	}, 5*time.Second, 20*time.Millisecond)

	changed := <-changes
	assert.Contains(t, changed, filepath.Join(ws.Root(), "util.xqt"))

	cancel()
	assert.NoError(t, <-done)
}

func TestRemoveTreeDropsModulesBeneathDirectory(t *testing.T) {
	root := t.TempDir()
	kept := writeFile(t, root, "util.xqt", utilLib)
	first := writeFile(t, root, "lib/util.xqt", utilLib)
	second := writeFile(t, root, "lib/nested/alt.xqt", altUtilLib)
	sibling := writeFile(t, root, "library/util.xqt", utilLib)
	ws := openWorkspace(t, root)

	removed := ws.RemoveTree(filepath.Join(root, "lib"))
	assert.Equal(t, []string{second, first}, removed)

	for _, path := range []string{first, second} {
		_, err := ws.Module(path)
		assert.ErrorIs(t, err, ErrModuleNotFound)
	}
	for _, path := range []string{kept, sibling} {
		_, err := ws.Module(path)
		assert.NoError(t, err)
	}
	assert.Empty(t, ws.RemoveTree(filepath.Join(root, "missing")))
}

func TestWatchDropsModulesOfRemovedDirectory(t *testing.T) {
	root := t.TempDir()
	kept := writeFile(t, root, "util.xqt", utilLib)
	nested := writeFile(t, root, "lib/util.xqt", altUtilLib)
	ws := openWorkspace(t, root)
	_, err := ws.Module(nested)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- ws.Watch(ctx, 20*time.Millisecond, nil)
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "lib")))

	require.Eventually(t, func() bool {
		_, err := ws.Module(nested)
		return errors.Is(err, ErrModuleNotFound)
	}, 5*time.Second, 20*time.Millisecond)
	_, err = ws.Module(kept)
	assert.NoError(t, err)

	cancel()
	assert.NoError(t, <-done)
}
