package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/xqscope/pkg/module"
)

// ResolveImport resolves a module import against the workspace. Location
// hints are tried first, relative to the importing module; a hint naming a
// file that is not loaded yet is loaded on demand. When no hint yields a
// library of the requested namespace, every loaded library declaring that
// namespace is returned, and failing that the built-in registry is asked.
func (w *Workspace) ResolveImport(ctx context.Context, req module.ImportRequest) []module.Prolog {
	if req.Namespace == "" {
		return nil
	}
	if found := w.resolveLocations(ctx, req); len(found) > 0 {
		return found
	}

	w.mu.RLock()
	candidates := w.byNamespace[req.Namespace]
	out := make([]module.Prolog, 0, len(candidates))
	for _, m := range candidates {
		out = append(out, m.Prolog)
	}
	w.mu.RUnlock()
	if len(out) > 0 {
		return out
	}
	return w.builtins.Lookup(req.Namespace)
}

func (w *Workspace) resolveLocations(ctx context.Context, req module.ImportRequest) []module.Prolog {
	if len(req.Locations) == 0 {
		return nil
	}
	base := w.root
	if from := string(req.From); from != "" && filepath.IsAbs(from) {
		base = filepath.Dir(from)
	}

	var out []module.Prolog
	for _, location := range req.Locations {
		path, ok := w.locationPath(base, location)
		if !ok {
			continue
		}
		m, err := w.Module(path)
		if err != nil {
			if _, statErr := os.Stat(path); statErr != nil {
				continue
			}
			m, err = w.LoadFile(ctx, path)
			if err != nil {
				w.logger.Debug("location hint not loadable",
					slog.String("location", location),
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				continue
			}
		}
		if m.Prolog.IsLibrary() && m.Prolog.Namespace == req.Namespace {
			out = append(out, m.Prolog)
		}
	}
	return out
}

// locationPath maps a location hint onto a file inside the workspace root.
// Hints with a URI scheme and hints escaping the root are not followed.
func (w *Workspace) locationPath(base, location string) (string, bool) {
	location = strings.TrimSpace(location)
	if location == "" || strings.Contains(location, "://") {
		return "", false
	}
	location = strings.TrimPrefix(location, "file:")
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, filepath.FromSlash(location))
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if !w.hasModuleExtension(path) {
		return "", false
	}
	return path, true
}
