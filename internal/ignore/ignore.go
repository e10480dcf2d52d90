// Package ignore filters workspace paths with gitignore-style patterns read
// from a .xqscopeignore file.
package ignore

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
)

// FileName is the ignore file looked up at the workspace root.
const FileName = ".xqscopeignore"

type pattern struct {
	negated  bool
	dirOnly  bool
	anchored bool
	glob     string
}

// Matcher decides whether a workspace-relative path is ignored. A nil
// Matcher ignores nothing.
type Matcher struct {
	patterns []pattern
}

// Load reads patterns from path. A missing file yields an empty matcher.
func Load(name string) (*Matcher, error) {
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return &Matcher{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParsePatterns(lines), nil
}

// ParsePatterns builds a Matcher from pattern lines. Blank lines and lines
// starting with '#' are skipped.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var p pattern
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			p.negated = true
			line = rest
		}
		if rest, ok := strings.CutSuffix(line, "/"); ok {
			p.dirOnly = true
			line = rest
		}
		if rest, ok := strings.CutPrefix(line, "/"); ok {
			p.anchored = true
			line = rest
		}
		line = strings.TrimPrefix(line, "**/")
		if line == "" {
			continue
		}
		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether rel, a slash-separated path relative to the
// workspace root, is ignored. The last matching pattern wins.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.matches(rel) {
			ignored = !p.negated
		}
	}
	return ignored
}

func (p pattern) matches(rel string) bool {
	if p.anchored || strings.Contains(p.glob, "/") {
		ok, _ := path.Match(p.glob, rel)
		return ok
	}
	for _, part := range strings.Split(rel, "/") {
		if ok, _ := path.Match(p.glob, part); ok {
			return true
		}
	}
	return false
}
