package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePatternsSkipsBlankAndComments(t *testing.T) {
	m := ParsePatterns([]string{"", "  ", "# comment", "/", "!"})
	if len(m.patterns) != 0 {
		t.Fatalf("expected 0 patterns, got %d", len(m.patterns))
	}
}

func TestMatch(t *testing.T) {
	m := ParsePatterns([]string{"*.bak", "build/", "/generated", "**/fixtures/*.xq", "!keep.bak"})

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"old.bak", false, true},
		{"lib/old.bak", false, true},
		{"keep.bak", false, false},
		{"build", true, true},
		{"build", false, false},
		{"generated", true, true},
		{"lib/generated", true, false},
		{"fixtures/a.xq", false, true},
		{"lib/main.xq", false, false},
	}
	for _, tc := range cases {
		if got := m.Match(tc.path, tc.isDir); got != tc.want {
			t.Errorf("Match(%q, %v) = %v, want %v", tc.path, tc.isDir, got, tc.want)
		}
	}
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	if m.Match("anything", false) {
		t.Fatal("nil matcher should never match")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, FileName)
	if err := os.WriteFile(name, []byte("*.bak\n# comment\nbuild/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(m.patterns))
	}
	if !m.Match("build", true) {
		t.Error("expected match on build dir")
	}
}

func TestLoadMissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("missing ignore file should not be an error: %v", err)
	}
	if m.Match("x.xq", false) {
		t.Fatal("empty matcher should not match")
	}
}
