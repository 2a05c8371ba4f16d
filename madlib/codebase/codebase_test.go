package codebase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/madlib/madlib/parser"
	"github.com/dhamidi/madlib/project"
)

func newTestProject(t *testing.T, files map[string]string) *project.Project {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	proj, err := project.LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return proj
}

func TestScanAll(t *testing.T) {
	proj := newTestProject(t, map[string]string{
		"a.mad":     "a = 1\n",
		"lib/b.mad": "b = \"open\n",
		"notes.txt": "not madlib",
	})
	c := New(proj)
	if err := c.ScanAll(context.Background()); err != nil {
		t.Fatalf("ScanAll: %v", err)
	}

	paths := c.Paths()
	if len(paths) != 2 {
		t.Fatalf("Paths = %v, want 2 files", paths)
	}
	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("Diagnostics = %v, want one file", diags)
	}
	bad := filepath.Join(proj.RootDir, "lib", "b.mad")
	if d := diags[bad]; len(d) != 1 || d[0].Kind != parser.ErrUnterminatedString {
		t.Errorf("diagnostics for %s = %v", bad, d)
	}
}

func TestScanAllCancelled(t *testing.T) {
	proj := newTestProject(t, map[string]string{"a.mad": "a = 1\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(proj).ScanAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestApplyChange(t *testing.T) {
	c := New(newTestProject(t, nil))
	c.UpdateFile("main.mad", []byte("a = 1\nb = 2\nc = 3\nd = 4\n"), 1)

	f, err := c.ApplyChange(context.Background(), "main.mad", 16, 17, "33", 2)
	if err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if string(f.Content) != "a = 1\nb = 2\nc = 33\nd = 4\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Version != 2 || f.Tree.Reused != 2 {
		t.Errorf("version %d, reused %d", f.Version, f.Tree.Reused)
	}
	fresh := parser.Parse(context.Background(), f.Content, parser.WithFile("main.mad"))
	if got, want := f.Tree.Root.StringWithPositions(), fresh.Root.StringWithPositions(); got != want {
		t.Errorf("incremental tree differs from a fresh parse:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if c.GetFile("main.mad") != f {
		t.Errorf("GetFile should return the new snapshot")
	}
}

func TestApplyChangeErrors(t *testing.T) {
	c := New(newTestProject(t, nil))
	c.UpdateFile("main.mad", []byte("a = 1"), 1)

	if _, err := c.ApplyChange(context.Background(), "other.mad", 0, 0, "x", 2); err == nil || !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("unknown file: err = %v", err)
	}
	if _, err := c.ApplyChange(context.Background(), "main.mad", 3, 99, "x", 2); !errors.Is(err, parser.ErrInvalidEdit) {
		t.Errorf("bad range: err = %v, want ErrInvalidEdit", err)
	}
	if f := c.GetFile("main.mad"); string(f.Content) != "a = 1" || f.Version != 1 {
		t.Errorf("failed change modified the file: %q v%d", f.Content, f.Version)
	}
}

func TestRemoveFile(t *testing.T) {
	c := New(newTestProject(t, nil))
	c.UpdateFile("main.mad", []byte("a = 1"), 0)
	c.RemoveFile("main.mad")
	if c.GetFile("main.mad") != nil || len(c.Paths()) != 0 {
		t.Errorf("file still present after RemoveFile")
	}
}

func TestFindSymbol(t *testing.T) {
	c := New(newTestProject(t, nil))
	c.UpdateFile("a.mad", []byte("import { helper } from \"./b\"\nx = helper(1)\n"), 0)
	c.UpdateFile("b.mad", []byte("export helper = (n) => n + 1\n"), 0)

	path, s, ok := c.FindSymbol("helper")
	if !ok || path != "b.mad" || s.Kind != SymbolFunction || !s.Exported {
		t.Errorf("FindSymbol = %q %+v %v", path, s, ok)
	}
	if _, _, ok := c.FindSymbol("missing"); ok {
		t.Errorf("found a symbol that does not exist")
	}
}
