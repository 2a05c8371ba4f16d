package codebase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/madlib/madlib/parser"
	"github.com/dhamidi/madlib/project"
)

var log = commonlog.GetLogger("madlib.codebase")

// Codebase holds the parsed state of every source file in a project.
// Open documents are kept up to date through ApplyChange, files on disk
// through ScanFile and the FileWatcher.
type Codebase struct {
	mu      sync.RWMutex
	project *project.Project
	files   map[string]*FileInfo
}

// FileInfo is an immutable snapshot of one file. Updates replace the
// snapshot, so readers may hold on to it without locking.
type FileInfo struct {
	Path    string
	Content []byte
	Tree    *parser.Tree
	Version int32
	Lines   *LineIndex
}

func (f *FileInfo) Diagnostics() []*parser.ParseError {
	return f.Tree.Diagnostics()
}

func New(proj *project.Project) *Codebase {
	return &Codebase{
		project: proj,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.project.RootDir
}

func (c *Codebase) Project() *project.Project {
	return c.project
}

// ScanAll parses every source file of the project.
func (c *Codebase) ScanAll(ctx context.Context) error {
	paths, err := c.project.SourceFiles()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.ScanFile(path); err != nil {
			log.Warningf("scan %s: %s", path, err)
		}
	}
	log.Infof("scanned %d files under %s", len(paths), c.project.RootDir)
	return nil
}

func (c *Codebase) ScanFile(path string) (*FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.UpdateFile(path, content, 0), nil
}

// UpdateFile replaces the whole content of path and parses it from
// scratch.
func (c *Codebase) UpdateFile(path string, content []byte, version int32) *FileInfo {
	tree := parser.Parse(context.Background(), content, parser.WithFile(path))
	f := &FileInfo{
		Path:    path,
		Content: content,
		Tree:    tree,
		Version: version,
		Lines:   NewLineIndex(content),
	}

	c.mu.Lock()
	c.files[path] = f
	c.mu.Unlock()

	log.Debugf("parsed %s: %d bytes, %d diagnostics", path, len(content), len(tree.Diagnostics()))
	return f
}

// ApplyChange replaces the bytes [start, end) of an already known file
// with text and reparses incrementally.
func (c *Codebase) ApplyChange(ctx context.Context, path string, start, end int, text string, version int32) (*FileInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.files[path]
	if old == nil {
		return nil, fmt.Errorf("apply change to %s: file not loaded", path)
	}

	content, edit, err := parser.ApplyEdit(old.Content, start, end, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("apply change to %s: %w", path, err)
	}
	tree, err := parser.Reparse(ctx, old.Tree, edit, content, parser.WithFile(path))
	if err != nil {
		return nil, fmt.Errorf("reparse %s: %w", path, err)
	}

	f := &FileInfo{
		Path:    path,
		Content: content,
		Tree:    tree,
		Version: version,
		Lines:   NewLineIndex(content),
	}
	c.files[path] = f
	log.Debugf("reparsed %s after %s: reused %d of %d statements", path, edit, tree.Reused, len(tree.Root.Children))
	return f, nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the known file paths in sorted order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Diagnostics returns the diagnostics of every file that has any.
func (c *Codebase) Diagnostics() map[string][]*parser.ParseError {
	out := make(map[string][]*parser.ParseError)
	for _, path := range c.Paths() {
		f := c.GetFile(path)
		if f == nil {
			continue
		}
		if diags := f.Diagnostics(); len(diags) > 0 {
			out[path] = diags
		}
	}
	return out
}

// FindSymbol looks name up among the top-level symbols of every file.
func (c *Codebase) FindSymbol(name string) (string, Symbol, bool) {
	for _, path := range c.Paths() {
		f := c.GetFile(path)
		if f == nil {
			continue
		}
		for _, s := range Symbols(f.Tree) {
			if s.Name == name && s.Kind != SymbolImport {
				return path, s, true
			}
		}
	}
	return "", Symbol{}, false
}
