package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhamidi/madlib/madlib/parser"
)

// Project is a directory of Madlib sources, optionally described by a
// .madlib.yaml file at its root.
type Project struct {
	RootDir    string
	ConfigFile string
	Config     Config
}

// File is a parsed source file together with its module-level imports
// and exports.
type File struct {
	Path    string
	Tree    *parser.Tree
	Imports []string // import sources as written
	Exports []string

	// Dependencies are the paths of project files this file imports.
	Dependencies []string
}

// Load loads the project rooted at the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom loads the project rooted at rootDir. A missing config file is
// not an error; the defaults apply.
func LoadFrom(rootDir string) (*Project, error) {
	proj := &Project{
		RootDir: rootDir,
		Config:  DefaultConfig(),
	}

	path := filepath.Join(rootDir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return proj, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", ConfigFileName, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	proj.ConfigFile = path
	proj.Config = cfg
	return proj, nil
}

// SourceDirs returns the configured source directories joined to the
// project root.
func (p *Project) SourceDirs() []string {
	dirs := make([]string, len(p.Config.SourceDirs))
	for i, d := range p.Config.SourceDirs {
		if filepath.IsAbs(d) {
			dirs[i] = d
		} else {
			dirs[i] = filepath.Join(p.RootDir, d)
		}
	}
	return dirs
}

// Matches reports whether path has a source extension and is not
// excluded by an ignore pattern. Patterns are matched against the path
// relative to the project root and against the base name.
func (p *Project) Matches(path string) bool {
	ok := false
	for _, ext := range p.Config.Extensions {
		if filepath.Ext(path) == ext {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	return !p.ignored(path)
}

func (p *Project) ignored(path string) bool {
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pattern := range p.Config.Ignore {
		if m, _ := filepath.Match(pattern, rel); m {
			return true
		}
		if m, _ := filepath.Match(pattern, base); m {
			return true
		}
		if dir := strings.TrimSuffix(pattern, "/"); dir != pattern && strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// SourceFiles returns every source file under the source directories,
// sorted. Hidden directories are skipped.
func (p *Project) SourceFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, dir := range p.SourceDirs() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != dir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !p.Matches(path) || seen[path] {
				return nil
			}
			seen[path] = true
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan sources in %s: %w", dir, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ParseFiles parses every source file of the project and resolves the
// imports between them.
func (p *Project) ParseFiles(ctx context.Context) ([]*File, error) {
	paths, err := p.SourceFiles()
	if err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := ParseFile(ctx, path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	p.resolve(files)
	return files, nil
}

// ParseFile reads and parses a single source file.
func ParseFile(ctx context.Context, path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tree := parser.Parse(ctx, data, parser.WithFile(path))
	return &File{
		Path:    path,
		Tree:    tree,
		Imports: Imports(tree),
		Exports: Exports(tree),
	}, nil
}

// resolve fills in Dependencies for relative imports that name another
// file of the project. The extension may be omitted in the import.
func (p *Project) resolve(files []*File) {
	byPath := make(map[string]*File, len(files))
	for _, f := range files {
		byPath[filepath.Clean(f.Path)] = f
	}

	for _, f := range files {
		f.Dependencies = nil
		for _, src := range f.Imports {
			if !strings.HasPrefix(src, "./") && !strings.HasPrefix(src, "../") {
				continue
			}
			target := filepath.Clean(filepath.Join(filepath.Dir(f.Path), filepath.FromSlash(src)))
			if _, ok := byPath[target]; ok {
				f.Dependencies = append(f.Dependencies, target)
				continue
			}
			for _, ext := range p.Config.Extensions {
				if _, ok := byPath[target+ext]; ok {
					f.Dependencies = append(f.Dependencies, target+ext)
					break
				}
			}
		}
	}
}

// Imports returns the source strings of the top-level import statements
// of tree, in order.
func Imports(tree *parser.Tree) []string {
	var out []string
	for _, stmt := range tree.Root.ChildrenOfKind(parser.KindImportStatement) {
		if src := stringValue(stmt.ChildByField("source"), tree.Source); src != "" {
			out = append(out, src)
		}
	}
	return out
}

// Exports returns the names a file exports: declared names, export
// clause names (their alias when present) and "default".
func Exports(tree *parser.Tree) []string {
	var out []string
	for _, stmt := range tree.Root.ChildrenOfKind(parser.KindExportStatement) {
		if stmt.ChildByField("value") != nil {
			out = append(out, "default")
			continue
		}
		if decl := stmt.ChildByField("declaration"); decl != nil && !decl.Missing {
			if isDefaultExport(stmt) {
				out = append(out, "default")
				continue
			}
			out = append(out, BindingNames(decl.ChildByField("name"), tree.Source)...)
			continue
		}
		clause := stmt.FirstChildOfKind(parser.KindExportClause)
		if clause == nil {
			continue
		}
		for _, spec := range clause.ChildrenOfKind(parser.KindExportSpecifier) {
			name := spec.ChildByField("alias")
			if name == nil {
				name = spec.ChildByField("name")
			}
			if name == nil || name.Missing {
				continue
			}
			if name.Kind == parser.KindString {
				out = append(out, stringValue(name, tree.Source))
			} else {
				out = append(out, name.Text(tree.Source))
			}
		}
	}
	return out
}

func isDefaultExport(stmt *parser.Node) bool {
	for _, c := range stmt.Children {
		if c.Kind == parser.KindToken && c.TokenLiteral() == "default" {
			return true
		}
	}
	return false
}

// BindingNames returns the identifiers bound by a declarator name, which
// may be a plain identifier or a record or list pattern.
func BindingNames(n *parser.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	n.Walk(func(c *parser.Node) bool {
		switch c.Kind {
		case parser.KindIdentifier, parser.KindShorthandPropertyIdentifierPattern:
			if !c.Missing {
				out = append(out, c.Text(src))
			}
			return false
		case parser.KindMemberExpression, parser.KindSubscriptExpression:
			return false
		case parser.KindAssignmentPattern, parser.KindRecordAssignmentPattern:
			// only the left side binds
			if left := c.ChildByField("left"); left != nil {
				out = append(out, BindingNames(left, src)...)
			}
			return false
		case parser.KindPairPattern:
			if value := c.ChildByField("value"); value != nil {
				out = append(out, BindingNames(value, src)...)
			}
			return false
		}
		return true
	})
	return out
}

func stringValue(n *parser.Node, src []byte) string {
	if n == nil || n.Missing || n.Kind != parser.KindString {
		return ""
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.Kind == parser.KindStringFragment || c.Kind == parser.KindEscapeSequence {
			b.WriteString(c.Text(src))
		}
	}
	return b.String()
}

// FilesInOrder returns files sorted in dependency order (dependencies
// first). Files that take part in an import cycle keep their original
// relative order at the end.
func FilesInOrder(files []*File) []*File {
	known := make(map[string]*File, len(files))
	for _, f := range files {
		known[filepath.Clean(f.Path)] = f
	}

	// Topological sort using Kahn's algorithm
	inDegree := make(map[*File]int, len(files))
	dependents := make(map[string][]*File)
	for _, f := range files {
		inDegree[f] = 0
		for _, dep := range f.Dependencies {
			if _, ok := known[dep]; ok {
				inDegree[f]++
				dependents[dep] = append(dependents[dep], f)
			}
		}
	}

	var queue []*File
	for _, f := range files {
		if inDegree[f] == 0 {
			queue = append(queue, f)
		}
	}

	result := make([]*File, 0, len(files))
	placed := make(map[*File]bool, len(files))
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		result = append(result, f)
		placed[f] = true

		for _, d := range dependents[filepath.Clean(f.Path)] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	for _, f := range files {
		if !placed[f] {
			result = append(result, f)
		}
	}
	return result
}
