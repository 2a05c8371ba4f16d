package codebase

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type recorder struct {
	mu        sync.Mutex
	published []protocol.PublishDiagnosticsParams
}

func (r *recorder) notify(method string, params any) {
	if method != protocol.ServerTextDocumentPublishDiagnostics {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, params.(protocol.PublishDiagnosticsParams))
}

func (r *recorder) last(t *testing.T, uri string) protocol.PublishDiagnosticsParams {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.published) - 1; i >= 0; i-- {
		if r.published[i].URI == uri {
			return r.published[i]
		}
	}
	t.Fatalf("no diagnostics published for %s", uri)
	return protocol.PublishDiagnosticsParams{}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.published)
}

func newTestServer(t *testing.T, files map[string]string) (*LSPServer, *glsp.Context, *recorder, string) {
	t.Helper()
	root := t.TempDir()
	files[".madlib.yaml"] = "lsp:\n  debounce: 0s\n  poll_interval: 1h\n"
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	rec := &recorder{}
	ctx := &glsp.Context{Notify: rec.notify}
	ls := NewLSPServer("test")

	result, err := ls.initialize(ctx, &protocol.InitializeParams{RootPath: &root})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	caps := result.(protocol.InitializeResult).Capabilities
	if caps.DocumentSymbolProvider == nil || caps.SelectionRangeProvider == nil || caps.DefinitionProvider == nil {
		t.Errorf("missing capabilities: %+v", caps)
	}
	if err := ls.initialized(ctx, &protocol.InitializedParams{}); err != nil {
		t.Fatalf("initialized: %v", err)
	}
	t.Cleanup(func() { ls.shutdown(ctx) })
	return ls, ctx, rec, root
}

func open(t *testing.T, ls *LSPServer, ctx *glsp.Context, uri, text string) {
	t.Helper()
	err := ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "madlib", Version: 1, Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen: %v", err)
	}
}

func change(t *testing.T, ls *LSPServer, ctx *glsp.Context, uri string, version int32, r protocol.Range, text string) {
	t.Helper()
	err := ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                version,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{Range: &r, Text: text}},
	})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}
}

func rng(l1, c1, l2, c2 uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: l1, Character: c1},
		End:   protocol.Position{Line: l2, Character: c2},
	}
}

func TestLSPPublishesWorkspaceDiagnostics(t *testing.T) {
	_, _, rec, root := newTestServer(t, map[string]string{
		"good.mad": "a = 1\n",
		"bad.mad":  "b = 0x\n",
	})

	params := rec.last(t, pathToURI(filepath.Join(root, "bad.mad")))
	if len(params.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(params.Diagnostics))
	}
	d := params.Diagnostics[0]
	if d.Range != rng(0, 4, 0, 6) {
		t.Errorf("range = %+v", d.Range)
	}
	if d.Code == nil || d.Code.Value != "InvalidNumericLiteral" || *d.Source != "madlib" {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Message != "invalid numeric literal" {
		t.Errorf("message = %q", d.Message)
	}
	if rec.count() != 1 {
		t.Errorf("clean files should not be published on startup, got %d", rec.count())
	}
}

func TestLSPIncrementalChange(t *testing.T) {
	ls, ctx, rec, root := newTestServer(t, map[string]string{})
	uri := pathToURI(filepath.Join(root, "main.mad"))

	open(t, ls, ctx, uri, "a = 1\nb = 2\n")
	if got := rec.last(t, uri); len(got.Diagnostics) != 0 || *got.Version != 1 {
		t.Errorf("after open: %+v", got)
	}

	change(t, ls, ctx, uri, 2, rng(1, 4, 1, 5), "\"x")
	got := rec.last(t, uri)
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Code.Value != "UnterminatedString" {
		t.Fatalf("after breaking edit: %+v", got.Diagnostics)
	}
	if *got.Version != 2 {
		t.Errorf("version = %d, want 2", *got.Version)
	}

	change(t, ls, ctx, uri, 3, rng(1, 6, 1, 6), "\"")
	if got := rec.last(t, uri); len(got.Diagnostics) != 0 {
		t.Errorf("after fix: %+v", got.Diagnostics)
	}

	f := ls.Codebase().GetFile(filepath.Join(root, "main.mad"))
	if string(f.Content) != "a = 1\nb = \"x\"\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Version != 3 {
		t.Errorf("Version = %d, want 3", f.Version)
	}
}

func TestLSPDocumentSymbol(t *testing.T) {
	ls, ctx, _, root := newTestServer(t, map[string]string{})
	uri := pathToURI(filepath.Join(root, "main.mad"))
	open(t, ls, ctx, uri, "import { m } from \"./m\"\nexport f = (x) => x\n")

	result, err := ls.textDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatal(err)
	}
	symbols := result.([]protocol.DocumentSymbol)
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2", len(symbols))
	}
	if symbols[0].Name != "m" || symbols[0].Kind != protocol.SymbolKindModule {
		t.Errorf("symbols[0] = %+v", symbols[0])
	}
	f := symbols[1]
	if f.Name != "f" || f.Kind != protocol.SymbolKindFunction || *f.Detail != "export function" {
		t.Errorf("symbols[1] = %+v", f)
	}
	if f.SelectionRange != rng(1, 7, 1, 8) || f.Range != rng(1, 0, 1, 19) {
		t.Errorf("ranges = %+v / %+v", f.Range, f.SelectionRange)
	}
}

func TestLSPSelectionRange(t *testing.T) {
	ls, ctx, _, root := newTestServer(t, map[string]string{})
	uri := pathToURI(filepath.Join(root, "main.mad"))
	open(t, ls, ctx, uri, "x = a + 1")

	ranges, err := ls.textDocumentSelectionRange(ctx, &protocol.SelectionRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Positions:    []protocol.Position{{Line: 0, Character: 8}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ranges) != 1 {
		t.Fatalf("got %d ranges", len(ranges))
	}

	want := []protocol.Range{rng(0, 8, 0, 9), rng(0, 4, 0, 9), rng(0, 0, 0, 9)}
	sel := &ranges[0]
	for i, w := range want {
		if sel == nil {
			t.Fatalf("chain ends after %d ranges", i)
		}
		if sel.Range != w {
			t.Errorf("range %d = %+v, want %+v", i, sel.Range, w)
		}
		sel = sel.Parent
	}
	if sel != nil {
		t.Errorf("unexpected outer range %+v", sel.Range)
	}
}

func TestLSPDefinition(t *testing.T) {
	ls, ctx, _, root := newTestServer(t, map[string]string{
		"lib.mad": "export helper = (n) => n\n",
	})
	uri := pathToURI(filepath.Join(root, "main.mad"))
	open(t, ls, ctx, uri, "x = 1\ny = x\nz = helper(y)\n")

	tests := []struct {
		name string
		pos  protocol.Position
		uri  string
		want protocol.Range
	}{
		{"same file", protocol.Position{Line: 1, Character: 4}, uri, rng(0, 0, 0, 1)},
		{"other file", protocol.Position{Line: 2, Character: 6}, pathToURI(filepath.Join(root, "lib.mad")), rng(0, 7, 0, 13)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ls.textDocumentDefinition(ctx, &protocol.DefinitionParams{
				TextDocumentPositionParams: protocol.TextDocumentPositionParams{
					TextDocument: protocol.TextDocumentIdentifier{URI: uri},
					Position:     tt.pos,
				},
			})
			if err != nil {
				t.Fatal(err)
			}
			loc, ok := result.(protocol.Location)
			if !ok {
				t.Fatalf("result = %#v", result)
			}
			if loc.URI != tt.uri || loc.Range != tt.want {
				t.Errorf("location = %+v", loc)
			}
		})
	}
}

func TestLSPCloseUnsavedDocument(t *testing.T) {
	ls, ctx, rec, root := newTestServer(t, map[string]string{})
	uri := pathToURI(filepath.Join(root, "scratch.mad"))
	open(t, ls, ctx, uri, "x = ")

	if got := rec.last(t, uri); len(got.Diagnostics) != 1 {
		t.Fatalf("after open: %+v", got.Diagnostics)
	}
	if err := ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}); err != nil {
		t.Fatal(err)
	}
	if got := rec.last(t, uri); len(got.Diagnostics) != 0 {
		t.Errorf("closing an unsaved document should clear its diagnostics: %+v", got.Diagnostics)
	}
	if ls.Codebase().GetFile(filepath.Join(root, "scratch.mad")) != nil {
		t.Errorf("unsaved document still in the codebase")
	}
}
