package codebase

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/madlib/madlib/parser"
	"github.com/dhamidi/madlib/project"
)

const lsName = "madlib"

var lspLog = commonlog.GetLogger("madlib.lsp")

type LSPServer struct {
	codebase *Codebase
	watcher  *FileWatcher
	handler  protocol.Handler
	server   *server.Server
	version  string
	config   project.LSPConfig

	mu     sync.Mutex
	notify glsp.NotifyFunc
	timers map[string]*time.Timer
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
		timers:  make(map[string]*time.Timer),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentSelectionRange: ls.textDocumentSelectionRange,
		TextDocumentDefinition:     ls.textDocumentDefinition,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) RunTCP(address string) error {
	return ls.server.RunTCP(address)
}

func (ls *LSPServer) Codebase() *Codebase {
	return ls.codebase
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}

	proj, err := project.LoadFrom(rootDir)
	if err != nil {
		lspLog.Warningf("%s, using defaults", err)
		proj = &project.Project{RootDir: rootDir, Config: project.DefaultConfig()}
	}
	ls.codebase = New(proj)
	ls.config = proj.Config.LSP
	lspLog.Infof("workspace root %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		lspLog.Errorf("scan workspace: %s", err)
	}
	for path := range ls.codebase.Diagnostics() {
		ls.publish(pathToURI(path))
	}

	ls.watcher = NewFileWatcher(ls.codebase, ls.config.PollInterval)
	ls.watcher.OnChange(func(path string) {
		ls.publish(pathToURI(path))
	})
	ls.watcher.Prime()
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for uri, t := range ls.timers {
		t.Stop()
		delete(ls.timers, uri)
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text), params.TextDocument.Version)
	if ls.watcher != nil {
		ls.watcher.SetOpen(path, true)
	}
	ls.publishWith(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	version := params.TextDocument.Version

	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			ls.codebase.UpdateFile(path, []byte(c.Text), version)
		case protocol.TextDocumentContentChangeEvent:
			f := ls.codebase.GetFile(path)
			if f == nil {
				lspLog.Warningf("change to unknown document %s", uri)
				return nil
			}
			start := f.Lines.Offset(int(c.Range.Start.Line), int(c.Range.Start.Character))
			end := f.Lines.Offset(int(c.Range.End.Line), int(c.Range.End.Character))
			if _, err := ls.codebase.ApplyChange(context.Background(), path, start, end, c.Text, version); err != nil {
				lspLog.Errorf("%s", err)
				return nil
			}
		}
	}

	if ls.config.PublishOnChange {
		ls.schedulePublish(ctx.Notify, uri)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if ls.watcher != nil {
		ls.watcher.SetOpen(path, false)
	}
	if _, err := ls.codebase.ScanFile(path); err != nil {
		// unsaved buffer
		ls.codebase.RemoveFile(path)
	}
	ls.publishWith(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		version := int32(0)
		if f := ls.codebase.GetFile(path); f != nil {
			version = f.Version
		}
		ls.codebase.UpdateFile(path, []byte(*params.Text), version)
	}
	ls.publishWith(ctx.Notify, params.TextDocument.URI)
	return nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	f := ls.fileFor(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}

	symbols := []protocol.DocumentSymbol{}
	for _, s := range Symbols(f.Tree) {
		kind := protocol.SymbolKindVariable
		switch s.Kind {
		case SymbolFunction:
			kind = protocol.SymbolKindFunction
		case SymbolImport:
			kind = protocol.SymbolKindModule
		}
		detail := s.Kind.String()
		if s.Exported {
			detail = "export " + detail
		}
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           s.Name,
			Detail:         &detail,
			Kind:           kind,
			Range:          toRange(f, s.Span),
			SelectionRange: toRange(f, s.NameSpan),
		})
	}
	return symbols, nil
}

func (ls *LSPServer) textDocumentSelectionRange(ctx *glsp.Context, params *protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	f := ls.fileFor(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}

	result := make([]protocol.SelectionRange, 0, len(params.Positions))
	for _, pos := range params.Positions {
		offset := f.Lines.Offset(int(pos.Line), int(pos.Character))
		var current *protocol.SelectionRange
		for _, n := range f.Tree.Path(offset) {
			r := toRange(f, n.Span)
			if current != nil && current.Range == r {
				continue
			}
			current = &protocol.SelectionRange{Range: r, Parent: current}
		}
		if current == nil {
			current = &protocol.SelectionRange{Range: protocol.Range{Start: pos, End: pos}}
		}
		result = append(result, *current)
	}
	return result, nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	f := ls.fileFor(params.TextDocument.URI)
	if f == nil {
		return nil, nil
	}
	offset := f.Lines.Offset(int(params.Position.Line), int(params.Position.Character))
	n := f.Tree.DescendantForByteRange(offset, offset)
	if n == nil || n.Kind != parser.KindIdentifier {
		return nil, nil
	}
	name := n.Text(f.Content)

	for _, s := range Symbols(f.Tree) {
		if s.Name == name {
			return protocol.Location{URI: params.TextDocument.URI, Range: toRange(f, s.NameSpan)}, nil
		}
	}
	path, s, ok := ls.codebase.FindSymbol(name)
	if !ok {
		return nil, nil
	}
	target := ls.codebase.GetFile(path)
	if target == nil {
		return nil, nil
	}
	return protocol.Location{URI: pathToURI(path), Range: toRange(target, s.NameSpan)}, nil
}

func (ls *LSPServer) fileFor(uri protocol.DocumentUri) *FileInfo {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	return ls.codebase.GetFile(path)
}

// schedulePublish publishes the diagnostics of uri once no further change
// arrived for the configured debounce interval.
func (ls *LSPServer) schedulePublish(notify glsp.NotifyFunc, uri protocol.DocumentUri) {
	if ls.config.Debounce <= 0 {
		ls.publishWith(notify, uri)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if t, ok := ls.timers[uri]; ok {
		t.Stop()
	}
	ls.timers[uri] = time.AfterFunc(ls.config.Debounce, func() {
		ls.mu.Lock()
		delete(ls.timers, uri)
		ls.mu.Unlock()
		ls.publishWith(notify, uri)
	})
}

func (ls *LSPServer) publish(uri protocol.DocumentUri) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify != nil {
		ls.publishWith(notify, uri)
	}
}

func (ls *LSPServer) publishWith(notify glsp.NotifyFunc, uri protocol.DocumentUri) {
	f := ls.fileFor(uri)
	if f == nil {
		// forgotten file: clear whatever the client still shows
		notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
		return
	}
	params := protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toDiagnostics(f),
	}
	if f.Version > 0 {
		v := protocol.UInteger(f.Version)
		params.Version = &v
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

func toDiagnostics(f *FileInfo) []protocol.Diagnostic {
	source := lsName
	diags := []protocol.Diagnostic{}
	for _, d := range f.Diagnostics() {
		severity := protocol.DiagnosticSeverityError
		if d.Kind == parser.ErrCancelled {
			severity = protocol.DiagnosticSeverityWarning
		}
		message := strings.TrimPrefix(d.Error(), d.Span.Start.String()+": ")
		diags = append(diags, protocol.Diagnostic{
			Range:    toRange(f, d.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Kind.String()},
			Source:   &source,
			Message:  message,
		})
	}
	return diags
}

func toRange(f *FileInfo, span parser.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(f, span.Start.Offset),
		End:   toPosition(f, span.End.Offset),
	}
}

func toPosition(f *FileInfo, offset int) protocol.Position {
	line, character := f.Lines.Position(offset)
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
