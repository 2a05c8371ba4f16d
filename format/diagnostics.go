package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dhamidi/madlib/madlib/parser"
)

// DiagnosticsEncoder writes each diagnostic of a tree followed by the
// offending source line and a caret marker under the reported span.
type DiagnosticsEncoder struct {
	w       io.Writer
	snippet bool
}

func NewDiagnosticsEncoder(w io.Writer) *DiagnosticsEncoder {
	return &DiagnosticsEncoder{w: w, snippet: true}
}

// Brief drops the source snippets.
func (e *DiagnosticsEncoder) Brief() *DiagnosticsEncoder {
	e.snippet = false
	return e
}

func (e *DiagnosticsEncoder) Encode(tree *parser.Tree) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *DiagnosticsEncoder) MarshalText(tree *parser.Tree) ([]byte, error) {
	var sb strings.Builder
	diags := tree.Diagnostics()
	for _, d := range diags {
		fmt.Fprintf(&sb, "%s [%s %s]\n", d.Error(), d.Category(), d.Kind)
		if e.snippet && d.Kind != parser.ErrCancelled {
			writeSnippet(&sb, tree.Source, d.Span)
		}
	}
	switch n := len(diags); n {
	case 0:
	case 1:
		sb.WriteString("1 error\n")
	default:
		fmt.Fprintf(&sb, "%d errors\n", n)
	}
	return []byte(sb.String()), nil
}

func writeSnippet(sb *strings.Builder, src []byte, span parser.Span) {
	start := span.Start.Offset
	if start < 0 || start > len(src) {
		return
	}
	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	lineEnd := len(src)
	if i := bytes.IndexByte(src[start:], '\n'); i >= 0 {
		lineEnd = start + i
	}
	line := strings.TrimSuffix(string(src[lineStart:lineEnd]), "\r")

	gutter := fmt.Sprintf("%4d | ", span.Start.Line)
	sb.WriteString(gutter)
	sb.WriteString(line)
	sb.WriteString("\n")

	sb.WriteString(strings.Repeat(" ", len(gutter)-2))
	sb.WriteString("| ")
	sb.WriteString(CaretPadding(string(src[lineStart:start])))

	end := span.End.Offset
	if end > lineEnd {
		end = lineEnd
	}
	width := 0
	if end > start {
		width = runewidth.StringWidth(string(src[start:end]))
	}
	sb.WriteString("^")
	if width > 1 {
		sb.WriteString(strings.Repeat("~", width-1))
	}
	sb.WriteString("\n")
}

// CaretPadding returns the whitespace that lines a marker up under the
// character following prefix. Tabs are kept so terminals expand them the
// same way; wide characters take two cells.
func CaretPadding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}
