package format

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/madlib/madlib/parser"
)

func parse(src string) *parser.Tree {
	return parser.Parse(context.Background(), []byte(src))
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := New(name, &buf)
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			if err := enc.Encode(parse("x = 1")); err != nil {
				t.Fatalf("Encode: %v", err)
			}
		})
	}
	if _, err := New("xml", nil); err == nil || !strings.Contains(err.Error(), "unknown format: xml") {
		t.Errorf("err = %v", err)
	}
}

func TestSExprEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewSExprEncoder(&buf).Encode(parse("x = 1")); err != nil {
		t.Fatal(err)
	}
	want := "(program (variable_declarator name: (identifier) value: (number)))\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestTreeEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTreeEncoder(&buf, false).Encode(parse("x = 1")); err != nil {
		t.Fatal(err)
	}
	want := "program\n  variable_declarator\n    name: identifier x\n    token =\n    value: number 1\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := NewTreeEncoder(&buf, true).Encode(parse("x = 1")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "program [1:1-1:6]\n") {
		t.Errorf("positions missing:\n%s", buf.String())
	}
}

func TestASTJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewASTJSONEncoder(&buf).Encode(parse("x = 1")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") || !strings.Contains(buf.String(), "\n  \"root\"") {
		t.Errorf("expected indented json:\n%s", buf.String())
	}

	var out struct {
		Root struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind     string `json:"kind"`
				Children []struct {
					Field string `json:"field"`
					Token string `json:"token"`
				} `json:"children"`
			} `json:"children"`
		} `json:"root"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	decl := out.Root.Children[0]
	if decl.Kind != "variable_declarator" || decl.Children[0].Field != "name" || decl.Children[0].Token != "x" {
		t.Errorf("decl = %+v", decl)
	}

	buf.Reset()
	if err := NewASTJSONEncoder(&buf).Compact().Encode(parse("x = 1")); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("compact output spans lines:\n%s", buf.String())
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(parse("x = \"a\"")); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"1:1\tIdent\tnormal\t\"x\"",
		"1:2\tWhitespace\tnormal\t\" \"",
		"1:3\t=\tnormal\t\"=\"",
		"1:4\tWhitespace\tnormal\t\" \"",
		"1:5\t\"\tnormal\t\"\\\"\"",
		"1:6\tStringFragment\tstring\t\"a\"",
		"1:7\t\"\tstring\t\"\\\"\"",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := NewLineEncoder(&buf).SkipTrivia().Encode(parse("x = 12abc")); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[2], "\tInvalidNumericLiteral") {
		t.Errorf("malformed token line = %q", lines[2])
	}
}

func TestDiagnosticsEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDiagnosticsEncoder(&buf).Encode(parse("名前 = 12abc")); err != nil {
		t.Fatal(err)
	}
	want := "1:10: invalid numeric literal [lexical InvalidNumericLiteral]\n" +
		"   1 | 名前 = 12abc\n" +
		"     |        ^~~~~\n" +
		"1 error\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestDiagnosticsEncoderBrief(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDiagnosticsEncoder(&buf).Brief().Encode(parse("a = 0x\nb = 1__0\n")); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[2] != "2 errors" {
		t.Errorf("got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[1], "2:5: ") {
		t.Errorf("second diagnostic = %q", lines[1])
	}
}

func TestDiagnosticsEncoderClean(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDiagnosticsEncoder(&buf).Encode(parse("x = 1")); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("clean tree produced output: %q", buf.String())
	}
}

func TestCaretPadding(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", ""},
		{"ab", "  "},
		{"\tx", "\t "},
		{"日本", "    "},
		{"é", " "},
	}
	for _, tt := range tests {
		if got := CaretPadding(tt.prefix); got != tt.want {
			t.Errorf("CaretPadding(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}
