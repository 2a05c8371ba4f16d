package parser

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTokenStreamCheckpoint(t *testing.T) {
	ts := NewTokenStream(NewScanner([]byte("a / b"), "", 1))

	if tok := ts.Peek(ExpectValue); tok.Kind != TokenIdent {
		t.Fatalf("first token = %v", tok)
	}
	ts.Advance()
	cp := ts.Checkpoint()

	if tok := ts.Peek(ExpectValue); tok.Kind != TokenRegexSlash {
		t.Errorf("value context: got %v, want regex slash", tok.Kind)
	}
	if tok := ts.Peek(ExpectOperator); tok.Kind != TokenSlash {
		t.Errorf("operator context: got %v, want slash", tok.Kind)
	}
	ts.Advance()
	if ts.Offset() != 3 || !ts.State().AtRoot() {
		t.Errorf("after '/': offset %d, root %v", ts.Offset(), ts.State().AtRoot())
	}

	ts.Restore(cp)
	if ts.Offset() != 1 {
		t.Errorf("restored offset = %d, want 1", ts.Offset())
	}
	if tok := ts.Peek(ExpectOperator); tok.Kind != TokenSlash {
		t.Errorf("after restore: got %v, want slash", tok.Kind)
	}
}

func TestTokenStreamPeekN(t *testing.T) {
	ts := NewTokenStream(NewScanner([]byte("x = 1 / 2"), "", 1))
	tests := []struct {
		n    int
		want TokenKind
	}{
		{0, TokenIdent},
		{1, TokenAssign},
		{2, TokenNumber},
		{3, TokenSlash},
		{4, TokenNumber},
		{5, TokenEOF},
	}
	for _, tt := range tests {
		if got := ts.PeekN(tt.n, ExpectValue).Kind; got != tt.want {
			t.Errorf("PeekN(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
	if ts.Offset() != 0 {
		t.Errorf("PeekN moved the cursor to %d", ts.Offset())
	}
}

func TestTokenStreamAdvanceAtEOF(t *testing.T) {
	ts := NewTokenStream(NewScanner([]byte("  "), "", 1))
	tok := ts.Advance()
	if tok.Kind != TokenEOF || len(tok.Leading) != 1 {
		t.Fatalf("got %v with %d trivia, want EOF with whitespace", tok, len(tok.Leading))
	}
	if ts.Offset() != 0 {
		t.Errorf("EOF must not be consumed, offset %d", ts.Offset())
	}
}

func TestParseErrorString(t *testing.T) {
	tree := parseString("x = ")
	diags := tree.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Recovery != RecoveryInsertPlaceholder {
		t.Errorf("recovery = %v, want insert", d.Recovery)
	}
	if msg := d.Error(); !strings.HasPrefix(msg, "1:4: expected identifier") {
		t.Errorf("Error() = %q", msg)
	}
	if d.Got == nil || d.Got.Kind != TokenEOF {
		t.Errorf("Got = %v, want EOF", d.Got)
	}
}

func TestErrorKindCategory(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want Category
	}{
		{ErrUnterminatedString, CategoryLexical},
		{ErrInvalidNumericLiteral, CategoryLexical},
		{ErrUnexpectedToken, CategorySyntax},
		{ErrMissingToken, CategorySyntax},
		{ErrInvalidAssignmentTarget, CategorySyntax},
		{ErrAmbiguityUnresolved, CategoryAmbiguity},
		{ErrCancelled, CategoryCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Category(); got != tt.want {
				t.Errorf("Category() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiagnosticsInSourceOrder(t *testing.T) {
	tree := parseString("a = )\nb = \"x\n1 = 2")
	diags := tree.Diagnostics()
	if len(diags) < 3 {
		t.Fatalf("got %d diagnostics, want at least 3: %v", len(diags), diags)
	}
	for i := 1; i < len(diags); i++ {
		if diags[i-1].Span.Start.Offset > diags[i].Span.Start.Offset {
			t.Errorf("diagnostic %d at %d comes after %d", i, diags[i].Span.Start.Offset, diags[i-1].Span.Start.Offset)
		}
	}
}

func TestDescendantForByteRange(t *testing.T) {
	tree := parseString("x = a + b")

	n := tree.DescendantForByteRange(4, 5)
	if n == nil || n.Kind != KindIdentifier || n.Text(tree.Source) != "a" {
		t.Fatalf("got %v, want identifier a", n)
	}

	n = tree.NamedDescendantForByteRange(2, 3)
	if n == nil || n.Kind != KindVariableDeclarator {
		t.Errorf("named descendant of '=' = %v, want variable_declarator", n)
	}

	if n := tree.DescendantForByteRange(0, 100); n != nil {
		t.Errorf("out of range lookup = %v, want nil", n.Kind)
	}
}

func TestPath(t *testing.T) {
	tree := parseString("x = a + b")
	path := tree.Path(4)
	want := []NodeKind{KindProgram, KindVariableDeclarator, KindBinaryExpression, KindIdentifier}
	if len(path) != len(want) {
		t.Fatalf("path length = %d, want %d", len(path), len(want))
	}
	for i, n := range path {
		if n.Kind != want[i] {
			t.Errorf("path[%d] = %s, want %s", i, n.Kind, want[i])
		}
	}
}

func TestKindByName(t *testing.T) {
	for _, name := range []string{"program", "jsx_element", "record_pattern", "ERROR"} {
		k, ok := KindByName(name)
		if !ok || k.String() != name {
			t.Errorf("KindByName(%q) = %v, %v", name, k, ok)
		}
	}
	if _, ok := KindByName("nested_identifier"); ok {
		t.Errorf("internal kinds must not be looked up by name")
	}
}

func TestTreeMarshalJSON(t *testing.T) {
	tree := parseString("x = \"abc")
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out struct {
		Root struct {
			Kind     string `json:"kind"`
			Children []struct {
				Kind  string `json:"kind"`
				Field string `json:"field"`
			} `json:"children"`
		} `json:"root"`
		Diagnostics []struct {
			Kind string `json:"kind"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Root.Kind != "program" {
		t.Errorf("root kind = %q", out.Root.Kind)
	}
	if len(out.Root.Children) != 1 || out.Root.Children[0].Kind != "variable_declarator" {
		t.Errorf("children = %+v", out.Root.Children)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Kind != "UnterminatedString" {
		t.Errorf("diagnostics = %+v", out.Diagnostics)
	}
}
