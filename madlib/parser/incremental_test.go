package parser

import (
	"context"
	"errors"
	"testing"
)

func reparse(t *testing.T, src string, start, end int, text string) (*Tree, *Tree) {
	t.Helper()
	old := parseString(src)
	newSrc, edit, err := ApplyEdit(old.Source, start, end, []byte(text))
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	next, err := Reparse(context.Background(), old, edit, newSrc)
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	return old, next
}

func TestReparseNoop(t *testing.T) {
	src := "a = 1\nb = 2\nc = 3\n"
	old, next := reparse(t, src, 5, 5, "")

	if next.SExpr() != old.SExpr() {
		t.Errorf("no-op edit changed the tree:\n%s\n%s", old.SExpr(), next.SExpr())
	}
	if next.Root.Children[1] != old.Root.Children[1] || next.Root.Children[2] != old.Root.Children[2] {
		t.Errorf("statements after an unchanged position should be shared")
	}
	if next.Reused != 2 {
		t.Errorf("Reused = %d, want 2", next.Reused)
	}
	if next.Text() != src {
		t.Errorf("round trip = %q", next.Text())
	}
}

func TestReparseSharesPrefix(t *testing.T) {
	src := "a = 1\nb = 2\nc = 3\nd = 4\n"
	old, next := reparse(t, src, 16, 17, "33")

	if next.Root.Children[0] != old.Root.Children[0] {
		t.Errorf("first statement should be shared by pointer")
	}
	if next.Root.Children[3] == old.Root.Children[3] {
		t.Errorf("shifted statement must be a copy")
	}
	if next.Reused != 2 {
		t.Errorf("Reused = %d, want 2", next.Reused)
	}

	fresh := parseString("a = 1\nb = 2\nc = 33\nd = 4\n")
	if got, want := next.Root.StringWithPositions(), fresh.Root.StringWithPositions(); got != want {
		t.Errorf("reparse differs from a fresh parse:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if old.Text() != src {
		t.Errorf("old tree was modified: %q", old.Text())
	}
}

func TestReparseMatchesFreshParse(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		start, end int
		text       string
	}{
		{"insert statement at start", "x = a\ny = 2\n", 0, 0, "z = 0\n"},
		{"delete statement", "a = 1\nb = 2\nc = 3\n", 6, 12, ""},
		{"extend expression", "a = 1\nb = 2\nc = 3\n", 11, 11, " + 1"},
		{"rename", "a = 1\nb = 2\nc = 3\n", 6, 7, "bee"},
		{"open a string", "a = 1\nb = 2\nc = 3\n", 10, 10, "\""},
		{"open a block", "a = 1\nb = 2\nc = 3\n", 6, 6, "{ "},
		{"edit inside block", "f(x) {\n  y = 1\n}\nz = 2\n", 13, 14, "42"},
		{"break a comment", "a = 1 /* c */\nb = 2\n", 12, 14, ""},
		{"append", "a = 1\n", 6, 6, "b = 2\n"},
		{"clear", "a = 1\nb = 2\n", 0, 12, ""},
		{"start from empty", "", 0, 0, "a = 1"},
		{"same length more lines", "x = 1\ny = 2\nz = 3\nw = 4\n", 0, 6, "\nx =1\n"},
		{"same length fewer lines", "x = 1\n\ny = 2\nz = 3\n", 0, 7, "x = 1 \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, next := reparse(t, tt.src, tt.start, tt.end, tt.text)
			newSrc := tt.src[:tt.start] + tt.text + tt.src[tt.end:]
			fresh := parseString(newSrc)

			if got, want := next.Root.StringWithPositions(), fresh.Root.StringWithPositions(); got != want {
				t.Errorf("reparse differs from a fresh parse:\ngot:\n%s\nwant:\n%s", got, want)
			}
			if got := next.Text(); got != newSrc {
				t.Errorf("round trip = %q, want %q", got, newSrc)
			}
			if got, want := len(next.Diagnostics()), len(fresh.Diagnostics()); got != want {
				t.Errorf("diagnostics = %d, want %d", got, want)
			}
		})
	}
}

func TestReparseSameLengthLineShift(t *testing.T) {
	src := "x = 1\ny = 2\nz = 3\nw = 4\n"
	old, next := reparse(t, src, 0, 6, "\nx =1\n")

	last := next.Root.Children[len(next.Root.Children)-1]
	if last.Span.Start.Line != 5 || last.Span.Start.Column != 1 {
		t.Errorf("last statement starts at %v, want 5:1", last.Span.Start)
	}
	if last == old.Root.Children[len(old.Root.Children)-1] {
		t.Errorf("statement on a moved line must not be shared")
	}
}

func TestReparseInvalidEdit(t *testing.T) {
	old := parseString("a = 1")
	tests := []struct {
		name   string
		edit   Edit
		newSrc string
	}{
		{"inverted range", Edit{StartByte: 4, OldEndByte: 2, NewEndByte: 4}, "a = 1"},
		{"past the end", Edit{StartByte: 0, OldEndByte: 10, NewEndByte: 0}, "a = 1"},
		{"wrong length", Edit{StartByte: 0, OldEndByte: 1, NewEndByte: 1}, "abc = 1"},
		{"changes outside range", Edit{StartByte: 4, OldEndByte: 5, NewEndByte: 5}, "b = 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reparse(context.Background(), old, tt.edit, []byte(tt.newSrc))
			if !errors.Is(err, ErrInvalidEdit) {
				t.Errorf("err = %v, want ErrInvalidEdit", err)
			}
		})
	}
}

func TestApplyEdit(t *testing.T) {
	out, edit, err := ApplyEdit([]byte("hello world"), 6, 11, []byte("madlib"))
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if string(out) != "hello madlib" {
		t.Errorf("out = %q", out)
	}
	if edit != (Edit{StartByte: 6, OldEndByte: 11, NewEndByte: 12}) || edit.Delta() != 1 {
		t.Errorf("edit = %v, delta %d", edit, edit.Delta())
	}

	if _, _, err := ApplyEdit([]byte("abc"), 2, 1, nil); !errors.Is(err, ErrInvalidEdit) {
		t.Errorf("err = %v, want ErrInvalidEdit", err)
	}
}
