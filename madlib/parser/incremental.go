package parser

import (
	"bytes"
	"context"
	"fmt"
	"sort"
)

// Edit describes a single replacement in byte offsets: the old bytes
// [StartByte, OldEndByte) were replaced by the new bytes
// [StartByte, NewEndByte).
type Edit struct {
	StartByte  int
	OldEndByte int
	NewEndByte int
}

func (e Edit) Delta() int {
	return e.NewEndByte - e.OldEndByte
}

func (e Edit) String() string {
	return fmt.Sprintf("[%d,%d)->[%d,%d)", e.StartByte, e.OldEndByte, e.StartByte, e.NewEndByte)
}

// ApplyEdit replaces src[start:end] with text and returns the new source
// together with the matching Edit.
func ApplyEdit(src []byte, start, end int, text []byte) ([]byte, Edit, error) {
	if start < 0 || start > end || end > len(src) {
		return nil, Edit{}, fmt.Errorf("%w: range [%d,%d) outside source of %d bytes", ErrInvalidEdit, start, end, len(src))
	}
	out := make([]byte, 0, len(src)-(end-start)+len(text))
	out = append(out, src[:start]...)
	out = append(out, text...)
	out = append(out, src[end:]...)
	return out, Edit{StartByte: start, OldEndByte: end, NewEndByte: start + len(text)}, nil
}

func (e Edit) validate(oldSrc, newSrc []byte) error {
	switch {
	case e.StartByte < 0 || e.StartByte > e.OldEndByte || e.OldEndByte > len(oldSrc):
		return fmt.Errorf("%w: old range %s outside %d bytes", ErrInvalidEdit, e, len(oldSrc))
	case e.NewEndByte < e.StartByte || e.NewEndByte > len(newSrc):
		return fmt.Errorf("%w: new range %s outside %d bytes", ErrInvalidEdit, e, len(newSrc))
	case len(newSrc)-e.NewEndByte != len(oldSrc)-e.OldEndByte:
		return fmt.Errorf("%w: %s does not account for the length change", ErrInvalidEdit, e)
	case !bytes.Equal(oldSrc[:e.StartByte], newSrc[:e.StartByte]),
		!bytes.Equal(oldSrc[e.OldEndByte:], newSrc[e.NewEndByte:]):
		return fmt.Errorf("%w: %s changes bytes outside its range", ErrInvalidEdit, e)
	}
	return nil
}

// Reparse produces the tree for newSrc from old and the edit that turned
// old.Source into newSrc. Top-level statements before the edit are shared
// with old; parsing restarts one statement before the damage and stops as
// soon as it lands on a statement boundary of the old tree past the edit,
// after which the old statements are reused with shifted positions. The
// old tree is never modified.
func Reparse(ctx context.Context, old *Tree, edit Edit, newSrc []byte, opts ...Option) (*Tree, error) {
	if err := edit.validate(old.Source, newSrc); err != nil {
		return nil, err
	}
	base := []Option{WithFile(old.File), WithStartLine(old.StartLine)}
	p := newParser(ctx, newSrc, append(base, opts...)...)

	children := old.Root.Children
	if len(children) == 0 {
		return p.tree(p.parseProgram()), nil
	}

	first := sort.Search(len(children), func(k int) bool {
		return children[k].Span.End.Offset >= edit.StartByte
	})
	if first > 0 {
		first--
	}
	start := 0
	if first > 0 {
		start = children[first-1].Span.End.Offset
	}
	p.ts.Reset(start, rootState())

	root := p.startNode(KindProgram)
	for _, c := range children[:first] {
		root.AddChild(c)
	}

	resume := -1
	for {
		if p.peek().Kind == TokenEOF || p.isCancelled() {
			break
		}
		progress := p.mustProgress(root)
		root.AddChild(p.parseStatement())
		progress()
		if k := p.resyncPoint(children, edit, first); k >= 0 {
			resume = k
			break
		}
	}

	if resume < 0 {
		t := p.tree(p.finishNode(root))
		t.Reused = first
		return t, nil
	}

	sh := shifter{sc: p.sc, delta: edit.Delta()}
	// Old nodes keep their positions only when no byte moved and no line
	// break appeared or vanished inside the edit.
	share := edit.Delta() == 0 &&
		bytes.IndexByte(old.Source[edit.StartByte:edit.OldEndByte], '\n') < 0 &&
		bytes.IndexByte(newSrc[edit.StartByte:edit.NewEndByte], '\n') < 0
	for _, c := range children[resume:] {
		if share {
			root.AddChild(c)
		} else {
			root.AddChild(sh.node(c))
		}
	}

	t := &Tree{
		Root:      p.finishNode(root),
		Source:    newSrc,
		File:      p.file,
		StartLine: p.startLine,
		Reused:    first + len(children) - resume,
		cancelled: p.cancelled,
	}
	if share {
		t.Trailing = old.Trailing
	} else {
		t.Trailing = sh.tokens(old.Trailing)
	}
	return t, nil
}

// resyncPoint returns the index of the old statement that can be reused
// from the current stream position, or -1.
func (p *Parser) resyncPoint(children []*Node, edit Edit, first int) int {
	off := p.ts.Offset()
	if off < edit.NewEndByte || !p.ts.State().AtRoot() {
		return -1
	}
	oldOff := off - edit.Delta()
	if oldOff < edit.OldEndByte {
		return -1
	}
	m := sort.Search(len(children), func(k int) bool {
		return children[k].Span.End.Offset >= oldOff
	})
	if m >= len(children) || children[m].Span.End.Offset != oldOff {
		return -1
	}
	if k := m + 1; k > first && k < len(children) {
		return k
	}
	return -1
}

// shifter copies subtrees that moved by delta bytes, recomputing line and
// column from the new source.
type shifter struct {
	sc    *Scanner
	delta int
}

func (s shifter) span(sp Span) Span {
	return s.sc.span(sp.Start.Offset+s.delta, sp.End.Offset+s.delta)
}

func (s shifter) err(e *ParseError) *ParseError {
	if e == nil {
		return nil
	}
	c := *e
	c.Span = s.span(e.Span)
	if e.Got != nil {
		got := s.token(*e.Got)
		c.Got = &got
	}
	return &c
}

func (s shifter) token(tok Token) Token {
	tok.Span = s.span(tok.Span)
	tok.Err = s.err(tok.Err)
	tok.Leading = s.tokens(tok.Leading)
	return tok
}

func (s shifter) tokens(toks []Token) []Token {
	if toks == nil {
		return nil
	}
	out := make([]Token, len(toks))
	for i, t := range toks {
		out[i] = s.token(t)
	}
	return out
}

func (s shifter) node(n *Node) *Node {
	c := &Node{
		Kind:     n.Kind,
		Span:     s.span(n.Span),
		Missing:  n.Missing,
		fields:   n.fields,
		hasError: n.hasError,
	}
	if n.Token != nil {
		tok := s.token(*n.Token)
		c.Token = &tok
		if n.Error != nil && n.Error == n.Token.Err {
			c.Error = tok.Err
		}
	}
	if c.Error == nil {
		c.Error = s.err(n.Error)
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = s.node(child)
		}
	}
	return c
}
