package parser

import (
	"sort"
	"strings"
)

// Tree is the result of a parse. It is immutable; Reparse returns a new
// tree that shares unchanged subtrees with the old one.
type Tree struct {
	Root      *Node
	Source    []byte
	File      string
	StartLine int

	// Trailing holds the trivia between the last token and the end of
	// the input.
	Trailing []Token

	// Reused counts the top-level statements carried over from the
	// previous tree by Reparse.
	Reused int

	cancelled *ParseError
}

// Cancelled reports whether the parse stopped early because its context
// was cancelled.
func (t *Tree) Cancelled() bool {
	return t.cancelled != nil
}

// Diagnostics returns every error in the tree in source order: malformed
// tokens and trivia, missing placeholders and ERROR nodes.
func (t *Tree) Diagnostics() []*ParseError {
	var out []*ParseError
	t.Root.Walk(func(n *Node) bool {
		if n.Token != nil {
			for i := range n.Token.Leading {
				if err := n.Token.Leading[i].Err; err != nil {
					out = append(out, err)
				}
			}
		}
		if n.Error != nil {
			out = append(out, n.Error)
		}
		return true
	})
	for i := range t.Trailing {
		if err := t.Trailing[i].Err; err != nil {
			out = append(out, err)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Offset < out[j].Span.Start.Offset
	})
	if t.cancelled != nil {
		out = append(out, t.cancelled)
	}
	return out
}

func (t *Tree) HasErrors() bool {
	if t.cancelled != nil || t.Root.HasError() {
		return true
	}
	for _, tok := range t.Trailing {
		if tok.Err != nil {
			return true
		}
	}
	return false
}

// Tokens returns every token of the tree in source order with trivia
// flattened in front of the token it precedes. Missing placeholders are
// left out, so concatenating the literals reproduces the source.
func (t *Tree) Tokens() []Token {
	var out []Token
	for _, leaf := range t.Root.Leaves() {
		out = append(out, leaf.Token.Leading...)
		if !leaf.Token.Missing {
			tok := *leaf.Token
			tok.Leading = nil
			out = append(out, tok)
		}
	}
	return append(out, t.Trailing...)
}

// Text reassembles the source from the tree's tokens.
func (t *Tree) Text() string {
	var b strings.Builder
	for _, tok := range t.Tokens() {
		b.WriteString(tok.Literal)
	}
	return b.String()
}

// DescendantForByteRange returns the smallest node whose span contains
// [start, end].
func (t *Tree) DescendantForByteRange(start, end int) *Node {
	n := t.Root
	if start < n.Span.Start.Offset || end > n.Span.End.Offset {
		return nil
	}
outer:
	for {
		for _, child := range n.Children {
			if child.Span.Start.Offset <= start && end <= child.Span.End.Offset {
				if child.Span.Len() == 0 && start != end {
					continue
				}
				n = child
				continue outer
			}
		}
		return n
	}
}

// NamedDescendantForByteRange is like DescendantForByteRange but skips
// anonymous leaves.
func (t *Tree) NamedDescendantForByteRange(start, end int) *Node {
	n := t.DescendantForByteRange(start, end)
	if n == nil || n.IsNamed() {
		return n
	}
	return t.parentOf(n)
}

func (t *Tree) parentOf(target *Node) *Node {
	var parent *Node
	t.Root.Walk(func(n *Node) bool {
		if parent != nil {
			return false
		}
		for _, c := range n.Children {
			if c == target {
				parent = n
				return false
			}
		}
		return target.Span.Start.Offset >= n.Span.Start.Offset && target.Span.End.Offset <= n.Span.End.Offset
	})
	return parent
}

// Path returns the chain of nodes from the root down to the smallest node
// containing offset.
func (t *Tree) Path(offset int) []*Node {
	var path []*Node
	n := t.Root
	if !n.Span.Contains(offset) {
		return nil
	}
outer:
	for {
		path = append(path, n)
		for _, child := range n.Children {
			if child.Span.Start.Offset <= offset && offset < child.Span.End.Offset {
				n = child
				continue outer
			}
		}
		return path
	}
}

func (t *Tree) SExpr() string {
	return t.Root.SExpr()
}

func (t *Tree) String() string {
	return t.Root.String()
}
