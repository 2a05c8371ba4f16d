package parser

import "fmt"

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// finishNode fixes the node's span to the union of its children. Nodes
// are never modified after this point; later passes copy instead.
func (p *Parser) finishNode(n *Node) *Node {
	if len(n.Children) == 0 {
		if n.Token == nil {
			pos := p.ts.Position()
			n.Span = Span{Start: pos, End: pos}
		}
		return n
	}
	for i, child := range n.Children {
		if child.Kind.internal() {
			panic(fmt.Sprintf("parser: internal kind %s attached to %s", child.Kind, n.Kind))
		}
		if i > 0 && n.Children[i-1].Span.End.Offset > child.Span.Start.Offset {
			panic(fmt.Sprintf("parser: overlapping children in %s at offset %d", n.Kind, child.Span.Start.Offset))
		}
	}
	n.Span = Span{
		Start: n.Children[0].Span.Start,
		End:   n.Children[len(n.Children)-1].Span.End,
	}
	return n
}

func leafFromToken(kind NodeKind, tok Token) *Node {
	t := tok
	return &Node{
		Kind:    kind,
		Span:    tok.Span,
		Token:   &t,
		Error:   tok.Err,
		Missing: tok.Missing,
	}
}

// consume advances past the token returned by the last peek and wraps it
// in a leaf of the given kind.
func (p *Parser) consume(kind NodeKind) *Node {
	return leafFromToken(kind, p.ts.Advance())
}

// expect consumes a token of kind tk, or inserts a zero-width placeholder
// when the next token is something else.
func (p *Parser) expect(tk TokenKind, ctx Context) *Node {
	if p.ts.Peek(ctx).Kind == tk {
		return p.consume(KindToken)
	}
	return p.missing(KindToken, tk, ctx)
}

func (p *Parser) expectContextual(word string, ctx Context) *Node {
	if tok := p.ts.Peek(ctx); tok.Kind == TokenIdent && tok.Literal == word {
		return p.consume(KindToken)
	}
	n := p.missing(KindToken, TokenIdent, ctx)
	n.Error.Message = fmt.Sprintf("expected '%s'", word)
	n.Error.Expected = nil
	return n
}

func (p *Parser) missing(kind NodeKind, tk TokenKind, ctx Context) *Node {
	got := p.ts.Peek(ctx)
	pos := p.ts.Position()
	sp := Span{Start: pos, End: pos}

	msg := "expected " + tk.String()
	if kind != KindToken {
		msg = "expected " + kind.String()
	}
	err := newError(ErrMissingToken, sp, msg)
	err.Expected = []TokenKind{tk}
	err.Got = &got

	tok := Token{Kind: tk, Span: sp, Missing: true, Err: err}
	return leafFromToken(kind, tok)
}

// errorNode consumes the next token into an ERROR node.
func (p *Parser) errorNode(msg string, ctx Context, expected ...TokenKind) *Node {
	tok := p.ts.Peek(ctx)
	n := p.startNode(KindError)
	n.AddChild(p.consume(KindToken))
	n = p.finishNode(n)
	n.Error = newError(ErrUnexpectedToken, n.Span, msg)
	n.Error.Expected = expected
	n.Error.Got = &tok
	return n
}

// wrapError wraps finished nodes in an ERROR node carrying err.
func (p *Parser) wrapError(kind ErrorKind, msg string, children ...*Node) *Node {
	n := p.startNode(KindError)
	for _, c := range children {
		n.AddChild(c)
	}
	n = p.finishNode(n)
	n.Error = newError(kind, n.Span, msg)
	return n
}

// mustProgress returns a function that checks whether the parser moved
// since the call. When it did not, the next token is skipped into an ERROR
// node attached to parent so that loops always terminate.
func (p *Parser) mustProgress(parent *Node) func() bool {
	saved := p.ts.Checkpoint()
	return func() bool {
		cur := p.ts.Checkpoint()
		if cur.pos == saved.pos && cur.state == saved.state {
			if p.ts.Peek(ExpectValue).Kind != TokenEOF {
				parent.AddChild(p.errorNode("unexpected token", ExpectValue))
			}
			return false
		}
		return true
	}
}

// relabel returns a copy of n with a different kind.
func relabel(n *Node, kind NodeKind) *Node {
	c := *n
	c.Kind = kind
	return &c
}

// rebuild returns a copy of n with new children, recomputing the error
// flag. The children must cover the same source as before.
func rebuild(n *Node, kind NodeKind, children []*Node) *Node {
	c := &Node{Kind: kind, Span: n.Span, Token: n.Token, Error: n.Error, Missing: n.Missing}
	for i, child := range children {
		c.AddField(n.FieldName(i), child)
	}
	return c
}
