package parser

// parseJSXOrRelational handles a '<' in value position. It first tries to
// read a JSX element; if the tag structure does not hold up the stream is
// rewound and the '<' becomes an unexpected token, with the rest read as
// the right side of a comparison. A comparison has no left operand here,
// so neither reading is valid and nothing is ambiguous.
func (p *Parser) parseJSXOrRelational() *Node {
	save := p.ts.Checkpoint()
	outer := p.jsxFailed
	p.jsxFailed = false
	el := p.parseJSXElement()
	failed := p.jsxFailed
	p.jsxFailed = outer
	if !failed {
		return el
	}

	p.ts.Restore(save)
	p.peekOp()
	n := p.startNode(KindError)
	n.AddChild(p.consume(KindToken))
	if p.canStartExpression(p.peek()) {
		n.AddChild(p.parseExpression(PrecRelational + 1))
	}
	n = p.finishNode(n)
	n.Error = newError(ErrUnexpectedToken, n.Span, "'<' is neither a JSX element nor a comparison")
	return n
}

func (p *Parser) jsxFail() {
	p.jsxFailed = true
}

// parseJSXElement expects the cursor on the '<' that opens a tag.
func (p *Parser) parseJSXElement() *Node {
	lt := p.consume(KindToken)

	if p.check(TokenGT) {
		open := p.startNode(KindJSXOpeningElement)
		open.AddChild(lt)
		open.AddChild(p.consume(KindToken))
		return p.parseJSXChildren(p.finishNode(open))
	}

	name := p.parseJSXElementName()
	if name == nil {
		p.jsxFail()
		return lt
	}
	var attrs []*Node
	for {
		tok := p.peek()
		if tok.Kind != TokenIdent && tok.Kind != TokenJSXIdent && tok.Kind != TokenLBrace {
			break
		}
		attr := p.parseJSXAttribute()
		if p.jsxFailed {
			return lt
		}
		attrs = append(attrs, attr)
	}

	switch p.peek().Kind {
	case TokenJSXSelfClose:
		n := p.startNode(KindJSXSelfClosingElement)
		n.AddChild(lt)
		n.AddField("name", name)
		for _, a := range attrs {
			n.AddField("attribute", a)
		}
		n.AddChild(p.consume(KindToken))
		return p.finishNode(n)
	case TokenGT:
		open := p.startNode(KindJSXOpeningElement)
		open.AddChild(lt)
		open.AddField("name", name)
		for _, a := range attrs {
			open.AddField("attribute", a)
		}
		open.AddChild(p.consume(KindToken))
		return p.parseJSXChildren(p.finishNode(open))
	}
	p.jsxFail()
	return lt
}

func (p *Parser) parseJSXChildren(open *Node) *Node {
	n := p.startNode(KindJSXElement)
	n.AddField("open_tag", open)
	for {
		switch p.peek().Kind {
		case TokenJSXText:
			n.AddChild(p.consume(KindJSXText))
		case TokenHTMLCharRef:
			n.AddChild(p.consume(KindHTMLCharacterReference))
		case TokenLBrace:
			n.AddChild(p.parseJSXExpression())
		case TokenLT:
			child := p.parseJSXElement()
			if p.jsxFailed {
				return n
			}
			n.AddChild(child)
		case TokenJSXCloseOpen:
			n.AddField("close_tag", p.parseJSXClosingElement())
			return p.finishNode(n)
		default:
			p.jsxFail()
			return n
		}
		if p.jsxFailed {
			return n
		}
	}
}

func (p *Parser) parseJSXClosingElement() *Node {
	n := p.startNode(KindJSXClosingElement)
	n.AddChild(p.consume(KindToken))
	if !p.check(TokenGT) {
		name := p.parseJSXElementName()
		if name == nil {
			p.jsxFail()
			return p.finishNode(n)
		}
		n.AddField("name", name)
	}
	if !p.check(TokenGT) {
		p.jsxFail()
		return p.finishNode(n)
	}
	n.AddChild(p.consume(KindToken))
	return p.finishNode(n)
}

func (p *Parser) jsxIdentifier(ctx aliasContext) *Node {
	if p.peek().Kind == TokenJSXIdent {
		return relabel(p.consume(kindJSXIdentifier), alias(kindJSXIdentifier, ctx))
	}
	return relabel(p.consume(KindIdentifier), alias(KindIdentifier, ctx))
}

// parseJSXElementName reads `a`, `a-b`, `a:b` or `a.b.c`. It returns nil
// when no name is present.
func (p *Parser) parseJSXElementName() *Node {
	tok := p.peek()
	if tok.Kind != TokenIdent && tok.Kind != TokenJSXIdent {
		return nil
	}
	name := p.jsxIdentifier(asJSXName)

	if p.check(TokenColon) {
		n := p.startNode(KindJSXNamespaceName)
		n.AddChild(name)
		n.AddChild(p.consume(KindToken))
		if !p.check(TokenIdent) && !p.check(TokenJSXIdent) {
			p.jsxFail()
			return p.finishNode(n)
		}
		n.AddChild(p.jsxIdentifier(asJSXName))
		return p.finishNode(n)
	}

	for p.check(TokenDot) {
		n := p.startNode(alias(kindNestedIdentifier, asJSXName))
		n.AddField("record", name)
		n.AddChild(p.consume(KindToken))
		if !p.check(TokenIdent) {
			p.jsxFail()
			return p.finishNode(n)
		}
		n.AddField("property", p.jsxIdentifier(asProperty))
		name = p.finishNode(n)
	}
	return name
}

func (p *Parser) parseJSXAttribute() *Node {
	if p.check(TokenLBrace) {
		return p.parseJSXExpression()
	}

	n := p.startNode(KindJSXAttribute)
	name := p.jsxIdentifier(asProperty)
	if p.check(TokenColon) {
		ns := p.startNode(KindJSXNamespaceName)
		ns.AddChild(relabel(name, KindIdentifier))
		ns.AddChild(p.consume(KindToken))
		if !p.check(TokenIdent) && !p.check(TokenJSXIdent) {
			p.jsxFail()
			return p.finishNode(ns)
		}
		ns.AddChild(p.jsxIdentifier(asJSXName))
		name = p.finishNode(ns)
	}
	n.AddChild(name)

	if !p.check(TokenAssign) {
		return p.finishNode(n)
	}
	n.AddChild(p.consume(KindToken))
	switch p.peek().Kind {
	case TokenDoubleQuote, TokenSingleQuote:
		n.AddChild(p.parseString())
	case TokenLBrace:
		n.AddChild(p.parseJSXExpression())
	case TokenLT:
		el := p.parseJSXElement()
		if p.jsxFailed {
			return n
		}
		n.AddChild(el)
	default:
		p.jsxFail()
	}
	return p.finishNode(n)
}

func (p *Parser) parseJSXExpression() *Node {
	n := p.startNode(KindJSXExpression)
	n.AddChild(p.consume(KindToken))
	size := p.ts.State().Size()
	switch tok := p.peek(); {
	case tok.Kind == TokenRBrace:
	case tok.Kind == TokenEllipsis:
		n.AddChild(p.parseSpreadElement())
	default:
		n.AddChild(p.parseExpressions())
	}
	p.closeEmbedded(n, size)
	return p.finishNode(n)
}
