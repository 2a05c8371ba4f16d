package parser

func (p *Parser) parseStatement() *Node {
	tok := p.peek()
	switch tok.Kind {
	case TokenExport:
		return p.parseExportStatement()
	case TokenImport:
		return p.parseImportStatement()
	case TokenIf:
		return p.parseIfStatement()
	case TokenWhile:
		return p.parseWhileStatement()
	case TokenReturn:
		return p.parseReturnStatement()
	case TokenLBrace:
		switch p.classifyBrace(braceStatement) {
		case braceRecord:
			return p.parseExpressions()
		case bracePattern:
			return p.parseVariableDeclarator(false)
		}
		return p.parseBlock()
	case TokenLBracket:
		if p.bracketedPatternAhead() {
			return p.parseVariableDeclarator(false)
		}
		return p.parseExpressions()
	case TokenElse, TokenRParen, TokenRBracket, TokenRBrace, TokenComma, TokenColon,
		TokenSemicolon, TokenArrow, TokenQuestion, TokenDot:
		return p.errorNode("unexpected "+tok.Kind.String(), ExpectValue)
	}

	if isNameToken(tok) && p.ts.PeekN(1, ExpectValue).Kind == TokenAssign {
		return p.parseVariableDeclarator(false)
	}
	if !p.canStartExpression(tok) {
		return p.errorNode("unexpected "+tok.Kind.String(), ExpectValue)
	}
	return p.parseExpressions()
}

func (p *Parser) parseBlock() *Node {
	n := p.startNode(KindStatementBlock)
	n.AddChild(p.expect(TokenLBrace, ExpectValue))
	p.parseStatements(n, true)
	n.AddChild(p.expect(TokenRBrace, ExpectValue))
	return p.finishNode(n)
}

// parseVariableDeclarator parses `name = value`. Exported declarators may
// omit the value.
func (p *Parser) parseVariableDeclarator(optionalValue bool) *Node {
	n := p.startNode(KindVariableDeclarator)
	n.AddField("name", p.parseBindingName())
	if optionalValue && !p.checkOp(TokenAssign) {
		return p.finishNode(n)
	}
	n.AddChild(p.expect(TokenAssign, ExpectOperator))
	n.AddField("value", p.parseExpression(PrecAssign))
	return p.finishNode(n)
}

func (p *Parser) parseBindingName() *Node {
	switch tok := p.peek(); {
	case tok.Kind == TokenLBrace:
		return p.parseRecordPattern()
	case tok.Kind == TokenLBracket:
		return p.parseListPattern()
	case isNameToken(tok):
		return p.name(asIdentifier)
	}
	return p.missingOrSkip(KindIdentifier, TokenIdent)
}

func (p *Parser) parseIfStatement() *Node {
	n := p.startNode(KindIfStatement)
	n.AddChild(p.consume(KindToken))
	n.AddField("condition", p.parseParenthesized())
	n.AddField("consequence", p.parseStatementOrMissing())
	if p.check(TokenElse) {
		clause := p.startNode(KindElseClause)
		clause.AddChild(p.consume(KindToken))
		clause.AddChild(p.parseStatementOrMissing())
		n.AddField("alternative", p.finishNode(clause))
	}
	return p.finishNode(n)
}

func (p *Parser) parseWhileStatement() *Node {
	n := p.startNode(KindWhileStatement)
	n.AddChild(p.consume(KindToken))
	n.AddField("condition", p.parseParenthesized())
	n.AddField("body", p.parseStatementOrMissing())
	return p.finishNode(n)
}

// parseStatementOrMissing parses the body of a compound statement; at a
// closing brace or EOF it inserts an empty placeholder instead.
func (p *Parser) parseStatementOrMissing() *Node {
	switch p.peek().Kind {
	case TokenEOF, TokenRBrace, TokenElse:
		return p.missing(KindStatementBlock, TokenLBrace, ExpectValue)
	}
	return p.parseStatement()
}

func (p *Parser) parseReturnStatement() *Node {
	n := p.startNode(KindReturnStatement)
	n.AddChild(p.consume(KindToken))
	switch p.peek().Kind {
	case TokenEOF, TokenRBrace, TokenExport, TokenImport, TokenIf, TokenElse,
		TokenWhile, TokenReturn:
	default:
		n.AddChild(p.parseExpressions())
	}
	return p.finishNode(n)
}

func (p *Parser) parseImportStatement() *Node {
	n := p.startNode(KindImportStatement)
	n.AddChild(p.consume(KindToken))

	clause := p.startNode(KindImportClause)
	switch tok := p.peek(); {
	case tok.Kind == TokenLBrace:
		clause.AddChild(p.parseNamedImports())
	case isNameToken(tok) && !(tok.Kind == TokenIdent && tok.Literal == "from"):
		clause.AddChild(p.name(asIdentifier))
		if p.checkOp(TokenComma) {
			clause.AddChild(p.consume(KindToken))
			if p.check(TokenLBrace) {
				clause.AddChild(p.parseNamedImports())
			} else {
				clause.AddChild(p.missing(KindNamedImports, TokenLBrace, ExpectValue))
			}
		}
	default:
		clause.AddChild(p.missing(KindIdentifier, TokenIdent, ExpectValue))
	}
	n.AddChild(p.finishNode(clause))
	p.parseFromClause(n)
	return p.finishNode(n)
}

func (p *Parser) parseFromClause(n *Node) {
	n.AddChild(p.expectContextual("from", ExpectOperator))
	if tok := p.peek(); tok.Kind == TokenDoubleQuote || tok.Kind == TokenSingleQuote {
		n.AddField("source", p.parseString())
		return
	}
	n.AddField("source", p.missing(KindString, TokenDoubleQuote, ExpectValue))
}

func (p *Parser) parseNamedImports() *Node {
	n := p.startNode(KindNamedImports)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRBrace, false, func() *Node {
		spec := p.startNode(KindImportSpecifier)
		if !isNameToken(p.peek()) {
			return p.missingOrSkip(KindIdentifier, TokenIdent)
		}
		spec.AddField("name", p.name(asIdentifier))
		if p.checkContextual("as") {
			spec.AddChild(p.consume(KindToken))
			spec.AddField("alias", p.parseNameOrMissing())
		}
		return p.finishNode(spec)
	})
	n.AddChild(p.expect(TokenRBrace, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseNameOrMissing() *Node {
	if isNameToken(p.peek()) {
		return p.name(asIdentifier)
	}
	return p.missing(KindIdentifier, TokenIdent, ExpectValue)
}

func (p *Parser) parseExportStatement() *Node {
	n := p.startNode(KindExportStatement)
	n.AddChild(p.consume(KindToken))

	switch tok := p.peek(); {
	case tok.Kind == TokenStar:
		n.AddChild(p.consume(KindToken))
		p.parseFromClause(n)
	case tok.Kind == TokenLBrace:
		n.AddChild(p.parseExportClause())
		if p.checkContextual("from") {
			p.parseFromClause(n)
		}
	case tok.Kind == TokenIdent && tok.Literal == "default":
		n.AddChild(p.consume(KindToken))
		if isNameToken(p.peek()) && p.ts.PeekN(1, ExpectValue).Kind == TokenAssign {
			n.AddField("declaration", p.parseVariableDeclarator(false))
		} else {
			n.AddField("value", p.parseExpression(PrecAssign))
		}
	case isNameToken(tok):
		n.AddField("declaration", p.parseVariableDeclarator(true))
	default:
		n.AddField("declaration", p.missing(KindVariableDeclarator, TokenIdent, ExpectValue))
	}
	return p.finishNode(n)
}

func (p *Parser) parseExportClause() *Node {
	n := p.startNode(KindExportClause)
	n.AddChild(p.consume(KindToken))
	p.parseCommaList(n, TokenRBrace, false, func() *Node {
		spec := p.startNode(KindExportSpecifier)
		name := p.parseModuleExportName()
		if name == nil {
			return p.missingOrSkip(KindIdentifier, TokenIdent)
		}
		spec.AddField("name", name)
		if p.checkContextual("as") {
			spec.AddChild(p.consume(KindToken))
			alias := p.parseModuleExportName()
			if alias == nil {
				alias = p.missing(KindIdentifier, TokenIdent, ExpectValue)
			}
			spec.AddField("alias", alias)
		}
		return p.finishNode(spec)
	})
	n.AddChild(p.expect(TokenRBrace, ExpectOperator))
	return p.finishNode(n)
}

func (p *Parser) parseModuleExportName() *Node {
	switch tok := p.peek(); {
	case tok.Kind == TokenDoubleQuote || tok.Kind == TokenSingleQuote:
		return p.parseString()
	case isNameToken(tok):
		return p.name(asIdentifier)
	}
	return nil
}

// parseCommaList parses elements separated by commas up to close, which
// it leaves for the caller. With holes set, empty slots are allowed.
func (p *Parser) parseCommaList(n *Node, close TokenKind, holes bool, element func() *Node) {
	for {
		tok := p.peek()
		if tok.Kind == close || tok.Kind == TokenEOF {
			return
		}
		if tok.Kind == TokenComma {
			if !holes {
				n.AddChild(p.errorNode("unexpected ','", ExpectValue))
				continue
			}
			n.AddChild(p.consume(KindToken))
			continue
		}
		if p.isCancelled() {
			return
		}
		n.AddChild(element())
		if !p.checkOp(TokenComma) {
			return
		}
		n.AddChild(p.consume(KindToken))
	}
}

// missingOrSkip inserts a placeholder before tokens that close the
// surrounding construct and otherwise skips the offending token.
func (p *Parser) missingOrSkip(kind NodeKind, tk TokenKind) *Node {
	if isSyncToken(p.peek()) {
		return p.missing(kind, tk, ExpectValue)
	}
	return p.errorNode("expected "+kind.String(), ExpectValue, tk)
}

func isSyncToken(tok Token) bool {
	switch tok.Kind {
	case TokenEOF, TokenRParen, TokenRBracket, TokenRBrace, TokenComma, TokenColon,
		TokenExport, TokenImport, TokenIf, TokenElse, TokenWhile, TokenReturn,
		TokenDollarBrace, TokenBacktick, TokenJSXCloseOpen, TokenGT, TokenJSXSelfClose:
		return true
	}
	return false
}
