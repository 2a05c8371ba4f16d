package parser

// aliasContext is the syntactic position a node is attached in. The same
// internal production surfaces under different public names depending on
// where it appears.
type aliasContext uint8

const (
	asIdentifier aliasContext = iota
	asProperty
	asShorthand
	asShorthandPattern
	asPattern
	asJSXName
)

// alias maps an internal or cover kind to the public kind for ctx. It is a
// pure function of its inputs.
func alias(kind NodeKind, ctx aliasContext) NodeKind {
	switch kind {
	case KindIdentifier, kindReservedIdentifier, kindJSXIdentifier:
		switch ctx {
		case asProperty:
			return KindPropertyIdentifier
		case asShorthand:
			return KindShorthandPropertyIdentifier
		case asShorthandPattern:
			return KindShorthandPropertyIdentifierPattern
		}
		return KindIdentifier
	case kindNestedIdentifier:
		return KindMemberExpression
	}

	if ctx == asPattern {
		switch kind {
		case KindRecord:
			return KindRecordPattern
		case KindList:
			return KindListPattern
		case KindPair:
			return KindPairPattern
		case KindSpreadElement:
			return KindRestPattern
		case KindShorthandPropertyIdentifier:
			return KindShorthandPropertyIdentifierPattern
		case KindAssignmentExpression:
			return KindAssignmentPattern
		}
	}
	return kind
}

// name builds a leaf for an identifier-like token and gives it the public
// kind for ctx.
func (p *Parser) name(ctx aliasContext) *Node {
	tok := p.ts.Peek(ExpectValue)
	kind := KindIdentifier
	if tok.Kind.IsKeyword() {
		kind = kindReservedIdentifier
	}
	return relabel(p.consume(kind), alias(kind, ctx))
}

func isNameToken(tok Token) bool {
	return tok.Kind == TokenIdent || tok.Kind.IsReservedIdentifier()
}

func isPropertyNameToken(tok Token) bool {
	return tok.Kind == TokenIdent || tok.Kind.IsKeyword()
}

// toPattern converts an expression parsed before an '=' into the pattern it
// stands for. Parts that cannot be assigned to are wrapped in ERROR nodes.
func (p *Parser) toPattern(n *Node) *Node {
	switch n.Kind {
	case KindIdentifier, KindMemberExpression, KindSubscriptExpression,
		KindRecordPattern, KindListPattern, KindRestPattern, KindAssignmentPattern:
		return n
	case KindRecord:
		children := make([]*Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = p.recordEntryPattern(c)
		}
		return rebuild(n, alias(n.Kind, asPattern), children)
	case KindList:
		children := make([]*Node, len(n.Children))
		for i, c := range n.Children {
			if c.IsNamed() {
				children[i] = p.patternOrDefault(c)
			} else {
				children[i] = c
			}
		}
		return rebuild(n, alias(n.Kind, asPattern), children)
	case KindSpreadElement:
		return p.restPattern(n)
	case KindError:
		if len(n.Children) == 1 && n.Children[0].Kind == KindRecordAssignmentPattern {
			return n.Children[0]
		}
		return n
	}
	return p.wrapError(ErrInvalidAssignmentTarget, "invalid assignment target", n)
}

func (p *Parser) patternOrDefault(n *Node) *Node {
	if n.Kind == KindAssignmentExpression {
		children := make([]*Node, len(n.Children))
		copy(children, n.Children)
		for i := range children {
			if n.FieldName(i) == "left" {
				children[i] = p.toPattern(children[i])
			}
		}
		return rebuild(n, alias(n.Kind, asPattern), children)
	}
	return p.toPattern(n)
}

func (p *Parser) restPattern(n *Node) *Node {
	children := make([]*Node, len(n.Children))
	for i, c := range n.Children {
		if c.IsNamed() {
			children[i] = p.toPattern(c)
		} else {
			children[i] = c
		}
	}
	return rebuild(n, alias(n.Kind, asPattern), children)
}

func (p *Parser) recordEntryPattern(c *Node) *Node {
	switch c.Kind {
	case KindPair:
		children := make([]*Node, len(c.Children))
		for i, gc := range c.Children {
			if c.FieldName(i) == "value" {
				children[i] = p.patternOrDefault(gc)
			} else {
				children[i] = gc
			}
		}
		return rebuild(c, alias(c.Kind, asPattern), children)
	case KindSpreadElement:
		return p.restPattern(c)
	case KindShorthandPropertyIdentifier:
		return relabel(c, alias(c.Kind, asPattern))
	case KindError:
		return p.toPattern(c)
	case KindToken:
		return c
	}
	return p.wrapError(ErrInvalidAssignmentTarget, "invalid destructuring target", c)
}
