package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

func (s Span) Contains(offset int) bool {
	return s.Start.Offset <= offset && offset <= s.End.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenHTMLComment

	// Literals
	TokenIdent
	TokenNumber
	TokenStringFragment
	TokenTemplateChars
	TokenEscapeSequence
	TokenRegexPattern
	TokenRegexFlags
	TokenJSXText
	TokenJSXIdent
	TokenHTMLCharRef

	// Keywords
	TokenExport
	TokenImport
	TokenWhere
	TokenType
	TokenAlias
	TokenReturn
	TokenDo
	TokenIf
	TokenElse
	TokenWhile
	TokenTrue
	TokenFalse

	// Operators and punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenEllipsis
	TokenColon
	TokenQuestion

	TokenAssign
	TokenMutate
	TokenArrow
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenShl
	TokenShr
	TokenUShr
	TokenPlus
	TokenConcat
	TokenMinus
	TokenStar
	TokenStarStar
	TokenSlash
	TokenPercent

	// Delimiters that switch scanner modes
	TokenDoubleQuote
	TokenSingleQuote
	TokenBacktick
	TokenDollarBrace
	TokenRegexSlash
	TokenJSXCloseOpen
	TokenJSXSelfClose
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:            "EOF",
	TokenError:          "Error",
	TokenWhitespace:     "Whitespace",
	TokenComment:        "Comment",
	TokenHTMLComment:    "HTMLComment",
	TokenIdent:          "Ident",
	TokenNumber:         "Number",
	TokenStringFragment: "StringFragment",
	TokenTemplateChars:  "TemplateChars",
	TokenEscapeSequence: "EscapeSequence",
	TokenRegexPattern:   "RegexPattern",
	TokenRegexFlags:     "RegexFlags",
	TokenJSXText:        "JSXText",
	TokenJSXIdent:       "JSXIdent",
	TokenHTMLCharRef:    "HTMLCharRef",
	TokenExport:         "export",
	TokenImport:         "import",
	TokenWhere:          "where",
	TokenType:           "type",
	TokenAlias:          "alias",
	TokenReturn:         "return",
	TokenDo:             "do",
	TokenIf:             "if",
	TokenElse:           "else",
	TokenWhile:          "while",
	TokenTrue:           "true",
	TokenFalse:          "false",
	TokenLParen:         "(",
	TokenRParen:         ")",
	TokenLBrace:         "{",
	TokenRBrace:         "}",
	TokenLBracket:       "[",
	TokenRBracket:       "]",
	TokenSemicolon:      ";",
	TokenComma:          ",",
	TokenDot:            ".",
	TokenEllipsis:       "...",
	TokenColon:          ":",
	TokenQuestion:       "?",
	TokenAssign:         "=",
	TokenMutate:         ":=",
	TokenArrow:          "=>",
	TokenEQ:             "==",
	TokenNE:             "!=",
	TokenLT:             "<",
	TokenLE:             "<=",
	TokenGT:             ">",
	TokenGE:             ">=",
	TokenAnd:            "&&",
	TokenOr:             "||",
	TokenNot:            "!",
	TokenBitAnd:         "&",
	TokenBitOr:          "|",
	TokenBitXor:         "^",
	TokenShl:            "<<",
	TokenShr:            ">>",
	TokenUShr:           ">>>",
	TokenPlus:           "+",
	TokenConcat:         "++",
	TokenMinus:          "-",
	TokenStar:           "*",
	TokenStarStar:       "**",
	TokenSlash:          "/",
	TokenPercent:        "%",
	TokenDoubleQuote:    "\"",
	TokenSingleQuote:    "'",
	TokenBacktick:       "`",
	TokenDollarBrace:    "${",
	TokenRegexSlash:     "/",
	TokenJSXCloseOpen:   "</",
	TokenJSXSelfClose:   "/>",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"export": TokenExport,
	"import": TokenImport,
	"where":  TokenWhere,
	"type":   TokenType,
	"alias":  TokenAlias,
	"return": TokenReturn,
	"do":     TokenDo,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

// IsKeyword reports whether k is one of the reserved words of the language.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenExport && k <= TokenFalse
}

// IsReservedIdentifier reports whether k is a keyword that may still be used
// where an identifier is expected.
func (k TokenKind) IsReservedIdentifier() bool {
	switch k {
	case TokenExport, TokenImport, TokenWhere, TokenType, TokenAlias, TokenDo:
		return true
	}
	return false
}

// IsTrivia reports whether tokens of kind k are attached to the following
// token instead of appearing in the tree.
func (k TokenKind) IsTrivia() bool {
	return k == TokenWhitespace || k == TokenComment || k == TokenHTMLComment
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string

	// Mode is the scanner mode the token was produced in.
	Mode Mode

	// Leading holds the whitespace and comments between the previous token
	// and this one.
	Leading []Token

	// Missing marks a zero-width token synthesized during recovery.
	Missing bool

	// Err is set when the token itself is lexically malformed.
	Err *ParseError
}

// Start returns the offset where the token's leading trivia begins.
func (t Token) Start() int {
	if len(t.Leading) > 0 {
		return t.Leading[0].Span.Start.Offset
	}
	return t.Span.Start.Offset
}

func (t Token) String() string {
	if t.Missing {
		return fmt.Sprintf("MISSING %s", t.Kind)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Literal)
}
