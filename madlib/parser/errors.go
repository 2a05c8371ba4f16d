package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEdit is returned by Reparse when the edit does not describe the
// difference between the old and the new source.
var ErrInvalidEdit = errors.New("invalid edit")

type ErrorKind int

const (
	ErrUnterminatedString ErrorKind = iota + 1
	ErrUnterminatedTemplate
	ErrUnterminatedRegex
	ErrUnterminatedComment
	ErrInvalidEscape
	ErrInvalidNumericLiteral
	ErrUnexpectedToken
	ErrMissingToken
	ErrInvalidAssignmentTarget
	ErrAmbiguityUnresolved
	ErrCancelled
)

var errorKindNames = map[ErrorKind]string{
	ErrUnterminatedString:      "UnterminatedString",
	ErrUnterminatedTemplate:    "UnterminatedTemplate",
	ErrUnterminatedRegex:       "UnterminatedRegex",
	ErrUnterminatedComment:     "UnterminatedComment",
	ErrInvalidEscape:           "InvalidEscape",
	ErrInvalidNumericLiteral:   "InvalidNumericLiteral",
	ErrUnexpectedToken:         "UnexpectedToken",
	ErrMissingToken:            "MissingToken",
	ErrInvalidAssignmentTarget: "InvalidAssignmentTarget",
	ErrAmbiguityUnresolved:     "AmbiguityUnresolved",
	ErrCancelled:               "Cancelled",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

type Category int

const (
	CategoryLexical Category = iota
	CategorySyntax
	CategoryAmbiguity
	CategoryCancelled
)

func (c Category) String() string {
	switch c {
	case CategoryLexical:
		return "lexical"
	case CategorySyntax:
		return "syntax"
	case CategoryAmbiguity:
		return "ambiguity"
	case CategoryCancelled:
		return "cancelled"
	}
	return "unknown"
}

func (k ErrorKind) Category() Category {
	switch k {
	case ErrUnterminatedString, ErrUnterminatedTemplate, ErrUnterminatedRegex,
		ErrUnterminatedComment, ErrInvalidEscape, ErrInvalidNumericLiteral:
		return CategoryLexical
	case ErrAmbiguityUnresolved:
		return CategoryAmbiguity
	case ErrCancelled:
		return CategoryCancelled
	}
	return CategorySyntax
}

// Recovery describes what the parser did to get past an error.
type Recovery int

const (
	RecoveryNone Recovery = iota
	RecoverySkip
	RecoveryInsertPlaceholder
	RecoveryErrorNode
)

func (r Recovery) String() string {
	switch r {
	case RecoverySkip:
		return "skip"
	case RecoveryInsertPlaceholder:
		return "insert"
	case RecoveryErrorNode:
		return "error-node"
	}
	return "none"
}

type ParseError struct {
	Kind     ErrorKind
	Span     Span
	Message  string
	Recovery Recovery
	Expected []TokenKind
	Got      *Token
}

func newError(kind ErrorKind, span Span, msg string) *ParseError {
	e := &ParseError{Kind: kind, Span: span, Message: msg}
	switch kind {
	case ErrUnterminatedString, ErrUnterminatedTemplate, ErrUnterminatedRegex, ErrMissingToken:
		e.Recovery = RecoveryInsertPlaceholder
	case ErrUnexpectedToken:
		e.Recovery = RecoverySkip
	case ErrInvalidAssignmentTarget, ErrAmbiguityUnresolved:
		e.Recovery = RecoveryErrorNode
	}
	return e
}

func (e *ParseError) Category() Category {
	return e.Kind.Category()
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Span.Start.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Expected) > 0 {
		b.WriteString(" (expected ")
		for i, k := range e.Expected {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k.String())
		}
		b.WriteString(")")
	}
	return b.String()
}
