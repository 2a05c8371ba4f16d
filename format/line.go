package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/madlib/madlib/parser"
)

// LineEncoder writes one tab-separated line per token:
// position, kind, scanner mode, quoted literal and an optional error kind.
type LineEncoder struct {
	w          io.Writer
	skipTrivia bool
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

// SkipTrivia drops whitespace and comments from the output.
func (e *LineEncoder) SkipTrivia() *LineEncoder {
	e.skipTrivia = true
	return e
}

func (e *LineEncoder) Encode(tree *parser.Tree) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(tree *parser.Tree) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range tree.Tokens() {
		if e.skipTrivia && tok.Kind.IsTrivia() {
			continue
		}
		fmt.Fprintf(&sb, "%d:%d\t%s\t%s\t%s",
			tok.Span.Start.Line,
			tok.Span.Start.Column,
			tok.Kind,
			tok.Mode,
			strconv.Quote(tok.Literal),
		)
		if tok.Err != nil {
			sb.WriteString("\t" + tok.Err.Kind.String())
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}
