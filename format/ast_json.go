package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/madlib/madlib/parser"
)

type ASTJSONEncoder struct {
	w      io.Writer
	indent string
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w, indent: "  "}
}

// Compact switches the encoder to single-line output.
func (e *ASTJSONEncoder) Compact() *ASTJSONEncoder {
	e.indent = ""
	return e
}

func (e *ASTJSONEncoder) Encode(tree *parser.Tree) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *ASTJSONEncoder) MarshalText(tree *parser.Tree) ([]byte, error) {
	if e.indent == "" {
		return json.Marshal(tree)
	}
	return json.MarshalIndent(tree, "", e.indent)
}
