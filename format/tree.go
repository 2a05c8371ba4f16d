package format

import (
	"io"

	"github.com/dhamidi/madlib/madlib/parser"
)

// TreeEncoder writes the indented node listing, one node per line.
type TreeEncoder struct {
	w         io.Writer
	positions bool
}

func NewTreeEncoder(w io.Writer, positions bool) *TreeEncoder {
	return &TreeEncoder{w: w, positions: positions}
}

func (e *TreeEncoder) Encode(tree *parser.Tree) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(tree *parser.Tree) ([]byte, error) {
	if e.positions {
		return []byte(tree.Root.StringWithPositions()), nil
	}
	return []byte(tree.Root.String()), nil
}

// SExprEncoder writes the tree as a single s-expression line.
type SExprEncoder struct {
	w io.Writer
}

func NewSExprEncoder(w io.Writer) *SExprEncoder {
	return &SExprEncoder{w: w}
}

func (e *SExprEncoder) Encode(tree *parser.Tree) error {
	_, err := io.WriteString(e.w, tree.SExpr()+"\n")
	return err
}
