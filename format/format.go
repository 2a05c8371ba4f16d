package format

import (
	"fmt"
	"io"
	"sort"

	"github.com/dhamidi/madlib/madlib/parser"
)

// Encoder writes a parse tree to an underlying writer.
type Encoder interface {
	Encode(tree *parser.Tree) error
}

var encoders = map[string]func(io.Writer) Encoder{
	"json":        func(w io.Writer) Encoder { return NewASTJSONEncoder(w) },
	"sexpr":       func(w io.Writer) Encoder { return NewSExprEncoder(w) },
	"tree":        func(w io.Writer) Encoder { return NewTreeEncoder(w, false) },
	"positions":   func(w io.Writer) Encoder { return NewTreeEncoder(w, true) },
	"tokens":      func(w io.Writer) Encoder { return NewLineEncoder(w) },
	"diagnostics": func(w io.Writer) Encoder { return NewDiagnosticsEncoder(w) },
}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	mk, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (expected one of %v)", name, Names())
	}
	return mk(w), nil
}

// Names lists the registered encoder names in sorted order.
func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
