package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	Field    string      `json:"field,omitempty"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Token    string      `json:"token,omitempty"`
	Missing  bool        `json:"missing,omitempty"`
	Error    *jsonError  `json:"error,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonError struct {
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

type jsonTree struct {
	File        string       `json:"file,omitempty"`
	Root        *jsonNode    `json:"root"`
	Diagnostics []*jsonError `json:"diagnostics,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON(""))
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	jt := &jsonTree{File: t.File, Root: t.Root.toJSON("")}
	for _, d := range t.Diagnostics() {
		jt.Diagnostics = append(jt.Diagnostics, errorToJSON(d))
	}
	return json.Marshal(jt)
}

func (n *Node) toJSON(field string) *jsonNode {
	jn := &jsonNode{
		Kind:    n.Kind.String(),
		Field:   field,
		Missing: n.Missing,
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		jn.Span = &jsonSpan{
			Start: jsonPosition{Offset: n.Span.Start.Offset, Line: n.Span.Start.Line, Column: n.Span.Start.Column},
			End:   jsonPosition{Offset: n.Span.End.Offset, Line: n.Span.End.Line, Column: n.Span.End.Column},
		}
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}

	if n.Error != nil {
		jn.Error = errorToJSON(n.Error)
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON(n.FieldName(i))
		}
	}

	return jn
}

func errorToJSON(e *ParseError) *jsonError {
	je := &jsonError{
		Kind:    e.Kind.String(),
		Message: e.Message,
	}
	for _, exp := range e.Expected {
		je.Expected = append(je.Expected, exp.String())
	}
	if e.Got != nil {
		je.Got = e.Got.Literal
	}
	return je
}
