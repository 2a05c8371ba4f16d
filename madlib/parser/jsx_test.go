package parser

import "testing"

func TestParseJSX(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"element",
			"<b>text</b>",
			"(program (jsx_element open_tag: (jsx_opening_element name: (identifier)) (jsx_text) close_tag: (jsx_closing_element name: (identifier))))",
		},
		{
			"self closing",
			"<br/>",
			"(program (jsx_self_closing_element name: (identifier)))",
		},
		{
			"fragment",
			"<><a/></>",
			"(program (jsx_element open_tag: (jsx_opening_element) (jsx_self_closing_element name: (identifier)) close_tag: (jsx_closing_element)))",
		},
		{
			"attributes and expressions",
			`<a href="x" {...p}>hi {name}</a>`,
			"(program (jsx_element open_tag: (jsx_opening_element name: (identifier) attribute: (jsx_attribute (property_identifier) (string (string_fragment))) attribute: (jsx_expression (spread_element (identifier)))) (jsx_text) (jsx_expression (identifier)) close_tag: (jsx_closing_element name: (identifier))))",
		},
		{
			"member name",
			"<ui.Button/>",
			"(program (jsx_self_closing_element name: (member_expression record: (identifier) property: (property_identifier))))",
		},
		{
			"namespace name",
			"<svg:rect/>",
			"(program (jsx_self_closing_element name: (jsx_namespace_name (identifier) (identifier))))",
		},
		{
			"dashed name",
			"<my-tag/>",
			"(program (jsx_self_closing_element name: (identifier)))",
		},
		{
			"character reference",
			"<p>a &amp; b</p>",
			"(program (jsx_element open_tag: (jsx_opening_element name: (identifier)) (jsx_text) (html_character_reference) (jsx_text) close_tag: (jsx_closing_element name: (identifier))))",
		},
		{
			"nested",
			"<ul><li>{x}</li></ul>",
			"(program (jsx_element open_tag: (jsx_opening_element name: (identifier)) (jsx_element open_tag: (jsx_opening_element name: (identifier)) (jsx_expression (identifier)) close_tag: (jsx_closing_element name: (identifier))) close_tag: (jsx_closing_element name: (identifier))))",
		},
		{
			"boolean attribute",
			"<input disabled/>",
			"(program (jsx_self_closing_element name: (identifier) attribute: (jsx_attribute (property_identifier))))",
		},
		{
			"slash slash text",
			"<a>// {x}\n</a>",
			"(program (jsx_element open_tag: (jsx_opening_element name: (identifier)) (jsx_text) close_tag: (jsx_closing_element name: (identifier))))",
		},
		{
			"element as value",
			"view = <p>hi</p>",
			"(program (variable_declarator name: (identifier) value: (jsx_element open_tag: (jsx_opening_element name: (identifier)) (jsx_text) close_tag: (jsx_closing_element name: (identifier)))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseString(tt.input)
			if tree.HasErrors() {
				t.Fatalf("unexpected errors: %v\n%s", tree.Diagnostics(), tree)
			}
			if got := tree.SExpr(); got != tt.expected {
				t.Errorf("\ngot:  %s\nwant: %s", got, tt.expected)
			}
		})
	}
}

func TestJSXSlashSlashText(t *testing.T) {
	tests := []struct {
		input string
		texts []string
	}{
		{"<a>// {x}\n</a>", []string{"// {x}"}},
		{"<a>hi // {x}</a>", []string{"hi //"}},
		{"<a>{y}// <b>\n</a>", []string{"// <b>"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseString(tt.input)
			var texts []string
			tree.Root.Walk(func(n *Node) bool {
				if n.Kind == KindJSXText {
					texts = append(texts, n.Text(tree.Source))
				}
				return true
			})
			if len(texts) != len(tt.texts) {
				t.Fatalf("texts = %q, want %q", texts, tt.texts)
			}
			for i := range texts {
				if texts[i] != tt.texts[i] {
					t.Errorf("text %d = %q, want %q", i, texts[i], tt.texts[i])
				}
			}
		})
	}
}

func TestBrokenJSXIsSyntaxError(t *testing.T) {
	tree := parseString("<div>hi")

	diags := tree.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if diags[0].Kind != ErrUnexpectedToken {
		t.Errorf("kind = %v, want UnexpectedToken", diags[0].Kind)
	}
	if diags[0].Category() != CategorySyntax {
		t.Errorf("category = %v, want syntax", diags[0].Category())
	}
	if got := tree.Text(); got != "<div>hi" {
		t.Errorf("round trip = %q", got)
	}
}

func TestRelationalInOperatorPosition(t *testing.T) {
	tree := parseString("x = a < b")
	if tree.HasErrors() {
		t.Fatalf("unexpected errors: %v", tree.Diagnostics())
	}
	value := tree.Root.Children[0].ChildByField("value")
	if value.Kind != KindBinaryExpression {
		t.Fatalf("value = %s, want binary_expression", value.Kind)
	}
	if op := value.ChildByField("operator").TokenLiteral(); op != "<" {
		t.Errorf("operator = %q, want <", op)
	}
}
