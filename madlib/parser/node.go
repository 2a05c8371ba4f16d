package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	// KindToken is an anonymous leaf: punctuation, operators and keywords.
	KindToken

	// Program structure
	KindProgram
	KindStatementBlock
	KindVariableDeclarator
	KindIfStatement
	KindElseClause
	KindWhileStatement
	KindReturnStatement
	KindImportStatement
	KindImportClause
	KindNamedImports
	KindImportSpecifier
	KindExportStatement
	KindExportClause
	KindExportSpecifier

	// Expressions
	KindParenthesizedExpression
	KindSequenceExpression
	KindAssignmentExpression
	KindExplicitMutationOperator
	KindTernaryExpression
	KindBinaryExpression
	KindUnaryExpression
	KindCallExpression
	KindArguments
	KindMemberExpression
	KindSubscriptExpression
	KindArrowFunction
	KindFunctionExpression
	KindFormalParameters
	KindRecord
	KindPair
	KindSpreadElement
	KindMethodDefinition
	KindList

	// Literals and names
	KindIdentifier
	KindPropertyIdentifier
	KindShorthandPropertyIdentifier
	KindShorthandPropertyIdentifierPattern
	KindNumber
	KindTrue
	KindFalse
	KindString
	KindStringFragment
	KindEscapeSequence
	KindTemplateString
	KindTemplateSubstitution
	KindRegex
	KindRegexPattern
	KindRegexFlags

	// Patterns
	KindRecordPattern
	KindPairPattern
	KindRecordAssignmentPattern
	KindListPattern
	KindRestPattern
	KindAssignmentPattern

	// JSX
	KindJSXElement
	KindJSXOpeningElement
	KindJSXClosingElement
	KindJSXSelfClosingElement
	KindJSXText
	KindJSXExpression
	KindJSXAttribute
	KindJSXNamespaceName
	KindHTMLCharacterReference

	// Parser-internal kinds. They are renamed before a node is attached
	// to its parent and never appear in a finished tree.
	kindReservedIdentifier
	kindNestedIdentifier
	kindJSXIdentifier
)

var nodeKindNames = map[NodeKind]string{
	KindError:                              "ERROR",
	KindToken:                              "token",
	KindProgram:                            "program",
	KindStatementBlock:                     "statement_block",
	KindVariableDeclarator:                 "variable_declarator",
	KindIfStatement:                        "if_statement",
	KindElseClause:                         "else_clause",
	KindWhileStatement:                     "while_statement",
	KindReturnStatement:                    "return_statement",
	KindImportStatement:                    "import_statement",
	KindImportClause:                       "import_clause",
	KindNamedImports:                       "named_imports",
	KindImportSpecifier:                    "import_specifier",
	KindExportStatement:                    "export_statement",
	KindExportClause:                       "export_clause",
	KindExportSpecifier:                    "export_specifier",
	KindParenthesizedExpression:            "parenthesized_expression",
	KindSequenceExpression:                 "sequence_expression",
	KindAssignmentExpression:               "assignment_expression",
	KindExplicitMutationOperator:           "explicit_mutation_operator",
	KindTernaryExpression:                  "ternary_expression",
	KindBinaryExpression:                   "binary_expression",
	KindUnaryExpression:                    "unary_expression",
	KindCallExpression:                     "call_expression",
	KindArguments:                          "arguments",
	KindMemberExpression:                   "member_expression",
	KindSubscriptExpression:                "subscript_expression",
	KindArrowFunction:                      "arrow_function",
	KindFunctionExpression:                 "function_expression",
	KindFormalParameters:                   "formal_parameters",
	KindRecord:                             "record",
	KindPair:                               "pair",
	KindSpreadElement:                      "spread_element",
	KindMethodDefinition:                   "method_definition",
	KindList:                               "list",
	KindIdentifier:                         "identifier",
	KindPropertyIdentifier:                 "property_identifier",
	KindShorthandPropertyIdentifier:        "shorthand_property_identifier",
	KindShorthandPropertyIdentifierPattern: "shorthand_property_identifier_pattern",
	KindNumber:                             "number",
	KindTrue:                               "true",
	KindFalse:                              "false",
	KindString:                             "string",
	KindStringFragment:                     "string_fragment",
	KindEscapeSequence:                     "escape_sequence",
	KindTemplateString:                     "template_string",
	KindTemplateSubstitution:               "template_substitution",
	KindRegex:                              "regex",
	KindRegexPattern:                       "regex_pattern",
	KindRegexFlags:                         "regex_flags",
	KindRecordPattern:                      "record_pattern",
	KindPairPattern:                        "pair_pattern",
	KindRecordAssignmentPattern:            "record_assignment_pattern",
	KindListPattern:                        "list_pattern",
	KindRestPattern:                        "rest_pattern",
	KindAssignmentPattern:                  "assignment_pattern",
	KindJSXElement:                         "jsx_element",
	KindJSXOpeningElement:                  "jsx_opening_element",
	KindJSXClosingElement:                  "jsx_closing_element",
	KindJSXSelfClosingElement:              "jsx_self_closing_element",
	KindJSXText:                            "jsx_text",
	KindJSXExpression:                      "jsx_expression",
	KindJSXAttribute:                       "jsx_attribute",
	KindJSXNamespaceName:                   "jsx_namespace_name",
	KindHTMLCharacterReference:             "html_character_reference",
	kindReservedIdentifier:                 "reserved_identifier",
	kindNestedIdentifier:                   "nested_identifier",
	kindJSXIdentifier:                      "jsx_identifier",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k NodeKind) internal() bool {
	return k >= kindReservedIdentifier
}

// KindByName maps a public node kind name back to its NodeKind.
func KindByName(name string) (NodeKind, bool) {
	for k, n := range nodeKindNames {
		if n == name && !k.internal() {
			return k, true
		}
	}
	return 0, false
}

type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *ParseError

	// Missing marks a zero-width placeholder inserted during recovery.
	Missing bool

	fields   []string
	hasError bool
}

func (n *Node) AddChild(child *Node) {
	n.AddField("", child)
}

func (n *Node) AddField(name string, child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
	n.fields = append(n.fields, name)
	if child.HasError() {
		n.hasError = true
	}
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

// IsNamed reports whether the node has a grammar name, as opposed to an
// anonymous punctuation or keyword leaf.
func (n *Node) IsNamed() bool {
	return n.Kind != KindToken
}

// HasError reports whether the node or any descendant is an error, a
// missing placeholder or a malformed token.
func (n *Node) HasError() bool {
	return n.hasError || n.Error != nil || n.Missing || n.Kind == KindError
}

// FieldName returns the field the i-th child is attached under, or "".
func (n *Node) FieldName(i int) string {
	if i < 0 || i >= len(n.fields) {
		return ""
	}
	return n.fields[i]
}

func (n *Node) ChildByField(name string) *Node {
	for i, f := range n.fields {
		if f == name {
			return n.Children[i]
		}
	}
	return nil
}

func (n *Node) ChildrenByField(name string) []*Node {
	var result []*Node
	for i, f := range n.fields {
		if f == name {
			result = append(result, n.Children[i])
		}
	}
	return result
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) NamedChildren() []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.IsNamed() {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Text returns the source covered by the node.
func (n *Node) Text(src []byte) string {
	start, end := n.Span.Start.Offset, n.Span.End.Offset
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// Walk visits n and its descendants in source order. Returning false from
// fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Leaves returns the token-bearing nodes under n in source order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Token != nil {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	var b strings.Builder
	n.writeIndent(&b, indent, "", showPositions)
	return b.String()
}

func (n *Node) writeIndent(b *strings.Builder, indent int, field string, showPositions bool) {
	b.WriteString(strings.Repeat("  ", indent))
	if field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}
	if n.Missing {
		b.WriteString("MISSING ")
	}
	b.WriteString(n.Kind.String())
	if showPositions {
		b.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil && n.Token.Literal != "" {
		b.WriteString(" " + n.Token.Literal)
	}
	if n.Error != nil {
		b.WriteString(" ERROR: " + n.Error.Message)
	}
	b.WriteString("\n")

	for i, child := range n.Children {
		child.writeIndent(b, indent+1, n.FieldName(i), showPositions)
	}
}

// SExpr renders named nodes as an s-expression with field labels.
func (n *Node) SExpr() string {
	var b strings.Builder
	n.writeSExpr(&b)
	return b.String()
}

func (n *Node) writeSExpr(b *strings.Builder) {
	b.WriteString("(")
	if n.Missing {
		b.WriteString("MISSING ")
	}
	b.WriteString(n.Kind.String())
	for i, child := range n.Children {
		if !child.IsNamed() && !child.HasError() {
			continue
		}
		b.WriteString(" ")
		if f := n.FieldName(i); f != "" {
			b.WriteString(f)
			b.WriteString(": ")
		}
		if !child.IsNamed() {
			b.WriteString("(")
			if child.Missing {
				b.WriteString("MISSING ")
			}
			b.WriteString("\"" + child.Token.Kind.String() + "\")")
			continue
		}
		child.writeSExpr(b)
	}
	b.WriteString(")")
}
