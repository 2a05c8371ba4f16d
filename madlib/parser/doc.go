// Package parser provides an error-tolerant, incremental parser for Madlib
// source code.
//
// # Overview
//
// The parser produces a concrete syntax tree (CST) that preserves every
// byte of the input: whitespace and comments ride along as leading trivia
// of the token that follows them. Malformed input never aborts a parse;
// it shows up as ERROR nodes and zero-width missing placeholders inside an
// otherwise complete tree.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Scanner   │────▶│ TokenStream │────▶│   Parser    │
//	│ (mode stack)│     │ (checkpoint)│     │   (CST)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//	       ▲                                       │
//	       └──────── context: value/operator ──────┘
//
// The scanner is modal. Strings, template literals, regular expressions,
// JSX tags, JSX attribute strings and JSX text each get their own rules,
// and the active modes form a persistent stack that the token stream
// threads through. The parser tells the stream whether it expects a value
// or an operator, which is how '/' becomes either a regex or a division,
// and '<' either a JSX tag or a comparison.
//
// # Usage
//
//	tree := parser.Parse(ctx, src, parser.WithFile("main.mad"))
//	for _, d := range tree.Diagnostics() {
//	    fmt.Println(d)
//	}
//	fmt.Println(tree.SExpr())
//
// # Incremental reparsing
//
// After an edit, Reparse reuses the unchanged top-level statements of the
// previous tree:
//
//	newSrc, edit, _ := parser.ApplyEdit(tree.Source, start, end, []byte("x"))
//	next, err := parser.Reparse(ctx, tree, edit, newSrc)
//
// Statements before the edit are shared by pointer. Trees are never
// mutated, so the old tree stays valid.
package parser
