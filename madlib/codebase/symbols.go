package codebase

import "github.com/dhamidi/madlib/madlib/parser"

type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
	SymbolImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolImport:
		return "import"
	}
	return "variable"
}

// Symbol is a top-level name introduced by a declarator or an import.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Exported bool

	// Span covers the whole statement, NameSpan only the bound name.
	Span     parser.Span
	NameSpan parser.Span
}

// Symbols returns the top-level symbols of tree in source order.
func Symbols(tree *parser.Tree) []Symbol {
	var out []Symbol
	for _, stmt := range tree.Root.Children {
		switch stmt.Kind {
		case parser.KindVariableDeclarator:
			out = append(out, declaratorSymbols(tree, stmt, stmt, false)...)
		case parser.KindExportStatement:
			if decl := stmt.ChildByField("declaration"); decl != nil && !decl.Missing {
				out = append(out, declaratorSymbols(tree, stmt, decl, true)...)
			}
		case parser.KindImportStatement:
			out = append(out, importSymbols(tree, stmt)...)
		}
	}
	return out
}

func declaratorSymbols(tree *parser.Tree, stmt, decl *parser.Node, exported bool) []Symbol {
	kind := SymbolVariable
	if v := decl.ChildByField("value"); v != nil {
		switch v.Kind {
		case parser.KindArrowFunction, parser.KindFunctionExpression:
			kind = SymbolFunction
		}
	}

	var out []Symbol
	var collect func(n *parser.Node)
	collect = func(n *parser.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case parser.KindMemberExpression, parser.KindSubscriptExpression:
		case parser.KindIdentifier, parser.KindShorthandPropertyIdentifierPattern:
			if !n.Missing {
				out = append(out, Symbol{
					Name:     n.Text(tree.Source),
					Kind:     kind,
					Exported: exported,
					Span:     stmt.Span,
					NameSpan: n.Span,
				})
			}
		case parser.KindAssignmentPattern, parser.KindRecordAssignmentPattern:
			collect(n.ChildByField("left"))
		case parser.KindPairPattern:
			collect(n.ChildByField("value"))
		default:
			for _, c := range n.Children {
				collect(c)
			}
		}
	}
	collect(decl.ChildByField("name"))
	return out
}

func importSymbols(tree *parser.Tree, stmt *parser.Node) []Symbol {
	clause := stmt.FirstChildOfKind(parser.KindImportClause)
	if clause == nil {
		return nil
	}
	var out []Symbol
	add := func(n *parser.Node) {
		if n == nil || n.Missing {
			return
		}
		out = append(out, Symbol{
			Name:     n.Text(tree.Source),
			Kind:     SymbolImport,
			Span:     stmt.Span,
			NameSpan: n.Span,
		})
	}
	for _, c := range clause.Children {
		switch c.Kind {
		case parser.KindIdentifier:
			add(c)
		case parser.KindNamedImports:
			for _, spec := range c.ChildrenOfKind(parser.KindImportSpecifier) {
				if alias := spec.ChildByField("alias"); alias != nil {
					add(alias)
				} else {
					add(spec.ChildByField("name"))
				}
			}
		}
	}
	return out
}
